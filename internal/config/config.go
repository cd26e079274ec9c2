// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package config

import (
	"errors"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/facetatlas/facetatlas/internal/ontology"
	"github.com/facetatlas/facetatlas/internal/store"
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
	"github.com/facetatlas/facetatlas/pkg/types"
)

// Config is the top-level FacetAtlas configuration.
type Config struct {
	Storage    StorageConfig    `mapstructure:"storage"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Traversal  TraversalConfig  `mapstructure:"traversal"`
	Predicates PredicatesConfig `mapstructure:"predicates"`
	Scene      SceneConfig      `mapstructure:"scene"`
	History    HistoryConfig    `mapstructure:"history"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// StorageConfig locates the triple store.
type StorageConfig struct {
	Backend string        `mapstructure:"backend"`
	Path    string        `mapstructure:"path"`
	Table   string        `mapstructure:"table"`
	Breaker BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig controls the circuit breaker around store opening.
type BreakerConfig struct {
	MaxFailures uint32        `mapstructure:"max_failures"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// CacheConfig controls the result cache.
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Capacity   int  `mapstructure:"capacity"`
	MaxHistory int  `mapstructure:"max_history"`
}

// TraversalConfig bounds recursive traversal.
type TraversalConfig struct {
	MaxDepth int `mapstructure:"max_depth"`
}

// PredicatesConfig classifies predicates and names the alternate-name
// predicates tried during resolution.
type PredicatesConfig struct {
	Recursion         []string `mapstructure:"recursion"`
	AdditiveRecursion []string `mapstructure:"additive_recursion"`
	Ignore            []string `mapstructure:"ignore"`
	Comment           []string `mapstructure:"comment"`
	SynonymFallbacks  []string `mapstructure:"synonym_fallbacks"`
	DisplayMarker     string   `mapstructure:"display_marker"`
}

// SceneConfig locates the scene and bindings documents.
type SceneConfig struct {
	Path         string `mapstructure:"path"`
	BindingsPath string `mapstructure:"bindings_path"`
}

// HistoryConfig bounds the query history.
type HistoryConfig struct {
	MaxEntries int `mapstructure:"max_entries"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Listen      string   `mapstructure:"listen"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	sets := ontology.DefaultPredicateSets()

	v.SetDefault("storage.backend", string(types.BackendSQLite))
	v.SetDefault("storage.path", "ontology.db")
	v.SetDefault("storage.table", store.DefaultTable)
	v.SetDefault("storage.breaker.max_failures", 3)
	v.SetDefault("storage.breaker.timeout", "30s")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.capacity", 3000)
	v.SetDefault("cache.max_history", 10)
	v.SetDefault("traversal.max_depth", ontology.DefaultMaxDepth)
	v.SetDefault("predicates.recursion", sets.Recursion)
	v.SetDefault("predicates.additive_recursion", sets.AdditiveRecursion)
	v.SetDefault("predicates.ignore", sets.Ignore)
	v.SetDefault("predicates.comment", sets.Comment)
	v.SetDefault("predicates.synonym_fallbacks", ontology.DefaultSynonymFallbacks)
	v.SetDefault("predicates.display_marker", ontology.DefaultDisplayMarker)
	v.SetDefault("history.max_entries", 20)
	v.SetDefault("server.listen", "127.0.0.1:18790")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// SetupEnv binds FACETATLAS_ environment variables, so
// FACETATLAS_STORAGE_PATH overrides storage.path.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("FACETATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, faerr.Errorf(faerr.CodeConfigParseInvalidFormat, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, faerr.Errorf(faerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix FACETATLAS_).
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, faerr.Errorf(faerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// PredicateSets returns the configured predicate classification.
func (c *Config) PredicateSets() ontology.PredicateSets {
	return ontology.PredicateSets{
		Recursion:         c.Predicates.Recursion,
		AdditiveRecursion: c.Predicates.AdditiveRecursion,
		Ignore:            c.Predicates.Ignore,
		Comment:           c.Predicates.Comment,
	}
}

// StoreConfig returns the store factory configuration.
func (c *Config) StoreConfig() store.StorageConfig {
	return store.StorageConfig{
		Backend: c.Storage.Backend,
		Path:    c.Storage.Path,
		Table:   c.Storage.Table,
	}
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateCache()...)
	errs = append(errs, c.validatePredicates()...)
	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateLogging()...)

	return errs
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (c *Config) validateStorage() []error {
	var errs []error

	if !types.Backend(c.Storage.Backend).Valid() {
		errs = append(errs, faerr.Errorf(faerr.CodeConfigValidateInvalidValue,
			"config: storage.backend must be one of [sqlite, modernc], got %q",
			c.Storage.Backend,
		))
	}

	if strings.TrimSpace(c.Storage.Path) == "" {
		errs = append(errs, faerr.Errorf(faerr.CodeConfigValidateInvalidValue, "config: storage.path must not be empty"))
	}

	if c.Storage.Table != "" && !tableName.MatchString(c.Storage.Table) {
		errs = append(errs, faerr.Errorf(faerr.CodeConfigValidateInvalidValue,
			"config: storage.table must be a plain SQL identifier, got %q",
			c.Storage.Table,
		))
	}

	if c.Storage.Breaker.Timeout < 0 {
		errs = append(errs, faerr.Errorf(faerr.CodeConfigValidateInvalidValue,
			"config: storage.breaker.timeout must not be negative, got %s",
			c.Storage.Breaker.Timeout,
		))
	}

	return errs
}

func (c *Config) validateCache() []error {
	var errs []error

	if c.Cache.Capacity <= 0 {
		errs = append(errs, faerr.Errorf(faerr.CodeConfigValidateInvalidValue,
			"config: cache.capacity must be greater than 0, got %d",
			c.Cache.Capacity,
		))
	}

	if c.Traversal.MaxDepth <= 0 {
		errs = append(errs, faerr.Errorf(faerr.CodeConfigValidateInvalidValue,
			"config: traversal.max_depth must be greater than 0, got %d",
			c.Traversal.MaxDepth,
		))
	}

	if c.History.MaxEntries <= 0 {
		errs = append(errs, faerr.Errorf(faerr.CodeConfigValidateInvalidValue,
			"config: history.max_entries must be greater than 0, got %d",
			c.History.MaxEntries,
		))
	}

	return errs
}

func (c *Config) validatePredicates() []error {
	var errs []error

	if len(c.Predicates.Recursion) == 0 {
		errs = append(errs, faerr.Errorf(faerr.CodeConfigValidateInvalidValue,
			"config: predicates.recursion must list at least one predicate"))
	}

	if _, err := ontology.NewClassifier(c.PredicateSets()); err != nil {
		errs = append(errs, faerr.Wrapf(err, faerr.CodeConfigValidateInvalidValue, "config: predicates"))
	}

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, faerr.Errorf(faerr.CodeConfigValidateInvalidValue, "config: server.listen must not be empty"))
		return errs
	}

	_, portStr, err := net.SplitHostPort(c.Server.Listen)
	if err != nil {
		errs = append(errs, faerr.Errorf(faerr.CodeConfigValidateInvalidValue,
			"config: server.listen must be a valid host:port address, got %q: %w",
			c.Server.Listen, err,
		))
		return errs
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		errs = append(errs, faerr.Errorf(faerr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be a number, got %q",
			portStr,
		))
	} else if port < 1 || port > 65535 {
		errs = append(errs, faerr.Errorf(faerr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be between 1 and 65535, got %d",
			port,
		))
	}

	return errs
}

func (c *Config) validateLogging() []error {
	var errs []error

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, faerr.Errorf(faerr.CodeConfigValidateInvalidValue,
			"config: logging.level must be one of [debug, info, warn, error], got %q",
			c.Logging.Level,
		))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, faerr.Errorf(faerr.CodeConfigValidateInvalidValue,
			"config: logging.format must be one of [text, json], got %q",
			c.Logging.Format,
		))
	}

	return errs
}
