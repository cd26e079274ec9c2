// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/facetatlas/facetatlas/internal/store"
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
	"github.com/facetatlas/facetatlas/pkg/types"
)

// Compile-time interface checks.
var (
	_ store.Gateway = (*Gateway)(nil)
	_ store.Writer  = (*Gateway)(nil)
)

var tableIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Gateway implements store.Gateway and store.Writer over a SQLite table of
// (subject, predicate, object) rows.
type Gateway struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
}

// driver returns the database/sql driver name and the DSN for path.
func driver(backend types.Backend, path string, readOnly bool) (string, string) {
	if backend == types.BackendModernc {
		if readOnly {
			return "sqlite", "file:" + path + "?mode=ro&_pragma=busy_timeout(5000)"
		}
		return "sqlite", path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	if readOnly {
		return "sqlite3", "file:" + path + "?mode=ro&_busy_timeout=5000"
	}
	return "sqlite3", path + "?_journal_mode=WAL&_busy_timeout=5000"
}

// Open opens an existing triple store read-only. A missing file or a
// missing triples table yields a store.unavailable error.
func Open(ctx context.Context, backend types.Backend, cfg *store.StorageConfig) (*Gateway, error) {
	g, err := open(ctx, backend, cfg, true)
	if err != nil {
		return nil, err
	}

	var name string
	err = g.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, g.table).Scan(&name)
	if err != nil {
		_ = g.db.Close()
		return nil, faerr.Wrap(fmt.Errorf("%w: %w", store.ErrUnavailable, err), faerr.CodeStoreUnavailable,
			"triple table missing", faerr.FieldPath(cfg.Path), faerr.Field("table", g.table))
	}
	return g, nil
}

// OpenWriter opens (or creates) a triple store for writing and ensures the
// triples table and its SPO/POS/OSP indexes exist.
func OpenWriter(ctx context.Context, backend types.Backend, cfg *store.StorageConfig) (*Gateway, error) {
	g, err := open(ctx, backend, cfg, false)
	if err != nil {
		return nil, err
	}
	if err := g.migrate(ctx); err != nil {
		_ = g.db.Close()
		return nil, faerr.Errorf(faerr.CodeStoreDatabaseFailure, "migrating triple table: %w", err)
	}
	return g, nil
}

func open(ctx context.Context, backend types.Backend, cfg *store.StorageConfig, readOnly bool) (*Gateway, error) {
	table := cfg.TableName()
	if !tableIdent.MatchString(table) {
		return nil, faerr.Wrap(store.ErrInvalidInput, faerr.CodeStoreInvalidInput,
			"invalid triple table name", faerr.Field("table", table))
	}
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, faerr.Wrap(store.ErrUnavailable, faerr.CodeStoreUnavailable, "triple store path is empty")
	}

	name, dsn := driver(backend, cfg.Path, readOnly)
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, faerr.Wrap(fmt.Errorf("%w: %w", store.ErrUnavailable, err), faerr.CodeStoreUnavailable,
			"opening triple store", faerr.FieldPath(cfg.Path))
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, faerr.Wrap(fmt.Errorf("%w: %w", store.ErrUnavailable, err), faerr.CodeStoreUnavailable,
			"pinging triple store", faerr.FieldPath(cfg.Path))
	}

	return &Gateway{db: db, table: table, logger: slog.Default()}, nil
}

func (g *Gateway) migrate(ctx context.Context) error {
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	subject   TEXT NOT NULL,
	predicate TEXT NOT NULL,
	object    TEXT NOT NULL,
	UNIQUE(subject, predicate, object)
);

CREATE INDEX IF NOT EXISTS idx_%[1]s_pos ON %[1]s(predicate, object, subject);
CREATE INDEX IF NOT EXISTS idx_%[1]s_osp ON %[1]s(object, subject, predicate);
`, g.table)
	_, err := g.db.ExecContext(ctx, ddl)
	return err
}

// Execute implements store.Gateway. Rows come back in insertion order.
func (g *Gateway) Execute(ctx context.Context, f store.Filter) ([]store.Triple, error) {
	if len(f.SubjectLike) == 0 && f.Term == "" {
		return nil, faerr.Wrap(store.ErrInvalidInput, faerr.CodeStoreInvalidInput, "filter has no term")
	}

	where, args := f.Where()
	var q strings.Builder
	q.WriteString("SELECT subject, predicate, object FROM ")
	q.WriteString(g.table)
	q.WriteString(" WHERE ")
	q.WriteString(where)
	q.WriteString(" ORDER BY rowid")

	rows, err := g.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, faerr.Wrap(err, faerr.CodeStoreQueryFailure, "querying triples",
			faerr.Field("filter", f.String()))
	}
	defer func() { _ = rows.Close() }()

	var out []store.Triple
	for rows.Next() {
		var t store.Triple
		if err := rows.Scan(&t.Subject, &t.Predicate, &t.Object); err != nil {
			return nil, faerr.Errorf(faerr.CodeStoreQueryFailure, "scanning triple: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, faerr.Errorf(faerr.CodeStoreQueryFailure, "iterating triples: %w", err)
	}

	g.logger.Debug("triple query",
		slog.String("filter", f.String()),
		slog.Int("rows", len(out)),
	)
	return out, nil
}

// PutTriples implements store.Writer. All rows are written in one
// transaction; exact duplicates are skipped.
func (g *Gateway) PutTriples(ctx context.Context, triples []store.Triple) (int, error) {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, faerr.Errorf(faerr.CodeStoreDatabaseFailure, "beginning transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			g.logger.Warn("rollback failed", slog.String("error", rbErr.Error()))
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR IGNORE INTO "+g.table+" (subject, predicate, object) VALUES (?, ?, ?)")
	if err != nil {
		return 0, faerr.Errorf(faerr.CodeStoreDatabaseFailure, "preparing insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	added := 0
	for _, t := range triples {
		if t.Subject == "" || t.Predicate == "" || t.Object == "" {
			return 0, faerr.Wrap(store.ErrInvalidInput, faerr.CodeStoreInvalidInput,
				"triple has an empty position", faerr.Field("triple", t.String()))
		}
		res, err := stmt.ExecContext(ctx, t.Subject, t.Predicate, t.Object)
		if err != nil {
			return 0, faerr.Errorf(faerr.CodeStoreDatabaseFailure, "inserting triple: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, faerr.Errorf(faerr.CodeStoreDatabaseFailure, "counting inserted rows: %w", err)
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, faerr.Errorf(faerr.CodeStoreDatabaseFailure, "committing triples: %w", err)
	}
	return added, nil
}

// Close closes the underlying database connection.
func (g *Gateway) Close() error {
	return g.db.Close()
}
