// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/facetatlas/facetatlas/internal/store"
	faerr "github.com/facetatlas/facetatlas/pkg/errors"
)

const importBatchSize = 500

func (c *cli) newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Load triples into the triple store",
		Long: "Read tab-separated subject, predicate and object rows from FILE ('-' for\n" +
			"stdin) and add them to the configured triple store. Lines starting with\n" +
			"'#' are ignored and duplicate rows are skipped.",
		Args: cobra.ExactArgs(1),
		RunE: c.runImport,
	}

	cmd.Flags().Int("batch", importBatchSize, "rows per write transaction")

	return cmd
}

func (c *cli) runImport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	batch, _ := cmd.Flags().GetInt("batch")
	if batch < 1 {
		return faerr.New(faerr.CodeCLIInputInvalid, "--batch must be at least 1")
	}

	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return faerr.Wrap(err, faerr.CodeCLIInputInvalid, "opening triples file", faerr.FieldPath(args[0]))
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	storeCfg := cfg.StoreConfig()
	w, err := store.OpenWriter(cmd.Context(), &storeCfg)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	var read, added int
	err = readTriples(in, batch, func(triples []store.Triple) error {
		n, err := w.PutTriples(cmd.Context(), triples)
		read += len(triples)
		added += n
		return err
	})
	if err != nil {
		return err
	}

	logger.Debug("import finished", "path", storeCfg.Path, "read", read, "added", added)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "read %d triples, added %d (%d duplicates)\n", read, added, read-added)
	return nil
}

// readTriples parses tab-separated triples from r and hands them to put in
// batches of at most size rows.
func readTriples(r io.Reader, size int, put func([]store.Triple) error) error {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = 3
	cr.LazyQuotes = true

	buf := make([]store.Triple, 0, size)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return faerr.Errorf(faerr.CodeCLIInputInvalid, "parsing triples: %w", err)
		}
		t := store.Triple{
			Subject:   strings.TrimSpace(rec[0]),
			Predicate: strings.TrimSpace(rec[1]),
			Object:    strings.TrimSpace(rec[2]),
		}
		if t.Subject == "" || t.Predicate == "" || t.Object == "" {
			line, _ := cr.FieldPos(0)
			return faerr.Errorf(faerr.CodeCLIInputInvalid, "line %d: triple has an empty field", line)
		}
		buf = append(buf, t)
		if len(buf) == size {
			if err := put(buf); err != nil {
				return err
			}
			buf = make([]store.Triple, 0, size)
		}
	}
	if len(buf) > 0 {
		return put(buf)
	}
	return nil
}
