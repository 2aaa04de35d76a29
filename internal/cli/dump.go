// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/canonical/resultrow"
	"github.com/canonical/resultrow/dialect"
	"github.com/canonical/resultrow/expr"
	"github.com/canonical/resultrow/internal/schema"
)

// DumpOptions holds the flags of the dump command.
type DumpOptions struct {
	Driver  string
	DSN     string
	Table   string
	Dialect string
	Limit   int
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the rows of a table",
		Long: `Select every declared column of a table and print each row.

The dialect values are converted under is taken from --dialect, else from the
schema file, else from the driver.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd.Context(), rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Driver, "driver", "sqlite3", "database driver (sqlite3|mysql|postgres)")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "data source name")
	cmd.Flags().StringVarP(&opts.Table, "table", "t", "", "table to dump")
	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "dialect override")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of rows, 0 for all")
	_ = cmd.MarkFlagRequired("dsn")
	_ = cmd.MarkFlagRequired("table")

	return cmd
}

func runDump(ctx context.Context, rootOpts *RootOptions, opts *DumpOptions, cmd *cobra.Command) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("cannot dump table %q: %s", opts.Table, err)
		}
	}()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(rootOpts, cmd.ErrOrStderr())

	s, err := loadSchema(rootOpts)
	if err != nil {
		return err
	}
	table, ok := s.Table(opts.Table)
	if !ok {
		return errors.Errorf("table not declared in %s", rootOpts.Schema)
	}
	d, err := pickDialect(opts, s)
	if err != nil {
		return err
	}
	ctx = dialect.NewContext(ctx, d)

	db, err := sqlx.Open(opts.Driver, opts.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	index, query := selectAll(table, opts.Limit)
	logger.WithField("dialect", d.Name()).Debugf("running %s", query)
	rows, err := db.QueryxContext(ctx, query)
	if err != nil {
		return err
	}

	iter := resultrow.NewSQLXIterator(ctx, rows, index, resultrow.WithLogger(logger))
	n := 0
	for iter.Next() {
		n++
		fmt.Fprintln(cmd.OutOrStdout(), iter.Row())
	}
	if err := iter.Close(); err != nil {
		return err
	}
	logger.Debugf("%d rows", n)
	return nil
}

func loadSchema(opts *RootOptions) (*schema.Schema, error) {
	if opts.Schema == "" {
		return nil, errors.New("no schema file, use --schema")
	}
	return schema.LoadFile(opts.Schema)
}

// pickDialect returns the dialect named by the flags, the schema or the
// driver, in that order.
func pickDialect(opts *DumpOptions, s *schema.Schema) (dialect.Dialect, error) {
	if opts.Dialect != "" {
		d, ok := dialect.Lookup(opts.Dialect)
		if !ok {
			return nil, errors.Errorf("unknown dialect %q", opts.Dialect)
		}
		return d, nil
	}
	if s.Dialect != nil {
		return s.Dialect, nil
	}
	d, ok := dialect.Lookup(opts.Driver)
	if !ok {
		return nil, errors.Errorf("no dialect for driver %q, use --dialect", opts.Driver)
	}
	return d, nil
}

// selectAll returns the query selecting the columns of table and the field
// index of its results.
func selectAll(table *expr.Table, limit int) (*resultrow.FieldIndex, string) {
	cols := table.Columns()
	exprs := make([]expr.Expression, len(cols))
	names := make([]string, len(cols))
	for i, c := range cols {
		exprs[i] = c
		names[i] = c.Name
	}
	query := "SELECT " + strings.Join(names, ", ") + " FROM " + table.Name
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	// Columns declared on a table are unique.
	return resultrow.MustFieldIndex(exprs...), query
}
