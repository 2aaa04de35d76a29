// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package cli implements the rowdump command, which reads the rows of a
// declared table and prints them as result rows.
package cli

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	// Drivers selectable with --driver.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Schema  string
}

// NewRootCommand creates the root command of rowdump.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rowdump",
		Short: "Print the rows of a declared table",
		Long: `rowdump reads the rows of a table declared in a YAML schema file and
prints each of them as a result row, showing how the values are addressed
and converted.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVarP(&opts.Schema, "schema", "s", "", "path to the YAML schema file")

	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewTablesCommand(opts))

	return cmd
}

// newLogger returns the logger diagnostics are written to.
func newLogger(opts *RootOptions, w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}
