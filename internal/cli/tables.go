// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/canonical/resultrow/expr"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables declared in the schema file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchema(rootOpts)
			if err != nil {
				return err
			}
			for _, t := range s.Tables() {
				printTable(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
}

func printTable(w io.Writer, t *expr.Table) {
	fmt.Fprintln(w, t.Name)
	for _, c := range t.Columns() {
		line := "  " + c.Name + " " + c.Type.SQLType()
		if c.Type.Nullable() {
			line += " NULL"
		}
		if _, ok := expr.IDColumnOf(c); ok {
			line += " (id)"
		}
		if c.DatabaseDefault != nil {
			line += " DEFAULT " + c.DatabaseDefault.String()
		}
		fmt.Fprintln(w, line)
	}
}
