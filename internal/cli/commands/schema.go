package commands

import (
	"fmt"

	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/spf13/cobra"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <relation>",
		Short: "Show the columns resolved for a relation",
		Long: `Resolve a relation through the schema file and target catalog and print
its columns in the order STAR would project them.`,
		Example: `  leapmacro schema orders
  leapmacro schema analytics.public.orders -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if cc.Resolver == nil {
				return fmt.Errorf("no schema source configured\nHint: set schema_file or target in leapmacro.yaml")
			}

			cols, err := cc.Resolver.ColumnsFor(cmd.Context(), core.Table(args[0]))
			if err != nil {
				return err
			}

			rows := make([][]string, 0, cols.Len())
			for _, name := range cols.Names() {
				typ, _ := cols.Get(name)
				if typ == "" {
					typ = "?"
				}
				rows = append(rows, []string{name, typ})
			}
			return renderRows(cmd.OutOrStdout(), cc.Cfg.Output, []string{"column", "type"}, rows)
		},
	}
}
