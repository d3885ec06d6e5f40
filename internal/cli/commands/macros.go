package commands

import (
	"github.com/spf13/cobra"
)

// NewMacrosCommand creates the macros command.
func NewMacrosCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "macros",
		Short: "List available macros",
		Long: `List the built-in macros and any user macros loaded from the macros
directory, with their signatures.`,
		Example: `  leapmacro macros
  leapmacro macros -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			macros := cc.Evaluator.Registry.List()
			rows := make([][]string, 0, len(macros))
			for _, m := range macros {
				rows = append(rows, []string{m.Name, m.Usage(), m.Doc})
			}
			return renderRows(cmd.OutOrStdout(), cc.Cfg.Output, []string{"name", "usage", "description"}, rows)
		},
	}
}
