package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonyos/lfm/internal/toolbox"
	"github.com/simonyos/lfm/internal/tools"
)

var (
	toolsJSON  bool
	toolsNames []string
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools the model can call",
	Long: `List the tools the model can call.

Examples:
  lfm tools                        # Names and descriptions
  lfm tools --json                 # Catalog exactly as the model sees it
  lfm tools --json -t get_weather  # Catalog for a subset`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if !toolsJSON {
			for _, e := range toolbox.Available() {
				fmt.Fprintf(out, "  %-18s %s\n", e.Name, e.Doc)
			}
			return nil
		}

		names := toolsNames
		if len(names) == 0 {
			names = toolbox.Names()
		}
		reg := tools.NewRegistry()
		if err := toolbox.Enable(reg, names...); err != nil {
			return err
		}
		catalog, err := reg.ToolsJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, catalog)
		return nil
	},
}

func init() {
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "Print the JSON catalog")
	toolsCmd.Flags().StringArrayVarP(&toolsNames, "tool", "t", nil, "Restrict the catalog to this tool (repeatable)")
	rootCmd.AddCommand(toolsCmd)
}
