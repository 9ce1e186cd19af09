package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonyos/lfm/internal/config"
	"github.com/simonyos/lfm/internal/persona"
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List available personas",
	Long: `List personas found in ~/.config/lfm/personas and ./.lfm/personas.

A persona is a markdown file with YAML frontmatter; its body becomes the
system prompt. Use one with 'lfm chat --persona <name>'.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		personas, err := persona.NewLoader(config.PersonaPaths()).LoadAll()
		if err != nil {
			return err
		}
		if len(personas) == 0 {
			fmt.Fprintln(out, "No personas found.")
			for _, p := range config.PersonaPaths() {
				fmt.Fprintf(out, "  searched %s\n", p)
			}
			return nil
		}

		for _, p := range personas {
			fmt.Fprintf(out, "  %-16s %s\n", p.Name, p.Description)
			if len(p.Tools) > 0 {
				fmt.Fprintf(out, "  %-16s tools: %v\n", "", p.Tools)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(personasCmd)
}
