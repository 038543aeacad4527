package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"temper/internal/config"
	"temper/internal/snippet"
)

// showCmd prints a snippet's schema and source.
var showCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Show a snippet's parameters and source",
	Args:  cobra.ExactArgs(1),
	RunE:  showSnippet,
}

func showSnippet(cmd *cobra.Command, args []string) error {
	store, err := snippet.NewStore(config.SnippetsDir(home))
	if err != nil {
		return err
	}
	sn, err := store.Load(args[0])
	if err != nil {
		return err
	}

	printSnippetLine(sn)
	if len(sn.Params) > 0 {
		fmt.Println()
		for _, p := range sn.Params {
			line := fmt.Sprintf("  --%s=<%s>", p.Name, p.Type)
			if p.Required {
				line += " (required)"
			}
			if p.Default != nil {
				line += fmt.Sprintf(" [default: %v]", p.Default)
			}
			if p.Description != "" {
				line += "  " + p.Description
			}
			fmt.Println(line)
		}
	}
	fmt.Println()
	fmt.Println(sn.Source)
	return nil
}
