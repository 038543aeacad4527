package main

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"temper/internal/config"
	"temper/internal/snippet"
)

var (
	listJSON     bool
	listLanguage string
)

// listCmd lists local snippets
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List local snippets",
	RunE:  listSnippets,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "machine-readable output")
	listCmd.Flags().StringVar(&listLanguage, "language", "", "filter by language tag")
}

var (
	slugStyle = lipgloss.NewStyle().Bold(true)
	langStyle = lipgloss.NewStyle().Faint(true)
	descStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func listSnippets(cmd *cobra.Command, args []string) error {
	store, err := snippet.NewStore(config.SnippetsDir(home))
	if err != nil {
		return err
	}
	snippets, err := store.List()
	if err != nil {
		return err
	}
	if listLanguage != "" {
		filtered := snippets[:0]
		for _, sn := range snippets {
			if sn.Language == listLanguage {
				filtered = append(filtered, sn)
			}
		}
		snippets = filtered
	}

	if listJSON {
		data, err := json.Marshal(snippets)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if len(snippets) == 0 {
		fmt.Println("no snippets; create one with `temper new <slug>` or fetch with `temper get <slug>`")
		return nil
	}
	for _, sn := range snippets {
		printSnippetLine(sn)
	}
	return nil
}

func printSnippetLine(sn *snippet.Snippet) {
	line := slugStyle.Render(sn.Slug) + " " + langStyle.Render("("+sn.Language+")")
	if sn.Description != "" {
		line += "  " + descStyle.Render(sn.Description)
	}
	fmt.Println(line)
}
