package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"temper/internal/config"
	"temper/internal/engine"
	"temper/internal/snippet"
)

var newLanguage string

// newCmd scaffolds a local snippet file.
var newCmd = &cobra.Command{
	Use:   "new <slug>",
	Short: "Create a new local snippet",
	Args:  cobra.ExactArgs(1),
	RunE:  newSnippet,
}

func init() {
	newCmd.Flags().StringVar(&newLanguage, "language", engine.ExecutableLanguage, "language tag")
}

func newSnippet(cmd *cobra.Command, args []string) error {
	slug := args[0]

	store, err := snippet.NewStore(config.SnippetsDir(home))
	if err != nil {
		return err
	}
	if _, err := store.Load(slug); err == nil {
		return fmt.Errorf("snippet %q already exists", slug)
	}

	sn := &snippet.Snippet{
		Slug:        slug,
		Language:    newLanguage,
		Description: "describe what this snippet does",
		Params: []snippet.Param{
			{Name: "str", Type: "string", Required: true},
		},
		Source: `strings.ToUpper(str)`,
	}
	if err := store.Save(sn); err != nil {
		return err
	}

	fmt.Printf("created %s\n", filepath.Join(config.SnippetsDir(home), slug+".md"))
	return nil
}
