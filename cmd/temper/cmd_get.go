package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"temper/internal/cache"
	"temper/internal/config"
	"temper/internal/gallery"
	"temper/internal/snippet"
)

// getCmd fetches snippets from the gallery into the local store.
var getCmd = &cobra.Command{
	Use:   "get <slug>...",
	Short: "Fetch snippets from the gallery into the local store",
	Args:  cobra.MinimumNArgs(1),
	RunE:  getSnippets,
}

func getSnippets(cmd *cobra.Command, args []string) error {
	store, err := snippet.NewStore(config.SnippetsDir(home))
	if err != nil {
		return err
	}
	db, err := cache.Open(config.CachePath(home), cfg.Gallery.CacheTTLDuration())
	if err != nil {
		return err
	}
	defer db.Close()

	client := gallery.NewClient(cfg.Gallery.BaseURL, cfg.Gallery.TimeoutDuration(), logger)
	snippets, err := client.GetAll(cmd.Context(), args)
	if err != nil {
		return err
	}

	for _, sn := range snippets {
		if err := store.Save(sn); err != nil {
			return err
		}
		if err := db.Put(sn); err != nil {
			logger.Debug("cache write failed", zap.String("slug", sn.Slug), zap.Error(err))
		}
		fmt.Printf("fetched %s\n", sn.Slug)
	}
	return nil
}
