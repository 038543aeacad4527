package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"temper/internal/cache"
	"temper/internal/config"
	"temper/internal/gallery"
)

var (
	searchJSON     bool
	searchLanguage string
)

// searchCmd searches the remote gallery, falling back to the local cache
// when the gallery is unreachable.
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the snippet gallery",
	Args:  cobra.MinimumNArgs(1),
	RunE:  searchGallery,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "machine-readable output")
	searchCmd.Flags().StringVar(&searchLanguage, "language", "", "filter by language tag")
}

func searchGallery(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	store, err := cache.Open(config.CachePath(home), cfg.Gallery.CacheTTLDuration())
	if err != nil {
		return err
	}
	defer store.Close()

	client := gallery.NewClient(cfg.Gallery.BaseURL, cfg.Gallery.TimeoutDuration(), logger)
	results, err := client.Search(cmd.Context(), query, searchLanguage)
	if err != nil {
		logger.Warn("gallery unreachable, using cache", zap.Error(err))
		results, err = store.Search(query, searchLanguage)
		if err != nil {
			return err
		}
		if !searchJSON {
			fmt.Fprintln(os.Stderr, "gallery unreachable; showing cached results")
		}
	} else {
		for _, sn := range results {
			if err := store.Put(sn); err != nil {
				logger.Debug("cache write failed", zap.String("slug", sn.Slug), zap.Error(err))
			}
		}
	}

	if searchJSON {
		data, err := json.Marshal(results)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, sn := range results {
		printSnippetLine(sn)
	}
	return nil
}
