package snippet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"

	"temper/internal/logging"
)

// ErrNotFound is returned when a slug has no file in the store.
var ErrNotFound = errors.New("snippet not found")

// Store is a directory of frontmatter snippet files, one per slug.
type Store struct {
	dir string
}

// NewStore opens (creating if needed) the store directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating snippet store: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(slug string) string {
	return filepath.Join(s.dir, slug+".md")
}

// List returns all parseable snippets, sorted by slug. Files that fail to
// parse are skipped with a log entry rather than failing the listing.
func (s *Store) List() ([]*Snippet, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading snippet store: %w", err)
	}
	var snippets []*Snippet
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			logging.StoreDebug("skipping %s: %v", entry.Name(), err)
			continue
		}
		sn, err := Parse(data)
		if err != nil {
			logging.StoreDebug("skipping %s: %v", entry.Name(), err)
			continue
		}
		snippets = append(snippets, sn)
	}
	sort.Slice(snippets, func(i, j int) bool { return snippets[i].Slug < snippets[j].Slug })
	logging.Store("listed %d snippet(s)", len(snippets))
	return snippets, nil
}

// Load reads one snippet by slug.
func (s *Store) Load(slug string) (*Snippet, error) {
	data, err := os.ReadFile(s.path(slug))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
		}
		return nil, fmt.Errorf("reading snippet %q: %w", slug, err)
	}
	return Parse(data)
}

// Save validates and writes a snippet.
func (s *Store) Save(sn *Snippet) error {
	if err := sn.Validate(); err != nil {
		return err
	}
	data, err := sn.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling snippet %q: %w", sn.Slug, err)
	}
	if err := os.WriteFile(s.path(sn.Slug), data, 0644); err != nil {
		return fmt.Errorf("writing snippet %q: %w", sn.Slug, err)
	}
	logging.Store("saved snippet %q", sn.Slug)
	return nil
}

// Remove deletes a snippet file.
func (s *Store) Remove(slug string) error {
	err := os.Remove(s.path(slug))
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	return err
}

// Watch reports external edits to snippet files until ctx is done. The slug
// of each created or modified snippet is passed to onChange.
func (s *Store) Watch(ctx context.Context, onChange func(slug string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", s.dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				name := filepath.Base(event.Name)
				if !strings.HasSuffix(name, ".md") {
					continue
				}
				slug := strings.TrimSuffix(name, ".md")
				logging.StoreDebug("snippet %q changed on disk", slug)
				onChange(slug)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.StoreDebug("watcher error: %v", err)
			}
		}
	}()
	return nil
}
