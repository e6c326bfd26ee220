package dialog

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Loader loads and optionally hot-reloads the prompt catalog from a YAML
// file. Entries missing from the file keep their compiled-in defaults.
type Loader struct {
	path string

	mu      sync.RWMutex
	catalog *Catalog
}

// NewLoader creates a loader for the given catalog file. An empty path means
// defaults only.
func NewLoader(path string) *Loader {
	return &Loader{path: path, catalog: DefaultCatalog()}
}

// Catalog returns the currently loaded catalog.
func (l *Loader) Catalog() *Catalog {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.catalog
}

// Load reads the catalog file and merges it over the defaults.
func (l *Loader) Load() error {
	if l.path == "" {
		return nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("read prompt catalog %q: %w", l.path, err)
	}

	var overlay Catalog
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse prompt catalog %q: %w", l.path, err)
	}

	merged := merge(DefaultCatalog(), &overlay)

	l.mu.Lock()
	l.catalog = merged
	l.mu.Unlock()

	return nil
}

// merge overlays non-empty fields of over onto base.
func merge(base, over *Catalog) *Catalog {
	out := *base
	ov := reflect.ValueOf(over).Elem()
	dst := reflect.ValueOf(&out).Elem()
	for i := 0; i < ov.NumField(); i++ {
		if s := ov.Field(i).String(); s != "" {
			dst.Field(i).SetString(s)
		}
	}
	return &out
}

// WatchAndReload watches the catalog file's directory and reloads on writes.
// Blocks until done is closed.
func (l *Loader) WatchAndReload(done <-chan struct{}) error {
	if l.path == "" {
		<-done
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		return fmt.Errorf("watch dir %q: %w", filepath.Dir(l.path), err)
	}

	for {
		select {
		case <-done:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) &&
				filepath.Clean(event.Name) == filepath.Clean(l.path) {
				l.Load()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
