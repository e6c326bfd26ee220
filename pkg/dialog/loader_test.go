package dialog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoaderDefaultsWithoutPath(t *testing.T) {
	l := NewLoader("")
	if err := l.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.Catalog().Welcome != DefaultCatalog().Welcome {
		t.Error("empty path must keep the compiled-in defaults")
	}
}

func TestLoaderOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")

	yaml := "welcome: \"Hola de nuevo\"\nask_event_name: \"¿Nombre?\"\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	l := NewLoader(path)
	if err := l.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	c := l.Catalog()
	if c.Welcome != "Hola de nuevo" {
		t.Errorf("welcome = %q", c.Welcome)
	}
	if c.AskEventName != "¿Nombre?" {
		t.Errorf("ask_event_name = %q", c.AskEventName)
	}
	// Entries absent from the file keep their defaults.
	if c.Goodbye != DefaultCatalog().Goodbye {
		t.Errorf("goodbye = %q, want default", c.Goodbye)
	}
}

func TestLoaderMissingFile(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "nope.yaml"))
	if err := l.Load(); err == nil {
		t.Error("expected an error for a missing catalog file")
	}
	// The catalog stays usable.
	if l.Catalog().Welcome == "" {
		t.Error("catalog lost its defaults after a failed load")
	}
}

func TestLoaderBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	if err := os.WriteFile(path, []byte("welcome: [broken"), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	l := NewLoader(path)
	if err := l.Load(); err == nil {
		t.Error("expected a parse error")
	}
	if l.Catalog().Welcome != DefaultCatalog().Welcome {
		t.Error("failed load must not clobber the catalog")
	}
}
