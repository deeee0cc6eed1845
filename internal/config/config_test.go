package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/phobologic/sitepatch/internal/model"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load(t.TempDir(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
	if !model.IsKind(err, model.KindNotFound) {
		t.Errorf("expected not_found kind, got %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `services:
  - window-washing
stylesheet:
  marker: extra.css
`)

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"window-washing"}, cfg.Services); diff != "" {
		t.Errorf("services mismatch (-want +got):\n%s", diff)
	}
	if cfg.Stylesheet.Marker != "extra.css" {
		t.Errorf("marker = %q", cfg.Stylesheet.Marker)
	}
	// Unset fields keep their defaults.
	if cfg.Stylesheet.Anchor != "responsive.css" {
		t.Errorf("anchor = %q, want default", cfg.Stylesheet.Anchor)
	}
	if diff := cmp.Diff([]string{"*build*"}, cfg.Exclude); diff != "" {
		t.Errorf("exclude mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "services: [unclosed"},
		{"bad slug", "services:\n  - Deep Cleaning\n"},
		{"empty services", "services: []\n"},
		{"bad extension", "extension: html\n"},
		{"empty anchor", "stylesheet:\n  anchor: \"\"\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, err := Load(dir, "")
			if err == nil {
				t.Fatal("expected error")
			}
			if !model.IsKind(err, model.KindInvalidConfig) {
				t.Errorf("expected invalid_config kind, got %v", err)
			}
		})
	}
}

func TestDefaultServices(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if len(cfg.Services) != 5 {
		t.Errorf("expected 5 services, got %d", len(cfg.Services))
	}

	// Default must hand out a copy.
	cfg.Services[0] = "changed"
	if DefaultServices[0] != "janitorial-service" {
		t.Error("Default shares the DefaultServices backing array")
	}
}
