package iterate

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("a missing config file is not an error: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reforge.yaml")
	content := "max_iterations: 4\nmodel: claude-3-5-sonnet-20241022\nprovider: anthropic\nexclude:\n  - node_modules\ncommand_timeout_ms: 30000\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxIterations != 4 {
		t.Errorf("MaxIterations = %d", cfg.MaxIterations)
	}
	if cfg.Provider != "anthropic" || cfg.Model != "claude-3-5-sonnet-20241022" {
		t.Errorf("provider/model = %q/%q", cfg.Provider, cfg.Model)
	}
	if len(cfg.Exclude) != 1 || cfg.Exclude[0] != "node_modules" {
		t.Errorf("Exclude = %v", cfg.Exclude)
	}
	if cfg.CommandTimeoutMs != 30000 {
		t.Errorf("CommandTimeoutMs = %d", cfg.CommandTimeoutMs)
	}
}

func TestLoadConfigClampsIterations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reforge.yaml")
	if err := os.WriteFile(path, []byte("max_iterations: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxIterations != 1 {
		t.Errorf("MaxIterations = %d, want clamp to 1", cfg.MaxIterations)
	}
}

func TestLoadConfigRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reforge.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- not yaml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected an error for malformed yaml")
	}
}
