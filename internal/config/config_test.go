package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Addr == "" {
		t.Error("default addr should not be empty")
	}
	if cfg.Agent.WallClockSeconds != 300 {
		t.Errorf("expected 300s wall clock default, got %d", cfg.Agent.WallClockSeconds)
	}
	if cfg.Agent.HistoryLimit != 100 {
		t.Errorf("expected history limit 100, got %d", cfg.Agent.HistoryLimit)
	}
	if cfg.Agent.DefaultAutonomy != "moderate" {
		t.Errorf("expected moderate autonomy default, got %q", cfg.Agent.DefaultAutonomy)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Agent.HistoryLimit != 100 {
		t.Errorf("expected defaults for missing file, got history limit %d", cfg.Agent.HistoryLimit)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.Addr = "localhost:9999"
	cfg.Search.Provider = "google_pse"
	cfg.Search.GooglePSE = GooglePSEConfig{APIKey: "k", CX: "cx"}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Addr != "localhost:9999" {
		t.Errorf("addr not round-tripped: %q", loaded.Addr)
	}
	if loaded.Search.Provider != "google_pse" {
		t.Errorf("search provider not round-tripped: %q", loaded.Search.Provider)
	}
}

func TestEnvOverridesProviderKey(t *testing.T) {
	os.Setenv("ANTHROPIC_API_KEY", "from-env")
	defer os.Unsetenv("ANTHROPIC_API_KEY")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Providers.Anthropic.APIKey != "from-env" {
		t.Errorf("env override not applied: %q", cfg.Providers.Anthropic.APIKey)
	}
}

func TestNormalizeClampsZeroValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"agent":{"wall_clock_seconds":0}}`), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Agent.WallClockSeconds != 300 {
		t.Errorf("zero wall clock should normalize to 300, got %d", cfg.Agent.WallClockSeconds)
	}
}
