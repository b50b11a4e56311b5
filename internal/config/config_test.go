package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "planboard", "config.toml")

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if cfg.CachePath != filepath.Join(dir, "planboard", DefaultCacheName) {
		t.Errorf("CachePath = %q", cfg.CachePath)
	}
	if cfg.ExportDir != filepath.Join(dir, "planboard", "exports") {
		t.Errorf("ExportDir = %q", cfg.ExportDir)
	}
	if cfg.Keys.Quit != "q" || cfg.Remote.TokenEnv != DefaultTokenEnv {
		t.Errorf("cfg = %+v", cfg)
	}

	again, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.CachePath != cfg.CachePath || again.Keys != cfg.Keys {
		t.Errorf("reload differs: %+v", again)
	}
}

func TestLoadOrCreateOverlaysFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
cache_path = "data/board.db"
export_format = "yaml"

[remote]
owner = "me"
repo = "notes"
token_env = "BOARD_TOKEN"

[keys]
quit = "Q"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if cfg.CachePath != filepath.Join(dir, "data", "board.db") {
		t.Errorf("CachePath = %q", cfg.CachePath)
	}
	if cfg.ExportFormat != "yaml" || cfg.Keys.Quit != "Q" || cfg.Keys.Down != "j" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Remote.Branch != "main" || cfg.Remote.Path != DefaultDataPath {
		t.Errorf("remote = %+v", cfg.Remote)
	}

	if _, ok := cfg.RemoteConfig(); ok {
		t.Error("remote enabled without a token")
	}
	t.Setenv("BOARD_TOKEN", "secret")
	rc, ok := cfg.RemoteConfig()
	if !ok || rc.Token != "secret" || rc.Owner != "me" || rc.Repo != "notes" {
		t.Errorf("RemoteConfig = %+v, %v", rc, ok)
	}
}

func TestLoadOrCreateRejectsBadToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("cache_path = [unterminated"), 0o644)
	if _, err := LoadOrCreate(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestResolveConfigPathFromEnv(t *testing.T) {
	t.Setenv(ConfigEnv, "/tmp/custom.toml")
	if got := ResolveConfigPath(); got != "/tmp/custom.toml" {
		t.Errorf("ResolveConfigPath = %q", got)
	}
}
