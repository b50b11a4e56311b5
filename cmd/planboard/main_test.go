package main

import (
	"os"
	"path/filepath"
	"testing"

	"planboard/internal/logging"
	"planboard/internal/storage"
)

func TestStartupNotice(t *testing.T) {
	tests := []struct {
		src    storage.Source
		online bool
		want   string
	}{
		{storage.SourcePushed, true, "Synced changes that were saved locally"},
		{storage.SourceCache, true, "Remote unavailable, working from the local copy"},
		{storage.SourceCache, false, ""},
		{storage.SourceInitialized, true, "Created a new board in the remote repository"},
		{storage.SourceRemote, true, ""},
		{storage.SourceDefault, false, "Starting with an empty board"},
	}
	for _, tt := range tests {
		if got := startupNotice(tt.src, tt.online); got != tt.want {
			t.Errorf("startupNotice(%q, %v) = %q, want %q", tt.src, tt.online, got, tt.want)
		}
	}
}

func TestLoadEnvEnablesDebugFromFile(t *testing.T) {
	// Register a restore, then clear the variable so the file can set it.
	t.Setenv("DEBUG", "")
	os.Unsetenv("DEBUG")
	t.Cleanup(func() {
		os.Unsetenv("DEBUG")
		logging.SetDebug(false)
	})

	env := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(env, []byte("DEBUG=true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	loadEnv(false, env)
	if !logging.DebugEnabled() {
		t.Error("DEBUG=true from .env was ignored")
	}
}

func TestLoadEnvWithoutFile(t *testing.T) {
	t.Setenv("DEBUG", "")
	t.Cleanup(func() { logging.SetDebug(false) })

	loadEnv(true, filepath.Join(t.TempDir(), "missing.env"))
	if !logging.DebugEnabled() {
		t.Error("config debug flag lost when .env is missing")
	}
}
