package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"planboard/internal/app"
	"planboard/internal/config"
	"planboard/internal/logging"
	"planboard/internal/storage"
	"planboard/internal/ui"
)

func main() {
	configPath := config.ResolveConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logFile, err := tea.LogToFile(cfg.LogPath, "planboard")
	if err != nil {
		fmt.Printf("failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	loadEnv(cfg.Debug)

	cache, err := storage.OpenCache(cfg.CachePath)
	if err != nil {
		logging.Info("storage", "Local cache unavailable, continuing without it: %v", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	var remote storage.RemoteStore
	if rc, ok := cfg.RemoteConfig(); ok {
		r, err := storage.NewRemote(rc)
		if err != nil {
			logging.Info("storage", "Remote disabled: %v", err)
		} else {
			if login, err := r.User(context.Background()); err != nil {
				logging.Info("storage", "Could not verify token: %v", err)
			} else {
				logging.Info("storage", "Syncing %s/%s as %s", rc.Owner, rc.Repo, login)
			}
			remote = r
		}
	} else {
		logging.Info("storage", "No remote configured, running on the local cache only")
	}

	session, src := app.Start(context.Background(), storage.NewGateway(cache, remote))

	if err := ui.Run(session, cfg, startupNotice(src, remote != nil)); err != nil {
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}

// loadEnv reads the optional .env (remote token, DEBUG) before debug output
// is configured, so values from the file take effect.
func loadEnv(debug bool, files ...string) {
	err := godotenv.Load(files...)
	logging.SetDebug(debug)
	if err != nil {
		logging.Debug("config", "No .env file found, using environment variables")
		return
	}
	logging.Info("config", "Loaded .env file")
}

func startupNotice(src storage.Source, online bool) string {
	switch {
	case src == storage.SourceInitialized:
		return "Created a new board in the remote repository"
	case src == storage.SourcePushed:
		return "Synced changes that were saved locally"
	case src == storage.SourceCache && online:
		return "Remote unavailable, working from the local copy"
	case src == storage.SourceDefault:
		return "Starting with an empty board"
	}
	return ""
}
