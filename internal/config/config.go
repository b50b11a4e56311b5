package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"planboard/internal/storage"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultCacheName      = "cache.db"
	DefaultLogName        = "planboard.log"
	DefaultDataPath       = "productivity-data.json"
	DefaultTokenEnv       = "GITHUB_TOKEN"
	ConfigEnv             = "PLANBOARD_CONFIG"
)

type Keymap struct {
	Quit       string `toml:"quit"`
	Up         string `toml:"up"`
	Down       string `toml:"down"`
	PrevDay    string `toml:"prev_day"`
	NextDay    string `toml:"next_day"`
	Today      string `toml:"today"`
	Toggle     string `toml:"toggle"`
	Add        string `toml:"add"`
	Remove     string `toml:"remove"`
	Reschedule string `toml:"reschedule"`
	MoveUp     string `toml:"move_up"`
	MoveDown   string `toml:"move_down"`
	Notes      string `toml:"notes"`
	DailyNote  string `toml:"daily_note"`
	Projects   string `toml:"projects"`
	AddProject string `toml:"add_project"`
	AddSubtask string `toml:"add_subtask"`
	Schedule   string `toml:"schedule"`
	Archive    string `toml:"archive"`
	Delete     string `toml:"delete"`
	Filter     string `toml:"filter"`
	GoToDate   string `toml:"go_to_date"`
	Export     string `toml:"export"`
	Edit       string `toml:"edit"`
	History    string `toml:"history"`
	Progress   string `toml:"progress"`
	ShowDone   string `toml:"show_done"`
	Confirm    string `toml:"confirm"`
	Cancel     string `toml:"cancel"`
}

type Remote struct {
	APIURL   string `toml:"api_url"`
	Owner    string `toml:"owner"`
	Repo     string `toml:"repo"`
	Branch   string `toml:"branch"`
	Path     string `toml:"path"`
	TokenEnv string `toml:"token_env"`
}

type Config struct {
	CachePath    string `toml:"cache_path"`
	LogPath      string `toml:"log_path"`
	Debug        bool   `toml:"debug"`
	ExportDir    string `toml:"export_dir"`
	ExportFormat string `toml:"export_format"`
	Remote       Remote `toml:"remote"`
	Keys         Keymap `toml:"keys"`
}

// ResolveConfigPath returns $PLANBOARD_CONFIG or the file under the user
// config directory.
func ResolveConfigPath() string {
	if p := os.Getenv(ConfigEnv); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "planboard", DefaultConfigFileName)
}

// LoadOrCreate reads path, writing the defaults there first when the file
// does not exist. Relative paths in the file resolve against its directory.
func LoadOrCreate(path string) (Config, error) {
	base := filepath.Dir(path)
	cfg := defaultConfig(base)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		cfg.fill(base)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.fill(base)
	return cfg, nil
}

func (c *Config) fill(base string) {
	def := defaultConfig(base)
	if c.CachePath == "" {
		c.CachePath = def.CachePath
	}
	if c.LogPath == "" {
		c.LogPath = def.LogPath
	}
	if c.ExportDir == "" {
		c.ExportDir = def.ExportDir
	}
	if c.ExportFormat == "" {
		c.ExportFormat = def.ExportFormat
	}
	if c.Remote.APIURL == "" {
		c.Remote.APIURL = def.Remote.APIURL
	}
	if c.Remote.Branch == "" {
		c.Remote.Branch = def.Remote.Branch
	}
	if c.Remote.Path == "" {
		c.Remote.Path = def.Remote.Path
	}
	if c.Remote.TokenEnv == "" {
		c.Remote.TokenEnv = def.Remote.TokenEnv
	}
	c.CachePath = resolve(base, c.CachePath)
	c.LogPath = resolve(base, c.LogPath)
	c.ExportDir = resolve(base, c.ExportDir)
}

func resolve(base, p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// RemoteConfig returns the remote settings with the token read from the
// environment. ok is false when the board should stay local only.
func (c Config) RemoteConfig() (storage.RemoteConfig, bool) {
	rc := storage.RemoteConfig{
		APIURL: c.Remote.APIURL,
		Owner:  c.Remote.Owner,
		Repo:   c.Remote.Repo,
		Branch: c.Remote.Branch,
		Path:   c.Remote.Path,
		Token:  os.Getenv(c.Remote.TokenEnv),
	}
	if rc.Token == "" || rc.Owner == "" || rc.Repo == "" {
		return rc, false
	}
	return rc, true
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig(base string) Config {
	return Config{
		CachePath:    filepath.Join(base, DefaultCacheName),
		LogPath:      filepath.Join(base, DefaultLogName),
		ExportDir:    "exports",
		ExportFormat: "markdown",
		Remote: Remote{
			APIURL:   storage.DefaultAPIURL,
			Branch:   "main",
			Path:     DefaultDataPath,
			TokenEnv: DefaultTokenEnv,
		},
		Keys: Keymap{
			Quit:       "q",
			Up:         "k",
			Down:       "j",
			PrevDay:    "h",
			NextDay:    "l",
			Today:      "t",
			Toggle:     " ",
			Add:        "a",
			Remove:     "x",
			Reschedule: "r",
			MoveUp:     "K",
			MoveDown:   "J",
			Notes:      "n",
			DailyNote:  "N",
			Projects:   "tab",
			AddProject: "P",
			AddSubtask: "A",
			Schedule:   "s",
			Archive:    "z",
			Delete:     "d",
			Filter:     "f",
			GoToDate:   "g",
			Export:     "E",
			Edit:       "e",
			History:    "H",
			Progress:   "u",
			ShowDone:   "c",
			Confirm:    "enter",
			Cancel:     "esc",
		},
	}
}
