package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures spotter's runtime settings.
type Config struct {
	APIURL      string
	UserID      string
	DataDir     string
	RestSeconds int
	ProbeEvery  time.Duration
	MetricsAddr string
}

const (
	defaultConfigPath   = "~/.config/spotter/config.toml"
	defaultDataDir      = "~/.local/share/spotter"
	defaultAPIURL       = "http://127.0.0.1:8080"
	defaultRestSeconds  = 90
	defaultProbeSeconds = 5
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:      defaultAPIURL,
		DataDir:     mustExpand(defaultDataDir),
		RestSeconds: defaultRestSeconds,
		ProbeEvery:  defaultProbeSeconds * time.Second,
	}
}

// Load locates and parses the spotter config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL       string `toml:"api_url"`
		UserID       string `toml:"user_id"`
		DataDir      string `toml:"data_dir"`
		RestSeconds  int    `toml:"rest_seconds"`
		ProbeSeconds int    `toml:"probe_seconds"`
		MetricsAddr  string `toml:"metrics_addr"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	cfg.UserID = strings.TrimSpace(raw.UserID)
	if v := strings.TrimSpace(raw.DataDir); v != "" {
		cfg.DataDir = mustExpand(v)
	}
	if raw.RestSeconds > 0 {
		cfg.RestSeconds = raw.RestSeconds
	}
	if raw.ProbeSeconds > 0 {
		cfg.ProbeEvery = time.Duration(raw.ProbeSeconds) * time.Second
	}
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)

	return cfg, nil
}

// DBPath returns the path of the SQLite durable store.
func (c Config) DBPath() string {
	return filepath.Join(c.dataDir(), "spotter.db")
}

// LogPath returns the path of the JSON log file.
func (c Config) LogPath() string {
	return filepath.Join(c.dataDir(), "logs", "spotter.log")
}

func (c Config) dataDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir)
	}
	return c.DataDir
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
