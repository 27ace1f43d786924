package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "MALIM_CONFIG"
	dataDirEnv    = "MALIM_DATA_DIR"
	ttsURLEnv     = "MALIM_TTS_URL"

	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

var ErrInvalidBackend = errors.New("storage.backend must be 'json' or 'sqlite'")

// Config holds application-level settings. Analysis credentials are not here;
// those live in the persisted snapshot and are edited through the UI.
type Config struct {
	DataDir    string        `yaml:"dataDir"`
	Storage    StorageConfig `yaml:"storage"`
	DebounceMS int           `yaml:"debounceMs"`
	Logging    LoggingConfig `yaml:"logging"`
	TTS        TTSConfig     `yaml:"tts"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type TTSConfig struct {
	URL string `yaml:"url"`
}

func defaults() Config {
	return Config{
		DataDir:    "data",
		Storage:    StorageConfig{Backend: BackendJSON},
		DebounceMS: 500,
		Logging:    LoggingConfig{Level: "info"},
	}
}

// Load reads the yaml config named by MALIM_CONFIG (default config.yaml),
// falling back to defaults when the file is absent, then applies env
// overrides.
func Load() (Config, error) {
	cfg := defaults()

	path := os.Getenv(configPathEnv)
	if path == "" {
		path = "config.yaml"
	}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults are a complete configuration.
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv(dataDirEnv); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(ttsURLEnv); v != "" {
		cfg.TTS.URL = v
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendJSON
	}
	if cfg.Storage.Backend != BackendJSON && cfg.Storage.Backend != BackendSQLite {
		return Config{}, ErrInvalidBackend
	}
	if cfg.DebounceMS <= 0 {
		cfg.DebounceMS = 500
	}
	return cfg, nil
}
