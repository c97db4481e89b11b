package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xxxsen/common/logger"

	"notehub/internal/draft"
)

const DefaultBaseURL = "https://notehub-public.goit.study/api"

type Config struct {
	API       APIConfig        `json:"api"`
	DraftPath string           `json:"draft_path"`
	Cache     CacheConfig      `json:"cache"`
	LogConfig logger.LogConfig `json:"log_config"`
	Serve     ServeConfig      `json:"serve"`
}

type APIConfig struct {
	BaseURL string `json:"base_url"`
	Token   string `json:"token"`
}

type CacheConfig struct {
	Size       int `json:"size"`
	TTLSeconds int `json:"ttl_seconds"`
}

type ServeConfig struct {
	Port          int    `json:"port"`
	JWTSecret     string `json:"jwt_secret"`
	JWTTTLHours   int    `json:"jwt_ttl_hours"`
	MaxNotes      int    `json:"max_notes"`
	WriteWindowMS int    `json:"write_window_ms"`
}

// Load reads the optional JSON config file and applies environment
// overrides (NOTEHUB_API_URL, NOTEHUB_TOKEN). An empty path yields a
// default config, so the CLI works with nothing but a token in the env.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()
		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	if v := os.Getenv("NOTEHUB_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("NOTEHUB_TOKEN"); v != "" {
		cfg.API.Token = v
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.DraftPath == "" {
		cfg.DraftPath = defaultDraftPath()
	}
	if cfg.Cache.Size == 0 {
		cfg.Cache.Size = 256
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 60
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = 8080
	}
	if cfg.Serve.JWTSecret == "" {
		cfg.Serve.JWTSecret = "dev-secret"
	}
	if cfg.Serve.JWTTTLHours == 0 {
		cfg.Serve.JWTTTLHours = 72
	}
	if cfg.Serve.MaxNotes == 0 {
		cfg.Serve.MaxNotes = 1000
	}
	if cfg.Serve.WriteWindowMS == 0 {
		cfg.Serve.WriteWindowMS = 200
	}
	return cfg, nil
}

func defaultDraftPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "notehub", draft.StorageKey+".json")
}
