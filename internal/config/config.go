// Package config loads server configuration. Values come from an optional
// YAML file merged with environment variables; environment wins.
package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	ListenAddr string `koanf:"listen_addr"`
	DBPath     string `koanf:"db_path"`
	UploadPath string `koanf:"upload_path"`
	LogLevel   string `koanf:"log_level"`
	LogFile    string `koanf:"log_file"`
}

// Load reads the YAML file at configPath (skipped when empty) and then
// applies environment overrides on top.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		ListenAddr: ":8080",
		DBPath:     "/data/homeinv.db",
		UploadPath: "/data/uploads",
		LogLevel:   "info",
	}

	k := koanf.New(".")
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := k.Unmarshal("", cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	applyEnv(&cfg.ListenAddr, "LISTEN_ADDR")
	applyEnv(&cfg.DBPath, "DB_PATH")
	applyEnv(&cfg.UploadPath, "UPLOAD_PATH")
	applyEnv(&cfg.LogLevel, "LOG_LEVEL")
	applyEnv(&cfg.LogFile, "LOG_FILE")

	return cfg, nil
}

func applyEnv(dst *string, key string) {
	if val, exists := os.LookupEnv(key); exists {
		*dst = val
	}
}
