package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "./config.yaml"

// Load builds the configuration for the server, the console and the
// maintenance commands. Sources, lowest priority first: env-default tags,
// the YAML file, a dotenv file, the process environment.
//
// The dotenv file is ENV_FILE or ./.env and never overrides variables that
// are already set. The YAML file is CONFIG_PATH or ./config.yaml; a missing
// default file is fine, a missing explicit one is an error.
func Load() (*Config, error) {
	if err := loadDotenv(os.Getenv("ENV_FILE")); err != nil {
		return nil, err
	}

	var cfg Config
	path, explicit := configPath()

	switch _, statErr := os.Stat(path); {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	case explicit:
		return nil, fmt.Errorf("config: file %s: %w", path, statErr)
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	cfg.Remote.URL = strings.TrimSpace(cfg.Remote.URL)
	cfg.Remote.Key = strings.TrimSpace(cfg.Remote.Key)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func configPath() (string, bool) {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p, true
	}
	return defaultConfigPath, false
}

func loadDotenv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("config: load %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: load .env: %w", err)
	}
	return nil
}
