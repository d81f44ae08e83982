package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Lang configures where dictionaries live and which one is active.
type Lang struct {
	Dir     string `toml:"dir"`
	Current string `toml:"current"`
}

// Config is the full bot configuration.
type Config struct {
	Token  string `toml:"token"`
	Author string `toml:"author"` // user id credited in leaderboard footers
	DBPath string `toml:"db_path"`
	Lang   Lang   `toml:"lang"`
}

// Load reads the TOML config file and applies environment overrides. A .env
// file in the working directory, if present, is folded into the environment
// first so the token can stay out of the config file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBPath: "reactboard.db",
		Lang:   Lang{Dir: "lang", Current: "en"},
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("REACTBOARD_AUTHOR"); v != "" {
		cfg.Author = v
	}
	if v := os.Getenv("REACTBOARD_LANG"); v != "" {
		cfg.Lang.Current = v
	}

	if cfg.Token == "" {
		return nil, fmt.Errorf("no bot token: set token in %s or DISCORD_TOKEN", path)
	}
	return cfg, nil
}
