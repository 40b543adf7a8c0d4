// Package config resolves ganttboard settings from defaults, an optional
// config file and GANTTBOARD_* environment variables, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
)

var (
	ErrInvalidStore       = errors.New("store must be sqlite or file")
	ErrInvalidBackupLimit = errors.New("backup_limit must be at least 1")
	ErrInvalidDocumentKey = errors.New("document_key must not be empty")
)

// Config holds the resolved settings for one ganttboard process.
type Config struct {
	Store       string `mapstructure:"store"`
	DBPath      string `mapstructure:"db_path"`
	DataDir     string `mapstructure:"data_dir"`
	DocumentKey string `mapstructure:"document_key"`
	BackupLimit int    `mapstructure:"backup_limit"`
	LogFile     string `mapstructure:"log_file"`
	LogLevel    string `mapstructure:"log_level"`
}

// Default returns the built-in settings. Paths live under ~/.ganttboard,
// falling back to the working directory when no home directory is known.
func Default() Config {
	base := ".ganttboard"
	if home, err := os.UserHomeDir(); err == nil {
		base = filepath.Join(home, ".ganttboard")
	}
	return Config{
		Store:       StoreSQLite,
		DBPath:      filepath.Join(base, "ganttboard.db"),
		DataDir:     filepath.Join(base, "data"),
		DocumentKey: "ganttboard",
		BackupLimit: 10,
		LogLevel:    "info",
	}
}

// Load resolves the configuration. path may be empty, in which case only
// defaults and the environment are consulted.
func Load(path string) (Config, error) {
	def := Default()

	v := viper.New()
	v.SetEnvPrefix("GANTTBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("store", def.Store)
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("document_key", def.DocumentKey)
	v.SetDefault("backup_limit", def.BackupLimit)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("log_level", def.LogLevel)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that have no sensible fallback.
func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreFile:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidStore, c.Store)
	}
	if c.BackupLimit < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidBackupLimit, c.BackupLimit)
	}
	if strings.TrimSpace(c.DocumentKey) == "" {
		return ErrInvalidDocumentKey
	}
	return nil
}
