// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Test        TestConfig        `toml:"test"`
	Certificate CertificateConfig `toml:"certificate"`
	Log         LogConfig         `toml:"log"`
}

// TestConfig maps typing test settings.
type TestConfig struct {
	Lang       *string  `toml:"lang"`
	Level      *string  `toml:"level"`
	Lesson     *int     `toml:"lesson"`
	Topic      *int     `toml:"topic"`
	TimeLimit  *int     `toml:"time-limit"`
	Unit       *string  `toml:"unit"`
	WordList   *string  `toml:"wordlist"`
	Words      *int     `toml:"words"`
	CapsPct    *float64 `toml:"caps"`
	PunctPct   *float64 `toml:"punct"`
	PunctSet   *string  `toml:"punct-set"`
	FocusWeak  *bool    `toml:"focus-weak"`
	WeakTop    *int     `toml:"weak-top"`
	WeakFactor *float64 `toml:"weak-factor"`
	WeakWindow *int     `toml:"weak-window"`
}

// CertificateConfig holds default identity fields and the output directory.
type CertificateConfig struct {
	Name      *string `toml:"name"`
	Address   *string `toml:"address"`
	Photo     *string `toml:"photo"`
	Signature *string `toml:"signature"`
	OutDir    *string `toml:"out-dir"`
}

// LogConfig selects log level and format.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv loads an optional .env file and lets TYPECERT_LOG_LEVEL and
// TYPECERT_LOG_FORMAT override the log section.
func (c *FileConfig) ApplyEnv() {
	_ = godotenv.Load()
	if v := os.Getenv("TYPECERT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("TYPECERT_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}
