package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	fileName  = "config"
	fileType  = "yaml"
	envPrefix = "CVKIT"
	homeDir   = ".cvkit"
)

// Config holds the settings shared by the cvkit commands. Precedence,
// lowest to highest: defaults, .env file, config file, CVKIT_* env
// vars, flags.
type Config struct {
	// DatasetsURL is the page the scrape command reads.
	DatasetsURL string
	// Email is the contact address sent with scrape requests, the
	// address the datasets page asks for before handing out links.
	Email string
	// CorpusVersion restricts scraping to one release ("21.0").
	CorpusVersion string
	// Column is the metadata header holding clip filenames.
	Column string
	// OnConflict is the default link conflict policy.
	OnConflict string
	// Concurrency bounds simultaneous downloads.
	Concurrency int
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Dir returns the path to the cvkit config directory (~/.cvkit).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", homeDir)
	}
	return filepath.Join(home, homeDir)
}

// FilePath returns the full path to the config file (~/.cvkit/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// Load builds the configuration. cfgFile overrides the default config
// file location; a missing config file is not an error.
func Load(cfgFile string) (Config, error) {
	// Best-effort .env load so CVKIT_* vars can live next to the data.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("datasets_url", "https://commonvoice.mozilla.org/en/datasets")
	v.SetDefault("email", "")
	v.SetDefault("corpus_version", "21.0")
	v.SetDefault("column", "path")
	v.SetDefault("on_conflict", "skip")
	v.SetDefault("concurrency", 4)
	v.SetDefault("log_level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigFile(FilePath())
	}
	v.SetConfigType(fileType)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// The default config file is optional; an explicit one is not.
		if cfgFile != "" {
			return Config{}, fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
	}

	return Config{
		DatasetsURL:   v.GetString("datasets_url"),
		Email:         v.GetString("email"),
		CorpusVersion: v.GetString("corpus_version"),
		Column:        v.GetString("column"),
		OnConflict:    v.GetString("on_conflict"),
		Concurrency:   v.GetInt("concurrency"),
		LogLevel:      v.GetString("log_level"),
	}, nil
}
