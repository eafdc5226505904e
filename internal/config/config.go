// Package config loads server runtime settings from environment
// variables, with an optional .env file for local development.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all server settings.
type Config struct {
	AppName string
	Addr    string

	// Upload limits
	MaxFileSizeMB int

	// CORS
	AllowedOrigins []string

	// Analysis defaults (overridable per request via form fields)
	DefaultTopN      int
	MinWordLength    int
	MinMessageLength int
	MinMessageCount  int

	// Data files
	StopwordsPath string

	// Demo mode
	DemoEnabled      bool
	DemoFilename     string
	DemoResponsePath string
	DemoDelaySeconds float64

	// Optional archive database; empty disables archiving.
	ArchivePath string

	LogLevel string
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TALKTREND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app_name", "talktrend")
	v.SetDefault("addr", ":8080")
	v.SetDefault("max_file_size_mb", 50)
	v.SetDefault("allowed_origins", "http://localhost:3000")
	v.SetDefault("default_top_n", 50)
	v.SetDefault("min_word_length", 2)
	v.SetDefault("min_message_length", 2)
	v.SetDefault("min_message_count", 2)
	v.SetDefault("stopwords_path", "data/stopwords.yaml")
	v.SetDefault("demo_enabled", false)
	v.SetDefault("demo_filename", "demo.txt")
	v.SetDefault("demo_response_path", "data/demo_response.json")
	v.SetDefault("demo_delay_seconds", 2.0)
	v.SetDefault("archive_path", "")
	v.SetDefault("log_level", "info")

	cfg := &Config{
		AppName:          v.GetString("app_name"),
		Addr:             v.GetString("addr"),
		MaxFileSizeMB:    v.GetInt("max_file_size_mb"),
		AllowedOrigins:   splitOrigins(v.GetString("allowed_origins")),
		DefaultTopN:      v.GetInt("default_top_n"),
		MinWordLength:    v.GetInt("min_word_length"),
		MinMessageLength: v.GetInt("min_message_length"),
		MinMessageCount:  v.GetInt("min_message_count"),
		StopwordsPath:    v.GetString("stopwords_path"),
		DemoEnabled:      v.GetBool("demo_enabled"),
		DemoFilename:     v.GetString("demo_filename"),
		DemoResponsePath: v.GetString("demo_response_path"),
		DemoDelaySeconds: v.GetFloat64("demo_delay_seconds"),
		ArchivePath:      v.GetString("archive_path"),
		LogLevel:         v.GetString("log_level"),
	}

	if cfg.MaxFileSizeMB < 1 {
		return nil, fmt.Errorf("max_file_size_mb must be at least 1, got %d", cfg.MaxFileSizeMB)
	}
	if cfg.DefaultTopN < 1 {
		return nil, fmt.Errorf("default_top_n must be at least 1, got %d", cfg.DefaultTopN)
	}
	return cfg, nil
}

// MaxFileSizeBytes returns the upload cap in bytes.
func (c *Config) MaxFileSizeBytes() int {
	return c.MaxFileSizeMB * 1024 * 1024
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
