// Package config loads cadence settings from defaults, an optional YAML file
// and CADENCE_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ewilliams-labs/cadence/internal/core/analysis"
)

const (
	EnvPrefix = "CADENCE"
	FileName  = "cadence"
)

// Feature provider names accepted by features.provider.
const (
	ProviderNone    = "none"
	ProviderSpotify = "spotify"
	ProviderOllama  = "ollama"
)

// Config represents the application configuration
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Server   ServerConfig   `mapstructure:"server"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Features FeaturesConfig `mapstructure:"features"`
	Spotify  SpotifyConfig  `mapstructure:"spotify"`
	Ollama   OllamaConfig   `mapstructure:"ollama"`
	Decoder  DecoderConfig  `mapstructure:"decoder"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// AnalysisConfig contains the analysis engine and enrichment settings
type AnalysisConfig struct {
	OnsetWindow         int           `mapstructure:"onset_window"`
	OnsetHop            int           `mapstructure:"onset_hop"`
	ChromaFrame         int           `mapstructure:"chroma_frame"`
	ConfidenceThreshold float64       `mapstructure:"confidence_threshold"`
	Enrich              bool          `mapstructure:"enrich"`
	Workers             int           `mapstructure:"workers"`
	TrackTimeout        time.Duration `mapstructure:"track_timeout"`
}

// Params returns engine parameters with the configured sizes applied over
// the defaults.
func (a AnalysisConfig) Params() analysis.Params {
	p := analysis.DefaultParams()
	p.OnsetWindow = a.OnsetWindow
	p.OnsetHop = a.OnsetHop
	p.ChromaFrame = a.ChromaFrame
	p.ConfidenceThreshold = a.ConfidenceThreshold
	return p
}

type FeaturesConfig struct {
	Provider string `mapstructure:"provider"`
}

type SpotifyConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	TokenURL      string        `mapstructure:"token_url"`
	ClientID      string        `mapstructure:"client_id"`
	ClientSecret  string        `mapstructure:"client_secret"`
	MaxRetries    int           `mapstructure:"max_retries"`
	RetryBackoff  time.Duration `mapstructure:"retry_backoff"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
}

type OllamaConfig struct {
	Host  string `mapstructure:"host"`
	Model string `mapstructure:"model"`
}

type DecoderConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultDir is the directory searched for cadence.yaml when no file is given.
func DefaultDir() (string, error) {
	dir, err := homedir.Expand("~/.config/cadence")
	if err != nil {
		return "", fmt.Errorf("config: resolve home directory: %w", err)
	}
	return dir, nil
}

// NewViper returns a viper instance carrying the defaults, environment
// overrides and the config file. An explicit configFile must exist; the
// default location is optional.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.AddConfigPath(".")
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config: %w", err)
		}
	}
	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unable to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Storage.Driver != "sqlite" {
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("config: storage path is required")
	}
	if c.Analysis.OnsetWindow <= 0 || c.Analysis.OnsetHop <= 0 || c.Analysis.ChromaFrame <= 0 {
		return fmt.Errorf("config: analysis frame sizes must be positive")
	}
	if c.Analysis.ConfidenceThreshold < 0 || c.Analysis.ConfidenceThreshold > 1 {
		return fmt.Errorf("config: confidence threshold must be between 0 and 1")
	}
	if c.Analysis.Workers < 1 {
		return fmt.Errorf("config: analysis workers must be at least 1")
	}
	switch c.Features.Provider {
	case ProviderNone, ProviderSpotify, ProviderOllama:
	default:
		return fmt.Errorf("config: unknown feature provider %q", c.Features.Provider)
	}
	if c.Features.Provider == ProviderSpotify && (c.Spotify.ClientID == "") != (c.Spotify.ClientSecret == "") {
		return fmt.Errorf("config: spotify client id and secret must be set together")
	}
	return nil
}

// ParseLevel maps a log.level value onto a logging level.
func ParseLevel(s string) (logging.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return logging.DebugLevel, nil
	case "", "info":
		return logging.InfoLevel, nil
	case "warn", "warning":
		return logging.WarnLevel, nil
	case "error":
		return logging.ErrorLevel, nil
	}
	return logging.InfoLevel, fmt.Errorf("config: unknown log level %q", s)
}
