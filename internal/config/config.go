// Package config loads the flashcards configuration from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverYAML   = "yaml"
	DriverBolt   = "bolt"
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Review   ReviewConfig   `mapstructure:"review"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Outputs  OutputsConfig  `mapstructure:"outputs"`
}

type StorageConfig struct {
	Driver        string `mapstructure:"driver" validate:"required,oneof=yaml bolt mysql sqlite"`
	YAMLDirectory string `mapstructure:"yaml_directory"`
	BoltPath      string `mapstructure:"bolt_path"`
	RetryAttempts uint   `mapstructure:"retry_attempts" validate:"gte=1,lte=10"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
	SQLitePath      string            `mapstructure:"sqlite_path"`
}

type ServerConfig struct {
	Port                   int        `mapstructure:"port" validate:"gte=1,lte=65535"`
	ShutdownTimeoutSeconds int        `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
	CORS                   CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type ReviewConfig struct {
	UserID               string `mapstructure:"user_id"`
	FetchThrottleSeconds int    `mapstructure:"fetch_throttle_seconds" validate:"gte=0"`
}

type RemoteConfig struct {
	BaseURL        string `mapstructure:"base_url" validate:"omitempty,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=1"`
}

type OutputsConfig struct {
	ExportDirectory string `mapstructure:"export_directory"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/flashcards")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("storage.driver", DriverYAML)
	v.SetDefault("storage.yaml_directory", filepath.Join("data", "flashcards"))
	v.SetDefault("storage.bolt_path", filepath.Join("data", "flashcards.db"))
	v.SetDefault("storage.retry_attempts", 3)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "flashcards")
	v.SetDefault("database.username", "user")
	v.SetDefault("database.sqlite_path", filepath.Join("data", "flashcards.sqlite"))
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("review.fetch_throttle_seconds", 60)
	v.SetDefault("remote.base_url", "http://localhost:8080")
	v.SetDefault("remote.timeout_seconds", 10)
	v.SetDefault("outputs.export_directory", filepath.Join("outputs", "decks"))

	// Secrets and per-user values come from the environment
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("review.user_id", "FLASHCARDS_USER_ID"); err != nil {
		return nil, fmt.Errorf("failed to bind FLASHCARDS_USER_ID environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("validate configuration: %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

func (c ReviewConfig) FetchThrottle() time.Duration {
	return time.Duration(c.FetchThrottleSeconds) * time.Second
}

func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

func (c RemoteConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
