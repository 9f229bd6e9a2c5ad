// Package config loads vocabquiz settings from an optional YAML file,
// VOCABQUIZ_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "VOCABQUIZ"

type Config struct {
	Env     string     `mapstructure:"env" validate:"oneof=development production"`
	Learner string     `mapstructure:"learner" validate:"required"`
	DB      DBConfig   `mapstructure:"db"`
	Bank    BankConfig `mapstructure:"bank"`
	HTTP    HTTPConfig `mapstructure:"http"`
	Auth    AuthConfig `mapstructure:"auth"`
	Log     LogConfig  `mapstructure:"log"`
}

type DBConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite postgres"`
	// DSN is a file path or URI for sqlite, a connection URL for postgres.
	// Empty sqlite DSN means the default data-dir database.
	DSN string `mapstructure:"dsn" validate:"required_if=Driver postgres"`
}

type BankConfig struct {
	// Path to an external bank JSON file; empty uses the embedded bank.
	Path string `mapstructure:"path"`
}

type HTTPConfig struct {
	Addr           string        `mapstructure:"addr" validate:"required"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
}

type AuthConfig struct {
	HMACSecret string        `mapstructure:"hmac_secret" validate:"omitempty,min=16"`
	TokenTTL   time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File  string `mapstructure:"file"`
}

// flagKeys maps persistent CLI flags onto config keys.
var flagKeys = map[string]string{
	"learner": "learner",
	"db":      "db.dsn",
	"driver":  "db.driver",
	"bank":    "bank.path",
	"addr":    "http.addr",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("learner", defaultLearner())
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "")
	v.SetDefault("bank.path", "")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cors_origins", []string{})
	v.SetDefault("http.request_timeout", 15*time.Second)
	v.SetDefault("auth.hmac_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Load resolves configuration. configFile may be empty, in which case
// vocabquiz.yaml is searched in the working directory and the user config
// dir; a missing file is not an error. flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("vocabquiz")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "vocabquiz"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks struct tags on cfg.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// IsDevelopment reports whether env is development.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func defaultLearner() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "learner"
}
