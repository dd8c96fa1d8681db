// Package config provides configuration loading and validation for the CLI.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "JOBMARKET"

// Config represents the CLI configuration. Values are layered as defaults,
// then the config file, then environment variables, then command-line flags.
type Config struct {
	DatabaseURL string `mapstructure:"database_url" validate:"omitempty,database_url"` // postgres://, postgresql:// or sqlite://
	SkillsFile  string `mapstructure:"skills_file"`                                    // YAML skill table replacing the built-in one

	// Record handling
	StrictRecords     bool `mapstructure:"strict_records"`       // Reject records without title or company
	AbortOnFirstError bool `mapstructure:"abort_on_first_error"` // Stop the batch at the first failed record

	// Logging
	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=text json"`
	Verbose   bool   `mapstructure:"verbose"`

	JSearch JSearchConfig `mapstructure:"jsearch"`
}

// JSearchConfig configures the JSearch search API feed.
type JSearchConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	Host     string        `mapstructure:"host" validate:"required,hostname"`
	BaseURL  string        `mapstructure:"base_url" validate:"required,url"`
	Query    string        `mapstructure:"query"`
	Country  string        `mapstructure:"country" validate:"omitempty,len=2,alpha"`
	NumPages int           `mapstructure:"num_pages" validate:"min=1,max=20"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// ErrNoDatabase is returned by RequireDatabase when no database URL is set.
var ErrNoDatabase = errors.New("database URL is required: set --database-url, DATABASE_URL or database_url in the config file")

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"database-url":   "database_url",
	"skills-file":    "skills_file",
	"strict":         "strict_records",
	"abort-on-error": "abort_on_first_error",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"verbose":        "verbose",
	"query":          "jsearch.query",
	"country":        "jsearch.country",
	"pages":          "jsearch.num_pages",
}

// envAliases are unprefixed variable names accepted alongside the prefixed ones.
var envAliases = map[string]string{
	"database_url":    "DATABASE_URL",
	"jsearch.api_key": "JSEARCH_API_KEY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_url", "")
	v.SetDefault("skills_file", "")
	v.SetDefault("strict_records", false)
	v.SetDefault("abort_on_first_error", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("verbose", false)
	v.SetDefault("jsearch.api_key", "")
	v.SetDefault("jsearch.host", "jsearch.p.rapidapi.com")
	v.SetDefault("jsearch.base_url", "https://jsearch.p.rapidapi.com")
	v.SetDefault("jsearch.query", "data analyst")
	v.SetDefault("jsearch.country", "ca")
	v.SetDefault("jsearch.num_pages", 1)
	v.SetDefault("jsearch.timeout", 30*time.Second)
}

// Load builds the configuration. path names an optional YAML or JSON file;
// flags, when non-nil, override everything else for the flags that were set.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, alias := range envAliases {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, alias); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable %s: %w", alias, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("database_url", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, scheme := range []string{"postgres://", "postgresql://", "sqlite://"} {
			if strings.HasPrefix(s, scheme) && len(s) > len(scheme) {
				return true
			}
		}
		return false
	})
	return v
}

// Validate checks that the configuration has valid values.
// Required values that depend on the command are checked by the Require* methods.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("config error: %w", err)
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		msgs = append(msgs, fmt.Sprintf("'%s' failed '%s' check", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
}

// RequireDatabase reports a missing database URL.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return ErrNoDatabase
	}
	return nil
}

// RequireJSearch reports a missing JSearch API key.
func (c *Config) RequireJSearch() error {
	if strings.TrimSpace(c.JSearch.APIKey) == "" {
		return errors.New("JSearch API key is required: set JSEARCH_API_KEY or jsearch.api_key in the config file")
	}
	return nil
}
