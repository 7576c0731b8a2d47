// Package config holds the blog configuration, its defaults and the HTTP,
// cookie and template constants shared across packages.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// CurrentVersion is the only configuration schema version this build reads.
const CurrentVersion = "1"

var ErrUnsupportedVersion = errors.New("unsupported configuration version")

// Config represents the complete configuration structure
type Config struct {
	Version  string         `yaml:"version" default:"1"`
	Site     SiteConfig     `yaml:"site"`
	Server   ServerConfig   `yaml:"server"`
	Content  ContentConfig  `yaml:"content"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	Features FeaturesConfig `yaml:"features"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level" default:"info"`
	// Format is "console" for human readable output or "json".
	Format string `yaml:"format" default:"console"`
}

type SiteConfig struct {
	Name    string `yaml:"name" default:"The Blog"`
	Tagline string `yaml:"tagline" default:"Short posts, long thoughts"`
}

type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port string `yaml:"port" default:"5000"`

	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds" default:"10"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds" default:"10"`
}

func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type ContentConfig struct {
	PostsPerPage int `yaml:"posts_per_page" default:"3"`
}

type DatabaseConfig struct {
	// Driver is either "sqlite3" (mattn/go-sqlite3) or "sqlite" (modernc.org/sqlite).
	Driver string `yaml:"driver" default:"sqlite3"`
	Path   string `yaml:"path" default:"./blog.db"`
}

type SessionConfig struct {
	// Store is either "db" or "memory".
	Store         string `yaml:"store" default:"db"`
	VisitorCookie string `yaml:"visitor_cookie" default:"visitor"`
	FlashCookie   string `yaml:"flash_cookie" default:"flash"`
	MaxAgeDays    int    `yaml:"max_age_days" default:"365"`
}

type FeaturesConfig struct {
	WelcomeGate FeatureFlag `yaml:"welcome_gate"`
	Metrics     FeatureFlag `yaml:"metrics"`
}

type FeatureFlag struct {
	Enabled bool `yaml:"enabled" default:"true"`
}

// Default returns a Config with every default value applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// LoadConfig reads the YAML file at path on top of the defaults. A missing
// file is not an error.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, c.Version)
	}
	if c.Content.PostsPerPage <= 0 {
		return fmt.Errorf("content.posts_per_page must be positive, got %d", c.Content.PostsPerPage)
	}
	switch c.Database.Driver {
	case "sqlite3", "sqlite":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Session.Store {
	case "db", "memory":
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}
	return nil
}

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
