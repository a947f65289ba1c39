// Package config loads CLI settings from an optional file and JPEGR_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/creasty/defaults"
	validatorV10 "github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/wellwelwel/jpegr"
	"github.com/wellwelwel/jpegr/internal/logging"
	"github.com/wellwelwel/jpegr/internal/profile"
)

// EnvPrefix prefixes every environment override, e.g. JPEGR_MAX_SIZE.
const EnvPrefix = "JPEGR"

// Config is the full CLI configuration. Zero processing fields inherit from
// the selected profile.
type Config struct {
	Profile         string   `mapstructure:"profile" default:"web"`
	MaxSize         int64    `mapstructure:"max-size" validate:"gte=0"`
	MaxQuality      float64  `mapstructure:"max-quality" validate:"gte=0,lte=1"`
	MinQuality      float64  `mapstructure:"min-quality" validate:"gte=0,lte=1"`
	CompressionStep float64  `mapstructure:"compression-step" validate:"gte=0,lte=1"`
	Force           bool     `mapstructure:"force"`
	Background      string   `mapstructure:"background"`
	Disable         []string `mapstructure:"disable"`

	Workers int    `mapstructure:"workers" validate:"gte=0"`
	Output  string `mapstructure:"output" default:"dist"`

	Log logging.Config `mapstructure:"log"`
}

// keys is every setting that may come from the environment.
var keys = []string{
	"profile", "max-size", "max-quality", "min-quality", "compression-step",
	"force", "background", "disable", "workers", "output",
	"log.level", "log.format", "log.file", "log.max-size", "log.max-backups",
	"log.max-age", "log.compress",
}

var validate = validatorV10.New()

// Load reads path (if non-empty) and the environment, fills defaults and
// validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", k, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		var ves validatorV10.ValidationErrors
		if errors.As(err, &ves) && len(ves) > 0 {
			fe := ves[0]
			return nil, fmt.Errorf("invalid config: %s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
		}
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Options merges the profile with explicit overrides.
func (c *Config) Options() jpegr.Options {
	opts := profile.Get(c.Profile).Options()
	if c.MaxSize > 0 {
		opts.MaxSize = c.MaxSize
	}
	if c.MaxQuality > 0 {
		opts.MaxQuality = c.MaxQuality
	}
	if c.MinQuality > 0 {
		opts.MinQuality = c.MinQuality
	}
	if c.CompressionStep > 0 {
		opts.CompressionStep = c.CompressionStep
	}
	if c.Force {
		opts.ForceCompression = true
	}
	if c.Background != "" {
		opts.BackgroundColor = c.Background
	}
	return opts
}

// WorkerCount is Workers, or the CPU count when unset.
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}
