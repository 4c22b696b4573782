// Package config loads the msnet runtime configuration.
//
// Values come from, in increasing precedence: built-in defaults, a
// config file (TOML, YAML or JSON, chosen by extension) and environment
// variables prefixed with MSNET_, e.g. MSNET_TOPK=3.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/born-ml/msnet/internal/moe"
	"github.com/born-ml/msnet/internal/session"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "MSNET"

// Config is the resolved runtime configuration.
type Config struct {
	RouterModelPath string `mapstructure:"router_model_path"`
	ExpertModelDir  string `mapstructure:"expert_model_dir"`
	TopK            int    `mapstructure:"topk"`

	UseGPU   bool `mapstructure:"use_gpu"`
	DeviceID int  `mapstructure:"device_id"`

	InputChannels int    `mapstructure:"input_channels"`
	InputHeight   int    `mapstructure:"input_height"`
	InputWidth    int    `mapstructure:"input_width"`
	InputName     string `mapstructure:"input_name"`
	OutputName    string `mapstructure:"output_name"`
	StrictOps     bool   `mapstructure:"strict_ops"`

	FallbackOnExpertError bool `mapstructure:"fallback_on_expert_error"`

	LogLevel   string `mapstructure:"log_level"`
	StatsdAddr string `mapstructure:"statsd_addr"`
}

// Default returns the built-in defaults. Model paths are left empty.
func Default() Config {
	return Config{
		TopK:          moe.DefaultTopK,
		InputChannels: moe.DefaultChannels,
		InputHeight:   moe.DefaultHeight,
		InputWidth:    moe.DefaultWidth,
		InputName:     session.DefaultInputName,
		OutputName:    session.DefaultOutputName,
		LogLevel:      "info",
	}
}

// Load reads the config file at path (optional when empty), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

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
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("router_model_path", d.RouterModelPath)
	v.SetDefault("expert_model_dir", d.ExpertModelDir)
	v.SetDefault("topk", d.TopK)
	v.SetDefault("use_gpu", d.UseGPU)
	v.SetDefault("device_id", d.DeviceID)
	v.SetDefault("input_channels", d.InputChannels)
	v.SetDefault("input_height", d.InputHeight)
	v.SetDefault("input_width", d.InputWidth)
	v.SetDefault("input_name", d.InputName)
	v.SetDefault("output_name", d.OutputName)
	v.SetDefault("strict_ops", d.StrictOps)
	v.SetDefault("fallback_on_expert_error", d.FallbackOnExpertError)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("statsd_addr", d.StatsdAddr)
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	if c.RouterModelPath == "" {
		errs = append(errs, errors.New("router_model_path is required"))
	}
	if c.ExpertModelDir == "" {
		errs = append(errs, errors.New("expert_model_dir is required"))
	}
	if c.InputName == "" || c.OutputName == "" {
		errs = append(errs, errors.New("input_name and output_name must be set"))
	}
	if c.DeviceID < 0 {
		errs = append(errs, fmt.Errorf("device_id must be >= 0, got %d", c.DeviceID))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if err := c.Dispatcher().Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// InputShape returns the NCHW input shape.
func (c *Config) InputShape() [4]int {
	return [4]int{1, c.InputChannels, c.InputHeight, c.InputWidth}
}

// InputSize returns the number of values in one input.
func (c *Config) InputSize() int {
	return c.InputChannels * c.InputHeight * c.InputWidth
}

// Dispatcher returns the dispatcher part of the configuration.
func (c *Config) Dispatcher() moe.Config {
	return moe.Config{
		TopK:                  c.TopK,
		InputShape:            c.InputShape(),
		FallbackOnExpertError: c.FallbackOnExpertError,
	}
}

// Session returns the model binding options.
func (c *Config) Session() session.Options {
	return session.Options{
		InputName:  c.InputName,
		OutputName: c.OutputName,
		InputShape: c.InputShape(),
		Strict:     c.StrictOps,
	}
}
