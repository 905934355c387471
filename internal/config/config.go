// Package config loads the daemon configuration from a YAML file, applying
// defaults and clamping values the rest of the system assumes are in range.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the daemon's tunables.
type Config struct {
	// DimAlpha is the opacity the overlay fades to when dimming, in [0,1].
	DimAlpha float64 `yaml:"dim_alpha"`

	// FadeInMs and FadeOutMs are the transition lengths in milliseconds.
	FadeInMs  int `yaml:"fade_in_ms"`
	FadeOutMs int `yaml:"fade_out_ms"`

	// IdleTimeoutS is how long input must be quiet before dimming starts,
	// in seconds.
	IdleTimeoutS int `yaml:"idle_timeout_s"`

	// Layer is the overlay's stacking order.
	Layer int `yaml:"layer"`

	// Brightness is the device backlight level, 0-100.
	Brightness int `yaml:"brightness"`

	// TickMs is the render loop period in milliseconds.
	TickMs int `yaml:"tick_ms"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		DimAlpha:     0.7,
		FadeInMs:     300,
		FadeOutMs:    250,
		IdleTimeoutS: 30,
		Layer:        10,
		Brightness:   80,
		TickMs:       33,
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "dimdeck", "config.yaml"), nil
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return Default(), err
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("reading config: %w", err)
	}

	return parse(data)
}

// parse unmarshals YAML over the defaults and clamps out-of-range values.
func parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config: %w", err)
	}

	if cfg.DimAlpha < 0 {
		cfg.DimAlpha = 0
	}
	if cfg.DimAlpha > 1 {
		cfg.DimAlpha = 1
	}
	if cfg.FadeInMs < 0 {
		cfg.FadeInMs = 0
	}
	if cfg.FadeOutMs < 0 {
		cfg.FadeOutMs = 0
	}
	if cfg.TickMs < 1 {
		cfg.TickMs = 1
	}

	return cfg, nil
}

// FadeIn returns the fade-in length as a duration.
func (c Config) FadeIn() time.Duration {
	return time.Duration(c.FadeInMs) * time.Millisecond
}

// FadeOut returns the fade-out length as a duration.
func (c Config) FadeOut() time.Duration {
	return time.Duration(c.FadeOutMs) * time.Millisecond
}

// IdleTimeout returns the idle timeout as a duration.
func (c Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutS) * time.Second
}

// Tick returns the render loop period as a duration.
func (c Config) Tick() time.Duration {
	return time.Duration(c.TickMs) * time.Millisecond
}
