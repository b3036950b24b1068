// Package config loads the optional YAML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nathoo/moodgrid/engine/rules"
)

// Log configures the logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"` // empty: stderr, or discarded under the full-screen UI
}

// Feed configures the spectator websocket feed.
type Feed struct {
	Addr string `yaml:"addr"` // empty disables the feed
}

// Config is the full configuration.
type Config struct {
	Levels     string      `yaml:"levels"`
	StartLevel int         `yaml:"start_level"`
	Debug      bool        `yaml:"debug"`
	Log        Log         `yaml:"log"`
	Rules      rules.Rules `yaml:"rules"`
	Feed       Feed        `yaml:"feed"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Levels: "levels",
		Log:    Log{Level: "info", Format: "text"},
		Rules:  rules.Default(),
	}
}

// Load reads path on top of the defaults. A missing file is not an error
// when optional is true.
func Load(path string, optional bool) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()
	cfg, err := Parse(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML from r on top of the defaults. Unknown keys are
// rejected.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the decoder cannot.
func (c Config) Validate() error {
	if c.StartLevel < 0 {
		return fmt.Errorf("start_level must not be negative, got %d", c.StartLevel)
	}
	if c.Levels == "" {
		return errors.New("levels directory must not be empty")
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
