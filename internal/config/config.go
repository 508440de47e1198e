// Package config loads the toolbridge CLI configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skosovsky/toolbridge"
	"github.com/skosovsky/toolbridge/setup"
)

// Config is the top-level CLI configuration.
type Config struct {
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
	// ReportFailures acknowledges malformed calls with success=false instead of uniform success.
	ReportFailures bool `yaml:"report_failures"`
}

// SessionConfig is the part of the session setup that accompanies the declarations.
type SessionConfig struct {
	Model        string   `yaml:"model"`
	Modalities   []string `yaml:"modalities"`
	Voice        string   `yaml:"voice"`
	Instructions string   `yaml:"instructions"`
	GoogleSearch bool     `yaml:"google_search"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Session: SessionConfig{
			Model:        "models/gemini-2.0-flash-exp",
			Modalities:   []string{"audio"},
			Voice:        "Aoede",
			Instructions: toolbridge.Instructions,
			GoogleSearch: true,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path and overlays it on Default. An empty path returns Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required fields and enumerations.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Session.Model) == "" {
		errs = append(errs, errors.New("session.model is required"))
	}
	for _, m := range c.Session.Modalities {
		switch m {
		case "audio", "text", "image":
		default:
			errs = append(errs, fmt.Errorf("session.modalities: unsupported modality %q", m))
		}
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unsupported format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Setup converts the session section to a setup.Config.
func (c Config) Setup() setup.Config {
	return setup.Config{
		Model:              c.Session.Model,
		ResponseModalities: c.Session.Modalities,
		Voice:              c.Session.Voice,
		SystemInstruction:  c.Session.Instructions,
		GoogleSearch:       c.Session.GoogleSearch,
	}
}

// NewLogger builds a slog.Logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: unsupported level %q", s)
	}
	return level, nil
}
