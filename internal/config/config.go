// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config loads the YAML configuration of the appstatus command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gogama/appstatus/timeout"
	"github.com/gogama/appstatus/upstream"
	"github.com/gogama/appstatus/upstream/httpsource"
	"github.com/gogama/appstatus/upstream/simulator"
)

const (
	KindSimulator = "simulator"
	KindHTTP      = "http"
)

// Config is the top-level configuration. Durations are strings in
// time.ParseDuration format.
type Config struct {
	// Deadline bounds each application status request.
	Deadline string `yaml:"deadline,omitempty"`
	// Metrics is the listen address of the Prometheus endpoint, or
	// empty to disable it.
	Metrics string   `yaml:"metrics,omitempty"`
	Log     Log      `yaml:"log,omitempty"`
	Sources []Source `yaml:"sources"`
}

type Log struct {
	// Verbosity is the logr verbosity; 1 adds per-query lines.
	Verbosity   int  `yaml:"verbosity,omitempty"`
	Development bool `yaml:"development,omitempty"`
}

// Source configures one upstream source.
type Source struct {
	Name string `yaml:"name,omitempty"`
	// Kind is "simulator" or "http".
	Kind string `yaml:"kind"`

	// URL is the base URL of an http source.
	URL string `yaml:"url,omitempty"`
	// Timeout bounds each HTTP query of an http source. Empty means
	// only the request deadline applies.
	Timeout string `yaml:"timeout,omitempty"`
	// DefaultRetryDelay applies when an http source asks to be retried
	// without saying when.
	DefaultRetryDelay string `yaml:"default_retry_delay,omitempty"`

	// RetryDelay, MinLatency, MaxLatency, Status, and Seed configure a
	// simulator source.
	RetryDelay string `yaml:"retry_delay,omitempty"`
	MinLatency string `yaml:"min_latency,omitempty"`
	MaxLatency string `yaml:"max_latency,omitempty"`
	Status     string `yaml:"status,omitempty"`
	Seed       *int64 `yaml:"seed,omitempty"`
}

// Default returns the configuration used when no file is given: two
// simulated sources and the default deadline.
func Default() *Config {
	return &Config{
		Deadline: timeout.DefaultTimeout.String(),
		Sources: []Source{
			{Name: "simulator-1", Kind: KindSimulator},
			{Name: "simulator-2", Kind: KindSimulator},
		},
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates YAML configuration. Unknown fields are
// rejected.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if cfg.Deadline == "" {
		cfg.Deadline = timeout.DefaultTimeout.String()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem with the configuration.
func (c *Config) Validate() error {
	var errs []error
	if d, err := parseDuration("deadline", c.Deadline); err != nil {
		errs = append(errs, err)
	} else if d <= 0 {
		errs = append(errs, errors.New("deadline must be positive"))
	}
	if c.Log.Verbosity < 0 {
		errs = append(errs, errors.New("log verbosity must not be negative"))
	}
	names := make(map[string]bool, len(c.Sources))
	for i := range c.Sources {
		src := &c.Sources[i]
		if err := src.validate(); err != nil {
			errs = append(errs, fmt.Errorf("source %d: %w", i, err))
		}
		if src.Name != "" {
			if names[src.Name] {
				errs = append(errs, fmt.Errorf("source %d: duplicate name %q", i, src.Name))
			}
			names[src.Name] = true
		}
	}
	return errors.Join(errs...)
}

func (s *Source) validate() error {
	var errs []error
	durations := map[string]string{
		"timeout":             s.Timeout,
		"default_retry_delay": s.DefaultRetryDelay,
		"retry_delay":         s.RetryDelay,
		"min_latency":         s.MinLatency,
		"max_latency":         s.MaxLatency,
	}
	for field, v := range durations {
		if d, err := parseDuration(field, v); err != nil {
			errs = append(errs, err)
		} else if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", field))
		}
	}

	switch s.Kind {
	case KindSimulator:
		if s.URL != "" {
			errs = append(errs, errors.New("url is only valid for http sources"))
		}
		lo, _ := parseDuration("", s.MinLatency)
		hi, _ := parseDuration("", s.MaxLatency)
		if s.MaxLatency != "" && hi < lo {
			errs = append(errs, errors.New("max_latency must be at least min_latency"))
		}
	case KindHTTP:
		if s.URL == "" {
			errs = append(errs, errors.New("url is required"))
		} else if u, err := url.Parse(s.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("invalid url %q", s.URL))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown kind %q", s.Kind))
	}
	return errors.Join(errs...)
}

// DeadlinePolicy returns the timeout policy for the configured
// deadline. It assumes c is valid.
func (c *Config) DeadlinePolicy() timeout.Policy {
	d, _ := parseDuration("deadline", c.Deadline)
	return timeout.Fixed(d)
}

// Build constructs the configured upstream sources. It assumes c is
// valid.
func (c *Config) Build() []upstream.Source {
	sources := make([]upstream.Source, len(c.Sources))
	for i := range c.Sources {
		sources[i] = c.Sources[i].build()
	}
	return sources
}

func (s *Source) build() upstream.Source {
	var src upstream.Source
	switch s.Kind {
	case KindHTTP:
		t, _ := parseDuration("", s.Timeout)
		d, _ := parseDuration("", s.DefaultRetryDelay)
		src = &httpsource.Source{
			BaseURL:           s.URL,
			HTTPDoer:          &http.Client{Timeout: t},
			DefaultRetryDelay: d,
			SourceName:        s.Name,
		}
	default:
		var sim *simulator.Simulator
		if s.Seed != nil {
			sim = simulator.New(*s.Seed)
		} else {
			sim = &simulator.Simulator{}
		}
		sim.RetryDelay, _ = parseDuration("", s.RetryDelay)
		sim.MinLatency, _ = parseDuration("", s.MinLatency)
		sim.MaxLatency, _ = parseDuration("", s.MaxLatency)
		sim.Status = s.Status
		src = sim
	}
	if s.Name != "" && s.Kind != KindHTTP {
		src = upstream.Named(s.Name, src)
	}
	return src
}

func parseDuration(field, v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", field, err)
	}
	return d, nil
}
