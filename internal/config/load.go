package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Load reads, decodes and validates a config file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, b)
}

// Parse decodes raw config bytes. The path is only used to pick the format
// (by extension) and for error messages.
func Parse(path string, data []byte) (*Config, error) {
	j, format, err := asJSON(path, data)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(j))
	dec.DisallowUnknownFields()
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s config: %w", format, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token is required")
	}
	if strings.TrimSpace(c.Store.Dir) == "" {
		return errors.New("store.dir is required")
	}
	if c.Limits.PerMinute < 0 {
		return errors.New("limits.per_minute must be >= 0")
	}
	if c.Delivery.AlbumMax < 0 {
		return errors.New("delivery.album_max must be >= 0")
	}

	switch strings.ToLower(strings.TrimSpace(c.Audit.Driver)) {
	case "", "none", "sqlite":
	default:
		return fmt.Errorf("audit.driver: unknown driver %q", c.Audit.Driver)
	}

	// Fail early on malformed durations; the typed accessors below re-parse.
	for _, f := range []struct{ path, raw string }{
		{"telegram.poll_timeout", c.Telegram.PollTimeout},
		{"audit.busy_timeout", c.Audit.BusyTimeout},
		{"staging.max_age", c.Staging.MaxAge},
		{"staging.sweep_every", c.Staging.SweepEvery},
	} {
		if _, err := ParseDurationField(f.path, f.raw); err != nil {
			return err
		}
	}
	return nil
}

// Typed accessors with defaults applied. validate() already rejected bad
// values, so parse errors are ignored here.

func (c *Config) PollTimeout() time.Duration {
	d, _ := ParseDurationOrDefault("telegram.poll_timeout", c.Telegram.PollTimeout, DefaultPollTimeout)
	return d
}

func (c *Config) StagingMaxAge() time.Duration {
	d, _ := ParseDurationOrDefault("staging.max_age", c.Staging.MaxAge, DefaultMaxAge)
	return d
}

func (c *Config) SweepEvery() time.Duration {
	d, _ := ParseDurationOrDefault("staging.sweep_every", c.Staging.SweepEvery, DefaultSweepEvery)
	return d
}

func (c *Config) PerMinute() int {
	if c.Limits.PerMinute <= 0 {
		return DefaultPerMinute
	}
	return c.Limits.PerMinute
}

func (c *Config) StagingRoot() string {
	if s := strings.TrimSpace(c.Staging.Root); s != "" {
		return s
	}
	return os.TempDir()
}

func (c *Config) StagingPrefix() string {
	if s := strings.TrimSpace(c.Staging.Prefix); s != "" {
		return s
	}
	return DefaultPrefix
}

func (c *Config) AlbumMax() int {
	if c.Delivery.AlbumMax <= 0 {
		return DefaultAlbumMax
	}
	return c.Delivery.AlbumMax
}

func (c *Config) CollageSize() int {
	if c.Delivery.CollageSize <= 0 {
		return DefaultCollageSize
	}
	return c.Delivery.CollageSize
}
