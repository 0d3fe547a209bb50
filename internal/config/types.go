package config

import "time"

// Config is the root config file structure.
//
// The file may be JSON or YAML (by extension); YAML is coerced to JSON and
// decoded strictly, so unknown keys are rejected in both formats.
// All durations are Go duration strings (e.g. "500ms", "10s", "30m").
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`
	Store    StoreConfig    `json:"store"`
	Audit    AuditConfig    `json:"audit,omitempty"`
	Limits   LimitsConfig   `json:"limits"`
	Staging  StagingConfig  `json:"staging"`
	Delivery DeliveryConfig `json:"delivery"`
}

type TelegramConfig struct {
	Token string `json:"token"`
	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StoreConfig controls the per-chat preferences/usage document store.
type StoreConfig struct {
	// Dir holds preferences.json and stats.json.
	Dir string `json:"dir"`
}

// AuditConfig controls the optional download audit log.
//
// Example:
//
//	"audit": { "driver": "sqlite", "path": "./data/audit.db" }
type AuditConfig struct {
	Driver      string `json:"driver,omitempty"` // "none" (default) or "sqlite"
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string
}

type LimitsConfig struct {
	// PerMinute is the per-chat request quota (token bucket capacity).
	PerMinute int `json:"per_minute,omitempty"`
}

type StagingConfig struct {
	// Root is where per-request staging directories are created.
	// Empty means the OS temp directory.
	Root string `json:"root,omitempty"`
	// Prefix names staging directories; the reaper only touches entries
	// carrying this prefix.
	Prefix     string `json:"prefix,omitempty"`
	MaxAge     string `json:"max_age,omitempty"`
	SweepEvery string `json:"sweep_every,omitempty"`
}

type DeliveryConfig struct {
	// AlbumMax caps the number of items delivered per post.
	AlbumMax int `json:"album_max,omitempty"`
	// CollageSize is the target square dimension of a synthesized collage.
	CollageSize int `json:"collage_size,omitempty"`
}

// Defaults mirrored from the original deployment.
const (
	DefaultPerMinute   = 5
	DefaultPrefix      = "ig_dl_"
	DefaultMaxAge      = 30 * time.Minute
	DefaultSweepEvery  = time.Minute
	DefaultAlbumMax    = 10
	DefaultCollageSize = 800
	DefaultPollTimeout = 10 * time.Second
)
