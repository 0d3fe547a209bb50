package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("audit storage disabled")

// Config configures the audit store.
//
// Driver values:
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", auditing is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // 0 means default
}

// DownloadEntry records one processed URL of a batch.
// Keep it compact and schema-stable.
type DownloadEntry struct {
	At        time.Time
	ChatID    int64
	Shortcode string
	URL       string
	Items     int
	Bytes     int64
	TookMS    int64
	Error     string
}
