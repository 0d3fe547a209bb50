// Package storage provides the optional download audit log.
//
// The per-chat preferences/usage documents live in internal/store; this
// package only keeps an append-only history of processed URLs for
// operational inspection.
package storage

import (
	"context"
	"errors"
	"strings"

	logx "gramgrab/pkg/logx"
)

// Store is the minimal audit API used by the orchestrator.
type Store interface {
	AppendDownload(ctx context.Context, e DownloadEntry) error
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if auditing is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown audit driver: " + driver)
	}
}
