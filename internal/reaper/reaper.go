// Package reaper deletes staging directories that outlived their request.
//
// Handlers normally clean up their own staging area; the reaper is
// defense-in-depth for areas abandoned by a crash or an unwound handler.
// It only ever touches entries carrying the configured name prefix, and a
// failure on one entry never stops the sweep.
package reaper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	logx "gramgrab/pkg/logx"
)

type Config struct {
	Root   string
	Prefix string
	MaxAge time.Duration
	Every  time.Duration
}

type Service struct {
	cfg Config
	log logx.Logger
	now func() time.Time

	mu sync.Mutex
	c  *cron.Cron
}

func New(cfg Config, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 30 * time.Minute
	}
	if cfg.Every <= 0 {
		cfg.Every = time.Minute
	}
	return &Service{cfg: cfg, log: log, now: time.Now}
}

// Start schedules the periodic sweep. It returns immediately; the sweep runs
// on the cron's own goroutine until Stop or ctx cancellation.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return nil
	}

	c := cron.New()
	spec := fmt.Sprintf("@every %s", s.cfg.Every)
	if _, err := c.AddFunc(spec, func() {
		removed, kept := s.Sweep()
		if removed > 0 {
			s.log.Info("staging sweep", logx.Int("removed", removed), logx.Int("kept", kept))
		}
	}); err != nil {
		return err
	}
	c.Start()
	s.c = c

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// Sweep runs one reclamation cycle. It returns how many expired entries were
// deleted and how many prefix-matched entries survived. Every per-entry error
// (racing deletion, permissions, vanished files) is swallowed so the cycle
// always completes.
func (s *Service) Sweep() (removed, kept int) {
	cutoff := s.now().Add(-s.cfg.MaxAge)

	entries, err := os.ReadDir(s.cfg.Root)
	if err != nil {
		s.log.Warn("staging root unreadable", logx.String("root", s.cfg.Root), logx.Err(err))
		return 0, 0
	}

	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), s.cfg.Prefix) {
			continue
		}
		path := filepath.Join(s.cfg.Root, e.Name())

		info, err := e.Info()
		if err != nil {
			// Entry vanished between list and stat; someone else cleaned it.
			continue
		}
		if !info.ModTime().Before(cutoff) {
			kept++
			continue
		}

		if e.IsDir() {
			err = os.RemoveAll(path)
		} else {
			err = os.Remove(path)
		}
		if err != nil && !os.IsNotExist(err) {
			s.log.Debug("staging entry not removed", logx.String("path", path), logx.Err(err))
			kept++
			continue
		}
		removed++
	}
	return removed, kept
}
