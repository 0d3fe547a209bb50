package store

import "time"

// Usage are per-chat counters. Counters only grow, except on explicit reset.
type Usage struct {
	Downloads    int64
	BytesSent    int64
	LastActivity string // RFC3339 UTC, empty if never active
}

const (
	fieldDownloads    = "downloads"
	fieldBytesSent    = "bytes_sent"
	fieldLastActivity = "last_activity"
)

// Usage reads the usage record for a chat; absent fields read as zero.
func (s *Store) Usage(chatID int64) Usage {
	var u Usage
	rec := s.Get(chatID)
	if rec == nil {
		return u
	}
	u.Downloads = asInt64(rec[fieldDownloads])
	u.BytesSent = asInt64(rec[fieldBytesSent])
	if v, ok := rec[fieldLastActivity].(string); ok {
		u.LastActivity = v
	}
	return u
}

// Account records one delivered batch item set: items sent, bytes sent, and
// the activity timestamp.
func (s *Store) Account(chatID int64, items, bytes int64, at time.Time) error {
	if _, err := s.Increment(chatID, fieldDownloads, items); err != nil {
		return err
	}
	if _, err := s.Increment(chatID, fieldBytesSent, bytes); err != nil {
		return err
	}
	return s.UpdateField(chatID, fieldLastActivity, at.UTC().Format(time.RFC3339))
}

// ResetUsage clears all counters for a chat.
func (s *Store) ResetUsage(chatID int64) error {
	return s.Set(chatID, map[string]any{})
}
