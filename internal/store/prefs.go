package store

import "strings"

// Mode is the delivery shape preference.
type Mode string

const (
	ModeMedia    Mode = "media"
	ModeDocument Mode = "document"
)

// ParseMode accepts user input for /mode.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "media":
		return ModeMedia, true
	case "document":
		return ModeDocument, true
	default:
		return "", false
	}
}

// Prefs are per-chat delivery preferences.
// A chat never seen before gets the defaults (media, caption on).
type Prefs struct {
	Mode      Mode
	CaptionOn bool
}

const (
	fieldMode      = "mode"
	fieldCaptionOn = "caption_on"
)

// Prefs reads the preferences record for a chat, applying defaults for
// absent fields.
func (s *Store) Prefs(chatID int64) Prefs {
	p := Prefs{Mode: ModeMedia, CaptionOn: true}
	rec := s.Get(chatID)
	if rec == nil {
		return p
	}
	if m, ok := rec[fieldMode].(string); ok {
		if parsed, valid := ParseMode(m); valid {
			p.Mode = parsed
		}
	}
	if v, ok := rec[fieldCaptionOn].(bool); ok {
		p.CaptionOn = v
	}
	return p
}

func (s *Store) SetMode(chatID int64, m Mode) error {
	return s.UpdateField(chatID, fieldMode, string(m))
}

func (s *Store) SetCaptionOn(chatID int64, on bool) error {
	return s.UpdateField(chatID, fieldCaptionOn, on)
}
