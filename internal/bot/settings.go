package bot

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v4"

	"gramgrab/internal/store"
	kit "gramgrab/internal/transport"
	"gramgrab/pkg/tgui"
)

// Callback routes for the settings keyboard.
const (
	cbToggleMode    = "toggle:mode"
	cbToggleCaption = "toggle:caption"
	cbClearStats    = "clear:stats"
)

func settingsKeyboard(p store.Prefs) *tele.ReplyMarkup {
	capState := "off"
	if p.CaptionOn {
		capState = "on"
	}
	return tgui.NewInline().
		Row(tgui.Btn(fmt.Sprintf("Mode: %s (tap to toggle)", p.Mode), cbToggleMode)).
		Row(tgui.Btn(fmt.Sprintf("Caption: %s (tap to toggle)", capState), cbToggleCaption)).
		Row(tgui.Btn("Clear my stats", cbClearStats)).
		Markup()
}

func (a *App) handleCallback(ctx context.Context, cb *kit.Callback) {
	chatID := cb.ChatID

	var answer string
	switch cb.Data {
	case cbToggleMode:
		cur := a.prefs.Prefs(chatID).Mode
		next := store.ModeDocument
		if cur == store.ModeDocument {
			next = store.ModeMedia
		}
		if err := a.prefs.SetMode(chatID, next); err != nil {
			a.log.Warn("mode toggle not persisted", logFields(chatID, err)...)
		}
		answer = fmt.Sprintf("Mode → %s", next)
	case cbToggleCaption:
		cur := a.prefs.Prefs(chatID).CaptionOn
		if err := a.prefs.SetCaptionOn(chatID, !cur); err != nil {
			a.log.Warn("caption toggle not persisted", logFields(chatID, err)...)
		}
		if cur {
			answer = "Caption → off"
		} else {
			answer = "Caption → on"
		}
	case cbClearStats:
		if err := a.stats.ResetUsage(chatID); err != nil {
			a.log.Warn("stats reset not persisted", logFields(chatID, err)...)
		}
		answer = "Stats cleared"
	default:
		return
	}

	if err := a.adapter.AnswerCallback(ctx, cb.ID, answer); err != nil {
		a.log.Debug("callback answer failed", logFields(chatID, err)...)
	}

	// Refresh the keyboard so button labels reflect the new state.
	ref := kit.MessageRef{ChatID: chatID, MessageID: cb.MessageID}
	opt := &kit.SendOptions{ReplyMarkupAdapter: settingsKeyboard(a.prefs.Prefs(chatID))}
	if err := a.adapter.EditText(ctx, ref, "⚙️ Settings", opt); err != nil {
		a.log.Debug("settings keyboard refresh failed", logFields(chatID, err)...)
	}
}
