package bot

import (
	"context"
	"fmt"
	"strings"

	"gramgrab/internal/insta"
	"gramgrab/internal/store"
	kit "gramgrab/internal/transport"
	"gramgrab/pkg/tgui"
)

func (a *App) handleUpdate(ctx context.Context, up kit.Update) {
	switch up.Kind {
	case kit.UpdateMessage:
		if up.Message != nil {
			a.handleMessage(ctx, up.Message)
		}
	case kit.UpdateCallback:
		if up.Callback != nil {
			a.handleCallback(ctx, up.Callback)
		}
	}
}

func (a *App) handleMessage(ctx context.Context, m *kit.Message) {
	text := strings.TrimSpace(m.Text)
	to := kit.ChatTarget{ChatID: m.ChatID}

	if strings.HasPrefix(text, "/") {
		a.handleCommand(ctx, m, to, text)
		return
	}

	urls := insta.ExtractURLs(text)
	if len(urls) > 0 {
		a.orch.HandleBatch(ctx, m.ChatID, urls)
		return
	}
	// The user clearly tried to paste an Instagram link but nothing
	// classified; everything else is ignored noise.
	if strings.Contains(strings.ToLower(text), "instagr") {
		a.send(ctx, to, "Please send a valid Instagram URL (needs /p/, /reel/ or /tv/).")
	}
}

func (a *App) handleCommand(ctx context.Context, m *kit.Message, to kit.ChatTarget, text string) {
	cmd, args, _ := strings.Cut(text, " ")
	cmd = strings.ToLower(cmd)
	// Strip "@botname" suffixes used in groups.
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/start", "/help":
		opt := *htmlOpt
		opt.ReplyMarkupAdapter = settingsKeyboard(a.prefs.Prefs(m.ChatID))
		if _, err := a.adapter.SendText(ctx, to, helpText(), &opt); err != nil {
			a.log.Warn("help reply failed", logFields(m.ChatID, err)...)
		}
	case "/settings":
		opt := *htmlOpt
		opt.ReplyMarkupAdapter = settingsKeyboard(a.prefs.Prefs(m.ChatID))
		if _, err := a.adapter.SendText(ctx, to, "⚙️ Settings", &opt); err != nil {
			a.log.Warn("settings reply failed", logFields(m.ChatID, err)...)
		}
	case "/mode":
		a.handleMode(ctx, m.ChatID, to, args)
	case "/stats":
		a.send(ctx, to, statsText(a.prefs.Prefs(m.ChatID), a.stats.Usage(m.ChatID)))
	}
}

func (a *App) handleMode(ctx context.Context, chatID int64, to kit.ChatTarget, args string) {
	args = strings.TrimSpace(args)
	if args == "" {
		cur := a.prefs.Prefs(chatID).Mode
		a.send(ctx, to, fmt.Sprintf("Current mode: %s\nUse /mode media or /mode document.", tgui.B(string(cur))))
		return
	}
	mode, ok := store.ParseMode(args)
	if !ok {
		a.send(ctx, to, "Use: /mode media  or  /mode document")
		return
	}
	if err := a.prefs.SetMode(chatID, mode); err != nil {
		a.log.Warn("mode not persisted", logFields(chatID, err)...)
		a.send(ctx, to, "⚠️ Could not save the mode, try again.")
		return
	}
	a.send(ctx, to, fmt.Sprintf("✅ Mode updated to %s", tgui.B(string(mode))))
}

func (a *App) send(ctx context.Context, to kit.ChatTarget, text string) {
	if _, err := a.adapter.SendText(ctx, to, text, htmlOpt); err != nil {
		a.log.Warn("reply failed", logFields(to.ChatID, err)...)
	}
}
