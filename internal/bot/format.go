package bot

import (
	"fmt"
	"strings"

	"gramgrab/internal/insta"
	"gramgrab/internal/store"
	"gramgrab/pkg/tgui"
)

// captionBodyMax bounds the caption body so the header/footer always fit in
// a Telegram media caption.
const captionBodyMax = 900

// metaCaption renders the HTML caption for a post: a header line, the post
// caption body (when the chat wants captions), and a permalink footer.
func metaCaption(meta insta.Meta, includeBody bool) string {
	owner := meta.Owner
	if owner == "" {
		owner = "unknown"
	}
	header := fmt.Sprintf("%s • @%s  •  %d media", tgui.B("Instagram"), tgui.Esc(owner), meta.MediaCount)

	body := ""
	if includeBody {
		if raw := strings.TrimSpace(meta.Caption); raw != "" {
			body = "\n" + tgui.Esc(tgui.TruncRunes(raw, captionBodyMax)).String()
		}
	}

	footer := fmt.Sprintf("\n%s  |  %s", tgui.Link("Link", meta.Permalink), tgui.Code(meta.Shortcode))
	return header + body + footer
}

// tagLine joins extracted hashtags into the trailing paragraph.
func tagLine(captionText string) string {
	return strings.Join(insta.ExtractHashtags(captionText), " ")
}

func statsText(p store.Prefs, u store.Usage) string {
	last := u.LastActivity
	if last == "" {
		last = "never"
	}
	capState := "off"
	if p.CaptionOn {
		capState = "on"
	}
	return fmt.Sprintf(
		"📊 Stats for this chat:\n"+
			"• Downloads: %d\n"+
			"• Data sent: %.2f MB\n"+
			"• Last activity: %s\n"+
			"• Mode: %s\n"+
			"• Caption: %s",
		u.Downloads,
		float64(u.BytesSent)/(1024*1024),
		tgui.Esc(last),
		p.Mode,
		capState,
	)
}

func helpText() string {
	return "👋 Send me a public Instagram post/reel/tv URL (single or multiple lines) and I'll fetch the media.\n\n" +
		"Commands:\n" +
		"• /settings — quick toggles (mode, caption)\n" +
		"• /mode media|document — set default send mode\n" +
		"• /stats — show your usage stats\n\n" +
		tgui.I("Only download/share content you're allowed to. Scraping may be restricted by Instagram's Terms.").String()
}
