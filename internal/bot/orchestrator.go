package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gramgrab/internal/collage"
	"gramgrab/internal/insta"
	"gramgrab/internal/planner"
	"gramgrab/internal/ratelimit"
	"gramgrab/internal/storage"
	"gramgrab/internal/store"
	kit "gramgrab/internal/transport"
	logx "gramgrab/pkg/logx"
	"gramgrab/pkg/tgui"
)

// Orchestrator turns one inbound batch of post URLs into delivery actions:
// rate check, then per URL fetch → plan → deliver → account → cleanup.
//
// Per the observed contract, the first per-URL failure aborts the whole
// remaining batch and is reported on the progress message. Cleanup of a
// URL's staging area happens on both paths before the batch ends.
type Orchestrator struct {
	log      logx.Logger
	adapter  kit.Adapter
	prefs    *store.Store
	stats    *store.Store
	limiter  *ratelimit.Limiter
	resolver insta.Resolver
	audit    storage.Store // nil when auditing is disabled

	albumMax    int
	collageSize int
	now         func() time.Time
}

type OrchestratorConfig struct {
	AlbumMax    int
	CollageSize int
}

func NewOrchestrator(
	cfg OrchestratorConfig,
	adapter kit.Adapter,
	prefs, stats *store.Store,
	limiter *ratelimit.Limiter,
	resolver insta.Resolver,
	audit storage.Store,
	log logx.Logger,
) *Orchestrator {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.AlbumMax <= 0 {
		cfg.AlbumMax = 10
	}
	if cfg.CollageSize <= 0 {
		cfg.CollageSize = 800
	}
	return &Orchestrator{
		log:         log,
		adapter:     adapter,
		prefs:       prefs,
		stats:       stats,
		limiter:     limiter,
		resolver:    resolver,
		audit:       audit,
		albumMax:    cfg.AlbumMax,
		collageSize: cfg.CollageSize,
		now:         time.Now,
	}
}

var htmlOpt = &kit.SendOptions{ParseMode: "HTML", DisablePreview: true}

// HandleBatch processes every URL in order. Duplicates are processed
// independently; the input is taken literally.
func (o *Orchestrator) HandleBatch(ctx context.Context, chatID int64, urls []insta.URL) {
	to := kit.ChatTarget{ChatID: chatID}

	if !o.limiter.Allow(chatID) {
		o.reply(ctx, to, "⏳ Slow down a bit — too many requests. Try again in a minute.")
		return
	}

	notice, noticeErr := o.adapter.SendText(ctx, to, fmt.Sprintf("Fetching %d link(s)…", len(urls)), htmlOpt)
	if noticeErr != nil {
		o.log.Warn("progress notice not sent", logFields(chatID, noticeErr)...)
	}

	var batchErr error
	for idx, u := range urls {
		if noticeErr == nil {
			text := fmt.Sprintf("Fetching %d/%d: %s", idx+1, len(urls), tgui.Code(u.Canonical))
			if err := o.adapter.EditText(ctx, notice, text, htmlOpt); err != nil {
				o.log.Debug("progress edit failed", logFields(chatID, err)...)
			}
		}

		if err := o.processURL(ctx, chatID, u); err != nil {
			batchErr = fmt.Errorf("%s: %w", u.Canonical, err)
			break
		}
	}

	final := "Done ✅"
	if batchErr != nil {
		o.log.Warn("batch aborted", logFields(chatID, batchErr)...)
		final = "⚠️ Error: " + tgui.Esc(batchErr.Error()).String()
	}
	if noticeErr != nil {
		o.reply(ctx, to, final)
		return
	}
	if err := o.adapter.EditText(ctx, notice, final, htmlOpt); err != nil {
		// Editing the notice can itself fail (deleted, too old); fall back
		// to a fresh reply so the outcome is never silent.
		o.reply(ctx, to, final)
	}
}

func (o *Orchestrator) reply(ctx context.Context, to kit.ChatTarget, text string) {
	if _, err := o.adapter.SendText(ctx, to, text, htmlOpt); err != nil {
		o.log.Warn("reply not sent", logFields(to.ChatID, err)...)
	}
}

// processURL runs fetch → plan → deliver → account for one URL. The staging
// area is removed on every path before returning.
func (o *Orchestrator) processURL(ctx context.Context, chatID int64, u insta.URL) error {
	start := o.now()

	post, err := o.resolver.Resolve(ctx, u)
	if err != nil {
		o.auditEntry(ctx, chatID, u, 0, 0, start, err)
		return err
	}
	defer func() {
		// "Already gone" is success: the reaper or a racing cleanup may have
		// won.
		if rmErr := os.RemoveAll(post.StagingDir); rmErr != nil {
			o.log.Warn("staging cleanup failed", logFields(chatID, rmErr)...)
		}
	}()

	prefs := o.prefs.Prefs(chatID)
	caption := metaCaption(post.Meta, prefs.CaptionOn)
	plan := planner.Build(post.Files, prefs.Mode, caption, tagLine(post.Meta.Caption), o.albumMax)

	items, bytes, err := o.deliver(ctx, chatID, post, plan)
	o.auditEntry(ctx, chatID, u, items, bytes, start, err)
	if err != nil {
		return err
	}

	if err := o.stats.Account(chatID, int64(items), bytes, o.now()); err != nil {
		// Accounting failure is not worth aborting a delivered batch.
		o.log.Warn("usage accounting failed", logFields(chatID, err)...)
	}
	return nil
}

// deliver materializes the plan. It returns how many items went out and
// their cumulative byte size; on error the partial counts are returned so
// the audit trail stays truthful.
func (o *Orchestrator) deliver(ctx context.Context, chatID int64, post *insta.Post, plan planner.Plan) (items int, bytes int64, err error) {
	to := kit.ChatTarget{ChatID: chatID}

	if plan.Where == planner.CaptionLeading && plan.Caption != "" {
		if _, err = o.adapter.SendText(ctx, to, plan.Caption, htmlOpt); err != nil {
			return items, bytes, err
		}
	}

	primaryCaption := ""
	if plan.Where == planner.CaptionOnPrimary {
		primaryCaption = plan.Caption
	}

	if plan.Primary.IsCollage() {
		collagePath := filepath.Join(post.StagingDir, "collage.jpg")
		if cerr := collage.Build(plan.Primary.CollageSources, collagePath, o.collageSize); cerr != nil {
			// A broken collage degrades to sending its source photos
			// individually; the caption rides on the first one.
			o.log.Warn("collage build failed", logFields(chatID, cerr)...)
			for i, src := range plan.Primary.CollageSources {
				caption := ""
				if i == 0 {
					caption = primaryCaption
				}
				var n int64
				if n, err = o.adapter.SendPhoto(ctx, to, src, caption); err != nil {
					return items, bytes, err
				}
				items++
				bytes += n
			}
		} else {
			var n int64
			if n, err = o.adapter.SendPhoto(ctx, to, collagePath, primaryCaption); err != nil {
				return items, bytes, err
			}
			items++
			bytes += n
		}
	} else if plan.Primary != nil {
		var n int64
		if insta.IsVideoFile(plan.Primary.File) {
			n, err = o.adapter.SendVideo(ctx, to, plan.Primary.File, primaryCaption)
		} else {
			n, err = o.adapter.SendPhoto(ctx, to, plan.Primary.File, primaryCaption)
		}
		if err != nil {
			return items, bytes, err
		}
		items++
		bytes += n
	}

	for _, path := range plan.Group {
		var n int64
		switch {
		case plan.Shape == planner.ShapeDocument:
			n, err = o.adapter.SendDocument(ctx, to, path)
		case insta.IsVideoFile(path):
			n, err = o.adapter.SendVideo(ctx, to, path, "")
		default:
			n, err = o.adapter.SendPhoto(ctx, to, path, "")
		}
		if err != nil {
			return items, bytes, err
		}
		items++
		bytes += n
	}
	return items, bytes, nil
}

func (o *Orchestrator) auditEntry(ctx context.Context, chatID int64, u insta.URL, items int, bytes int64, start time.Time, opErr error) {
	if o.audit == nil {
		return
	}
	e := storage.DownloadEntry{
		At:        start,
		ChatID:    chatID,
		Shortcode: u.Shortcode,
		URL:       u.Canonical,
		Items:     items,
		Bytes:     bytes,
		TookMS:    o.now().Sub(start).Milliseconds(),
	}
	if opErr != nil {
		e.Error = opErr.Error()
	}
	if err := o.audit.AppendDownload(ctx, e); err != nil {
		o.log.Debug("audit append failed", logFields(chatID, err)...)
	}
}

func logFields(chatID int64, err error) []logx.Field {
	return []logx.Field{logx.Int64("chat_id", chatID), logx.Err(err)}
}
