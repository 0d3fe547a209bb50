package bot

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/disintegration/imaging"

	"gramgrab/internal/insta"
	"gramgrab/internal/ratelimit"
	"gramgrab/internal/store"
	kit "gramgrab/internal/transport"
	logx "gramgrab/pkg/logx"
)

// ---- fakes ----

type sentMedia struct {
	kind    string // "photo", "video", "document"
	path    string
	caption string
}

type fakeAdapter struct {
	mu      sync.Mutex
	texts   []string
	edits   []string
	media   []sentMedia
	editErr error
	// failOn makes the matching media send fail (by base name).
	failOn string
}

func (f *fakeAdapter) Start(ctx context.Context, out chan<- kit.Update) error { return nil }
func (f *fakeAdapter) Stop(ctx context.Context) error                         { return nil }

func (f *fakeAdapter) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return kit.MessageRef{ChatID: to.ChatID, MessageID: len(f.texts)}, nil
}

func (f *fakeAdapter) EditText(ctx context.Context, ref kit.MessageRef, text string, opt *kit.SendOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, text)
	return nil
}

func (f *fakeAdapter) AnswerCallback(ctx context.Context, id, text string) error { return nil }

func (f *fakeAdapter) sendMedia(kind, path, caption string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && filepath.Base(path) == f.failOn {
		return 0, errors.New("send failed")
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	f.media = append(f.media, sentMedia{kind: kind, path: path, caption: caption})
	return info.Size(), nil
}

func (f *fakeAdapter) SendPhoto(ctx context.Context, to kit.ChatTarget, path, caption string) (int64, error) {
	return f.sendMedia("photo", path, caption)
}
func (f *fakeAdapter) SendVideo(ctx context.Context, to kit.ChatTarget, path, caption string) (int64, error) {
	return f.sendMedia("video", path, caption)
}
func (f *fakeAdapter) SendDocument(ctx context.Context, to kit.ChatTarget, path string) (int64, error) {
	return f.sendMedia("document", path, "")
}

func (f *fakeAdapter) mediaKinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.media))
	for i, m := range f.media {
		out[i] = m.kind
	}
	return out
}

// fakeResolver stages real files so collage building and byte accounting
// work against the filesystem.
type fakeResolver struct {
	root    string
	posts   map[string][]string // shortcode -> file names to stage
	caption map[string]string
	errs    map[string]error

	mu     sync.Mutex
	staged []string
}

func (r *fakeResolver) Resolve(ctx context.Context, u insta.URL) (*insta.Post, error) {
	if err := r.errs[u.Shortcode]; err != nil {
		return nil, err
	}
	names, ok := r.posts[u.Shortcode]
	if !ok {
		return nil, insta.ErrNotFound
	}

	dir, err := insta.NewStagingDir(r.root, "ig_dl_", u.Shortcode)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.staged = append(r.staged, dir)
	r.mu.Unlock()

	files := make([]string, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name)
		if insta.IsImageFile(name) {
			if err := imaging.Save(imaging.New(8, 8, color.White), p); err != nil {
				return nil, err
			}
		} else {
			if err := os.WriteFile(p, []byte("videodata"), 0o600); err != nil {
				return nil, err
			}
		}
		files = append(files, p)
	}

	return &insta.Post{
		StagingDir: dir,
		Files:      files,
		Meta: insta.Meta{
			Shortcode:  u.Shortcode,
			Owner:      "someone",
			Caption:    r.caption[u.Shortcode],
			MediaCount: len(files),
			Permalink:  u.Canonical,
		},
	}, nil
}

func mustURL(t *testing.T, raw string) insta.URL {
	t.Helper()
	u, err := insta.Classify(raw)
	if err != nil {
		t.Fatalf("Classify(%q): %v", raw, err)
	}
	return u
}

func newTestOrchestrator(t *testing.T, ad *fakeAdapter, res insta.Resolver, quota int) (*Orchestrator, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	prefs := store.Open(filepath.Join(dir, "preferences.json"), logx.Nop())
	stats := store.Open(filepath.Join(dir, "stats.json"), logx.Nop())
	o := NewOrchestrator(OrchestratorConfig{AlbumMax: 10, CollageSize: 64},
		ad, prefs, stats, ratelimit.New(quota), res, nil, logx.Nop())
	return o, stats
}

// ---- tests ----

func TestBatchHaltsOnSecondURLAndCleansUp(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	res := &fakeResolver{
		root:  root,
		posts: map[string][]string{"AAA": {"AAA_1.jpg"}},
		errs:  map[string]error{"BBB": insta.ErrNotFound},
	}
	ad := &fakeAdapter{}
	o, stats := newTestOrchestrator(t, ad, res, 5)

	urls := []insta.URL{
		mustURL(t, "https://instagram.com/p/AAA"),
		mustURL(t, "https://instagram.com/p/BBB"),
		mustURL(t, "https://instagram.com/p/CCC"),
	}
	o.HandleBatch(context.Background(), 1, urls)

	// First URL delivered and accounted.
	if kinds := ad.mediaKinds(); len(kinds) != 1 || kinds[0] != "photo" {
		t.Fatalf("media = %v, want one photo from the first URL", kinds)
	}
	u := stats.Usage(1)
	if u.Downloads != 1 {
		t.Fatalf("downloads = %d, want 1", u.Downloads)
	}
	if u.BytesSent <= 0 {
		t.Fatal("bytes_sent not accounted")
	}

	// Batch aborted: CCC never resolved, final edit references BBB.
	final := ad.edits[len(ad.edits)-1]
	if !strings.Contains(final, "Error") || !strings.Contains(final, "BBB") {
		t.Fatalf("final edit = %q, want error referencing the failed URL", final)
	}
	for _, e := range ad.edits {
		if strings.Contains(e, "CCC") && strings.Contains(e, "Fetching 3/3") {
			t.Fatal("batch continued past the failed URL")
		}
	}

	// All staging areas are gone.
	for _, dir := range res.staged {
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Fatalf("staging dir %s survived the batch", dir)
		}
	}
}

func TestRateLimitedBatchIsDeclined(t *testing.T) {
	t.Parallel()
	res := &fakeResolver{root: t.TempDir(), posts: map[string][]string{"AAA": {"AAA_1.jpg"}}}
	ad := &fakeAdapter{}
	o, _ := newTestOrchestrator(t, ad, res, 1)

	urls := []insta.URL{mustURL(t, "https://instagram.com/p/AAA")}
	o.HandleBatch(context.Background(), 1, urls)
	o.HandleBatch(context.Background(), 1, urls)

	if kinds := ad.mediaKinds(); len(kinds) != 1 {
		t.Fatalf("media sends = %d, want 1 (second batch declined)", len(kinds))
	}
	last := ad.texts[len(ad.texts)-1]
	if !strings.Contains(last, "Slow down") {
		t.Fatalf("decline message = %q", last)
	}
}

func TestMultiPhotoPostGetsCollage(t *testing.T) {
	t.Parallel()
	res := &fakeResolver{
		root:    t.TempDir(),
		posts:   map[string][]string{"AAA": {"AAA_1.jpg", "AAA_2.jpg", "AAA_3.jpg", "AAA_4.mp4"}},
		caption: map[string]string{"AAA": "look #sunset #beach"},
	}
	ad := &fakeAdapter{}
	o, _ := newTestOrchestrator(t, ad, res, 5)

	o.HandleBatch(context.Background(), 1, []insta.URL{mustURL(t, "https://instagram.com/p/AAA")})

	// The three photos collapse into one collage; the video goes out grouped.
	kinds := ad.mediaKinds()
	if len(kinds) != 2 || kinds[0] != "photo" || kinds[1] != "video" {
		t.Fatalf("media sends = %v, want collage photo then video", kinds)
	}
	first := ad.media[0]
	if filepath.Base(first.path) != "collage.jpg" {
		t.Fatalf("first send = %s, want the collage", first.path)
	}
	if !strings.Contains(first.caption, "#sunset #beach") {
		t.Fatalf("collage caption = %q, want hashtag paragraph attached", first.caption)
	}
	if ad.media[1].caption != "" {
		t.Fatalf("grouped item carries a caption: %+v", ad.media[1])
	}
}

func TestDocumentModeSendsCaptionFirst(t *testing.T) {
	t.Parallel()
	res := &fakeResolver{
		root:    t.TempDir(),
		posts:   map[string][]string{"AAA": {"AAA_1.jpg", "AAA_2.mp4"}},
		caption: map[string]string{"AAA": "the caption"},
	}
	ad := &fakeAdapter{}
	o, _ := newTestOrchestrator(t, ad, res, 5)
	if err := o.prefs.SetMode(1, store.ModeDocument); err != nil {
		t.Fatal(err)
	}

	o.HandleBatch(context.Background(), 1, []insta.URL{mustURL(t, "https://instagram.com/p/AAA")})

	// Caption message goes out before any file.
	var captionSent bool
	for _, txt := range ad.texts {
		if strings.Contains(txt, "the caption") {
			captionSent = true
		}
	}
	if !captionSent {
		t.Fatalf("no leading caption message in %q", ad.texts)
	}
	kinds := ad.mediaKinds()
	if len(kinds) != 2 || kinds[0] != "document" || kinds[1] != "document" {
		t.Fatalf("media = %v, want two documents", kinds)
	}
}

func TestDeliveryFailureStillCleansUp(t *testing.T) {
	t.Parallel()
	res := &fakeResolver{
		root:  t.TempDir(),
		posts: map[string][]string{"AAA": {"AAA_1.mp4", "AAA_2.mp4"}},
	}
	ad := &fakeAdapter{failOn: "AAA_2.mp4"}
	o, stats := newTestOrchestrator(t, ad, res, 5)

	o.HandleBatch(context.Background(), 1, []insta.URL{mustURL(t, "https://instagram.com/p/AAA")})

	// Delivery aborted: accounting skipped, staging removed.
	if u := stats.Usage(1); u.Downloads != 0 {
		t.Fatalf("downloads = %d, want 0 after delivery failure", u.Downloads)
	}
	for _, dir := range res.staged {
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Fatalf("staging dir %s survived failed delivery", dir)
		}
	}
}

func TestEditFailureFallsBackToReply(t *testing.T) {
	t.Parallel()
	res := &fakeResolver{root: t.TempDir(), errs: map[string]error{"AAA": insta.ErrNoMedia}}
	ad := &fakeAdapter{editErr: errors.New("message gone")}
	o, _ := newTestOrchestrator(t, ad, res, 5)

	o.HandleBatch(context.Background(), 1, []insta.URL{mustURL(t, "https://instagram.com/p/AAA")})

	last := ad.texts[len(ad.texts)-1]
	if !strings.Contains(last, "Error") {
		t.Fatalf("expected error reply fallback, texts = %q", ad.texts)
	}
}
