package insta

import (
	"errors"
	"testing"
)

func TestClassifyVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		raw       string
		shortcode string
		canonical string
	}{
		{name: "post", raw: "https://www.instagram.com/p/Cxyz12_-a/", shortcode: "Cxyz12_-a", canonical: "https://www.instagram.com/p/Cxyz12_-a/"},
		{name: "reel no slash", raw: "https://instagram.com/reel/AbC123", shortcode: "AbC123", canonical: "https://www.instagram.com/reel/AbC123/"},
		{name: "tv with query", raw: "http://www.instagram.com/tv/XYZ?igshid=foo#frag", shortcode: "XYZ", canonical: "https://www.instagram.com/tv/XYZ/"},
		{name: "short host", raw: "https://instagr.am/p/Short1/", shortcode: "Short1", canonical: "https://www.instagram.com/p/Short1/"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.raw)
			if err != nil {
				t.Fatalf("Classify(%q) error: %v", tt.raw, err)
			}
			if got.Shortcode != tt.shortcode {
				t.Fatalf("Shortcode = %q, want %q", got.Shortcode, tt.shortcode)
			}
			if got.Canonical != tt.canonical {
				t.Fatalf("Canonical = %q, want %q", got.Canonical, tt.canonical)
			}
		})
	}
}

func TestClassifyRejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		raw    string
		reason string
	}{
		{name: "plain text", raw: "hello world", reason: RejectNotURL},
		{name: "wrong host", raw: "https://example.com/p/ABC/", reason: RejectWrongHost},
		{name: "profile url", raw: "https://www.instagram.com/someuser/", reason: RejectWrongPath},
		{name: "missing code", raw: "https://www.instagram.com/p/", reason: RejectNoShortcode},
		{name: "bad code", raw: "https://www.instagram.com/p/has%20space/", reason: RejectBadShortcode},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(tt.raw)
			if err == nil {
				t.Fatalf("Classify(%q) succeeded, want reject", tt.raw)
			}
			var rej *Reject
			if !errors.As(err, &rej) {
				t.Fatalf("error is %T, want *Reject", err)
			}
			if rej.Reason != tt.reason {
				t.Fatalf("Reason = %q, want %q", rej.Reason, tt.reason)
			}
		})
	}
}

func TestExtractURLsKeepsDuplicates(t *testing.T) {
	t.Parallel()
	text := "check https://instagram.com/p/AAA and https://instagram.com/p/BBB,\nhttps://instagram.com/p/AAA again"
	urls := ExtractURLs(text)
	if len(urls) != 3 {
		t.Fatalf("got %d urls, want 3 (duplicates are processed independently)", len(urls))
	}
	if urls[0].Shortcode != "AAA" || urls[1].Shortcode != "BBB" || urls[2].Shortcode != "AAA" {
		t.Fatalf("unexpected order: %+v", urls)
	}
}

func TestExtractHashtags(t *testing.T) {
	t.Parallel()
	tags := ExtractHashtags("sunset #Beach #beach #café vibes #one #two #three #four #five #six #seven #eight #nine")
	if len(tags) != maxHashtags {
		t.Fatalf("got %d tags, want %d", len(tags), maxHashtags)
	}
	if tags[0] != "#Beach" {
		t.Fatalf("first tag = %q, want first-seen spelling kept", tags[0])
	}
	for _, tag := range tags {
		if tag == "#beach" {
			t.Fatal("case-insensitive duplicate not removed")
		}
	}
	if tags[1] != "#café" {
		t.Fatalf("accented tag = %q, want #café", tags[1])
	}
}
