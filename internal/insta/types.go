// Package insta holds the Instagram-facing domain types: URL classification,
// post metadata, and the resolver port that fetches a post's media into a
// staging directory.
package insta

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrNotFound means the URL did not resolve to a post.
	ErrNotFound = errors.New("post not found")
	// ErrNoMedia means the post resolved but yielded no downloadable files.
	ErrNoMedia = errors.New("no downloadable media found")
)

// Meta describes a resolved post.
type Meta struct {
	Shortcode  string
	Owner      string
	Caption    string
	MediaCount int
	Permalink  string
	IsVideo    bool // single-video post (reel)
	Date       time.Time
}

// Post is a resolved post staged on disk. Files are absolute paths inside
// StagingDir, in the post's item order. The caller owns StagingDir and must
// remove it when done.
type Post struct {
	StagingDir string
	Files      []string
	Meta       Meta
}

// Resolver fetches a post's media into a fresh staging directory.
//
// Errors: ErrNotFound if the URL is unresolvable, ErrNoMedia if resolution
// succeeds but produces zero files. Implementations stage files themselves;
// on error they must not leave a staging directory behind (the reaper covers
// the crash case, not the error case).
type Resolver interface {
	Resolve(ctx context.Context, u URL) (*Post, error)
}

// IsVideoFile reports whether a staged file is a video by extension.
func IsVideoFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".mp4")
}

// IsImageFile reports whether a staged file is an image by extension.
func IsImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png":
		return true
	default:
		return false
	}
}
