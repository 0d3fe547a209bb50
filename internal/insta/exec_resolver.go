package insta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ExecResolver resolves posts by shelling out to the instaloader CLI, which
// stages a post's media into a per-request directory. The staged directory
// is owned by the caller.
type ExecResolver struct {
	// Bin is the instaloader executable (default "instaloader").
	Bin    string
	Root   string // staging root
	Prefix string // staging dir name prefix
}

func NewExecResolver(bin, root, prefix string) *ExecResolver {
	if strings.TrimSpace(bin) == "" {
		bin = "instaloader"
	}
	return &ExecResolver{Bin: bin, Root: root, Prefix: prefix}
}

func (r *ExecResolver) Resolve(ctx context.Context, u URL) (*Post, error) {
	dir, err := NewStagingDir(r.Root, r.Prefix, u.Shortcode)
	if err != nil {
		return nil, err
	}

	// The metadata JSON sidecar stays uncompressed so the owner handle and
	// post date can be read back below.
	cmd := exec.CommandContext(ctx, r.Bin,
		"--dirname-pattern", filepath.Join(dir, "dl"),
		"--filename-pattern", "{shortcode}_{mediaid}",
		"--no-compress-json",
		"--", "-"+u.Shortcode,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.RemoveAll(dir)
		msg := stderr.String()
		if strings.Contains(msg, "404") || strings.Contains(msg, "Fetching Post metadata failed") {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("instaloader: %w: %s", err, strings.TrimSpace(msg))
	}

	staged, err := collectStaged(filepath.Join(dir, "dl"))
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	if len(staged.files) == 0 {
		_ = os.RemoveAll(dir)
		return nil, ErrNoMedia
	}

	meta := Meta{
		Shortcode:  u.Shortcode,
		Caption:    staged.caption,
		MediaCount: len(staged.files),
		Permalink:  u.Canonical,
		IsVideo:    len(staged.files) == 1 && IsVideoFile(staged.files[0]),
	}
	meta.Owner, meta.Date = readSidecar(staged.metaPath)
	return &Post{StagingDir: dir, Files: staged.files, Meta: meta}, nil
}

type stagedSet struct {
	files    []string
	caption  string
	metaPath string // metadata JSON sidecar, "" if absent
}

// collectStaged lists downloadable media (sorted by name, which preserves the
// post's item order under the shortcode_mediaid pattern) plus the caption and
// metadata sidecars instaloader writes alongside.
func collectStaged(dir string) (stagedSet, error) {
	var s stagedSet
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		path := filepath.Join(dir, name)
		switch {
		case IsImageFile(name) || IsVideoFile(name):
			s.files = append(s.files, path)
		case strings.EqualFold(filepath.Ext(name), ".txt") && s.caption == "":
			if b, rerr := os.ReadFile(path); rerr == nil {
				s.caption = strings.TrimSpace(string(b))
			}
		case strings.EqualFold(filepath.Ext(name), ".json") && s.metaPath == "":
			s.metaPath = path
		}
	}
	sort.Strings(s.files)
	return s, nil
}

// readSidecar extracts the author handle and post date from instaloader's
// metadata JSON. A missing or unparsable sidecar degrades to zero values;
// the caption header then falls back to "unknown".
func readSidecar(path string) (owner string, date time.Time) {
	if path == "" {
		return "", time.Time{}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", time.Time{}
	}
	var doc struct {
		Node struct {
			Owner struct {
				Username string `json:"username"`
			} `json:"owner"`
			TakenAt int64 `json:"taken_at_timestamp"`
		} `json:"node"`
	}
	if json.Unmarshal(b, &doc) != nil {
		return "", time.Time{}
	}
	if doc.Node.TakenAt > 0 {
		date = time.Unix(doc.Node.TakenAt, 0).UTC()
	}
	return doc.Node.Owner.Username, date
}
