// Package planner decides how a fetched post is delivered: document vs.
// media shape, grouping, caption placement, and whether a collage summarizes
// multiple photos. It is pure; the orchestrator materializes the plan.
package planner

import (
	"gramgrab/internal/collage"
	"gramgrab/internal/insta"
	"gramgrab/internal/store"
)

type Shape int

const (
	ShapeMedia Shape = iota
	ShapeDocument
)

// CaptionPlacement says where the caption text goes.
type CaptionPlacement int

const (
	// CaptionLeading sends the caption as its own message before the files
	// (document mode).
	CaptionLeading CaptionPlacement = iota
	// CaptionOnPrimary attaches the caption to the primary item.
	CaptionOnPrimary
	// CaptionNone sends no caption (several files, nothing to attach it to).
	CaptionNone
)

// Primary is the single leading item of a media-shaped delivery: either a
// collage to synthesize from source photos, or one existing file.
type Primary struct {
	CollageSources []string // non-empty: build a collage from these photos
	File           string   // otherwise: this staged file
}

func (p *Primary) IsCollage() bool { return p != nil && len(p.CollageSources) > 0 }

// Plan is the derived delivery plan for one post. Group holds staged file
// paths in fetch order, already truncated to the per-group cap; excess items
// are dropped, not deferred.
type Plan struct {
	Shape   Shape
	Primary *Primary
	Group   []string
	Caption string // full caption text incl. hashtag paragraph; may be ""
	Where   CaptionPlacement
}

// Build derives the plan for one post's staged files.
//
// caption is produced by the caller's formatting layer and attached verbatim;
// tagLine (when non-empty) is appended as a new paragraph.
func Build(files []string, mode store.Mode, caption, tagLine string, maxGroup int) Plan {
	full := caption
	if tagLine != "" {
		if full != "" {
			full += "\n\n"
		}
		full += tagLine
	}

	if mode == store.ModeDocument {
		return Plan{
			Shape:   ShapeDocument,
			Group:   truncate(files, maxGroup),
			Caption: full,
			Where:   CaptionLeading,
		}
	}

	var images []string
	for _, f := range files {
		if insta.IsImageFile(f) {
			images = append(images, f)
		}
	}

	switch {
	case len(images) > 1:
		sources := images
		if len(sources) > collage.MaxItems {
			sources = sources[:collage.MaxItems]
		}
		// Files consumed by the collage are not delivered again; only the
		// leftovers (videos, images past the collage cap) go out grouped.
		consumed := make(map[string]bool, len(sources))
		for _, src := range sources {
			consumed[src] = true
		}
		var rest []string
		for _, f := range files {
			if !consumed[f] {
				rest = append(rest, f)
			}
		}
		return Plan{
			Shape:   ShapeMedia,
			Primary: &Primary{CollageSources: sources},
			Group:   truncate(rest, maxGroup),
			Caption: full,
			Where:   CaptionOnPrimary,
		}
	case len(files) == 1:
		return Plan{
			Shape:   ShapeMedia,
			Primary: &Primary{File: files[0]},
			Caption: full,
			Where:   CaptionOnPrimary,
		}
	default:
		// Zero or one image but several files (e.g. multiple videos): no
		// primary, no caption to hang anywhere.
		return Plan{
			Shape:   ShapeMedia,
			Group:   truncate(files, maxGroup),
			Caption: full,
			Where:   CaptionNone,
		}
	}
}

func truncate(files []string, maxGroup int) []string {
	if maxGroup > 0 && len(files) > maxGroup {
		return files[:maxGroup]
	}
	return files
}
