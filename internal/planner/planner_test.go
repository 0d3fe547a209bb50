package planner

import (
	"reflect"
	"testing"

	"gramgrab/internal/store"
)

func TestSingleImageIsPrimary(t *testing.T) {
	t.Parallel()
	p := Build([]string{"a.jpg"}, store.ModeMedia, "cap", "", 10)

	if p.Shape != ShapeMedia {
		t.Fatalf("Shape = %v, want media", p.Shape)
	}
	if p.Primary == nil || p.Primary.File != "a.jpg" || p.Primary.IsCollage() {
		t.Fatalf("Primary = %+v, want single file a.jpg without collage", p.Primary)
	}
	if len(p.Group) != 0 {
		t.Fatalf("Group = %v, want empty", p.Group)
	}
	if p.Where != CaptionOnPrimary {
		t.Fatalf("Where = %v, want CaptionOnPrimary", p.Where)
	}
}

func TestThreeImagesGetCollage(t *testing.T) {
	t.Parallel()
	files := []string{"a.jpg", "b.png", "c.jpeg"}
	p := Build(files, store.ModeMedia, "cap", "", 10)

	if !p.Primary.IsCollage() {
		t.Fatalf("Primary = %+v, want collage", p.Primary)
	}
	if !reflect.DeepEqual(p.Primary.CollageSources, files) {
		t.Fatalf("CollageSources = %v, want all 3 in order", p.Primary.CollageSources)
	}
	if len(p.Group) != 0 {
		t.Fatalf("Group = %v, want empty (all images consumed by the collage)", p.Group)
	}
}

func TestCollageLeftoversStayGrouped(t *testing.T) {
	t.Parallel()
	files := []string{"a.jpg", "v.mp4", "b.jpg", "c.jpg"}
	p := Build(files, store.ModeMedia, "", "", 10)

	if !p.Primary.IsCollage() {
		t.Fatalf("Primary = %+v, want collage", p.Primary)
	}
	if !reflect.DeepEqual(p.Primary.CollageSources, []string{"a.jpg", "b.jpg", "c.jpg"}) {
		t.Fatalf("CollageSources = %v", p.Primary.CollageSources)
	}
	if !reflect.DeepEqual(p.Group, []string{"v.mp4"}) {
		t.Fatalf("Group = %v, want just the video", p.Group)
	}
}

func TestCollageSourcesCappedAtFour(t *testing.T) {
	t.Parallel()
	files := []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg", "f.jpg"}
	p := Build(files, store.ModeMedia, "", "", 10)

	if got := len(p.Primary.CollageSources); got != 4 {
		t.Fatalf("collage uses %d sources, want 4", got)
	}
	if p.Primary.CollageSources[0] != "a.jpg" || p.Primary.CollageSources[3] != "d.jpg" {
		t.Fatalf("sources not the first four in fetch order: %v", p.Primary.CollageSources)
	}
	if !reflect.DeepEqual(p.Group, []string{"e.jpg", "f.jpg"}) {
		t.Fatalf("Group = %v, want the images past the collage cap", p.Group)
	}
}

func TestDocumentModeKeepsOrderAndCap(t *testing.T) {
	t.Parallel()
	files := []string{"a.jpg", "b.jpg", "v.mp4"}
	p := Build(files, store.ModeDocument, "cap", "#x", 2)

	if p.Shape != ShapeDocument {
		t.Fatalf("Shape = %v, want document", p.Shape)
	}
	if p.Primary != nil {
		t.Fatalf("document mode produced a primary: %+v", p.Primary)
	}
	if !reflect.DeepEqual(p.Group, []string{"a.jpg", "b.jpg"}) {
		t.Fatalf("Group = %v, want first 2 in original order", p.Group)
	}
	if p.Where != CaptionLeading {
		t.Fatalf("Where = %v, want CaptionLeading", p.Where)
	}
}

func TestMultipleVideosNoPrimaryNoCaption(t *testing.T) {
	t.Parallel()
	p := Build([]string{"a.mp4", "b.mp4", "c.mp4"}, store.ModeMedia, "cap", "", 10)

	if p.Primary != nil {
		t.Fatalf("Primary = %+v, want none", p.Primary)
	}
	if len(p.Group) != 3 {
		t.Fatalf("Group = %v, want all 3 videos", p.Group)
	}
	if p.Where != CaptionNone {
		t.Fatalf("Where = %v, want CaptionNone", p.Where)
	}
}

func TestCaptionParagraphs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		caption string
		tagLine string
		want    string
	}{
		{name: "both", caption: "hello", tagLine: "#a #b", want: "hello\n\n#a #b"},
		{name: "caption only", caption: "hello", tagLine: "", want: "hello"},
		{name: "tags only", caption: "", tagLine: "#a", want: "#a"},
		{name: "neither", caption: "", tagLine: "", want: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			p := Build([]string{"a.jpg"}, store.ModeMedia, tt.caption, tt.tagLine, 10)
			if p.Caption != tt.want {
				t.Fatalf("Caption = %q, want %q", p.Caption, tt.want)
			}
		})
	}
}
