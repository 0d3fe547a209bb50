package collage

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func solid(w, h int, c color.Color) image.Image {
	return imaging.New(w, h, c)
}

func TestGridFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n, cols, rows int
	}{
		{1, 1, 1},
		{2, 2, 1},
		{3, 2, 2},
		{4, 2, 2},
	}
	for _, tt := range tests {
		cols, rows := gridFor(tt.n)
		if cols != tt.cols || rows != tt.rows {
			t.Fatalf("gridFor(%d) = %dx%d, want %dx%d", tt.n, cols, rows, tt.cols, tt.rows)
		}
	}
}

func TestComposeCanvasDimensions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		imgs   []image.Image
		size   int
		wantW  int
		wantH  int
	}{
		{name: "single", imgs: []image.Image{solid(100, 100, color.Black)}, size: 800, wantW: 800, wantH: 800},
		// Two images share one row, but the canvas stays the target square:
		// each cell is 400x800.
		{name: "pair side by side", imgs: []image.Image{solid(50, 50, color.Black), solid(50, 50, color.Black)}, size: 800, wantW: 800, wantH: 800},
		{name: "quad", imgs: []image.Image{solid(10, 10, color.Black), solid(10, 10, color.Black), solid(10, 10, color.Black), solid(10, 10, color.Black)}, size: 800, wantW: 800, wantH: 800},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			out, err := compose(tt.imgs, tt.size)
			if err != nil {
				t.Fatalf("compose: %v", err)
			}
			b := out.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Fatalf("canvas = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestComposeFitsCellsWithoutOverflow(t *testing.T) {
	t.Parallel()
	// Four wide red images on a 2x2 grid: every placed image must stay inside
	// its 400x400 cell, downscaled to fit, centered vertically.
	red := color.NRGBA{R: 255, A: 255}
	imgs := []image.Image{
		solid(1600, 400, red),
		solid(1600, 400, red),
		solid(1600, 400, red),
		solid(1600, 400, red),
	}
	out, err := compose(imgs, 800)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	// 1600x400 fit into 400x400 -> 400x100, centered at y offset 150 per cell.
	for cell := 0; cell < 4; cell++ {
		cx := (cell % 2) * 400
		cy := (cell / 2) * 400

		// Inside the placed image: red.
		if got := out.NRGBAAt(cx+200, cy+200); got.R < 200 {
			t.Fatalf("cell %d: center pixel not from source image: %+v", cell, got)
		}
		// Above the centered strip: white background, so nothing overflowed.
		if got := out.NRGBAAt(cx+200, cy+50); got.R < 200 || got.G < 200 || got.B < 200 {
			t.Fatalf("cell %d: expected background above centered image, got %+v", cell, got)
		}
	}
}

func TestComposeNoImages(t *testing.T) {
	t.Parallel()
	if _, err := compose(nil, 800); err != ErrNoImages {
		t.Fatalf("err = %v, want ErrNoImages", err)
	}
}

func TestBuildWritesJPEG(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	srcs := make([]string, 3)
	for i := range srcs {
		p := filepath.Join(dir, "src"+string(rune('a'+i))+".png")
		if err := imaging.Save(solid(120, 90, color.NRGBA{B: 255, A: 255}), p); err != nil {
			t.Fatalf("save source: %v", err)
		}
		srcs[i] = p
	}

	out := filepath.Join(dir, "collage.jpg")
	if err := Build(srcs, out, 400); err != nil {
		t.Fatalf("Build: %v", err)
	}

	img, err := imaging.Open(out)
	if err != nil {
		t.Fatalf("open collage: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 400 {
		t.Fatalf("collage = %dx%d, want 400x400", b.Dx(), b.Dy())
	}
}
