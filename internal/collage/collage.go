// Package collage composes a single square summary image from the first
// photos of a multi-photo post.
package collage

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// MaxItems is how many source photos a collage uses at most.
const MaxItems = 4

var ErrNoImages = errors.New("no images to make collage")

// Build reads up to MaxItems images in the given order, composes them onto a
// size×size white canvas and writes the result as JPEG to outPath.
// Deterministic given the same inputs and ordering.
func Build(imagePaths []string, outPath string, size int) error {
	if size <= 0 {
		size = 800
	}
	n := len(imagePaths)
	if n > MaxItems {
		n = MaxItems
	}
	imgs := make([]image.Image, 0, n)
	for _, p := range imagePaths[:n] {
		img, err := imaging.Open(p)
		if err != nil {
			return fmt.Errorf("open %s: %w", p, err)
		}
		imgs = append(imgs, img)
	}

	out, err := compose(imgs, size)
	if err != nil {
		return err
	}
	return imaging.Save(out, outPath, imaging.JPEGQuality(85))
}

// gridFor picks the layout: 1 -> 1x1, 2 -> 2x1 side by side, 3-4 -> 2x2.
func gridFor(n int) (cols, rows int) {
	switch {
	case n <= 1:
		return 1, 1
	case n == 2:
		return 2, 1
	default:
		return 2, 2
	}
}

// compose lays imgs left-to-right, top-to-bottom on a white canvas. Each
// image is downscaled (never cropped) to fit its cell and centered in it;
// trailing cells stay blank when there are fewer images than cells.
func compose(imgs []image.Image, size int) (*image.NRGBA, error) {
	n := len(imgs)
	if n == 0 {
		return nil, ErrNoImages
	}
	if n > MaxItems {
		imgs = imgs[:MaxItems]
		n = MaxItems
	}

	cols, rows := gridFor(n)
	cellW := size / cols
	cellH := size / rows

	canvas := imaging.New(cellW*cols, cellH*rows, color.White)

	for i, img := range imgs {
		c := i % cols
		r := i / cols
		fitted := imaging.Fit(img, cellW, cellH, imaging.Lanczos)
		b := fitted.Bounds()
		x := c*cellW + (cellW-b.Dx())/2
		y := r*cellH + (cellH-b.Dy())/2
		canvas = imaging.Paste(canvas, fitted, image.Pt(x, y))
	}
	return canvas, nil
}
