// Package merger composites several images onto one surface before encoding.
package merger

import (
	"context"
	"fmt"
	"image"

	"github.com/wellwelwel/jpegr/internal/blob"
	"github.com/wellwelwel/jpegr/internal/decoder"
	"github.com/wellwelwel/jpegr/internal/encoder"
	"github.com/wellwelwel/jpegr/internal/errs"
	"github.com/wellwelwel/jpegr/internal/host"
)

// Direction is the merge axis.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == Horizontal || d == Vertical
}

// Compositor allocates a filled surface and serializes it once drawn on.
type Compositor interface {
	Surface(width, height int, background string) (host.Canvas, error)
	Serialize(ctx context.Context, c host.Canvas, quality float64) (*blob.Blob, error)
}

type Options struct {
	Direction  Direction
	Quality    float64 // defaults to 1
	Background string  // defaults to "#000000"
}

type Result struct {
	Blob   *blob.Blob
	Width  int
	Height int
}

// Validate checks everything that can be checked without decoding.
func Validate(n int, opts Options) error {
	if n == 0 {
		return errs.Validation("merge", "At least one image source is required for merging.")
	}
	if !opts.Direction.Valid() {
		return errs.Validation("merge", `Invalid direction %q. Expected "horizontal" or "vertical".`, string(opts.Direction))
	}
	bg := opts.Background
	if bg == "" {
		bg = encoder.DefaultBackground
	}
	if !encoder.ValidHexColor(bg) {
		return errs.Validation("merge",
			`Invalid background color: %q. Expected a hex color string like "#000" or "#000000".`, bg)
	}
	return nil
}

// Merge decodes every source in order, lays them out along the direction
// (top/left aligned) and encodes the composition once. Every decoded image is
// disposed before returning, whether or not a later source failed.
func Merge(ctx context.Context, dec decoder.ImageDecoder, comp Compositor, sources []*blob.Blob, opts Options) (Result, error) {
	if err := Validate(len(sources), opts); err != nil {
		return Result{}, err
	}
	if opts.Quality == 0 {
		opts.Quality = 1
	}
	if opts.Background == "" {
		opts.Background = encoder.DefaultBackground
	}

	decoded := make([]*decoder.Image, 0, len(sources))
	defer func() {
		for _, img := range decoded {
			img.Dispose()
		}
	}()

	for i, src := range sources {
		img, err := dec.Decode(ctx, src)
		if err != nil {
			return Result{}, fmt.Errorf("decode source %d: %w", i, err)
		}
		decoded = append(decoded, img)
	}

	width, height := Dimensions(decoded, opts.Direction)
	c, err := comp.Surface(width, height, opts.Background)
	if err != nil {
		return Result{}, err
	}

	var offset image.Point
	for _, img := range decoded {
		c.DrawImage(img.Source, offset)
		if opts.Direction == Horizontal {
			offset.X += img.Width
		} else {
			offset.Y += img.Height
		}
	}

	out, err := comp.Serialize(ctx, c, opts.Quality)
	if err != nil {
		return Result{}, err
	}
	return Result{Blob: out, Width: width, Height: height}, nil
}

// Dimensions sums extents along the merge axis and takes the max across it.
func Dimensions(images []*decoder.Image, dir Direction) (width, height int) {
	for _, img := range images {
		if dir == Horizontal {
			width += img.Width
			height = max(height, img.Height)
		} else {
			width = max(width, img.Width)
			height += img.Height
		}
	}
	return width, height
}
