// Package compressor searches for the highest JPEG quality that fits a byte
// budget.
package compressor

import (
	"context"
	"fmt"
	"math"

	"github.com/wellwelwel/jpegr/internal/blob"
	"github.com/wellwelwel/jpegr/internal/decoder"
	"github.com/wellwelwel/jpegr/internal/errs"
)

// qualityEpsilon absorbs float drift so that MinQuality itself is never tried.
const qualityEpsilon = 1e-9

// Encoder encodes a decoded image at a quality over a background color.
type Encoder interface {
	Encode(ctx context.Context, img *decoder.Image, quality float64, background string) (*blob.Blob, error)
}

// Options are fixed for one search.
type Options struct {
	MaxSize      int64
	OriginalSize int64 // <= 0 when unknown
	MaxQuality   float64
	MinQuality   float64
	Step         float64
	Background   string
}

type Result struct {
	Blob          *blob.Blob
	FinalQuality  float64
	WasCompressed bool
}

// EffectiveMaxSize is the real target: never more than the original size,
// since growing past it would make the output worse than the input.
func (o Options) EffectiveMaxSize() int64 {
	if o.OriginalSize > 0 && o.OriginalSize < o.MaxSize {
		return o.OriginalSize
	}
	return o.MaxSize
}

// CompressToFit encodes at MaxQuality and, while the result is over budget,
// re-encodes at MaxQuality - n*Step for as long as that stays above
// MinQuality. The last candidate is returned even if it is still too large.
func CompressToFit(ctx context.Context, enc Encoder, img *decoder.Image, opts Options) (Result, error) {
	if !(opts.Step > 0) {
		return Result{}, errs.Validation("compress", "Invalid compression step %v. Expected a value greater than 0.", opts.Step)
	}
	limit := opts.EffectiveMaxSize()

	candidate, err := enc.Encode(ctx, img, opts.MaxQuality, opts.Background)
	if err != nil {
		return Result{}, fmt.Errorf("encode at quality %.2f: %w", opts.MaxQuality, err)
	}
	res := Result{Blob: candidate, FinalQuality: opts.MaxQuality}
	if candidate.Size() <= limit {
		return res, nil
	}

	res.WasCompressed = true
	for n := 1; ; n++ {
		quality := opts.MaxQuality - float64(n)*opts.Step
		if quality <= opts.MinQuality+qualityEpsilon {
			break
		}
		candidate, err = enc.Encode(ctx, img, quality, opts.Background)
		if err != nil {
			return Result{}, fmt.Errorf("encode at quality %.2f: %w", quality, err)
		}
		res.Blob = candidate
		res.FinalQuality = roundQuality(quality)
		if candidate.Size() <= limit {
			break
		}
	}
	return res, nil
}

// roundQuality trims float drift from a reported quality, e.g. 0.3999999999999999 to 0.4.
func roundQuality(q float64) float64 {
	return math.Round(q*1e6) / 1e6
}
