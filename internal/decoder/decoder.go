// Package decoder turns image bytes into a drawable surface through the best
// path the host offers.
package decoder

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wellwelwel/jpegr/internal/blob"
	"github.com/wellwelwel/jpegr/internal/bytestr"
	"github.com/wellwelwel/jpegr/internal/capability"
	"github.com/wellwelwel/jpegr/internal/errs"
	"github.com/wellwelwel/jpegr/internal/host"
)

// Image is a decoded drawable owned by whoever decoded it.
// Dispose must be called exactly once; further calls are no-ops.
type Image struct {
	Source image.Image
	Width  int
	Height int

	once    sync.Once
	dispose func()
}

// NewImage wraps src. dispose may be nil.
func NewImage(src image.Image, width, height int, dispose func()) *Image {
	return &Image{Source: src, Width: width, Height: height, dispose: dispose}
}

func (img *Image) Dispose() {
	if img == nil {
		return
	}
	img.once.Do(func() {
		if img.dispose != nil {
			img.dispose()
		}
	})
}

// strategy is one decode path. A strategy returning (nil, nil) declines and
// lets the next one run.
type strategy interface {
	name() string
	decode(ctx context.Context, b *blob.Blob) (*Image, error)
}

// ImageDecoder is what the merger and facade need from a decoder.
type ImageDecoder interface {
	Decode(ctx context.Context, b *blob.Blob) (*Image, error)
}

// Decoder runs its strategies in order; the first success wins.
type Decoder struct {
	strategies []strategy
	log        *zap.Logger
}

// New selects the decode strategies once from the profile.
func New(h *host.Host, prof capability.Profile, log *zap.Logger) *Decoder {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Decoder{log: log}
	if prof.BitmapDecode {
		d.strategies = append(d.strategies, bitmapStrategy{bitmaps: h.Bitmaps, log: log})
	}
	d.strategies = append(d.strategies, newDataURIStrategy(h, prof))
	return d
}

// Decode returns the first successful decode.
func (d *Decoder) Decode(ctx context.Context, b *blob.Blob) (*Image, error) {
	for _, s := range d.strategies {
		img, err := s.decode(ctx, b)
		if err != nil {
			return nil, err
		}
		if img != nil {
			d.log.Debug("decoded image",
				zap.String("strategy", s.name()),
				zap.Int("width", img.Width),
				zap.Int("height", img.Height))
			return img, nil
		}
	}
	return nil, errs.Capability("decode", "No supported method to decode the image.")
}

// String reports the strategy order, e.g. "decode: bitmap, data-uri(file-reader)".
func (d *Decoder) String() string {
	names := make([]string, len(d.strategies))
	for i, s := range d.strategies {
		names[i] = s.name()
	}
	return "decode: " + strings.Join(names, ", ")
}

// ─── bitmap ──────────────────────────────────────────────────

type bitmapStrategy struct {
	bitmaps host.BitmapDecoder
	log     *zap.Logger
}

func (bitmapStrategy) name() string { return "bitmap" }

// decode never fails: any bitmap error falls through to the next strategy.
func (s bitmapStrategy) decode(ctx context.Context, b *blob.Blob) (*Image, error) {
	bm, err := s.bitmaps.DecodeBitmap(ctx, b)
	if err != nil {
		s.log.Debug("bitmap decode failed, falling back", zap.Error(err))
		return nil, nil
	}
	return NewImage(bm.Image(), bm.Width(), bm.Height(), bm.Close), nil
}

// ─── data URI + image loader ─────────────────────────────────

type dataURIStrategy struct {
	files     host.FileReader
	responses host.ResponseReader
	images    host.ImageLoader
	codec     bytestr.Codec
}

func newDataURIStrategy(h *host.Host, prof capability.Profile) dataURIStrategy {
	s := dataURIStrategy{codec: bytestr.New(prof.TypedByteArray)}
	if prof.FileReader {
		s.files = h.Files
	}
	if prof.StreamingResponse {
		s.responses = h.Responses
	}
	if prof.ImageLoader {
		s.images = h.Images
	}
	return s
}

func (s dataURIStrategy) name() string {
	switch {
	case s.files != nil:
		return "data-uri(file-reader)"
	case s.responses != nil:
		return "data-uri(streaming-response)"
	default:
		return "data-uri(unavailable)"
	}
}

func (s dataURIStrategy) decode(ctx context.Context, b *blob.Blob) (*Image, error) {
	uri, err := s.dataURI(ctx, b)
	if err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, errs.Capability("decode", "No supported method to load the image.")
	}
	img, err := s.images.LoadImage(ctx, uri)
	if err != nil {
		return nil, errs.Decode("decode", err)
	}
	bounds := img.Bounds()
	return NewImage(img, bounds.Dx(), bounds.Dy(), nil), nil
}

func (s dataURIStrategy) dataURI(ctx context.Context, b *blob.Blob) (string, error) {
	if s.files != nil {
		uri, err := s.files.ReadAsDataURL(ctx, b)
		if err != nil {
			return "", fmt.Errorf("read file: %w", err)
		}
		return uri, nil
	}
	if s.responses != nil {
		raw, err := s.responses.ArrayBuffer(ctx, b)
		if err != nil {
			return "", fmt.Errorf("read response: %w", err)
		}
		b64, err := s.codec.Btoa(s.codec.Binary(raw))
		if err != nil {
			return "", fmt.Errorf("encode base64: %w", err)
		}
		return bytestr.DataURI(mimeOrDefault(b.Type()), b64), nil
	}
	return "", errs.Capability("decode", "No supported method to read the image file.")
}

func mimeOrDefault(mime string) string {
	if mime == "" {
		return "application/octet-stream"
	}
	return mime
}

// With decodes src, hands the image to fn and disposes it on every exit path.
func With(ctx context.Context, d ImageDecoder, src *blob.Blob, fn func(*Image) error) error {
	img, err := d.Decode(ctx, src)
	if err != nil {
		return err
	}
	defer img.Dispose()
	return fn(img)
}
