package encoder

import (
	"context"
	"fmt"
	"strings"

	"github.com/wellwelwel/jpegr/internal/blob"
	"github.com/wellwelwel/jpegr/internal/bytestr"
	"github.com/wellwelwel/jpegr/internal/capability"
	"github.com/wellwelwel/jpegr/internal/errs"
	"github.com/wellwelwel/jpegr/internal/host"
)

// Serializer turns a finished surface into JPEG bytes.
type Serializer interface {
	// Name identifies the strategy (e.g. "canvas-to-blob", "data-url").
	Name() string

	// Serialize encodes the surface at quality in (0,1].
	Serialize(ctx context.Context, c host.Canvas, quality float64) (*blob.Blob, error)
}

// Registry holds the serializers the host supports, best first.
type Registry struct {
	serializers []Serializer
}

// NewRegistry probes the profile once and orders the available serializers.
// The synchronous data-URL path exists on every surface and is always last.
func NewRegistry(h *host.Host, prof capability.Profile) *Registry {
	r := &Registry{}
	if prof.CanvasCallbackEncode {
		r.serializers = append(r.serializers, callbackSerializer{enc: h.BlobEncoder})
	}
	r.serializers = append(r.serializers, dataURLSerializer{codec: bytestr.New(prof.TypedByteArray)})
	return r
}

// Preferred returns the serializer used for every encode.
func (r *Registry) Preferred() Serializer {
	return r.serializers[0]
}

// Available returns the serializer names in priority order.
func (r *Registry) Available() []string {
	names := make([]string, len(r.serializers))
	for i, s := range r.serializers {
		names[i] = s.Name()
	}
	return names
}

// String returns a summary of available serializers.
func (r *Registry) String() string {
	return fmt.Sprintf("serializers: %s", strings.Join(r.Available(), ", "))
}

// ─── callback encode ─────────────────────────────────────────

type callbackSerializer struct {
	enc host.BlobEncoder
}

func (callbackSerializer) Name() string { return "canvas-to-blob" }

func (s callbackSerializer) Serialize(ctx context.Context, c host.Canvas, quality float64) (*blob.Blob, error) {
	done := make(chan *blob.Blob, 1)
	s.enc.ToBlob(c, blob.MimeJPEG, quality, func(b *blob.Blob) { done <- b })

	select {
	case b := <-done:
		if b == nil {
			return nil, errs.Encode("encode", nil)
		}
		return b, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ─── data URL encode ─────────────────────────────────────────

type dataURLSerializer struct {
	codec bytestr.Codec
}

func (dataURLSerializer) Name() string { return "data-url" }

func (s dataURLSerializer) Serialize(ctx context.Context, c host.Canvas, quality float64) (*blob.Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	uri, err := c.ToDataURL(blob.MimeJPEG, quality)
	if err != nil {
		return nil, errs.Encode("encode", err)
	}
	mime, data, err := s.codec.ParseDataURI(uri)
	if err != nil {
		return nil, errs.Encode("encode", err)
	}
	return blob.New(data, mime), nil
}
