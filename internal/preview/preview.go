// Package preview builds displayable references for processed blobs.
package preview

import (
	"context"
	"fmt"
	"sync"

	"github.com/wellwelwel/jpegr/internal/blob"
	"github.com/wellwelwel/jpegr/internal/bytestr"
	"github.com/wellwelwel/jpegr/internal/capability"
	"github.com/wellwelwel/jpegr/internal/errs"
	"github.com/wellwelwel/jpegr/internal/host"
)

// Source is a URI usable as an image source. Revoke is nil for embedded
// data URIs and idempotent otherwise.
type Source struct {
	URI    string
	Revoke func()
}

// Revocable reports whether the reference must be revoked when discarded.
func (s Source) Revocable() bool { return s.Revoke != nil }

// Builder produces previews through the best path the host offers:
// object reference, then file-reader data URI, then streaming-response data URI.
type Builder struct {
	objects   host.ObjectURLs
	files     host.FileReader
	responses host.ResponseReader
	codec     bytestr.Codec
}

func New(h *host.Host, prof capability.Profile) *Builder {
	b := &Builder{codec: bytestr.New(prof.TypedByteArray)}
	if prof.ObjectReference {
		b.objects = h.Objects
	}
	if prof.FileReader {
		b.files = h.Files
	}
	if prof.StreamingResponse {
		b.responses = h.Responses
	}
	return b
}

func (b *Builder) Build(ctx context.Context, bl *blob.Blob) (Source, error) {
	switch {
	case b.objects != nil:
		url, err := b.objects.CreateObjectURL(bl)
		if err != nil {
			return Source{}, fmt.Errorf("create object URL: %w", err)
		}
		var once sync.Once
		return Source{URI: url, Revoke: func() {
			once.Do(func() { b.objects.RevokeObjectURL(url) })
		}}, nil

	case b.files != nil:
		uri, err := b.files.ReadAsDataURL(ctx, bl)
		if err != nil {
			return Source{}, fmt.Errorf("convert blob: %w", err)
		}
		return Source{URI: uri}, nil

	case b.responses != nil:
		raw, err := b.responses.ArrayBuffer(ctx, bl)
		if err != nil {
			return Source{}, fmt.Errorf("read response: %w", err)
		}
		b64, err := b.codec.Btoa(b.codec.Binary(raw))
		if err != nil {
			return Source{}, fmt.Errorf("encode base64: %w", err)
		}
		return Source{URI: bytestr.DataURI(bl.Type(), b64)}, nil
	}
	return Source{}, errs.Capability("preview", "No supported method to build an image preview.")
}
