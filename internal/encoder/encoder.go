// Package encoder rasterizes decoded images onto a host surface and
// serializes the surface to JPEG.
package encoder

import (
	"context"
	"image"

	"github.com/wellwelwel/jpegr/internal/blob"
	"github.com/wellwelwel/jpegr/internal/capability"
	"github.com/wellwelwel/jpegr/internal/decoder"
	"github.com/wellwelwel/jpegr/internal/errs"
	"github.com/wellwelwel/jpegr/internal/host"
)

// JPEG encodes through the host's surfaces and its preferred serializer.
type JPEG struct {
	canvases   host.CanvasFactory
	serializer Serializer
	registry   *Registry
}

func New(h *host.Host, prof capability.Profile) *JPEG {
	reg := NewRegistry(h, prof)
	e := &JPEG{serializer: reg.Preferred(), registry: reg}
	if prof.Canvas {
		e.canvases = h.Canvases
	}
	return e
}

// Registry exposes the serializer selection for diagnostics.
func (e *JPEG) Registry() *Registry { return e.registry }

// Surface allocates a width×height surface filled with background. The color
// is validated before anything is allocated.
func (e *JPEG) Surface(width, height int, background string) (host.Canvas, error) {
	if background == "" {
		background = DefaultBackground
	}
	bg, ok := ParseHexColor(background)
	if !ok {
		return nil, errs.Validation("encode",
			`Invalid background color: %q. Expected a hex color string like "#000" or "#000000".`, background)
	}
	if e.canvases == nil {
		return nil, errs.Capability("encode", "Canvas 2D context not supported")
	}
	c, err := e.canvases.NewCanvas(width, height)
	if err != nil {
		return nil, errs.Capability("encode", err.Error())
	}
	c.FillRect(bg)
	return c, nil
}

// Serialize encodes a finished surface at quality in (0,1].
func (e *JPEG) Serialize(ctx context.Context, c host.Canvas, quality float64) (*blob.Blob, error) {
	if !(quality > 0 && quality <= 1) {
		return nil, errs.Validation("encode", "Invalid quality %v. Expected a value in (0, 1].", quality)
	}
	return e.serializer.Serialize(ctx, c, quality)
}

// Encode draws img at the origin, at natural size, over background and
// serializes the result.
func (e *JPEG) Encode(ctx context.Context, img *decoder.Image, quality float64, background string) (*blob.Blob, error) {
	c, err := e.Surface(img.Width, img.Height, background)
	if err != nil {
		return nil, err
	}
	c.DrawImage(img.Source, image.Point{})
	return e.Serialize(ctx, c, quality)
}
