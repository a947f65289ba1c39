package encoder

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellwelwel/jpegr/internal/blob"
	"github.com/wellwelwel/jpegr/internal/capability"
	"github.com/wellwelwel/jpegr/internal/decoder"
	"github.com/wellwelwel/jpegr/internal/errs"
	"github.com/wellwelwel/jpegr/internal/host"
)

func newJPEG(h *host.Host) *JPEG {
	return New(h, capability.Probe(h))
}

func gradient(w, h int) *decoder.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 5), B: uint8(x ^ y), A: 255})
		}
	}
	return decoder.NewImage(img, w, h, nil)
}

type countingCanvases struct {
	host.CanvasFactory
	n int
}

func (c *countingCanvases) NewCanvas(w, h int) (host.Canvas, error) {
	c.n++
	return c.CanvasFactory.NewCanvas(w, h)
}

type nilBlobEncoder struct{}

func (nilBlobEncoder) ToBlob(_ host.Canvas, _ string, _ float64, done func(*blob.Blob)) {
	go done(nil)
}

func TestSurface_ValidatesColorBeforeAllocating(t *testing.T) {
	h := host.Native()
	cc := &countingCanvases{CanvasFactory: h.Canvases}
	h.Canvases = cc
	e := newJPEG(h)

	_, err := e.Surface(10, 10, "red")
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Contains(t, err.Error(), `"red"`)
	assert.Equal(t, 0, cc.n)

	_, err = e.Surface(10, 10, "#abc")
	require.NoError(t, err)
	assert.Equal(t, 1, cc.n)
}

func TestSurface_NoCanvas(t *testing.T) {
	e := newJPEG(host.Native().Without(host.FeatureCanvas))
	_, err := e.Surface(1, 1, "")

	assert.ErrorIs(t, err, errs.ErrCapability)
	assert.EqualError(t, err, "Canvas 2D context not supported")
}

func TestSerialize_RejectsQualityOutOfRange(t *testing.T) {
	e := newJPEG(host.Native())
	c, err := e.Surface(2, 2, "")
	require.NoError(t, err)

	for _, q := range []float64{0, -0.5, 1.01} {
		_, err := e.Serialize(context.Background(), c, q)
		assert.ErrorIs(t, err, errs.ErrValidation, "quality %v", q)
	}
}

func TestEncode_StrategiesProduceIdenticalBytes(t *testing.T) {
	img := gradient(32, 24)
	ctx := context.Background()

	cb := newJPEG(host.Native())
	assert.Equal(t, []string{"canvas-to-blob", "data-url"}, cb.Registry().Available())
	du := newJPEG(host.Native().Without(host.FeatureCanvasToBlob, host.FeatureTypedArray))
	assert.Equal(t, "serializers: data-url", du.Registry().String())

	a, err := cb.Encode(ctx, img, 0.7, "#fff")
	require.NoError(t, err)
	b, err := du.Encode(ctx, img, 0.7, "#fff")
	require.NoError(t, err)

	assert.Equal(t, blob.MimeJPEG, a.Type())
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestEncode_TransparentBecomesBackground(t *testing.T) {
	e := newJPEG(host.Native())
	transparent := decoder.NewImage(image.NewNRGBA(image.Rect(0, 0, 8, 8)), 8, 8, nil)

	out, err := e.Encode(context.Background(), transparent, 1, "#ffffff")
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	r, g, b, _ := img.At(4, 4).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestEncode_LowerQualityIsSmaller(t *testing.T) {
	e := newJPEG(host.Native())
	img := gradient(64, 64)

	hi, err := e.Encode(context.Background(), img, 1, "")
	require.NoError(t, err)
	lo, err := e.Encode(context.Background(), img, 0.3, "")
	require.NoError(t, err)
	assert.Less(t, lo.Size(), hi.Size())
}

func TestEncode_NilCallbackBlob(t *testing.T) {
	h := host.Native()
	h.BlobEncoder = nilBlobEncoder{}
	e := newJPEG(h)

	_, err := e.Encode(context.Background(), gradient(4, 4), 0.9, "")
	assert.ErrorIs(t, err, errs.ErrEncode)
	assert.EqualError(t, err, "Encoding failed")
}

func TestParseHexColor(t *testing.T) {
	c, ok := ParseHexColor("#0f8")
	assert.True(t, ok)
	assert.Equal(t, color.RGBA{R: 0x00, G: 0xff, B: 0x88, A: 0xff}, c)

	c, ok = ParseHexColor("#A0B1C2")
	assert.True(t, ok)
	assert.Equal(t, color.RGBA{R: 0xa0, G: 0xb1, B: 0xc2, A: 0xff}, c)

	for _, bad := range []string{"", "#", "000", "#12", "#1234", "#12345", "#ggg", "#0000000"} {
		_, ok := ParseHexColor(bad)
		assert.False(t, ok, bad)
	}
}
