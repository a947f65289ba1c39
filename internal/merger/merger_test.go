package merger

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellwelwel/jpegr/internal/blob"
	"github.com/wellwelwel/jpegr/internal/capability"
	"github.com/wellwelwel/jpegr/internal/decoder"
	"github.com/wellwelwel/jpegr/internal/encoder"
	"github.com/wellwelwel/jpegr/internal/errs"
	"github.com/wellwelwel/jpegr/internal/host"
)

func solidPNG(t *testing.T, w, h int, c color.Color) *blob.Blob {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return blob.New(buf.Bytes(), "image/png")
}

func native() (*decoder.Decoder, *encoder.JPEG) {
	h := host.Native()
	prof := capability.Probe(h)
	return decoder.New(h, prof, nil), encoder.New(h, prof)
}

// trackingDecoder hands out images whose disposals it counts, failing on
// the source index in failAt.
type trackingDecoder struct {
	failAt   int
	decodes  int
	disposed map[int]int
}

func (d *trackingDecoder) Decode(_ context.Context, _ *blob.Blob) (*decoder.Image, error) {
	i := d.decodes
	d.decodes++
	if i == d.failAt {
		return nil, errs.Decode("decode", errors.New("bad bytes"))
	}
	return decoder.NewImage(image.NewNRGBA(image.Rect(0, 0, 2, 2)), 2, 2, func() { d.disposed[i]++ }), nil
}

func TestMerge_Horizontal(t *testing.T) {
	dec, enc := native()
	sources := []*blob.Blob{
		solidPNG(t, 100, 50, color.White),
		solidPNG(t, 60, 80, color.White),
	}

	res, err := Merge(context.Background(), dec, enc, sources, Options{Direction: Horizontal})
	require.NoError(t, err)
	assert.Equal(t, 160, res.Width)
	assert.Equal(t, 80, res.Height)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(res.Blob.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 160, cfg.Width)
	assert.Equal(t, 80, cfg.Height)
}

func TestMerge_VerticalPadsWithBackground(t *testing.T) {
	dec, enc := native()
	sources := []*blob.Blob{
		solidPNG(t, 40, 10, color.White),
		solidPNG(t, 20, 30, color.White),
	}

	res, err := Merge(context.Background(), dec, enc, sources, Options{Direction: Vertical, Background: "#000"})
	require.NoError(t, err)
	assert.Equal(t, 40, res.Width)
	assert.Equal(t, 40, res.Height)

	img, err := jpeg.Decode(bytes.NewReader(res.Blob.Bytes()))
	require.NoError(t, err)
	r, _, _, _ := img.At(5, 5).RGBA()
	assert.Greater(t, r>>8, uint32(200), "first image is white")
	r, _, _, _ = img.At(35, 35).RGBA()
	assert.Less(t, r>>8, uint32(50), "uncovered area is background")
}

func TestMerge_ValidatesBeforeDecoding(t *testing.T) {
	_, enc := native()
	src := []*blob.Blob{blob.New(nil, "image/png")}
	cases := []struct {
		sources []*blob.Blob
		opts    Options
		msg     string
	}{
		{nil, Options{Direction: Horizontal}, "At least one image source is required for merging."},
		{src, Options{Direction: "diagonal"}, `Invalid direction "diagonal". Expected "horizontal" or "vertical".`},
		{src, Options{Direction: Vertical, Background: "#12"}, `Invalid background color: "#12". Expected a hex color string like "#000" or "#000000".`},
	}
	for _, tc := range cases {
		dec := &trackingDecoder{failAt: -1, disposed: map[int]int{}}
		_, err := Merge(context.Background(), dec, enc, tc.sources, tc.opts)

		assert.ErrorIs(t, err, errs.ErrValidation)
		assert.EqualError(t, err, tc.msg)
		assert.Zero(t, dec.decodes)
	}
}

func TestMerge_DisposesEverythingOnFailure(t *testing.T) {
	_, enc := native()
	dec := &trackingDecoder{failAt: 2, disposed: map[int]int{}}
	sources := []*blob.Blob{{}, {}, {}, {}}

	_, err := Merge(context.Background(), dec, enc, sources, Options{Direction: Horizontal})
	assert.ErrorIs(t, err, errs.ErrDecode)
	assert.Equal(t, 3, dec.decodes)
	assert.Equal(t, map[int]int{0: 1, 1: 1}, dec.disposed)
}

func TestMerge_DisposesEverythingOnSuccess(t *testing.T) {
	_, enc := native()
	dec := &trackingDecoder{failAt: -1, disposed: map[int]int{}}
	sources := []*blob.Blob{{}, {}, {}}

	res, err := Merge(context.Background(), dec, enc, sources, Options{Direction: Vertical})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Width)
	assert.Equal(t, 6, res.Height)
	assert.Equal(t, map[int]int{0: 1, 1: 1, 2: 1}, dec.disposed)
}

func TestDimensions(t *testing.T) {
	imgs := []*decoder.Image{
		decoder.NewImage(nil, 100, 50, nil),
		decoder.NewImage(nil, 60, 80, nil),
	}
	w, h := Dimensions(imgs, Horizontal)
	assert.Equal(t, 160, w)
	assert.Equal(t, 80, h)

	w, h = Dimensions(imgs, Vertical)
	assert.Equal(t, 100, w)
	assert.Equal(t, 130, h)
}
