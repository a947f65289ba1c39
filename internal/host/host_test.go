package host

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellwelwel/jpegr/internal/blob"
)

func pngBlob(t *testing.T, w, h int, c color.Color) *blob.Blob {
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

func TestWithout_RemovesOnlyNamedPrimitives(t *testing.T) {
	h := Native().Without(FeatureFileReader, FeatureTypedArray)

	assert.Nil(t, h.Files)
	assert.False(t, h.TypedArrays)
	assert.NotNil(t, h.Responses)
	assert.NotNil(t, h.Bitmaps)
	assert.NotNil(t, h.Objects)
	assert.True(t, h.BlobType)
}

func TestWithout_DoesNotTouchReceiver(t *testing.T) {
	h := Native()
	_ = h.Without(FeatureCanvas)
	assert.NotNil(t, h.Canvases)
}

func TestParseFeature(t *testing.T) {
	f, ok := ParseFeature("canvas-to-blob")
	assert.True(t, ok)
	assert.Equal(t, FeatureCanvasToBlob, f)

	_, ok = ParseFeature("webgl")
	assert.False(t, ok)
}

func TestNativeCanvas_FillAndDraw(t *testing.T) {
	c, err := nativeCanvases{}.NewCanvas(4, 2)
	require.NoError(t, err)

	c.FillRect(color.RGBA{R: 255, A: 255})
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 0xFF // opaque white
	}
	c.DrawImage(src, image.Pt(2, 0))

	rgba := c.(*rgbaCanvas).img
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, rgba.RGBAAt(3, 1))
}

func TestNativeCanvas_TransparentKeepsBackground(t *testing.T) {
	c, err := nativeCanvases{}.NewCanvas(2, 2)
	require.NoError(t, err)
	c.FillRect(color.RGBA{B: 255, A: 255})
	c.DrawImage(image.NewNRGBA(image.Rect(0, 0, 2, 2)), image.Point{})

	assert.Equal(t, color.RGBA{B: 255, A: 255}, c.(*rgbaCanvas).img.RGBAAt(1, 1))
}

func TestNativeCanvas_RejectsEmptySize(t *testing.T) {
	_, err := nativeCanvases{}.NewCanvas(0, 10)
	assert.Error(t, err)
}

func TestNativeCanvas_SerializersAgree(t *testing.T) {
	c, err := nativeCanvases{}.NewCanvas(8, 8)
	require.NoError(t, err)
	c.FillRect(color.RGBA{G: 128, A: 255})

	done := make(chan *blob.Blob, 1)
	nativeBlobEncoder{}.ToBlob(c, blob.MimeJPEG, 0.8, func(b *blob.Blob) { done <- b })
	viaCallback := <-done
	require.NotNil(t, viaCallback)

	uri, err := c.ToDataURL(blob.MimeJPEG, 0.8)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))

	viaFile, err := nativeFiles{}.ReadAsDataURL(context.Background(), viaCallback)
	require.NoError(t, err)
	assert.Equal(t, uri, viaFile)
}

func TestNativeBlobEncoder_ForeignCanvasFails(t *testing.T) {
	done := make(chan *blob.Blob, 1)
	nativeBlobEncoder{}.ToBlob(nil, blob.MimeJPEG, 1, func(b *blob.Blob) { done <- b })
	assert.Nil(t, <-done)
}

func TestNativeBitmaps_Decode(t *testing.T) {
	bm, err := nativeBitmaps{}.DecodeBitmap(context.Background(), pngBlob(t, 5, 3, color.White))
	require.NoError(t, err)
	assert.Equal(t, 5, bm.Width())
	assert.Equal(t, 3, bm.Height())

	bm.Close()
	assert.Nil(t, bm.Image())
}

func TestNativeBitmaps_Garbage(t *testing.T) {
	_, err := nativeBitmaps{}.DecodeBitmap(context.Background(), blob.New([]byte("nope"), "image/png"))
	assert.Error(t, err)
}

func TestNativeImages_LoadsDataAndObjectURLs(t *testing.T) {
	h := Native()
	b := pngBlob(t, 3, 7, color.Black)
	ctx := context.Background()

	uri, err := h.Files.ReadAsDataURL(ctx, b)
	require.NoError(t, err)
	img, err := h.Images.LoadImage(ctx, uri)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 7), img.Bounds())

	url, err := h.Objects.CreateObjectURL(b)
	require.NoError(t, err)
	img, err = h.Images.LoadImage(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())

	h.Objects.RevokeObjectURL(url)
	_, err = h.Images.LoadImage(ctx, url)
	assert.Error(t, err)
}

func TestNativeReaders_HonorContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := blob.New([]byte{1, 2, 3}, "")

	_, err := nativeFiles{}.ReadAsDataURL(ctx, b)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = nativeResponses{}.ArrayBuffer(ctx, b)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestObjectRegistry(t *testing.T) {
	r := NewObjectRegistry()
	b := blob.New([]byte("x"), "text/plain")

	u1, err := r.CreateObjectURL(b)
	require.NoError(t, err)
	u2, err := r.CreateObjectURL(b)
	require.NoError(t, err)

	assert.NotEqual(t, u1, u2)
	assert.True(t, strings.HasPrefix(u1, objectURLPrefix))
	assert.Equal(t, 2, r.Len())

	got, ok := r.Lookup(u1)
	assert.True(t, ok)
	assert.Same(t, b, got)

	r.RevokeObjectURL(u1)
	r.RevokeObjectURL(u1)
	r.RevokeObjectURL("blob:jpegr/unknown")
	assert.Equal(t, 1, r.Len())
}

func TestJPEGQuality(t *testing.T) {
	assert.Equal(t, 100, JPEGQuality(1))
	assert.Equal(t, 90, JPEGQuality(0.9))
	assert.Equal(t, 40, JPEGQuality(0.4))
	assert.Equal(t, 1, JPEGQuality(0.001))
	assert.Equal(t, 100, JPEGQuality(3))
}
