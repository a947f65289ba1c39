package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellwelwel/jpegr"
	"github.com/wellwelwel/jpegr/internal/hasher"
)

func writeImage(t *testing.T, path string, encode func(*bytes.Buffer, image.Image) error) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 24, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 24; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 15), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, encode(&buf, img))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func pngEncode(buf *bytes.Buffer, img image.Image) error { return png.Encode(buf, img) }
func jpegEncode(buf *bytes.Buffer, img image.Image) error {
	return jpeg.Encode(buf, img, &jpeg.Options{Quality: 85})
}

func TestScanImages(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "a.PNG"), pngEncode)
	writeImage(t, filepath.Join(dir, "nested", "b.jpg"), jpegEncode)
	writeImage(t, filepath.Join(dir, ".hidden", "c.png"), pngEncode)
	writeImage(t, filepath.Join(dir, "out", "d.png"), pngEncode)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	sources, err := ScanImages(dir, filepath.Join(dir, "out"))
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "a", sources[0].Key)
	assert.Equal(t, "png", sources[0].Format)
	assert.Equal(t, "nested/b", sources[1].Key)
	assert.Equal(t, "jpeg", sources[1].Format)
	assert.Positive(t, sources[1].Size)
}

func TestRun(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeImage(t, filepath.Join(in, "icons", "logo.png"), pngEncode)
	writeImage(t, filepath.Join(in, "photo.jpg"), jpegEncode)
	require.NoError(t, os.WriteFile(filepath.Join(in, "broken.png"), []byte("not a png"), 0o644))

	p, err := New(Config{InputDir: in, OutputDir: out, ProfileName: "web", Workers: 2})
	require.NoError(t, err)

	rep, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rep.Entries, 3)

	logo := rep.Entries["icons/logo"]
	assert.True(t, logo.Converted)
	assert.Equal(t, "image/png", logo.InputType)
	assert.True(t, strings.HasPrefix(logo.Output, "icons/logo."))
	assert.True(t, strings.HasSuffix(logo.Output, ".jpeg"))

	data, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(logo.Output)))
	require.NoError(t, err)
	assert.Equal(t, logo.Hash, hasher.ContentHash(data, 16))
	assert.Contains(t, logo.Output, logo.Hash[:hasher.NameLen])

	photo := rep.Entries["photo"]
	assert.False(t, photo.Converted)
	assert.False(t, photo.Compressed)
	assert.Equal(t, photo.InputSize, photo.OutputSize, "jpeg within budget is copied as is")

	broken := rep.Entries["broken"]
	assert.Equal(t, "Invalid image file", broken.Error)

	assert.Equal(t, 1, rep.Stats.Failed)
	assert.Equal(t, 1, rep.Stats.Converted)
	assert.Equal(t, 1, rep.Stats.PassedThrough)
	assert.Equal(t, 2, rep.RunInfo.Workers)
	assert.EqualValues(t, 1<<20, rep.RunInfo.MaxSize)
	assert.NotEmpty(t, rep.Digest)
}

func TestRun_AllFailed(t *testing.T) {
	in := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "x.png"), []byte("nope"), 0o644))

	p, err := New(Config{InputDir: in, OutputDir: t.TempDir()})
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	assert.ErrorContains(t, err, "all 1 images failed")
}

func TestRun_NoImages(t *testing.T) {
	p, err := New(Config{InputDir: t.TempDir(), OutputDir: t.TempDir()})
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	assert.ErrorContains(t, err, "no images found")
}

func TestNew_RejectsBadOptions(t *testing.T) {
	_, err := New(Config{Options: jpegr.Options{BackgroundColor: "nope"}})
	assert.ErrorIs(t, err, jpegr.ErrValidation)
}
