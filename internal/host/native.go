package host

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/wellwelwel/jpegr/internal/blob"
	"github.com/wellwelwel/jpegr/internal/bytestr"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Native returns a host where every primitive is backed by Go libraries.
// Each call returns an independent object-URL registry.
func Native() *Host {
	objects := NewObjectRegistry()
	return &Host{
		Bitmaps:     nativeBitmaps{},
		Files:       nativeFiles{},
		Responses:   nativeResponses{},
		Images:      nativeImages{objects: objects},
		Canvases:    nativeCanvases{},
		BlobEncoder: nativeBlobEncoder{},
		Objects:     objects,
		TypedArrays: true,
		BlobType:    true,
		FileType:    true,
	}
}

// ─── bitmap decode ───────────────────────────────────────────

type nativeBitmaps struct{}

func (nativeBitmaps) DecodeBitmap(ctx context.Context, b *blob.Blob) (Bitmap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := imaging.Decode(b.Reader(), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode bitmap: %w", err)
	}
	bounds := img.Bounds()
	return &nativeBitmap{img: img, w: bounds.Dx(), h: bounds.Dy()}, nil
}

type nativeBitmap struct {
	mu   sync.Mutex
	img  image.Image
	w, h int
}

func (bm *nativeBitmap) Image() image.Image {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.img
}

func (bm *nativeBitmap) Width() int  { return bm.w }
func (bm *nativeBitmap) Height() int { return bm.h }

// Close drops the pixel buffer; the bitmap is unusable afterwards.
func (bm *nativeBitmap) Close() {
	bm.mu.Lock()
	bm.img = nil
	bm.mu.Unlock()
}

// ─── readers ─────────────────────────────────────────────────

type nativeFiles struct{}

func (nativeFiles) ReadAsDataURL(ctx context.Context, b *blob.Blob) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	mime := b.Type()
	if mime == "" {
		mime = "application/octet-stream"
	}
	return bytestr.DataURI(mime, base64.StdEncoding.EncodeToString(b.Bytes())), nil
}

type nativeResponses struct{}

func (nativeResponses) ArrayBuffer(ctx context.Context, b *blob.Blob) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return bytes.Clone(b.Bytes()), nil
}

// ─── image loader ────────────────────────────────────────────

type nativeImages struct {
	objects ObjectURLs
}

func (l nativeImages) LoadImage(ctx context.Context, src string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	switch {
	case strings.HasPrefix(src, "data:"):
		_, raw, err := bytestr.New(true).ParseDataURI(src)
		if err != nil {
			return nil, fmt.Errorf("load image: %w", err)
		}
		data = raw
	case strings.HasPrefix(src, objectURLPrefix) && l.objects != nil:
		b, ok := l.objects.Lookup(src)
		if !ok {
			return nil, fmt.Errorf("load image: unknown object URL %s", src)
		}
		data = b.Bytes()
	default:
		return nil, fmt.Errorf("load image: unsupported source")
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	return img, nil
}

// ─── canvas ──────────────────────────────────────────────────

type nativeCanvases struct{}

func (nativeCanvases) NewCanvas(width, height int) (Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	return &rgbaCanvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}, nil
}

type rgbaCanvas struct {
	img *image.RGBA
}

func (c *rgbaCanvas) Bounds() image.Rectangle { return c.img.Bounds() }

func (c *rgbaCanvas) FillRect(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *rgbaCanvas) DrawImage(src image.Image, at image.Point) {
	sb := src.Bounds()
	dst := image.Rectangle{Min: at, Max: at.Add(sb.Size())}
	draw.Draw(c.img, dst, src, sb.Min, draw.Over)
}

func (c *rgbaCanvas) ToDataURL(mime string, quality float64) (string, error) {
	data, outMime, err := serialize(c.img, mime, quality)
	if err != nil {
		return "", err
	}
	return bytestr.DataURI(outMime, base64.StdEncoding.EncodeToString(data)), nil
}

// ─── callback encode ─────────────────────────────────────────

type nativeBlobEncoder struct{}

func (nativeBlobEncoder) ToBlob(c Canvas, mime string, quality float64, done func(*blob.Blob)) {
	rc, ok := c.(*rgbaCanvas)
	if !ok {
		go done(nil)
		return
	}
	go func() {
		data, outMime, err := serialize(rc.img, mime, quality)
		if err != nil {
			done(nil)
			return
		}
		done(blob.New(data, outMime))
	}()
}

// serialize encodes img as JPEG, or PNG for any other requested type.
func serialize(img image.Image, mime string, quality float64) ([]byte, string, error) {
	var buf bytes.Buffer
	buf.Grow(256 * 1024) // typical photo output

	if mime != blob.MimeJPEG {
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/png", nil
	}
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality(quality)}); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), blob.MimeJPEG, nil
}

// JPEGQuality maps a (0,1] quality to the 1-100 scale of image/jpeg.
func JPEGQuality(q float64) int {
	v := int(math.Round(q * 100))
	if v < 1 {
		return 1
	}
	if v > 100 {
		return 100
	}
	return v
}
