// Package host describes the image-processing primitives a runtime may offer.
// Every primitive is optional; the capability probe looks at which ones are set
// and the pipeline stages pick their strategies accordingly.
package host

import (
	"context"
	"image"
	"image/color"

	"github.com/wellwelwel/jpegr/internal/blob"
)

// Bitmap is a decoded, orientation-normalized image that holds resources
// until Close is called.
type Bitmap interface {
	Image() image.Image
	Width() int
	Height() int
	Close()
}

// BitmapDecoder decodes a blob straight into a Bitmap, applying the
// orientation stored in the image itself.
type BitmapDecoder interface {
	DecodeBitmap(ctx context.Context, b *blob.Blob) (Bitmap, error)
}

// FileReader reads a blob as a base64 data URI.
type FileReader interface {
	ReadAsDataURL(ctx context.Context, b *blob.Blob) (string, error)
}

// ResponseReader reads a blob through a streaming response body.
type ResponseReader interface {
	ArrayBuffer(ctx context.Context, b *blob.Blob) ([]byte, error)
}

// ImageLoader turns a URI into a drawable image, like assigning an image src
// and waiting for load or error.
type ImageLoader interface {
	LoadImage(ctx context.Context, src string) (image.Image, error)
}

// Canvas is a drawable surface that can serialize itself synchronously.
type Canvas interface {
	Bounds() image.Rectangle
	FillRect(c color.Color)
	// DrawImage composites src at natural size with its top-left corner at at.
	DrawImage(src image.Image, at image.Point)
	// ToDataURL serializes the surface. Unknown types fall back to PNG.
	ToDataURL(mime string, quality float64) (string, error)
}

// CanvasFactory allocates surfaces.
type CanvasFactory interface {
	NewCanvas(width, height int) (Canvas, error)
}

// BlobEncoder serializes a surface asynchronously and reports through done.
// A nil blob means the encode failed.
type BlobEncoder interface {
	ToBlob(c Canvas, mime string, quality float64, done func(*blob.Blob))
}

// ObjectURLs hands out revocable references to blobs.
type ObjectURLs interface {
	CreateObjectURL(b *blob.Blob) (string, error)
	RevokeObjectURL(url string)
	Lookup(url string) (*blob.Blob, bool)
}

// Host is the set of primitives available at runtime. A nil field means the
// primitive does not exist.
type Host struct {
	Bitmaps     BitmapDecoder
	Files       FileReader
	Responses   ResponseReader
	Images      ImageLoader
	Canvases    CanvasFactory
	BlobEncoder BlobEncoder
	Objects     ObjectURLs

	TypedArrays bool
	BlobType    bool
	FileType    bool
}

// Feature names one primitive of a Host.
type Feature string

const (
	FeatureBitmapDecode      Feature = "bitmap-decode"
	FeatureTypedArray        Feature = "typed-array"
	FeatureFileReader        Feature = "file-reader"
	FeatureStreamingResponse Feature = "streaming-response"
	FeatureBlob              Feature = "blob"
	FeatureFile              Feature = "file"
	FeatureCanvas            Feature = "canvas"
	FeatureCanvasToBlob      Feature = "canvas-to-blob"
	FeatureObjectURL         Feature = "object-url"
	FeatureImageLoader       Feature = "image-loader"
)

// Features lists every known feature in a stable order.
var Features = []Feature{
	FeatureBitmapDecode,
	FeatureTypedArray,
	FeatureFileReader,
	FeatureStreamingResponse,
	FeatureBlob,
	FeatureFile,
	FeatureCanvas,
	FeatureCanvasToBlob,
	FeatureObjectURL,
	FeatureImageLoader,
}

// Without returns a copy of h with the given primitives removed.
// Removing blob also removes canvas-to-blob and object-url, and removing file
// removes object-url, since neither can exist without the underlying type.
func (h Host) Without(features ...Feature) *Host {
	for _, f := range features {
		switch f {
		case FeatureBitmapDecode:
			h.Bitmaps = nil
		case FeatureTypedArray:
			h.TypedArrays = false
		case FeatureFileReader:
			h.Files = nil
		case FeatureStreamingResponse:
			h.Responses = nil
		case FeatureBlob:
			h.BlobType = false
			h.BlobEncoder = nil
			h.Objects = nil
		case FeatureFile:
			h.FileType = false
			h.Objects = nil
		case FeatureCanvas:
			h.Canvases = nil
		case FeatureCanvasToBlob:
			h.BlobEncoder = nil
		case FeatureObjectURL:
			h.Objects = nil
		case FeatureImageLoader:
			h.Images = nil
		}
	}
	return &h
}

// ParseFeature maps a feature name to a Feature.
func ParseFeature(name string) (Feature, bool) {
	for _, f := range Features {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}
