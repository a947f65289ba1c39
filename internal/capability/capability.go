// Package capability snapshots which host primitives exist.
package capability

import (
	"sync"

	"github.com/wellwelwel/jpegr/internal/host"
)

// Profile is an immutable snapshot of host support. Pass it by value.
type Profile struct {
	BitmapDecode         bool `json:"bitmapDecode"`
	TypedByteArray       bool `json:"typedByteArray"`
	FileReader           bool `json:"fileReader"`
	StreamingResponse    bool `json:"streamingResponse"`
	Blob                 bool `json:"blob"`
	File                 bool `json:"file"`
	CanvasCallbackEncode bool `json:"canvasCallbackEncode"`
	ObjectReference      bool `json:"objectReference"`
	Canvas               bool `json:"canvas"`
	ImageLoader          bool `json:"imageLoader"`
}

// Probe reads the primitives of h. A nil host supports nothing.
func Probe(h *host.Host) Profile {
	if h == nil {
		return Profile{}
	}
	return Profile{
		BitmapDecode:         h.Bitmaps != nil,
		TypedByteArray:       h.TypedArrays,
		FileReader:           h.Files != nil,
		StreamingResponse:    h.Responses != nil,
		Blob:                 h.BlobType,
		File:                 h.FileType,
		CanvasCallbackEncode: h.BlobEncoder != nil && h.BlobType,
		ObjectReference:      h.Objects != nil && (h.BlobType || h.FileType),
		Canvas:               h.Canvases != nil,
		ImageLoader:          h.Images != nil,
	}
}

var (
	detectOnce sync.Once
	detected   Profile
)

// Detect probes the native host once per process.
func Detect() Profile {
	detectOnce.Do(func() {
		detected = Probe(host.Native())
	})
	return detected
}

// CanProcess reports whether the full decode/encode pipeline can run: a way
// to read files, a surface to draw on, a byte container and byte access.
func (p Profile) CanProcess() bool {
	return (p.FileReader || p.StreamingResponse) && p.Canvas && p.Blob && p.TypedByteArray
}

// Features lists the enabled primitives by name.
func (p Profile) Features() []host.Feature {
	flags := []struct {
		on bool
		f  host.Feature
	}{
		{p.BitmapDecode, host.FeatureBitmapDecode},
		{p.TypedByteArray, host.FeatureTypedArray},
		{p.FileReader, host.FeatureFileReader},
		{p.StreamingResponse, host.FeatureStreamingResponse},
		{p.Blob, host.FeatureBlob},
		{p.File, host.FeatureFile},
		{p.Canvas, host.FeatureCanvas},
		{p.CanvasCallbackEncode, host.FeatureCanvasToBlob},
		{p.ObjectReference, host.FeatureObjectURL},
		{p.ImageLoader, host.FeatureImageLoader},
	}
	var out []host.Feature
	for _, fl := range flags {
		if fl.on {
			out = append(out, fl.f)
		}
	}
	return out
}
