package jpegr

import "github.com/wellwelwel/jpegr/internal/blob"

// Result is the outcome of Process or Merge. Exactly one of Image and Error is set.
type Result struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Image   *ProcessedImage `json:"image,omitempty"`

	// Err is the underlying fault, usable with errors.Is against ErrDecode etc.
	Err error `json:"-"`
}

// ProcessedImage is a finished JPEG plus its preview reference.
type ProcessedImage struct {
	Blob     *Blob    `json:"-"`
	Src      string   `json:"src"`
	Metadata Metadata `json:"metadata"`

	revoke func()
}

// Bytes returns the processed image content.
func (img *ProcessedImage) Bytes() []byte { return img.Blob.Bytes() }

// Revocable reports whether Src is a reference that must be revoked.
func (img *ProcessedImage) Revocable() bool { return img.revoke != nil }

// Revoke releases the preview reference. Safe to call more than once.
func (img *ProcessedImage) Revoke() {
	if img != nil && img.revoke != nil {
		img.revoke()
	}
}

type Metadata struct {
	Original  OriginalInfo  `json:"original"`
	Processed ProcessedInfo `json:"processed"`
}

type OriginalInfo struct {
	Size          int64  `json:"size"`
	SizeFormatted string `json:"sizeFormatted"`
	Type          string `json:"type"`
}

type ProcessedInfo struct {
	Size          int64   `json:"size"`
	SizeFormatted string  `json:"sizeFormatted"`
	Type          string  `json:"type"`
	Converted     bool    `json:"converted"`
	Compressed    bool    `json:"compressed"`
	Quality       float64 `json:"quality"`
}

// Status summarizes what a Processor currently holds.
type Status struct {
	HasImage bool   `json:"hasImage"`
	Error    string `json:"error,omitempty"`
}

func newMetadata(origSize int64, origType string, out *blob.Blob, converted, compressed bool, quality float64) Metadata {
	return Metadata{
		Original: OriginalInfo{
			Size:          origSize,
			SizeFormatted: blob.FormatSize(origSize),
			Type:          origType,
		},
		Processed: ProcessedInfo{
			Size:          out.Size(),
			SizeFormatted: blob.FormatSize(out.Size()),
			Type:          out.Type(),
			Converted:     converted,
			Compressed:    compressed,
			Quality:       quality,
		},
	}
}
