// Package blob holds the immutable byte buffers that flow through jpegr.
package blob

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// MimeJPEG is the only output type jpegr produces.
const MimeJPEG = "image/jpeg"

// ErrNoFile is returned when a file input holds no file.
var ErrNoFile = errors.New("no file selected")

// Blob is an immutable buffer of bytes with a MIME type.
// The caller must not modify data after handing it to New.
type Blob struct {
	data []byte
	mime string
	name string
}

// New wraps data with the given MIME type.
func New(data []byte, mime string) *Blob {
	return &Blob{data: data, mime: mime}
}

// NewFile is New with a file name attached, like a File picked by a user.
func NewFile(data []byte, mime, name string) *Blob {
	return &Blob{data: data, mime: mime, name: name}
}

// Detect wraps data and sniffs its MIME type from the content.
func Detect(data []byte) *Blob {
	return &Blob{data: data, mime: mimetype.Detect(data).String()}
}

func (b *Blob) Size() int64 { return int64(len(b.data)) }
func (b *Blob) Type() string { return b.mime }
func (b *Blob) Name() string { return b.name }

// Bytes returns the underlying buffer. It must be treated as read-only.
func (b *Blob) Bytes() []byte { return b.data }

// Reader returns a fresh reader over the blob content.
func (b *Blob) Reader() *bytes.Reader { return bytes.NewReader(b.data) }

// IsJPEG reports whether the blob is declared as a JPEG.
func (b *Blob) IsJPEG() bool { return b.mime == MimeJPEG }

// Resolve implements Source.
func (b *Blob) Resolve() (*Blob, error) {
	if b == nil {
		return nil, ErrNoFile
	}
	return b, nil
}

// Source is anything that yields one blob: a *Blob or a *FileInput.
type Source interface {
	Resolve() (*Blob, error)
}

// FileInput mirrors a file picker: only the first selected file is used.
type FileInput struct {
	Files []*Blob
}

// Resolve implements Source.
func (in *FileInput) Resolve() (*Blob, error) {
	if in == nil || len(in.Files) == 0 || in.Files[0] == nil {
		return nil, ErrNoFile
	}
	return in.Files[0], nil
}

// FormatSize renders a byte count the way previews and reports show it.
func FormatSize(n int64) string {
	switch {
	case n <= 0:
		return "0 B"
	case n < 1<<10:
		return fmt.Sprintf("%d B", n)
	case n < 1<<20:
		return fmt.Sprintf("%.2f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%.2f MB", float64(n)/(1<<20))
	}
}
