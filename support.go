package jpegr

import (
	"github.com/wellwelwel/jpegr/internal/blob"
	"github.com/wellwelwel/jpegr/internal/capability"
	"github.com/wellwelwel/jpegr/internal/errs"
	"github.com/wellwelwel/jpegr/internal/host"
	"github.com/wellwelwel/jpegr/internal/merger"
)

type (
	Blob      = blob.Blob
	FileInput = blob.FileInput
	// Source is a *Blob or a *FileInput.
	Source    = blob.Source
	Profile   = capability.Profile
	Host      = host.Host
	Feature   = host.Feature
	Direction = merger.Direction
)

const (
	Horizontal = merger.Horizontal
	Vertical   = merger.Vertical
)

// Error sentinels for errors.Is on Result.Err and returned errors.
var (
	ErrValidation = errs.ErrValidation
	ErrCapability = errs.ErrCapability
	ErrDecode     = errs.ErrDecode
	ErrEncode     = errs.ErrEncode
	ErrUpload     = errs.ErrUpload
)

func NewBlob(data []byte, mime string) *Blob { return blob.New(data, mime) }

func NewFile(data []byte, mime, name string) *Blob { return blob.NewFile(data, mime, name) }

// DetectBlob wraps data with a MIME type sniffed from its content.
func DetectBlob(data []byte) *Blob { return blob.Detect(data) }

// NativeHost returns a host backed entirely by Go image libraries.
func NativeHost() *Host { return host.Native() }

// RuntimeSupport reports the primitives of the native host.
func RuntimeSupport() Profile { return capability.Detect() }

// CanProcess reports whether the native host can run the full pipeline.
func CanProcess() bool { return capability.Detect().CanProcess() }
