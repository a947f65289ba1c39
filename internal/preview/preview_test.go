package preview

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellwelwel/jpegr/internal/blob"
	"github.com/wellwelwel/jpegr/internal/capability"
	"github.com/wellwelwel/jpegr/internal/errs"
	"github.com/wellwelwel/jpegr/internal/host"
)

func newBuilder(h *host.Host) *Builder {
	return New(h, capability.Probe(h))
}

var payload = blob.New([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x80, 0xFF, 0xD9}, blob.MimeJPEG)

func TestBuild_PrefersObjectReference(t *testing.T) {
	h := host.Native()
	reg := h.Objects.(*host.ObjectRegistry)

	src, err := newBuilder(h).Build(context.Background(), payload)
	require.NoError(t, err)
	assert.True(t, src.Revocable())
	assert.True(t, strings.HasPrefix(src.URI, "blob:"))
	assert.Equal(t, 1, reg.Len())

	src.Revoke()
	src.Revoke()
	assert.Equal(t, 0, reg.Len())
}

func TestBuild_FileReaderDataURI(t *testing.T) {
	src, err := newBuilder(host.Native().Without(host.FeatureObjectURL)).Build(context.Background(), payload)
	require.NoError(t, err)

	assert.False(t, src.Revocable())
	assert.Equal(t, "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(payload.Bytes()), src.URI)
}

func TestBuild_StreamingFallbackMatchesFileReader(t *testing.T) {
	ctx := context.Background()
	viaFile, err := newBuilder(host.Native().Without(host.FeatureObjectURL)).Build(ctx, payload)
	require.NoError(t, err)

	h := host.Native().Without(host.FeatureObjectURL, host.FeatureFileReader, host.FeatureTypedArray)
	viaStream, err := newBuilder(h).Build(ctx, payload)
	require.NoError(t, err)

	assert.Equal(t, viaFile.URI, viaStream.URI)
}

func TestBuild_NoPath(t *testing.T) {
	h := host.Native().Without(host.FeatureObjectURL, host.FeatureFileReader, host.FeatureStreamingResponse)
	_, err := newBuilder(h).Build(context.Background(), payload)

	assert.ErrorIs(t, err, errs.ErrCapability)
}

func TestBuild_ObjectReferenceNeedsBlobOrFile(t *testing.T) {
	h := host.Native()
	h.BlobType, h.FileType = false, false

	src, err := newBuilder(h).Build(context.Background(), payload)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(src.URI, "data:"))
}
