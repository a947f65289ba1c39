package bytestr

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allBytes() []byte {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

func TestBinary_StrategiesAgree(t *testing.T) {
	data := allBytes()
	typed := New(true).Binary(data)
	view := New(false).Binary(data)

	assert.Equal(t, typed, view)
	assert.Equal(t, 256, len([]rune(typed)))
	assert.Equal(t, rune(0xFF), []rune(typed)[255])
}

func TestBytes_RejectsWideRunes(t *testing.T) {
	for _, typed := range []bool{true, false} {
		_, err := New(typed).Bytes("okĀ")
		assert.ErrorIs(t, err, ErrInvalidCharacter)
	}
}

func TestBtoa_MatchesStdlibOnRawBytes(t *testing.T) {
	c := New(true)
	data := allBytes()

	got, err := c.Btoa(c.Binary(data))
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(data), got)
}

func TestParseDataURI(t *testing.T) {
	c := New(false)
	data := []byte{0xFF, 0xD8, 0xFF, 0x00, 0x10}
	uri := DataURI("image/jpeg", base64.StdEncoding.EncodeToString(data))

	mime, got, err := c.ParseDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
	assert.Equal(t, data, got)
}

func TestParseDataURI_Malformed(t *testing.T) {
	c := New(true)
	for _, uri := range []string{
		"not a uri",
		"data:image/png,plain",
		"data:image/png;base64,!!!",
	} {
		_, _, err := c.ParseDataURI(uri)
		assert.Error(t, err, uri)
	}
}
