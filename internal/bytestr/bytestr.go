// Package bytestr converts between byte buffers and "binary strings", strings
// in which every code point U+0000..U+00FF stands for one byte. Fallback
// paths that only have string primitives (base64 of a binary string, data URIs)
// go through here.
package bytestr

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInvalidCharacter is returned when a string holds a code point above U+00FF.
var ErrInvalidCharacter = errors.New("string contains characters outside the Latin-1 range")

// Codec picks the conversion strategy once. With typed arrays the buffer is
// indexed directly; without them bytes are pulled one at a time through a
// byte view. Both produce identical output.
type Codec struct {
	typed bool
}

func New(typedArrays bool) Codec {
	return Codec{typed: typedArrays}
}

// Binary converts bytes to a binary string.
func (c Codec) Binary(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data) * 2)
	if c.typed {
		for i := 0; i < len(data); i++ {
			sb.WriteRune(rune(data[i]))
		}
		return sb.String()
	}
	view := bytes.NewReader(data)
	for {
		b, err := view.ReadByte()
		if err != nil {
			break
		}
		sb.WriteRune(rune(b))
	}
	return sb.String()
}

// Bytes converts a binary string back to bytes.
func (c Codec) Bytes(s string) ([]byte, error) {
	if c.typed {
		out := make([]byte, 0, len(s))
		for _, r := range s {
			if r > 0xFF {
				return nil, ErrInvalidCharacter
			}
			out = append(out, byte(r))
		}
		return out, nil
	}
	var buf bytes.Buffer
	rd := bufio.NewReader(strings.NewReader(s))
	for {
		r, _, err := rd.ReadRune()
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
		if r > 0xFF {
			return nil, ErrInvalidCharacter
		}
		buf.WriteByte(byte(r))
	}
}

// Btoa base64-encodes a binary string.
func (c Codec) Btoa(s string) (string, error) {
	raw, err := c.Bytes(s)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Atob decodes base64 into a binary string.
func (c Codec) Atob(s string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	return c.Binary(raw), nil
}

// DataURI builds a base64 data URI from an already encoded payload.
func DataURI(mime, b64 string) string {
	return "data:" + mime + ";base64," + b64
}

// ParseDataURI splits a base64 data URI into its MIME type and decoded bytes.
func (c Codec) ParseDataURI(uri string) (string, []byte, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:") {
		return "", nil, fmt.Errorf("malformed data URI")
	}
	meta := strings.TrimPrefix(header, "data:")
	mime, params, _ := strings.Cut(meta, ";")
	if !strings.Contains(params, "base64") {
		return "", nil, fmt.Errorf("data URI is not base64 encoded")
	}
	bin, err := c.Atob(payload)
	if err != nil {
		return "", nil, err
	}
	data, err := c.Bytes(bin)
	if err != nil {
		return "", nil, err
	}
	return mime, data, nil
}
