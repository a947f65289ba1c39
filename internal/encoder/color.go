package encoder

import (
	"image/color"
	"regexp"
	"strconv"
)

// DefaultBackground is painted under every image; JPEG has no alpha channel.
const DefaultBackground = "#000000"

var hexColor = regexp.MustCompile(`^#([0-9A-Fa-f]{3}){1,2}$`)

// ValidHexColor accepts "#rgb" and "#rrggbb".
func ValidHexColor(s string) bool {
	return hexColor.MatchString(s)
}

// ParseHexColor converts a validated hex color to an opaque RGBA.
func ParseHexColor(s string) (color.RGBA, bool) {
	if !ValidHexColor(s) {
		return color.RGBA{}, false
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, true
}
