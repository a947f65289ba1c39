//go:build ignore

// gen_fixtures writes a mixed input tree for smoke-testing `jpegr batch`.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	if err := os.MkdirAll(filepath.Join(dir, "scans"), 0o755); err != nil {
		panic(err)
	}

	// Small JPEG, passed through under every profile.
	write(filepath.Join(dir, "banner.jpg"), func(w io.Writer) error {
		return jpeg.Encode(w, gradient(320, 180), &jpeg.Options{Quality: 80})
	})

	// Transparent PNG, flattened onto the background colour.
	write(filepath.Join(dir, "logo.png"), func(w io.Writer) error {
		return png.Encode(w, alphaGradient(120, 120))
	})

	// Noisy PNGs, several MB raw, forcing the quality search.
	for i := 1; i <= 2; i++ {
		seed := uint32(i * 7919)
		write(filepath.Join(dir, "scans", fmt.Sprintf("scan-%d.png", i)), func(w io.Writer) error {
			return png.Encode(w, noise(900, 700, seed))
		})
	}

	write(filepath.Join(dir, "icon.gif"), func(w io.Writer) error {
		return gif.Encode(w, gradient(64, 64), &gif.Options{NumColors: len(palette.Plan9)})
	})

	write(filepath.Join(dir, "legacy.bmp"), func(w io.Writer) error {
		return bmp.Encode(w, gradient(160, 120))
	})

	// Not an image; must show up as a failed entry in the report.
	write(filepath.Join(dir, "broken.png"), func(w io.Writer) error {
		_, err := io.WriteString(w, "this is not a png")
		return err
	})

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 7 fixtures in %s\n", dir)
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func alphaGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: 220, G: 60, B: 30,
				A: uint8(x * 255 / w),
			})
		}
	}
	return img
}

// noise is xorshift static, which compresses badly at any quality.
func noise(w, h int, seed uint32) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	s := seed | 1
	for i := 0; i < len(img.Pix); i += 4 {
		s ^= s << 13
		s ^= s >> 17
		s ^= s << 5
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = uint8(s), uint8(s>>8), uint8(s>>16), 255
	}
	return img
}

func write(path string, encode func(io.Writer) error) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := encode(f); err != nil {
		panic(err)
	}
}
