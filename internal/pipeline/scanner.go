package pipeline

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Source is an image file found under the input directory.
type Source struct {
	AbsPath string
	RelPath string // slash-separated, relative to the input dir
	Key     string // RelPath without extension
	Format  string // normalized extension: jpeg, png, gif, webp, bmp, tiff
	Size    int64
}

// imageExtensions maps recognized extensions to their normalized format.
var imageExtensions = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".jfif": "jpeg",
	".webp": "webp",
	".gif":  "gif",
	".bmp":  "bmp",
	".tiff": "tiff",
	".tif":  "tiff",
}

// ScanImages walks dir and returns every image source, skipping hidden
// directories and the output directory if it lies inside dir.
func ScanImages(dir, skip string) ([]Source, error) {
	var sources []Source

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(d.Name(), ".") || path == skip) {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		format, ok := imageExtensions[ext]
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		sources = append(sources, Source{
			AbsPath: path,
			RelPath: rel,
			Key:     strings.TrimSuffix(rel, filepath.Ext(rel)),
			Format:  format,
			Size:    info.Size(),
		})
		return nil
	})

	return sources, err
}
