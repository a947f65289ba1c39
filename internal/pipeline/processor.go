package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wellwelwel/jpegr"
	"github.com/wellwelwel/jpegr/internal/hasher"
	"github.com/wellwelwel/jpegr/internal/report"
)

// processResult holds the outcome for a single source image.
type processResult struct {
	key   string
	entry report.Entry
	err   error // I/O failures only; image faults are recorded in entry
}

// processImage reads one source, runs it through its own processor and
// writes the content-addressed output.
func processImage(ctx context.Context, src Source, cfg Config) processResult {
	result := processResult{key: src.Key}
	result.entry = report.Entry{Source: src.RelPath, InputSize: src.Size}

	data, err := os.ReadFile(src.AbsPath)
	if err != nil {
		result.err = fmt.Errorf("read %s: %w", src.RelPath, err)
		return result
	}
	in := jpegr.DetectBlob(data)
	result.entry.InputType = in.Type()

	// One processor per image: a processor holds a single result.
	proc, err := jpegr.New(cfg.Options)
	if err != nil {
		result.err = err
		return result
	}
	defer proc.Clear()

	res := proc.Process(ctx, in)
	if !res.Success {
		result.entry.Error = res.Error
		return result
	}

	out := res.Image.Bytes()
	md := res.Image.Metadata.Processed
	contentHash := hasher.ContentHash(out, 16)

	keyDir := filepath.Dir(src.Key)
	ext := "jpeg"
	if !res.Image.Blob.IsJPEG() {
		ext = src.Format // passed through by a host that cannot process
	}
	fileName := fmt.Sprintf("%s.%s.%s", filepath.Base(src.Key), contentHash[:hasher.NameLen], ext)
	relPath := filepath.ToSlash(filepath.Join(keyDir, fileName))
	outPath := filepath.Join(cfg.OutputDir, relPath)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		result.err = fmt.Errorf("create dir for %s: %w", relPath, err)
		return result
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		result.err = fmt.Errorf("write %s: %w", relPath, err)
		return result
	}

	result.entry.Output = relPath
	result.entry.Hash = contentHash
	result.entry.OutputSize = md.Size
	result.entry.Quality = md.Quality
	result.entry.Converted = md.Converted
	result.entry.Compressed = md.Compressed
	result.entry.OverBudget = md.Size > proc.MaxSize()
	return result
}
