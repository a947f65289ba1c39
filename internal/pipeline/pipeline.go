// Package pipeline converts every image under a directory to budgeted JPEGs
// in parallel and records the outcome in a report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/wellwelwel/jpegr"
	"github.com/wellwelwel/jpegr/internal/capability"
	"github.com/wellwelwel/jpegr/internal/report"
)

// Config holds all parameters for a batch run.
type Config struct {
	InputDir    string
	OutputDir   string
	ProfileName string
	Options     jpegr.Options
	Workers     int
	Logger      *zap.Logger
}

// Pipeline orchestrates batch processing.
type Pipeline struct {
	cfg     Config
	log     *zap.Logger
	maxSize int64
	support capability.Profile
}

// New validates the processor options once and returns a configured pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Options.Logger == nil {
		cfg.Options.Logger = cfg.Logger
	}
	if cfg.Options.Host == nil {
		cfg.Options.Host = jpegr.NativeHost()
	}
	probe, err := jpegr.New(cfg.Options)
	if err != nil {
		return nil, fmt.Errorf("processor options: %w", err)
	}
	return &Pipeline{
		cfg:     cfg,
		log:     cfg.Logger,
		maxSize: probe.MaxSize(),
		support: probe.Support(),
	}, nil
}

// Run executes the batch and returns the report. Individual image failures
// are recorded as report entries; Run fails only when nothing succeeded.
func (p *Pipeline) Run(ctx context.Context) (*report.Report, error) {
	p.log.Debug("host support", zap.Any("features", p.support.Features()))

	// Step 1: Scan for images.
	sources, err := ScanImages(p.cfg.InputDir, p.cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %s", p.cfg.InputDir)
	}
	p.log.Info("found images", zap.Int("count", len(sources)), zap.Int("workers", p.cfg.Workers))

	// Step 2: Process images in parallel.
	results := make([]processResult, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			select {
			case sem <- struct{}{}: // acquire
			case <-ctx.Done():
				results[idx] = processResult{key: s.Key, err: ctx.Err()}
				return
			}
			defer func() { <-sem }() // release

			p.log.Debug("processing", zap.String("source", s.RelPath))
			results[idx] = processImage(ctx, s, p.cfg)

			if r := results[idx]; r.err == nil {
				if r.entry.Failed() {
					p.log.Warn("image failed", zap.String("source", s.RelPath), zap.String("error", r.entry.Error))
				} else {
					p.log.Debug("done",
						zap.String("source", s.RelPath),
						zap.String("output", r.entry.Output),
						zap.Float64("quality", r.entry.Quality))
				}
			}
		}(i, src)
	}
	wg.Wait()

	// Step 3: Collect results into the report.
	rep := report.New(p.cfg.ProfileName)
	features := p.support.Features()
	rep.RunInfo = &report.RunInfo{
		Workers:  p.cfg.Workers,
		MaxSize:  p.maxSize,
		Features: make([]string, len(features)),
	}
	for i, f := range features {
		rep.RunInfo.Features[i] = string(f)
	}

	var failures []error
	var ok int
	for _, r := range results {
		if r.err != nil {
			failures = append(failures, r.err)
			continue
		}
		rep.Entries[r.key] = r.entry
		if !r.entry.Failed() {
			ok++
		}
	}
	for _, e := range failures {
		p.log.Error("io failure", zap.Error(e))
	}
	if ok == 0 {
		if len(failures) > 0 {
			return nil, fmt.Errorf("all %d images failed to process: %w", len(sources), errors.Join(failures...))
		}
		return nil, fmt.Errorf("all %d images failed to process", len(sources))
	}
	if failed := len(sources) - ok; failed > 0 {
		p.log.Warn("partial failure", zap.Int("failed", failed), zap.Int("total", len(sources)))
	}

	rep.ComputeStats()
	return rep, nil
}
