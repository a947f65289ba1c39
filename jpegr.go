// Package jpegr converts arbitrary images into size-constrained JPEGs.
//
// A Processor decodes the input through the best primitive its host offers,
// searches for the highest JPEG quality that fits the byte budget and keeps
// the last result (with its preview reference) until it is replaced or
// cleared. Hosts lacking modern primitives fall back to slower paths that
// produce the same output.
package jpegr

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/wellwelwel/jpegr/internal/blob"
	"github.com/wellwelwel/jpegr/internal/capability"
	"github.com/wellwelwel/jpegr/internal/compressor"
	"github.com/wellwelwel/jpegr/internal/decoder"
	"github.com/wellwelwel/jpegr/internal/encoder"
	"github.com/wellwelwel/jpegr/internal/errs"
	"github.com/wellwelwel/jpegr/internal/host"
	"github.com/wellwelwel/jpegr/internal/merger"
	"github.com/wellwelwel/jpegr/internal/preview"
)

// Processor holds at most one processed image at a time. Calls may overlap;
// the call that completes last owns the slot.
type Processor struct {
	cfg    settings
	sink   PreviewSink
	prof   capability.Profile
	log    *zap.Logger
	client *http.Client

	decoder  *decoder.Decoder
	encoder  *encoder.JPEG
	previews *preview.Builder

	mu      sync.Mutex
	held    *ProcessedImage
	lastErr string
}

// New validates opts and selects the decode, encode and preview strategies
// of the host once.
func New(opts Options) (*Processor, error) {
	cfg, err := opts.settings()
	if err != nil {
		return nil, err
	}
	h := opts.Host
	if h == nil {
		h = host.Native()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	prof := capability.Probe(h)
	p := &Processor{
		cfg:      cfg,
		sink:     opts.Preview,
		prof:     prof,
		log:      log,
		client:   client,
		decoder:  decoder.New(h, prof, log),
		encoder:  encoder.New(h, prof),
		previews: preview.New(h, prof),
	}
	log.Debug("processor ready",
		zap.Stringer("decoder", p.decoder),
		zap.Stringer("encoder", p.encoder.Registry()),
		zap.Bool("canProcess", prof.CanProcess()))

	p.syncPreview()
	return p, nil
}

// MaxSize is the default byte budget of Process and Merge.
func (p *Processor) MaxSize() int64 { return p.cfg.MaxSize }

// Support returns the profile of this processor's host.
func (p *Processor) Support() Profile { return p.prof }

// Process converts input to a JPEG within the byte budget. A JPEG already
// within budget is passed through untouched unless ForceCompression is set.
// Failures are reported in the Result, never returned or panicked.
func (p *Processor) Process(ctx context.Context, input Source, opts ...CallOption) Result {
	c := p.callOptions(opts)

	src, err := resolve(input)
	if err != nil {
		return p.fail("process", errs.Validation("process", "No file selected."))
	}
	img, err := p.process(ctx, src, c.maxSize)
	if err != nil {
		return p.fail("process", err)
	}
	p.store(img)
	return Result{Success: true, Image: img}
}

func (p *Processor) process(ctx context.Context, src *blob.Blob, maxSize int64) (*ProcessedImage, error) {
	out := src
	quality := p.cfg.MaxQuality
	var converted, compressed bool

	withinBudget := src.IsJPEG() && src.Size() <= maxSize && !p.cfg.ForceCompression
	if !withinBudget && p.prof.CanProcess() {
		converted = !src.IsJPEG()
		err := decoder.With(ctx, p.decoder, src, func(img *decoder.Image) error {
			res, err := compressor.CompressToFit(ctx, p.encoder, img, p.compression(maxSize, src.Size()))
			if err != nil {
				return err
			}
			out, compressed, quality = res.Blob, res.WasCompressed, res.FinalQuality
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return p.finish(ctx, src.Size(), src.Type(), out, converted, compressed, quality)
}

// Merge lays inputs out along dir and encodes them as one JPEG, recompressing
// when the composition exceeds the budget. Invalid arguments (no inputs, bad
// direction, bad background color) are returned as an error before any
// decode work; every other failure is reported in the Result.
func (p *Processor) Merge(ctx context.Context, inputs []Source, dir Direction, opts ...CallOption) (Result, error) {
	if err := merger.Validate(len(inputs), merger.Options{Direction: dir, Background: p.cfg.BackgroundColor}); err != nil {
		return Result{}, err
	}
	c := p.callOptions(opts)

	img, err := p.merge(ctx, inputs, dir, c.maxSize)
	if err != nil {
		return p.fail("merge", err), nil
	}
	p.store(img)
	return Result{Success: true, Image: img}, nil
}

func (p *Processor) merge(ctx context.Context, inputs []Source, dir Direction, maxSize int64) (*ProcessedImage, error) {
	if !p.prof.CanProcess() {
		return nil, errs.Capability("merge", "Image merging is not supported in this host environment.")
	}

	sources := make([]*blob.Blob, 0, len(inputs))
	var originalSize int64
	for _, in := range inputs {
		b, err := resolve(in)
		if err != nil {
			return nil, errs.Validation("merge", "One or more file inputs are empty.")
		}
		sources = append(sources, b)
		originalSize += b.Size()
	}

	merged, err := merger.Merge(ctx, p.decoder, p.encoder, sources, merger.Options{
		Direction:  dir,
		Quality:    p.cfg.MaxQuality,
		Background: p.cfg.BackgroundColor,
	})
	if err != nil {
		return nil, err
	}

	out := merged.Blob
	quality := p.cfg.MaxQuality
	var compressed bool
	if out.Size() > maxSize {
		err := decoder.With(ctx, p.decoder, merged.Blob, func(img *decoder.Image) error {
			res, err := compressor.CompressToFit(ctx, p.encoder, img, p.compression(maxSize, merged.Blob.Size()))
			if err != nil {
				return err
			}
			out, compressed, quality = res.Blob, res.WasCompressed, res.FinalQuality
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return p.finish(ctx, originalSize, "mixed", out, true, compressed, quality)
}

func (p *Processor) compression(maxSize, originalSize int64) compressor.Options {
	return compressor.Options{
		MaxSize:      maxSize,
		OriginalSize: originalSize,
		MaxQuality:   p.cfg.MaxQuality,
		MinQuality:   p.cfg.MinQuality,
		Step:         p.cfg.CompressionStep,
		Background:   p.cfg.BackgroundColor,
	}
}

func (p *Processor) finish(ctx context.Context, origSize int64, origType string, out *blob.Blob, converted, compressed bool, quality float64) (*ProcessedImage, error) {
	src, err := p.previews.Build(ctx, out)
	if err != nil {
		return nil, err
	}
	return &ProcessedImage{
		Blob:     out,
		Src:      src.URI,
		Metadata: newMetadata(origSize, origType, out, converted, compressed, quality),
		revoke:   src.Revoke,
	}, nil
}

// store revokes the previous preview before the new image takes the slot.
func (p *Processor) store(img *ProcessedImage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.held.Revoke()
	p.held = img
	p.lastErr = ""
	p.syncPreviewLocked()
}

func (p *Processor) fail(op string, err error) Result {
	msg := message(err)
	p.log.Error(op+" failed",
		zap.String("op", op),
		zap.Stringer("kind", errs.KindOf(err)),
		zap.Error(err))

	p.mu.Lock()
	p.held.Revoke()
	p.held = nil
	p.lastErr = msg
	p.syncPreviewLocked()
	p.mu.Unlock()

	return Result{Success: false, Error: msg, Err: err}
}

// Clear revokes the held preview and forgets the image and last error.
func (p *Processor) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.held.Revoke()
	p.held = nil
	p.lastErr = ""
	p.syncPreviewLocked()
}

// Status reports whether an image is held and the last error, if any.
func (p *Processor) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{HasImage: p.held != nil, Error: p.lastErr}
}

// Image returns the held image, or nil.
func (p *Processor) Image() *ProcessedImage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.held
}

func (p *Processor) syncPreview() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.syncPreviewLocked()
}

func (p *Processor) syncPreviewLocked() {
	if p.sink == nil {
		return
	}
	if p.held == nil {
		p.sink.Reset()
		return
	}
	p.sink.Show(p.held.Src)
}

func resolve(in Source) (*blob.Blob, error) {
	if in == nil {
		return nil, blob.ErrNoFile
	}
	return in.Resolve()
}

// message is the user-facing text of a fault.
func message(err error) string {
	var e *errs.Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return "Failed to process image."
}
