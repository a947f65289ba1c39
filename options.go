package jpegr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/creasty/defaults"
	validatorV10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wellwelwel/jpegr/internal/encoder"
	"github.com/wellwelwel/jpegr/internal/errs"
)

// PreviewSink displays the currently held image, like an <img> element kept
// in sync with the processor.
type PreviewSink interface {
	Show(src string)
	Reset()
}

// Options configures a Processor. Zero values take the defaults noted below.
type Options struct {
	Preview PreviewSink

	MaxSize          int64   // bytes, default 1 MiB
	MaxQuality       float64 // (0,1], default 1.0
	CompressionStep  float64 // default 0.1
	MinQuality       float64 // default 0.1
	ForceCompression bool
	BackgroundColor  string // "#rgb" or "#rrggbb", default "#000000"

	Host       *Host        // default: NativeHost()
	Logger     *zap.Logger  // default: no-op
	HTTPClient *http.Client // default: http.DefaultClient
}

// settings is the validated, defaulted subset of Options.
type settings struct {
	MaxSize          int64   `default:"1048576" validate:"gt=0"`
	MaxQuality       float64 `default:"1" validate:"gt=0,lte=1"`
	CompressionStep  float64 `default:"0.1" validate:"gt=0,lte=1"`
	MinQuality       float64 `default:"0.1" validate:"gt=0,lte=1,ltefield=MaxQuality"`
	ForceCompression bool
	BackgroundColor  string `default:"#000000" validate:"jpegcolor"`
}

var validator *validatorV10.Validate

func init() {
	validator = validatorV10.New()
	_ = validator.RegisterValidation("jpegcolor", func(fl validatorV10.FieldLevel) bool {
		return encoder.ValidHexColor(fl.Field().String())
	})
}

func (o Options) settings() (settings, error) {
	s := settings{
		MaxSize:          o.MaxSize,
		MaxQuality:       o.MaxQuality,
		CompressionStep:  o.CompressionStep,
		MinQuality:       o.MinQuality,
		ForceCompression: o.ForceCompression,
		BackgroundColor:  o.BackgroundColor,
	}
	if err := defaults.Set(&s); err != nil {
		return settings{}, fmt.Errorf("apply defaults: %w", err)
	}
	if err := validator.Struct(s); err != nil {
		return settings{}, validationError(err)
	}
	return s, nil
}

func validationError(err error) error {
	var ves validatorV10.ValidationErrors
	if !errors.As(err, &ves) {
		return errs.Validation("options", "Invalid config: %v", err)
	}
	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		msgs = append(msgs, fe.Field()+" "+validationMessage(fe))
	}
	return errs.Validation("options", "Invalid config: %s.", strings.Join(msgs, "; "))
}

func validationMessage(fe validatorV10.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "ltefield":
		return fmt.Sprintf("cannot be greater than %s", fe.Param())
	case "jpegcolor":
		return `must be a hex color like "#000" or "#000000"`
	default:
		return fmt.Sprintf("failed validation for tag '%s'", fe.Tag())
	}
}

// CallOption adjusts a single Process or Merge call.
type CallOption func(*call)

type call struct {
	maxSize int64
}

// WithMaxSize overrides the byte budget for one call. Non-positive values are ignored.
func WithMaxSize(n int64) CallOption {
	return func(c *call) {
		if n > 0 {
			c.maxSize = n
		}
	}
}

func (p *Processor) callOptions(opts []CallOption) call {
	c := call{maxSize: p.cfg.MaxSize}
	for _, o := range opts {
		o(&c)
	}
	return c
}
