package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wellwelwel/jpegr"
	"github.com/wellwelwel/jpegr/internal/config"
	"github.com/wellwelwel/jpegr/internal/host"
	"github.com/wellwelwel/jpegr/internal/logging"
)

var (
	version = "0.1.0"

	verbose    bool
	configPath string
	logFile    string
	disable    []string

	cfg *config.Config
	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "jpegr",
	Short: "Convert images to JPEGs that fit a byte budget",
	Long: `jpegr converts PNG, GIF, WebP, BMP and TIFF images (and oversized JPEGs)
into JPEGs no larger than a byte budget, picking the highest quality that fits.

Settings come from --config (YAML/JSON/TOML), JPEGR_* environment variables
and a named profile (web, email, thumbnail, archive).`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { _ = log.Sync() },
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.StringVarP(&configPath, "config", "c", "", "config file")
	pf.StringVar(&logFile, "log-file", "", "also write JSON logs to this file (rotated)")
	pf.StringSliceVar(&disable, "disable", nil, "host primitives to disable, e.g. bitmap-decode,canvas-to-blob")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"jpegr %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// setup loads configuration and builds the logger before any command runs.
func setup(*cobra.Command, []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if verbose {
		c.Log.Level = "debug"
	}
	if logFile != "" {
		c.Log.File = logFile
	}
	if len(disable) > 0 {
		c.Disable = disable
	}

	l, err := logging.New(c.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	cfg, log = c, l
	return nil
}

// newHost returns the native host without the configured primitives.
func newHost() (*jpegr.Host, error) {
	features := make([]host.Feature, 0, len(cfg.Disable))
	for _, name := range cfg.Disable {
		f, ok := host.ParseFeature(name)
		if !ok {
			return nil, fmt.Errorf("unknown feature %q (known: %v)", name, host.Features)
		}
		features = append(features, f)
	}
	return jpegr.NativeHost().Without(features...), nil
}

// newProcessor builds a processor from the loaded configuration.
func newProcessor() (*jpegr.Processor, error) {
	h, err := newHost()
	if err != nil {
		return nil, err
	}
	opts := cfg.Options()
	opts.Host = h
	opts.Logger = log
	return jpegr.New(opts)
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[jpegr] "+format+"\n", args...)
	}
}
