package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/wellwelwel/jpegr/internal/blob"
	"github.com/wellwelwel/jpegr/internal/pipeline"
	"github.com/wellwelwel/jpegr/internal/report"
)

var (
	batchOutDir  string
	batchProfile string
	batchWorkers int
	batchMaxSize int64
)

var batchCmd = &cobra.Command{
	Use:   "batch <input_dir>",
	Short: "Convert every image in a directory and write a report",
	Long: `Scans the input directory for images (png, jpg, jpeg, webp, gif, bmp, tiff),
converts each one to a JPEG within the byte budget and writes a report file.

Output filenames are content-addressed: <key>.<hash>.jpeg`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutDir, "out", "o", "", "output directory (default from config: dist)")
	batchCmd.Flags().StringVarP(&batchProfile, "profile", "p", "", "compression profile (default from config: web)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "parallel workers (0 = config or NumCPU)")
	batchCmd.Flags().Int64VarP(&batchMaxSize, "max-size", "m", 0, "byte budget per image (0 = profile default)")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	start := time.Now()
	if batchOutDir != "" {
		cfg.Output = batchOutDir
	}
	if batchProfile != "" {
		cfg.Profile = batchProfile
	}
	if batchWorkers > 0 {
		cfg.Workers = batchWorkers
	}
	if batchMaxSize > 0 {
		cfg.MaxSize = batchMaxSize
	}

	absInput, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(cfg.Output)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	h, err := newHost()
	if err != nil {
		return err
	}

	logVerbose("input:   %s", absInput)
	logVerbose("output:  %s", absOutput)
	logVerbose("profile: %s", cfg.Profile)

	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	opts := cfg.Options()
	opts.Host = h
	p, err := pipeline.New(pipeline.Config{
		InputDir:    absInput,
		OutputDir:   absOutput,
		ProfileName: cfg.Profile,
		Options:     opts,
		Workers:     cfg.WorkerCount(),
		Logger:      log,
	})
	if err != nil {
		return err
	}

	rep, err := p.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	reportFile := filepath.Join(absOutput, report.FileName)
	if err := report.WriteJSON(rep, reportFile); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	printBatchReport(os.Stdout, rep, time.Since(start))
	return nil
}

func printBatchReport(w io.Writer, r *report.Report, elapsed time.Duration) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  jpegr batch complete")
	fmt.Fprintln(w)

	s := r.Stats
	fmt.Fprintf(w, "  Images:      %d (%d converted, %d compressed, %d unchanged)\n",
		s.TotalEntries, s.Converted, s.Compressed, s.PassedThrough)
	if s.Failed > 0 {
		fmt.Fprintf(w, "  Failed:      %d\n", s.Failed)
	}
	if s.OverBudget > 0 {
		fmt.Fprintf(w, "  Over budget: %d (best effort at minimum quality)\n", s.OverBudget)
	}
	fmt.Fprintf(w, "  Input size:  %s\n", blob.FormatSize(s.TotalInputBytes))
	fmt.Fprintf(w, "  Output size: %s\n", blob.FormatSize(s.TotalOutputBytes))
	fmt.Fprintf(w, "  Ratio:       %.1f%% of original\n", ratio(s.TotalOutputBytes, s.TotalInputBytes))
	fmt.Fprintf(w, "  Time:        %s\n", elapsed.Round(time.Millisecond))
	if r.RunInfo != nil {
		fmt.Fprintf(w, "  Workers:     %d\n", r.RunInfo.Workers)
	}
	fmt.Fprintln(w)

	// Top 10 heaviest inputs.
	type entrySize struct {
		key     string
		in, out int64
		quality float64
	}
	var items []entrySize
	for key, e := range r.Entries {
		if !e.Failed() {
			items = append(items, entrySize{key, e.InputSize, e.OutputSize, e.Quality})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].in > items[j].in })
	if n := min(len(items), 10); n > 0 {
		fmt.Fprintf(w, "  Top %d heaviest (original → output):\n", n)
		for _, it := range items[:n] {
			fmt.Fprintf(w, "    %-40s %8s → %8s  q=%.2f\n",
				truncKey(it.key, 40), blob.FormatSize(it.in), blob.FormatSize(it.out), it.quality)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "  Report:      %s (digest %s)\n", report.FileName, r.Digest)
	fmt.Fprintln(w)
}

func ratio(out, in int64) float64 {
	if in <= 0 {
		return 0
	}
	return float64(out) / float64(in) * 100
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
