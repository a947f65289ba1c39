package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wellwelwel/jpegr/internal/blob"
	"github.com/wellwelwel/jpegr/internal/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_report>",
	Short: "Display statistics for a batch output directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	path, err := reportPath(args[0])
	if err != nil {
		return err
	}
	r, err := report.ReadJSON(path)
	if err != nil {
		return err
	}
	printStats(r)
	return nil
}

// reportPath accepts a report file or the directory holding one.
func reportPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return filepath.Join(path, report.FileName), nil
	}
	return path, nil
}

func printStats(r *report.Report) {
	fmt.Println()
	fmt.Printf("  Report version:   %d\n", r.Version)
	fmt.Printf("  Generated:        %s\n", r.GeneratedAt)
	fmt.Printf("  Profile:          %s\n", r.Profile)
	if r.RunInfo != nil {
		fmt.Printf("  Workers:          %d\n", r.RunInfo.Workers)
		fmt.Printf("  Budget:           %s\n", blob.FormatSize(r.RunInfo.MaxSize))
		fmt.Printf("  Host features:    %d\n", len(r.RunInfo.Features))
	}
	fmt.Println()

	s := r.Stats
	fmt.Printf("  Total images:     %d\n", s.TotalEntries)
	fmt.Printf("  Converted:        %d\n", s.Converted)
	fmt.Printf("  Compressed:       %d\n", s.Compressed)
	fmt.Printf("  Unchanged:        %d\n", s.PassedThrough)
	fmt.Printf("  Input size:       %s\n", blob.FormatSize(s.TotalInputBytes))
	fmt.Printf("  Output size:      %s\n", blob.FormatSize(s.TotalOutputBytes))
	if s.TotalInputBytes > 0 {
		fmt.Printf("  Compression:      %.1f%% of original\n", ratio(s.TotalOutputBytes, s.TotalInputBytes))
	}
	fmt.Println()

	// Per-input-type breakdown.
	typeStats := map[string]struct {
		count int
		bytes int64
	}{}
	for _, e := range r.Entries {
		ts := typeStats[e.InputType]
		ts.count++
		ts.bytes += e.InputSize
		typeStats[e.InputType] = ts
	}
	types := make([]string, 0, len(typeStats))
	for t := range typeStats {
		types = append(types, t)
	}
	sort.Strings(types)
	fmt.Println("  Input types:")
	for _, t := range types {
		ts := typeStats[t]
		fmt.Printf("    %-12s  %4d files  %s\n", t, ts.count, blob.FormatSize(ts.bytes))
	}
	fmt.Println()

	// Quality histogram in tenths.
	buckets := map[int]int{}
	for _, e := range r.Entries {
		if !e.Failed() {
			buckets[int(e.Quality*10+0.5)]++
		}
	}
	var qs []int
	for q := range buckets {
		qs = append(qs, q)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(qs)))
	fmt.Println("  Final quality:")
	for _, q := range qs {
		fmt.Printf("    q=%.1f  %4d images\n", float64(q)/10, buckets[q])
	}

	// Warnings.
	var warnings []string
	for key, e := range r.Entries {
		if e.Failed() {
			warnings = append(warnings, fmt.Sprintf("%q failed: %s", key, e.Error))
		}
		if e.OverBudget {
			warnings = append(warnings, fmt.Sprintf("%q is over budget (%s)", key, blob.FormatSize(e.OutputSize)))
		}
	}
	sort.Strings(warnings)
	if len(warnings) > 0 {
		fmt.Println()
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
	}
	fmt.Println()
}
