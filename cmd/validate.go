package cmd

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wellwelwel/jpegr/internal/hasher"
	"github.com/wellwelwel/jpegr/internal/report"
)

var validateCmd = &cobra.Command{
	Use:   "validate <out_dir_or_report>",
	Short: "Check report outputs against the files on disk",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	path, err := reportPath(args[0])
	if err != nil {
		return err
	}
	r, err := report.ReadJSON(path)
	if err != nil {
		return err
	}

	problems := validateReport(r, filepath.Dir(path))
	if len(problems) == 0 {
		fmt.Println("  ✓ Report is valid")
		fmt.Printf("  ✓ %d images, all outputs present\n", r.Stats.TotalEntries-r.Stats.Failed)
		return nil
	}

	fmt.Printf("  ✗ Report has %d problem(s):\n", len(problems))
	for _, p := range problems {
		fmt.Printf("    • %s\n", p)
	}
	return fmt.Errorf("validation failed with %d problems", len(problems))
}

func validateReport(r *report.Report, baseDir string) []string {
	var problems []string

	keys := make([]string, 0, len(r.Entries))
	for k := range r.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		e := r.Entries[key]
		if e.Failed() {
			continue
		}
		if e.Output == "" {
			problems = append(problems, fmt.Sprintf("%q: no output recorded", key))
			continue
		}

		data, err := os.ReadFile(filepath.Join(baseDir, filepath.FromSlash(e.Output)))
		if err != nil {
			problems = append(problems, fmt.Sprintf("%q: %v", key, err))
			continue
		}
		if int64(len(data)) != e.OutputSize {
			problems = append(problems, fmt.Sprintf("%q: size %d, report says %d", key, len(data), e.OutputSize))
		}
		if got := hasher.ContentHash(data, len(e.Hash)); got != e.Hash {
			problems = append(problems, fmt.Sprintf("%q: hash %s, report says %s", key, got, e.Hash))
		}
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			problems = append(problems, fmt.Sprintf("%q: not a readable image: %v", key, err))
		}
	}

	digest := r.Digest
	r.ComputeStats()
	if digest != r.Digest {
		problems = append(problems, "report digest does not match its entries")
	}
	return problems
}
