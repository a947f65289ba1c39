package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wellwelwel/jpegr"
)

var (
	mergeOut       string
	mergeDirection string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <image> [image...]",
	Short: "Lay images out side by side or stacked and encode them as one JPEG",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOut, "out", "o", "merged.jpeg", "output file")
	mergeCmd.Flags().StringVarP(&mergeDirection, "direction", "d", string(jpegr.Horizontal), "horizontal or vertical")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	p, err := newProcessor()
	if err != nil {
		return err
	}

	inputs := make([]jpegr.Source, 0, len(args))
	for _, path := range args {
		b, err := readInput(path)
		if err != nil {
			return err
		}
		inputs = append(inputs, b)
	}

	res, err := p.Merge(cmd.Context(), inputs, jpegr.Direction(mergeDirection))
	if err != nil {
		return err
	}
	if err := writeResult(res, mergeOut); err != nil {
		return err
	}
	logVerbose("merged %d images into %s", len(args), mergeOut)
	return nil
}

// readInput loads a file as a blob with a sniffed MIME type.
func readInput(path string) (*jpegr.Blob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	b := jpegr.DetectBlob(data)
	return jpegr.NewFile(data, b.Type(), path), nil
}

// writeResult saves a successful result and prints its metadata.
func writeResult(res jpegr.Result, path string) error {
	if !res.Success {
		return fmt.Errorf("%s", res.Error)
	}
	if err := os.WriteFile(path, res.Image.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	md := res.Image.Metadata
	fmt.Printf("  %s: %s %s → %s %s (quality %.2f)\n",
		path,
		md.Original.Type, md.Original.SizeFormatted,
		md.Processed.Type, md.Processed.SizeFormatted,
		md.Processed.Quality)
	return nil
}
