package cmd

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/wellwelwel/jpegr/internal/capability"
	"github.com/wellwelwel/jpegr/internal/host"
)

var probeJSON bool

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Show which host primitives are available after --disable",
	Args:  cobra.NoArgs,
	RunE:  runProbe,
}

func init() {
	probeCmd.Flags().BoolVar(&probeJSON, "json", false, "print the profile as JSON")
	rootCmd.AddCommand(probeCmd)
}

func runProbe(*cobra.Command, []string) error {
	h, err := newHost()
	if err != nil {
		return err
	}
	prof := capability.Probe(h)

	if probeJSON {
		out := struct {
			capability.Profile
			CanProcess bool `json:"canProcess"`
		}{prof, prof.CanProcess()}
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	enabled := map[host.Feature]bool{}
	for _, f := range prof.Features() {
		enabled[f] = true
	}
	fmt.Println()
	for _, f := range host.Features {
		mark := "✗"
		if enabled[f] {
			mark = "✓"
		}
		fmt.Printf("  %s %s\n", mark, f)
	}
	fmt.Println()
	if prof.CanProcess() {
		fmt.Println("  Full pipeline available")
	} else {
		fmt.Println("  Cannot process: inputs will be passed through unchanged")
	}
	fmt.Println()
	return nil
}
