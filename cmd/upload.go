package cmd

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wellwelwel/jpegr"
)

var (
	uploadField   string
	uploadName    string
	uploadMethod  string
	uploadHeaders []string
	uploadSave    string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <image> <url>",
	Short: "Convert an image and send it as a multipart form upload",
	Args:  cobra.ExactArgs(2),
	RunE:  runUpload,
}

func init() {
	f := uploadCmd.Flags()
	f.StringVar(&uploadField, "field", "", `form field name (default "image")`)
	f.StringVar(&uploadName, "name", "", `file name sent with the part (default "image.jpeg")`)
	f.StringVarP(&uploadMethod, "method", "X", "", `HTTP method (default "POST")`)
	f.StringArrayVarP(&uploadHeaders, "header", "H", nil, `extra request header, "Key: Value"`)
	f.StringVarP(&uploadSave, "save", "s", "", "also write the converted image to this file")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	p, err := newProcessor()
	if err != nil {
		return err
	}
	in, err := readInput(args[0])
	if err != nil {
		return err
	}

	res := p.Process(cmd.Context(), in)
	if !res.Success {
		return fmt.Errorf("%s", res.Error)
	}
	if uploadSave != "" {
		if err := writeResult(res, uploadSave); err != nil {
			return err
		}
	}

	header := http.Header{}
	for _, h := range uploadHeaders {
		k, v, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("invalid header %q, want \"Key: Value\"", h)
		}
		header.Add(strings.TrimSpace(k), strings.TrimSpace(v))
	}

	resp, err := p.Upload(cmd.Context(), args[1], jpegr.UploadOptions{
		Field:  uploadField,
		Name:   uploadName,
		Method: uploadMethod,
		Header: header,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	fmt.Printf("  uploaded %s to %s: %s\n", res.Image.Metadata.Processed.SizeFormatted, args[1], resp.Status)
	return nil
}
