package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wellwelwel/jpegr/internal/report"
)

func TestPrintBatchReport_SizesMatchMetadata(t *testing.T) {
	r := report.New("web")
	r.Entries["photos/cat"] = report.Entry{
		Source:     "photos/cat.png",
		InputSize:  3 << 20,
		OutputSize: 1536,
		Quality:    0.4,
		Converted:  true,
		Compressed: true,
	}
	r.ComputeStats()

	var out bytes.Buffer
	printBatchReport(&out, r, time.Second)

	// Same rendering as Metadata.SizeFormatted printed by merge and upload.
	assert.Contains(t, out.String(), "Input size:  3.00 MB")
	assert.Contains(t, out.String(), "Output size: 1.50 KB")
	assert.Contains(t, out.String(), "q=0.40")
}
