package report

// Report is the top-level output of a jpegr batch run.
type Report struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Profile     string           `json:"profile"`
	BasePath    string           `json:"base_path"`
	RunInfo     *RunInfo         `json:"run_info,omitempty"`
	Entries     map[string]Entry `json:"entries"`
	Stats       Stats            `json:"stats"`
	Digest      string           `json:"digest"` // xxhash over entry keys and output hashes
}

// RunInfo captures run-time parameters for diagnostics.
type RunInfo struct {
	Workers  int      `json:"workers"`
	MaxSize  int64    `json:"max_size"`
	Features []string `json:"features"` // host primitives in use
}

// Entry describes one source image and its JPEG output.
type Entry struct {
	Source     string  `json:"source"`          // relative to the input dir
	Output     string  `json:"output,omitempty"` // relative to base_path
	Hash       string  `json:"hash,omitempty"`   // first 16 hex chars of xxhash64
	InputType  string  `json:"input_type"`
	InputSize  int64   `json:"input_size"`
	OutputSize int64   `json:"output_size,omitempty"`
	Quality    float64 `json:"quality,omitempty"`
	Converted  bool    `json:"converted,omitempty"`
	Compressed bool    `json:"compressed,omitempty"`
	OverBudget bool    `json:"over_budget,omitempty"` // best effort; still larger than max_size
	Error      string  `json:"error,omitempty"`
}

// Failed reports whether the entry has no output.
func (e Entry) Failed() bool { return e.Error != "" }

// Stats aggregates run metrics.
type Stats struct {
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	TotalEntries     int   `json:"total_entries"`
	Converted        int   `json:"converted"`
	Compressed       int   `json:"compressed"`
	PassedThrough    int   `json:"passed_through"`
	OverBudget       int   `json:"over_budget,omitempty"`
	Failed           int   `json:"failed,omitempty"`
}

// FileName is the report's name inside the output directory.
const FileName = "jpegr.report.json"

// SupportedVersion is the current schema version.
const SupportedVersion = 1
