// Package report records the results of a batch run as JSON.
package report

import (
	"fmt"
	"os"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/wellwelwel/jpegr/internal/hasher"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// New creates an empty report with defaults.
func New(profileName string) *Report {
	return &Report{
		Version:     SupportedVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Profile:     profileName,
		BasePath:    "./",
		Entries:     make(map[string]Entry),
	}
}

// ComputeStats recalculates aggregate statistics and the digest from entries.
func (r *Report) ComputeStats() {
	var s Stats
	s.TotalEntries = len(r.Entries)
	keys := make([]string, 0, len(r.Entries))
	for k, e := range r.Entries {
		keys = append(keys, k)
		s.TotalInputBytes += e.InputSize
		if e.Failed() {
			s.Failed++
			continue
		}
		s.TotalOutputBytes += e.OutputSize
		switch {
		case e.Converted:
			s.Converted++
		case e.Compressed:
			s.Compressed++
		default:
			s.PassedThrough++
		}
		if e.OverBudget {
			s.OverBudget++
		}
	}
	r.Stats = s

	sort.Strings(keys)
	parts := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		parts = append(parts, k, r.Entries[k].Hash)
	}
	r.Digest = hasher.Digest(parts...)
}

// WriteJSON serializes the report to a JSON file with stable ordering.
func WriteJSON(r *Report, path string) error {
	r.ComputeStats()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON loads a report, ignoring fields it does not know.
func ReadJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	if r.Version > SupportedVersion {
		return nil, fmt.Errorf("report version %d is newer than supported %d", r.Version, SupportedVersion)
	}
	return &r, nil
}
