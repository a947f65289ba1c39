// Package profile holds named compression presets for common destinations.
package profile

import (
	"sort"

	"github.com/wellwelwel/jpegr"
)

// Profile is a preset of processor options for a target destination.
type Profile struct {
	Name            string
	MaxSize         int64   // bytes
	MaxQuality      float64 // first quality tried
	MinQuality      float64 // exclusive floor of the search
	CompressionStep float64
	Force           bool // recompress JPEGs that already fit
	Background      string
}

// Built-in profiles.
var profiles = map[string]Profile{
	"web": {
		Name:            "web",
		MaxSize:         1 << 20,
		MaxQuality:      1,
		MinQuality:      0.1,
		CompressionStep: 0.1,
		Background:      "#000000",
	},
	"email": {
		Name:            "email",
		MaxSize:         300 << 10,
		MaxQuality:      0.9,
		MinQuality:      0.2,
		CompressionStep: 0.05,
		Force:           true,
		Background:      "#ffffff",
	},
	"thumbnail": {
		Name:            "thumbnail",
		MaxSize:         64 << 10,
		MaxQuality:      0.8,
		MinQuality:      0.1,
		CompressionStep: 0.1,
		Force:           true,
		Background:      "#ffffff",
	},
	"archive": {
		Name:            "archive",
		MaxSize:         8 << 20,
		MaxQuality:      1,
		MinQuality:      0.6,
		CompressionStep: 0.02,
		Background:      "#000000",
	},
}

// Get returns a profile by name. Falls back to web if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles["web"]
	p.Name = name // preserve requested name
	return p
}

// Names lists the built-in profiles in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Options returns processor options for the profile. Host, logger and preview
// are left for the caller.
func (p Profile) Options() jpegr.Options {
	return jpegr.Options{
		MaxSize:          p.MaxSize,
		MaxQuality:       p.MaxQuality,
		MinQuality:       p.MinQuality,
		CompressionStep:  p.CompressionStep,
		ForceCompression: p.Force,
		BackgroundColor:  p.Background,
	}
}
