// Package config loads the display palette a host program uses to
// turn attribute descriptors (§4.F's opaque Descriptor values) into
// concrete terminal styles, persisted as YAML under the user's XDG
// config directory. Grounded on the teacher's app/config.go
// (ConfigPath/LoadOrCreateConfig/saveDefaultConfig shape), generalized
// from a single editor config file to a descriptor-name-keyed style
// palette.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// StyleConfig is one descriptor's style, expressed independently of
// any particular terminal library so this package stays free of a
// display dependency; a host program's view layer resolves it (e.g.
// into a tcell.Style).
type StyleConfig struct {
	Fg        string `yaml:"fg,omitempty"`
	Bg        string `yaml:"bg,omitempty"`
	Bold      bool   `yaml:"bold,omitempty"`
	Italic    bool   `yaml:"italic,omitempty"`
	Underline bool   `yaml:"underline,omitempty"`
}

// Palette maps a descriptor's name to its style. Descriptor names are
// whatever a grammar's Formatter resolves to; this package never
// interprets them beyond using them as map keys.
type Palette map[string]StyleConfig

// DefaultPalette returns the palette styling languages/markdown's
// default descriptor set.
func DefaultPalette() Palette {
	return Palette{
		"normal":         {},
		"header":         {Bold: true},
		"italic":         {Italic: true},
		"thematic_break": {Fg: "gray"},
	}
}

// ConfigPath returns the path to the palette file.
func ConfigPath() (string, error) {
	path := filepath.Join("markedit", "palette.yaml")
	return xdg.ConfigFile(path)
}

// LoadOrCreatePalette loads the palette file if it exists and creates
// a default one otherwise. forceDefault skips the filesystem
// altogether and returns DefaultPalette(), mirroring the teacher's
// -noconfig flag.
func LoadOrCreatePalette(forceDefault bool) (Palette, error) {
	if forceDefault {
		log.Printf("Using default palette\n")
		return DefaultPalette(), nil
	}

	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	log.Printf("Loading palette from %q\n", path)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Printf("Writing default palette to %q\n", path)
		if err := saveDefaultPalette(path); err != nil {
			return nil, fmt.Errorf("writing default palette to %q: %w", path, err)
		}
		return DefaultPalette(), nil
	} else if err != nil {
		return nil, fmt.Errorf("loading palette from %q: %w", path, err)
	}

	return ParsePalette(data)
}

// ParsePalette unmarshals a palette from YAML, for a host program
// loading one from a path outside the default config location (e.g. a
// ":palette <path>" command).
func ParsePalette(data []byte) (Palette, error) {
	var p Palette
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal: %w", err)
	}
	return p, nil
}

func saveDefaultPalette(path string) error {
	data, err := yaml.Marshal(DefaultPalette())
	if err != nil {
		return fmt.Errorf("yaml.Marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("os.WriteFile: %w", err)
	}
	return nil
}

// StyleFor looks up name in the palette, falling back to the empty
// (terminal-default) style if the palette has no entry for it.
func (p Palette) StyleFor(name string) StyleConfig {
	return p[name]
}
