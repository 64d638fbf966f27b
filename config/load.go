package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is the file format of a profile.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

// FormatOf returns the profile format implied by the extension of path.
// Anything other than .toml is read as YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}

	return FormatYAML
}

// Load reads a profile from path on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (*Profile, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading profile from %s: %w", path, err)
	}

	p, err := ParseFormat(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("loading profile from %s: %w", path, err)
	}

	return p, nil
}

// Parse decodes a YAML profile on top of the defaults and validates it.
// Keys missing from data keep their default values.
func Parse(data []byte) (*Profile, error) {
	return ParseFormat(data, FormatYAML)
}

// ParseFormat decodes a profile in the given format on top of the defaults
// and validates it.
func ParseFormat(data []byte, f Format) (*Profile, error) {
	p := Default()

	var err error
	if f == FormatTOML {
		err = toml.Unmarshal(data, p)
	} else {
		err = yaml.Unmarshal(data, p)
	}
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// SaveTo writes the profile to path in the format implied by its extension,
// creating parent directories as needed.
func (p *Profile) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if FormatOf(path) == FormatTOML {
		data, err = toml.Marshal(p)
	} else {
		data, err = yaml.Marshal(p)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644) //nolint:gosec // profiles are not secret
}
