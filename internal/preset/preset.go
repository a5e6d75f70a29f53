// Package preset stores saved CLI option sets, so users who manage several
// installations can load flags by name instead of retyping them.
package preset

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Preset holds saveable CLI options. All fields are pointers so we can
// distinguish "not set" from zero values.
type Preset struct {
	RootDir      *string `toml:"root-dir,omitempty"`
	Verbose      *bool   `toml:"verbose,omitempty"`
	LogFile      *string `toml:"log-file,omitempty"`
	Experimental *bool   `toml:"experimental,omitempty"`
}

// Dir returns the presets directory, using XDG_CONFIG_HOME with a fallback
// to ~/.config.
func Dir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "cata-mod-manager", "presets")
}

// Load reads a named preset from the presets directory.
func Load(name string) (*Preset, error) {
	path := filepath.Join(Dir(), name+".toml")
	var p Preset
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, fmt.Errorf("loading preset %q: %w", name, err)
	}
	return &p, nil
}

// Save writes a preset to the presets directory, creating it if needed.
func Save(name string, p *Preset) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating presets directory: %w", err)
	}
	path := filepath.Join(dir, name+".toml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating preset file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(p); err != nil {
		return fmt.Errorf("encoding preset: %w", err)
	}
	return nil
}

// List returns the names of all saved presets.
func List() ([]string, error) {
	dir := Dir()

	var names []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if path == dir {
			return nil
		}
		if d.IsDir() {
			return filepath.SkipDir
		}
		if strings.HasSuffix(d.Name(), ".toml") {
			names = append(names, strings.TrimSuffix(d.Name(), ".toml"))
		}
		return nil
	})
	if err != nil && os.IsNotExist(err) {
		return nil, nil
	}
	return names, err
}

// Delete removes a named preset.
func Delete(name string) error {
	path := filepath.Join(Dir(), name+".toml")
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting preset %q: %w", name, err)
	}
	return nil
}
