// Package profile persists named mod lists. Each profile carries its own
// mod install directory; exactly one profile is current at any time.
package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shmakota/cata-git-mod-manager/internal/config"
)

// File is the profile store's location relative to the installation root.
const File = "cfg/mod_profiles.json"

// DefaultName is the profile created on first run.
const DefaultName = "default"

var (
	// ErrLastProfile guards against deleting the only remaining profile.
	ErrLastProfile = errors.New("cannot delete the only profile")

	// ErrNotFound is returned for operations on unknown profile names.
	ErrNotFound = errors.New("no such profile")

	// ErrExists is returned when creating or renaming onto a taken name.
	ErrExists = errors.New("profile already exists")
)

// Mod is one content package the profile wants installed. JSON keys match
// what the tool has always written to mod_profiles.json.
type Mod struct {
	// URL is the archive location. Never empty when persisted.
	URL string `json:"url"`
	// Subdir optionally names a path inside the archive to treat as the
	// package root.
	Subdir string `json:"subdir,omitempty"`
	// InstallDir optionally names a directory under the install root to
	// place files; empty or "." means the default mods folder.
	InstallDir string `json:"install_dir,omitempty"`
	// KeepStructure copies everything under the resolved root verbatim
	// instead of auto-detecting nested mod folders by marker file.
	KeepStructure bool `json:"keep_structure,omitempty"`
}

// Profile is an ordered mod list plus its install directory.
type Profile struct {
	Mods          []Mod  `json:"mods"`
	ModInstallDir string `json:"mod_install_dir,omitempty"`
}

// UnmarshalJSON migrates the legacy on-disk shape, where a profile was a
// bare mod array with no install directory. The migration happens once at
// load; everything downstream sees only the current shape.
func (p *Profile) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var mods []Mod
		if err := json.Unmarshal(trimmed, &mods); err != nil {
			return err
		}
		p.Mods = mods
		p.ModInstallDir = config.DefaultModInstallDir
		return nil
	}

	type plain Profile
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Profile(v)
	return nil
}

// InstallDir resolves the profile's mod install directory against rootDir.
func (p *Profile) InstallDir(rootDir string) string {
	dir := p.ModInstallDir
	if dir == "" {
		dir = config.DefaultModInstallDir
	}
	return config.ResolveDir(rootDir, dir)
}

// Store is the full persisted profile record.
type Store struct {
	Profiles map[string]*Profile `json:"profiles"`
	Current  string              `json:"current_profile"`
}

// Load reads the profile store from rootDir. A missing file yields a store
// holding a single empty default profile. The current-profile invariant is
// repaired at load when the recorded name no longer exists.
func Load(rootDir string) (*Store, error) {
	path := filepath.Join(rootDir, filepath.FromSlash(File))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return newDefaultStore(), nil
		}
		return nil, fmt.Errorf("reading profiles: %w", err)
	}

	var s Store
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing profiles: %w", err)
	}
	if len(s.Profiles) == 0 {
		return newDefaultStore(), nil
	}
	if _, ok := s.Profiles[s.Current]; !ok {
		s.Current = s.Names()[0]
	}
	return &s, nil
}

func newDefaultStore() *Store {
	return &Store{
		Profiles: map[string]*Profile{
			DefaultName: {ModInstallDir: config.DefaultModInstallDir},
		},
		Current: DefaultName,
	}
}

// Save validates invariants and writes the store to rootDir.
func (s *Store) Save(rootDir string) error {
	if len(s.Profiles) == 0 {
		return errors.New("profile store has no profiles")
	}
	if _, ok := s.Profiles[s.Current]; !ok {
		return fmt.Errorf("current profile %q: %w", s.Current, ErrNotFound)
	}
	for name, p := range s.Profiles {
		for _, m := range p.Mods {
			if strings.TrimSpace(m.URL) == "" {
				return fmt.Errorf("profile %q holds a mod with no source URL", name)
			}
		}
	}

	path := filepath.Join(rootDir, filepath.FromSlash(File))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating profiles directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling profiles: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing profiles: %w", err)
	}
	return nil
}

// Names returns all profile names, sorted.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.Profiles))
	for name := range s.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CurrentProfile returns the current profile.
func (s *Store) CurrentProfile() *Profile {
	return s.Profiles[s.Current]
}

// Create adds an empty profile and makes it current.
func (s *Store) Create(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("profile name cannot be empty")
	}
	if _, ok := s.Profiles[name]; ok {
		return fmt.Errorf("%q: %w", name, ErrExists)
	}
	s.Profiles[name] = &Profile{ModInstallDir: config.DefaultModInstallDir}
	s.Current = name
	return nil
}

// Rename moves a profile to a new name, keeping it current if it was.
func (s *Store) Rename(oldName, newName string) error {
	p, ok := s.Profiles[oldName]
	if !ok {
		return fmt.Errorf("%q: %w", oldName, ErrNotFound)
	}
	if strings.TrimSpace(newName) == "" || newName == oldName {
		return errors.New("invalid new profile name")
	}
	if _, ok := s.Profiles[newName]; ok {
		return fmt.Errorf("%q: %w", newName, ErrExists)
	}
	s.Profiles[newName] = p
	delete(s.Profiles, oldName)
	if s.Current == oldName {
		s.Current = newName
	}
	return nil
}

// Delete removes a profile. Deleting the last profile is forbidden; when
// the current profile is deleted, another becomes current.
func (s *Store) Delete(name string) error {
	if _, ok := s.Profiles[name]; !ok {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if len(s.Profiles) == 1 {
		return ErrLastProfile
	}
	delete(s.Profiles, name)
	if s.Current == name {
		s.Current = s.Names()[0]
	}
	return nil
}

// Switch makes the named profile current.
func (s *Store) Switch(name string) error {
	if _, ok := s.Profiles[name]; !ok {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	s.Current = name
	return nil
}

// NormalizeSourceURL rewrites a bare GitHub repository URL into its
// default-branch archive URL; anything else passes through unchanged.
func NormalizeSourceURL(url string) string {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	if strings.HasPrefix(url, "https://github.com/") && !strings.HasSuffix(url, ".zip") {
		return url + "/archive/refs/heads/master.zip"
	}
	return url
}
