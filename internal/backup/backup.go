// Package backup snapshots game save data into timestamped zip archives
// with a JSON metadata sidecar, and restores them on demand.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shmakota/cata-git-mod-manager/internal/archive"
)

// ErrNotFound is returned when a named backup does not exist.
var ErrNotFound = errors.New("backup not found")

// Metadata is stored next to each archive as <name>.json.
type Metadata struct {
	Name        string   `json:"name"`
	Timestamp   string   `json:"timestamp"`
	Description string   `json:"description,omitempty"`
	Mods        []string `json:"mods,omitempty"`
	ModCount    int      `json:"mod_count"`
}

// Entry pairs an archive on disk with its metadata. Meta is nil when the
// sidecar is missing or unreadable.
type Entry struct {
	Name        string
	ArchivePath string
	Meta        *Metadata
}

// Create zips srcDir into backupDir under a timestamped name derived from
// label and writes the metadata sidecar. It returns the backup name.
func Create(srcDir, backupDir, label, description string) (string, error) {
	info, err := os.Stat(srcDir)
	if err != nil {
		return "", fmt.Errorf("backup source: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("backup source %s is not a directory", srcDir)
	}
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", err
	}

	if label == "" {
		label = filepath.Base(srcDir)
	}
	name := fmt.Sprintf("%s_%s", sanitizeName(label), time.Now().Format("20060102150405"))

	archivePath := filepath.Join(backupDir, name+".zip")
	if err := archive.WriteDirZip(srcDir, archivePath); err != nil {
		return "", err
	}

	mods := activeMods(srcDir)
	meta := Metadata{
		Name:        name,
		Timestamp:   time.Now().Format(time.RFC3339),
		Description: description,
		Mods:        mods,
		ModCount:    len(mods),
	}
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(backupDir, name+".json"), data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

// List returns the backups under backupDir, newest first.
func List(backupDir string) ([]Entry, error) {
	entries, err := os.ReadDir(backupDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []Entry
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".zip") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".zip")
		entry := Entry{Name: name, ArchivePath: filepath.Join(backupDir, e.Name())}
		if data, err := os.ReadFile(filepath.Join(backupDir, name+".json")); err == nil {
			var meta Metadata
			if json.Unmarshal(data, &meta) == nil {
				entry.Meta = &meta
			}
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

// Restore extracts the named backup into targetDir/<name>.
func Restore(backupDir, name, targetDir string) (string, error) {
	name = sanitizeName(filepath.Base(name))
	archivePath := filepath.Join(backupDir, name+".zip")
	if _, err := os.Stat(archivePath); os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	dest := filepath.Join(targetDir, name)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", err
	}
	r, err := archive.Open(archivePath)
	if err != nil {
		return "", err
	}
	defer r.Close()
	if err := archive.ExtractAll(r, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// Delete removes the named backup archive and its sidecar.
func Delete(backupDir, name string) error {
	name = sanitizeName(filepath.Base(name))
	archivePath := filepath.Join(backupDir, name+".zip")
	if _, err := os.Stat(archivePath); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err := os.Remove(archivePath); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(backupDir, name+".json")); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}

// activeMods reads the mod list recorded inside a save directory. Saves
// store it either as a bare array in mods.json, as {"mods": [...]}, or as
// the ACTIVE_WORLD_MODS option in worldoptions.json.
func activeMods(saveDir string) []string {
	if data, err := os.ReadFile(filepath.Join(saveDir, "mods.json")); err == nil {
		var list []string
		if json.Unmarshal(data, &list) == nil && len(list) > 0 {
			return list
		}
		var wrapped struct {
			Mods []string `json:"mods"`
		}
		if json.Unmarshal(data, &wrapped) == nil && len(wrapped.Mods) > 0 {
			return wrapped.Mods
		}
	}

	data, err := os.ReadFile(filepath.Join(saveDir, "worldoptions.json"))
	if err != nil {
		return nil
	}
	var options []struct {
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
	}
	if json.Unmarshal(data, &options) != nil {
		return nil
	}
	for _, opt := range options {
		if opt.Name != "ACTIVE_WORLD_MODS" {
			continue
		}
		var list []string
		if json.Unmarshal(opt.Value, &list) == nil {
			return list
		}
	}
	return nil
}
