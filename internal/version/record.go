package version

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// RecordFile ships with every release at the top of the installation root
// and is overwritten during self-update.
const RecordFile = "version.json"

// FallbackProgramVersion is assumed when no version record exists, so a
// fresh checkout still compares sanely against remote releases.
const FallbackProgramVersion = "1.0.5"

// Record tracks the tool's own version and, separately, the version of the
// installed game payload. The self-updater touches only ProgramVersion.
type Record struct {
	ProgramVersion string `json:"program_version"`
	GameVersion    string `json:"game_version,omitempty"`
}

// LoadRecord reads the version record from rootDir. A missing file is not
// an error: the fallback program version is returned instead.
func LoadRecord(rootDir string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(rootDir, RecordFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &Record{ProgramVersion: FallbackProgramVersion}, nil
		}
		return nil, fmt.Errorf("reading version record: %w", err)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing version record: %w", err)
	}
	if r.ProgramVersion == "" {
		r.ProgramVersion = FallbackProgramVersion
	}
	return &r, nil
}

// Save writes the version record to rootDir.
func (r *Record) Save(rootDir string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling version record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(rootDir, RecordFile), data, 0o644); err != nil {
		return fmt.Errorf("writing version record: %w", err)
	}
	return nil
}

// SetProgramVersion updates only program_version in rootDir's record,
// preserving any other fields already present on disk.
func SetProgramVersion(rootDir, v string) error {
	r, err := LoadRecord(rootDir)
	if err != nil {
		return err
	}
	r.ProgramVersion = v
	return r.Save(rootDir)
}

// SetGameVersion updates only game_version in rootDir's record.
func SetGameVersion(rootDir, v string) error {
	r, err := LoadRecord(rootDir)
	if err != nil {
		return err
	}
	r.GameVersion = v
	return r.Save(rootDir)
}
