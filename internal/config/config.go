// Package config owns the persisted tool configuration. The core reads it
// only for path hints: directories named here that live inside the
// installation root must survive a self-update.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// File is the config record's location relative to the installation root.
// It lives under cfg/ so the whole directory is preserved across updates.
const File = "cfg/mod_manager_config.json"

// Defaults for a fresh installation.
const (
	DefaultModInstallDir  = "mods"
	DefaultGameInstallDir = "game"
	DefaultBackupDir      = "backup"
)

// Config is the persisted key-value record. All paths may be relative to
// the installation root or absolute.
type Config struct {
	ModInstallDir  string `json:"mod_install_dir"`
	GameInstallDir string `json:"game_install_dir"`
	BackupDir      string `json:"backup_dir"`
	UpdateURL      string `json:"update_url"`
}

// Default returns a config populated with the stock directory layout.
func Default() *Config {
	return &Config{
		ModInstallDir:  DefaultModInstallDir,
		GameInstallDir: DefaultGameInstallDir,
		BackupDir:      DefaultBackupDir,
	}
}

// Load reads the config from rootDir. A missing file yields the defaults
// rather than an error; a present but malformed file is an error, so user
// edits are never silently discarded.
func Load(rootDir string) (*Config, error) {
	path := filepath.Join(rootDir, filepath.FromSlash(File))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.ModInstallDir == "" {
		cfg.ModInstallDir = DefaultModInstallDir
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = DefaultBackupDir
	}
	return cfg, nil
}

// Save writes the config to rootDir, creating cfg/ if needed.
func (c *Config) Save(rootDir string) error {
	path := filepath.Join(rootDir, filepath.FromSlash(File))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// PathHints returns the configured paths that may need preserving during a
// self-update, in a stable order.
func (c *Config) PathHints() []string {
	return []string{c.ModInstallDir, c.GameInstallDir, c.BackupDir}
}

// ResolveDir resolves a configured path against rootDir unless it is
// already absolute.
func ResolveDir(rootDir, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(rootDir, dir)
}
