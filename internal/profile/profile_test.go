package profile

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/shmakota/cata-git-mod-manager/internal/config"
)

func writeStore(t *testing.T, dir, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(File))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMissingFileCreatesDefault(t *testing.T) {
	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Current != DefaultName {
		t.Fatalf("current: got=%q want=%q", s.Current, DefaultName)
	}
	p := s.CurrentProfile()
	if p == nil || len(p.Mods) != 0 {
		t.Fatalf("default profile should exist and be empty: %+v", p)
	}
}

func TestLoadMigratesLegacyArrayProfile(t *testing.T) {
	dir := t.TempDir()
	writeStore(t, dir, `{
		"profiles": {
			"old": [
				{"url": "https://example.test/mod.zip", "subdir": "mods/a"}
			]
		},
		"current_profile": "old"
	}`)

	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p := s.Profiles["old"]
	if p == nil {
		t.Fatal("legacy profile missing after load")
	}
	want := []Mod{{URL: "https://example.test/mod.zip", Subdir: "mods/a"}}
	if !reflect.DeepEqual(p.Mods, want) {
		t.Fatalf("mods mismatch: got=%+v want=%+v", p.Mods, want)
	}
	if p.ModInstallDir != config.DefaultModInstallDir {
		t.Fatalf("legacy profile should get the default install dir, got %q", p.ModInstallDir)
	}
}

func TestLoadRepairsDanglingCurrent(t *testing.T) {
	dir := t.TempDir()
	writeStore(t, dir, `{
		"profiles": {"a": {"mods": []}, "b": {"mods": []}},
		"current_profile": "gone"
	}`)

	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Current != "a" {
		t.Fatalf("dangling current should repair to first name, got %q", s.Current)
	}
}

func TestCreateSwitchRenameDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := s.Create("tilesets"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.Current != "tilesets" {
		t.Fatalf("create should switch, current=%q", s.Current)
	}
	if err := s.Create("tilesets"); !errors.Is(err, ErrExists) {
		t.Fatalf("duplicate create: want ErrExists, got %v", err)
	}

	if err := s.Rename("tilesets", "graphics"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if s.Current != "graphics" {
		t.Fatalf("rename should follow current, got %q", s.Current)
	}

	if err := s.Switch(DefaultName); err != nil {
		t.Fatalf("Switch: %v", err)
	}
	if err := s.Delete("graphics"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(DefaultName); !errors.Is(err, ErrLastProfile) {
		t.Fatalf("deleting the only profile: want ErrLastProfile, got %v", err)
	}
}

func TestDeleteCurrentReassigns(t *testing.T) {
	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.Create("extra"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Delete("extra"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := s.Profiles[s.Current]; !ok {
		t.Fatalf("current %q must exist after deleting the current profile", s.Current)
	}
}

func TestSaveRejectsEmptyURL(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s.CurrentProfile().Mods = append(s.CurrentProfile().Mods, Mod{URL: "  "})
	if err := s.Save(dir); err == nil {
		t.Fatal("save should reject mods without a source URL")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s.CurrentProfile().Mods = []Mod{
		{URL: "https://example.test/mod.zip", KeepStructure: true},
		{URL: "https://example.test/pack.zip", Subdir: "gfx/MyTiles", InstallDir: "gfx"},
	}
	if err := s.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(got.CurrentProfile().Mods, s.CurrentProfile().Mods) {
		t.Fatalf("mods mismatch after round trip: got=%+v", got.CurrentProfile().Mods)
	}
}

func TestNormalizeSourceURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare github repo",
			in:   "https://github.com/owner/mod",
			want: "https://github.com/owner/mod/archive/refs/heads/master.zip",
		},
		{
			name: "trailing slash trimmed",
			in:   "https://github.com/owner/mod/",
			want: "https://github.com/owner/mod/archive/refs/heads/master.zip",
		},
		{
			name: "github zip untouched",
			in:   "https://github.com/owner/mod/archive/refs/heads/main.zip",
			want: "https://github.com/owner/mod/archive/refs/heads/main.zip",
		},
		{
			name: "non github untouched",
			in:   "https://example.test/mod.tar.gz",
			want: "https://example.test/mod.tar.gz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeSourceURL(tt.in); got != tt.want {
				t.Fatalf("NormalizeSourceURL=%q want=%q", got, tt.want)
			}
		})
	}
}
