package selfupdate

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/shmakota/cata-git-mod-manager/internal/config"
)

func TestPreservationSetBaseOnly(t *testing.T) {
	got := PreservationSet(t.TempDir(), config.Default())
	want := []string{"cfg", "mod_debug.log", "mods"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("set mismatch: got=%v want=%v", got, want)
	}
}

func TestPreservationSetAddsConfiguredDirsInsideRoot(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"game", filepath.Join("my_backups", "nested")} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Default()
	cfg.GameInstallDir = "game"
	cfg.BackupDir = filepath.Join("my_backups", "nested")

	got := PreservationSet(root, cfg)
	want := []string{"cfg", "game", "mod_debug.log", "mods", "my_backups"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("set mismatch: got=%v want=%v", got, want)
	}
}

func TestPreservationSetSkipsOutsideAndMissingPaths(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	cfg := config.Default()
	cfg.GameInstallDir = outside
	cfg.BackupDir = "does_not_exist"

	got := PreservationSet(root, cfg)
	want := []string{"cfg", "mod_debug.log", "mods"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("set mismatch: got=%v want=%v", got, want)
	}
}
