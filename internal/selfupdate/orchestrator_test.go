package selfupdate

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/shmakota/cata-git-mod-manager/internal/version"
)

func buildReleaseZip(t *testing.T, members map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range members {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func serveZip(t *testing.T, payload []byte) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Write(payload)
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/release.zip"
}

func seedInstallation(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"cfg/mod_manager_config.json": `{"mod_install_dir":"mods"}`,
		"mods/mymod/modinfo.json":     `[]`,
		"mod_debug.log":               "old log line\n",
		"tool.py":                     "print('v1')",
		"version.json":                `{"program_version":"1.0.5"}`,
	}
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestReplacePreservesUserData(t *testing.T) {
	root := seedInstallation(t)
	url := serveZip(t, buildReleaseZip(t, map[string]string{
		"tool-1.1/tool.py":                     "print('v2')",
		"tool-1.1/cfg/mod_manager_config.json": `{"mod_install_dir":"SHIPPED_DEFAULT"}`,
		"tool-1.1/newfile.txt":                 "shipped",
	}))

	orch := New()
	var steps []Step
	orch.OnStep = func(s Step) { steps = append(steps, s) }

	preserve := []string{"cfg", "mods", "mod_debug.log"}
	if err := orch.Replace(context.Background(), url, "1.1", preserve, root); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	// User data survives untouched, even though the release shipped its
	// own cfg/ defaults.
	cfg, err := os.ReadFile(filepath.Join(root, "cfg", "mod_manager_config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(cfg) != `{"mod_install_dir":"mods"}` {
		t.Fatalf("preserved config clobbered: %s", cfg)
	}
	if _, err := os.Stat(filepath.Join(root, "mods", "mymod", "modinfo.json")); err != nil {
		t.Fatalf("installed mod lost: %v", err)
	}
	log, err := os.ReadFile(filepath.Join(root, "mod_debug.log"))
	if err != nil {
		t.Fatal(err)
	}
	if string(log) != "old log line\n" {
		t.Fatalf("log history lost: %s", log)
	}

	// Program files are fully replaced.
	tool, err := os.ReadFile(filepath.Join(root, "tool.py"))
	if err != nil {
		t.Fatal(err)
	}
	if string(tool) != "print('v2')" {
		t.Fatalf("program file not replaced: %s", tool)
	}
	if _, err := os.Stat(filepath.Join(root, "newfile.txt")); err != nil {
		t.Fatalf("new release file missing: %v", err)
	}

	rec, err := version.LoadRecord(root)
	if err != nil {
		t.Fatal(err)
	}
	if rec.ProgramVersion != "1.1" {
		t.Fatalf("version record: got=%q want=%q", rec.ProgramVersion, "1.1")
	}

	if len(steps) == 0 || steps[len(steps)-1] != StepDone {
		t.Fatalf("final step should be done, steps=%v", steps)
	}
}

func TestReplaceFailureAfterPurgeRestores(t *testing.T) {
	root := seedInstallation(t)
	url := serveZip(t, buildReleaseZip(t, map[string]string{
		"tool-1.1/tool.py": "print('v2')",
	}))

	orch := New()
	boom := errors.New("disk full")
	orch.beforeInstall = func() error { return boom }

	preserve := []string{"cfg", "mods", "mod_debug.log"}
	err := orch.Replace(context.Background(), url, "1.1", preserve, root)
	if err == nil {
		t.Fatal("injected failure should surface")
	}

	var re *ReplaceError
	if !errors.As(err, &re) {
		t.Fatalf("want *ReplaceError, got %T: %v", err, err)
	}
	if re.Step != StepInstalling {
		t.Fatalf("step: got=%v want=%v", re.Step, StepInstalling)
	}
	if !re.RestoreAttempted {
		t.Fatal("failure after purge must report a restore attempt")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("cause lost: %v", err)
	}

	// Preserved entries are back even though the update failed.
	if _, err := os.Stat(filepath.Join(root, "cfg", "mod_manager_config.json")); err != nil {
		t.Fatalf("config not restored: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "mods", "mymod", "modinfo.json")); err != nil {
		t.Fatalf("mods not restored: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "mod_debug.log")); err != nil {
		t.Fatalf("log not restored: %v", err)
	}
}

func TestReplaceDownloadFailureLeavesRootUntouched(t *testing.T) {
	root := seedInstallation(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	orch := New()
	err := orch.Replace(context.Background(), srv.URL+"/release.zip", "1.1", []string{"cfg"}, root)
	if err == nil {
		t.Fatal("download failure should surface")
	}
	var re *ReplaceError
	if !errors.As(err, &re) {
		t.Fatalf("want *ReplaceError, got %T", err)
	}
	if re.RestoreAttempted {
		t.Fatal("failure before purge must not claim a restore attempt")
	}
	if _, err := os.Stat(filepath.Join(root, "tool.py")); err != nil {
		t.Fatalf("installation touched by failed download: %v", err)
	}
}

func TestReplaceRejectsConcurrentRuns(t *testing.T) {
	orch := New()
	orch.busy.Store(true)
	err := orch.Replace(context.Background(), "http://example.test/x.zip", "1.1", nil, t.TempDir())
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("want ErrBusy, got %v", err)
	}
}
