package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func writeTestZip(t *testing.T, dir string, members map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, "test.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(members[name])); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeTestTarGz(t *testing.T, dir string, members map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, "test.tar.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		body := []byte(members[name])
		hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write(body); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "mod.rar"))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("want ErrUnsupported, got %v", err)
	}
}

func TestZipExtractWithMapping(t *testing.T) {
	dir := t.TempDir()
	path := writeTestZip(t, dir, map[string]string{
		"repo-main/modinfo.json":    `[{"type":"MOD_INFO","id":"mymod"}]`,
		"repo-main/data/items.json": `[]`,
		"repo-main/README.md":       "readme",
	})

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	roots, err := ResolveRoots(r.Names(), "", true)
	if err != nil {
		t.Fatalf("ResolveRoots: %v", err)
	}
	dest := filepath.Join(dir, "out")
	for _, root := range roots {
		if err := r.Extract(dest, root.Map); err != nil {
			t.Fatalf("Extract: %v", err)
		}
	}

	for _, want := range []string{
		"repo-main/modinfo.json",
		"repo-main/data/items.json",
		"repo-main/README.md",
	} {
		if _, err := os.Stat(filepath.Join(dest, filepath.FromSlash(want))); err != nil {
			t.Fatalf("missing extracted file %s: %v", want, err)
		}
	}
}

func TestTarGzRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeTestTarGz(t, dir, map[string]string{
		"pack-1.0/modinfo.json": `[]`,
		"pack-1.0/data/a.json":  `{}`,
	})

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	wantNames := []string{"pack-1.0/data/a.json", "pack-1.0/modinfo.json"}
	gotNames := append([]string(nil), r.Names()...)
	sort.Strings(gotNames)
	if !reflect.DeepEqual(gotNames, wantNames) {
		t.Fatalf("names mismatch: got=%v want=%v", gotNames, wantNames)
	}

	dest := filepath.Join(dir, "out")
	if err := ExtractAll(r, dest); err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dest, "pack-1.0", "data", "a.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{}" {
		t.Fatalf("content mismatch: got=%q", data)
	}
}

func TestExtractRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	path := writeTestZip(t, dir, map[string]string{
		"../escape.txt": "nope",
	})

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	dest := filepath.Join(dir, "out")
	if err := ExtractAll(r, dest); err == nil {
		t.Fatal("traversal member should fail extraction")
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.txt")); !os.IsNotExist(err) {
		t.Fatal("traversal member must not be written outside the destination")
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeTestZip(t, dir, map[string]string{
		"mymod/modinfo.json": `[]`,
		"mymod/data/b.json":  "old",
	})

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	dest := filepath.Join(dir, "out")
	if err := ExtractAll(r, dest); err != nil {
		t.Fatalf("first extract: %v", err)
	}
	r.Close()

	// A stale file from an older install survives, updated files are
	// overwritten in place.
	stale := filepath.Join(dest, "mymod", "stale.json")
	if err := os.WriteFile(stale, []byte("leftover"), 0o644); err != nil {
		t.Fatal(err)
	}

	path2 := writeTestZip(t, t.TempDir(), map[string]string{
		"mymod/modinfo.json": `[]`,
		"mymod/data/b.json":  "new",
	})
	r2, err := Open(path2)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r2.Close()
	if err := ExtractAll(r2, dest); err != nil {
		t.Fatalf("second extract: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dest, "mymod", "data", "b.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new" {
		t.Fatalf("overwrite failed: got=%q", data)
	}
	if _, err := os.Stat(stale); err != nil {
		t.Fatalf("stale file should survive member-by-member overwrite: %v", err)
	}
}
