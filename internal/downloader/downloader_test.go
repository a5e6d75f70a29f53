package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestFetchToTemp(t *testing.T) {
	body := []byte("archive bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	dir := t.TempDir()
	var final Progress
	path, err := FetchToTemp(context.Background(), srv.URL+"/mod.zip", dir, "mod.zip", func(p Progress) {
		final = p
	})
	if err != nil {
		t.Fatalf("FetchToTemp: %v", err)
	}
	if path != filepath.Join(dir, "mod.zip") {
		t.Fatalf("path mismatch: got=%q", path)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(body) {
		t.Fatalf("content mismatch: got=%q", got)
	}
	if final.Complete != int64(len(body)) {
		t.Fatalf("final progress: got=%d want=%d", final.Complete, len(body))
	}
}

func TestFetchOverwritesExisting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "mod.zip")
	if err := os.WriteFile(dest, []byte("stale partial download"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Fetch(context.Background(), srv.URL+"/mod.zip", dest, nil); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "fresh" {
		t.Fatalf("stale file not overwritten: got=%q", got)
	}
}

func TestFetchCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("never delivered"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(t.TempDir(), "mod.zip")
	if err := Fetch(ctx, srv.URL+"/mod.zip", dest, nil); err == nil {
		t.Fatal("cancelled context should fail the download")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatal("failed download must not leave a destination file")
	}
}
