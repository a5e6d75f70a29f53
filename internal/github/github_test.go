package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchReleaseDirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/vnd.github.v3+json" {
			t.Errorf("Accept header: got=%q", got)
		}
		w.Write([]byte(`{"tag_name":"v1.2.0","name":"Release 1.2.0","zipball_url":"https://example.test/zipball"}`))
	}))
	defer srv.Close()

	rel, err := FetchRelease(context.Background(), srv.URL+"/releases/latest")
	if err != nil {
		t.Fatalf("FetchRelease: %v", err)
	}
	if rel.TagName != "v1.2.0" {
		t.Fatalf("tag mismatch: got=%q", rel.TagName)
	}
}

func TestFetchReleaseLatestFallsBackToList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/o/r/releases/latest":
			w.WriteHeader(http.StatusNotFound)
		case "/repos/o/r/releases":
			w.Write([]byte(`[{"tag_name":"v2.0.0","prerelease":true},{"tag_name":"v1.0.0"}]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	rel, err := FetchRelease(context.Background(), srv.URL+"/repos/o/r/releases/latest")
	if err != nil {
		t.Fatalf("FetchRelease: %v", err)
	}
	if rel.TagName != "v2.0.0" {
		t.Fatalf("fallback should take the newest list entry, got %q", rel.TagName)
	}
	if !rel.Prerelease {
		t.Fatal("prerelease flag lost")
	}
}

func TestFetchReleaseHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := FetchRelease(context.Background(), srv.URL+"/releases/latest"); err == nil {
		t.Fatal("HTTP 403 should be an error")
	}
}

func TestArchiveURL(t *testing.T) {
	tests := []struct {
		name string
		rel  Release
		want string
	}{
		{
			name: "zip asset preferred over zipball",
			rel: Release{
				ZipballURL: "https://example.test/zipball",
				Assets: []ReleaseAsset{
					{Name: "notes.txt", BrowserDownloadURL: "https://example.test/notes.txt"},
					{Name: "release.zip", BrowserDownloadURL: "https://example.test/release.zip"},
				},
			},
			want: "https://example.test/release.zip",
		},
		{
			name: "zipball fallback",
			rel: Release{
				ZipballURL: "https://example.test/zipball",
				Assets:     []ReleaseAsset{{Name: "checksums.txt"}},
			},
			want: "https://example.test/zipball",
		},
		{
			name: "no archive at all",
			rel:  Release{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rel.ArchiveURL(); got != tt.want {
				t.Fatalf("ArchiveURL=%q want=%q", got, tt.want)
			}
		})
	}
}

func TestVersionToken(t *testing.T) {
	tests := []struct {
		name    string
		rel     Release
		want    string
		wantErr bool
	}{
		{
			name: "tag with digits used as-is",
			rel:  Release{TagName: "v1.0.7"},
			want: "1.0.7",
		},
		{
			name: "placeholder tag falls back to title",
			rel:  Release{TagName: "experimental", Name: "Mod Manager 1.0.7 (nightly)"},
			want: "1.0.7",
		},
		{
			name:    "no version anywhere",
			rel:     Release{TagName: "latest", Name: "latest build"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.rel.VersionToken()
			if tt.wantErr {
				if !errors.Is(err, ErrVersionUnresolvable) {
					t.Fatalf("want ErrVersionUnresolvable, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("VersionToken: %v", err)
			}
			if got != tt.want {
				t.Fatalf("VersionToken=%q want=%q", got, tt.want)
			}
		})
	}
}
