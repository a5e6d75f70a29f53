// Package github fetches release metadata from a GitHub-style releases API.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/shmakota/cata-git-mod-manager/internal/logging"
)

// ErrVersionUnresolvable means neither the release tag nor its title yields
// a usable version token.
var ErrVersionUnresolvable = errors.New("no version token in release tag or title")

// Release is the subset of the releases API response we need.
type Release struct {
	TagName    string         `json:"tag_name"`
	Name       string         `json:"name"`
	Body       string         `json:"body"`
	Prerelease bool           `json:"prerelease"`
	ZipballURL string         `json:"zipball_url"`
	Assets     []ReleaseAsset `json:"assets"`
}

// ReleaseAsset represents a downloadable file attached to a release.
type ReleaseAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

var githubHTTPClient = http.DefaultClient

// FetchRelease fetches a single release from updateURL. URLs pointing at a
// specific tag ("/tags/") are fetched directly. A "/releases/latest" URL
// that reports not-found falls back to the release-list endpoint and uses
// the newest entry, since repositories that only publish pre-releases have
// no "latest" release.
func FetchRelease(ctx context.Context, updateURL string) (*Release, error) {
	body, status, err := get(ctx, updateURL)
	if err != nil {
		return nil, err
	}

	if status == http.StatusNotFound && strings.HasSuffix(updateURL, "/releases/latest") {
		listURL := strings.TrimSuffix(updateURL, "/latest")
		logging.Debugf("Verbose: latest release not found, falling back to %s\n", listURL)
		releases, err := FetchReleases(ctx, listURL)
		if err != nil {
			return nil, err
		}
		if len(releases) == 0 {
			return nil, fmt.Errorf("no releases at %s", listURL)
		}
		return &releases[0], nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetching release: HTTP %d", status)
	}

	var rel Release
	if err := json.Unmarshal(body, &rel); err != nil {
		return nil, fmt.Errorf("parsing release: %w", err)
	}
	return &rel, nil
}

// FetchReleases fetches a release list, newest first.
func FetchReleases(ctx context.Context, listURL string) ([]Release, error) {
	body, status, err := get(ctx, listURL)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetching releases: HTTP %d", status)
	}

	var releases []Release
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, fmt.Errorf("parsing releases: %w", err)
	}
	return releases, nil
}

func get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := githubHTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// ArchiveURL returns the release's download URL, preferring an explicit
// .zip asset over the generic source snapshot.
func (r *Release) ArchiveURL() string {
	for _, asset := range r.Assets {
		if strings.HasSuffix(strings.ToLower(strings.TrimSpace(asset.Name)), ".zip") {
			if url := strings.TrimSpace(asset.BrowserDownloadURL); url != "" {
				return url
			}
		}
	}
	return strings.TrimSpace(r.ZipballURL)
}

var dottedVersion = regexp.MustCompile(`\d+(?:\.\d+)+`)

// VersionToken extracts the version string a release advertises. Tags
// containing digits are used as-is (minus any "v" prefix); placeholder tags
// like "experimental" fall back to a dotted-number pattern in the release
// title.
func (r *Release) VersionToken() (string, error) {
	tag := strings.TrimPrefix(strings.TrimSpace(r.TagName), "v")
	if strings.ContainsAny(tag, "0123456789") {
		return tag, nil
	}
	if m := dottedVersion.FindString(r.Name); m != "" {
		return m, nil
	}
	return "", fmt.Errorf("tag %q, title %q: %w", r.TagName, r.Name, ErrVersionUnresolvable)
}
