// Package gameinstall downloads and unpacks game builds from the release
// feed into the configured game directory.
package gameinstall

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/shmakota/cata-git-mod-manager/internal/archive"
	"github.com/shmakota/cata-git-mod-manager/internal/downloader"
	"github.com/shmakota/cata-git-mod-manager/internal/github"
	"github.com/shmakota/cata-git-mod-manager/internal/logging"
	"github.com/shmakota/cata-git-mod-manager/internal/version"
)

// DefaultReleasesURL is the upstream game's release feed.
const DefaultReleasesURL = "https://api.github.com/repos/CleverRaven/Cataclysm-DDA/releases"

// ErrNoBuild is returned when no release carries a playable build for the
// current platform.
var ErrNoBuild = errors.New("no game build found for this platform")

// Build is a downloadable game build taken from a release asset.
type Build struct {
	Version      string
	AssetName    string
	DownloadURL  string
	Experimental bool
	Notes        string
}

// matchesPlatform reports whether an asset name looks like a tiles build
// for the running OS. Windows builds ship as zip, everything else as
// tar.gz.
func matchesPlatform(name string) bool {
	lower := strings.ToLower(name)
	if !strings.Contains(lower, "tiles") {
		return false
	}
	if runtime.GOOS == "windows" {
		return strings.HasSuffix(lower, ".zip") && strings.Contains(lower, "windows")
	}
	return strings.HasSuffix(lower, ".tar.gz") && strings.Contains(lower, "linux")
}

// ListBuilds fetches the release feed and returns the platform builds it
// offers, newest first. Experimental (prerelease) builds are included only
// when includeExperimental is set.
func ListBuilds(ctx context.Context, releasesURL string, includeExperimental bool) ([]Build, error) {
	releases, err := github.FetchReleases(ctx, releasesURL)
	if err != nil {
		return nil, err
	}

	var builds []Build
	for i := range releases {
		rel := &releases[i]
		if rel.Prerelease && !includeExperimental {
			continue
		}
		token, err := rel.VersionToken()
		if err != nil {
			logging.Debugf("Verbose: skipping release %q, no version token\n", rel.TagName)
			continue
		}
		for _, asset := range rel.Assets {
			if !matchesPlatform(asset.Name) {
				continue
			}
			builds = append(builds, Build{
				Version:      token,
				AssetName:    asset.Name,
				DownloadURL:  asset.BrowserDownloadURL,
				Experimental: rel.Prerelease,
				Notes:        rel.Body,
			})
			break
		}
	}
	if len(builds) == 0 {
		return nil, ErrNoBuild
	}
	return builds, nil
}

// Install downloads a build and unpacks it into gameDir, then records the
// game version. Any previous contents of gameDir are left in place and
// overwritten member by member, which keeps user-modified files that the
// build does not ship.
func Install(ctx context.Context, b Build, rootDir, gameDir string, onProgress func(downloader.Progress)) error {
	scratch, err := os.MkdirTemp("", "cata-game-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(scratch)

	archivePath, err := downloader.FetchToTemp(ctx, b.DownloadURL, scratch, b.AssetName, onProgress)
	if err != nil {
		return fmt.Errorf("downloading game build: %w", err)
	}

	r, err := archive.Open(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := os.MkdirAll(gameDir, 0o755); err != nil {
		return err
	}
	prefix := installPrefix(r.Names(), filepath.Base(gameDir))
	if err := r.Extract(gameDir, func(member string) (string, bool) {
		if prefix != "" {
			if !strings.HasPrefix(member, prefix) {
				return "", false
			}
			member = member[len(prefix):]
		}
		if member == "" {
			return "", false
		}
		return member, true
	}); err != nil {
		return fmt.Errorf("unpacking game build: %w", err)
	}

	if err := version.SetGameVersion(rootDir, b.Version); err != nil {
		logging.Warnf("could not record game version: %v\n", err)
	}
	return nil
}

// installPrefix works out the member prefix to strip so the build lands
// directly in the game directory. Build archives wrap their payload in a
// top-level folder, sometimes followed by a nested folder named after the
// install target (e.g. cataclysmdda-0.H/cataclysm/).
func installPrefix(names []string, dirBase string) string {
	prefix := archive.StripWrapper(names)
	nested := prefix + dirBase + "/"
	for _, n := range names {
		if strings.HasPrefix(n, nested) {
			return nested
		}
	}
	return prefix
}
