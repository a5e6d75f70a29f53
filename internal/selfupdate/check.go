package selfupdate

import (
	"context"
	"fmt"

	"github.com/shmakota/cata-git-mod-manager/internal/github"
	"github.com/shmakota/cata-git-mod-manager/internal/version"
)

// Availability describes the outcome of an update check.
type Availability struct {
	// Configured is false when no update URL is set. That is a normal
	// state for local builds, not an error.
	Configured bool
	// Available is true when the latest release looks newer than the
	// running version.
	Available bool

	CurrentVersion string
	LatestVersion  string
	ReleaseNotes   string
	DownloadURL    string
	Experimental   bool
}

// Check asks the release endpoint for the latest release and compares it
// against currentVersion. An empty updateURL yields Configured=false with
// no error.
func Check(ctx context.Context, updateURL, currentVersion string) (*Availability, error) {
	if updateURL == "" {
		return &Availability{CurrentVersion: currentVersion}, nil
	}

	rel, err := github.FetchRelease(ctx, updateURL)
	if err != nil {
		return nil, fmt.Errorf("checking for updates: %w", err)
	}

	latest, err := rel.VersionToken()
	if err != nil {
		return nil, err
	}
	archiveURL := rel.ArchiveURL()
	if archiveURL == "" {
		return nil, fmt.Errorf("release %s has no downloadable archive", latest)
	}

	return &Availability{
		Configured:     true,
		Available:      version.IsNewer(currentVersion, latest),
		CurrentVersion: currentVersion,
		LatestVersion:  latest,
		ReleaseNotes:   rel.Body,
		DownloadURL:    archiveURL,
		Experimental:   rel.Prerelease,
	}, nil
}
