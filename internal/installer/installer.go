// Package installer downloads content archives and places their resolved
// content roots into an installation directory.
package installer

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/shmakota/cata-git-mod-manager/internal/archive"
	"github.com/shmakota/cata-git-mod-manager/internal/config"
	"github.com/shmakota/cata-git-mod-manager/internal/downloader"
	"github.com/shmakota/cata-git-mod-manager/internal/logging"
	"github.com/shmakota/cata-git-mod-manager/internal/profile"
)

// Install steps, used in InstallError to tell failure classes apart.
const (
	StepDownload = "download"
	StepArchive  = "archive"
	StepResolve  = "resolve"
	StepWrite    = "write"
)

// InstallError reports which mod failed and at which step, so a batch can
// partially succeed and still say exactly what went wrong where.
type InstallError struct {
	Mod  string
	Step string
	Err  error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Mod, e.Step, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }

// Install downloads one mod's archive and extracts its content root(s)
// under destBase (the profile's mod install directory, or the mod's own
// install_dir resolved against rootDir). Re-installing overwrites existing
// files member by member; files left over from a previously differently
// shaped archive are not cleaned up.
func Install(ctx context.Context, m profile.Mod, rootDir, destBase string, onProgress func(downloader.Progress)) error {
	srcURL := strings.TrimSpace(m.URL)
	if srcURL == "" {
		return &InstallError{Mod: "(unnamed)", Step: StepResolve, Err: fmt.Errorf("mod has no source URL")}
	}

	if m.InstallDir != "" && m.InstallDir != "." {
		destBase = config.ResolveDir(rootDir, m.InstallDir)
	}

	scratch, err := os.MkdirTemp("", "cata-mod-*")
	if err != nil {
		return &InstallError{Mod: srcURL, Step: StepWrite, Err: err}
	}
	defer os.RemoveAll(scratch)

	logging.Infof("Downloading %s...\n", srcURL)
	archivePath, err := downloader.FetchToTemp(ctx, srcURL, scratch, "mod"+archiveExt(srcURL), onProgress)
	if err != nil {
		return &InstallError{Mod: srcURL, Step: StepDownload, Err: err}
	}

	r, err := archive.Open(archivePath)
	if err != nil {
		return &InstallError{Mod: srcURL, Step: StepArchive, Err: err}
	}
	defer r.Close()

	roots, err := archive.ResolveRoots(r.Names(), m.Subdir, !m.KeepStructure)
	if err != nil {
		return &InstallError{Mod: srcURL, Step: StepResolve, Err: err}
	}
	if m.KeepStructure {
		// Verbatim layout: content goes straight under the destination
		// base, not into a per-mod folder.
		for i := range roots {
			roots[i].Name = ""
		}
	}

	if err := os.MkdirAll(destBase, 0o755); err != nil {
		return &InstallError{Mod: srcURL, Step: StepWrite, Err: err}
	}
	for _, root := range roots {
		logging.Debugf("Verbose: extracting root prefix=%q name=%q dest=%s\n", root.Prefix, root.Name, destBase)
		if err := r.Extract(destBase, root.Map); err != nil {
			return &InstallError{Mod: srcURL, Step: StepWrite, Err: err}
		}
	}

	logging.Infof("Installed %s\n", srcURL)
	return nil
}

// Result pairs one batch entry with its outcome.
type Result struct {
	Mod profile.Mod
	Err error
}

// Failed returns the subset of results that carry an error.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// InstallAll installs mods sequentially, collecting per-mod failures
// instead of aborting the batch: one bad URL must not block the others.
// onMod, if non-nil, is invoked before each mod starts.
func InstallAll(ctx context.Context, mods []profile.Mod, rootDir, destBase string, onMod func(i, total int, m profile.Mod), onProgress func(downloader.Progress)) []Result {
	results := make([]Result, 0, len(mods))
	for i, m := range mods {
		if onMod != nil {
			onMod(i, len(mods), m)
		}
		err := Install(ctx, m, rootDir, destBase, onProgress)
		if err != nil {
			logging.Debugf("Verbose: install failed mod=%s err=%v\n", m.URL, err)
		}
		results = append(results, Result{Mod: m, Err: err})
	}
	return results
}

// archiveExt picks a local filename extension from the URL path, defaulting
// to .zip for extension-less archive endpoints (zipball URLs).
func archiveExt(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	lower := strings.ToLower(path.Base(p))
	switch {
	case strings.HasSuffix(lower, ".tar.gz"):
		return ".tar.gz"
	case strings.HasSuffix(lower, ".tgz"):
		return ".tgz"
	default:
		return ".zip"
	}
}
