package selfupdate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/shmakota/cata-git-mod-manager/internal/archive"
	"github.com/shmakota/cata-git-mod-manager/internal/downloader"
	"github.com/shmakota/cata-git-mod-manager/internal/logging"
	"github.com/shmakota/cata-git-mod-manager/internal/version"
)

// Step identifies a phase of the replace operation.
type Step int

const (
	StepIdle Step = iota
	StepDownloading
	StepExtracting
	StepBackingUp
	StepPurging
	StepInstalling
	StepRestoring
	StepVerifying
	StepDone
	StepFailed
)

var stepNames = map[Step]string{
	StepIdle:        "idle",
	StepDownloading: "downloading",
	StepExtracting:  "extracting",
	StepBackingUp:   "backing up",
	StepPurging:     "purging",
	StepInstalling:  "installing",
	StepRestoring:   "restoring",
	StepVerifying:   "verifying",
	StepDone:        "done",
	StepFailed:      "failed",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// ErrBusy is returned when a replace is requested while one is in flight.
var ErrBusy = errors.New("an update is already in progress")

// ReplaceError reports where a replace operation failed. Failures before
// purging leave the installation untouched. Failures during or after
// purging set RestoreAttempted: preserved data was copied back from the
// backup area as a best effort, and the user should verify the
// installation manually.
type ReplaceError struct {
	Step             Step
	RestoreAttempted bool
	RestoreErr       error
	Err              error
}

func (e *ReplaceError) Error() string {
	if !e.RestoreAttempted {
		return fmt.Sprintf("update failed while %s, installation untouched: %v", e.Step, e.Err)
	}
	msg := fmt.Sprintf("partial update: failed while %s, preserved data restore attempted: %v", e.Step, e.Err)
	if e.RestoreErr != nil {
		msg += fmt.Sprintf(" (restore also failed: %v — manual recovery needed)", e.RestoreErr)
	}
	return msg
}

func (e *ReplaceError) Unwrap() error { return e.Err }

// Orchestrator performs the preserve/replace/restore protocol for
// self-update. One replace may run at a time; long steps report through
// OnStep and OnProgress so an interactive front end can stay responsive
// off this call path.
type Orchestrator struct {
	busy atomic.Bool

	// OnStep, if non-nil, is invoked as each phase begins.
	OnStep func(Step)
	// OnProgress, if non-nil, receives download progress.
	OnProgress func(downloader.Progress)

	// beforeInstall runs between purging and installing; tests inject
	// failures here to exercise the restore path.
	beforeInstall func() error
}

// New returns an idle orchestrator.
func New() *Orchestrator {
	return &Orchestrator{}
}

func (o *Orchestrator) step(s Step) {
	logging.Debugf("Verbose: self-update step=%s\n", s)
	if o.OnStep != nil {
		o.OnStep(s)
	}
}

// Replace swaps the contents of rootDir for the release at downloadURL,
// preserving the named top-level entries: they are snapshotted before
// anything is deleted, never taken from the new release even when it ships
// same-named entries, and copied back after the new payload is in place.
// On success the version record's program_version is set to newVersion.
//
// The scratch workspace lives outside rootDir and is removed on every exit
// path. Cancellation is honored only before purging begins; from there the
// operation runs to completion or best-effort restore.
func (o *Orchestrator) Replace(ctx context.Context, downloadURL, newVersion string, preserve []string, rootDir string) error {
	if !o.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer o.busy.Store(false)

	scratch, err := os.MkdirTemp("", "cata-update-*")
	if err != nil {
		return &ReplaceError{Step: StepIdle, Err: err}
	}
	defer os.RemoveAll(scratch)

	o.step(StepDownloading)
	archivePath, err := downloader.FetchToTemp(ctx, downloadURL, scratch, "release"+releaseExt(downloadURL), o.OnProgress)
	if err != nil {
		o.step(StepFailed)
		return &ReplaceError{Step: StepDownloading, Err: err}
	}

	o.step(StepExtracting)
	payloadRoot, err := extractPayload(archivePath, filepath.Join(scratch, "payload"))
	if err != nil {
		o.step(StepFailed)
		return &ReplaceError{Step: StepExtracting, Err: err}
	}

	o.step(StepBackingUp)
	backupDir := filepath.Join(scratch, "user_backup")
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		o.step(StepFailed)
		return &ReplaceError{Step: StepBackingUp, Err: err}
	}
	for _, name := range preserve {
		src := filepath.Join(rootDir, name)
		if _, err := os.Lstat(src); os.IsNotExist(err) {
			continue
		}
		if err := copyEntry(src, filepath.Join(backupDir, name)); err != nil {
			o.step(StepFailed)
			return &ReplaceError{Step: StepBackingUp, Err: fmt.Errorf("backing up %s: %w", name, err)}
		}
	}

	// The backup is complete; from here every failure must put the
	// preserved data back before surfacing.
	fail := func(s Step, cause error) error {
		o.step(StepRestoring)
		restoreErr := restoreAll(backupDir, rootDir)
		o.step(StepFailed)
		return &ReplaceError{Step: s, RestoreAttempted: true, RestoreErr: restoreErr, Err: cause}
	}

	o.step(StepPurging)
	if err := purge(rootDir); err != nil {
		return fail(StepPurging, err)
	}

	o.step(StepInstalling)
	if o.beforeInstall != nil {
		if err := o.beforeInstall(); err != nil {
			return fail(StepInstalling, err)
		}
	}
	if err := installPayload(payloadRoot, rootDir, preserve); err != nil {
		return fail(StepInstalling, err)
	}

	o.step(StepRestoring)
	if err := restoreAll(backupDir, rootDir); err != nil {
		o.step(StepFailed)
		return &ReplaceError{Step: StepRestoring, RestoreAttempted: true, RestoreErr: err, Err: err}
	}

	o.step(StepVerifying)
	if err := version.SetProgramVersion(rootDir, newVersion); err != nil {
		logging.Warnf("could not write version record: %v\n", err)
	} else if rec, err := version.LoadRecord(rootDir); err != nil {
		logging.Warnf("could not re-read version record: %v\n", err)
	} else if rec.ProgramVersion != newVersion {
		logging.Warnf("version record shows %s, expected %s\n", rec.ProgramVersion, newVersion)
	}

	o.step(StepDone)
	return nil
}

// extractPayload unpacks the release archive and returns the payload root:
// release archives commonly wrap everything in a single top-level folder,
// which is not part of the payload.
func extractPayload(archivePath, extractDir string) (string, error) {
	r, err := archive.Open(archivePath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return "", err
	}
	if err := archive.ExtractAll(r, extractDir); err != nil {
		return "", err
	}

	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(extractDir, entries[0].Name()), nil
	}
	return extractDir, nil
}

// purge deletes every entry directly under rootDir. Individual failures
// are logged and skipped; whatever survives is overwritten by the install
// step or restored from backup.
func purge(rootDir string) error {
	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", rootDir, err)
	}
	for _, entry := range entries {
		p := filepath.Join(rootDir, entry.Name())
		if err := os.RemoveAll(p); err != nil {
			logging.Warnf("could not remove %s: %v\n", p, err)
		}
	}
	return nil
}

// installPayload copies every top-level payload entry into rootDir, except
// preserved names: those are never taken from a release, even when it
// ships its own copy, so shipped defaults cannot clobber user data.
func installPayload(payloadRoot, rootDir string, preserve []string) error {
	skip := make(map[string]struct{}, len(preserve))
	for _, name := range preserve {
		skip[name] = struct{}{}
	}

	entries, err := os.ReadDir(payloadRoot)
	if err != nil {
		return fmt.Errorf("listing payload: %w", err)
	}
	for _, entry := range entries {
		if _, skipped := skip[entry.Name()]; skipped {
			logging.Debugf("Verbose: not installing %s from release (preserved)\n", entry.Name())
			continue
		}
		src := filepath.Join(payloadRoot, entry.Name())
		dst := filepath.Join(rootDir, entry.Name())
		if err := removeEntry(dst); err != nil {
			return err
		}
		if err := copyEntry(src, dst); err != nil {
			return fmt.Errorf("installing %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// restoreAll copies every backed-up entry into rootDir, replacing anything
// the install step may have placed under the same name.
func restoreAll(backupDir, rootDir string) error {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return fmt.Errorf("listing backup: %w", err)
	}
	var firstErr error
	for _, entry := range entries {
		src := filepath.Join(backupDir, entry.Name())
		dst := filepath.Join(rootDir, entry.Name())
		if err := removeEntry(dst); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := copyEntry(src, dst); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("restoring %s: %w", entry.Name(), err)
			}
		}
	}
	return firstErr
}

func releaseExt(rawURL string) string {
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
