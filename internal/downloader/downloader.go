// Package downloader streams remote archives to local files in bounded
// chunks, with retries. Multi-hundred-MB archives must never be buffered
// fully in memory.
package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cavaliergopher/grab/v3"

	"github.com/shmakota/cata-git-mod-manager/internal/logging"
)

const maxRetries = 3

var client = grab.NewClient()

// Progress reports bytes transferred so far. Total is -1 when the server
// does not announce a content length.
type Progress struct {
	Complete int64
	Total    int64
}

// Fetch downloads url to destPath, overwriting any existing file. onProgress,
// if non-nil, is invoked periodically during the transfer and once on
// completion. Transient failures are retried with a short backoff.
func Fetch(ctx context.Context, url, destPath string, onProgress func(Progress)) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			logging.Debugf("Verbose: retrying download url=%s attempt=%d/%d\n", url, attempt+1, maxRetries)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 2 * time.Second):
			}
		}

		lastErr = fetchOnce(ctx, url, destPath, onProgress)
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func fetchOnce(ctx context.Context, url, destPath string, onProgress func(Progress)) error {
	req, err := grab.NewRequest(destPath, url)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req = req.WithContext(ctx)
	req.NoResume = true

	logging.Debugf("Verbose: download start url=%s dest=%s\n", url, destPath)
	resp := client.Do(req)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

poll:
	for {
		select {
		case <-ticker.C:
			if onProgress != nil {
				onProgress(Progress{Complete: resp.BytesComplete(), Total: resp.Size()})
			}
		case <-resp.Done:
			break poll
		}
	}

	if err := resp.Err(); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	if onProgress != nil {
		onProgress(Progress{Complete: resp.BytesComplete(), Total: resp.Size()})
	}
	logging.Debugf("Verbose: download complete url=%s bytes=%d\n", url, resp.BytesComplete())
	return nil
}

// FetchToTemp downloads url into dir under the given filename and returns
// the full path. The caller owns cleanup of dir.
func FetchToTemp(ctx context.Context, url, dir, filename string, onProgress func(Progress)) (string, error) {
	dest := filepath.Join(dir, filename)
	if err := Fetch(ctx, url, dest, onProgress); err != nil {
		return "", err
	}
	return dest, nil
}
