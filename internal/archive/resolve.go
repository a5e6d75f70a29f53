// Package archive normalizes downloaded archives: it locates the logical
// content root inside unpredictable layouts (hosting-platform wrapper
// folders, nested mod folders, requested subdirectories) and extracts
// members relative to that root.
package archive

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
)

// MarkerFile identifies a mod folder inside an archive during auto-detection.
const MarkerFile = "modinfo.json"

var (
	// ErrContentNotFound means the resolver found nothing matching the
	// request: a missing subdirectory, or no marker files to auto-detect.
	ErrContentNotFound = errors.New("no matching content found in archive")

	// ErrUnsupported means the file is not an archive format we can open.
	ErrUnsupported = errors.New("unsupported archive format")
)

// Root describes one installable content root inside an archive.
// Prefix is stripped from member names ("" means the archive top; otherwise
// it ends with "/"). Name is the destination folder the root's content is
// placed under ("" writes directly into the destination base).
type Root struct {
	Prefix string
	Name   string
}

// Map rewrites an archive member name to its path relative to the
// destination base, reporting false for members outside this root.
func (r Root) Map(member string) (string, bool) {
	rel := member
	if r.Prefix != "" {
		if !strings.HasPrefix(member, r.Prefix) {
			return "", false
		}
		rel = member[len(r.Prefix):]
	}
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return "", false
	}
	if r.Name != "" {
		rel = r.Name + "/" + rel
	}
	return rel, true
}

// StripWrapper returns the single top-level wrapper directory shared by all
// multi-segment members, as a "dir/" prefix, or "" when the archive has no
// such wrapper. Hosting platforms add these folders to repository exports
// (e.g. "repo-main/"); they are not part of the package content. Bare
// top-level files do not count against the wrapper.
func StripWrapper(names []string) string {
	tops := make(map[string]struct{})
	for _, n := range names {
		if idx := strings.Index(n, "/"); idx > 0 {
			tops[n[:idx]] = struct{}{}
		}
	}
	if len(tops) != 1 {
		return ""
	}
	for top := range tops {
		return top + "/"
	}
	return ""
}

// ResolveRoots turns an archive member list into the content roots to
// extract. With a subpath, the root is that directory inside the archive
// (below any wrapper folder) named after its last segment. With autoDetect,
// every directory containing a marker file is an independent root; multiple
// markers mean multiple mods shipped in one archive, each installed under
// its own folder name. With neither, the whole archive below the wrapper is
// a single verbatim root.
func ResolveRoots(names []string, subpath string, autoDetect bool) ([]Root, error) {
	wrapper := StripWrapper(names)

	if sub := strings.Trim(strings.ReplaceAll(subpath, "\\", "/"), "/"); sub != "" {
		prefix := wrapper + sub + "/"
		found := false
		for _, n := range names {
			if strings.HasPrefix(n, prefix) {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("subdirectory %q: %w", subpath, ErrContentNotFound)
		}
		segs := strings.Split(sub, "/")
		return []Root{{Prefix: prefix, Name: segs[len(segs)-1]}}, nil
	}

	if !autoDetect {
		return []Root{{Prefix: wrapper}}, nil
	}

	dirs := make(map[string]struct{})
	for _, n := range names {
		if strings.HasSuffix(n, "/") || path.Base(n) != MarkerFile {
			continue
		}
		dir := path.Dir(n)
		if dir == "." {
			dir = ""
		}
		dirs[dir] = struct{}{}
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no %s in archive: %w", MarkerFile, ErrContentNotFound)
	}

	sorted := make([]string, 0, len(dirs))
	for d := range dirs {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	roots := make([]Root, 0, len(sorted))
	for _, d := range sorted {
		if d == "" {
			roots = append(roots, Root{})
			continue
		}
		roots = append(roots, Root{Prefix: d + "/", Name: path.Base(d)})
	}
	return roots, nil
}
