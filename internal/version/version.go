// Package version decides whether a remote release supersedes what is
// installed, and owns the on-disk version record.
package version

import (
	"strconv"
	"strings"
)

// parseParts splits a dotted version string into its numeric segments.
// The second return is false when any segment is not a non-negative integer,
// which includes empty strings and tags like "update_test".
func parseParts(v string) ([]int, bool) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if v == "" {
		return nil, false
	}

	segs := strings.Split(v, ".")
	parts := make([]int, 0, len(segs))
	for _, s := range segs {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return nil, false
		}
		parts = append(parts, n)
	}
	return parts, true
}

// IsNewer reports whether candidate is a newer version than current.
//
// Both strings are parsed as dotted integer tuples, zero-padded to equal
// length, and compared numerically, so "1.10.0" is newer than "1.9.0" and
// "1.0.0" equals "1.0".
//
// When either string is not a dotted-numeric version, IsNewer falls back to
// plain string inequality: any difference is reported as "newer". That
// deliberately errs toward prompting the user about renamed or non-semantic
// tags instead of silently skipping them. An empty candidate never counts
// as an update.
func IsNewer(current, candidate string) bool {
	if strings.TrimSpace(candidate) == "" {
		return false
	}

	curParts, curOK := parseParts(current)
	candParts, candOK := parseParts(candidate)
	if !curOK || !candOK {
		return strings.TrimSpace(current) != strings.TrimSpace(candidate)
	}

	n := max(len(curParts), len(candParts))
	for i := range n {
		cur, cand := 0, 0
		if i < len(curParts) {
			cur = curParts[i]
		}
		if i < len(candParts) {
			cand = candParts[i]
		}
		if cand != cur {
			return cand > cur
		}
	}
	return false
}
