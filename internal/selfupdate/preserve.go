// Package selfupdate replaces the tool's whole installation root with a
// downloaded release while guaranteeing that user-owned data survives.
package selfupdate

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shmakota/cata-git-mod-manager/internal/config"
	"github.com/shmakota/cata-git-mod-manager/internal/logging"
)

// baseDirs and baseFiles always survive a replace operation. cfg/ holds the
// user's config and profiles, mods/ their installed content, and the debug
// log keeps its history across updates.
var (
	baseDirs  = []string{"cfg", "mods"}
	baseFiles = []string{logging.DefaultLogFile}
)

// PreservationSet computes the top-level names under rootDir that must
// survive a replace: the fixed base set plus the first path segment of any
// configured directory that resolves to a location inside rootDir.
func PreservationSet(rootDir string, cfg *config.Config) []string {
	set := make(map[string]struct{})
	for _, name := range baseDirs {
		set[name] = struct{}{}
	}
	for _, name := range baseFiles {
		set[name] = struct{}{}
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		absRoot = rootDir
	}

	if cfg != nil {
		for _, hint := range cfg.PathHints() {
			if hint == "" {
				continue
			}
			abs, err := filepath.Abs(config.ResolveDir(rootDir, hint))
			if err != nil {
				continue
			}
			rel, err := filepath.Rel(absRoot, abs)
			if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				continue
			}
			if _, err := os.Stat(abs); err != nil {
				continue
			}
			top := strings.SplitN(rel, string(filepath.Separator), 2)[0]
			if _, ok := set[top]; !ok {
				set[top] = struct{}{}
				logging.Debugf("Verbose: preserving configured path segment %q (from %q)\n", top, hint)
			}
		}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
