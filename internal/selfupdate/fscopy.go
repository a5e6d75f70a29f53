package selfupdate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shmakota/cata-git-mod-manager/internal/logging"
)

// copyEntry copies a file or directory tree from src to dst. Symlinks are
// followed; a symlink whose target cannot be resolved is skipped with a
// warning rather than failing the whole backup.
func copyEntry(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		if lerr := checkDanglingSymlink(src); lerr == nil {
			logging.Warnf("skipping unresolvable symlink %s\n", src)
			return nil
		}
		return err
	}
	if info.IsDir() {
		return copyTree(src, dst)
	}
	return copyFile(src, dst, info.Mode())
}

func checkDanglingSymlink(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return fmt.Errorf("%s: not a symlink", path)
	}
	return nil
}

func copyTree(srcDir, dstDir string) error {
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return err
	}
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		src := filepath.Join(srcDir, entry.Name())
		dst := filepath.Join(dstDir, entry.Name())
		if err := copyEntry(src, dst); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	closeErr := out.Close()
	if err != nil {
		return err
	}
	return closeErr
}

// removeEntry deletes a file or directory tree if it exists.
func removeEntry(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}
