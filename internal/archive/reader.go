package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Reader is a uniform view over zip and gzip-compressed tar archives.
// Names returns every member path up front so root resolution can run
// before anything touches the disk.
type Reader interface {
	Names() []string
	// Extract writes members into destDir. mapName rewrites each member
	// path to a destination-relative path and excludes members that
	// return false. Directory members are created explicitly, so empty
	// directories listed in the archive survive extraction.
	Extract(destDir string, mapName func(string) (string, bool)) error
	Close() error
}

// Open opens path as an archive, selecting the format by filename
// extension: .zip, or .tar.gz/.tgz.
func Open(path string) (Reader, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return openZip(path)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return openTarGz(path)
	default:
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
	}
}

// ExtractAll unpacks every member of r into destDir unchanged.
func ExtractAll(r Reader, destDir string) error {
	return r.Extract(destDir, func(name string) (string, bool) {
		return name, true
	})
}

// safeJoin joins a destination-relative member path onto destDir, rejecting
// absolute paths and ".." traversal out of destDir.
func safeJoin(destDir, rel string) (string, error) {
	rel = filepath.FromSlash(rel)
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("archive member has absolute path %q", rel)
	}
	dest := filepath.Join(destDir, rel)
	if dest != destDir && !strings.HasPrefix(dest, destDir+string(filepath.Separator)) {
		return "", fmt.Errorf("archive member %q escapes destination", rel)
	}
	return dest, nil
}

func writeMember(dest string, mode os.FileMode, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	perm := os.FileMode(0o644)
	if mode&0o100 != 0 {
		perm = 0o755
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	_, err = io.Copy(f, src)
	closeErr := f.Close()
	if err != nil {
		return err
	}
	return closeErr
}

type zipReader struct {
	rc    *zip.ReadCloser
	names []string
}

func openZip(path string) (*zipReader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", filepath.Base(path), ErrUnsupported, err)
	}
	names := make([]string, 0, len(rc.File))
	for _, f := range rc.File {
		names = append(names, f.Name)
	}
	return &zipReader{rc: rc, names: names}, nil
}

func (z *zipReader) Names() []string { return z.names }

func (z *zipReader) Extract(destDir string, mapName func(string) (string, bool)) error {
	for _, f := range z.rc.File {
		rel, ok := mapName(f.Name)
		if !ok {
			continue
		}
		dest, err := safeJoin(destDir, rel)
		if err != nil {
			return err
		}

		if strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", rel, err)
			}
			continue
		}

		src, err := f.Open()
		if err != nil {
			return fmt.Errorf("reading %s: %w", f.Name, err)
		}
		err = writeMember(dest, f.Mode(), src)
		src.Close()
		if err != nil {
			return fmt.Errorf("writing %s: %w", rel, err)
		}
	}
	return nil
}

func (z *zipReader) Close() error { return z.rc.Close() }

// tarGzReader lists member names at open time and re-reads the file for
// extraction, since tar streams have no random access.
type tarGzReader struct {
	path  string
	names []string
}

func openTarGz(path string) (*tarGzReader, error) {
	names, err := scanTarGz(path, nil)
	if err != nil {
		return nil, err
	}
	return &tarGzReader{path: path, names: names}, nil
}

func scanTarGz(path string, visit func(hdr *tar.Header, r io.Reader) error) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", filepath.Base(path), ErrUnsupported, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", filepath.Base(path), ErrUnsupported, err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			names = append(names, strings.TrimSuffix(hdr.Name, "/")+"/")
		case tar.TypeReg:
			names = append(names, hdr.Name)
		default:
			// Symlinks and special files in downloaded archives are
			// not extracted.
			continue
		}

		if visit != nil {
			if err := visit(hdr, tr); err != nil {
				return nil, err
			}
		}
	}
	return names, nil
}

func (t *tarGzReader) Names() []string { return t.names }

func (t *tarGzReader) Extract(destDir string, mapName func(string) (string, bool)) error {
	_, err := scanTarGz(t.path, func(hdr *tar.Header, r io.Reader) error {
		name := hdr.Name
		if hdr.Typeflag == tar.TypeDir {
			name = strings.TrimSuffix(name, "/") + "/"
		}
		rel, ok := mapName(name)
		if !ok {
			return nil
		}
		dest, err := safeJoin(destDir, rel)
		if err != nil {
			return err
		}

		if hdr.Typeflag == tar.TypeDir {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", rel, err)
			}
			return nil
		}
		if err := writeMember(dest, os.FileMode(hdr.Mode), r); err != nil {
			return fmt.Errorf("writing %s: %w", rel, err)
		}
		return nil
	})
	return err
}

func (t *tarGzReader) Close() error { return nil }
