// Package archive mutates CBZ archives without ever corrupting them: every
// write happens in a temporary file that atomically replaces the original
// only after it is fully written.
package archive

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/scylladb/go-set/strset"
)

// Inject adds the given entries to an existing CBZ archive. Existing entries
// are copied byte-for-byte and are never overwritten: a requested name that
// is already present is silently skipped. On any failure the original
// archive is left untouched and the temporary artifact removed.
func Inject(path string, entries map[string][]byte) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return errors.Wrapf(err, "open archive: %s", path)
	}
	defer zr.Close()

	existing := strset.New()
	for _, f := range zr.File {
		existing.Add(f.Name)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".inject-*")
	if err != nil {
		return errors.Wrap(err, "create temp archive")
	}
	tmpName := tmp.Name()

	if err := writeInjected(tmp, zr, existing, entries); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "close temp archive")
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "replace archive: %s", path)
	}

	return nil
}

// HasEntrySuffix reports whether any entry name ends with the given suffix,
// compared case-insensitively.
func HasEntrySuffix(path string, suffix string) (bool, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return false, errors.Wrapf(err, "open archive: %s", path)
	}
	defer zr.Close()

	suffix = strings.ToLower(suffix)
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), suffix) {
			return true, nil
		}
	}

	return false, nil
}

// PackDir packages a directory tree into a CBZ at destPath. Entries are
// stored uncompressed, ordered by name within each directory, with
// forward-slash separators regardless of the host path convention. The
// destination appears atomically.
func PackDir(srcDir string, destPath string) error {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".pack-*")
	if err != nil {
		return errors.Wrap(err, "create temp archive")
	}
	tmpName := tmp.Name()

	if err := writePacked(tmp, srcDir); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "close temp archive")
	}

	if err := os.Rename(tmpName, destPath); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "place archive: %s", destPath)
	}

	return nil
}

/* Private */

func writeInjected(w io.Writer, zr *zip.ReadCloser, existing *strset.Set, entries map[string][]byte) error {
	zw := zip.NewWriter(w)

	for _, f := range zr.File {
		if err := zw.Copy(f); err != nil {
			zw.Close()
			return errors.Wrapf(err, "copy entry: %s", f.Name)
		}
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if existing.Has(name) {
			continue
		}

		ew, err := zw.Create(name)
		if err != nil {
			zw.Close()
			return errors.Wrapf(err, "create entry: %s", name)
		}
		if _, err := ew.Write(entries[name]); err != nil {
			zw.Close()
			return errors.Wrapf(err, "write entry: %s", name)
		}
	}

	return errors.Wrap(zw.Close(), "finalize archive")
}

func writePacked(w io.Writer, srcDir string) error {
	zw := zip.NewWriter(w)

	// WalkDir visits entries in lexical order within each directory.
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		ew, err := zw.CreateHeader(&zip.FileHeader{
			Name:   filepath.ToSlash(rel),
			Method: zip.Store,
		})
		if err != nil {
			return err
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()

		_, err = io.Copy(ew, src)
		return err
	})
	if err != nil {
		zw.Close()
		return errors.Wrapf(err, "pack directory: %s", srcDir)
	}

	return errors.Wrap(zw.Close(), "finalize archive")
}
