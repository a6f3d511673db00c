package paths

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/pkg/errors"
	"github.com/scylladb/go-set/strset"
)

/* Structs */

// Archive is one comic archive found inside a manga folder.
type Archive struct {
	Path string
	Name string
	Ext  string
	Size int64
}

/* Vars */

var archiveExts = strset.New(".cbz", ".cbr")

/* Public */

// FindArchives lists the comic archives directly inside a folder, sorted by
// name. Archives in subdirectories are not included.
func FindArchives(folder string) ([]Archive, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, errors.Wrapf(err, "list folder: %s", folder)
	}

	var archives []Archive
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !archiveExts.Has(ext) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		archives = append(archives, Archive{
			Path: filepath.Join(folder, entry.Name()),
			Name: entry.Name(),
			Ext:  ext,
			Size: info.Size(),
		})
	}

	sort.Slice(archives, func(i, j int) bool { return archives[i].Name < archives[j].Name })
	return archives, nil
}

// FindFolders lists the immediate subdirectories of a parent folder, sorted.
func FindFolders(parent string) ([]string, error) {
	entries, err := os.ReadDir(parent)
	if err != nil {
		return nil, errors.Wrapf(err, "list folder: %s", parent)
	}

	var folders []string
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, filepath.Join(parent, entry.Name()))
		}
	}

	sort.Strings(folders)
	return folders, nil
}

// FindArchiveFolders walks root recursively and returns every directory that
// directly contains at least one comic archive, sorted.
func FindArchiveFolders(root string) ([]string, error) {
	found := strset.New()
	var mu sync.Mutex

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() {
			return nil
		}

		if archiveExts.Has(strings.ToLower(filepath.Ext(path))) {
			mu.Lock()
			found.Add(filepath.Dir(path))
			mu.Unlock()
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk folder: %s", root)
	}

	folders := found.List()
	sort.Strings(folders)
	return folders, nil
}
