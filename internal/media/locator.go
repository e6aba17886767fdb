package media

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// DirLocator finds blob files for a media reference by walking the media
// store root. Homeservers shard and rename blob files in various layouts, so
// the match is on the media id appearing in the file name rather than on an
// exact path. Paths are re-derived on every call; nothing is cached.
type DirLocator struct {
	Root string
}

// NewDirLocator creates a locator rooted at the media store directory.
func NewDirLocator(root string) *DirLocator {
	return &DirLocator{Root: root}
}

// Locate returns every file under the root whose name contains the media id.
// A missing root or unreadable subdirectory yields no paths rather than an
// error; an upload whose blobs cannot be found is still evictable.
func (l *DirLocator) Locate(ref Ref) ([]string, error) {
	if ref.MediaID == "" {
		return nil, nil
	}

	var hits []string
	err := filepath.WalkDir(l.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.Contains(d.Name(), ref.MediaID) {
			hits = append(hits, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hits, nil
}
