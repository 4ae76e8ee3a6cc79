package avian

import (
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/edsrzf/mmap-go"
)

// dirElement serves resources from a plain directory tree. Resource names
// are "/"-joined paths relative to the directory root.
type dirElement struct {
	dir string
}

func newDirElement(dir string) *dirElement {
	return &dirElement{dir: dir}
}

func (e *dirElement) find(name string) (*Region, error) {
	r, ok := mapFile(filepath.Join(e.dir, filepath.FromSlash(name)))
	if !ok {
		return nil, nil
	}
	return r, nil
}

func (e *dirElement) exists(name string) bool {
	_, err := os.Stat(filepath.Join(e.dir, filepath.FromSlash(name)))
	return err == nil
}

func (e *dirElement) names() iter.Seq[string] {
	return func(yield func(string) bool) {
		walkNames(e.dir, "", yield)
	}
}

func (e *dirElement) close() error {
	return nil
}

// walkNames yields every entry under dir in pre-order: an entry's relative
// path first, then, for directories, the entries beneath it. Entries whose
// name starts with '.' are skipped at every depth. Directory reads are
// batched so enumeration stays lazy. Returns false when the consumer
// stopped early.
func walkNames(dir, rel string, yield func(string) bool) bool {
	f, err := os.Open(dir)
	if err != nil {
		// An unreadable directory contributes nothing.
		return true
	}
	defer f.Close()

	for {
		batch, err := f.ReadDir(64)
		for _, de := range batch {
			name := de.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			r := name
			if rel != "" {
				r = rel + "/" + name
			}
			if !yield(r) {
				return false
			}
			if de.IsDir() {
				if !walkNames(filepath.Join(dir, name), r, yield) {
					return false
				}
			}
		}
		if err != nil {
			return true
		}
	}
}

// mapFile maps the file at path read-only. The returned region owns the
// mapping and releases it on Close. Anything that cannot be mapped as a
// regular file (missing, a directory, unreadable) reports ok == false.
func mapFile(path string) (*Region, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		f.Close()
		return nil, false
	}
	if fi.Size() == 0 {
		// Zero-length mappings are invalid on most platforms.
		f.Close()
		return &Region{}, true
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, false
	}
	return &Region{
		data: m,
		release: func() error {
			err := m.Unmap()
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			return err
		},
	}, true
}
