// Package testutil provides archive fixtures and fakes for finder tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// Entry describes one archive entry for BuildArchive.
type Entry struct {
	Name     string
	Content  []byte
	Deflated bool
}

// BuildArchive builds a ZIP archive in memory from the given entries.
// Entries are written in order, Stored unless Deflated is set.
func BuildArchive(tb testing.TB, entries []Entry) []byte {
	tb.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		method := zip.Store
		if e.Deflated {
			method = zip.Deflate
		}
		fw, err := w.CreateHeader(&zip.FileHeader{Name: e.Name, Method: method})
		if err != nil {
			tb.Fatalf("create archive entry %q: %v", e.Name, err)
		}
		if _, err := fw.Write(e.Content); err != nil {
			tb.Fatalf("write archive entry %q: %v", e.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		tb.Fatalf("finish archive: %v", err)
	}
	return buf.Bytes()
}

// WriteArchive writes a ZIP archive file named name under dir and returns
// its path.
func WriteArchive(tb testing.TB, dir, name string, entries []Entry) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, BuildArchive(tb, entries), 0o644); err != nil {
		tb.Fatalf("write archive %s: %v", path, err)
	}
	return path
}

// WriteTree creates the given files (keyed by "/"-separated relative path)
// under dir, creating intermediate directories as needed.
func WriteTree(tb testing.TB, dir string, files map[string][]byte) {
	tb.Helper()

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			tb.Fatalf("mkdir for %s: %v", path, err)
		}
		if err := os.WriteFile(path, content, 0o644); err != nil {
			tb.Fatalf("write %s: %v", path, err)
		}
	}
}

// BootLibrary is an in-memory boot library fake.
type BootLibrary struct {
	Archives map[string][]byte
	Closed   bool
}

// Archive returns the archive registered under name.
func (l *BootLibrary) Archive(name string) ([]byte, bool) {
	data, ok := l.Archives[name]
	return data, ok
}

// Close records that the library was released.
func (l *BootLibrary) Close() error {
	l.Closed = true
	return nil
}
