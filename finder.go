package avian

import (
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"strings"
)

// Finder resolves resource names against an ordered search path.
//
// A Finder is created once, used from a single goroutine, and closed once.
// Regions that alias finder-owned memory (mapped archives, boot-library
// buffers) must not be used after Close.
type Finder struct {
	path     string
	elements []element
	boot     BootLibrary
	logger   *slog.Logger
}

// New builds a Finder from a search-path string. Entries are separated by
// the platform list separator; a token wrapped in square brackets names a
// builtin archive resolved through the boot library, other tokens are
// probed on the filesystem (regular file: archive, directory: tree,
// anything else: dropped). New never fails; a path with no usable entries
// yields a finder that finds nothing.
func New(searchPath string, opts ...Option) *Finder {
	f := &Finder{path: searchPath}
	for _, opt := range opts {
		opt(f)
	}
	f.elements = parsePath(searchPath, f.boot, f.log())
	return f
}

// log returns the logger, falling back to a discard logger if nil.
func (f *Finder) log() *slog.Logger {
	if f.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return f.logger
}

func parsePath(searchPath string, boot BootLibrary, log *slog.Logger) []element {
	var elements []element
	for _, token := range strings.Split(searchPath, string(os.PathListSeparator)) {
		if token == "" {
			continue
		}
		if len(token) >= 2 && token[0] == '[' && token[len(token)-1] == ']' {
			elements = append(elements, newBuiltinElement(token[1:len(token)-1], boot, log))
			continue
		}
		fi, err := os.Stat(token)
		switch {
		case err != nil:
			log.Debug("search path entry dropped", "entry", token, "err", err)
		case fi.IsDir():
			elements = append(elements, newDirElement(token))
		case fi.Mode().IsRegular():
			elements = append(elements, newJarElement(token, log))
		default:
			log.Debug("search path entry dropped", "entry", token)
		}
	}
	return elements
}

// Find resolves name to its bytes, first match in path order wins. Absence
// is reported as an *fs.PathError wrapping fs.ErrNotExist; a corrupt or
// unsupported archive entry propagates its error instead of being skipped.
// The caller owns the returned region and must Close it.
func (f *Finder) Find(name string) (*Region, error) {
	for _, e := range f.elements {
		r, err := e.find(name)
		if err != nil {
			return nil, err
		}
		if r != nil {
			f.log().Debug("resource found", "name", name)
			return r, nil
		}
	}
	f.log().Debug("resource not found", "name", name)
	return nil, &fs.PathError{Op: "find", Path: name, Err: fs.ErrNotExist}
}

// Exists reports whether any path element contains the resource.
func (f *Finder) Exists(name string) bool {
	for _, e := range f.elements {
		if e.exists(name) {
			return true
		}
	}
	return false
}

// Names enumerates every resource visible through the search path: each
// element's own enumeration in turn, in path order. A name present in
// several elements appears once per element. The sequence is lazy; at most
// one element is being enumerated at a time, and abandoning the loop stops
// the walk.
func (f *Finder) Names() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, e := range f.elements {
			for name := range e.names() {
				if !yield(name) {
					return
				}
			}
		}
	}
}

// Path returns the original search-path string.
func (f *Finder) Path() string {
	return f.path
}

// Close releases every path element in path order, then the boot library if
// one was configured. Regions aliasing finder-owned memory are invalid
// afterwards.
func (f *Finder) Close() error {
	var err error
	for _, e := range f.elements {
		if cerr := e.close(); err == nil {
			err = cerr
		}
	}
	f.elements = nil
	if f.boot != nil {
		if cerr := f.boot.Close(); err == nil {
			err = cerr
		}
		f.boot = nil
	}
	return err
}
