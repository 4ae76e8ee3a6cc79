package avian

import (
	"iter"
	"log/slog"

	"github.com/jaanek/avian/internal/zipindex"
)

// A BootLibrary supplies archive bytes for builtin search-path entries.
//
// The production implementation (see [OpenBootLibrary]) resolves an exported
// symbol per archive name and invokes it to obtain a library-resident byte
// range; tests substitute in-memory fakes. Returned slices are owned by the
// library and stay valid until it is closed.
type BootLibrary interface {
	// Archive returns the archive bytes exported under name, or false if
	// the library exports no such archive.
	Archive(name string) ([]byte, bool)

	// Close releases the library. Archive bytes obtained from it must not
	// be used afterwards.
	Close() error
}

// builtinElement serves resources from an archive embedded in a boot
// library: a jar whose bytes come from a library call instead of a mapped
// file. The element's name is the bracketed path token's inner text and
// doubles as the exported symbol name.
type builtinElement struct {
	name string
	boot BootLibrary
	log  *slog.Logger

	inited bool
	archive
}

func newBuiltinElement(name string, boot BootLibrary, log *slog.Logger) *builtinElement {
	return &builtinElement{name: name, boot: boot, log: log}
}

func (e *builtinElement) init() {
	if e.inited {
		return
	}
	e.inited = true

	if e.boot == nil {
		e.log.Debug("builtin archive has no boot library", "name", e.name)
		return
	}
	data, ok := e.boot.Archive(e.name)
	if !ok {
		e.log.Debug("builtin archive not exported", "name", e.name)
		return
	}
	e.idx = zipindex.Open(data)
	e.log.Debug("builtin archive indexed", "name", e.name, "entries", e.idx.Len())
}

func (e *builtinElement) find(name string) (*Region, error) {
	e.init()
	return e.archive.find(name)
}

func (e *builtinElement) exists(name string) bool {
	e.init()
	return e.archive.exists(name)
}

func (e *builtinElement) names() iter.Seq[string] {
	e.init()
	return e.archive.names()
}

// close releases nothing here: the boot library is shared across builtin
// elements and is closed by the finder that owns it.
func (e *builtinElement) close() error {
	e.idx = nil
	return nil
}
