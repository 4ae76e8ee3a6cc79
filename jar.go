package avian

import (
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/edsrzf/mmap-go"

	"github.com/jaanek/avian/internal/zipindex"
)

// archive is the indexed-archive core shared by jar and builtin elements.
// A nil index means the element's backing bytes could not be obtained; every
// lookup against it is absent.
type archive struct {
	idx *zipindex.Index
}

// Archive-backed lookups strip leading slashes from resource names, so
// "/a/b" and "a/b" resolve identically.
func trimSlashes(name string) string {
	return strings.TrimLeft(name, "/")
}

func (a *archive) find(name string) (*Region, error) {
	if a.idx == nil {
		return nil, nil
	}
	entry, ok := a.idx.Find(trimSlashes(name))
	if !ok {
		return nil, nil
	}
	data, _, err := entry.Data()
	if err != nil {
		return nil, err
	}
	return &Region{data: data}, nil
}

func (a *archive) exists(name string) bool {
	return a.idx != nil && a.idx.Exists(trimSlashes(name))
}

func (a *archive) names() iter.Seq[string] {
	if a.idx == nil {
		return func(func(string) bool) {}
	}
	return a.idx.Names()
}

// jarElement serves resources from a ZIP/JAR archive file. The file is
// memory-mapped and indexed lazily, on first use; a file that cannot be
// mapped or holds no recognizable central directory behaves as empty.
type jarElement struct {
	path string
	log  *slog.Logger

	inited bool
	f      *os.File
	m      mmap.MMap
	archive
}

func newJarElement(path string, log *slog.Logger) *jarElement {
	return &jarElement{path: path, log: log}
}

// init maps the archive and builds its index. Idempotent: only the first
// call does work, and a failed first call leaves the element empty for good.
func (e *jarElement) init() {
	if e.inited {
		return
	}
	e.inited = true

	f, err := os.Open(e.path)
	if err != nil {
		e.log.Debug("archive not mappable", "path", e.path, "err", err)
		return
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		e.log.Debug("archive not mappable", "path", e.path, "err", err)
		f.Close()
		return
	}
	e.f = f
	e.m = m
	e.idx = zipindex.Open(m)
	e.log.Debug("archive indexed", "path", e.path, "entries", e.idx.Len())
}

func (e *jarElement) find(name string) (*Region, error) {
	e.init()
	return e.archive.find(name)
}

func (e *jarElement) exists(name string) bool {
	e.init()
	return e.archive.exists(name)
}

func (e *jarElement) names() iter.Seq[string] {
	e.init()
	return e.archive.names()
}

func (e *jarElement) close() error {
	e.idx = nil
	var err error
	if e.m != nil {
		err = e.m.Unmap()
		e.m = nil
	}
	if e.f != nil {
		if cerr := e.f.Close(); err == nil {
			err = cerr
		}
		e.f = nil
	}
	return err
}
