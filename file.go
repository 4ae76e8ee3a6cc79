package avian

import (
	"bytes"
	"io/fs"
	"path"
	"time"
)

// Interface compliance.
var (
	_ fs.FS         = (*Finder)(nil)
	_ fs.ReadFileFS = (*Finder)(nil)
)

// Open implements fs.FS over the search path with the same first-match-wins
// semantics as Find. The returned file reads the resolved region and
// releases it on Close.
func (f *Finder) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	r, err := f.Find(name)
	if err != nil {
		if pe, ok := err.(*fs.PathError); ok {
			return nil, &fs.PathError{Op: "open", Path: name, Err: pe.Err}
		}
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &regionFile{name: name, region: r, r: bytes.NewReader(r.Bytes())}, nil
}

// ReadFile implements fs.ReadFileFS. Unlike Find, the returned bytes are
// always owned by the caller and stay valid after the finder is closed.
func (f *Finder) ReadFile(name string) ([]byte, error) {
	r, err := f.Find(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return bytes.Clone(r.Bytes()), nil
}

// regionFile adapts a Region to fs.File.
type regionFile struct {
	name   string
	region *Region
	r      *bytes.Reader
}

func (f *regionFile) Read(p []byte) (int, error) {
	if f.region == nil {
		return 0, fs.ErrClosed
	}
	return f.r.Read(p)
}

func (f *regionFile) Stat() (fs.FileInfo, error) {
	if f.region == nil {
		return nil, fs.ErrClosed
	}
	return &regionInfo{name: path.Base(f.name), size: int64(f.region.Len())}, nil
}

func (f *regionFile) Close() error {
	if f.region == nil {
		return fs.ErrClosed
	}
	r := f.region
	f.region = nil
	f.r = nil
	return r.Close()
}

// regionInfo is the synthetic fs.FileInfo for a resolved resource. Archives
// carry no usable mode or time metadata for this purpose, so resources
// report a read-only mode and the zero time.
type regionInfo struct {
	name string
	size int64
}

func (i *regionInfo) Name() string       { return i.name }
func (i *regionInfo) Size() int64        { return i.size }
func (i *regionInfo) Mode() fs.FileMode  { return 0o444 }
func (i *regionInfo) ModTime() time.Time { return time.Time{} }
func (i *regionInfo) IsDir() bool        { return false }
func (i *regionInfo) Sys() any           { return nil }
