// Package zipindex builds a hash index over the entries of a ZIP archive.
//
// The index is parsed straight from the archive's central directory: nodes
// keep offsets into the archive bytes rather than copies of entry names, so
// an Index is only valid while the archive buffer it was opened over remains
// alive.
package zipindex

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/klauspost/compress/flate"
)

// ZIP record layout constants.
const (
	localHeaderSize   = 30
	centralHeaderSize = 46

	endSignature     = 0x06054b50 // end of central directory
	centralSignature = 0x02014b50 // central file header

	// The end-of-central-directory record is 22 bytes when the trailing
	// comment is empty; the backward signature scan starts there.
	endRecordSize = 22
)

// Compression methods understood by Data.
const (
	methodStored   = 0
	methodDeflated = 8
)

// Sentinel errors for entry extraction.
var (
	// ErrCorruptArchive is returned when an entry's compressed data does
	// not inflate to exactly its declared size, or when header fields
	// point outside the archive.
	ErrCorruptArchive = errors.New("avian: corrupt archive")

	// ErrUnsupportedMethod is returned for compression methods other than
	// Stored and Deflated.
	ErrUnsupportedMethod = errors.New("avian: unsupported compression method")
)

// node is one indexed entry. off is the offset of the entry's central file
// header within the archive; next chains nodes sharing a bucket, -1 ends
// the chain.
type node struct {
	hash uint32
	off  int
	next int32
}

// Index resolves entry names to their bytes.
//
// Buckets always number a power of two, so a bucket is selected with
// hash & (len(buckets)-1). Nodes are stored in central-directory order.
type Index struct {
	archive []byte
	nodes   []node
	buckets []int32
}

const initialCapacity = 32

// Open parses the archive's central directory into an Index.
//
// Open never fails: an archive with no recognizable end-of-central-directory
// record yields an empty index, and a central directory whose records stop
// matching the header signature is truncated at that point. The index
// retains the archive slice; callers must not modify it.
func Open(archive []byte) *Index {
	ix := &Index{
		archive: archive,
		buckets: newBuckets(initialCapacity),
	}

	// Find the end-of-central-directory record by scanning backward for
	// its signature. The scan is bounded only by the start of the buffer,
	// so a large trailing comment is walked byte by byte.
	for p := len(archive) - endRecordSize; p > 0; p-- {
		if get4(archive[p:]) != endSignature {
			continue
		}
		ix.walk(int(get4(archive[p+16:])))
		break
	}
	return ix
}

// walk adds every central file header record starting at off. Records are
// contiguous; the first signature mismatch (or a record running past the
// buffer) ends the walk.
func (ix *Index) walk(off int) {
	for off >= 0 && off+centralHeaderSize <= len(ix.archive) {
		h := ix.archive[off:]
		if get4(h) != centralSignature {
			return
		}
		end := off + centralHeaderSize + int(get2(h[28:])) + int(get2(h[30:])) + int(get2(h[32:]))
		if end > len(ix.archive) {
			return
		}
		ix.add(nameHash(ix.name(off)), off)
		off = end
	}
}

// name returns the entry name stored in the central header at off.
func (ix *Index) name(off int) []byte {
	n := int(get2(ix.archive[off+28:]))
	return ix.archive[off+centralHeaderSize : off+centralHeaderSize+n]
}

// add inserts a node, doubling the bucket array when the node count would
// exceed it. Growth rehashes every node; chain membership is preserved but
// not chain order.
func (ix *Index) add(hash uint32, off int) {
	if len(ix.nodes) == len(ix.buckets) {
		ix.grow()
	}
	i := hash & uint32(len(ix.buckets)-1)
	ix.nodes = append(ix.nodes, node{hash: hash, off: off, next: ix.buckets[i]})
	ix.buckets[i] = int32(len(ix.nodes) - 1)
}

func (ix *Index) grow() {
	ix.buckets = newBuckets(len(ix.buckets) * 2)
	for j := range ix.nodes {
		i := ix.nodes[j].hash & uint32(len(ix.buckets)-1)
		ix.nodes[j].next = ix.buckets[i]
		ix.buckets[i] = int32(j)
	}
}

func newBuckets(capacity int) []int32 {
	b := make([]int32, capacity)
	for i := range b {
		b[i] = -1
	}
	return b
}

// findNode locates the node whose entry name equals name, or -1.
func (ix *Index) findNode(name string) int {
	i := nameHash([]byte(name)) & uint32(len(ix.buckets)-1)
	for j := ix.buckets[i]; j >= 0; j = ix.nodes[j].next {
		if string(ix.name(ix.nodes[j].off)) == name {
			return int(j)
		}
	}
	return -1
}

// Exists reports whether the archive contains an entry named name.
func (ix *Index) Exists(name string) bool {
	return ix.findNode(name) >= 0
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return len(ix.nodes)
}

// Names returns the indexed entry names in central-directory order.
func (ix *Index) Names() iter.Seq[string] {
	return func(yield func(string) bool) {
		for j := range ix.nodes {
			if !yield(string(ix.name(ix.nodes[j].off))) {
				return
			}
		}
	}
}

// An Entry is a handle to one indexed archive entry. It is only valid while
// its index (and the archive buffer underneath it) remains alive.
type Entry struct {
	ix  *Index
	off int
}

// Find returns a handle to the entry named name.
func (ix *Index) Find(name string) (Entry, bool) {
	j := ix.findNode(name)
	if j < 0 {
		return Entry{}, false
	}
	return Entry{ix: ix, off: ix.nodes[j].off}, true
}

// Name returns the entry's name.
func (e Entry) Name() string {
	return string(e.ix.name(e.off))
}

// Data returns the entry's bytes.
//
// Stored entries alias the archive buffer (stored == true, no copy) and are
// only valid while it remains alive; Deflated entries are inflated into a
// fresh buffer of exactly the declared uncompressed size. An entry whose
// data cannot be produced at its declared size is corrupt.
func (e Entry) Data() (data []byte, stored bool, err error) {
	h := e.ix.archive[e.off:]

	raw, err := e.ix.entryData(h)
	if err != nil {
		return nil, false, err
	}

	switch get2(h[10:]) {
	case methodStored:
		return raw, true, nil

	case methodDeflated:
		out, err := inflate(raw, int(get4(h[24:])))
		if err != nil {
			return nil, false, fmt.Errorf("%w: entry %q: %v", ErrCorruptArchive, e.Name(), err)
		}
		return out, false, nil

	default:
		return nil, false, fmt.Errorf("%w: entry %q: method %d", ErrUnsupportedMethod, e.Name(), get2(h[10:]))
	}
}

// entryData returns the raw (possibly compressed) bytes for the entry whose
// central header is h. The data sits after the entry's local header, whose
// own name and extra-field lengths may differ from the central record's.
func (ix *Index) entryData(h []byte) ([]byte, error) {
	local := int(get4(h[42:]))
	if local < 0 || local+localHeaderSize > len(ix.archive) {
		return nil, fmt.Errorf("%w: local header offset out of range", ErrCorruptArchive)
	}
	lh := ix.archive[local:]
	start := local + localHeaderSize + int(get2(lh[26:])) + int(get2(lh[28:]))
	end := start + int(get4(h[20:]))
	if start > len(ix.archive) || end > len(ix.archive) || end < start {
		return nil, fmt.Errorf("%w: entry data out of range", ErrCorruptArchive)
	}
	return ix.archive[start:end], nil
}

// inflate runs raw DEFLATE over compressed and requires a clean stream end
// at exactly size output bytes.
func inflate(compressed []byte, size int) ([]byte, error) {
	out := make([]byte, size)
	fr := flate.NewReader(bytes.NewReader(compressed))
	defer fr.Close()

	if _, err := io.ReadFull(fr, out); err != nil {
		return nil, err
	}
	// The stream must end exactly here.
	var extra [1]byte
	if n, err := fr.Read(extra[:]); n != 0 || err != io.EOF {
		return nil, errors.New("data past declared uncompressed size")
	}
	return out, nil
}

// nameHash is the entry-name hash: h = h*31 + b over the raw bytes.
func nameHash(name []byte) uint32 {
	var h uint32
	for _, b := range name {
		h = h*31 + uint32(b)
	}
	return h
}

func get2(p []byte) uint16 {
	return uint16(p[0]) | uint16(p[1])<<8
}

func get4(p []byte) uint32 {
	return uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24
}
