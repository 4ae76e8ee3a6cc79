package avian

// A Region is a byte range resolved from the search path.
//
// Regions come in two flavors. Borrowed regions alias memory owned by the
// element that produced them (a memory-mapped archive or a boot library's
// resident buffer) and become invalid when the finder is closed. Owned
// regions hold freshly decompressed bytes, or carry their own mapping which
// Close releases. Callers must Close every region they obtain; closing
// never frees the archive's backing storage.
type Region struct {
	data    []byte
	release func() error
}

// Bytes returns the region's bytes. The slice must not be modified, and for
// borrowed regions must not be used after the region's finder is closed.
func (r *Region) Bytes() []byte {
	return r.data
}

// Len returns the region's length in bytes.
func (r *Region) Len() int {
	return len(r.data)
}

// Close releases any resources held by the region itself, such as a file
// mapping created for it. Close is idempotent.
func (r *Region) Close() error {
	if r.release == nil {
		return nil
	}
	release := r.release
	r.release = nil
	r.data = nil
	return release()
}
