package avian

import "github.com/jaanek/avian/internal/zipindex"

// Errors re-exported from internal/zipindex.
var (
	// ErrCorruptArchive is returned when an archive entry's data does not
	// inflate to exactly its declared size, or when its headers point
	// outside the archive. Index construction itself never reports this:
	// a malformed central directory just truncates the index.
	ErrCorruptArchive = zipindex.ErrCorruptArchive

	// ErrUnsupportedMethod is returned when an entry uses a compression
	// method other than Stored or Deflated.
	ErrUnsupportedMethod = zipindex.ErrUnsupportedMethod
)
