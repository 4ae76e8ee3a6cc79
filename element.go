package avian

import "iter"

// element is one entry of the search path. Implementations are created at
// path-parse time and closed, in path order, by Finder.Close.
type element interface {
	// names enumerates every resource visible through the element, in the
	// element's natural order. The sequence is finite and single-use.
	names() iter.Seq[string]

	// find resolves name to its bytes. A nil region with a nil error
	// means the element does not contain the resource.
	find(name string) (*Region, error)

	// exists reports whether the element contains the resource without
	// materializing its bytes.
	exists(name string) bool

	close() error
}
