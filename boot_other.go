//go:build !(darwin || freebsd || linux)

package avian

import "errors"

// OpenBootLibrary is unavailable on platforms without dlopen support;
// callers there must supply their own BootLibrary implementation.
func OpenBootLibrary(path string) (BootLibrary, error) {
	return nil, errors.New("avian: boot libraries are not supported on this platform")
}
