//go:build darwin || freebsd || linux

package avian

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
)

// dlBootLibrary loads boot archives from a dynamic library via dlopen/dlsym.
type dlBootLibrary struct {
	handle uintptr
}

// OpenBootLibrary loads the dynamic library at path for use as a boot
// library. Each exported archive symbol must be a function that takes a
// pointer to a 32-bit length, writes the archive's byte length through it,
// and returns a pointer to the archive bytes (or null).
func OpenBootLibrary(path string) (BootLibrary, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("avian: load boot library %s: %w", path, err)
	}
	return &dlBootLibrary{handle: handle}, nil
}

func (l *dlBootLibrary) Archive(name string) ([]byte, bool) {
	sym, err := purego.Dlsym(l.handle, name)
	if err != nil || sym == 0 {
		return nil, false
	}
	var size uint32
	ptr, _, _ := purego.SyscallN(sym, uintptr(unsafe.Pointer(&size)))
	if ptr == 0 {
		return nil, false
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(ptr)), int(size)), true
}

func (l *dlBootLibrary) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := purego.Dlclose(l.handle)
	l.handle = 0
	return err
}
