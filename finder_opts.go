package avian

import "log/slog"

// Option configures a Finder.
type Option func(*Finder)

// WithBootLibrary supplies the boot library that backs builtin (bracketed)
// search-path entries. The finder takes ownership: Close closes the
// library. Without this option, builtin entries resolve nothing.
func WithBootLibrary(lib BootLibrary) Option {
	return func(f *Finder) {
		f.boot = lib
	}
}

// WithLogger sets the logger for debug-level lookup and path-parsing logs.
// By default logs are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Finder) {
		f.logger = logger
	}
}
