// Package avian resolves resource names against an ordered search path of
// directories, ZIP/JAR archives, and archives embedded in dynamically loaded
// libraries: the classpath lookup model used by JVM-style runtimes.
//
// A [Finder] is built from a search-path string whose entries are separated
// by the platform list separator. Plain directories and archive files are
// probed on the filesystem; a token wrapped in square brackets names an
// archive exported by a boot library (see [BootLibrary]). Entries that do
// not exist are silently dropped. Earlier entries shadow later ones: Find
// returns the first match in path order.
//
// # Quick start
//
//	f := avian.New("classes" + string(os.PathListSeparator) + "lib/app.jar")
//	defer f.Close()
//
//	r, err := f.Find("META-INF/MANIFEST.MF")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	use(r.Bytes())
//
// # Ownership
//
// Regions returned by Find may alias memory owned by the finder (a mapped
// archive, or a boot library's resident buffer). Such regions must not be
// used after the finder is closed; copy the bytes first if they need to
// outlive it. [Finder.ReadFile] always returns caller-owned bytes.
//
// A Finder and everything it produces assume single-threaded use; wrap the
// finder with external synchronization if it must be shared.
package avian
