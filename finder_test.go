package avian

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaanek/avian/internal/testutil"
)

func searchPath(entries ...string) string {
	return strings.Join(entries, string(os.PathListSeparator))
}

func TestNewClassifiesEntries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string][]byte{"res.txt": []byte("r")})
	jar := testutil.WriteArchive(t, t.TempDir(), "app.jar", []testutil.Entry{
		{Name: "a", Content: []byte("1")},
	})

	f := New(searchPath(dir, jar, filepath.Join(dir, "no-such-entry"), "[boot]"))
	defer f.Close()

	require.Len(t, f.elements, 3, "missing entries must be dropped")
	assert.IsType(t, (*dirElement)(nil), f.elements[0])
	assert.IsType(t, (*jarElement)(nil), f.elements[1])
	assert.IsType(t, (*builtinElement)(nil), f.elements[2])
}

func TestFindFirstMatchWins(t *testing.T) {
	t.Parallel()

	first := testutil.WriteArchive(t, t.TempDir(), "first.jar", []testutil.Entry{
		{Name: "A", Content: []byte("from first")},
	})
	second := testutil.WriteArchive(t, t.TempDir(), "second.jar", []testutil.Entry{
		{Name: "A", Content: []byte("from second")},
		{Name: "B", Content: []byte("only here")},
	})

	f := New(searchPath(first, second))
	defer f.Close()

	r, err := f.Find("A")
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, []byte("from first"), r.Bytes(), "earlier path entries shadow later ones")

	assert.True(t, f.Exists("A"))
	assert.True(t, f.Exists("B"), "existence must consult later elements too")
	assert.False(t, f.Exists("C"))
}

func TestFindAbsent(t *testing.T) {
	t.Parallel()

	f := New(testutil.WriteArchive(t, t.TempDir(), "a.jar", nil))
	defer f.Close()

	_, err := f.Find("missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)
	var pe *fs.PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "missing", pe.Path)
}

func TestFindAgainstDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string][]byte{
		"pkg/Main.class": []byte("class bytes"),
		"empty":          nil,
	})

	f := New(dir)
	defer f.Close()

	r, err := f.Find("pkg/Main.class")
	require.NoError(t, err)
	assert.Equal(t, []byte("class bytes"), r.Bytes())
	require.NoError(t, r.Close())
	assert.NoError(t, r.Close(), "region close is idempotent")

	r, err = f.Find("empty")
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
	require.NoError(t, r.Close())

	_, err = f.Find("pkg/Other.class")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	assert.True(t, f.Exists("pkg/Main.class"))
	assert.True(t, f.Exists("pkg"), "any file type satisfies a directory existence probe")
	assert.False(t, f.Exists("absent"))
}

func TestFindLeadingSlash(t *testing.T) {
	t.Parallel()

	jar := testutil.WriteArchive(t, t.TempDir(), "a.jar", []testutil.Entry{
		{Name: "pkg/X.class", Content: []byte("x")},
	})
	boot := &testutil.BootLibrary{Archives: map[string][]byte{
		"bootjar": testutil.BuildArchive(t, []testutil.Entry{
			{Name: "java/lang/Object.class", Content: []byte("o")},
		}),
	}}

	f := New(searchPath(jar, "[bootjar]"), WithBootLibrary(boot))
	defer f.Close()

	for _, name := range []string{"pkg/X.class", "/pkg/X.class", "//pkg/X.class"} {
		r, err := f.Find(name)
		require.NoError(t, err, "find %q", name)
		assert.Equal(t, []byte("x"), r.Bytes())
		r.Close()
		assert.True(t, f.Exists(name))
	}
	r, err := f.Find("/java/lang/Object.class")
	require.NoError(t, err)
	assert.Equal(t, []byte("o"), r.Bytes())
	r.Close()
}

func TestFindPropagatesCorruptArchive(t *testing.T) {
	t.Parallel()

	archive := testutil.BuildArchive(t, []testutil.Entry{
		{Name: "x", Content: []byte("yyyyyyyy"), Deflated: true},
	})
	// Misdeclare the uncompressed size in the central header so the
	// entry can no longer inflate cleanly.
	i := strings.Index(string(archive), "PK\x01\x02")
	require.GreaterOrEqual(t, i, 0)
	archive[i+24] = 1
	archive[i+25] = 0

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.jar")
	require.NoError(t, os.WriteFile(path, archive, 0o644))

	f := New(path)
	defer f.Close()

	assert.True(t, f.Exists("x"), "existence does not materialize bytes")
	_, err := f.Find("x")
	assert.ErrorIs(t, err, ErrCorruptArchive)
}

func TestBuiltinWithoutBootLibrary(t *testing.T) {
	t.Parallel()

	f := New("[bootjar]")
	defer f.Close()

	assert.False(t, f.Exists("anything"))
	_, err := f.Find("anything")
	assert.ErrorIs(t, err, fs.ErrNotExist)
	for range f.Names() {
		t.Fatal("empty builtin element must enumerate nothing")
	}
}

func TestCloseReleasesBootLibrary(t *testing.T) {
	t.Parallel()

	boot := &testutil.BootLibrary{Archives: map[string][]byte{}}
	f := New("[bootjar]", WithBootLibrary(boot))
	require.NoError(t, f.Close())
	assert.True(t, boot.Closed)
}

func TestPath(t *testing.T) {
	t.Parallel()

	p := searchPath("a", "b", "[c]")
	f := New(p)
	defer f.Close()
	assert.Equal(t, p, f.Path())
}

func TestNames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string][]byte{
		"top.txt":          []byte("t"),
		"sub/inner.txt":    []byte("i"),
		"sub/deep/most":    []byte("m"),
		".hidden":          []byte("h"),
		"sub/.also/nested": []byte("n"),
	})
	jar := testutil.WriteArchive(t, t.TempDir(), "a.jar", []testutil.Entry{
		{Name: "top.txt", Content: []byte("dup")},
		{Name: "pkg/X.class", Content: []byte("x"), Deflated: true},
	})

	f := New(searchPath(dir, jar))
	defer f.Close()

	var names []string
	for name := range f.Names() {
		names = append(names, name)
	}

	// Directory entries come first (path order), the jar's entries after,
	// each element in its own natural order. The duplicate top.txt shows
	// up once per element.
	require.GreaterOrEqual(t, len(names), 2)
	assert.Equal(t, []string{"top.txt", "pkg/X.class"}, names[len(names)-2:],
		"jar entries trail in central-directory order")

	dirNames := names[:len(names)-2]
	assert.ElementsMatch(t, []string{"top.txt", "sub", "sub/inner.txt", "sub/deep", "sub/deep/most"}, dirNames)
	for _, name := range dirNames {
		assert.NotContains(t, name, "hidden")
		assert.NotContains(t, name, ".also")
	}
	// Pre-order: a directory precedes everything beneath it.
	sub := indexOf(t, dirNames, "sub")
	assert.Less(t, sub, indexOf(t, dirNames, "sub/inner.txt"))
	assert.Less(t, indexOf(t, dirNames, "sub/deep"), indexOf(t, dirNames, "sub/deep/most"))

	// An abandoned enumeration stops cleanly.
	for range f.Names() {
		break
	}
}

func indexOf(tb testing.TB, names []string, want string) int {
	tb.Helper()
	for i, name := range names {
		if name == want {
			return i
		}
	}
	tb.Fatalf("%q not enumerated in %v", want, names)
	return -1
}

func TestNamesAcrossBuiltin(t *testing.T) {
	t.Parallel()

	boot := &testutil.BootLibrary{Archives: map[string][]byte{
		"bootjar": testutil.BuildArchive(t, []testutil.Entry{
			{Name: "java/lang/Object.class", Content: []byte("o")},
			{Name: "java/lang/String.class", Content: []byte("s")},
		}),
	}}
	f := New("[bootjar]", WithBootLibrary(boot))
	defer f.Close()

	var names []string
	for name := range f.Names() {
		names = append(names, name)
	}
	assert.Equal(t, []string{"java/lang/Object.class", "java/lang/String.class"}, names)
}

func TestExistsAgreesWithFindAcrossElements(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string][]byte{"d.txt": []byte("d")})
	jar := testutil.WriteArchive(t, t.TempDir(), "a.jar", []testutil.Entry{
		{Name: "j.txt", Content: []byte("j"), Deflated: true},
	})
	boot := &testutil.BootLibrary{Archives: map[string][]byte{
		"bootjar": testutil.BuildArchive(t, []testutil.Entry{
			{Name: "b.txt", Content: []byte("b")},
		}),
	}}

	f := New(searchPath(dir, jar, "[bootjar]"), WithBootLibrary(boot))
	defer f.Close()

	for _, name := range []string{"d.txt", "j.txt", "b.txt", "nope", "/j.txt"} {
		r, err := f.Find(name)
		found := err == nil
		if found {
			r.Close()
		} else {
			require.ErrorIs(t, err, fs.ErrNotExist)
		}
		assert.Equal(t, found, f.Exists(name), "Exists and Find disagree on %q", name)
	}
}

func TestJarElementSharesMappedBytes(t *testing.T) {
	t.Parallel()

	jar := testutil.WriteArchive(t, t.TempDir(), "a.jar", []testutil.Entry{
		{Name: "stored", Content: []byte("abc")},
	})
	f := New(jar)
	defer f.Close()

	r, err := f.Find("stored")
	require.NoError(t, err)
	defer r.Close()

	e, ok := f.elements[0].(*jarElement)
	require.True(t, ok)
	// A stored entry is a view into the element's mapping, not a copy.
	i := strings.Index(string(e.m), "abc")
	require.GreaterOrEqual(t, i, 0)
	assert.Same(t, &e.m[i], &r.Bytes()[0])
}

func TestFinderWithNoUsableEntries(t *testing.T) {
	t.Parallel()

	f := New(searchPath("", filepath.Join(t.TempDir(), "ghost")))
	defer f.Close()

	assert.Empty(t, f.elements)
	assert.False(t, f.Exists("x"))
	_, err := f.Find("x")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCorruptArchiveFileIsEmptyNotFatal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "junk.jar")
	require.NoError(t, os.WriteFile(path, []byte("not a zip archive at all"), 0o644))

	f := New(path)
	defer f.Close()

	assert.False(t, f.Exists("x"))
	_, err := f.Find("x")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
