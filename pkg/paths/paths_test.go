package paths

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/gotcl/gotcl/pkg/tt"
	"github.com/gotcl/gotcl/pkg/vals"
)

// fakeFS is a filesystem with a fixed working directory and a symlink table.
type fakeFS struct {
	cwd   string
	links map[string]string
}

func (f fakeFS) Name() string     { return "fake" }
func (f fakeFS) Owns(string) bool { return true }

func (f fakeFS) Getwd() (string, error) { return f.cwd, nil }

func (f fakeFS) Readlink(path string) (string, error) {
	if target, ok := f.links[path]; ok {
		return target, nil
	}
	return "", errors.New("not a symlink")
}

func (f fakeFS) Stat(string) (os.FileInfo, error)     { return nil, os.ErrNotExist }
func (f fakeFS) Lstat(string) (os.FileInfo, error)    { return nil, os.ErrNotExist }
func (f fakeFS) Access(string, AccessMode) error      { return os.ErrNotExist }
func (f fakeFS) Chdir(string) error                   { return errors.New("unsupported") }
func (f fakeFS) Utimes(string, time.Time, time.Time) error { return errors.New("unsupported") }
func (f fakeFS) ListVolumes() []string                { return []string{"/"} }

var testFS = fakeFS{cwd: "/cwd", links: map[string]string{
	"/a/link":    "/x/y",
	"/a/rellink": "sub",
}}

func normalize(p string) string {
	s, err := Normalize(p, testFS)
	if err != nil {
		return "error: " + err.Error()
	}
	return s
}

func TestNormalize(t *testing.T) {
	tt.Test(t, tt.Fn("normalize", normalize), tt.Table{
		tt.Args("/a/b/c").Rets("/a/b/c"),
		tt.Args("/a//b///c").Rets("/a/b/c"),
		tt.Args("/a/./b").Rets("/a/b"),
		tt.Args("/a/b/../c").Rets("/a/c"),
		tt.Args("/a/b/c/../../d").Rets("/a/d"),
		tt.Args("/../a").Rets("/a"),
		tt.Args("rel/path").Rets("/cwd/rel/path"),
		tt.Args(".").Rets("/cwd"),
		// .. through a symlink pops the link target's parent.
		tt.Args("/a/link/../z").Rets("/x/z"),
		tt.Args("/a/rellink/../z").Rets("/a/z"),
	})
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, p := range []string{"/a/b/../c", "rel", "/a//b/."} {
		once := normalize(p)
		if twice := normalize(once); twice != once {
			t.Errorf("normalize(normalize(%q)) = %q, want %q", p, twice, once)
		}
	}
}

func TestJoin(t *testing.T) {
	join := func(parts []string) string { return Join(parts...) }
	tt.Test(t, tt.Fn("Join", join), tt.Table{
		tt.Args([]string{"/tmp", "foo"}).Rets("/tmp/foo"),
		tt.Args([]string{"/tmp", "foo/bar"}).Rets("/tmp/foo/bar"),
		tt.Args([]string{"a", "b", "c"}).Rets("a/b/c"),
		// A later absolute fragment discards what came before it.
		tt.Args([]string{"/a", "/b", "c"}).Rets("/b/c"),
		tt.Args([]string{"/a/", "b"}).Rets("/a/b"),
		tt.Args([]string{"", "b"}).Rets("b"),
	})
}

func TestSplitJoinRoundTrip(t *testing.T) {
	for _, p := range []string{"/a/b/c", "a/b", "/x", "rel"} {
		if got := Join(Split(p)...); got != p {
			t.Errorf("Join(Split(%q)...) = %q", p, got)
		}
	}
}

func TestSplit(t *testing.T) {
	tt.Test(t, tt.Fn("Split", Split), tt.Table{
		tt.Args("/a/b").Rets([]string{"/", "a", "b"}),
		tt.Args("a/b").Rets([]string{"a", "b"}),
		tt.Args("/").Rets([]string{"/"}),
		// A ~ in a non-leading component is protected from expansion.
		tt.Args("a/~b").Rets([]string{"a", "./~b"}),
	})
}

func TestType(t *testing.T) {
	tt.Test(t, tt.Fn("Type", Type), tt.Table{
		tt.Args("/a").Rets("absolute"),
		tt.Args("~/a").Rets("absolute"),
		tt.Args("a/b").Rets("relative"),
		tt.Args("").Rets("relative"),
		tt.Args("c:foo").Rets("volumerelative"),
		tt.Args("c:/foo").Rets("absolute"),
	})
}

func TestAppendedFastPath(t *testing.T) {
	v := JoinVal("/tmp", "foo/bar")
	if got := v.String(); got != "/tmp/foo/bar" {
		t.Fatalf("joined string = %q", got)
	}
	r, err := pathRep(v)
	if err != nil {
		t.Fatal(err)
	}
	if !r.appended {
		t.Fatal("absolute clean join did not produce an appended rep")
	}
	dir, err := Dirname(v)
	if err != nil || dir != "/tmp/foo" {
		t.Errorf("Dirname = %q, %v; want /tmp/foo", dir, err)
	}
	tail, err := Tail(v)
	if err != nil || tail != "bar" {
		t.Errorf("Tail = %q, %v; want bar", tail, err)
	}
	// The appended invariant: the string form is the joined head and tail.
	if want := r.cwd.String() + "/" + r.tail; v.String() != want {
		t.Errorf("string form %q does not match join %q", v.String(), want)
	}
	v.Release()
}

func TestDirnameTailLexical(t *testing.T) {
	dirname := func(s string) string {
		d, _ := Dirname(vals.NewString(s))
		return d
	}
	tail := func(s string) string {
		tl, _ := Tail(vals.NewString(s))
		return tl
	}
	tt.Test(t, tt.Fn("Dirname", dirname), tt.Table{
		tt.Args("/a/b/c").Rets("/a/b"),
		tt.Args("/a").Rets("/"),
		tt.Args("a").Rets("."),
		tt.Args("a/b/").Rets("a"),
	})
	tt.Test(t, tt.Fn("Tail", tail), tt.Table{
		tt.Args("/a/b/c").Rets("c"),
		tt.Args("a").Rets("a"),
		tt.Args("a/b/").Rets("b"),
	})
}

func TestExtensionRootname(t *testing.T) {
	ext := func(s string) string {
		e, _ := Extension(vals.NewString(s))
		return e
	}
	root := func(s string) string {
		r, _ := Rootname(vals.NewString(s))
		return r
	}
	tt.Test(t, tt.Fn("Extension", ext), tt.Table{
		tt.Args("a/b.txt").Rets(".txt"),
		tt.Args("a/b").Rets(""),
		tt.Args("a/.hidden").Rets(""),
		tt.Args("a/b.tar.gz").Rets(".gz"),
	})
	tt.Test(t, tt.Fn("Rootname", root), tt.Table{
		tt.Args("a/b.txt").Rets("a/b"),
		tt.Args("a/b").Rets("a/b"),
	})
}

func TestEpochInvalidation(t *testing.T) {
	v := vals.NewString("/a/b")
	r1, err := pathRep(v)
	if err != nil {
		t.Fatal(err)
	}
	r1.normalized = "/a/b"

	fs := &fakeFS{cwd: "/"}
	RegisterFilesystem(fs)
	defer UnregisterFilesystem(fs)

	r2, err := pathRep(v)
	if err != nil {
		t.Fatal(err)
	}
	if r2.normalized != "" {
		t.Error("stale rep survived an epoch bump")
	}
	v.Release()
}

func TestEqual(t *testing.T) {
	a, b := vals.NewString("/a/b/../c"), vals.NewString("/a/c")
	eq, err := Equal(a, b, testFS)
	if err != nil || !eq {
		t.Errorf("Equal = %v, %v; want true", eq, err)
	}
}
