package testutil

import (
	"os"
	"path/filepath"

	"github.com/gotcl/gotcl/pkg/must"
)

// TempDir creates a temporary directory for testing that will be removed
// after the test finishes. It panics if the directory cannot be created.
//
// It is different from testing.TB.TempDir in that the path of the directory
// has all symlinks resolved (relevant on macOS, where the temporary directory
// normally contains a symlink).
func TempDir(c Cleanuper) string {
	dir, err := os.MkdirTemp("", "gotcl-test")
	if err != nil {
		panic(err)
	}
	dir, err = filepath.EvalSymlinks(dir)
	if err != nil {
		panic(err)
	}
	c.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// InTempDir is like TempDir, but also changes into the temporary directory,
// changing back when the test finishes.
func InTempDir(c Cleanuper) string {
	dir := TempDir(c)
	oldWd := must.OK1(os.Getwd())
	must.OK(os.Chdir(dir))
	c.Cleanup(func() { must.OK(os.Chdir(oldWd)) })
	return dir
}

// ApplyDir creates the given filesystem layout in the current directory.
// Values of type string become files; values of type Dir become
// subdirectories.
func ApplyDir(dir Dir) {
	applyDir(dir, "")
}

// Dir describes a directory layout.
type Dir map[string]any

func applyDir(dir Dir, prefix string) {
	for name, file := range dir {
		path := filepath.Join(prefix, name)
		switch file := file.(type) {
		case string:
			must.OK(os.WriteFile(path, []byte(file), 0600))
		case Dir:
			must.OK(os.MkdirAll(path, 0700))
			applyDir(file, path)
		default:
			panic("file is neither string nor Dir")
		}
	}
}
