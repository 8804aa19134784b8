package paths

import (
	"os"
	"path/filepath"
	"time"
)

// Native is the operating-system filesystem.
var Native Filesystem = osFS{}

type osFS struct{}

func (osFS) Name() string { return "native" }

// Owns always reports true; the native filesystem is the fallback for every
// path not claimed by a mounted virtual filesystem.
func (osFS) Owns(string) bool { return true }

func (osFS) Stat(path string) (os.FileInfo, error)  { return os.Stat(path) }
func (osFS) Lstat(path string) (os.FileInfo, error) { return os.Lstat(path) }
func (osFS) Readlink(path string) (string, error)   { return os.Readlink(path) }
func (osFS) Getwd() (string, error)                 { return os.Getwd() }
func (osFS) Chdir(path string) error                { return os.Chdir(path) }

func (osFS) Utimes(path string, atime, mtime time.Time) error {
	return os.Chtimes(path, atime, mtime)
}

func (osFS) ListVolumes() []string {
	if filepath.Separator == '/' {
		return []string{"/"}
	}
	return listWindowsVolumes()
}

func (fs osFS) Access(path string, mode AccessMode) error {
	return osAccess(path, mode)
}
