package paths

import (
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// AccessMode is a bitmask for Filesystem.Access, mirroring access(2).
type AccessMode int

// Access modes, with the values of F_OK, X_OK, W_OK and R_OK.
const (
	Exists AccessMode = 0
	Exec   AccessMode = 1
	Write  AccessMode = 2
	Read   AccessMode = 4
)

// Filesystem is the external collaborator behind path values. The native
// filesystem is always available; virtual filesystems may be registered and
// claim ownership of path prefixes.
type Filesystem interface {
	// Name identifies the filesystem, e.g. "native".
	Name() string
	// Owns reports whether this filesystem handles the given normalized path.
	Owns(path string) bool
	Stat(path string) (os.FileInfo, error)
	Lstat(path string) (os.FileInfo, error)
	Access(path string, mode AccessMode) error
	Readlink(path string) (string, error)
	Getwd() (string, error)
	Chdir(path string) error
	Utimes(path string, atime, mtime time.Time) error
	ListVolumes() []string
}

var (
	fsMu    sync.Mutex
	fsList  []Filesystem
	fsEpoch atomic.Uint64
)

// Epoch returns the current filesystem-mount generation. Path values carry a
// snapshot and self-invalidate when it is stale.
func Epoch() uint64 { return fsEpoch.Load() }

// RegisterFilesystem mounts a filesystem ahead of the native one and advances
// the epoch, invalidating all existing path values.
func RegisterFilesystem(fs Filesystem) {
	fsMu.Lock()
	defer fsMu.Unlock()
	fsList = append([]Filesystem{fs}, fsList...)
	fsEpoch.Add(1)
}

// UnregisterFilesystem unmounts a filesystem and advances the epoch.
func UnregisterFilesystem(fs Filesystem) {
	fsMu.Lock()
	defer fsMu.Unlock()
	for i, f := range fsList {
		if f == fs {
			fsList = append(fsList[:i], fsList[i+1:]...)
			break
		}
	}
	fsEpoch.Add(1)
}

// FilesystemFor returns the filesystem that owns path, falling back to the
// native filesystem.
func FilesystemFor(path string) Filesystem {
	fsMu.Lock()
	defer fsMu.Unlock()
	for _, f := range fsList {
		if f.Owns(path) {
			return f
		}
	}
	return Native
}
