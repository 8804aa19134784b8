//go:build windows

package paths

import (
	"os"
	"syscall"
	"time"
)

// Atime returns the access time recorded in fi, falling back to the
// modification time when the platform data is unavailable.
func Atime(fi os.FileInfo) time.Time {
	st, ok := fi.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return fi.ModTime()
	}
	return time.Unix(0, st.LastAccessTime.Nanoseconds())
}

// OwnerIDs returns the numeric owner and group of fi. Windows has no uid/gid
// notion, so both are 0.
func OwnerIDs(fi os.FileInfo) (uid, gid int) { return 0, 0 }
