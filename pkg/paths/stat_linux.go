//go:build linux

package paths

import (
	"os"
	"syscall"
	"time"
)

// Atime returns the access time recorded in fi, falling back to the
// modification time when the platform data is unavailable.
func Atime(fi os.FileInfo) time.Time {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return fi.ModTime()
	}
	return time.Unix(st.Atim.Sec, st.Atim.Nsec)
}

// OwnerIDs returns the numeric owner and group recorded in fi.
func OwnerIDs(fi os.FileInfo) (uid, gid int) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0
	}
	return int(st.Uid), int(st.Gid)
}
