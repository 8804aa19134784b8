//go:build unix

package paths

import (
	"golang.org/x/sys/unix"
)

func osAccess(path string, mode AccessMode) error {
	return unix.Access(path, uint32(mode))
}

// Owned reports whether the file is owned by the effective user.
func Owned(path string) (bool, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return false, err
	}
	return int(st.Uid) == unix.Geteuid(), nil
}

func listWindowsVolumes() []string { return nil }
