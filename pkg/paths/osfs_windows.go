//go:build windows

package paths

import (
	"errors"
	"os"
)

func osAccess(path string, mode AccessMode) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode&Write != 0 && info.Mode().Perm()&0200 == 0 {
		return os.ErrPermission
	}
	return nil
}

// Owned reports file ownership. Windows has no effective-uid notion that maps
// onto it, so it is an error rather than a hard-coded true.
func Owned(path string) (bool, error) {
	return false, errors.New("file ownership is not supported on this platform")
}

func listWindowsVolumes() []string {
	var vols []string
	for c := 'A'; c <= 'Z'; c++ {
		vol := string(c) + `:\`
		if _, err := os.Stat(vol); err == nil {
			vols = append(vols, vol)
		}
	}
	return vols
}
