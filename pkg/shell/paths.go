package shell

import (
	"os"
	"path/filepath"
)

// RCPath returns the path of the rc file sourced by interactive sessions.
// It is overridable with the GOTCLRC environment variable.
func RCPath() (string, error) {
	if p := os.Getenv("GOTCLRC"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gotcl", "rc.tcl"), nil
}

// DBPath returns the path of the command history database. It is overridable
// with the GOTCL_DB environment variable.
func DBPath() (string, error) {
	if p := os.Getenv("GOTCL_DB"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "gotcl", "db.bolt")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", err
	}
	return path, nil
}
