package store

import (
	"path/filepath"

	"github.com/gotcl/gotcl/pkg/must"
	"github.com/gotcl/gotcl/pkg/testutil"
)

// MustTempStore returns a Store backed by a database file in a temporary
// directory, both cleaned up via c.
func MustTempStore(c testutil.Cleanuper) Store {
	dir := testutil.TempDir(c)
	s := must.OK1(NewStore(filepath.Join(dir, "db")))
	c.Cleanup(func() { s.Close() })
	return s
}
