// Package store implements the persistent command-history store used by the
// interactive shell, backed by a bolt database file.
package store

import (
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"
)

// ErrNoMatchingCmd is returned by history queries that complete with no
// result.
var ErrNoMatchingCmd = errors.New("no matching command line")

// Cmd is an entry in the command history.
type Cmd struct {
	Text string
	Seq  int
}

// Store is the interface to the history storage.
type Store interface {
	NextCmdSeq() (int, error)
	AddCmd(text string) (int, error)
	DelCmd(seq int) error
	Cmd(seq int) (string, error)
	CmdsWithSeq(from, upto int) ([]Cmd, error)
	NextCmd(from int, prefix string) (Cmd, error)
	PrevCmd(upto int, prefix string) (Cmd, error)
	Close() error
}

const bucketCmd = "cmd"

type dbStore struct {
	db *bolt.DB
}

// NewStore opens the database file at path, creating it and the required
// buckets as needed.
func NewStore(path string) (Store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{
		Timeout: time.Second,
	})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketCmd))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &dbStore{db}, nil
}

func (s *dbStore) Close() error { return s.db.Close() }
