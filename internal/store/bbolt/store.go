package bbolt

import (
	"fmt"

	"github.com/loog-project/instrux/internal/store"
	"go.etcd.io/bbolt"
)

var (
	bucketInstructions = []byte("instructions") // <id>      -> Instruction
	bucketRevisions    = []byte("revisions")    // uint64(rev) -> Revision
	bucketIndex        = []byte("index")        // <id>|rev  -> nil
)

type Store struct {
	db    *bbolt.DB
	codec store.Codec
}

var _ store.InstructionStore = (*Store)(nil)

// New opens (or creates) a BoltDB database file.
// Pass nil for [codec] to use the default MessagePack implementation.
// With syncWrites disabled every commit skips fsync.
func New(path string, codec store.Codec, syncWrites bool) (*Store, error) {
	if codec == nil {
		codec = store.DefaultCodec
	}
	db, err := bbolt.Open(path, 0666, &bbolt.Options{
		Timeout:      0,
		NoSync:       !syncWrites,
		FreelistType: bbolt.FreelistMapType,
	})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketInstructions, bucketRevisions, bucketIndex} {
			if _, e := tx.CreateBucketIfNotExists(b); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create default buckets: %w", err)
	}
	return &Store{
		db:    db,
		codec: codec,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
