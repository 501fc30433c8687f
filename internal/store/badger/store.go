package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/loog-project/instrux/internal/store"
)

// Config configures the Badger backend. Path is ignored when InMemory is set.
type Config struct {
	Path       string
	InMemory   bool
	SyncWrites bool
	Codec      store.Codec
}

// InMemoryConfig returns a configuration that keeps everything in memory.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

var (
	prefixInstruction = []byte("i/") // i/<id>        -> Instruction
	prefixRevision    = []byte("r/") // r/uint64(rev) -> Revision
	prefixIndex       = []byte("x/") // x/<id>|rev    -> nil
	keySequence       = []byte("seq/revisions")
)

const sequenceBandwidth = 64

type Store struct {
	db    *badger.DB
	seq   *badger.Sequence
	codec store.Codec
}

var _ store.InstructionStore = (*Store)(nil)

// New opens a Badger database.
func New(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("path is required for persistent database")
		}
		dir := filepath.Clean(cfg.Path)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dir, err)
		}
		opts = badger.DefaultOptions(dir).WithCompression(options.ZSTD)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	seq, err := db.GetSequence(keySequence, sequenceBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open revision sequence: %w", err)
	}
	codec := cfg.Codec
	if codec == nil {
		codec = store.DefaultCodec
	}
	return &Store{db: db, seq: seq, codec: codec}, nil
}

// Close releases the leased sequence range and closes the database.
func (s *Store) Close() error {
	return errors.Join(s.seq.Release(), s.db.Close())
}

func keyInstruction(id string) []byte {
	return append(slices.Clone(prefixInstruction), id...)
}

func keyRevision(id store.RevisionID) []byte {
	return binary.BigEndian.AppendUint64(slices.Clone(prefixRevision), uint64(id))
}

func indexPrefix(instructionID string) []byte {
	k := append(slices.Clone(prefixIndex), instructionID...)
	return append(k, '|')
}

func keyIndex(instructionID string, id store.RevisionID) []byte {
	return binary.BigEndian.AppendUint64(indexPrefix(instructionID), uint64(id))
}

// claimNextRevision returns the next revision ID. Badger sequences start at
// 0, revision IDs at 1.
func (s *Store) claimNextRevision() (store.RevisionID, error) {
	next, err := s.seq.Next()
	if err != nil {
		return 0, err
	}
	return store.RevisionID(next + 1), nil
}

func (s *Store) get(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return s.codec.Unmarshal(val, v)
	})
}

func (s *Store) set(txn *badger.Txn, key []byte, v any) error {
	payload, err := s.codec.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, payload)
}

func (s *Store) PutInstruction(_ context.Context, inst *store.Instruction) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return s.set(txn, keyInstruction(inst.ID), inst)
	})
}

func (s *Store) GetInstruction(_ context.Context, id string) (*store.Instruction, error) {
	var inst store.Instruction
	err := s.db.View(func(txn *badger.Txn) error {
		return s.get(txn, keyInstruction(id), &inst)
	})
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

func (s *Store) ListInstructions(_ context.Context) ([]*store.Instruction, error) {
	var list []*store.Instruction
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefixInstruction, PrefetchValues: true, PrefetchSize: 100})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var inst store.Instruction
			err := it.Item().Value(func(val []byte) error {
				return s.codec.Unmarshal(val, &inst)
			})
			if err != nil {
				return err
			}
			list = append(list, &inst)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	store.SortInstructions(list)
	return list, nil
}

// revisionKeys returns the index keys of an instruction, oldest first.
func revisionKeys(txn *badger.Txn, instructionID string) [][]byte {
	prefix := indexPrefix(instructionID)
	it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
	defer it.Close()

	var keys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}

func revisionFromIndexKey(k []byte) store.RevisionID {
	return store.RevisionID(binary.BigEndian.Uint64(k[len(k)-8:]))
}

func (s *Store) DeleteInstruction(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(keyInstruction(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return store.ErrNotFound
			}
			return err
		}
		for _, k := range revisionKeys(txn, id) {
			if err := txn.Delete(keyRevision(revisionFromIndexKey(k))); err != nil {
				return err
			}
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return txn.Delete(keyInstruction(id))
	})
}

func (s *Store) AddRevision(_ context.Context, inst *store.Instruction, rev *store.Revision) error {
	revID, err := s.claimNextRevision()
	if err != nil {
		return err
	}
	storedRev, storedInst := *rev, *inst
	storedRev.ID = revID
	storedRev.InstructionID = inst.ID
	storedInst.LatestRevision = revID
	storedInst.RevisionCount++

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := s.set(txn, keyRevision(revID), &storedRev); err != nil {
			return err
		}
		if err := txn.Set(keyIndex(inst.ID, revID), nil); err != nil {
			return err
		}
		return s.set(txn, keyInstruction(inst.ID), &storedInst)
	})
	if err != nil {
		return err
	}
	*rev, *inst = storedRev, storedInst
	return nil
}

func (s *Store) GetRevision(_ context.Context, id store.RevisionID) (*store.Revision, error) {
	var rev store.Revision
	err := s.db.View(func(txn *badger.Txn) error {
		return s.get(txn, keyRevision(id), &rev)
	})
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

func (s *Store) ListRevisions(_ context.Context, instructionID string) ([]*store.Revision, error) {
	var list []*store.Revision
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(keyInstruction(instructionID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return store.ErrNotFound
			}
			return err
		}
		for _, k := range revisionKeys(txn, instructionID) {
			var rev store.Revision
			if err := s.get(txn, keyRevision(revisionFromIndexKey(k)), &rev); err != nil {
				return err
			}
			list = append(list, &rev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(list)
	return list, nil
}
