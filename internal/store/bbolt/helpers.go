package bbolt

import (
	"encoding/binary"

	"github.com/loog-project/instrux/internal/store"
	"go.etcd.io/bbolt"
)

func keyRevision(id store.RevisionID) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

// keyInstructionRevision sorts the revisions of one instruction by ID.
func keyInstructionRevision(instructionID string, id store.RevisionID) []byte {
	buf := make([]byte, len(instructionID)+1+8)
	copy(buf, instructionID)
	buf[len(instructionID)] = '|'
	binary.BigEndian.PutUint64(buf[len(instructionID)+1:], uint64(id))
	return buf
}

func indexPrefix(instructionID string) []byte {
	return append([]byte(instructionID), '|')
}

func revisionFromIndexKey(k []byte) store.RevisionID {
	return store.RevisionID(binary.BigEndian.Uint64(k[len(k)-8:]))
}

// claimNextRevision atomically increments the sequence of bucketRevisions.
// IDs start at 1.
func (s *Store) claimNextRevision(tx *bbolt.Tx) (store.RevisionID, error) {
	next, err := tx.Bucket(bucketRevisions).NextSequence()
	if err != nil {
		return 0, err
	}
	return store.RevisionID(next), nil
}

func (s *Store) putInstruction(tx *bbolt.Tx, inst *store.Instruction) error {
	payload, err := s.codec.Marshal(inst)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketInstructions).Put([]byte(inst.ID), payload)
}

func (s *Store) getInstruction(tx *bbolt.Tx, id string) (*store.Instruction, error) {
	raw := tx.Bucket(bucketInstructions).Get([]byte(id))
	if raw == nil {
		return nil, store.ErrNotFound
	}
	var inst store.Instruction
	if err := s.codec.Unmarshal(raw, &inst); err != nil {
		return nil, err
	}
	return &inst, nil
}

func (s *Store) getRevision(tx *bbolt.Tx, id store.RevisionID) (*store.Revision, error) {
	raw := tx.Bucket(bucketRevisions).Get(keyRevision(id))
	if raw == nil {
		return nil, store.ErrNotFound
	}
	var rev store.Revision
	if err := s.codec.Unmarshal(raw, &rev); err != nil {
		return nil, err
	}
	return &rev, nil
}
