package bbolt

import (
	"bytes"
	"context"
	"slices"

	"github.com/loog-project/instrux/internal/store"
	"go.etcd.io/bbolt"
)

func (s *Store) PutInstruction(_ context.Context, inst *store.Instruction) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return s.putInstruction(tx, inst)
	})
}

func (s *Store) GetInstruction(_ context.Context, id string) (*store.Instruction, error) {
	var inst *store.Instruction
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		inst, err = s.getInstruction(tx, id)
		return err
	})
	return inst, err
}

func (s *Store) ListInstructions(_ context.Context) ([]*store.Instruction, error) {
	var list []*store.Instruction
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketInstructions).ForEach(func(_, v []byte) error {
			var inst store.Instruction
			if err := s.codec.Unmarshal(v, &inst); err != nil {
				return err
			}
			list = append(list, &inst)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	store.SortInstructions(list)
	return list, nil
}

// DeleteInstruction removes the summary, every revision and their index entries.
func (s *Store) DeleteInstruction(_ context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		instructions := tx.Bucket(bucketInstructions)
		if instructions.Get([]byte(id)) == nil {
			return store.ErrNotFound
		}

		index := tx.Bucket(bucketIndex)
		prefix := indexPrefix(id)
		var keys [][]byte
		c := index.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			keys = append(keys, slices.Clone(k))
		}

		revisions := tx.Bucket(bucketRevisions)
		for _, k := range keys {
			if err := revisions.Delete(keyRevision(revisionFromIndexKey(k))); err != nil {
				return err
			}
			if err := index.Delete(k); err != nil {
				return err
			}
		}
		return instructions.Delete([]byte(id))
	})
}

// AddRevision stores rev under a freshly claimed ID and updates inst.
// rev and inst are only written to once the transaction has committed.
func (s *Store) AddRevision(_ context.Context, inst *store.Instruction, rev *store.Revision) error {
	storedRev, storedInst := *rev, *inst
	err := s.db.Update(func(tx *bbolt.Tx) error {
		revID, err := s.claimNextRevision(tx)
		if err != nil {
			return err
		}
		storedRev.ID = revID
		storedRev.InstructionID = inst.ID

		payload, err := s.codec.Marshal(&storedRev)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketRevisions).Put(keyRevision(revID), payload); err != nil {
			return err
		}
		if err := tx.Bucket(bucketIndex).Put(keyInstructionRevision(inst.ID, revID), nil); err != nil {
			return err
		}

		storedInst.LatestRevision = revID
		storedInst.RevisionCount = inst.RevisionCount + 1
		return s.putInstruction(tx, &storedInst)
	})
	if err != nil {
		return err
	}
	*rev, *inst = storedRev, storedInst
	return nil
}

func (s *Store) GetRevision(_ context.Context, id store.RevisionID) (*store.Revision, error) {
	var rev *store.Revision
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		rev, err = s.getRevision(tx, id)
		return err
	})
	return rev, err
}

func (s *Store) ListRevisions(_ context.Context, instructionID string) ([]*store.Revision, error) {
	var list []*store.Revision
	err := s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketInstructions).Get([]byte(instructionID)) == nil {
			return store.ErrNotFound
		}
		prefix := indexPrefix(instructionID)
		c := tx.Bucket(bucketIndex).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			rev, err := s.getRevision(tx, revisionFromIndexKey(k))
			if err != nil {
				return err
			}
			list = append(list, rev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(list)
	return list, nil
}
