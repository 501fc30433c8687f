package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidRevision = errors.New("invalid revision")
)

// InstructionStore persists instruction summaries and their immutable
// revisions. Implementations must be safe for concurrent use.
type InstructionStore interface {
	// PutInstruction creates or replaces the summary of an instruction.
	PutInstruction(ctx context.Context, inst *Instruction) error
	GetInstruction(ctx context.Context, id string) (*Instruction, error)
	// ListInstructions returns all instructions, most recently updated first.
	ListInstructions(ctx context.Context) ([]*Instruction, error)
	// DeleteInstruction removes an instruction together with its revisions.
	DeleteInstruction(ctx context.Context, id string) error

	// AddRevision assigns the next revision ID to rev and stores it together
	// with inst in one transaction. inst.LatestRevision and inst.RevisionCount
	// are updated accordingly.
	AddRevision(ctx context.Context, inst *Instruction, rev *Revision) error
	GetRevision(ctx context.Context, id RevisionID) (*Revision, error)
	// ListRevisions returns the revisions of an instruction, newest first.
	ListRevisions(ctx context.Context, instructionID string) ([]*Revision, error)

	Close() error
}
