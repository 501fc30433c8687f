package store

import (
	"fmt"
	"slices"
	"strconv"
	"time"
)

// RevisionID is assigned by the store and increases monotonically across all
// instructions. Zero means "no revision".
type RevisionID uint64

func (id RevisionID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// ParseRevisionID parses the hexadecimal form produced by [RevisionID.String].
func ParseRevisionID(s string) (RevisionID, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRevision, s)
	}
	return RevisionID(v), nil
}

func (id RevisionID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *RevisionID) UnmarshalText(b []byte) error {
	v, err := strconv.ParseUint(string(b), 16, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidRevision, b)
	}
	*id = RevisionID(v)
	return nil
}

// Instruction is the stored summary of an instruction document. The document
// itself lives in the content of its revisions.
type Instruction struct {
	ID             string     `msgpack:"i" json:"id"`
	Title          string     `msgpack:"t" json:"title"`
	DocumentNumber string     `msgpack:"n" json:"documentNumber"`
	Revision       string     `msgpack:"r" json:"revision"`
	Date           string     `msgpack:"d" json:"date"`
	Author         string     `msgpack:"a" json:"author"`
	Department     string     `msgpack:"dp" json:"department"`
	Category       string     `msgpack:"c" json:"category"`
	Tags           []string   `msgpack:"tg,omitempty" json:"tags"`
	CreatedAt      time.Time  `msgpack:"ca" json:"createdAt"`
	UpdatedAt      time.Time  `msgpack:"ua" json:"updatedAt"`
	LatestRevision RevisionID `msgpack:"lr" json:"latestRevisionId"`
	RevisionCount  int        `msgpack:"rc" json:"revisionCount"`
}

// Revision is an immutable snapshot of an instruction document.
type Revision struct {
	ID            RevisionID `msgpack:"i" json:"id"`
	InstructionID string     `msgpack:"o" json:"instructionId"`
	Revision      string     `msgpack:"r" json:"revision"`
	Date          string     `msgpack:"d" json:"date"`
	Author        string     `msgpack:"a" json:"author"`
	Description   string     `msgpack:"ds" json:"description"`
	ApprovedBy    string     `msgpack:"ab,omitempty" json:"approvedBy,omitempty"`
	Sections      []string   `msgpack:"s,omitempty" json:"sections"`
	CreatedAt     time.Time  `msgpack:"ca" json:"createdAt"`
	// Content is the full document as JSON text.
	Content string `msgpack:"c" json:"content"`
}

// SortInstructions orders instructions by UpdatedAt, newest first.
func SortInstructions(list []*Instruction) {
	slices.SortStableFunc(list, func(a, b *Instruction) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
}
