package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/loog-project/instrux/internal/store"
	"github.com/loog-project/instrux/pkg/diffmap"
	"github.com/loog-project/instrux/pkg/jsonvalue"
)

// RevisionMeta identifies one side of a comparison.
type RevisionMeta struct {
	ID            store.RevisionID `json:"id"`
	InstructionID string           `json:"instructionId"`
	Revision      string           `json:"revision"`
	Date          string           `json:"date"`
	Author        string           `json:"author"`
}

func metaOf(rev *store.Revision) RevisionMeta {
	return RevisionMeta{
		ID:            rev.ID,
		InstructionID: rev.InstructionID,
		Revision:      rev.Revision,
		Date:          rev.Date,
		Author:        rev.Author,
	}
}

// Comparison is the outcome of comparing two stored revisions.
type Comparison struct {
	OldRevision RevisionMeta    `json:"oldRevision"`
	NewRevision RevisionMeta    `json:"newRevision"`
	Diff        *diffmap.Result `json:"diff"`
	Stats       diffmap.Stats   `json:"stats"`

	// parsed contents, used by renderers that need the full documents
	Old *jsonvalue.Value `json:"-"`
	New *jsonvalue.Value `json:"-"`
}

// WithDiff returns a copy of c carrying d, with Stats recomputed.
func (c *Comparison) WithDiff(d *diffmap.Result) *Comparison {
	out := *c
	out.Diff = d
	out.Stats = d.Stats()
	return &out
}

// Compare loads two revisions and diffs their content.
//
// It fails with [ErrMissingRevisionID] if an ID is zero, with an error
// matching [ErrRevisionNotFound] if a revision does not exist, and with an
// *[InvalidContentError] if a stored content is not valid JSON. In all of
// these cases the contents are never compared. Identical contents yield an
// empty, non-nil diff.
func (s *DocumentService) Compare(ctx context.Context, oldID, newID store.RevisionID) (*Comparison, error) {
	if oldID == 0 || newID == 0 {
		return nil, ErrMissingRevisionID
	}
	oldRev, err := s.Revision(ctx, oldID)
	if err != nil {
		return nil, err
	}
	newRev, err := s.Revision(ctx, newID)
	if err != nil {
		return nil, err
	}

	oldValue, err := s.content(oldRev, SideOld)
	if err != nil {
		return nil, err
	}
	newValue, err := s.content(newRev, SideNew)
	if err != nil {
		return nil, err
	}

	result := diffmap.Diff(oldValue, newValue)
	diffEntries.Observe(float64(result.Len()))
	log.Debug().
		Stringer("old", oldID).
		Stringer("new", newID).
		Int("entries", result.Len()).
		Msg("Compared revisions")

	return &Comparison{
		OldRevision: metaOf(oldRev),
		NewRevision: metaOf(newRev),
		Diff:        result,
		Stats:       result.Stats(),
		Old:         oldValue,
		New:         newValue,
	}, nil
}

// CompareDocuments diffs two raw JSON documents. They are not validated
// against the instruction schema.
func (s *DocumentService) CompareDocuments(oldRaw, newRaw []byte) (*diffmap.Result, error) {
	oldValue, err := jsonvalue.Parse(oldRaw)
	if err != nil {
		return nil, &InvalidContentError{Side: SideOld, Err: err}
	}
	newValue, err := jsonvalue.Parse(newRaw)
	if err != nil {
		return nil, &InvalidContentError{Side: SideNew, Err: err}
	}
	return diffmap.Diff(oldValue, newValue), nil
}

// content returns the parsed content of rev, through the cache.
func (s *DocumentService) content(rev *store.Revision, side Side) (*jsonvalue.Value, error) {
	if s.cache != nil {
		if v := s.cache.get(rev.ID); v != nil {
			cacheLookups.WithLabelValues("hit").Inc()
			return v, nil
		}
		cacheLookups.WithLabelValues("miss").Inc()
	}
	v, err := jsonvalue.ParseString(rev.Content)
	if err != nil {
		return nil, &InvalidContentError{Side: side, RevisionID: rev.ID, Err: err}
	}
	if s.cache != nil {
		s.cache.set(rev.ID, v)
	}
	return v, nil
}
