package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/loog-project/instrux/internal/document"
	"github.com/loog-project/instrux/internal/store"
)

var (
	ErrInstructionNotFound = fmt.Errorf("instruction %w", store.ErrNotFound)
	ErrRevisionNotFound    = fmt.Errorf("revision %w", store.ErrNotFound)
	ErrMissingRevisionID   = errors.New("both revision ids are required")
	ErrInvalidID           = errors.New("invalid instruction id")
)

// Side names one of the two revisions of a comparison.
type Side string

const (
	SideOld Side = "old"
	SideNew Side = "new"
)

// InvalidContentError is returned when the stored content of a revision is
// not valid JSON. The comparison is not attempted.
type InvalidContentError struct {
	Side       Side
	RevisionID store.RevisionID
	Err        error
}

func (e *InvalidContentError) Error() string {
	if e.RevisionID == 0 {
		return fmt.Sprintf("invalid JSON in %s document: %v", e.Side, e.Err)
	}
	return fmt.Sprintf("invalid JSON content in %s revision %s: %v", e.Side, e.RevisionID, e.Err)
}

func (e *InvalidContentError) Unwrap() error {
	return e.Err
}

// Options tunes a [DocumentService].
type Options struct {
	// CacheTTL is the base lifetime of a parsed revision in the content
	// cache. Zero uses the default.
	CacheTTL time.Duration
	// DisableCache turns the content cache off.
	DisableCache bool
	// Now is used for timestamps, time.Now if nil.
	Now func() time.Time
}

// DocumentService manages instructions and compares their revisions.
type DocumentService struct {
	store store.InstructionStore
	cache *contentCache
	now   func() time.Time

	// serializes writers so summaries and revision counts stay consistent
	writeMu sync.Mutex
}

// New creates a DocumentService on top of st. The caller owns st; [Close]
// only stops the cache.
func New(st store.InstructionStore, opts Options) *DocumentService {
	s := &DocumentService{store: st, now: opts.Now}
	if s.now == nil {
		s.now = time.Now
	}
	if !opts.DisableCache {
		s.cache = newContentCache(opts.CacheTTL)
	}
	return s
}

// Close stops the cache janitor.
func (s *DocumentService) Close() error {
	if s.cache != nil {
		s.cache.close()
	}
	return nil
}

// Create validates raw and stores it as a new instruction with its first revision.
func (s *DocumentService) Create(ctx context.Context, raw []byte) (*store.Instruction, *store.Revision, error) {
	return s.create(ctx, uuid.NewString(), raw)
}

// Import stores raw under id, creating the instruction if it does not exist
// and appending a revision otherwise.
func (s *DocumentService) Import(ctx context.Context, id string, raw []byte) (*store.Instruction, *store.Revision, error) {
	if err := checkID(id); err != nil {
		return nil, nil, err
	}
	doc, content, err := decode(raw)
	if err != nil {
		return nil, nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	inst, err := s.store.GetInstruction(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return s.insert(ctx, id, doc, content)
	case err != nil:
		return nil, nil, err
	}
	return s.appendRevision(ctx, inst, doc, content)
}

func (s *DocumentService) create(ctx context.Context, id string, raw []byte) (*store.Instruction, *store.Revision, error) {
	doc, content, err := decode(raw)
	if err != nil {
		return nil, nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.insert(ctx, id, doc, content)
}

// Update validates raw, refreshes the summary of instruction id and appends
// a new revision.
func (s *DocumentService) Update(ctx context.Context, id string, raw []byte) (*store.Instruction, *store.Revision, error) {
	doc, content, err := decode(raw)
	if err != nil {
		return nil, nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	inst, err := s.store.GetInstruction(ctx, id)
	if err != nil {
		return nil, nil, instructionErr(id, err)
	}
	return s.appendRevision(ctx, inst, doc, content)
}

// insert stores a new instruction with its first revision. writeMu must be held.
func (s *DocumentService) insert(ctx context.Context, id string, doc *document.Instruction, content string) (*store.Instruction, *store.Revision, error) {
	now := s.now().UTC()
	inst := &store.Instruction{ID: id, CreatedAt: now}
	applyHeader(inst, doc, now)
	rev := newRevision(doc, content, now)
	if err := s.store.AddRevision(ctx, inst, rev); err != nil {
		return nil, nil, fmt.Errorf("failed to store instruction: %w", err)
	}
	log.Info().Str("instruction", inst.ID).Stringer("revision", rev.ID).Msg("Instruction created")
	return inst, rev, nil
}

// appendRevision refreshes the summary of inst and stores a new revision.
// writeMu must be held.
func (s *DocumentService) appendRevision(ctx context.Context, inst *store.Instruction, doc *document.Instruction, content string) (*store.Instruction, *store.Revision, error) {
	now := s.now().UTC()
	applyHeader(inst, doc, now)
	rev := newRevision(doc, content, now)
	if err := s.store.AddRevision(ctx, inst, rev); err != nil {
		return nil, nil, fmt.Errorf("failed to store revision: %w", err)
	}
	log.Info().Str("instruction", inst.ID).Stringer("revision", rev.ID).Msg("Instruction updated")
	return inst, rev, nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*store.Instruction, error) {
	inst, err := s.store.GetInstruction(ctx, id)
	if err != nil {
		return nil, instructionErr(id, err)
	}
	return inst, nil
}

// List returns all instructions, most recently updated first.
func (s *DocumentService) List(ctx context.Context) ([]*store.Instruction, error) {
	return s.store.ListInstructions(ctx)
}

// Delete removes an instruction and all of its revisions.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.store.DeleteInstruction(ctx, id); err != nil {
		return instructionErr(id, err)
	}
	log.Info().Str("instruction", id).Msg("Instruction deleted")
	return nil
}

// Revisions lists the revisions of an instruction, newest first.
func (s *DocumentService) Revisions(ctx context.Context, id string) ([]*store.Revision, error) {
	list, err := s.store.ListRevisions(ctx, id)
	if err != nil {
		return nil, instructionErr(id, err)
	}
	return list, nil
}

func (s *DocumentService) Revision(ctx context.Context, id store.RevisionID) (*store.Revision, error) {
	rev, err := s.store.GetRevision(ctx, id)
	if err != nil {
		return nil, revisionErr(id, err)
	}
	return rev, nil
}

func decode(raw []byte) (*document.Instruction, string, error) {
	doc, err := document.Decode(raw)
	if err != nil {
		return nil, "", err
	}
	content, err := document.Canonical(doc)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode document: %w", err)
	}
	return doc, string(content), nil
}

func applyHeader(inst *store.Instruction, doc *document.Instruction, now time.Time) {
	h := doc.Header
	inst.Title = h.Title
	inst.DocumentNumber = h.DocumentNumber
	inst.Revision = h.Revision
	inst.Date = h.Date
	inst.Author = h.Author
	inst.Department = h.Department
	inst.Category = h.Category
	inst.Tags = h.Tags
	inst.UpdatedAt = now
}

// newRevision describes the revision using the header and the latest change
// log entry.
func newRevision(doc *document.Instruction, content string, now time.Time) *store.Revision {
	latest := doc.Latest()
	rev := &store.Revision{
		Revision:    doc.Header.Revision,
		Date:        doc.Header.Date,
		Author:      doc.Header.Author,
		Description: latest.Description,
		Sections:    latest.Sections,
		CreatedAt:   now,
		Content:     content,
	}
	if latest.ApprovedBy != nil {
		rev.ApprovedBy = *latest.ApprovedBy
	}
	return rev
}

func checkID(id string) error {
	if id == "" || strings.ContainsRune(id, '|') {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func instructionErr(id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrInstructionNotFound, id)
	}
	return err
}

func revisionErr(id store.RevisionID, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrRevisionNotFound, id)
	}
	return err
}
