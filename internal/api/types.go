package api

import (
	"time"

	"github.com/loog-project/instrux/internal/document"
	"github.com/loog-project/instrux/internal/store"
)

// Error codes returned in [ErrorResponse.Code].
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeMissingParameters   = "MISSING_PARAMETERS"
	CodeInvalidFilter       = "INVALID_FILTER"
	CodeInstructionNotFound = "INSTRUCTION_NOT_FOUND"
	CodeRevisionNotFound    = "REVISION_NOT_FOUND"
	CodeInvalidContent      = "INVALID_CONTENT"
	CodeInternal            = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	// Side names the revision with invalid content ("old" or "new").
	Side    string                `json:"side,omitempty"`
	Details []document.FieldError `json:"details,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// DiffRequest is the body of POST /api/revisions/diff.
type DiffRequest struct {
	OldRevisionID string `json:"oldRevisionId"`
	NewRevisionID string `json:"newRevisionId"`
	Filter        string `json:"filter,omitempty"`
}

// RevisionSummary is a revision without its content.
type RevisionSummary struct {
	ID            store.RevisionID `json:"id"`
	InstructionID string           `json:"instructionId"`
	Revision      string           `json:"revision"`
	Date          string           `json:"date"`
	Author        string           `json:"author"`
	Description   string           `json:"description"`
	ApprovedBy    string           `json:"approvedBy,omitempty"`
	Sections      []string         `json:"sections"`
	CreatedAt     time.Time        `json:"createdAt"`
}

func summarize(rev *store.Revision) RevisionSummary {
	return RevisionSummary{
		ID:            rev.ID,
		InstructionID: rev.InstructionID,
		Revision:      rev.Revision,
		Date:          rev.Date,
		Author:        rev.Author,
		Description:   rev.Description,
		ApprovedBy:    rev.ApprovedBy,
		Sections:      rev.Sections,
		CreatedAt:     rev.CreatedAt,
	}
}

func summarizeAll(list []*store.Revision) []RevisionSummary {
	out := make([]RevisionSummary, 0, len(list))
	for _, rev := range list {
		out = append(out, summarize(rev))
	}
	return out
}

// InstructionDetail is an instruction with its revision history, newest first.
type InstructionDetail struct {
	*store.Instruction
	Revisions []RevisionSummary `json:"revisions"`
}

// SaveResponse is returned after creating or updating an instruction.
type SaveResponse struct {
	Instruction *store.Instruction `json:"instruction"`
	Revision    RevisionSummary    `json:"revision"`
}
