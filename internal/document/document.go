// Package document holds the instruction document schema: decoding,
// validation and the canonical form stored for every revision.
package document

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is returned by [Decode] when the input is not JSON or a field
// has the wrong JSON type.
var ErrMalformed = errors.New("malformed instruction document")

type Header struct {
	Title          string   `json:"title" validate:"required"`
	DocumentNumber string   `json:"documentNumber" validate:"required"`
	Revision       string   `json:"revision" validate:"required"`
	Date           string   `json:"date" validate:"required"`
	Author         string   `json:"author" validate:"required"`
	Department     string   `json:"department" validate:"required"`
	Category       string   `json:"category" validate:"required"`
	Tags           []string `json:"tags" validate:"required"`
}

type Part struct {
	PartNumber  string  `json:"partNumber" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Quantity    int     `json:"quantity" validate:"gt=0"`
	Unit        string  `json:"unit" validate:"required"`
	Reference   *string `json:"reference,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	ImageURI    *string `json:"imageUri,omitempty"`
}

type Step struct {
	StepNumber  int      `json:"stepNumber" validate:"gt=0"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Duration    *int     `json:"duration,omitempty" validate:"omitempty,gte=0"`
	Warnings    []string `json:"warnings" validate:"required"`
	Tools       []string `json:"tools" validate:"required"`
	PartsUsed   []string `json:"partsUsed" validate:"required"`
	ImageURI    *string  `json:"imageUri,omitempty"`
}

type Approval struct {
	Name string `json:"name" validate:"required"`
	Role string `json:"role" validate:"required"`
	Date string `json:"date" validate:"required"`
}

type Footer struct {
	Approvals          []Approval `json:"approvals" validate:"required,dive"`
	Notes              *string    `json:"notes,omitempty"`
	References         *string    `json:"references,omitempty"`
	ContactInformation *string    `json:"contactInformation,omitempty"`
}

type ChangeLogEntry struct {
	Revision    string   `json:"revision" validate:"required"`
	Date        string   `json:"date" validate:"required"`
	Author      string   `json:"author" validate:"required"`
	Description string   `json:"description" validate:"required"`
	ApprovedBy  *string  `json:"approvedBy,omitempty"`
	Sections    []string `json:"sections" validate:"required"`
}

// Instruction is a complete instruction document. Field order is the order
// used by [Canonical].
type Instruction struct {
	Header    Header           `json:"header"`
	Parts     []Part           `json:"parts" validate:"required,dive"`
	Steps     []Step           `json:"steps" validate:"required,dive"`
	Footer    Footer           `json:"footer"`
	ChangeLog []ChangeLogEntry `json:"changeLog" validate:"required,min=1,dive"`
}

// Latest returns the change log entry describing the current revision.
func (i *Instruction) Latest() ChangeLogEntry {
	if len(i.ChangeLog) == 0 {
		return ChangeLogEntry{}
	}
	return i.ChangeLog[0]
}

// Decode parses and validates raw. Unknown fields are ignored.
func Decode(raw []byte) (*Instruction, error) {
	var inst Instruction
	if err := json.Unmarshal(raw, &inst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return &inst, nil
}

// Canonical returns the JSON text stored for a revision of inst.
func Canonical(inst *Instruction) ([]byte, error) {
	return json.Marshal(inst)
}
