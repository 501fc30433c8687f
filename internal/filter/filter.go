// Package filter selects diff entries with boolean expressions such as
//
//	Under("steps") && !Added()
//	In("header", "footer") || Depth > 3
//
// Expressions are compiled with expr-lang against [EntryEnv].
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/loog-project/instrux/pkg/diffmap"
)

// ErrInvalidExpression is returned when an expression does not compile.
var ErrInvalidExpression = errors.New("invalid filter expression")

// EntryEnv is the environment an expression is evaluated in, one per entry.
type EntryEnv struct {
	Path    string
	Section string
	Op      string
	Depth   int
	// Old and New hold the plain Go form of each side; nil if the side is
	// absent or null, see HasOld / HasNew.
	Old         any
	New         any
	HasOld      bool
	HasNew      bool
	TypeChanged bool
}

// NewEntryEnv builds the environment for e.
func NewEntryEnv(e diffmap.Entry) EntryEnv {
	return EntryEnv{
		Path:        e.Path,
		Section:     e.Section(),
		Op:          e.Op().String(),
		Depth:       e.Depth(),
		Old:         e.Old.Interface(),
		New:         e.New.Interface(),
		HasOld:      e.Old != nil,
		HasNew:      e.New != nil,
		TypeChanged: e.TypeChanged(),
	}
}

func (e EntryEnv) All() bool {
	return true
}

func (e EntryEnv) None() bool {
	return false
}

// Under reports whether the entry is at or below one of the given paths.
func (e EntryEnv) Under(prefixes ...string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if p == "" || e.Path == p ||
			strings.HasPrefix(e.Path, p+".") || strings.HasPrefix(e.Path, p+"[") {
			return true
		}
	}
	return false
}

// In reports whether the entry belongs to one of the given sections.
func (e EntryEnv) In(sections ...string) bool {
	if len(sections) == 0 {
		return true
	}
	for _, s := range sections {
		if s == e.Section {
			return true
		}
	}
	return false
}

func (e EntryEnv) Added() bool {
	return e.Op == diffmap.Added.String()
}

func (e EntryEnv) Removed() bool {
	return e.Op == diffmap.Removed.String()
}

func (e EntryEnv) Modified() bool {
	return e.Op == diffmap.Modified.String()
}

// Program is a compiled filter expression.
type Program struct {
	source  string
	program *vm.Program
}

// Compile compiles source. An empty source matches every entry.
func Compile(source string) (*Program, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return &Program{}, nil
	}
	prog, err := expr.Compile(source, expr.Env(EntryEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	return &Program{source: source, program: prog}, nil
}

func (p *Program) String() string {
	return p.source
}

// Match evaluates the program for one entry.
func (p *Program) Match(e diffmap.Entry) (bool, error) {
	if p == nil || p.program == nil {
		return true, nil
	}
	out, err := expr.Run(p.program, NewEntryEnv(e))
	if err != nil {
		return false, fmt.Errorf("filter %q on %s: %w", p.source, e.Path, err)
	}
	return out.(bool), nil
}

// Apply returns the entries of result matching the program, in order.
func (p *Program) Apply(result *diffmap.Result) (*diffmap.Result, error) {
	if p == nil || p.program == nil {
		return result, nil
	}
	var runErr error
	out := result.Filter(func(e diffmap.Entry) bool {
		if runErr != nil {
			return false
		}
		ok, err := p.Match(e)
		if err != nil {
			runErr = err
			return false
		}
		return ok
	})
	if runErr != nil {
		return nil, runErr
	}
	return out, nil
}
