// Package diffmap computes the flat, path-addressed set of differences
// between two JSON values.
//
// The result maps a path such as `steps[0].warnings[1]` to the pair of
// values found at that location in the old and the new document. A side is
// nil when the location does not exist on that side, which keeps "key is
// missing" apart from "key holds null".
//
// Arrays of different length are reported as a single entry carrying both
// complete arrays; elements are only compared pairwise when the lengths match.
package diffmap

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/loog-project/instrux/pkg/jsonvalue"
)

// Op classifies an [Entry].
type Op uint8

const (
	Modified Op = iota
	Added
	Removed
)

func (o Op) String() string {
	switch o {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "modified"
	}
}

// Entry is the before/after pair at one path.
type Entry struct {
	Path     string
	Segments []Segment
	// Old is nil if the path does not exist in the old value.
	Old *jsonvalue.Value
	// New is nil if the path does not exist in the new value.
	New *jsonvalue.Value
}

func (e Entry) Op() Op {
	switch {
	case e.Old == nil && e.New != nil:
		return Added
	case e.New == nil && e.Old != nil:
		return Removed
	default:
		return Modified
	}
}

// TypeChanged reports whether both sides are present but of different JSON kinds.
func (e Entry) TypeChanged() bool {
	return e.Old != nil && e.New != nil && e.Old.Kind() != e.New.Kind()
}

// Section is the first path segment, used to group entries for display.
// It is empty for an entry at the root.
func (e Entry) Section() string {
	if len(e.Segments) == 0 {
		return ""
	}
	return e.Segments[0].String()
}

// Depth is the number of segments in the path.
func (e Entry) Depth() int {
	return len(e.Segments)
}

type entryJSON struct {
	Op  string           `json:"op"`
	Old *jsonvalue.Value `json:"old,omitempty"`
	New *jsonvalue.Value `json:"new,omitempty"`
}

// MarshalJSON encodes the entry as {"op", "old", "new"}. An absent side is
// omitted; an explicit JSON null is written as null.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{Op: e.Op().String(), Old: e.Old, New: e.New})
}

// Stats counts the entries of a [Result] per operation.
type Stats struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
}

// Result is the ordered set of entries produced by one comparison.
// Entries are kept in discovery order and their paths are unique.
type Result struct {
	entries []Entry
	byPath  map[string]int
}

func newResult() *Result {
	return &Result{byPath: make(map[string]int)}
}

func (r *Result) add(e Entry) {
	if pos, exists := r.byPath[e.Path]; exists {
		r.entries[pos] = e
		return
	}
	r.byPath[e.Path] = len(r.entries)
	r.entries = append(r.entries, e)
}

func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

func (r *Result) IsEmpty() bool {
	return r.Len() == 0
}

// Entries returns a copy of the entries in discovery order.
func (r *Result) Entries() []Entry {
	if r == nil {
		return nil
	}
	return slices.Clone(r.entries)
}

// Get returns the entry recorded at path.
func (r *Result) Get(path string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	pos, ok := r.byPath[path]
	if !ok {
		return Entry{}, false
	}
	return r.entries[pos], true
}

// Paths returns the entry paths in discovery order.
func (r *Result) Paths() []string {
	paths := make([]string, 0, r.Len())
	for _, e := range r.Entries() {
		paths = append(paths, e.Path)
	}
	return paths
}

// Filter returns a new Result with the entries for which keep returns true.
func (r *Result) Filter(keep func(Entry) bool) *Result {
	out := newResult()
	for _, e := range r.Entries() {
		if keep(e) {
			out.add(e)
		}
	}
	return out
}

func (r *Result) Stats() Stats {
	var s Stats
	for _, e := range r.Entries() {
		switch e.Op() {
		case Added:
			s.Added++
		case Removed:
			s.Removed++
		default:
			s.Modified++
		}
	}
	return s
}

// Group is the set of entries sharing a [Entry.Section].
type Group struct {
	Section string
	Entries []Entry
}

// Sections groups the entries by their first path segment. Groups appear in
// the order their first entry was discovered.
func (r *Result) Sections() []Group {
	var groups []Group
	pos := make(map[string]int)
	for _, e := range r.Entries() {
		s := e.Section()
		i, ok := pos[s]
		if !ok {
			i = len(groups)
			pos[s] = i
			groups = append(groups, Group{Section: s})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// MarshalJSON encodes the result as a JSON object keyed by path, in
// discovery order. An empty or nil result encodes as {}.
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Path)
		if err != nil {
			return nil, err
		}
		val, err := e.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
