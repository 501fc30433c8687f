package diffmap

import (
	"errors"
	"fmt"

	"github.com/loog-project/instrux/pkg/jsonvalue"
)

// ErrPathMismatch is returned by [Apply] when an entry addresses a location
// that does not exist in the base value.
var ErrPathMismatch = errors.New("path does not match base value")

// Apply returns the value obtained by writing every entry of [chg] into
// [base]: the New side is set at the entry's location, or the location is
// removed when New is absent. base is not modified.
//
//	old := jsonvalue.MustParse(`{"a":1,"b":{"c":false}}`)
//	cur := jsonvalue.MustParse(`{"a":1,"b":{"c":true}}`)
//	restored, _ := diffmap.Apply(old, diffmap.Diff(old, cur)) // equals cur
func Apply(base *jsonvalue.Value, chg *Result) (*jsonvalue.Value, error) {
	out := base
	for _, e := range chg.Entries() {
		var err error
		out, err = applyRecursive(out, e.Segments, e.New)
		if err != nil {
			return nil, fmt.Errorf("apply %q: %w", e.Path, err)
		}
	}
	return out, nil
}

// applyRecursive rebuilds the containers along segments. A nil return means
// the location was deleted.
func applyRecursive(dst *jsonvalue.Value, segments []Segment, value *jsonvalue.Value) (*jsonvalue.Value, error) {
	if len(segments) == 0 {
		return value, nil
	}
	seg := segments[0]

	if seg.IsIndex {
		if dst.Kind() != jsonvalue.Array || seg.Index >= dst.Len() {
			return nil, ErrPathMismatch
		}
		child, err := applyRecursive(dst.Index(seg.Index), segments[1:], value)
		if err != nil {
			return nil, err
		}
		if child == nil {
			// array elements are never removed one by one
			return nil, ErrPathMismatch
		}
		return dst.WithElement(seg.Index, child), nil
	}

	if dst.Kind() != jsonvalue.Object {
		return nil, ErrPathMismatch
	}
	current, present := dst.Get(seg.Key)
	if !present && len(segments) > 1 {
		return nil, ErrPathMismatch
	}
	child, err := applyRecursive(current, segments[1:], value)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return dst.WithoutMember(seg.Key), nil
	}
	return dst.WithMember(seg.Key, child), nil
}
