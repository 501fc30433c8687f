package diffmap

import (
	"slices"

	"github.com/loog-project/instrux/pkg/jsonvalue"
)

// Diff returns the set of differences between [oldValue] and [newValue].
//
// If both are equal the result is empty, never nil, so callers can tell
// "no differences" apart from a failed comparison. Neither input is modified.
func Diff(oldValue, newValue *jsonvalue.Value) *Result {
	w := walker{out: newResult()}
	w.diff(oldValue, newValue)
	return w.out
}

// walker carries the result and the segments of the current path.
type walker struct {
	out      *Result
	segments []Segment
}

// record adds an entry at the current path.
func (w *walker) record(oldValue, newValue *jsonvalue.Value) {
	w.out.add(Entry{
		Path:     FormatPath(w.segments),
		Segments: slices.Clone(w.segments),
		Old:      oldValue,
		New:      newValue,
	})
}

func (w *walker) push(s Segment) {
	w.segments = append(w.segments, s)
}

func (w *walker) pop() {
	w.segments = w.segments[:len(w.segments)-1]
}

// diff recursively compares two values found at the current path.
func (w *walker) diff(oldValue, newValue *jsonvalue.Value) {
	switch {
	case oldValue.Kind() == jsonvalue.Array && newValue.Kind() == jsonvalue.Array:
		if oldValue.Len() != newValue.Len() {
			// reported wholesale, elements are not aligned
			w.record(oldValue, newValue)
			return
		}
		for i := range newValue.Len() {
			w.push(IndexSegment(i))
			w.diff(oldValue.Index(i), newValue.Index(i))
			w.pop()
		}

	case oldValue.Kind() == jsonvalue.Object && newValue.Kind() == jsonvalue.Object:
		for _, key := range mergeKeys(oldValue, newValue) {
			w.push(KeySegment(key))
			w.diffMember(oldValue, newValue, key)
			w.pop()
		}

	default:
		if !oldValue.Equal(newValue) {
			w.record(oldValue, newValue)
		}
	}
}

func (w *walker) diffMember(oldObject, newObject *jsonvalue.Value, key string) {
	valueOld, inOld := oldObject.Get(key)
	valueNew, inNew := newObject.Get(key)

	switch {
	case inOld && inNew:
		if valueOld.Kind() != valueNew.Kind() {
			// type change, no structural comparison
			w.record(valueOld, valueNew)
			return
		}
		if valueOld.IsContainer() {
			w.diff(valueOld, valueNew)
			return
		}
		if !valueOld.Equal(valueNew) {
			w.record(valueOld, valueNew)
		}

	case inOld: // the key was removed
		w.record(valueOld, nil)

	default: // the key was added
		w.record(nil, valueNew)
	}
}

// mergeKeys returns the keys of a in stored order followed by the keys only
// present in b, in b's stored order.
func mergeKeys(a, b *jsonvalue.Value) []string {
	keys := a.Keys()
	for _, k := range b.Keys() {
		if !a.Has(k) {
			keys = append(keys, k)
		}
	}
	return keys
}
