package diffpreview

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// ErrDeltaUnsupported is returned by [RenderDelta] when the documents are not
// both objects or both arrays.
var ErrDeltaUnsupported = errors.New("delta view needs two objects or two arrays")

type DeltaOptions struct {
	Coloring       bool
	ShowArrayIndex bool
}

// RenderDelta renders the whole old document annotated with the changes
// towards the new one. Unlike [Render], arrays are compared element-wise
// with moves and insertions detected.
func RenderDelta(oldRaw, newRaw []byte, opts DeltaOptions) (string, error) {
	var left, right any
	if err := json.Unmarshal(oldRaw, &left); err != nil {
		return "", fmt.Errorf("failed to decode old document: %w", err)
	}
	if err := json.Unmarshal(newRaw, &right); err != nil {
		return "", fmt.Errorf("failed to decode new document: %w", err)
	}

	differ := gojsondiff.New()
	var delta gojsondiff.Diff
	switch l := left.(type) {
	case map[string]any:
		r, ok := right.(map[string]any)
		if !ok {
			return "", ErrDeltaUnsupported
		}
		delta = differ.CompareObjects(l, r)
	case []any:
		r, ok := right.([]any)
		if !ok {
			return "", ErrDeltaUnsupported
		}
		delta = differ.CompareArrays(l, r)
	default:
		return "", ErrDeltaUnsupported
	}

	if !delta.Modified() {
		return NoDifferences, nil
	}

	f := formatter.NewAsciiFormatter(left, formatter.AsciiFormatterConfig{
		ShowArrayIndex: opts.ShowArrayIndex,
		Coloring:       opts.Coloring,
	})
	return f.Format(delta)
}
