package diffmap

import (
	"strconv"
	"strings"
)

// Segment is one step of a path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

func KeySegment(key string) Segment {
	return Segment{Key: key}
}

func IndexSegment(i int) Segment {
	return Segment{Index: i, IsIndex: true}
}

// String renders the segment the way it appears at the start of a path.
func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	if needsQuoting(s.Key) {
		return "[" + strconv.Quote(s.Key) + "]"
	}
	return s.Key
}

// appendSegment extends path by one segment. Keys are joined with "." and
// indices with "[i]". Keys that would read as path syntax are written as
// a quoted index, e.g. `header["a.b"]`, so distinct locations never render
// to the same path.
func appendSegment(path string, s Segment) string {
	if s.IsIndex || needsQuoting(s.Key) || path == "" {
		return path + s.String()
	}
	return path + "." + s.Key
}

// FormatPath renders segments into a path string.
func FormatPath(segments []Segment) string {
	var path string
	for _, s := range segments {
		path = appendSegment(path, s)
	}
	return path
}

func needsQuoting(key string) bool {
	return key == "" || strings.ContainsAny(key, `.[]"\`)
}
