package diffmap_test

import (
	"encoding/json"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loog-project/instrux/pkg/diffmap"
	"github.com/loog-project/instrux/pkg/jsonvalue"
)

var parse = jsonvalue.MustParse

// flatten turns a result into path -> [old, new] JSON strings, "-" for absent.
func flatten(r *diffmap.Result) map[string][2]string {
	out := make(map[string][2]string, r.Len())
	for _, e := range r.Entries() {
		pair := [2]string{"-", "-"}
		if e.Old != nil {
			pair[0] = e.Old.String()
		}
		if e.New != nil {
			pair[1] = e.New.String()
		}
		out[e.Path] = pair
	}
	return out
}

func TestDiffExamples(t *testing.T) {
	cases := []struct {
		name     string
		old, new string
		want     map[string][2]string
	}{
		{
			name: "added key",
			old:  `{"a":1}`, new: `{"a":1,"b":2}`,
			want: map[string][2]string{"b": {"-", "2"}},
		},
		{
			name: "removed key",
			old:  `{"a":1,"b":2}`, new: `{"a":1}`,
			want: map[string][2]string{"b": {"2", "-"}},
		},
		{
			name: "primitive change",
			old:  `{"a":1}`, new: `{"a":2}`,
			want: map[string][2]string{"a": {"1", "2"}},
		},
		{
			name: "nested path",
			old:  `{"steps":[{"title":"x"}]}`, new: `{"steps":[{"title":"y"}]}`,
			want: map[string][2]string{"steps[0].title": {`"x"`, `"y"`}},
		},
		{
			name: "array length mismatch is reported wholesale",
			old:  `{"tags":["a"]}`, new: `{"tags":["a","b"]}`,
			want: map[string][2]string{"tags": {`["a"]`, `["a","b"]`}},
		},
		{
			name: "type change short-circuits",
			old:  `{"x":"5"}`, new: `{"x":5}`,
			want: map[string][2]string{"x": {`"5"`, "5"}},
		},
		{
			name: "object replaced by array",
			old:  `{"x":{"a":1}}`, new: `{"x":[1]}`,
			want: map[string][2]string{"x": {`{"a":1}`, "[1]"}},
		},
		{
			name: "null versus value",
			old:  `{"x":null}`, new: `{"x":{}}`,
			want: map[string][2]string{"x": {"null", "{}"}},
		},
		{
			name: "explicit null added",
			old:  `{}`, new: `{"x":null}`,
			want: map[string][2]string{"x": {"-", "null"}},
		},
		{
			name: "root primitives",
			old:  `1`, new: `"1"`,
			want: map[string][2]string{"": {"1", `"1"`}},
		},
		{
			name: "root array elements",
			old:  `[1,{"a":true}]`, new: `[2,{"a":false}]`,
			want: map[string][2]string{"[0]": {"1", "2"}, "[1].a": {"true", "false"}},
		},
		{
			name: "root kinds differ",
			old:  `{"a":1}`, new: `[1]`,
			want: map[string][2]string{"": {`{"a":1}`, "[1]"}},
		},
		{
			name: "equal lengths recurse into elements",
			old:  `{"steps":[{"warnings":["a","b"]}]}`, new: `{"steps":[{"warnings":["a","c"]}]}`,
			want: map[string][2]string{"steps[0].warnings[1]": {`"b"`, `"c"`}},
		},
		{
			name: "numbers compare by value",
			old:  `{"q":1.0}`, new: `{"q":1}`,
			want: map[string][2]string{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := diffmap.Diff(parse(tc.old), parse(tc.new))
			assert.Equal(t, tc.want, flatten(got))
		})
	}
}

func TestDiffKeyOrder(t *testing.T) {
	oldDoc := parse(`{"c":1,"a":1,"gone":true,"b":{"y":1,"x":1}}`)
	newDoc := parse(`{"new2":0,"a":2,"b":{"x":2,"z":0,"y":2},"c":2,"new1":0}`)

	got := diffmap.Diff(oldDoc, newDoc)
	assert.Equal(t, []string{"c", "a", "gone", "b.y", "b.x", "b.z", "new2", "new1"}, got.Paths())
}

func TestDiffAmbiguousKeysDoNotCollide(t *testing.T) {
	oldDoc := parse(`{"a.b":1,"a":{"b":1},"":1,"q\"":1}`)
	newDoc := parse(`{"a.b":2,"a":{"b":2},"":2,"q\"":2}`)

	got := diffmap.Diff(oldDoc, newDoc)
	assert.Equal(t, []string{`["a.b"]`, "a.b", `[""]`, `["q\""]`}, got.Paths())
	assert.Equal(t, 4, got.Len())
}

func TestDiffReflexive(t *testing.T) {
	for _, doc := range []string{
		`null`, `true`, `0`, `"s"`, `[]`, `{}`,
		`{"a":[1,[2,[3,{"b":null}]]],"c":{"d":{"e":"f"}}}`,
		sampleDocument,
	} {
		v := parse(doc)
		r := diffmap.Diff(v, v)
		assert.True(t, r.IsEmpty(), doc)
		assert.True(t, diffmap.Diff(v, v.Clone()).IsEmpty(), "deep copy of %s", doc)
	}
}

func TestDiffDetectionIsSymmetric(t *testing.T) {
	docs := []string{
		`null`, `1`, `"1"`, `[]`, `[1]`, `[1,2]`, `{}`, `{"a":null}`, `{"a":1}`,
		`{"a":[1,{"b":2}]}`, `{"a":[1,{"b":3}]}`, `{"b":1}`,
	}
	for _, x := range docs {
		for _, y := range docs {
			vx, vy := parse(x), parse(y)
			if vx.Equal(vy) {
				continue
			}
			assert.Falsef(t, diffmap.Diff(vx, vy).IsEmpty(), "%s -> %s", x, y)
			assert.Falsef(t, diffmap.Diff(vy, vx).IsEmpty(), "%s -> %s", y, x)
		}
	}
}

func TestDiffDoesNotMutateInputs(t *testing.T) {
	oldDoc := parse(sampleDocument)
	newDoc := parse(`{"header":{"title":"changed"}}`)
	before := oldDoc.String()
	_ = diffmap.Diff(oldDoc, newDoc)
	assert.Equal(t, before, oldDoc.String())
}

func TestDiffConcurrentCallsAreIndependent(t *testing.T) {
	oldDoc := parse(sampleDocument)
	newDoc := parse(`{"header":{"title":"other"},"parts":[]}`)
	want := diffmap.Diff(oldDoc, newDoc).Paths()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, diffmap.Diff(oldDoc, newDoc).Paths())
		}()
	}
	wg.Wait()
}

func TestEntryMetadata(t *testing.T) {
	r := diffmap.Diff(
		parse(`{"header":{"tags":["a"],"title":"x"},"footer":{"notes":"n"}}`),
		parse(`{"header":{"tags":["a","b"],"title":5},"footer":{},"extra":1}`),
	)

	tags, ok := r.Get("header.tags")
	require.True(t, ok)
	assert.Equal(t, diffmap.Modified, tags.Op())
	assert.False(t, tags.TypeChanged())
	assert.Equal(t, "header", tags.Section())
	assert.Equal(t, 2, tags.Depth())

	title, _ := r.Get("header.title")
	assert.True(t, title.TypeChanged())

	notes, _ := r.Get("footer.notes")
	assert.Equal(t, diffmap.Removed, notes.Op())

	extra, _ := r.Get("extra")
	assert.Equal(t, diffmap.Added, extra.Op())

	assert.Equal(t, diffmap.Stats{Added: 1, Removed: 1, Modified: 2}, r.Stats())

	groups := r.Sections()
	require.Len(t, groups, 3)
	assert.Equal(t, "header", groups[0].Section)
	assert.Len(t, groups[0].Entries, 2)
	assert.Equal(t, "footer", groups[1].Section)
	assert.Equal(t, "extra", groups[2].Section)

	_, ok = r.Get("header")
	assert.False(t, ok)
}

func TestSectionsGroupArrayElementsUnderTheirKey(t *testing.T) {
	r := diffmap.Diff(
		parse(`{"steps":[{"title":"a"},{"title":"b"}],"tools":{"x":1}}`),
		parse(`{"steps":[{"title":"A"},{"title":"B"}],"tools":{"x":2}}`),
	)

	first, ok := r.Get("steps[0].title")
	require.True(t, ok)
	assert.Equal(t, "steps", first.Section())

	groups := r.Sections()
	require.Len(t, groups, 2)
	assert.Equal(t, "steps", groups[0].Section)
	assert.Len(t, groups[0].Entries, 2)
	assert.Equal(t, "tools", groups[1].Section)
}

func TestResultFilter(t *testing.T) {
	r := diffmap.Diff(parse(`{"a":1,"b":1,"c":1}`), parse(`{"a":2,"b":1,"c":2}`))
	filtered := r.Filter(func(e diffmap.Entry) bool { return e.Path != "a" })
	assert.Equal(t, []string{"c"}, filtered.Paths())
	assert.Equal(t, 2, r.Len(), "filter does not modify the source")
}

func TestResultJSON(t *testing.T) {
	r := diffmap.Diff(
		parse(`{"keep":1,"gone":null,"type":"5","list":[1]}`),
		parse(`{"keep":1,"type":5,"list":[1,2],"added":null}`),
	)
	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t,
		`{"gone":{"op":"removed","old":null},`+
			`"type":{"op":"modified","old":"5","new":5},`+
			`"list":{"op":"modified","old":[1],"new":[1,2]},`+
			`"added":{"op":"added","new":null}}`,
		string(out))

	empty, err := json.Marshal(diffmap.Diff(parse(`{"a":1}`), parse(`{"a":1}`)))
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(empty))

	var nilResult *diffmap.Result
	out, err = json.Marshal(nilResult)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestFormatPath(t *testing.T) {
	assert.Equal(t, "", diffmap.FormatPath(nil))
	assert.Equal(t, "[3]", diffmap.FormatPath([]diffmap.Segment{diffmap.IndexSegment(3)}))
	assert.Equal(t, `steps[0].warnings[1]`, diffmap.FormatPath([]diffmap.Segment{
		diffmap.KeySegment("steps"), diffmap.IndexSegment(0),
		diffmap.KeySegment("warnings"), diffmap.IndexSegment(1),
	}))
	assert.Equal(t, `header["a.b"]`, diffmap.FormatPath([]diffmap.Segment{
		diffmap.KeySegment("header"), diffmap.KeySegment("a.b"),
	}))

	r := diffmap.Diff(
		parse(`{"a":{"b.c":[1,{"":2}]},"x":[0]}`),
		parse(`{"a":{"b.c":[1,{"":3}]},"x":[1]}`),
	)
	assert.Equal(t, []string{`a["b.c"][1][""]`, "x[0]"}, r.Paths())
	for _, e := range r.Entries() {
		assert.Equal(t, e.Path, diffmap.FormatPath(e.Segments))
	}
}

func BenchmarkDiff_Small(b *testing.B) {
	a := parse(`{"a":1,"b":{"c":false}}`)
	bb := parse(`{"a":1,"b":{"c":true}}`)
	for i := 0; i < b.N; i++ {
		_ = diffmap.Diff(a, bb)
	}
}

func BenchmarkDiff_1k(b *testing.B) {
	a, bb := genValues(1000)
	for i := 0; i < b.N; i++ {
		_ = diffmap.Diff(a, bb)
	}
}

// genValues creates two n-member objects with 10 % churn.
func genValues(n int) (*jsonvalue.Value, *jsonvalue.Value) {
	a := make([]jsonvalue.Member, 0, n)
	b := make([]jsonvalue.Member, 0, n)
	for i := 0; i < n; i++ {
		key := "k" + strconv.Itoa(i)
		a = append(a, jsonvalue.M(key, jsonvalue.NumberValue(float64(i))))
		if i%10 == 0 {
			b = append(b, jsonvalue.M(key, jsonvalue.NumberValue(float64(i+1))))
		} else {
			b = append(b, jsonvalue.M(key, jsonvalue.NumberValue(float64(i))))
		}
	}
	return jsonvalue.ObjectValue(a...), jsonvalue.ObjectValue(b...)
}

const sampleDocument = `{
  "header": {"title": "Sample Instruction", "documentNumber": "INS-001", "revision": "A",
    "date": "2023-06-15", "author": "John Doe", "department": "Engineering",
    "category": "Assembly", "tags": ["assembly", "manufacturing", "quality"]},
  "parts": [
    {"partNumber": "P-10045", "description": "Main Frame Assembly", "quantity": 1, "unit": "pcs"},
    {"partNumber": "P-10047", "description": "Mounting Bracket", "quantity": 4, "unit": "pcs", "notes": ""}
  ],
  "steps": [
    {"stepNumber": 1, "title": "Prepare the Main Frame", "description": "Unpack.", "duration": 5,
     "warnings": ["Wear gloves"], "tools": ["Scissors", "Gloves"], "partsUsed": ["P-10045"]}
  ],
  "footer": {"approvals": [{"name": "Jane Smith", "role": "Engineering Manager", "date": "2023-06-10"}]},
  "changeLog": [{"revision": "A", "date": "2023-06-15", "author": "John Doe",
    "description": "Initial release", "sections": ["All"]}]
}`
