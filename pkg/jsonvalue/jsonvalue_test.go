package jsonvalue_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loog-project/instrux/pkg/jsonvalue"
)

func TestParseKeepsMemberOrder(t *testing.T) {
	v, err := jsonvalue.ParseString(`{"zeta":1,"alpha":{"y":true,"b":null},"mid":[3,"x"]}`)
	require.NoError(t, err)

	assert.Equal(t, jsonvalue.Object, v.Kind())
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, v.Keys())

	alpha, ok := v.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, []string{"y", "b"}, alpha.Keys())

	b, ok := alpha.Get("b")
	require.True(t, ok)
	assert.Equal(t, jsonvalue.Null, b.Kind())

	missing, ok := alpha.Get("nope")
	assert.False(t, ok)
	assert.Nil(t, missing)
	assert.Equal(t, jsonvalue.Undefined, missing.Kind())
}

func TestParseDuplicateKeys(t *testing.T) {
	v := jsonvalue.MustParse(`{"a":1,"b":2,"a":3}`)
	assert.Equal(t, []string{"a", "b"}, v.Keys())
	a, _ := v.Get("a")
	assert.Equal(t, float64(3), a.Float())
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{
		"", "   ", "{", `{"a":}`, "[1,]", "nul", `{"a":1} x`,
		"\"\xff\"", "\"\xfe\"", "{\"k\xc3\":1}",
	} {
		_, err := jsonvalue.ParseString(in)
		assert.Truef(t, errors.Is(err, jsonvalue.ErrInvalidJSON), "input %q: got %v", in, err)
	}
}

func TestParseScalars(t *testing.T) {
	assert.Equal(t, jsonvalue.Null, jsonvalue.MustParse("null").Kind())
	assert.True(t, jsonvalue.MustParse("true").Bool())
	assert.Equal(t, 12.5, jsonvalue.MustParse(" 12.5 ").Float())
	assert.Equal(t, "é\n", jsonvalue.MustParse(`"é\n"`).Str())
}

func TestMarshalRoundTripKeepsOrderAndLiterals(t *testing.T) {
	in := `{"b":1.50,"a":[true,null,"s"],"c":{"z":{},"y":[]}}`
	v := jsonvalue.MustParse(in)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestEqual(t *testing.T) {
	a := jsonvalue.MustParse(`{"x":[1,2,{"k":"v"}],"y":null}`)
	b := jsonvalue.MustParse(`{"y":null,"x":[1.0,2,{"k":"v"}]}`)
	assert.True(t, a.Equal(b), "member order and number spelling are not significant")

	assert.False(t, a.Equal(jsonvalue.MustParse(`{"x":[1,2,{"k":"w"}],"y":null}`)))
	assert.False(t, a.Equal(jsonvalue.MustParse(`{"x":[2,1,{"k":"v"}],"y":null}`)))
	assert.False(t, jsonvalue.NullValue().Equal(nil), "null and absent differ")
	assert.True(t, (*jsonvalue.Value)(nil).Equal(nil))
	assert.False(t, jsonvalue.StringValue("5").Equal(jsonvalue.NumberValue(5)))
}

func TestCloneIsDeep(t *testing.T) {
	v := jsonvalue.MustParse(`{"a":{"b":[1,2]}}`)
	c := v.Clone()
	require.True(t, v.Equal(c))

	a, _ := c.Get("a")
	b, _ := a.Get("b")
	origA, _ := v.Get("a")
	origB, _ := origA.Get("b")
	assert.NotSame(t, origA, a)
	assert.NotSame(t, origB, b)
	assert.NotSame(t, origB.Index(0), b.Index(0))
}

func TestConstructorsAndInterface(t *testing.T) {
	v := jsonvalue.ObjectValue(
		jsonvalue.M("name", jsonvalue.StringValue("frame")),
		jsonvalue.M("qty", jsonvalue.NumberValue(4)),
		jsonvalue.M("tags", jsonvalue.ArrayValue(jsonvalue.StringValue("a"), nil)),
		jsonvalue.M("ok", jsonvalue.BoolValue(true)),
	)
	assert.Equal(t, `{"name":"frame","qty":4,"tags":["a",null],"ok":true}`, v.String())
	assert.Equal(t, map[string]any{
		"name": "frame",
		"qty":  float64(4),
		"tags": []any{"a", nil},
		"ok":   true,
	}, v.Interface())
}

func TestUnmarshalJSON(t *testing.T) {
	var holder struct {
		Doc *jsonvalue.Value `json:"doc"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"doc":{"k":[1]}}`), &holder))
	assert.Equal(t, `{"k":[1]}`, holder.Doc.String())
}
