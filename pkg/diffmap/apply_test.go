package diffmap_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loog-project/instrux/pkg/diffmap"
)

func TestApplyRoundTrip(t *testing.T) {
	pairs := [][2]string{
		{`{"a":1,"b":{"c":false}}`, `{"a":1,"b":{"c":true}}`},
		{`{"a":1,"b":2}`, `{"a":1}`},
		{`{"a":1}`, `{"b":null,"a":1}`},
		{`{"tags":["a"]}`, `{"tags":["a","b"]}`},
		{`{"steps":[{"t":"x","w":[1,2]}]}`, `{"steps":[{"t":"y","w":[1,3]}]}`},
		{`[1,{"a":1}]`, `[1,{"a":2,"b":[]}]`},
		{`1`, `{"a":1}`},
		{sampleDocument, `{"header":{"title":"x"},"parts":[],"footer":null}`},
	}
	for _, p := range pairs {
		oldDoc, newDoc := parse(p[0]), parse(p[1])
		got, err := diffmap.Apply(oldDoc, diffmap.Diff(oldDoc, newDoc))
		require.NoError(t, err, p)
		assert.Truef(t, got.Equal(newDoc), "apply failed: got %s, want %s", got, newDoc)
		assert.True(t, parse(p[0]).Equal(oldDoc), "base must not be modified")
	}
}

func TestApplyPathMismatch(t *testing.T) {
	chg := diffmap.Diff(parse(`{"a":{"b":1}}`), parse(`{"a":{"b":2}}`))
	_, err := diffmap.Apply(parse(`{"a":[1]}`), chg)
	assert.True(t, errors.Is(err, diffmap.ErrPathMismatch))
}

func BenchmarkApply_1k(b *testing.B) {
	a, bb := genValues(1000)
	chg := diffmap.Diff(a, bb)
	for i := 0; i < b.N; i++ {
		_, _ = diffmap.Apply(a, chg)
	}
}
