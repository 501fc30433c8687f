package jsonvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Parse decodes a single JSON document. Object members keep their source
// order; a duplicated key keeps its first position and its last value.
// Input that is not valid UTF-8 is rejected.
func Parse(data []byte) (*Value, error) {
	if len(bytes.TrimSpace(data)) == 0 || !utf8.Valid(data) || !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

// ParseString is [Parse] for string input.
func ParseString(s string) (*Value, error) {
	return Parse([]byte(s))
}

// MustParse is like [Parse] but panics on invalid input. Meant for fixtures.
func MustParse(s string) *Value {
	v, err := ParseString(s)
	if err != nil {
		panic(fmt.Sprintf("jsonvalue: %v: %q", err, s))
	}
	return v
}

func fromResult(r gjson.Result) *Value {
	switch r.Type {
	case gjson.Null:
		return NullValue()
	case gjson.False:
		return BoolValue(false)
	case gjson.True:
		return BoolValue(true)
	case gjson.Number:
		return &Value{kind: Number, number: r.Num, text: r.Raw}
	case gjson.String:
		return StringValue(r.Str)
	}

	if r.IsArray() {
		v := &Value{kind: Array}
		r.ForEach(func(_, value gjson.Result) bool {
			v.elements = append(v.elements, fromResult(value))
			return true
		})
		return v
	}

	v := &Value{kind: Object, index: make(map[string]int)}
	r.ForEach(func(key, value gjson.Result) bool {
		v.set(key.Str, fromResult(value))
		return true
	})
	return v
}

// MarshalJSON encodes v keeping object member order. A nil receiver encodes as null.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes data with [Parse] semantics.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}

// String returns the compact JSON encoding of v.
func (v *Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(b)
}

func (v *Value) encode(buf *bytes.Buffer) error {
	switch v.Kind() {
	case Undefined, Null:
		buf.WriteString("null")
	case Bool:
		if v.boolean {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		buf.WriteString(v.text)
	case String:
		return writeString(buf, v.text)
	case Array:
		buf.WriteByte('[')
		for i, e := range v.elements {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
