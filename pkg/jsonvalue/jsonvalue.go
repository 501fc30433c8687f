// Package jsonvalue is an order-preserving model of JSON documents.
//
// Go maps forget the order in which object members were written, but a
// revision comparison has to report keys in the order they were stored.
// A [Value] keeps object members as an ordered list of [Member]s with an
// index for lookups. A nil *Value stands for an absent value (a key that is
// not present), which is different from a Value of kind [Null].
package jsonvalue

import (
	"errors"
	"strconv"
)

// ErrInvalidJSON is returned by [Parse] for input that is not a single well-formed JSON value.
var ErrInvalidJSON = errors.New("invalid JSON")

// Kind is the JSON type tag of a value.
type Kind uint8

const (
	// Undefined is the kind of a nil *Value (absent).
	Undefined Kind = iota
	Null
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Member is a single key/value pair of an object.
type Member struct {
	Key   string
	Value *Value
}

// Value is an immutable JSON value.
type Value struct {
	kind Kind

	boolean bool
	number  float64
	// text holds the string value, or the source literal of a parsed number.
	text string

	elements []*Value
	members  []Member
	index    map[string]int
}

func NullValue() *Value {
	return &Value{kind: Null}
}

func BoolValue(b bool) *Value {
	return &Value{kind: Bool, boolean: b}
}

func NumberValue(f float64) *Value {
	return &Value{kind: Number, number: f, text: strconv.FormatFloat(f, 'g', -1, 64)}
}

func StringValue(s string) *Value {
	return &Value{kind: String, text: s}
}

// ArrayValue builds an array from the given elements. nil elements become null.
func ArrayValue(elements ...*Value) *Value {
	v := &Value{kind: Array, elements: make([]*Value, len(elements))}
	for i, e := range elements {
		if e == nil {
			e = NullValue()
		}
		v.elements[i] = e
	}
	return v
}

// ObjectValue builds an object from the given members, in order.
// A repeated key keeps its first position and takes the last value.
func ObjectValue(members ...Member) *Value {
	v := &Value{kind: Object, index: make(map[string]int, len(members))}
	for _, m := range members {
		v.set(m.Key, m.Value)
	}
	return v
}

// M is shorthand for constructing a [Member].
func M(key string, value *Value) Member {
	return Member{Key: key, Value: value}
}

func (v *Value) set(key string, value *Value) {
	if value == nil {
		value = NullValue()
	}
	if pos, ok := v.index[key]; ok {
		v.members[pos].Value = value
		return
	}
	v.index[key] = len(v.members)
	v.members = append(v.members, Member{Key: key, Value: value})
}

// Kind returns the type tag; [Undefined] for a nil receiver.
func (v *Value) Kind() Kind {
	if v == nil {
		return Undefined
	}
	return v.kind
}

// IsContainer reports whether v is an array or an object.
func (v *Value) IsContainer() bool {
	k := v.Kind()
	return k == Array || k == Object
}

func (v *Value) Bool() bool {
	return v != nil && v.boolean
}

func (v *Value) Float() float64 {
	if v == nil {
		return 0
	}
	return v.number
}

// Str returns the string value, or "" for non-strings.
func (v *Value) Str() string {
	if v.Kind() != String {
		return ""
	}
	return v.text
}

// Len returns the number of elements or members; 0 for anything else.
func (v *Value) Len() int {
	switch v.Kind() {
	case Array:
		return len(v.elements)
	case Object:
		return len(v.members)
	default:
		return 0
	}
}

// Index returns the i-th array element, or nil when out of range.
func (v *Value) Index(i int) *Value {
	if v.Kind() != Array || i < 0 || i >= len(v.elements) {
		return nil
	}
	return v.elements[i]
}

// Get returns the member value for key and whether it is present.
func (v *Value) Get(key string) (*Value, bool) {
	if v.Kind() != Object {
		return nil, false
	}
	pos, ok := v.index[key]
	if !ok {
		return nil, false
	}
	return v.members[pos].Value, true
}

// Has reports whether the object has a member named key.
func (v *Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Keys returns the object keys in stored order.
func (v *Value) Keys() []string {
	if v.Kind() != Object {
		return nil
	}
	keys := make([]string, len(v.members))
	for i, m := range v.members {
		keys[i] = m.Key
	}
	return keys
}

// Members returns a copy of the object members in stored order.
func (v *Value) Members() []Member {
	if v.Kind() != Object {
		return nil
	}
	out := make([]Member, len(v.members))
	copy(out, v.members)
	return out
}

// Elements returns a copy of the array elements.
func (v *Value) Elements() []*Value {
	if v.Kind() != Array {
		return nil
	}
	out := make([]*Value, len(v.elements))
	copy(out, v.elements)
	return out
}

// Equal reports deep equality. Object member order is not significant,
// numbers compare numerically. Two nil values are equal.
func (v *Value) Equal(other *Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case Undefined, Null:
		return true
	case Bool:
		return v.boolean == other.boolean
	case Number:
		return v.number == other.number
	case String:
		return v.text == other.text
	case Array:
		if len(v.elements) != len(other.elements) {
			return false
		}
		for i := range v.elements {
			if !v.elements[i].Equal(other.elements[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(v.members) != len(other.members) {
			return false
		}
		for _, m := range v.members {
			ov, ok := other.Get(m.Key)
			if !ok || !m.Value.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// Clone returns a deep copy of v.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	c := *v
	switch v.kind {
	case Array:
		c.elements = make([]*Value, len(v.elements))
		for i, e := range v.elements {
			c.elements[i] = e.Clone()
		}
	case Object:
		c.members = make([]Member, len(v.members))
		c.index = make(map[string]int, len(v.members))
		for i, m := range v.members {
			c.members[i] = Member{Key: m.Key, Value: m.Value.Clone()}
			c.index[m.Key] = i
		}
	}
	return &c
}

// Interface converts v into plain Go values: nil, bool, float64, string,
// []any and map[string]any. Object order is lost.
func (v *Value) Interface() any {
	switch v.Kind() {
	case Bool:
		return v.boolean
	case Number:
		return v.number
	case String:
		return v.text
	case Array:
		out := make([]any, len(v.elements))
		for i, e := range v.elements {
			out[i] = e.Interface()
		}
		return out
	case Object:
		out := make(map[string]any, len(v.members))
		for _, m := range v.members {
			out[m.Key] = m.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// WithMember returns a copy of the object v with key set to value. A new key
// is appended after the existing members. v must be an object.
func (v *Value) WithMember(key string, value *Value) *Value {
	out := v.shallowObject()
	out.set(key, value)
	return out
}

// WithoutMember returns a copy of the object v without key.
func (v *Value) WithoutMember(key string) *Value {
	out := &Value{kind: Object, index: make(map[string]int, len(v.members))}
	for _, m := range v.members {
		if m.Key != key {
			out.set(m.Key, m.Value)
		}
	}
	return out
}

// WithElement returns a copy of the array v with element i replaced.
// Out of range indices leave the copy unchanged.
func (v *Value) WithElement(i int, value *Value) *Value {
	out := &Value{kind: Array, elements: v.Elements()}
	if i >= 0 && i < len(out.elements) {
		if value == nil {
			value = NullValue()
		}
		out.elements[i] = value
	}
	return out
}

func (v *Value) shallowObject() *Value {
	out := &Value{kind: Object, index: make(map[string]int, len(v.members)+1)}
	for _, m := range v.members {
		out.set(m.Key, m.Value)
	}
	return out
}
