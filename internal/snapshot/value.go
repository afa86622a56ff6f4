package snapshot

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the shape of a Value.
type Kind int

// Value kinds. The zero Value has KindNull.
const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindMap
	KindList
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	default:
		return "null"
	}
}

// Value is an immutable node of a device attribute tree.
//
// Values are built once from decoded JSON (see FromAny) and never mutated
// afterwards. Accessors that expose children return copies of the
// container, never the backing map or slice.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	m    map[string]Value
	list []Value
}

// String constructs a string Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number constructs a numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool constructs a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Null returns the explicit null Value.
func Null() Value { return Value{} }

// Map constructs a mapping Value. The input map is copied.
func Map(m map[string]Value) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: KindMap, m: cp}
}

// List constructs a list Value. The input slice is copied.
func List(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

// FromAny converts a decoded JSON document (map[string]any, []any,
// string, float64, bool, nil) into a Value tree.
//
// Integer Go types are accepted as numbers so that tests and callers can
// build fixtures with literals. Unsupported types become null.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, child := range t {
			m[k] = FromAny(child)
		}
		return Value{kind: KindMap, m: m}
	case []any:
		list := make([]Value, len(t))
		for i, child := range t {
			list[i] = FromAny(child)
		}
		return Value{kind: KindList, list: list}
	default:
		return Null()
	}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload when the value is a string.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Float returns the numeric payload. Numeric strings are parsed, so a
// field that the upstream API sometimes sends as text still coerces.
// NaN, infinities and anything else report false.
func (v Value) Float() (float64, bool) {
	var f float64
	switch v.kind {
	case KindNumber:
		f = v.num
	case KindString:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Int returns the value truncated to an int64 (see Float). Values outside
// the int64 range report false.
func (v Value) Int() (int64, bool) {
	f, ok := v.Float()
	if !ok || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// Bool returns the boolean payload when the value is a boolean.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Get returns the child stored under key. It reports false when the value
// is not a map, the key is missing, or the child is null.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	child, ok := v.m[key]
	if !ok || child.kind == KindNull {
		return Value{}, false
	}
	return child, true
}

// Keys returns the sorted keys of a map value.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fields returns a copy of the children of a map value, nulls included.
func (v Value) Fields() map[string]Value {
	if v.kind != KindMap {
		return nil
	}
	cp := make(map[string]Value, len(v.m))
	for k, child := range v.m {
		cp[k] = child
	}
	return cp
}

// Len returns the number of children of a map or list value.
func (v Value) Len() int {
	switch v.kind {
	case KindMap:
		return len(v.m)
	case KindList:
		return len(v.list)
	default:
		return 0
	}
}

// Items returns a copy of the elements of a list value.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	cp := make([]Value, len(v.list))
	copy(cp, v.list)
	return cp
}

// Interface converts the value back into plain Go types suitable for
// encoding/json.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindMap:
		m := make(map[string]any, len(v.m))
		for k, child := range v.m {
			m[k] = child.Interface()
		}
		return m
	case KindList:
		list := make([]any, len(v.list))
		for i, child := range v.list {
			list[i] = child.Interface()
		}
		return list
	default:
		return nil
	}
}

// MarshalJSON encodes the value as plain JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	return marshalAny(v.Interface())
}

// UnmarshalJSON decodes plain JSON into the value.
func (v *Value) UnmarshalJSON(data []byte) error {
	raw, err := unmarshalAny(data)
	if err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}
