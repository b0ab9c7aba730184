// Package jsontree provides a mutable JSON object with typed top-level
// accessors. Numbers are kept as json.Number after parsing so integers of
// any size survive a load/save cycle unchanged.
package jsontree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/spf13/cast"
)

var (
	// ErrInvalidDocument is returned by Parse for input that is not a JSON object
	ErrInvalidDocument = errors.New("jsontree: input is not a JSON object")

	// ErrUnsupportedValue is returned by Set for values JSON cannot represent
	ErrUnsupportedValue = errors.New("jsontree: value cannot be represented as JSON")
)

// Tree is a JSON object. The zero value is not usable; call New or Parse.
// A Tree is not safe for concurrent use.
type Tree struct {
	root map[string]any
}

// New returns an empty tree
func New() *Tree {
	return &Tree{root: make(map[string]any)}
}

// Parse decodes data into a tree. Invalid JSON, trailing data, a null root
// and any root that is not an object all fail with ErrInvalidDocument.
func Parse(data []byte) (*Tree, error) {
	v, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: root is %s", ErrInvalidDocument, kindOf(v))
	}
	return &Tree{root: m}, nil
}

func decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

// Bytes serializes the tree as compact JSON with keys in sorted order
func (t *Tree) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(t.root); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// MarshalJSON implements json.Marshaler
func (t *Tree) MarshalJSON() ([]byte, error) {
	return t.Bytes()
}

// String returns the JSON text of the tree, or "{}" if it cannot be encoded
func (t *Tree) String() string {
	b, err := t.Bytes()
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Len returns the number of top-level keys
func (t *Tree) Len() int {
	return len(t.root)
}

// Has reports whether key is present, including keys holding null
func (t *Tree) Has(key string) bool {
	_, ok := t.root[key]
	return ok
}

// Keys returns the top-level keys in sorted order
func (t *Tree) Keys() []string {
	keys := make([]string, 0, len(t.root))
	for k := range t.root {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the raw value stored under key
func (t *Tree) Get(key string) (any, bool) {
	v, ok := t.root[key]
	return v, ok
}

// Delete removes key
func (t *Tree) Delete(key string) {
	delete(t.root, key)
}

// Clear removes every top-level key
func (t *Tree) Clear() {
	clear(t.root)
}

// Clone returns a deep copy of the tree
func (t *Tree) Clone() *Tree {
	return &Tree{root: deepCopy(t.root).(map[string]any)}
}

// SetString stores a string under key
func (t *Tree) SetString(key, v string) {
	t.root[key] = v
}

// SetInt stores an integer under key
func (t *Tree) SetInt(key string, v int64) {
	t.root[key] = v
}

// SetFloat64 stores a double under key. NaN and infinities have no JSON
// form and are rejected.
func (t *Tree) SetFloat64(key string, v float64) error {
	n, err := normalize(v)
	if err != nil {
		return err
	}
	t.root[key] = n
	return nil
}

// SetFloat32 stores a float under key; see SetFloat64
func (t *Tree) SetFloat32(key string, v float32) error {
	n, err := normalize(v)
	if err != nil {
		return err
	}
	t.root[key] = n
	return nil
}

// SetBool stores a bool under key
func (t *Tree) SetBool(key string, v bool) {
	t.root[key] = v
}

// SetNull stores JSON null under key
func (t *Tree) SetNull(key string) {
	t.root[key] = nil
}

// SetTree stores a copy of child as a nested object under key
func (t *Tree) SetTree(key string, child *Tree) {
	if child == nil {
		t.root[key] = map[string]any{}
		return
	}
	t.root[key] = deepCopy(child.root)
}

// Set stores any JSON-representable value under key. Composite values
// (slices, maps, structs) are converted to their generic JSON form, so later
// changes to v do not affect the tree.
func (t *Tree) Set(key string, v any) error {
	n, err := normalize(v)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	t.root[key] = n
	return nil
}

// GetString coerces the value under key to a string. Strings are returned as
// is; numbers and bools are formatted. Null, objects and arrays yield false.
func (t *Tree) GetString(key string) (string, bool) {
	v, ok := t.root[key]
	if !ok {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case nil, map[string]any, []any:
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}

// GetInt coerces a numeric value under key to an int, truncating fractions
func (t *Tree) GetInt(key string) (int, bool) {
	f, i, isInt, ok := t.number(key)
	if !ok {
		return 0, false
	}
	if isInt {
		if i > math.MaxInt || i < math.MinInt {
			return 0, false
		}
		return int(i), true
	}
	if math.IsNaN(f) || f >= float64(math.MaxInt) || f < float64(math.MinInt) {
		return 0, false
	}
	return int(f), true
}

// GetFloat64 coerces a numeric value under key to a float64
func (t *Tree) GetFloat64(key string) (float64, bool) {
	f, i, isInt, ok := t.number(key)
	if !ok {
		return 0, false
	}
	if isInt {
		return float64(i), true
	}
	return f, true
}

// GetFloat32 coerces a numeric value under key to a float32
func (t *Tree) GetFloat32(key string) (float32, bool) {
	f, ok := t.GetFloat64(key)
	return float32(f), ok
}

// GetBool returns the bool stored under key. Other kinds are not coerced.
func (t *Tree) GetBool(key string) (bool, bool) {
	b, ok := t.root[key].(bool)
	return b, ok
}

// Child returns a copy of the object stored under key
func (t *Tree) Child(key string) (*Tree, bool) {
	m, ok := t.root[key].(map[string]any)
	if !ok {
		return nil, false
	}
	return &Tree{root: deepCopy(m).(map[string]any)}, true
}

// Array returns a copy of the array stored under key
func (t *Tree) Array(key string) ([]any, bool) {
	a, ok := t.root[key].([]any)
	if !ok {
		return nil, false
	}
	return deepCopy(a).([]any), true
}

// Object returns a copy of the object stored under key as a plain map
func (t *Tree) Object(key string) (map[string]any, bool) {
	m, ok := t.root[key].(map[string]any)
	if !ok {
		return nil, false
	}
	return deepCopy(m).(map[string]any), true
}

// number classifies the value under key. Integers are reported exactly
// through i; everything else numeric through f.
func (t *Tree) number(key string) (f float64, i int64, isInt bool, ok bool) {
	v, present := t.root[key]
	if !present {
		return 0, 0, false, false
	}
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return 0, n, true, true
		}
		n, err := x.Float64()
		if err != nil {
			return 0, 0, false, false
		}
		return n, 0, false, true
	case float64, float32:
		n, err := cast.ToFloat64E(x)
		return n, 0, false, err == nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n, err := cast.ToInt64E(x)
		return 0, n, true, err == nil
	default:
		return 0, 0, false, false
	}
}

func normalize(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, json.Number,
		int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return x, nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, x)
		}
		return x, nil
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, x)
		}
		return x, nil
	case *Tree:
		if x == nil {
			return map[string]any{}, nil
		}
		return deepCopy(x.root), nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
	}
	n, err := decode(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
	}
	return n, nil
}

func deepCopy(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = deepCopy(e)
		}
		return m
	case []any:
		a := make([]any, len(x))
		for i, e := range x {
			a[i] = deepCopy(e)
		}
		return a
	default:
		return x
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "bool"
	default:
		return "number"
	}
}
