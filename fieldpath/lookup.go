package fieldpath

import (
	"math"
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Get looks up a field name in root. A top-level key equal to the whole name
// wins over the parsed path, so flat keys such as "a.b" stay addressable.
func Get(root any, name string) (any, bool) {
	if m, ok := root.(map[string]any); ok {
		if v, ok := m[name]; ok {
			return v, true
		}
	}
	return Parse(name).Get(root)
}

// Value is Get without the presence flag.
func Value(root any, name string) any {
	v, _ := Get(root, name)
	return v
}

// Set returns a copy of m with v written at the parsed field name.
func Set(m map[string]any, name string, v any) map[string]any {
	// A map root always yields a map, even when m is nil.
	return Parse(name).Set(m, v).(map[string]any)
}

// Unset returns a copy of m without the entry at the parsed field name.
func Unset(m map[string]any, name string) map[string]any {
	out, _ := Parse(name).Unset(m).(map[string]any)
	return out
}

// Merge deep-merges src over dst and returns the result; neither input is
// modified. Nested maps merge key by key, slices merge index by index, nil
// source values leave the destination alone, and anything else in src wins.
func Merge(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, sv := range src {
		if sv == nil {
			continue
		}
		out[k] = mergeValue(out[k], sv)
	}
	return out
}

func mergeValue(dv, sv any) any {
	switch s := sv.(type) {
	case map[string]any:
		d, _ := dv.(map[string]any)
		return Merge(d, s)
	case []any:
		d, _ := dv.([]any)
		out := make([]any, max(len(d), len(s)))
		copy(out, d)
		for i, v := range s {
			if v == nil {
				continue
			}
			out[i] = mergeValue(out[i], v)
		}
		return out
	default:
		return sv
	}
}

var equalOpts = cmp.Options{
	cmpopts.EquateEmpty(),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

// Equal reports structural equality of two value trees. Map entries holding
// nil count as absent, empty and nil containers are equal, and all Go numeric
// kinds compare by value.
func Equal(a, b any) bool {
	return cmp.Equal(normalize(a), normalize(b), equalOpts)
}

func normalize(v any) any {
	switch n := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, val := range n {
			if val == nil {
				continue
			}
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, val := range n {
			out[i] = normalize(val)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) {
			return nanValue{}
		}
		return f
	}
	return v
}

// nanValue lets NaN equal NaN after normalization.
type nanValue struct{}
