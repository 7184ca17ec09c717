package fieldpath_test

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tailored-agentic-units/formstate/fieldpath"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want fieldpath.Path
	}{
		{name: "single key", in: "email", want: fieldpath.Path{"email"}},
		{name: "dotted", in: "a.b.c", want: fieldpath.Path{"a", "b", "c"}},
		{name: "index", in: "items[2].sku", want: fieldpath.Path{"items", "2", "sku"}},
		{name: "leading index", in: "[0].name", want: fieldpath.Path{"0", "name"}},
		{name: "quoted key", in: "meta['x.y'].z", want: fieldpath.Path{"meta", "x.y", "z"}},
		{name: "double quoted key", in: `meta["k"]`, want: fieldpath.Path{"meta", "k"}},
		{name: "empty", in: "", want: fieldpath.Path{""}},
		{name: "repeated dots", in: "a..b", want: fieldpath.Path{"a", "b"}},
		{name: "unterminated bracket", in: "a[1", want: fieldpath.Path{"a", "[1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fieldpath.Parse(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestPath_String(t *testing.T) {
	tests := []struct {
		in   fieldpath.Path
		want string
	}{
		{in: fieldpath.Path{"a", "b"}, want: "a.b"},
		{in: fieldpath.Path{"items", "2", "sku"}, want: "items[2].sku"},
		{in: fieldpath.Path{"meta", "x.y"}, want: "meta['x.y']"},
	}

	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", []string(tt.in), got, tt.want)
		}
	}
}

func TestGet(t *testing.T) {
	root := map[string]any{
		"email": "a@b.com",
		"a.b":   "flat",
		"a":     map[string]any{"b": "nested", "c": 3},
		"items": []any{map[string]any{"sku": "x1"}, nil},
		"n":     5,
	}

	tests := []struct {
		name   string
		field  string
		want   any
		wantOK bool
	}{
		{name: "top level", field: "email", want: "a@b.com", wantOK: true},
		{name: "literal key wins", field: "a.b", want: "flat", wantOK: true},
		{name: "nested", field: "a.c", want: 3, wantOK: true},
		{name: "slice element", field: "items[0].sku", want: "x1", wantOK: true},
		{name: "nil slice element", field: "items[1]", want: nil, wantOK: true},
		{name: "past end of slice", field: "items[5].sku", wantOK: false},
		{name: "missing intermediate", field: "x.y.z", wantOK: false},
		{name: "through scalar", field: "n.value", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := fieldpath.Get(root, tt.field)
			if ok != tt.wantOK {
				t.Fatalf("Get(%q) ok = %v, want %v", tt.field, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Get(%q) = %v, want %v", tt.field, got, tt.want)
			}
		})
	}
}

func TestGet_NonContainerRoot(t *testing.T) {
	if v, ok := fieldpath.Get("scalar", "a"); ok || v != nil {
		t.Errorf("Get on scalar root = (%v, %v), want (nil, false)", v, ok)
	}
	if v := fieldpath.Value(nil, "a.b"); v != nil {
		t.Errorf("Value on nil root = %v, want nil", v)
	}
}

func TestSet_CopyOnWrite(t *testing.T) {
	inner := map[string]any{"b": 1}
	original := map[string]any{"a": inner, "keep": true}

	updated := fieldpath.Set(original, "a.b", 2)

	if inner["b"] != 1 {
		t.Errorf("Set mutated nested input: %v", inner)
	}
	if fieldpath.Value(updated, "a.b") != 2 {
		t.Errorf("Set result a.b = %v, want 2", fieldpath.Value(updated, "a.b"))
	}
	if updated["keep"] != true {
		t.Error("Set dropped sibling key")
	}
}

func TestSet_CreatesContainers(t *testing.T) {
	got := fieldpath.Set(nil, "list[1].name", "x")
	want := map[string]any{
		"list": []any{nil, map[string]any{"name": "x"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Set mismatch (-want +got):\n%s", diff)
	}
}

func TestSet_ReplacesScalarIntermediate(t *testing.T) {
	got := fieldpath.Set(map[string]any{"a": "text"}, "a.b", 1)
	want := map[string]any{"a": map[string]any{"b": 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Set mismatch (-want +got):\n%s", diff)
	}
}

func TestSet_GrowsSlice(t *testing.T) {
	original := map[string]any{"list": []any{"a"}}
	got := fieldpath.Set(original, "list[2]", "c")
	want := map[string]any{"list": []any{"a", nil, "c"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Set mismatch (-want +got):\n%s", diff)
	}
	if len(original["list"].([]any)) != 1 {
		t.Error("Set mutated input slice")
	}
}

func TestUnset(t *testing.T) {
	original := map[string]any{
		"a":    map[string]any{"b": 1, "c": 2},
		"list": []any{"x", "y"},
	}

	got := fieldpath.Unset(original, "a.b")
	if _, ok := fieldpath.Get(got, "a.b"); ok {
		t.Error("Unset left a.b in place")
	}
	if _, ok := fieldpath.Get(original, "a.b"); !ok {
		t.Error("Unset mutated input")
	}

	got = fieldpath.Unset(original, "list[0]")
	if diff := cmp.Diff([]any{nil, "y"}, got["list"]); diff != "" {
		t.Errorf("Unset slice mismatch (-want +got):\n%s", diff)
	}

	got = fieldpath.Unset(original, "missing.path")
	if diff := cmp.Diff(original, got); diff != "" {
		t.Errorf("Unset of missing path changed value (-want +got):\n%s", diff)
	}
}

func TestMerge(t *testing.T) {
	dst := map[string]any{
		"email":   "required",
		"address": map[string]any{"street": "required"},
		"tags":    []any{"a", "b"},
	}
	src := map[string]any{
		"email":       nil,
		"address":     map[string]any{"zip": "invalid"},
		"tags":        []any{nil, "B"},
		"__formError": "failed",
	}

	got := fieldpath.Merge(dst, src)
	want := map[string]any{
		"email":       "required",
		"address":     map[string]any{"street": "required", "zip": "invalid"},
		"tags":        []any{"a", "B"},
		"__formError": "failed",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}
	if _, ok := dst["__formError"]; ok {
		t.Error("Merge mutated dst")
	}
}

func TestEqual(t *testing.T) {
	type point struct{ x, y int }

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{name: "identical scalars", a: "x", b: "x", want: true},
		{name: "different scalars", a: "x", b: "y", want: false},
		{name: "int and float", a: 5, b: 5.0, want: true},
		{name: "nil entry equals missing", a: map[string]any{"a": 1, "b": nil}, b: map[string]any{"a": 1}, want: true},
		{name: "empty and nil map", a: map[string]any{}, b: map[string]any(nil), want: true},
		{name: "nested difference", a: map[string]any{"a": map[string]any{"b": 1}}, b: map[string]any{"a": map[string]any{"b": 2}}, want: false},
		{name: "slices", a: []any{1, "x"}, b: []any{1.0, "x"}, want: true},
		{name: "slice length", a: []any{1}, b: []any{1, 2}, want: false},
		{name: "nil and empty string", a: nil, b: "", want: false},
		{name: "NaN", a: math.NaN(), b: math.NaN(), want: true},
		{name: "structs with unexported fields", a: point{1, 2}, b: point{1, 2}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fieldpath.Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSet_IndexBound(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  any
	}{
		{
			name:  "largest index grows a slice",
			field: "x[4096]",
			want:  4097,
		},
		{
			name:  "beyond the bound is a map key",
			field: "x[4097]",
			want:  map[string]any{"4097": 1},
		},
		{
			name:  "huge index is a map key",
			field: "x[99999999999999]",
			want:  map[string]any{"99999999999999": 1},
		},
		{
			name:  "overflowing index is a map key",
			field: "x[99999999999999999999999]",
			want:  map[string]any{"99999999999999999999999": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fieldpath.Set(nil, tt.field, 1)
			x := fieldpath.Value(got, "x")

			if n, ok := tt.want.(int); ok {
				s, isSlice := x.([]any)
				if !isSlice || len(s) != n {
					t.Fatalf("x = %T of len %d, want slice of len %d", x, len(s), n)
				}
				return
			}
			if diff := cmp.Diff(tt.want, x); diff != "" {
				t.Errorf("Set(%q) mismatch (-want +got):\n%s", tt.field, diff)
			}
			if v := fieldpath.Value(got, tt.field); v != 1 {
				t.Errorf("Value(%q) = %v, want 1", tt.field, v)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		field   string
		wantErr bool
	}{
		{"name", false},
		{"items[0].sku", false},
		{"items[4096]", false},
		{"items.4096", false},
		{"items[4097]", true},
		{"x[99999999999999]", true},
		{"a.b[1][123456789012345678901234]", true},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			err := fieldpath.Check(tt.field)
			if (err != nil) != tt.wantErr {
				t.Errorf("Check(%q) = %v, wantErr %v", tt.field, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, fieldpath.ErrIndexOutOfRange) {
				t.Errorf("Check(%q) = %v, want ErrIndexOutOfRange", tt.field, err)
			}
		})
	}
}
