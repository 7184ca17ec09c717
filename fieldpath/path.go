// Package fieldpath addresses entries inside nested values using field names
// such as "address.street", "items[2].sku" or "meta['x.y']".
//
// Containers are plain map[string]any and []any trees, the shapes produced by
// encoding/json and gopkg.in/yaml.v3. Every write is copy-on-write: the input
// tree is never mutated, and only the containers along the written path are
// copied. Reads never fail; a missing intermediate simply yields no value.
package fieldpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxIndex is the largest numeric segment treated as a slice index. Larger
// numbers address map keys, so one write never allocates a slice longer than
// MaxIndex+1.
const MaxIndex = 1 << 12

var ErrIndexOutOfRange = errors.New("index out of range")

// Check reports ErrIndexOutOfRange when a numeric segment of name exceeds
// MaxIndex. Callers that accept field names from outside use it to reject
// them rather than have the segment fall back to a map key.
func Check(name string) error {
	for _, seg := range Parse(name) {
		if isIndex(seg) {
			if _, ok := index(seg); !ok {
				return fmt.Errorf("%w: %s in %q (max %d)", ErrIndexOutOfRange, seg, name, MaxIndex)
			}
		}
	}
	return nil
}

// Path is a parsed field name: an ordered list of map keys and slice indices.
// Index segments are stored in their decimal form.
type Path []string

// Parse splits a field name into segments. Dots separate keys, brackets hold
// either an index ("[0]") or a quoted key ("['a.b']", "[\"a.b\"]").
// An empty name is a single empty key.
func Parse(name string) Path {
	if name == "" {
		return Path{""}
	}

	var (
		path  Path
		cur   strings.Builder
		dirty bool
	)
	flush := func() {
		if dirty {
			path = append(path, cur.String())
		}
		cur.Reset()
		dirty = false
	}

	for i := 0; i < len(name); i++ {
		c := name[i]
		switch c {
		case '.':
			flush()
		case '[':
			flush()
			end := strings.IndexByte(name[i:], ']')
			if end < 0 {
				// Unterminated bracket is taken literally.
				cur.WriteString(name[i:])
				dirty = true
				i = len(name)
				continue
			}
			inner := name[i+1 : i+end]
			if len(inner) >= 2 && (inner[0] == '\'' || inner[0] == '"') && inner[len(inner)-1] == inner[0] {
				inner = inner[1 : len(inner)-1]
			}
			path = append(path, inner)
			i += end
		default:
			cur.WriteByte(c)
			dirty = true
		}
	}
	flush()

	if len(path) == 0 {
		return Path{name}
	}
	return path
}

// String renders the path back into a field name.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		switch {
		case isIndex(seg):
			b.WriteString("[" + seg + "]")
		case strings.ContainsAny(seg, ".[]"):
			b.WriteString("['" + seg + "']")
		default:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg)
		}
	}
	return b.String()
}

// Get walks the path from root. It reports false when any segment is missing
// or when an intermediate value is not a container.
func (p Path) Get(root any) (any, bool) {
	node := root
	for _, seg := range p {
		switch n := node.(type) {
		case map[string]any:
			v, ok := n[seg]
			if !ok {
				return nil, false
			}
			node = v
		case []any:
			i, ok := index(seg)
			if !ok || i >= len(n) {
				return nil, false
			}
			node = n[i]
		default:
			return nil, false
		}
	}
	return node, true
}

// Set returns a copy of root with v written at the path. Missing or
// non-container intermediates are replaced by new containers: a slice when the
// next segment is an index, a map otherwise. Numeric segments above MaxIndex
// are map keys.
func (p Path) Set(root any, v any) any {
	return setIn(root, p, v)
}

// Unset returns a copy of root with the entry at the path removed. Removing
// from a slice leaves a nil hole so later indices keep their positions. When
// the path does not exist root is returned unchanged.
func (p Path) Unset(root any) any {
	if _, ok := p.Get(root); !ok {
		return root
	}
	return unsetIn(root, p)
}

func setIn(node any, p Path, v any) any {
	if len(p) == 0 {
		return v
	}
	seg, rest := p[0], p[1:]

	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n)+1)
		for k, val := range n {
			out[k] = val
		}
		out[seg] = setIn(n[seg], rest, v)
		return out
	case []any:
		if i, ok := index(seg); ok {
			out := make([]any, max(len(n), i+1))
			copy(out, n)
			out[i] = setIn(out[i], rest, v)
			return out
		}
	}

	if i, ok := index(seg); ok {
		out := make([]any, i+1)
		out[i] = setIn(nil, rest, v)
		return out
	}
	return map[string]any{seg: setIn(nil, rest, v)}
}

func unsetIn(node any, p Path) any {
	seg, rest := p[0], p[1:]

	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, val := range n {
			out[k] = val
		}
		if len(rest) == 0 {
			delete(out, seg)
		} else {
			out[seg] = unsetIn(n[seg], rest)
		}
		return out
	case []any:
		i, _ := index(seg)
		out := make([]any, len(n))
		copy(out, n)
		if len(rest) == 0 {
			out[i] = nil
		} else {
			out[i] = unsetIn(n[i], rest)
		}
		return out
	}
	return node
}

func index(seg string) (int, bool) {
	if !isIndex(seg) {
		return 0, false
	}
	i, err := strconv.Atoi(seg)
	if err != nil || i > MaxIndex {
		return 0, false
	}
	return i, true
}

// isIndex matches non-negative integers without leading zeros.
func isIndex(seg string) bool {
	if seg == "" || (len(seg) > 1 && seg[0] == '0') {
		return false
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return false
		}
	}
	return true
}
