package schemas

import (
	"strconv"
	"strings"
)

// Path locates a value inside a ProjectFiles document. Segments are either
// string keys or int indices.
type Path []any

// Append returns a new path with the given segments added. The receiver is
// never aliased by the result.
func (p Path) Append(segments ...any) Path {
	out := make(Path, 0, len(p)+len(segments))
	out = append(out, p...)
	return append(out, segments...)
}

// HasPrefix reports whether prefix matches the leading segments of p.
// Ints and their decimal string form are considered equal so that filters
// parsed from JSON pointers match array indices.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i, seg := range prefix {
		if segmentString(seg) != segmentString(p[i]) {
			return false
		}
	}
	return true
}

// Equal reports whether both paths name the same location.
func (p Path) Equal(other Path) bool {
	return len(p) == len(other) && p.HasPrefix(other)
}

// Pointer renders p as an RFC 6901 JSON pointer. The empty path is "".
func (p Path) Pointer() string {
	var b strings.Builder
	for _, seg := range p {
		b.WriteByte('/')
		b.WriteString(escapePointer(segmentString(seg)))
	}
	return b.String()
}

// String implements fmt.Stringer using dotted notation.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		parts[i] = segmentString(seg)
	}
	return strings.Join(parts, ".")
}

// ParsePointer converts an RFC 6901 JSON pointer into a Path. Every segment is
// returned as a string; array indices are resolved by the consumer.
func ParsePointer(pointer string) Path {
	if pointer == "" {
		return Path{}
	}
	raw := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	out := make(Path, len(raw))
	for i, seg := range raw {
		out[i] = unescapePointer(seg)
	}
	return out
}

func segmentString(seg any) string {
	switch v := seg.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

var (
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

func escapePointer(s string) string   { return pointerEscaper.Replace(s) }
func unescapePointer(s string) string { return pointerUnescaper.Replace(s) }
