package jsonpatch

import (
	"fmt"
	"strconv"
	"strings"
)

// containerOp edits the last segment of a pointer inside its parent container
// and returns the (possibly reallocated) container.
type containerOp func(container any, key string) (any, error)

// splitPointer parses an RFC 6901 pointer. The root pointer "" yields no
// segments.
func splitPointer(ptr string) []string {
	if ptr == "" {
		return nil
	}
	raw := strings.Split(strings.TrimPrefix(ptr, "/"), "/")
	for i, seg := range raw {
		raw[i] = strings.NewReplacer("~1", "/", "~0", "~").Replace(seg)
	}
	return raw
}

func joinPointer(base, key string) string {
	return base + "/" + strings.NewReplacer("~", "~0", "/", "~1").Replace(key)
}

func validPointer(ptr string) bool {
	return ptr == "" || strings.HasPrefix(ptr, "/")
}

// mutate walks segs below node and applies op to the parent of the last
// segment. Containers along the way are updated in place.
func mutate(node any, segs []string, op containerOp) (any, error) {
	if len(segs) == 0 {
		return nil, fmt.Errorf("%w: operation needs a non-root path", ErrInvalidPath)
	}
	if len(segs) == 1 {
		return op(node, segs[0])
	}
	switch c := node.(type) {
	case map[string]any:
		child, ok := c[segs[0]]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrPathNotFound, segs[0])
		}
		updated, err := mutate(child, segs[1:], op)
		if err != nil {
			return nil, err
		}
		c[segs[0]] = updated
		return c, nil
	case []any:
		i, err := index(segs[0], len(c), false)
		if err != nil {
			return nil, err
		}
		updated, err := mutate(c[i], segs[1:], op)
		if err != nil {
			return nil, err
		}
		c[i] = updated
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %q is not a container", ErrPathNotFound, segs[0])
	}
}

// get resolves segs below node.
func get(node any, segs []string) (any, error) {
	for _, seg := range segs {
		switch c := node.(type) {
		case map[string]any:
			child, ok := c[seg]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrPathNotFound, seg)
			}
			node = child
		case []any:
			i, err := index(seg, len(c), false)
			if err != nil {
				return nil, err
			}
			node = c[i]
		default:
			return nil, fmt.Errorf("%w: %q is not a container", ErrPathNotFound, seg)
		}
	}
	return node, nil
}

// index parses an array index. With forInsert the end position (len or "-")
// is also accepted.
func index(seg string, length int, forInsert bool) (int, error) {
	if forInsert && seg == "-" {
		return length, nil
	}
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || (seg != "0" && strings.HasPrefix(seg, "0")) {
		return 0, fmt.Errorf("%w: bad array index %q", ErrInvalidPath, seg)
	}
	limit := length - 1
	if forInsert {
		limit = length
	}
	if i > limit {
		return 0, fmt.Errorf("%w: index %d out of range", ErrPathNotFound, i)
	}
	return i, nil
}

// addAt implements "add". In set mode array elements are overwritten rather
// than inserted.
func addAt(value any, set bool) containerOp {
	return func(container any, key string) (any, error) {
		switch c := container.(type) {
		case map[string]any:
			c[key] = value
			return c, nil
		case []any:
			if set {
				i, err := index(key, len(c), false)
				if err != nil {
					return nil, err
				}
				c[i] = value
				return c, nil
			}
			i, err := index(key, len(c), true)
			if err != nil {
				return nil, err
			}
			c = append(c, nil)
			copy(c[i+1:], c[i:])
			c[i] = value
			return c, nil
		default:
			return nil, fmt.Errorf("%w: cannot add %q to a scalar", ErrPathNotFound, key)
		}
	}
}

// removeAt implements "remove"; the removed value is stored in *removed when
// non-nil.
func removeAt(removed *any) containerOp {
	return func(container any, key string) (any, error) {
		switch c := container.(type) {
		case map[string]any:
			v, ok := c[key]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrPathNotFound, key)
			}
			if removed != nil {
				*removed = v
			}
			delete(c, key)
			return c, nil
		case []any:
			i, err := index(key, len(c), false)
			if err != nil {
				return nil, err
			}
			if removed != nil {
				*removed = c[i]
			}
			return append(c[:i], c[i+1:]...), nil
		default:
			return nil, fmt.Errorf("%w: cannot remove %q from a scalar", ErrPathNotFound, key)
		}
	}
}

// replaceAt implements "replace"; the target must exist.
func replaceAt(value any) containerOp {
	return func(container any, key string) (any, error) {
		switch c := container.(type) {
		case map[string]any:
			if _, ok := c[key]; !ok {
				return nil, fmt.Errorf("%w: %q", ErrPathNotFound, key)
			}
			c[key] = value
			return c, nil
		case []any:
			i, err := index(key, len(c), false)
			if err != nil {
				return nil, err
			}
			c[i] = value
			return c, nil
		default:
			return nil, fmt.Errorf("%w: cannot replace %q in a scalar", ErrPathNotFound, key)
		}
	}
}
