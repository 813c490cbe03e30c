package jsonpatch

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/canvasforge/doclint/api/schemas"
)

// json mirrors encoding/json, including sorted map keys on output.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ToTree converts a typed value into its generic JSON tree.
func ToTree(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decoding document tree: %w", err)
	}
	return tree, nil
}

// FromTree decodes a generic JSON tree into a project document.
func FromTree(tree any) (*schemas.ProjectFiles, error) {
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("encoding document tree: %w", err)
	}
	var files schemas.ProjectFiles
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return &files, nil
}

// Clone returns a deep copy of files. Fix functions clone before editing so
// the document under analysis is never mutated.
func Clone(files *schemas.ProjectFiles) (*schemas.ProjectFiles, error) {
	if files == nil {
		return nil, nil
	}
	tree, err := ToTree(files)
	if err != nil {
		return nil, err
	}
	return FromTree(tree)
}

// Omit returns a copy of files without the value at path.
func Omit(files *schemas.ProjectFiles, path schemas.Path) (*schemas.ProjectFiles, error) {
	tree, err := ToTree(files)
	if err != nil {
		return nil, err
	}
	tree, err = mutate(tree, pointerSegments(path), removeAt(nil))
	if err != nil {
		return nil, err
	}
	return FromTree(tree)
}

// Set returns a copy of files with value stored at path. Missing
// intermediate objects are not created.
func Set(files *schemas.ProjectFiles, path schemas.Path, value any) (*schemas.ProjectFiles, error) {
	tree, err := ToTree(files)
	if err != nil {
		return nil, err
	}
	v, err := ToTree(value)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return FromTree(v)
	}
	tree, err = mutate(tree, pointerSegments(path), addAt(v, true))
	if err != nil {
		return nil, err
	}
	return FromTree(tree)
}

func pointerSegments(p schemas.Path) []string {
	return splitPointer(p.Pointer())
}

// deepCopy clones a generic tree.
func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = deepCopy(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = deepCopy(child)
		}
		return out
	default:
		return v
	}
}
