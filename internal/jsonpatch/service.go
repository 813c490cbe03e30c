package jsonpatch

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/canvasforge/doclint/api/schemas"
)

// service is the concrete implementation of the Service interface.
type service struct {
	logger *zap.Logger
}

// NewService creates a new patch service.
func NewService(logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{logger: logger.Named("jsonpatch")}
}

// Diff performs a key-wise recursive comparison. Objects are diffed per key,
// arrays per index over their common prefix with trailing removes (highest
// index first) or adds, and anything else is replaced wholesale.
func (s *service) Diff(original, modified any) []schemas.FixPatch {
	var patches []schemas.FixPatch
	s.diff("", original, modified, &patches)
	return patches
}

func (s *service) diff(ptr string, a, b any, out *[]schemas.FixPatch) {
	if cmp.Equal(a, b) {
		return
	}
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok {
			break
		}
		for _, key := range schemas.SortedKeys(av) {
			if _, exists := bv[key]; !exists {
				*out = append(*out, schemas.FixPatch{Op: schemas.OpRemove, Path: joinPointer(ptr, key)})
			}
		}
		for _, key := range schemas.SortedKeys(bv) {
			if old, exists := av[key]; exists {
				s.diff(joinPointer(ptr, key), old, bv[key], out)
			} else {
				*out = append(*out, schemas.FixPatch{Op: schemas.OpAdd, Path: joinPointer(ptr, key), Value: deepCopy(bv[key])})
			}
		}
		return
	case []any:
		bv, ok := b.([]any)
		if !ok {
			break
		}
		common := min(len(av), len(bv))
		for i := 0; i < common; i++ {
			s.diff(joinPointer(ptr, strconv.Itoa(i)), av[i], bv[i], out)
		}
		for i := len(av) - 1; i >= len(bv); i-- {
			*out = append(*out, schemas.FixPatch{Op: schemas.OpRemove, Path: joinPointer(ptr, strconv.Itoa(i))})
		}
		for i := len(av); i < len(bv); i++ {
			*out = append(*out, schemas.FixPatch{Op: schemas.OpAdd, Path: joinPointer(ptr, strconv.Itoa(i)), Value: deepCopy(bv[i])})
		}
		return
	}
	*out = append(*out, schemas.FixPatch{Op: schemas.OpReplace, Path: ptr, Value: deepCopy(b)})
}

// Apply applies patches in order to a copy of doc. The first failing patch
// aborts the whole application.
func (s *service) Apply(doc any, patches []schemas.FixPatch) (any, error) {
	doc = deepCopy(doc)
	for i, p := range patches {
		var err error
		doc, err = s.applyOne(doc, p)
		if err != nil {
			return nil, fmt.Errorf("patch %d (%s %s): %w", i, p.Op, p.Path, err)
		}
	}
	return doc, nil
}

func (s *service) applyOne(doc any, p schemas.FixPatch) (any, error) {
	if !validPointer(p.Path) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, p.Path)
	}
	segs := splitPointer(p.Path)

	switch p.Op {
	case schemas.OpAdd:
		if len(segs) == 0 {
			return deepCopy(p.Value), nil
		}
		return mutate(doc, segs, addAt(deepCopy(p.Value), false))

	case schemas.OpRemove:
		if len(segs) == 0 {
			return nil, nil
		}
		return mutate(doc, segs, removeAt(nil))

	case schemas.OpReplace:
		if len(segs) == 0 {
			return deepCopy(p.Value), nil
		}
		return mutate(doc, segs, replaceAt(deepCopy(p.Value)))

	case schemas.OpMove:
		if !validPointer(p.From) {
			return nil, fmt.Errorf("%w: from %q", ErrInvalidPath, p.From)
		}
		from := splitPointer(p.From)
		if len(from) < len(segs) && slices.Equal(from, segs[:len(from)]) {
			return nil, fmt.Errorf("%w: cannot move %q into itself", ErrInvalidPath, p.From)
		}
		if len(from) == 0 {
			return nil, fmt.Errorf("%w: cannot move the root", ErrInvalidPath)
		}
		var moved any
		doc, err := mutate(doc, from, removeAt(&moved))
		if err != nil {
			return nil, err
		}
		if len(segs) == 0 {
			return moved, nil
		}
		return mutate(doc, segs, addAt(moved, false))

	case schemas.OpCopy:
		if !validPointer(p.From) {
			return nil, fmt.Errorf("%w: from %q", ErrInvalidPath, p.From)
		}
		v, err := get(doc, splitPointer(p.From))
		if err != nil {
			return nil, err
		}
		if len(segs) == 0 {
			return deepCopy(v), nil
		}
		return mutate(doc, segs, addAt(deepCopy(v), false))

	case schemas.OpTest:
		v, err := get(doc, segs)
		if err != nil {
			return nil, err
		}
		if !cmp.Equal(v, p.Value) {
			return nil, fmt.Errorf("%w at %q", ErrTestFailed, p.Path)
		}
		return doc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedOp, p.Op)
}

// DiffFiles diffs two project documents through their JSON trees.
func (s *service) DiffFiles(original, modified *schemas.ProjectFiles) ([]schemas.FixPatch, error) {
	a, err := ToTree(original)
	if err != nil {
		return nil, err
	}
	b, err := ToTree(modified)
	if err != nil {
		return nil, err
	}
	patches := s.Diff(a, b)
	s.logger.Debug("Computed document diff", zap.Int("patches", len(patches)))
	return patches, nil
}

// ApplyFiles applies patches to a project document and decodes the result.
func (s *service) ApplyFiles(files *schemas.ProjectFiles, patches []schemas.FixPatch) (*schemas.ProjectFiles, error) {
	tree, err := ToTree(files)
	if err != nil {
		return nil, err
	}
	patched, err := s.Apply(tree, patches)
	if err != nil {
		return nil, err
	}
	return FromTree(patched)
}
