// Package jsonpatch computes and applies structural differences between
// project documents.
package jsonpatch

import (
	"errors"

	"github.com/canvasforge/doclint/api/schemas"
)

// Errors returned while applying patches.
var (
	ErrPathNotFound  = errors.New("jsonpatch: path not found")
	ErrInvalidPath   = errors.New("jsonpatch: invalid path")
	ErrTestFailed    = errors.New("jsonpatch: test operation failed")
	ErrUnsupportedOp = errors.New("jsonpatch: unsupported operation")
)

// Service diffs and patches documents. Generic trees are the values produced
// by decoding JSON into an `any`: map[string]any, []any, float64, string, bool
// and nil.
type Service interface {
	// Diff returns the patches that turn original into modified. Applying the
	// result to original yields a tree equal to modified.
	Diff(original, modified any) []schemas.FixPatch
	// Apply returns a patched copy of doc; doc itself is left untouched.
	Apply(doc any, patches []schemas.FixPatch) (any, error)

	// DiffFiles is Diff over typed project documents.
	DiffFiles(original, modified *schemas.ProjectFiles) ([]schemas.FixPatch, error)
	// ApplyFiles is Apply over typed project documents.
	ApplyFiles(files *schemas.ProjectFiles, patches []schemas.FixPatch) (*schemas.ProjectFiles, error)
}
