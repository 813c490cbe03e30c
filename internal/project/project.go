// Package project loads and stores project documents. A document is either a
// single JSON or YAML file, or a directory in split layout:
//
//	project.json            optional, any subset of the document
//	components/**/*.json    one component per file
//	formulas/*.json         one project formula per file
//	actions/*.json          one project action per file
//	themes/*.json           one theme per file
//	routes/*.json           one route per file
//
// YAML (.yaml, .yml) may be used anywhere JSON is accepted.
package project

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
	"lukechampine.com/blake3"

	"github.com/canvasforge/doclint/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("project: unsupported file format")

// Format is the serialisation of a document file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf infers the format from a file extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

// Decode reads data in format f into v.
func Decode(data []byte, f Format, v any) error {
	switch f {
	case FormatJSON:
		return json.Unmarshal(data, v)
	case FormatYAML:
		return yaml.Unmarshal(data, v)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
}

// Encode serialises v in format f.
func Encode(v any, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(v)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
}

// Load reads a document from a file or a split-layout directory.
func Load(name string) (*schemas.ProjectFiles, error) {
	info, err := os.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return LoadFS(os.DirFS(name))
	}
	return LoadFile(name)
}

// LoadFile reads a single-file document.
func LoadFile(name string) (*schemas.ProjectFiles, error) {
	f, err := FormatOf(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	var files schemas.ProjectFiles
	if err := Decode(data, f, &files); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return &files, nil
}

// section describes one split-layout directory.
type section struct {
	pattern string
	add     func(files *schemas.ProjectFiles, stem string, data []byte, f Format) error
}

var sections = []section{
	{"components/**/*.{json,yaml,yml}", func(p *schemas.ProjectFiles, stem string, data []byte, f Format) error {
		var c schemas.Component
		if err := Decode(data, f, &c); err != nil {
			return err
		}
		if c.Name == "" {
			c.Name = stem
		}
		if p.Components == nil {
			p.Components = make(map[string]*schemas.Component)
		}
		p.Components[c.Name] = &c
		return nil
	}},
	{"formulas/*.{json,yaml,yml}", func(p *schemas.ProjectFiles, stem string, data []byte, f Format) error {
		var g schemas.GlobalFormula
		if err := Decode(data, f, &g); err != nil {
			return err
		}
		if g.Name == "" {
			g.Name = stem
		}
		if p.Formulas == nil {
			p.Formulas = make(map[string]*schemas.GlobalFormula)
		}
		p.Formulas[g.Name] = &g
		return nil
	}},
	{"actions/*.{json,yaml,yml}", func(p *schemas.ProjectFiles, stem string, data []byte, f Format) error {
		var a schemas.GlobalAction
		if err := Decode(data, f, &a); err != nil {
			return err
		}
		if a.Name == "" {
			a.Name = stem
		}
		if p.Actions == nil {
			p.Actions = make(map[string]*schemas.GlobalAction)
		}
		p.Actions[a.Name] = &a
		return nil
	}},
	{"themes/*.{json,yaml,yml}", func(p *schemas.ProjectFiles, stem string, data []byte, f Format) error {
		var t schemas.Theme
		if err := Decode(data, f, &t); err != nil {
			return err
		}
		if p.Themes == nil {
			p.Themes = make(map[string]*schemas.Theme)
		}
		p.Themes[stem] = &t
		return nil
	}},
	{"routes/*.{json,yaml,yml}", func(p *schemas.ProjectFiles, stem string, data []byte, f Format) error {
		var r schemas.Route
		if err := Decode(data, f, &r); err != nil {
			return err
		}
		if p.Routes == nil {
			p.Routes = make(map[string]*schemas.Route)
		}
		p.Routes[stem] = &r
		return nil
	}},
}

// LoadFS reads a split-layout document from fsys.
func LoadFS(fsys fs.FS) (*schemas.ProjectFiles, error) {
	files := &schemas.ProjectFiles{}

	roots, err := doublestar.Glob(fsys, "project.{json,yaml,yml}")
	if err != nil {
		return nil, err
	}
	if len(roots) > 1 {
		return nil, fmt.Errorf("project: ambiguous root files %v", roots)
	}
	for _, name := range roots {
		if err := decodeFile(fsys, name, files); err != nil {
			return nil, err
		}
	}

	for _, s := range sections {
		matches, err := doublestar.Glob(fsys, s.pattern)
		if err != nil {
			return nil, err
		}
		for _, name := range matches {
			data, err := fs.ReadFile(fsys, name)
			if err != nil {
				return nil, err
			}
			f, err := FormatOf(name)
			if err != nil {
				return nil, err
			}
			stem := strings.TrimSuffix(path.Base(name), path.Ext(name))
			if err := s.add(files, stem, data, f); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", name, err)
			}
		}
	}
	return files, nil
}

func decodeFile(fsys fs.FS, name string, into *schemas.ProjectFiles) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	f, err := FormatOf(name)
	if err != nil {
		return err
	}
	if err := Decode(data, f, into); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

// Save writes files as a single document, in the format implied by name.
func Save(name string, files *schemas.ProjectFiles) error {
	f, err := FormatOf(name)
	if err != nil {
		return err
	}
	data, err := Encode(files, f)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(name); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(name, data, 0o644)
}

// Fingerprint returns the hex BLAKE3 digest of the canonical JSON encoding of
// files. Mapping keys are sorted, so equal documents share a fingerprint.
func Fingerprint(files *schemas.ProjectFiles) (string, error) {
	data, err := json.Marshal(files)
	if err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// ExpandPaths turns path filters into concrete path prefixes. A filter is
// either a JSON pointer ("/components/home/nodes") or a glob over the
// "section/name" keys of the document ("components/page-*").
func ExpandPaths(files *schemas.ProjectFiles, filters []string) ([]schemas.Path, error) {
	var out []schemas.Path
	for _, filter := range filters {
		if strings.HasPrefix(filter, "/") {
			out = append(out, schemas.ParsePointer(filter))
			continue
		}
		if !doublestar.ValidatePattern(filter) {
			return nil, fmt.Errorf("invalid path pattern %q", filter)
		}
		for _, key := range fileKeys(files) {
			ok, err := doublestar.Match(filter, key)
			if err != nil {
				return nil, err
			}
			if ok {
				section, name, _ := strings.Cut(key, "/")
				out = append(out, schemas.Path{section, name})
			}
		}
	}
	return out, nil
}

// fileKeys lists "section/name" for every top level entry, in walk order.
func fileKeys(p *schemas.ProjectFiles) []string {
	if p == nil {
		return nil
	}
	var keys []string
	for _, n := range schemas.SortedKeys(p.Components) {
		keys = append(keys, "components/"+n)
	}
	for _, n := range schemas.SortedKeys(p.Routes) {
		keys = append(keys, "routes/"+n)
	}
	for _, n := range schemas.SortedKeys(p.Themes) {
		keys = append(keys, "themes/"+n)
	}
	for _, n := range schemas.SortedKeys(p.Formulas) {
		keys = append(keys, "formulas/"+n)
	}
	for _, n := range schemas.SortedKeys(p.Actions) {
		keys = append(keys, "actions/"+n)
	}
	return keys
}

// ChangeScope maps files that changed below a document to path filters for
// ExpandPaths. changed holds slash separated paths relative to the document's
// directory, or to the directory holding it for a single-file document.
//
// A single-file document is rescanned whole whenever it changed. In a split
// layout each section file narrows the walk to its entry, and a change to the
// root file rescans everything. touched reports whether any file of the
// document changed at all.
func ChangeScope(document string, isDir bool, changed []string) (filters []string, touched bool) {
	if !isDir {
		return nil, slices.Contains(changed, filepath.Base(document))
	}
	seen := make(map[string]bool)
	for _, name := range changed {
		if ok, _ := doublestar.Match("project.{json,yaml,yml}", name); ok {
			return nil, true
		}
		for _, s := range sections {
			if ok, _ := doublestar.Match(s.pattern, name); !ok {
				continue
			}
			dir, _, _ := strings.Cut(s.pattern, "/")
			stem := strings.TrimSuffix(path.Base(name), path.Ext(name))
			filter := schemas.Path{dir, stem}.Pointer()
			if !seen[filter] {
				seen[filter] = true
				filters = append(filters, filter)
			}
		}
	}
	slices.Sort(filters)
	return filters, len(filters) > 0
}
