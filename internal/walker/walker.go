// Package walker traverses a project document depth first and hands every
// reachable value to the handlers registered for its kind.
//
// The traversal order is fixed: components by name (each component, then its
// node graph from "root", then formulas, variables, workflows, events,
// attributes, contexts, onLoad, onAttributeChange, apis and the page route),
// then project routes, themes, formulas and actions. Mapping keys are visited
// in sorted order so two walks of the same document produce the same sequence.
package walker

import (
	"iter"

	"github.com/canvasforge/doclint/api/schemas"
)

// Kind names the type of value a visitor wants to receive.
type Kind string

// Constants for every visitable kind.
const (
	KindComponent        Kind = "component"
	KindComponentNode    Kind = "component-node"
	KindFormula          Kind = "formula"
	KindStyleDeclaration Kind = "style-declaration"
	KindActionModel      Kind = "action-model"
	KindRoute            Kind = "route"
	KindRouteFormula     Kind = "route-formula"
	KindAPI              Kind = "api"
	KindVariable         Kind = "variable"
	KindWorkflow         Kind = "workflow"
	KindEvent            Kind = "event"
	KindAttribute        Kind = "attribute"
	KindContext          Kind = "context"
	KindTheme            Kind = "theme"
	KindProjectFormula   Kind = "project-formula"
	KindProjectAction    Kind = "project-action"
)

// DefaultMaxDepth bounds formula and action nesting.
const DefaultMaxDepth = 256

// Node is one value found during a traversal.
type Node struct {
	Kind  Kind
	Path  schemas.Path
	Value any

	// Component is the enclosing component, nil for project level values.
	Component *schemas.Component
	Files     *schemas.ProjectFiles
	Memo      *Memo
}

// Formula returns the value of formula and route-formula nodes.
func (n Node) Formula() *schemas.Formula {
	f, _ := n.Value.(*schemas.Formula)
	return f
}

// Action returns the value of action-model nodes.
func (n Node) Action() *schemas.ActionModel {
	a, _ := n.Value.(*schemas.ActionModel)
	return a
}

// NodeModel returns the value of component-node nodes.
func (n Node) NodeModel() *schemas.NodeModel {
	m, _ := n.Value.(*schemas.NodeModel)
	return m
}

// Style returns the value of style-declaration nodes.
func (n Node) Style() schemas.StyleDeclaration {
	s, _ := n.Value.(schemas.StyleDeclaration)
	return s
}

// Name returns the last string segment of the path, which is the mapping key
// for declarations such as variables, events and apis.
func (n Node) Name() string {
	for i := len(n.Path) - 1; i >= 0; i-- {
		if s, ok := n.Path[i].(string); ok {
			return s
		}
	}
	return ""
}

// Context carries the document and the per-run state through a traversal.
type Context struct {
	Files *schemas.ProjectFiles
	Memo  *Memo

	// PathsToVisit restricts delivery to nodes below one of the prefixes. The
	// whole document is still walked.
	PathsToVisit []schemas.Path

	// IncludeAncestors also delivers the values enclosing a prefix, so a
	// visitor handed a node can report on one of its fields.
	IncludeAncestors bool

	// MaxDepth bounds formula and action nesting; zero means DefaultMaxDepth.
	MaxDepth int
}

// NewContext returns a context with a fresh memo.
func NewContext(files *schemas.ProjectFiles) *Context {
	return &Context{Files: files, Memo: NewMemo()}
}

// Unfiltered returns a copy of c that delivers every node and shares c's memo.
func (c *Context) Unfiltered() *Context {
	out := *c
	out.PathsToVisit = nil
	return &out
}

// InScope reports whether p lies below one of the PathsToVisit prefixes.
// Every path is in scope when there are none.
func (c *Context) InScope(p schemas.Path) bool {
	if len(c.PathsToVisit) == 0 {
		return true
	}
	for _, prefix := range c.PathsToVisit {
		if p.HasPrefix(prefix) {
			return true
		}
	}
	return false
}

func (c *Context) wants(p schemas.Path) bool {
	if c.InScope(p) {
		return true
	}
	if !c.IncludeAncestors {
		return false
	}
	for _, prefix := range c.PathsToVisit {
		if prefix.HasPrefix(p) {
			return true
		}
	}
	return false
}

func (c *Context) maxDepth() int {
	if c.MaxDepth > 0 {
		return c.MaxDepth
	}
	return DefaultMaxDepth
}

// Handler receives the nodes of the kind it was registered for.
type Handler func(Node)

// Walker dispatches a traversal to handlers keyed by kind.
type Walker struct {
	handlers map[Kind][]Handler
}

// New returns a walker with no handlers.
func New() *Walker {
	return &Walker{handlers: make(map[Kind][]Handler)}
}

// On registers h for every node of kind. Handlers of the same kind run in
// registration order.
func (w *Walker) On(kind Kind, h Handler) *Walker {
	w.handlers[kind] = append(w.handlers[kind], h)
	return w
}

// Walk traverses the document in c and invokes the registered handlers.
func (w *Walker) Walk(c *Context) {
	for n := range Traverse(c) {
		for _, h := range w.handlers[n.Kind] {
			h(n)
		}
	}
}

// Select yields only the nodes of the given kinds.
func Select(c *Context, kinds ...Kind) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for n := range Traverse(c) {
			for _, k := range kinds {
				if n.Kind == k {
					if !yield(n) {
						return
					}
					break
				}
			}
		}
	}
}

// Traverse yields every node of the document in depth first order. The
// sequence is restartable: each range over it walks the document again.
func Traverse(c *Context) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if c == nil || c.Files == nil {
			return
		}
		t := &traversal{ctx: c, yield: yield, maxDepth: c.maxDepth()}
		t.project(c.Files)
	}
}
