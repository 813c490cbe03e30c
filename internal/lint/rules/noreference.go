package rules

import (
	"github.com/canvasforge/doclint/api/schemas"
	"github.com/canvasforge/doclint/internal/lint"
	"github.com/canvasforge/doclint/internal/walker"
)

// noReferenceRule builds a warning level rule reporting declarations of kind
// that unused rejects, each fixable by deleting the declaration.
func noReferenceRule(code, description string, kind walker.Kind, fix schemas.FixType, unused func(n walker.Node, refs *references) bool) *lint.Rule {
	return &lint.Rule{
		Code:        code,
		Level:       schemas.LevelWarning,
		Category:    schemas.CategoryNoReferences,
		Description: description,
		Visit: func(report lint.Reporter, ctx *walker.Context) {
			refs := referencesOf(ctx)
			for n := range walker.Select(ctx, kind) {
				if unused(n, refs) {
					report(n.Path, Details{Name: n.Name()}, fix)
				}
			}
		},
		Fixes: map[schemas.FixType]lint.FixFunc{fix: omit},
	}
}

// NoReferenceVariable reports component variables that no formula reads.
func NoReferenceVariable() *lint.Rule {
	return noReferenceRule("no reference variable", "A variable is declared but never read.",
		walker.KindVariable, FixDeleteVariable,
		func(n walker.Node, refs *references) bool {
			return !refs.of(componentKey(n.Path)).variables[n.Name()]
		})
}

// NoReferenceAttribute reports component attributes that no formula reads.
func NoReferenceAttribute() *lint.Rule {
	return noReferenceRule("no reference attribute", "An attribute is declared but never read.",
		walker.KindAttribute, FixDeleteAttribute,
		func(n walker.Node, refs *references) bool {
			return !refs.of(componentKey(n.Path)).attributes[n.Name()]
		})
}

// NoReferenceComponentFormula ignores formulas exposed to descendants, which
// may be read through a context.
func NoReferenceComponentFormula() *lint.Rule {
	return &lint.Rule{
		Code:        "no reference component formula",
		Level:       schemas.LevelWarning,
		Category:    schemas.CategoryNoReferences,
		Description: "A component formula is declared but never applied.",
		Visit: func(report lint.Reporter, ctx *walker.Context) {
			refs := referencesOf(ctx)
			for n := range walker.Select(ctx, walker.KindComponent) {
				c, _ := n.Value.(*schemas.Component)
				if c == nil {
					continue
				}
				used := refs.of(componentKey(n.Path)).formulas
				for _, name := range schemas.SortedKeys(c.Formulas) {
					if f := c.Formulas[name]; f != nil && !f.Exposed && !used[name] {
						report(n.Path.Append("formulas", name), Details{Name: name}, FixDeleteFormula)
					}
				}
			}
		},
		Fixes: map[schemas.FixType]lint.FixFunc{FixDeleteFormula: omit},
	}
}

// NoReferenceEvent reports component events that no action triggers.
func NoReferenceEvent() *lint.Rule {
	return noReferenceRule("no reference event", "An event is declared but never triggered.",
		walker.KindEvent, FixDeleteEvent,
		func(n walker.Node, refs *references) bool {
			return !refs.of(componentKey(n.Path)).events[n.Name()]
		})
}

// NoReferenceWorkflow reports workflows that are neither triggered nor exposed.
func NoReferenceWorkflow() *lint.Rule {
	return noReferenceRule("no reference workflow", "A workflow is declared but never triggered.",
		walker.KindWorkflow, FixDeleteWorkflow,
		func(n walker.Node, refs *references) bool {
			if w, ok := n.Value.(*schemas.ComponentWorkflow); ok && w.Exposed {
				return false
			}
			return !refs.of(componentKey(n.Path)).workflows[n.Name()]
		})
}

// NoReferenceAPI reports component APIs that are neither read nor fetched.
func NoReferenceAPI() *lint.Rule {
	return noReferenceRule("no reference api", "An api is declared but never fetched or read.",
		walker.KindAPI, FixDeleteAPI,
		func(n walker.Node, refs *references) bool {
			return !refs.of(componentKey(n.Path)).apis[n.Name()]
		})
}

// NoReferenceComponent skips pages, which are entry points.
func NoReferenceComponent() *lint.Rule {
	return noReferenceRule("no reference component", "A component is neither a page nor used by another component.",
		walker.KindComponent, FixDeleteComponent,
		func(n walker.Node, refs *references) bool {
			if n.Component.IsPage() {
				return false
			}
			return !refs.components[componentKey(n.Path)]
		})
}

// NoReferenceNode reports nodes that cannot be reached from the root node.
func NoReferenceNode() *lint.Rule {
	return &lint.Rule{
		Code:        "no reference node",
		Level:       schemas.LevelWarning,
		Category:    schemas.CategoryNoReferences,
		Description: "A node is not reachable from the component's root node.",
		Visit: func(report lint.Reporter, ctx *walker.Context) {
			for n := range walker.Select(ctx, walker.KindComponent) {
				c, _ := n.Value.(*schemas.Component)
				if c == nil {
					continue
				}
				reachable := reachableNodes(c)
				for _, id := range schemas.SortedKeys(c.Nodes) {
					if !reachable[id] {
						report(n.Path.Append("nodes", id), Details{Name: id}, FixDeleteNode)
					}
				}
			}
		},
		Fixes: map[schemas.FixType]lint.FixFunc{FixDeleteNode: omit},
	}
}

func reachableNodes(c *schemas.Component) nameSet {
	seen := nameSet{}
	stack := []string{schemas.RootNodeID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := c.Nodes[id]
		if n == nil || seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, n.Children...)
	}
	return seen
}
