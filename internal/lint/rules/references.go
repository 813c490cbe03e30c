package rules

import (
	"github.com/canvasforge/doclint/api/schemas"
	"github.com/canvasforge/doclint/internal/walker"
)

// Roots of path formulas that address component state.
const (
	rootVariables     = "Variables"
	rootAttributes    = "Attributes"
	rootApis          = "Apis"
	rootContexts      = "Contexts"
	rootURLParameters = "URL parameters"
)

type nameSet map[string]bool

// usage records what one component reads or triggers.
type usage struct {
	variables  nameSet
	attributes nameSet
	formulas   nameSet
	workflows  nameSet
	apis       nameSet
	events     nameSet
}

func newUsage() *usage {
	return &usage{
		variables:  nameSet{},
		attributes: nameSet{},
		formulas:   nameSet{},
		workflows:  nameSet{},
		apis:       nameSet{},
		events:     nameSet{},
	}
}

// references is the cross-rule index of everything the document refers to.
type references struct {
	byComponent map[string]*usage
	components  nameSet
}

func (r *references) of(component string) *usage {
	u := r.byComponent[component]
	if u == nil {
		u = newUsage()
		r.byComponent[component] = u
	}
	return u
}

// referencesOf returns the run's reference index, building it on first use.
// It always covers the whole document, whatever the path filter.
func referencesOf(ctx *walker.Context) *references {
	return walker.Memoize(ctx.Memo, "references", func() *references {
		return collectReferences(ctx.Unfiltered())
	})
}

func collectReferences(ctx *walker.Context) *references {
	refs := &references{byComponent: map[string]*usage{}, components: nameSet{}}

	for n := range walker.Traverse(ctx) {
		comp := componentKey(n.Path)
		switch n.Kind {
		case walker.KindFormula, walker.KindRouteFormula:
			f := n.Formula()
			if comp == "" || f == nil {
				continue
			}
			u := refs.of(comp)
			switch f.Type {
			case schemas.FormulaPath:
				if len(f.Path) < 2 {
					continue
				}
				switch f.Path[0] {
				case rootVariables:
					u.variables[f.Path[1]] = true
				case rootAttributes:
					u.attributes[f.Path[1]] = true
				case rootApis:
					u.apis[f.Path[1]] = true
				}
			case schemas.FormulaApply:
				u.formulas[f.Name] = true
			}

		case walker.KindActionModel:
			a := n.Action()
			if comp == "" || a == nil {
				continue
			}
			u := refs.of(comp)
			switch a.Kind() {
			case schemas.ActionTriggerEvent:
				u.events[a.Event] = true
			case schemas.ActionTriggerWorkflow:
				if a.ContextProvider == "" {
					u.workflows[a.Workflow] = true
				}
			case schemas.ActionFetch, schemas.ActionAbortFetch:
				u.apis[a.API] = true
			}

		case walker.KindComponentNode:
			if m := n.NodeModel(); m != nil && m.Type == schemas.NodeComponent && m.Package == "" {
				refs.components[m.Name] = true
			}

		case walker.KindContext:
			if c, ok := n.Value.(*schemas.ComponentContext); ok && c.Package == "" {
				refs.components[providerName(n.Name(), c)] = true
			}
		}
	}
	return refs
}

// componentKey returns the component name of a path below "components".
func componentKey(p schemas.Path) string {
	if len(p) < 2 || p[0] != "components" {
		return ""
	}
	name, _ := p[1].(string)
	return name
}
