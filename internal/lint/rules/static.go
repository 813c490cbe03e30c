package rules

import (
	"slices"

	"github.com/canvasforge/doclint/api/schemas"
	"github.com/canvasforge/doclint/internal/analysis/contextless"
	"github.com/canvasforge/doclint/internal/jsonpatch"
	"github.com/canvasforge/doclint/internal/lint"
	"github.com/canvasforge/doclint/internal/walker"
)

// NoStaticNodeCondition reports node conditions whose value is known without
// runtime data. A condition that always holds can be dropped; one that never
// holds means the node never renders. Non-boolean constants are coerced.
func NoStaticNodeCondition() *lint.Rule {
	return &lint.Rule{
		Code:        "no static node condition",
		Level:       schemas.LevelInfo,
		Category:    schemas.CategoryQuality,
		Description: "A node condition is constant.",
		Visit: func(report lint.Reporter, ctx *walker.Context) {
			for n := range walker.Select(ctx, walker.KindComponentNode) {
				m := n.NodeModel()
				if m == nil || m.Condition == nil {
					continue
				}
				value, ok := constantCondition(m.Condition)
				switch {
				case !ok:
				case value:
					report(n.Path.Append("condition"), Details{Value: true}, FixRemoveCondition)
				default:
					report(n.Path.Append("condition"), Details{Value: false}, FixRemoveNode)
				}
			}
		},
		Fixes: map[schemas.FixType]lint.FixFunc{
			FixRemoveCondition: omit,
			FixRemoveNode:      removeNode,
		},
	}
}

// removeNode deletes the node owning the reported condition and unlinks it
// from its parents. Descendants are left for the orphan node rule.
func removeNode(args lint.FixArgs) *schemas.ProjectFiles {
	if len(args.Path) < 5 {
		return nil
	}
	comp := componentKey(args.Path)
	id, _ := args.Path[3].(string)
	out, err := jsonpatch.Clone(args.Files)
	if err != nil || out == nil {
		return nil
	}
	c := out.Components[comp]
	if c == nil || c.Nodes[id] == nil || id == schemas.RootNodeID {
		return nil
	}
	delete(c.Nodes, id)
	for _, n := range c.Nodes {
		if n != nil {
			n.Children = slices.DeleteFunc(n.Children, func(child string) bool { return child == id })
		}
	}
	return out
}

// constantCondition coerces a static condition the way the runtime does.
// Error placeholders are left to the editor that produced them.
func constantCondition(f *schemas.Formula) (value, ok bool) {
	if f == nil || f.Type == schemas.FormulaError {
		return false, false
	}
	r := contextless.Evaluate(f)
	switch {
	case contextless.IsTruthy(r):
		return true, true
	case contextless.IsFalsy(r):
		return false, true
	}
	return false, false
}

// NoStaticSwitchCase reports cases of switch formulas and Switch actions
// whose condition is constant. Cases that can never match are removable.
func NoStaticSwitchCase() *lint.Rule {
	return &lint.Rule{
		Code:        "no static switch case",
		Level:       schemas.LevelInfo,
		Category:    schemas.CategoryPerformance,
		Description: "A switch case condition is constant.",
		Visit: func(report lint.Reporter, ctx *walker.Context) {
			check := func(path schemas.Path, condition *schemas.Formula) {
				value, ok := constantCondition(condition)
				switch {
				case !ok:
				case value:
					report(path, Details{Value: true})
				default:
					report(path, Details{Value: false}, FixRemoveCase)
				}
			}
			for n := range walker.Select(ctx, walker.KindFormula, walker.KindRouteFormula, walker.KindActionModel) {
				switch n.Kind {
				case walker.KindActionModel:
					a := n.Action()
					if a == nil || a.Type != schemas.ActionSwitch {
						continue
					}
					for i, c := range a.Cases {
						check(n.Path.Append("cases", i), c.Condition)
					}
				default:
					f := n.Formula()
					if f == nil || f.Type != schemas.FormulaSwitch {
						continue
					}
					for i, c := range f.Cases {
						check(n.Path.Append("cases", i), c.Condition)
					}
				}
			}
		},
		Fixes: map[schemas.FixType]lint.FixFunc{FixRemoveCase: omit},
	}
}
