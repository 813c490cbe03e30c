package rules

import (
	"slices"
	"strings"

	"github.com/canvasforge/doclint/api/schemas"
	"github.com/canvasforge/doclint/internal/lint"
	"github.com/canvasforge/doclint/internal/walker"
)

// unknownRule builds an error level rule in the Unknown Reference category.
func unknownRule(code, description string, visit func(lint.Reporter, *walker.Context)) *lint.Rule {
	return &lint.Rule{
		Code:        code,
		Level:       schemas.LevelError,
		Category:    schemas.CategoryUnknownReference,
		Description: description,
		Visit:       visit,
	}
}

// pathRead returns the name read by a path formula rooted at root, if any.
func pathRead(f *schemas.Formula, root string) (string, bool) {
	if f == nil || f.Type != schemas.FormulaPath || len(f.Path) < 2 || f.Path[0] != root {
		return "", false
	}
	return f.Path[1], true
}

// UnknownVariable reports reads and writes of variables the component does not declare.
func UnknownVariable() *lint.Rule {
	return unknownRule("unknown variable", "A formula reads or an action sets a variable the component does not declare.",
		func(report lint.Reporter, ctx *walker.Context) {
			for n := range walker.Select(ctx, walker.KindFormula, walker.KindActionModel) {
				if n.Component == nil {
					continue
				}
				if name, ok := pathRead(n.Formula(), rootVariables); ok && n.Component.Variables[name] == nil {
					report(n.Path, Details{Name: name})
				}
				if a := n.Action(); a != nil && a.Kind() == schemas.ActionSetVariable && n.Component.Variables[a.Variable] == nil {
					report(n.Path, Details{Name: a.Variable})
				}
			}
		})
}

// UnknownAttribute reports reads of attributes the component does not declare.
func UnknownAttribute() *lint.Rule {
	return unknownRule("unknown attribute", "A formula reads an attribute the component does not declare.",
		func(report lint.Reporter, ctx *walker.Context) {
			for n := range walker.Select(ctx, walker.KindFormula) {
				if n.Component == nil {
					continue
				}
				if name, ok := pathRead(n.Formula(), rootAttributes); ok && n.Component.Attributes[name] == nil {
					report(n.Path, Details{Name: name})
				}
			}
		})
}

// UnknownFormula reports calls of project or package formulas that do not exist.
func UnknownFormula() *lint.Rule {
	return unknownRule("unknown formula", "A function formula calls a project or package formula that does not exist.",
		func(report lint.Reporter, ctx *walker.Context) {
			for n := range walker.Select(ctx, walker.KindFormula, walker.KindRouteFormula) {
				f := n.Formula()
				if f == nil || f.Type != schemas.FormulaFunction || f.IsBuiltin() {
					continue
				}
				if n.Files.FindFormula(f.Name, f.Package) == nil {
					report(n.Path, Details{Name: qualified(f.Package, f.Name)})
				}
			}
		})
}

// UnknownComponentFormula reports apply formulas naming a missing component formula.
func UnknownComponentFormula() *lint.Rule {
	return unknownRule("unknown component formula", "An apply formula calls a formula the component does not declare.",
		func(report lint.Reporter, ctx *walker.Context) {
			for n := range walker.Select(ctx, walker.KindFormula) {
				f := n.Formula()
				if n.Component == nil || f == nil || f.Type != schemas.FormulaApply {
					continue
				}
				if n.Component.Formulas[f.Name] == nil {
					report(n.Path, Details{Name: f.Name})
				}
			}
		})
}

// UnknownEvent reports TriggerEvent actions for events the component does not declare.
func UnknownEvent() *lint.Rule {
	return unknownRule("unknown event", "A TriggerEvent action emits an event the component does not declare.",
		func(report lint.Reporter, ctx *walker.Context) {
			for n := range walker.Select(ctx, walker.KindActionModel) {
				a := n.Action()
				if n.Component == nil || a == nil || a.Kind() != schemas.ActionTriggerEvent {
					continue
				}
				if n.Component.Events[a.Event] == nil {
					report(n.Path, Details{Name: a.Event})
				}
			}
		})
}

// UnknownWorkflow reports TriggerWorkflow actions naming a missing workflow.
func UnknownWorkflow() *lint.Rule {
	return unknownRule("unknown workflow", "A TriggerWorkflow action starts a workflow that is neither declared nor subscribed from a context.",
		func(report lint.Reporter, ctx *walker.Context) {
			for n := range walker.Select(ctx, walker.KindActionModel) {
				a := n.Action()
				if n.Component == nil || a == nil || a.Kind() != schemas.ActionTriggerWorkflow {
					continue
				}
				if a.ContextProvider == "" {
					if n.Component.Workflows[a.Workflow] == nil {
						report(n.Path, Details{Name: a.Workflow})
					}
					continue
				}
				sub := n.Component.Contexts[a.ContextProvider]
				if sub == nil || !slices.Contains(sub.Workflows, a.Workflow) {
					report(n.Path, Details{Name: a.ContextProvider + "/" + a.Workflow})
				}
			}
		})
}

// UnknownAPI reports API reads and Fetch actions for APIs the component does not declare.
func UnknownAPI() *lint.Rule {
	return unknownRule("unknown api", "A formula or action refers to an api the component does not declare.",
		func(report lint.Reporter, ctx *walker.Context) {
			for n := range walker.Select(ctx, walker.KindFormula, walker.KindActionModel) {
				if n.Component == nil {
					continue
				}
				if name, ok := pathRead(n.Formula(), rootApis); ok && n.Component.APIs[name] == nil {
					report(n.Path, Details{Name: name})
				}
				if a := n.Action(); a != nil {
					switch a.Kind() {
					case schemas.ActionFetch, schemas.ActionAbortFetch:
						if n.Component.APIs[a.API] == nil {
							report(n.Path, Details{Name: a.API})
						}
					}
				}
			}
		})
}

// UnknownComponent reports component nodes that render a missing component.
func UnknownComponent() *lint.Rule {
	return unknownRule("unknown component", "A node references a component that does not exist.",
		func(report lint.Reporter, ctx *walker.Context) {
			for n := range walker.Select(ctx, walker.KindComponentNode) {
				m := n.NodeModel()
				if m == nil || m.Type != schemas.NodeComponent {
					continue
				}
				if n.Files.FindComponent(m.Name, m.Package) == nil {
					report(n.Path, Details{Name: m.ComponentRef()})
				}
			}
		})
}

// UnknownAction reports custom actions naming a missing project or package action.
func UnknownAction() *lint.Rule {
	return unknownRule("unknown action", "A custom action calls a project or package action that does not exist.",
		func(report lint.Reporter, ctx *walker.Context) {
			for n := range walker.Select(ctx, walker.KindActionModel) {
				a := n.Action()
				if a == nil || a.Kind() != schemas.ActionCustom || strings.HasPrefix(a.Name, schemas.BuiltinFormulaPrefix) {
					continue
				}
				if n.Files.FindAction(a.Name, a.Package) == nil {
					report(n.Path, Details{Name: qualified(a.Package, a.Name)})
				}
			}
		})
}

// UnknownContextProvider reports contexts whose provider component does not exist.
func UnknownContextProvider() *lint.Rule {
	return unknownRule("unknown context provider", "A context subscription or context read names a provider component that is missing or not subscribed.",
		func(report lint.Reporter, ctx *walker.Context) {
			for n := range walker.Select(ctx, walker.KindContext, walker.KindFormula) {
				if n.Component == nil {
					continue
				}
				if c, ok := n.Value.(*schemas.ComponentContext); ok {
					if n.Files.FindComponent(providerName(n.Name(), c), c.Package) == nil {
						report(n.Path, Details{Name: n.Name()})
					}
					continue
				}
				if provider, ok := pathRead(n.Formula(), rootContexts); ok && n.Component.Contexts[provider] == nil {
					report(n.Path, Details{Name: provider})
				}
			}
		})
}

// UnknownContextFormula reports context reads of formulas the provider does not expose.
func UnknownContextFormula() *lint.Rule {
	return unknownRule("unknown context formula", "A context formula is read without a subscription, or the provider does not expose it.",
		func(report lint.Reporter, ctx *walker.Context) {
			for n := range walker.Select(ctx, walker.KindContext, walker.KindFormula) {
				if n.Component == nil {
					continue
				}
				if c, ok := n.Value.(*schemas.ComponentContext); ok {
					provider := n.Files.FindComponent(providerName(n.Name(), c), c.Package)
					if provider == nil {
						continue
					}
					for i, name := range c.Formulas {
						if f := provider.Formulas[name]; f == nil || !f.Exposed {
							report(n.Path.Append("formulas", i), Details{Name: name})
						}
					}
					continue
				}
				f := n.Formula()
				if f == nil || f.Type != schemas.FormulaPath || len(f.Path) < 3 || f.Path[0] != rootContexts {
					continue
				}
				if sub := n.Component.Contexts[f.Path[1]]; sub != nil && !slices.Contains(sub.Formulas, f.Path[2]) {
					report(n.Path, Details{Name: f.Path[1] + "/" + f.Path[2]})
				}
			}
		})
}

// UnknownURLParameter reports URL parameter reads and writes a page route does not declare.
func UnknownURLParameter() *lint.Rule {
	return unknownRule("unknown url parameter", "A page reads or sets a url parameter its route does not declare.",
		func(report lint.Reporter, ctx *walker.Context) {
			for n := range walker.Select(ctx, walker.KindFormula, walker.KindActionModel) {
				if !n.Component.IsPage() {
					continue
				}
				params := n.Component.Route.Parameters()
				if name, ok := pathRead(n.Formula(), rootURLParameters); ok {
					if _, declared := params[name]; !declared {
						report(n.Path, Details{Name: name})
					}
				}
				a := n.Action()
				if a == nil {
					continue
				}
				switch a.Kind() {
				case schemas.ActionSetURLParameter:
					if _, declared := params[a.Parameter]; !declared {
						report(n.Path, Details{Name: a.Parameter})
					}
				case schemas.ActionSetURLParameters:
					for _, name := range schemas.SortedKeys(a.Parameters) {
						if _, declared := params[name]; !declared {
							report(n.Path.Append("parameters", name), Details{Name: name})
						}
					}
				}
			}
		})
}

// providerName resolves the provider component of a context subscription.
// The subscription key is the provider name unless componentName overrides it.
func providerName(key string, c *schemas.ComponentContext) string {
	if c.ComponentName != "" {
		return c.ComponentName
	}
	return key
}

func qualified(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "/" + name
}
