package schemas

import (
	"cmp"
	"slices"
)

// -- Project Schemas --

// ProjectFiles is the root of a project document.
type ProjectFiles struct {
	Components map[string]*Component        `json:"components,omitempty" yaml:"components,omitempty"`
	Routes     map[string]*Route            `json:"routes,omitempty" yaml:"routes,omitempty"`
	Themes     map[string]*Theme            `json:"themes,omitempty" yaml:"themes,omitempty"`
	Formulas   map[string]*GlobalFormula    `json:"formulas,omitempty" yaml:"formulas,omitempty"`
	Actions    map[string]*GlobalAction     `json:"actions,omitempty" yaml:"actions,omitempty"`
	Packages   map[string]*InstalledPackage `json:"packages,omitempty" yaml:"packages,omitempty"`
}

// Component is a reusable unit of UI with its own node graph and state.
type Component struct {
	Name string `json:"name" yaml:"name"`

	Nodes      map[string]*NodeModel          `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Formulas   map[string]*ComponentFormula   `json:"formulas,omitempty" yaml:"formulas,omitempty"`
	Variables  map[string]*ComponentVariable  `json:"variables,omitempty" yaml:"variables,omitempty"`
	Workflows  map[string]*ComponentWorkflow  `json:"workflows,omitempty" yaml:"workflows,omitempty"`
	Events     map[string]*ComponentEvent     `json:"events,omitempty" yaml:"events,omitempty"`
	Attributes map[string]*ComponentAttribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Contexts   map[string]*ComponentContext   `json:"contexts,omitempty" yaml:"contexts,omitempty"`
	APIs       map[string]*ComponentAPI       `json:"apis,omitempty" yaml:"apis,omitempty"`

	OnLoad            *EventModel `json:"onLoad,omitempty" yaml:"onLoad,omitempty"`
	OnAttributeChange *EventModel `json:"onAttributeChange,omitempty" yaml:"onAttributeChange,omitempty"`

	// Route is set on page components, which are entry points of the app.
	Route *PageRoute `json:"route,omitempty" yaml:"route,omitempty"`
}

// IsPage reports whether the component is reachable through a route.
func (c *Component) IsPage() bool { return c != nil && c.Route != nil }

// ComponentFormula is a named, reusable formula scoped to a component.
type ComponentFormula struct {
	Name      string            `json:"name" yaml:"name"`
	Formula   *Formula          `json:"formula,omitempty" yaml:"formula,omitempty"`
	Arguments []FormulaArgument `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Memoize   bool              `json:"memoize,omitempty" yaml:"memoize,omitempty"`
	Exposed   bool              `json:"exposeInContext,omitempty" yaml:"exposeInContext,omitempty"`
}

// ComponentVariable is a piece of mutable component state.
type ComponentVariable struct {
	InitialValue *Formula `json:"initialValue,omitempty" yaml:"initialValue,omitempty"`
}

// ComponentWorkflow is a named, parameterised action list.
type ComponentWorkflow struct {
	Name       string                      `json:"name" yaml:"name"`
	Parameters []WorkflowParameter         `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Callbacks  []WorkflowParameter         `json:"callbacks,omitempty" yaml:"callbacks,omitempty"`
	Actions    []ActionModel               `json:"actions,omitempty" yaml:"actions,omitempty"`
	Exposed    bool                        `json:"exposeInContext,omitempty" yaml:"exposeInContext,omitempty"`
	TestValues map[string]*FormulaArgument `json:"testValues,omitempty" yaml:"testValues,omitempty"`
}

// WorkflowParameter names a workflow input or callback.
type WorkflowParameter struct {
	Name      string `json:"name" yaml:"name"`
	TestValue any    `json:"testValue,omitempty" yaml:"testValue,omitempty"`
}

// ComponentEvent is an event the component can emit to its parent.
type ComponentEvent struct {
	Name       string `json:"name" yaml:"name"`
	DummyEvent any    `json:"dummyEvent,omitempty" yaml:"dummyEvent,omitempty"`
}

// ComponentAttribute is an input the parent passes to the component.
type ComponentAttribute struct {
	Name      string `json:"name" yaml:"name"`
	TestValue any    `json:"testValue,omitempty" yaml:"testValue,omitempty"`
}

// ComponentContext subscribes to formulas and workflows exposed by an
// ancestor component.
type ComponentContext struct {
	ComponentName string   `json:"componentName,omitempty" yaml:"componentName,omitempty"`
	Package       string   `json:"package,omitempty" yaml:"package,omitempty"`
	Formulas      []string `json:"formulas,omitempty" yaml:"formulas,omitempty"`
	Workflows     []string `json:"workflows,omitempty" yaml:"workflows,omitempty"`
}

// ComponentAPI is a declarative HTTP request bound to a component.
type ComponentAPI struct {
	Name      string                      `json:"name" yaml:"name"`
	Method    string                      `json:"method,omitempty" yaml:"method,omitempty"`
	URL       *Formula                    `json:"url,omitempty" yaml:"url,omitempty"`
	Path      map[string]*FormulaArgument `json:"path,omitempty" yaml:"path,omitempty"`
	Queries   map[string]*FormulaArgument `json:"queryParams,omitempty" yaml:"queryParams,omitempty"`
	Headers   map[string]*FormulaArgument `json:"headers,omitempty" yaml:"headers,omitempty"`
	Inputs    map[string]*FormulaArgument `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Body      *Formula                    `json:"body,omitempty" yaml:"body,omitempty"`
	AutoFetch *Formula                    `json:"autoFetch,omitempty" yaml:"autoFetch,omitempty"`

	OnCompleted *EventModel `json:"onCompleted,omitempty" yaml:"onCompleted,omitempty"`
	OnFailed    *EventModel `json:"onFailed,omitempty" yaml:"onFailed,omitempty"`
	OnMessage   *EventModel `json:"onMessage,omitempty" yaml:"onMessage,omitempty"`
}

// Formulas returns every formula held by the API definition, in document order.
func (a *ComponentAPI) Formulas() []SubFormula {
	if a == nil {
		return nil
	}
	var out []SubFormula
	if a.URL != nil {
		out = append(out, SubFormula{Path: Path{"url"}, Formula: a.URL})
	}
	for _, group := range []struct {
		key  string
		args map[string]*FormulaArgument
	}{{"path", a.Path}, {"queryParams", a.Queries}, {"headers", a.Headers}, {"inputs", a.Inputs}} {
		for _, name := range SortedKeys(group.args) {
			if arg := group.args[name]; arg != nil && arg.Formula != nil {
				out = append(out, SubFormula{Path: Path{group.key, name, "formula"}, Formula: arg.Formula})
			}
		}
	}
	if a.Body != nil {
		out = append(out, SubFormula{Path: Path{"body"}, Formula: a.Body})
	}
	if a.AutoFetch != nil {
		out = append(out, SubFormula{Path: Path{"autoFetch"}, Formula: a.AutoFetch})
	}
	return out
}

// -- Route Schemas --

// PageRoute describes how a page component is addressed.
type PageRoute struct {
	Path  []RouteSegment         `json:"path,omitempty" yaml:"path,omitempty"`
	Query map[string]*RouteQuery `json:"query,omitempty" yaml:"query,omitempty"`
	Info  *RouteInfo             `json:"info,omitempty" yaml:"info,omitempty"`
}

// RouteSegment is a static or parameter segment of a URL path.
type RouteSegment struct {
	Type string `json:"type" yaml:"type"` // "static" or "param"
	Name string `json:"name" yaml:"name"`
}

// RouteQuery declares a query parameter.
type RouteQuery struct {
	Name string `json:"name" yaml:"name"`
}

// RouteInfo holds the document metadata formulas of a route.
type RouteInfo struct {
	Title       *Formula `json:"title,omitempty" yaml:"title,omitempty"`
	Description *Formula `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        *Formula `json:"icon,omitempty" yaml:"icon,omitempty"`
	Language    *Formula `json:"language,omitempty" yaml:"language,omitempty"`
}

// Formulas returns the metadata formulas in document order.
func (i *RouteInfo) Formulas() []SubFormula {
	if i == nil {
		return nil
	}
	var out []SubFormula
	for _, f := range []struct {
		key     string
		formula *Formula
	}{{"title", i.Title}, {"description", i.Description}, {"icon", i.Icon}, {"language", i.Language}} {
		if f.formula != nil {
			out = append(out, SubFormula{Path: Path{f.key}, Formula: f.formula})
		}
	}
	return out
}

// Route is a project level rewrite or redirect.
type Route struct {
	Type        string            `json:"type,omitempty" yaml:"type,omitempty"` // "rewrite" or "redirect"
	Source      PageRoute         `json:"source" yaml:"source"`
	Destination *RouteDestination `json:"destination,omitempty" yaml:"destination,omitempty"`
	Info        *RouteInfo        `json:"info,omitempty" yaml:"info,omitempty"`
}

// RouteDestination computes the target of a route.
type RouteDestination struct {
	URL         *Formula                    `json:"url,omitempty" yaml:"url,omitempty"`
	QueryParams map[string]*FormulaArgument `json:"queryParams,omitempty" yaml:"queryParams,omitempty"`
}

// Parameters returns the names of every path and query parameter the route
// source declares.
func (r *PageRoute) Parameters() map[string]struct{} {
	out := make(map[string]struct{})
	if r == nil {
		return out
	}
	for _, seg := range r.Path {
		if seg.Type == "param" {
			out[seg.Name] = struct{}{}
		}
	}
	for name := range r.Query {
		out[name] = struct{}{}
	}
	return out
}

// -- Theme Schemas --

// Theme holds design tokens referenced from style declarations as var(--token).
type Theme struct {
	Fonts     []ThemeFont       `json:"fonts,omitempty" yaml:"fonts,omitempty"`
	Colors    map[string]string `json:"colors,omitempty" yaml:"colors,omitempty"`
	FontSizes map[string]string `json:"fontSizes,omitempty" yaml:"fontSizes,omitempty"`
	Spacing   map[string]string `json:"spacing,omitempty" yaml:"spacing,omitempty"`
	Shadows   map[string]string `json:"shadows,omitempty" yaml:"shadows,omitempty"`
	ZIndices  map[string]string `json:"zIndices,omitempty" yaml:"zIndices,omitempty"`
}

// ThemeFont is a font family made available by the theme.
type ThemeFont struct {
	Name     string   `json:"name" yaml:"name"`
	Family   string   `json:"family" yaml:"family"`
	Provider string   `json:"provider,omitempty" yaml:"provider,omitempty"`
	Variants []string `json:"variants,omitempty" yaml:"variants,omitempty"`
}

// Tokens returns every custom property name the theme defines.
func (t *Theme) Tokens() []string {
	if t == nil {
		return nil
	}
	var out []string
	for _, group := range []map[string]string{t.Colors, t.FontSizes, t.Spacing, t.Shadows, t.ZIndices} {
		out = append(out, SortedKeys(group)...)
	}
	for _, font := range t.Fonts {
		out = append(out, font.Name)
	}
	return out
}

// -- Global Formula / Action Schemas --

// GlobalFormula is a project level formula, either declarative or code based.
type GlobalFormula struct {
	Name      string            `json:"name" yaml:"name"`
	Formula   *Formula          `json:"formula,omitempty" yaml:"formula,omitempty"`
	Arguments []FormulaArgument `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Handler   string            `json:"handler,omitempty" yaml:"handler,omitempty"`
	Exported  bool              `json:"exported,omitempty" yaml:"exported,omitempty"`
}

// GlobalAction is a project level, code based action.
type GlobalAction struct {
	Name      string            `json:"name" yaml:"name"`
	Arguments []FormulaArgument `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Handler   string            `json:"handler,omitempty" yaml:"handler,omitempty"`
	Version   int               `json:"version,omitempty" yaml:"version,omitempty"`
	Exported  bool              `json:"exported,omitempty" yaml:"exported,omitempty"`
}

// InstalledPackage is a project-like bundle installed under its package name.
type InstalledPackage struct {
	Manifest   PackageManifest           `json:"manifest" yaml:"manifest"`
	Components map[string]*Component     `json:"components,omitempty" yaml:"components,omitempty"`
	Formulas   map[string]*GlobalFormula `json:"formulas,omitempty" yaml:"formulas,omitempty"`
	Actions    map[string]*GlobalAction  `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// PackageManifest identifies an installed package.
type PackageManifest struct {
	Name       string `json:"name" yaml:"name"`
	CommitHash string `json:"commit,omitempty" yaml:"commit,omitempty"`
}

// -- Lookup helpers --

// FindComponent resolves a component by its possibly package qualified name.
func (p *ProjectFiles) FindComponent(name, pkg string) *Component {
	if p == nil {
		return nil
	}
	if pkg != "" {
		if installed := p.Packages[pkg]; installed != nil {
			return installed.Components[name]
		}
		return nil
	}
	return p.Components[name]
}

// FindFormula resolves a global formula, optionally inside a package.
func (p *ProjectFiles) FindFormula(name, pkg string) *GlobalFormula {
	if p == nil {
		return nil
	}
	if pkg != "" {
		if installed := p.Packages[pkg]; installed != nil {
			return installed.Formulas[name]
		}
		return nil
	}
	return p.Formulas[name]
}

// FindAction resolves a global action, optionally inside a package.
func (p *ProjectFiles) FindAction(name, pkg string) *GlobalAction {
	if p == nil {
		return nil
	}
	if pkg != "" {
		if installed := p.Packages[pkg]; installed != nil {
			return installed.Actions[name]
		}
		return nil
	}
	return p.Actions[name]
}

// SortedKeys returns the keys of m in ascending order. Document mappings are
// unordered, so every traversal goes through this to stay deterministic.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
