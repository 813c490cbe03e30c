package walker

import (
	"github.com/canvasforge/doclint/api/schemas"
)

// traversal holds the state of one walk. Every method returns false once the
// consumer stopped the sequence, and callers unwind immediately.
type traversal struct {
	ctx      *Context
	yield    func(Node) bool
	maxDepth int
}

func (t *traversal) emit(kind Kind, path schemas.Path, value any, comp *schemas.Component) bool {
	if !t.ctx.wants(path) {
		return true
	}
	return t.yield(Node{
		Kind:      kind,
		Path:      path,
		Value:     value,
		Component: comp,
		Files:     t.ctx.Files,
		Memo:      t.ctx.Memo,
	})
}

func (t *traversal) project(files *schemas.ProjectFiles) bool {
	for _, name := range schemas.SortedKeys(files.Components) {
		c := files.Components[name]
		if c == nil {
			continue
		}
		if !t.component(c, schemas.Path{"components", name}) {
			return false
		}
	}

	for _, name := range schemas.SortedKeys(files.Routes) {
		r := files.Routes[name]
		if r == nil {
			continue
		}
		path := schemas.Path{"routes", name}
		if !t.emit(KindRoute, path, r, nil) {
			return false
		}
		if !t.routeFormulas(r, path) {
			return false
		}
	}

	for _, name := range schemas.SortedKeys(files.Themes) {
		if th := files.Themes[name]; th != nil {
			if !t.emit(KindTheme, schemas.Path{"themes", name}, th, nil) {
				return false
			}
		}
	}

	for _, name := range schemas.SortedKeys(files.Formulas) {
		f := files.Formulas[name]
		if f == nil {
			continue
		}
		path := schemas.Path{"formulas", name}
		if !t.emit(KindProjectFormula, path, f, nil) {
			return false
		}
		if !t.formula(KindFormula, f.Formula, path.Append("formula"), nil, 0) {
			return false
		}
	}

	for _, name := range schemas.SortedKeys(files.Actions) {
		if a := files.Actions[name]; a != nil {
			if !t.emit(KindProjectAction, schemas.Path{"actions", name}, a, nil) {
				return false
			}
		}
	}
	return true
}

func (t *traversal) component(c *schemas.Component, path schemas.Path) bool {
	if !t.emit(KindComponent, path, c, c) {
		return false
	}

	visited := make(map[string]bool, len(c.Nodes))
	if !t.node(c, schemas.RootNodeID, path, visited) {
		return false
	}

	for _, name := range schemas.SortedKeys(c.Formulas) {
		if f := c.Formulas[name]; f != nil {
			if !t.formula(KindFormula, f.Formula, path.Append("formulas", name, "formula"), c, 0) {
				return false
			}
		}
	}

	for _, name := range schemas.SortedKeys(c.Variables) {
		v := c.Variables[name]
		if v == nil {
			continue
		}
		vp := path.Append("variables", name)
		if !t.emit(KindVariable, vp, v, c) {
			return false
		}
		if !t.formula(KindFormula, v.InitialValue, vp.Append("initialValue"), c, 0) {
			return false
		}
	}

	for _, name := range schemas.SortedKeys(c.Workflows) {
		w := c.Workflows[name]
		if w == nil {
			continue
		}
		wp := path.Append("workflows", name)
		if !t.emit(KindWorkflow, wp, w, c) {
			return false
		}
		if !t.actions(w.Actions, wp.Append("actions"), c, 0) {
			return false
		}
	}

	for _, name := range schemas.SortedKeys(c.Events) {
		if e := c.Events[name]; e != nil {
			if !t.emit(KindEvent, path.Append("events", name), e, c) {
				return false
			}
		}
	}

	for _, name := range schemas.SortedKeys(c.Attributes) {
		if a := c.Attributes[name]; a != nil {
			if !t.emit(KindAttribute, path.Append("attributes", name), a, c) {
				return false
			}
		}
	}

	for _, name := range schemas.SortedKeys(c.Contexts) {
		if ctx := c.Contexts[name]; ctx != nil {
			if !t.emit(KindContext, path.Append("contexts", name), ctx, c) {
				return false
			}
		}
	}

	if c.OnLoad != nil {
		if !t.actions(c.OnLoad.Actions, path.Append("onLoad", "actions"), c, 0) {
			return false
		}
	}
	if c.OnAttributeChange != nil {
		if !t.actions(c.OnAttributeChange.Actions, path.Append("onAttributeChange", "actions"), c, 0) {
			return false
		}
	}

	for _, name := range schemas.SortedKeys(c.APIs) {
		api := c.APIs[name]
		if api == nil {
			continue
		}
		ap := path.Append("apis", name)
		if !t.emit(KindAPI, ap, api, c) {
			return false
		}
		for _, sub := range api.Formulas() {
			if !t.formula(KindFormula, sub.Formula, ap.Append(sub.Path...), c, 0) {
				return false
			}
		}
		for _, cb := range []struct {
			key   string
			event *schemas.EventModel
		}{{"onCompleted", api.OnCompleted}, {"onFailed", api.OnFailed}, {"onMessage", api.OnMessage}} {
			if cb.event == nil {
				continue
			}
			if !t.actions(cb.event.Actions, ap.Append(cb.key, "actions"), c, 0) {
				return false
			}
		}
	}

	if c.Route != nil {
		for _, sub := range c.Route.Info.Formulas() {
			if !t.formula(KindRouteFormula, sub.Formula, path.Append("route", "info").Append(sub.Path...), c, 0) {
				return false
			}
		}
	}
	return true
}

// node visits a node and its subtree. Missing ids are skipped and each id is
// visited at most once, so dangling references and cycles are harmless.
func (t *traversal) node(c *schemas.Component, id string, base schemas.Path, visited map[string]bool) bool {
	if visited[id] {
		return true
	}
	n := c.Nodes[id]
	if n == nil {
		return true
	}
	visited[id] = true

	path := base.Append("nodes", id)
	if !t.emit(KindComponentNode, path, n, c) {
		return false
	}

	for _, f := range []struct {
		key     string
		formula *schemas.Formula
	}{{"condition", n.Condition}, {"repeat", n.Repeat}, {"repeatKey", n.RepeatKey}, {"value", n.Value}} {
		if !t.formula(KindFormula, f.formula, path.Append(f.key), c, 0) {
			return false
		}
	}

	for _, name := range schemas.SortedKeys(n.Attrs) {
		if !t.formula(KindFormula, n.Attrs[name], path.Append("attrs", name), c, 0) {
			return false
		}
	}

	for _, name := range schemas.SortedKeys(n.Classes) {
		if cls := n.Classes[name]; cls != nil {
			if !t.formula(KindFormula, cls.Formula, path.Append("classes", name, "formula"), c, 0) {
				return false
			}
		}
	}

	for _, prop := range schemas.SortedKeys(n.Style) {
		decl := schemas.StyleDeclaration{Property: prop, Value: n.Style[prop]}
		if !t.emit(KindStyleDeclaration, path.Append("style", prop), decl, c) {
			return false
		}
	}

	for _, name := range schemas.SortedKeys(n.Events) {
		if ev := n.Events[name]; ev != nil {
			if !t.actions(ev.Actions, path.Append("events", name, "actions"), c, 0) {
				return false
			}
		}
	}

	for _, child := range n.Children {
		if !t.node(c, child, base, visited) {
			return false
		}
	}
	return true
}

func (t *traversal) formula(kind Kind, f *schemas.Formula, path schemas.Path, c *schemas.Component, depth int) bool {
	if f == nil || depth > t.maxDepth {
		return true
	}
	if !t.emit(kind, path, f, c) {
		return false
	}
	for _, sub := range f.Children() {
		if !t.formula(kind, sub.Formula, path.Append(sub.Path...), c, depth+1) {
			return false
		}
	}
	return true
}

func (t *traversal) actions(list []schemas.ActionModel, path schemas.Path, c *schemas.Component, depth int) bool {
	if depth > t.maxDepth {
		return true
	}
	for i := range list {
		a := &list[i]
		ap := path.Append(i)
		if !t.emit(KindActionModel, ap, a, c) {
			return false
		}
		for _, sub := range a.Formulas() {
			if !t.formula(KindFormula, sub.Formula, ap.Append(sub.Path...), c, 0) {
				return false
			}
		}
		for _, branch := range a.Branches() {
			if !t.actions(branch.Actions, ap.Append(branch.Path...), c, depth+1) {
				return false
			}
		}
	}
	return true
}

func (t *traversal) routeFormulas(r *schemas.Route, path schemas.Path) bool {
	for _, sub := range r.Info.Formulas() {
		if !t.formula(KindRouteFormula, sub.Formula, path.Append("info").Append(sub.Path...), nil, 0) {
			return false
		}
	}
	if r.Destination == nil {
		return true
	}
	dp := path.Append("destination")
	if !t.formula(KindRouteFormula, r.Destination.URL, dp.Append("url"), nil, 0) {
		return false
	}
	for _, name := range schemas.SortedKeys(r.Destination.QueryParams) {
		if q := r.Destination.QueryParams[name]; q != nil {
			if !t.formula(KindRouteFormula, q.Formula, dp.Append("queryParams", name, "formula"), nil, 0) {
				return false
			}
		}
	}
	return true
}
