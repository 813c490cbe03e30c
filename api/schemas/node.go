package schemas

// -- Node Schemas --

// NodeType is the discriminant of the NodeModel tagged union.
type NodeType string

// Constants for every node kind of a component's render graph.
const (
	NodeElement   NodeType = "element"
	NodeText      NodeType = "text"
	NodeComponent NodeType = "component"
	NodeSlot      NodeType = "slot"
)

// RootNodeID is the canonical entry of a component's node graph.
const RootNodeID = "root"

// NodeModel is one entry of a component's render graph.
type NodeModel struct {
	Type NodeType `json:"type" yaml:"type"`
	ID   string   `json:"id,omitempty" yaml:"id,omitempty"`

	Condition *Formula `json:"condition,omitempty" yaml:"condition,omitempty"`
	Repeat    *Formula `json:"repeat,omitempty" yaml:"repeat,omitempty"`
	RepeatKey *Formula `json:"repeatKey,omitempty" yaml:"repeatKey,omitempty"`
	Slot      string   `json:"slot,omitempty" yaml:"slot,omitempty"`

	// Text nodes.
	Value *Formula `json:"value,omitempty" yaml:"value,omitempty"`

	// Elements.
	Tag   string            `json:"tag,omitempty" yaml:"tag,omitempty"`
	Style map[string]string `json:"style,omitempty" yaml:"style,omitempty"`

	// Component references.
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Package string `json:"package,omitempty" yaml:"package,omitempty"`

	// Shared by elements and component references.
	Attrs   map[string]*Formula    `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Classes map[string]*ClassModel `json:"classes,omitempty" yaml:"classes,omitempty"`
	Events  map[string]*EventModel `json:"events,omitempty" yaml:"events,omitempty"`

	// Children lists child node ids in render order.
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`
}

// ClassModel toggles a CSS class with an optional formula.
type ClassModel struct {
	Formula *Formula `json:"formula,omitempty" yaml:"formula,omitempty"`
}

// EventModel binds a trigger to an ordered action list.
type EventModel struct {
	Trigger string        `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	Actions []ActionModel `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// StyleDeclaration is a single property/value pair of a node's style.
type StyleDeclaration struct {
	Property string
	Value    string
}

// ComponentRef returns the qualified name of a component reference. Package
// components are namespaced as "package/name".
func (n *NodeModel) ComponentRef() string {
	if n.Package != "" {
		return n.Package + "/" + n.Name
	}
	return n.Name
}
