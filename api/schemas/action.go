package schemas

// -- Action Schemas --

// ActionType is the discriminant of the ActionModel tagged union.
type ActionType string

// Constants for every action kind. An action without a type is a Custom action.
const (
	ActionSetVariable             ActionType = "SetVariable"
	ActionTriggerEvent            ActionType = "TriggerEvent"
	ActionSwitch                  ActionType = "Switch"
	ActionFetch                   ActionType = "Fetch"
	ActionAbortFetch              ActionType = "AbortFetch"
	ActionCustom                  ActionType = "Custom"
	ActionSetURLParameter         ActionType = "SetURLParameter"
	ActionSetURLParameters        ActionType = "SetURLParameters"
	ActionTriggerWorkflow         ActionType = "TriggerWorkflow"
	ActionTriggerWorkflowCallback ActionType = "TriggerWorkflowCallback"
)

// ActionModel is one declarative step of an event handler or workflow.
type ActionModel struct {
	Type ActionType `json:"type,omitempty" yaml:"type,omitempty"`

	// Data is the payload of SetVariable, TriggerEvent, SetURLParameter,
	// TriggerWorkflowCallback and Custom actions, and the subject of a Switch.
	Data *Formula `json:"data,omitempty" yaml:"data,omitempty"`

	// Targets of SetVariable, TriggerEvent / TriggerWorkflowCallback,
	// Fetch / AbortFetch and SetURLParameter respectively.
	Variable  string `json:"variable,omitempty" yaml:"variable,omitempty"`
	Event     string `json:"event,omitempty" yaml:"event,omitempty"`
	API       string `json:"api,omitempty" yaml:"api,omitempty"`
	Parameter string `json:"parameter,omitempty" yaml:"parameter,omitempty"`

	// Switch branches.
	Cases   []ActionCase  `json:"cases,omitempty" yaml:"cases,omitempty"`
	Default *ActionBranch `json:"default,omitempty" yaml:"default,omitempty"`

	// Fetch inputs and callbacks.
	Inputs    map[string]*FormulaArgument `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	OnSuccess *ActionBranch               `json:"onSuccess,omitempty" yaml:"onSuccess,omitempty"`
	OnError   *ActionBranch               `json:"onError,omitempty" yaml:"onError,omitempty"`
	OnMessage *ActionBranch               `json:"onMessage,omitempty" yaml:"onMessage,omitempty"`

	// Custom action call.
	Name      string            `json:"name,omitempty" yaml:"name,omitempty"`
	Package   string            `json:"package,omitempty" yaml:"package,omitempty"`
	Arguments []FormulaArgument `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Label     string            `json:"label,omitempty" yaml:"label,omitempty"`

	// SetURLParameters and TriggerWorkflow parameters.
	Parameters  map[string]*FormulaArgument `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	HistoryMode string                      `json:"historyMode,omitempty" yaml:"historyMode,omitempty"`

	// TriggerWorkflow.
	Workflow        string                   `json:"workflow,omitempty" yaml:"workflow,omitempty"`
	ContextProvider string                   `json:"contextProvider,omitempty" yaml:"contextProvider,omitempty"`
	Callbacks       map[string]*ActionBranch `json:"callbacks,omitempty" yaml:"callbacks,omitempty"`
}

// ActionCase is one conditional branch of a Switch action.
type ActionCase struct {
	Condition *Formula      `json:"condition,omitempty" yaml:"condition,omitempty"`
	Actions   []ActionModel `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// ActionBranch is a nested, ordered list of actions.
type ActionBranch struct {
	Actions []ActionModel `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// Kind normalises the discriminant; an empty type is a Custom action.
func (a *ActionModel) Kind() ActionType {
	if a.Type == "" {
		return ActionCustom
	}
	return a.Type
}

// SubAction pairs a nested action list with its location relative to the action.
type SubAction struct {
	Path    Path
	Actions []ActionModel
}

// Formulas returns the formulas held directly by the action, in document order.
// Formulas of nested branches are not included.
func (a *ActionModel) Formulas() []SubFormula {
	if a == nil {
		return nil
	}
	var out []SubFormula
	add := func(p Path, f *Formula) {
		if f != nil {
			out = append(out, SubFormula{Path: p, Formula: f})
		}
	}
	switch a.Kind() {
	case ActionSetVariable, ActionTriggerEvent, ActionSetURLParameter, ActionTriggerWorkflowCallback:
		add(Path{"data"}, a.Data)
	case ActionSwitch:
		add(Path{"data"}, a.Data)
		for i, c := range a.Cases {
			add(Path{"cases", i, "condition"}, c.Condition)
		}
	case ActionFetch:
		for _, key := range SortedKeys(a.Inputs) {
			if in := a.Inputs[key]; in != nil {
				add(Path{"inputs", key, "formula"}, in.Formula)
			}
		}
	case ActionCustom:
		add(Path{"data"}, a.Data)
		for i, arg := range a.Arguments {
			add(Path{"arguments", i, "formula"}, arg.Formula)
		}
	case ActionSetURLParameters, ActionTriggerWorkflow:
		for _, key := range SortedKeys(a.Parameters) {
			if p := a.Parameters[key]; p != nil {
				add(Path{"parameters", key, "formula"}, p.Formula)
			}
		}
	}
	return out
}

// Branches returns the nested action lists of Switch, Fetch and
// TriggerWorkflow actions, in document order.
func (a *ActionModel) Branches() []SubAction {
	if a == nil {
		return nil
	}
	var out []SubAction
	addBranch := func(p Path, b *ActionBranch) {
		if b != nil {
			out = append(out, SubAction{Path: p.Append("actions"), Actions: b.Actions})
		}
	}
	switch a.Kind() {
	case ActionSwitch:
		for i, c := range a.Cases {
			out = append(out, SubAction{Path: Path{"cases", i, "actions"}, Actions: c.Actions})
		}
		addBranch(Path{"default"}, a.Default)
	case ActionFetch:
		addBranch(Path{"onSuccess"}, a.OnSuccess)
		addBranch(Path{"onError"}, a.OnError)
		addBranch(Path{"onMessage"}, a.OnMessage)
	case ActionTriggerWorkflow:
		for _, key := range SortedKeys(a.Callbacks) {
			addBranch(Path{"callbacks", key}, a.Callbacks[key])
		}
	}
	return out
}
