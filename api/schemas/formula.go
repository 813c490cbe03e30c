package schemas

// -- Formula Schemas --

// FormulaType is the discriminant of the Formula tagged union.
type FormulaType string

// Constants for every formula kind the document can hold.
const (
	FormulaValue    FormulaType = "value"    // A literal constant.
	FormulaPath     FormulaType = "path"     // A read of runtime data, e.g. ["Variables","x"].
	FormulaFunction FormulaType = "function" // A call of a global, package or built-in formula.
	FormulaApply    FormulaType = "apply"    // A call of a formula declared on the component.
	FormulaArray    FormulaType = "array"    // An ordered list of formulas.
	FormulaRecord   FormulaType = "record"   // Named properties, each a formula.
	FormulaSwitch   FormulaType = "switch"   // Ordered cases plus a default.
	FormulaAnd      FormulaType = "and"      // Logical conjunction of the arguments.
	FormulaOr       FormulaType = "or"       // Logical disjunction of the arguments.
	FormulaNot      FormulaType = "not"      // Negation of the single argument.
	FormulaError    FormulaType = "error"    // Placeholder left behind by a failed parse.
)

// BuiltinFormulaPrefix marks function names provided by the runtime.
const BuiltinFormulaPrefix = "@std/"

// Formula is a node of the declarative expression language. Only the fields
// relevant to Type are populated; the rest stay at their zero value.
type Formula struct {
	Type FormulaType `json:"type" yaml:"type"`

	// Value holds the literal of a value formula. A literal false or 0 is kept
	// because omitempty only drops a nil interface.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	// Path is the ordered segment list of a path formula.
	Path []string `json:"path,omitempty" yaml:"path,omitempty"`

	// Name and Package identify the callee of function and apply formulas.
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Package string `json:"package,omitempty" yaml:"package,omitempty"`

	// Arguments are used by function, apply, array, and, or and not.
	Arguments []FormulaArgument `json:"arguments,omitempty" yaml:"arguments,omitempty"`

	// Entries are the properties of a record formula.
	Entries []FormulaArgument `json:"entries,omitempty" yaml:"entries,omitempty"`

	Cases   []FormulaCase `json:"cases,omitempty" yaml:"cases,omitempty"`
	Default *Formula      `json:"default,omitempty" yaml:"default,omitempty"`

	// Message describes why an error placeholder was produced.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// FormulaArgument is a (possibly named) operand of a formula.
type FormulaArgument struct {
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Formula *Formula `json:"formula,omitempty" yaml:"formula,omitempty"`
}

// FormulaCase is one branch of a switch formula.
type FormulaCase struct {
	Condition *Formula `json:"condition,omitempty" yaml:"condition,omitempty"`
	Formula   *Formula `json:"formula,omitempty" yaml:"formula,omitempty"`
}

// SubFormula pairs a nested formula with its location relative to the parent.
type SubFormula struct {
	Path    Path
	Formula *Formula
}

// Children returns the formulas nested directly inside f, in document order.
// Nil operands are skipped.
func (f *Formula) Children() []SubFormula {
	if f == nil {
		return nil
	}
	var out []SubFormula
	switch f.Type {
	case FormulaFunction, FormulaApply, FormulaArray, FormulaAnd, FormulaOr, FormulaNot:
		for i, arg := range f.Arguments {
			if arg.Formula != nil {
				out = append(out, SubFormula{Path: Path{"arguments", i, "formula"}, Formula: arg.Formula})
			}
		}
	case FormulaRecord:
		for i, entry := range f.Entries {
			if entry.Formula != nil {
				out = append(out, SubFormula{Path: Path{"entries", i, "formula"}, Formula: entry.Formula})
			}
		}
	case FormulaSwitch:
		for i, c := range f.Cases {
			if c.Condition != nil {
				out = append(out, SubFormula{Path: Path{"cases", i, "condition"}, Formula: c.Condition})
			}
			if c.Formula != nil {
				out = append(out, SubFormula{Path: Path{"cases", i, "formula"}, Formula: c.Formula})
			}
		}
		if f.Default != nil {
			out = append(out, SubFormula{Path: Path{"default"}, Formula: f.Default})
		}
	}
	return out
}

// IsBuiltin reports whether a function formula targets a runtime built-in.
func (f *Formula) IsBuiltin() bool {
	return f != nil && f.Type == FormulaFunction && f.Package == "" && len(f.Name) > len(BuiltinFormulaPrefix) &&
		f.Name[:len(BuiltinFormulaPrefix)] == BuiltinFormulaPrefix
}

// -- Formula constructors --

// ValueFormula wraps a literal.
func ValueFormula(v any) *Formula { return &Formula{Type: FormulaValue, Value: v} }

// PathFormula builds a data read.
func PathFormula(segments ...string) *Formula { return &Formula{Type: FormulaPath, Path: segments} }

// FunctionFormula builds a call of a global or built-in formula.
func FunctionFormula(name string, args ...FormulaArgument) *Formula {
	return &Formula{Type: FormulaFunction, Name: name, Arguments: args}
}

// ApplyFormula builds a call of a component formula.
func ApplyFormula(name string, args ...FormulaArgument) *Formula {
	return &Formula{Type: FormulaApply, Name: name, Arguments: args}
}

// ArrayFormula builds an array of items.
func ArrayFormula(items ...*Formula) *Formula {
	return &Formula{Type: FormulaArray, Arguments: operands(items)}
}

// RecordFormula builds a record from named entries.
func RecordFormula(entries ...FormulaArgument) *Formula {
	return &Formula{Type: FormulaRecord, Entries: entries}
}

// AndFormula builds a conjunction.
func AndFormula(items ...*Formula) *Formula {
	return &Formula{Type: FormulaAnd, Arguments: operands(items)}
}

// OrFormula builds a disjunction.
func OrFormula(items ...*Formula) *Formula {
	return &Formula{Type: FormulaOr, Arguments: operands(items)}
}

// NotFormula builds a negation.
func NotFormula(item *Formula) *Formula {
	return &Formula{Type: FormulaNot, Arguments: operands([]*Formula{item})}
}

// SwitchFormula builds a switch with the given cases and default.
func SwitchFormula(def *Formula, cases ...FormulaCase) *Formula {
	return &Formula{Type: FormulaSwitch, Cases: cases, Default: def}
}

// Arg builds a named argument.
func Arg(name string, f *Formula) FormulaArgument { return FormulaArgument{Name: name, Formula: f} }

func operands(items []*Formula) []FormulaArgument {
	args := make([]FormulaArgument, len(items))
	for i, item := range items {
		args[i] = FormulaArgument{Formula: item}
	}
	return args
}
