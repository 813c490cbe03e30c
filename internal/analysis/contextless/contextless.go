// Package contextless decides whether a formula can be evaluated without any
// runtime data and, if so, what its value is.
//
// The evaluation is intentionally conservative. Path reads, function and apply
// calls and switch formulas are always dynamic, even when every part of them is
// constant, and the boolean combinators only short-circuit on operands they have
// already proven. "dynamic || true" is therefore reported as dynamic.
package contextless

import (
	"math"

	"github.com/canvasforge/doclint/api/schemas"
)

// MaxDepth bounds the nesting the evaluator follows. Deeper formulas are
// reported as dynamic.
const MaxDepth = 512

// Result is the outcome of a contextless evaluation. Value is only meaningful
// when IsStatic is true; nil stands for "undefined".
type Result struct {
	IsStatic bool
	Value    any
}

var dynamic = Result{}

// Evaluate reports whether f is statically known and its value.
func Evaluate(f *schemas.Formula) Result {
	return evaluate(f, 0)
}

// IsAlwaysTrue reports whether f is static and evaluates to true.
func IsAlwaysTrue(f *schemas.Formula) bool {
	r := Evaluate(f)
	return r.IsStatic && r.Value == true
}

// IsAlwaysFalse reports whether f is static and evaluates to false.
func IsAlwaysFalse(f *schemas.Formula) bool {
	r := Evaluate(f)
	return r.IsStatic && r.Value == false
}

// IsTruthy reports whether r is static and its value coerces to true.
func IsTruthy(r Result) bool {
	return r.IsStatic && truthy(r.Value)
}

// IsFalsy reports whether r is static and its value coerces to false, as a
// condition reading null, 0 or "" does at runtime.
func IsFalsy(r Result) bool {
	return r.IsStatic && !truthy(r.Value)
}

// IsStaticCondition reports whether f is static, whatever its value.
func IsStaticCondition(f *schemas.Formula) bool {
	return Evaluate(f).IsStatic
}

func evaluate(f *schemas.Formula, depth int) Result {
	if f == nil || depth > MaxDepth {
		return dynamic
	}
	switch f.Type {
	case schemas.FormulaValue:
		return Result{IsStatic: true, Value: f.Value}

	case schemas.FormulaArray:
		items := make([]any, 0, len(f.Arguments))
		for _, arg := range f.Arguments {
			r := evaluate(arg.Formula, depth+1)
			if !r.IsStatic {
				return dynamic
			}
			items = append(items, r.Value)
		}
		return Result{IsStatic: true, Value: items}

	case schemas.FormulaRecord:
		entries := make(map[string]any, len(f.Entries))
		for _, entry := range f.Entries {
			r := evaluate(entry.Formula, depth+1)
			if !r.IsStatic {
				return dynamic
			}
			entries[entry.Name] = r.Value
		}
		return Result{IsStatic: true, Value: entries}

	case schemas.FormulaAnd:
		for _, arg := range f.Arguments {
			r := evaluate(arg.Formula, depth+1)
			if !r.IsStatic {
				return dynamic
			}
			if !truthy(r.Value) {
				return Result{IsStatic: true, Value: false}
			}
		}
		return Result{IsStatic: true, Value: true}

	case schemas.FormulaOr:
		for _, arg := range f.Arguments {
			r := evaluate(arg.Formula, depth+1)
			if !r.IsStatic {
				return dynamic
			}
			if truthy(r.Value) {
				return Result{IsStatic: true, Value: true}
			}
		}
		return Result{IsStatic: true, Value: false}

	case schemas.FormulaNot:
		if len(f.Arguments) == 0 {
			return dynamic
		}
		r := evaluate(f.Arguments[0].Formula, depth+1)
		if !r.IsStatic {
			return dynamic
		}
		return Result{IsStatic: true, Value: !truthy(r.Value)}

	case schemas.FormulaError:
		return Result{IsStatic: true}

	case schemas.FormulaPath, schemas.FormulaFunction, schemas.FormulaApply, schemas.FormulaSwitch:
		return dynamic
	}
	return dynamic
}

// truthy follows the runtime's coercion: null, false, 0, "" and NaN are
// falsy, everything else is truthy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case float32:
		return t != 0 && !math.IsNaN(float64(t))
	case int:
		return t != 0
	case int64:
		return t != 0
	case int32:
		return t != 0
	case uint64:
		return t != 0
	}
	return true
}
