// Package rules holds the built-in rule catalogue.
package rules

import (
	"github.com/canvasforge/doclint/api/schemas"
	"github.com/canvasforge/doclint/internal/jsonpatch"
	"github.com/canvasforge/doclint/internal/lint"
)

// Details is the payload attached to the issues of this package.
type Details struct {
	Name  string `json:"name,omitempty"`
	Value any    `json:"value,omitempty"`
}

// Fix ids offered by the catalogue.
const (
	FixDeleteVariable      schemas.FixType = "delete-variable"
	FixDeleteAttribute     schemas.FixType = "delete-attribute"
	FixDeleteFormula       schemas.FixType = "delete-formula"
	FixDeleteEvent         schemas.FixType = "delete-event"
	FixDeleteWorkflow      schemas.FixType = "delete-workflow"
	FixDeleteAPI           schemas.FixType = "delete-api"
	FixDeleteComponent     schemas.FixType = "delete-component"
	FixDeleteNode          schemas.FixType = "delete-node"
	FixRemoveCondition     schemas.FixType = "remove-condition"
	FixRemoveNode          schemas.FixType = "remove-node"
	FixRemoveCase          schemas.FixType = "remove-case"
	FixDeleteStyleProperty schemas.FixType = "delete-style-property"
)

// All returns the full catalogue in registration order: referential errors,
// dead code warnings, then info level findings.
func All() []*lint.Rule {
	return []*lint.Rule{
		UnknownVariable(),
		UnknownAttribute(),
		UnknownFormula(),
		UnknownComponentFormula(),
		UnknownEvent(),
		UnknownWorkflow(),
		UnknownAPI(),
		UnknownComponent(),
		UnknownAction(),
		UnknownContextProvider(),
		UnknownContextFormula(),
		UnknownURLParameter(),

		NoReferenceVariable(),
		NoReferenceAttribute(),
		NoReferenceComponentFormula(),
		NoReferenceEvent(),
		NoReferenceWorkflow(),
		NoReferenceAPI(),
		NoReferenceComponent(),
		NoReferenceNode(),

		NoStaticNodeCondition(),
		NoStaticSwitchCase(),
		UnknownThemeToken(),
		InvalidStyleDeclaration(),
	}
}

// omit is the fix shared by every rule that deletes the reported value.
func omit(args lint.FixArgs) *schemas.ProjectFiles {
	out, err := jsonpatch.Omit(args.Files, args.Path)
	if err != nil {
		return nil
	}
	return out
}
