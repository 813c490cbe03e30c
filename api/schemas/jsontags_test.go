package schemas_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/canvasforge/doclint/api/schemas"
)

// TestStructJSONTags guards the field names of the document and report
// formats against accidental renames.
func TestStructJSONTags(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name         string
		structRef    any
		expectedTags map[string]string
	}{
		{
			name:      "Issue",
			structRef: schemas.Issue{},
			expectedTags: map[string]string{
				"Code":     "code",
				"Level":    "level",
				"Category": "category",
				"Path":     "path",
				"Details":  "details,omitempty",
				"Fixes":    "fixes,omitempty",
			},
		},
		{
			name:      "FixPatch",
			structRef: schemas.FixPatch{},
			expectedTags: map[string]string{
				"Op":    "op",
				"Path":  "path",
				"From":  "from,omitempty",
				"Value": "value,omitempty",
			},
		},
		{
			name:      "FormulaCase",
			structRef: schemas.FormulaCase{},
			expectedTags: map[string]string{
				"Condition": "condition,omitempty",
				"Formula":   "formula,omitempty",
			},
		},
		{
			name:      "ComponentContext",
			structRef: schemas.ComponentContext{},
			expectedTags: map[string]string{
				"ComponentName": "componentName,omitempty",
				"Package":       "package,omitempty",
				"Formulas":      "formulas,omitempty",
				"Workflows":     "workflows,omitempty",
			},
		},
		{
			name:      "ProjectFiles",
			structRef: schemas.ProjectFiles{},
			expectedTags: map[string]string{
				"Components": "components,omitempty",
				"Routes":     "routes,omitempty",
				"Themes":     "themes,omitempty",
				"Formulas":   "formulas,omitempty",
				"Actions":    "actions,omitempty",
				"Packages":   "packages,omitempty",
			},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			structType := reflect.TypeOf(tt.structRef)
			actualTags := make(map[string]string)
			for i := 0; i < structType.NumField(); i++ {
				field := structType.Field(i)
				if jsonTag := field.Tag.Get("json"); jsonTag != "" {
					actualTags[field.Name] = jsonTag
				}
			}
			assert.Equal(t, tt.expectedTags, actualTags, "JSON tags for struct %s do not match expectations", tt.name)
		})
	}
}
