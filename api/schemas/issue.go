package schemas

// -- Issue Schemas --

// Level is the severity of an Issue.
type Level string

// Constants defining the issue levels, most severe first.
const (
	LevelError   Level = "error"   // Referential integrity violations.
	LevelWarning Level = "warning" // Dead code and unused declarations.
	LevelInfo    Level = "info"    // Style findings and statically constant conditions.
)

// Levels lists every level in descending severity.
var Levels = []Level{LevelError, LevelWarning, LevelInfo}

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelError, LevelWarning, LevelInfo:
		return true
	}
	return false
}

// Category groups rules by the kind of problem they detect.
type Category string

// Constants for the rule categories.
const (
	CategoryUnknownReference Category = "Unknown Reference"
	CategoryNoReferences     Category = "No References"
	CategoryQuality          Category = "Quality"
	CategoryPerformance      Category = "Performance"
)

// FixType identifies one of the fixes a rule offers.
type FixType string

// Issue is a single problem found in a project document. Issues are produced
// fresh by every analysis run and are never persisted.
type Issue struct {
	Code     string    `json:"code"`
	Level    Level     `json:"level"`
	Category Category  `json:"category"`
	Path     Path      `json:"path"`
	Details  any       `json:"details,omitempty"`
	Fixes    []FixType `json:"fixes,omitempty"`
}

// GroupKey returns the file the issue belongs to: the first two path segments
// ("components/home", "formulas/sum"), or the first one for shorter paths.
func (i Issue) GroupKey() string {
	switch len(i.Path) {
	case 0:
		return ""
	case 1:
		return segmentString(i.Path[0])
	default:
		return segmentString(i.Path[0]) + "/" + segmentString(i.Path[1])
	}
}

// -- Patch Schemas --

// PatchOp is a JSON-Patch style operation.
type PatchOp string

// Constants for the supported patch operations.
const (
	OpAdd     PatchOp = "add"
	OpRemove  PatchOp = "remove"
	OpReplace PatchOp = "replace"
	OpMove    PatchOp = "move"
	OpCopy    PatchOp = "copy"
	OpTest    PatchOp = "test"
)

// FixPatch is one structural edit of a project document. Path and From are
// RFC 6901 JSON pointers.
type FixPatch struct {
	Op    PatchOp `json:"op"`
	Path  string  `json:"path"`
	From  string  `json:"from,omitempty"`
	Value any     `json:"value,omitempty"`
}
