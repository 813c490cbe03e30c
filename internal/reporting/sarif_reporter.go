// internal/reporting/sarif_reporter.go
package reporting

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/canvasforge/doclint/api/schemas"
	"github.com/canvasforge/doclint/internal/lint"
	"github.com/canvasforge/doclint/internal/reporting/sarif"
)

// Constants for tool identification in the SARIF report.
const (
	ToolName     = "doclint"
	ToolInfoURI  = "https://github.com/canvasforge/doclint"
	SARIFVersion = "2.1.0"
	SARIFSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
)

// ruleIDSanitizer collapses everything but alphanumerics, underscore and dot
// into a single hyphen.
var ruleIDSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_.]+`)

// SARIFReporter implements Reporter for SARIF 2.1.0. It is thread safe.
type SARIFReporter struct {
	writer io.WriteCloser
	logger *zap.Logger
	log    *sarif.Log
	// mu protects the log structure and the maps.
	mu          sync.Mutex
	ruleIndex   map[string]int
	artifactSet map[string]bool
}

// NewSARIFReporter creates a reporter writing a single-run SARIF log. The
// catalogue in opts is published up front so rule indices are stable.
func NewSARIFReporter(writer io.WriteCloser, logger *zap.Logger, opts Options) *SARIFReporter {
	run := &sarif.Run{
		Tool: &sarif.Tool{
			Driver: &sarif.ToolComponent{
				Name:           ToolName,
				Version:        pString(opts.ToolVersion),
				InformationURI: pString(ToolInfoURI),
				Rules:          []*sarif.ReportingDescriptor{},
			},
		},
		Results: []*sarif.Result{},
	}
	if opts.RunID != "" {
		run.AutomationDetails = &sarif.RunAutomationDetails{
			ID:   pString("doclint/" + opts.RunID),
			GUID: pString(opts.RunID),
		}
	}

	r := &SARIFReporter{
		writer:      writer,
		logger:      logger.Named("sarif_reporter"),
		log:         &sarif.Log{Version: SARIFVersion, Schema: SARIFSchema, Runs: []*sarif.Run{run}},
		ruleIndex:   make(map[string]int),
		artifactSet: make(map[string]bool),
	}
	for _, rule := range opts.Rules {
		r.ensureRule(rule.Code, rule)
	}
	return r
}

// Write converts the issues of one document into SARIF results.
func (r *SARIFReporter) Write(document string, issues []schemas.Issue) error {
	startTime := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	run := r.log.Runs[0]
	if !r.artifactSet[document] {
		r.artifactSet[document] = true
		run.Artifacts = append(run.Artifacts, &sarif.Artifact{Location: &sarif.ArtifactLocation{URI: pString(document)}})
	}

	for _, is := range issues {
		idx := r.ensureRule(is.Code, nil)
		props := sarif.PropertyBag{"category": string(is.Category)}
		if len(is.Fixes) > 0 {
			props["fixes"] = is.Fixes
		}
		if is.Details != nil {
			props["details"] = is.Details
		}
		run.Results = append(run.Results, &sarif.Result{
			RuleID:     run.Tool.Driver.Rules[idx].ID,
			RuleIndex:  idx,
			Message:    &sarif.Message{Text: pString(fmt.Sprintf("%s at %s", is.Code, pointerOf(is.Path)))},
			Level:      mapLevelToSARIF(is.Level),
			Locations:  createLocations(document, is.Path),
			Properties: &props,
		})
	}

	if len(issues) > 0 {
		r.logger.Debug("Wrote issues to SARIF buffer",
			zap.String("document", document),
			zap.Int("issues_count", len(issues)),
			zap.Duration("duration_ms", time.Since(startTime)),
		)
	}
	return nil
}

// Close finalizes the SARIF log and writes it to the output writer.
func (r *SARIFReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run := r.log.Runs[0]
	r.logger.Info("Finalizing SARIF report",
		zap.Int("total_results", len(run.Results)),
		zap.Int("total_rules", len(run.Tool.Driver.Rules)),
	)

	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	var err error
	if encErr := encoder.Encode(r.log); encErr != nil {
		r.logger.Error("Failed to encode SARIF log to JSON", zap.Error(encErr))
		err = fmt.Errorf("failed to encode SARIF output: %w", encErr)
	}
	return closeWriter(r.writer, err)
}

// SanitizeRuleID turns a rule code into a SARIF rule id, e.g.
// "no reference variable" becomes "DOCLINT-NO-REFERENCE-VARIABLE".
func SanitizeRuleID(code string) string {
	name := strings.Trim(ruleIDSanitizer.ReplaceAllString(strings.ToUpper(code), "-"), "-")
	if name == "" {
		name = "UNNAMED-RULE"
	}
	return "DOCLINT-" + name
}

// ensureRule returns the descriptor index of code, registering it first if
// needed. Must be called while holding the mutex or during construction.
func (r *SARIFReporter) ensureRule(code string, rule *lint.Rule) int {
	if idx, ok := r.ruleIndex[code]; ok {
		return idx
	}
	driver := r.log.Runs[0].Tool.Driver
	desc := &sarif.ReportingDescriptor{
		ID:               SanitizeRuleID(code),
		Name:             pString(code),
		ShortDescription: &sarif.MultiformatMessageString{Text: pString(code)},
	}
	if rule != nil {
		desc.FullDescription = &sarif.MultiformatMessageString{Text: pString(rule.Description)}
		desc.DefaultConfiguration = &sarif.ReportingConfiguration{Level: mapLevelToSARIF(rule.Level)}
		fixes := make([]string, 0, len(rule.Fixes))
		for _, f := range rule.FixTypes() {
			fixes = append(fixes, string(f))
		}
		desc.Properties = &sarif.PropertyBag{
			"tags":     []string{"doclint", string(rule.Category)},
			"category": string(rule.Category),
			"fixes":    fixes,
		}
	}
	driver.Rules = append(driver.Rules, desc)
	idx := len(driver.Rules) - 1
	r.ruleIndex[code] = idx
	r.logger.Debug("Registered SARIF rule definition", zap.String("rule_id", desc.ID))
	return idx
}

// createLocations points at the document and, logically, at the value.
func createLocations(document string, path schemas.Path) []*sarif.Location {
	return []*sarif.Location{{
		PhysicalLocation: &sarif.PhysicalLocation{
			ArtifactLocation: &sarif.ArtifactLocation{URI: pString(document)},
		},
		LogicalLocations: []*sarif.LogicalLocation{{
			FullyQualifiedName: pString(pointerOf(path)),
			Kind:               pString("object"),
		}},
	}}
}

func mapLevelToSARIF(level schemas.Level) sarif.Level {
	switch level {
	case schemas.LevelError:
		return sarif.LevelError
	case schemas.LevelWarning:
		return sarif.LevelWarning
	default:
		return sarif.LevelNote
	}
}

// pString returns a pointer to s. Helper for optional SARIF fields.
func pString(s string) *string {
	return &s
}
