package model

import (
	"encoding/json"
	"time"
)

// Severity classifies a diagnostic as a hard error or a recommendation-level
// warning. The two severities partition a ValidationResult; a diagnostic is
// never in both lists.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Diagnostic is a single validation finding. It is immutable once created and
// is never deduplicated: two events with the same defect produce two
// diagnostics, one per event.
type Diagnostic struct {
	Severity Severity
	// Scope locates the finding within the document (e.g. "Event 3",
	// 1-based, in document order). Empty for document-level findings.
	Scope   string
	Message string
}

// String renders the diagnostic as a human-readable message, prefixed with
// its scope when one is set. This is the form that appears in reports.
func (d Diagnostic) String() string {
	if d.Scope == "" {
		return d.Message
	}
	return d.Scope + ": " + d.Message
}

// ValidationResult collects the diagnostics for one document, partitioned by
// severity. A fresh instance is created per validation call; it is owned by
// the caller after return and is never shared between validations.
type ValidationResult struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// Add appends a diagnostic to the list matching its severity.
func (r *ValidationResult) Add(d Diagnostic) {
	switch d.Severity {
	case SeverityWarning:
		r.Warnings = append(r.Warnings, d)
	default:
		r.Errors = append(r.Errors, d)
	}
}

// AddError appends an error-severity diagnostic.
func (r *ValidationResult) AddError(scope, message string) {
	r.Add(Diagnostic{Severity: SeverityError, Scope: scope, Message: message})
}

// AddWarning appends a warning-severity diagnostic.
func (r *ValidationResult) AddWarning(scope, message string) {
	r.Add(Diagnostic{Severity: SeverityWarning, Scope: scope, Message: message})
}

// Extend appends every diagnostic in ds, keeping order.
func (r *ValidationResult) Extend(ds []Diagnostic) {
	for _, d := range ds {
		r.Add(d)
	}
}

// FileResult is the serialized shape of one document's result: rendered
// diagnostic messages as plain string arrays, so the report round-trips
// through JSON without loss.
type FileResult struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// FileResult renders the result into its report shape. The slices are always
// non-nil so the JSON encodes as [] rather than null.
func (r *ValidationResult) FileResult() FileResult {
	out := FileResult{
		Errors:   make([]string, 0, len(r.Errors)),
		Warnings: make([]string, 0, len(r.Warnings)),
	}
	for _, d := range r.Errors {
		out.Errors = append(out.Errors, d.String())
	}
	for _, d := range r.Warnings {
		out.Warnings = append(out.Warnings, d.String())
	}
	return out
}

// Report is the aggregated artifact for one validation run: a mapping from
// document path to that document's result. It marshals as a JSON object
// keyed by path, each entry holding {errors, warnings}.
type Report struct {
	Files map[string]FileResult
}

// NewReport returns an empty report ready to accumulate file results.
func NewReport() *Report {
	return &Report{Files: make(map[string]FileResult)}
}

// TotalErrors sums error counts across all files.
func (r *Report) TotalErrors() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Errors)
	}
	return n
}

// TotalWarnings sums warning counts across all files.
func (r *Report) TotalWarnings() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Warnings)
	}
	return n
}

// MarshalJSON serializes the report as the bare path-keyed object.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Files)
}

// UnmarshalJSON restores a report from its path-keyed object form.
func (r *Report) UnmarshalJSON(data []byte) error {
	files := make(map[string]FileResult)
	if err := json.Unmarshal(data, &files); err != nil {
		return err
	}
	r.Files = files
	return nil
}

// Occurrence represents a single concrete instance of an event after
// recurrence expansion and timezone normalization. Used by the inspect
// pipeline, not by validation.
type Occurrence struct {
	Source string // input path or URL the event came from
	UID    string // iCalendar UID

	Summary  string
	Location string

	AllDay bool

	// Start / End are in the configured display timezone.
	Start time.Time
	End   time.Time
}
