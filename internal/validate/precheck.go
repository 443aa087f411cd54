// Package validate implements the icslint rule engine: a structural
// pre-check over raw document text plus a semantic rule set over the parsed
// calendar. Rules are pure functions composed by concatenation, so the
// diagnostic list for a fixed document is identical across runs.
package validate

import (
	"strings"

	"icslint/internal/model"
)

// Markers the structural pre-check looks for in raw text. These are plain
// substring tests: they must hold even for documents the structured parser
// would reject outright.
const (
	markerCalendarOpen  = "BEGIN:VCALENDAR"
	markerCalendarClose = "END:VCALENDAR"
	markerVersion       = "VERSION:"
	markerProdID        = "PRODID:"
)

// PreCheck inspects raw document text for gross structural violations. Every
// rule is evaluated independently; none short-circuits another. Empty or
// garbage input is legal and simply fails the presence tests.
func PreCheck(text string) []model.Diagnostic {
	var out []model.Diagnostic

	if !strings.Contains(text, markerCalendarOpen) {
		out = append(out, model.Diagnostic{
			Severity: model.SeverityError,
			Message:  "Missing BEGIN:VCALENDAR declaration",
		})
	}
	if !strings.Contains(text, markerCalendarClose) {
		out = append(out, model.Diagnostic{
			Severity: model.SeverityError,
			Message:  "Missing END:VCALENDAR declaration",
		})
	}
	if !strings.Contains(text, markerVersion) {
		out = append(out, model.Diagnostic{
			Severity: model.SeverityError,
			Message:  "Missing VERSION property",
		})
	}
	if !strings.Contains(text, markerProdID) {
		out = append(out, model.Diagnostic{
			Severity: model.SeverityWarning,
			Message:  "Missing PRODID property (recommended)",
		})
	}

	return out
}
