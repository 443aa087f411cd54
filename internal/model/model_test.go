package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticString(t *testing.T) {
	scoped := Diagnostic{Severity: SeverityError, Scope: "Event 3", Message: "Missing UID property"}
	assert.Equal(t, "Event 3: Missing UID property", scoped.String())

	document := Diagnostic{Severity: SeverityWarning, Message: "No events found in calendar"}
	assert.Equal(t, "No events found in calendar", document.String())
}

func TestValidationResultPartitionsBySeverity(t *testing.T) {
	var result ValidationResult
	result.AddError("Event 1", "Missing UID property")
	result.AddWarning("Event 1", "Missing SUMMARY property (recommended)")
	result.AddError("", "Missing VERSION property")

	require.Len(t, result.Errors, 2)
	require.Len(t, result.Warnings, 1)
	for _, d := range result.Errors {
		assert.Equal(t, SeverityError, d.Severity)
	}
	for _, d := range result.Warnings {
		assert.Equal(t, SeverityWarning, d.Severity)
	}
}

func TestFileResultRendersMessages(t *testing.T) {
	var result ValidationResult
	result.AddError("Event 2", "Duplicate UID found: abc123")
	result.AddWarning("", "Missing PRODID property (recommended)")

	fr := result.FileResult()
	assert.Equal(t, []string{"Event 2: Duplicate UID found: abc123"}, fr.Errors)
	assert.Equal(t, []string{"Missing PRODID property (recommended)"}, fr.Warnings)
}

func TestFileResultEmptySlicesEncodeAsArrays(t *testing.T) {
	var result ValidationResult
	data, err := json.Marshal(result.FileResult())
	require.NoError(t, err)
	assert.JSONEq(t, `{"errors":[],"warnings":[]}`, string(data))
}

func TestReportTotals(t *testing.T) {
	report := NewReport()
	report.Files["a.ics"] = FileResult{
		Errors:   []string{"Missing VERSION property"},
		Warnings: []string{"Missing PRODID property (recommended)", "No events found in calendar"},
	}
	report.Files["b.ics"] = FileResult{Errors: []string{}, Warnings: []string{}}

	assert.Equal(t, 1, report.TotalErrors())
	assert.Equal(t, 2, report.TotalWarnings())
}

func TestReportJSONRoundTrip(t *testing.T) {
	report := NewReport()
	report.Files["calendars/team.ics"] = FileResult{
		Errors:   []string{"Event 2: Duplicate UID found: abc123"},
		Warnings: []string{"Event 1: Missing SUMMARY property (recommended)"},
	}
	report.Files["calendars/empty.ics"] = FileResult{
		Errors:   []string{},
		Warnings: []string{"No events found in calendar"},
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	// The artifact is a bare object keyed by document path.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Contains(t, raw, "calendars/team.ics")
	require.Contains(t, raw, "calendars/empty.ics")

	var restored Report
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, report.Files, restored.Files)
	assert.Equal(t, report.TotalErrors(), restored.TotalErrors())
	assert.Equal(t, report.TotalWarnings(), restored.TotalWarnings())
}
