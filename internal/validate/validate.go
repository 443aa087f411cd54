package validate

import (
	"os"

	"icslint/internal/ics"
	"icslint/internal/model"
)

// Document validates one document's raw text: the structural pre-check runs
// first and always contributes its findings; if the text then parses into a
// calendar, the semantic rule engine appends its findings. A parse failure
// yields a single terminal error diagnostic for the document and no semantic
// checks are attempted.
func Document(text string) *model.ValidationResult {
	result := &model.ValidationResult{}
	result.Extend(PreCheck(text))

	cal, err := ics.Parse([]byte(text))
	if err != nil {
		result.AddError("", "Failed to parse ICS file: "+err.Error())
		return result
	}

	result.Extend(CheckCalendar(cal))
	return result
}

// File reads one document from disk and validates it. A read failure is an
// operational failure converted into a single error diagnostic; it never
// aborts a batch run.
func File(path string) *model.ValidationResult {
	data, err := os.ReadFile(path)
	if err != nil {
		result := &model.ValidationResult{}
		result.AddError("", "Failed to read file: "+err.Error())
		return result
	}
	return Document(string(data))
}
