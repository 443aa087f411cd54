package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"icslint/internal/model"
)

func TestPreCheck(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name: "complete markers",
			text: "BEGIN:VCALENDAR\nVERSION:2.0\nPRODID:-//icslint//test//EN\nEND:VCALENDAR\n",
		},
		{
			name: "empty input",
			text: "",
			wantErrors: []string{
				"Missing BEGIN:VCALENDAR declaration",
				"Missing END:VCALENDAR declaration",
				"Missing VERSION property",
			},
			wantWarnings: []string{
				"Missing PRODID property (recommended)",
			},
		},
		{
			name: "garbage input",
			text: "this is not a calendar at all",
			wantErrors: []string{
				"Missing BEGIN:VCALENDAR declaration",
				"Missing END:VCALENDAR declaration",
				"Missing VERSION property",
			},
			wantWarnings: []string{
				"Missing PRODID property (recommended)",
			},
		},
		{
			name: "missing open marker only",
			text: "VERSION:2.0\nPRODID:x\nEND:VCALENDAR\n",
			wantErrors: []string{
				"Missing BEGIN:VCALENDAR declaration",
			},
		},
		{
			name: "missing close marker only",
			text: "BEGIN:VCALENDAR\nVERSION:2.0\nPRODID:x\n",
			wantErrors: []string{
				"Missing END:VCALENDAR declaration",
			},
		},
		{
			name: "missing version and prodid",
			text: "BEGIN:VCALENDAR\nEND:VCALENDAR\n",
			wantErrors: []string{
				"Missing VERSION property",
			},
			wantWarnings: []string{
				"Missing PRODID property (recommended)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := PreCheck(tt.text)

			var errs, warns []string
			for _, d := range diags {
				switch d.Severity {
				case model.SeverityError:
					errs = append(errs, d.Message)
				case model.SeverityWarning:
					warns = append(warns, d.Message)
				}
			}

			assert.Equal(t, tt.wantErrors, errs)
			assert.Equal(t, tt.wantWarnings, warns)
		})
	}
}

func TestPreCheckIsPure(t *testing.T) {
	const text = "BEGIN:VCALENDAR\nEND:VCALENDAR\n"
	first := PreCheck(text)
	second := PreCheck(text)
	assert.Equal(t, first, second)
}
