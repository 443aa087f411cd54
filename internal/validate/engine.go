package validate

import (
	"fmt"

	ical "github.com/arran4/golang-ical"

	"icslint/internal/ics"
	"icslint/internal/model"
)

// CheckCalendar applies the semantic rule set to a parsed calendar and
// returns its findings: document-level checks first, then per-event checks
// in document order. The calendar is consumed strictly read-only.
func CheckCalendar(cal *ical.Calendar) []model.Diagnostic {
	var out []model.Diagnostic

	// Absent VERSION is already an error in the structural pre-check; only a
	// present-but-unexpected value is worth a second finding.
	if v := ics.Version(cal); v != "" && v != "2.0" {
		out = append(out, warnDiag("", fmt.Sprintf("VERSION is %q, expected \"2.0\"", v)))
	}

	events := cal.Events()
	if len(events) == 0 {
		out = append(out, warnDiag("", "No events found in calendar"))
		return out
	}

	hasTimezone := ics.HasTimezone(cal)

	// seenUIDs is local to this call so concurrent validations of different
	// documents stay independent.
	seenUIDs := make(map[string]bool)

	for i, ev := range events {
		// 1-based, matching document order.
		scope := fmt.Sprintf("Event %d", i+1)

		out = append(out, checkEvent(scope, ev, hasTimezone)...)

		if uid := propValue(ev, ical.ComponentPropertyUniqueId); uid != "" {
			if seenUIDs[uid] {
				out = append(out, errDiag(scope, "Duplicate UID found: "+uid))
			}
			seenUIDs[uid] = true
		}
	}

	return out
}

// checkEvent applies the per-event rules to one VEVENT.
func checkEvent(scope string, ev *ical.VEvent, hasTimezone bool) []model.Diagnostic {
	var out []model.Diagnostic

	if propValue(ev, ical.ComponentPropertyUniqueId) == "" {
		out = append(out, errDiag(scope, "Missing UID property"))
	}
	// Use raw property names where the library constant naming varies.
	if ev.GetProperty("DTSTAMP") == nil {
		out = append(out, errDiag(scope, "Missing DTSTAMP property"))
	}
	if ev.GetProperty(ical.ComponentPropertyDtStart) == nil {
		out = append(out, errDiag(scope, "Missing DTSTART property"))
	}
	if propValue(ev, ical.ComponentPropertySummary) == "" {
		out = append(out, warnDiag(scope, "Missing SUMMARY property (recommended)"))
	}

	dtEnd := ev.GetProperty(ical.ComponentPropertyDtEnd)
	duration := ev.GetProperty("DURATION")
	switch {
	case dtEnd == nil && duration == nil:
		out = append(out, warnDiag(scope, "No DTEND or DURATION specified"))
	case dtEnd != nil && duration != nil:
		out = append(out, errDiag(scope, "Both DTEND and DURATION specified; they are mutually exclusive"))
	}

	out = append(out, checkDateOrder(scope, ev)...)
	out = append(out, checkTimezoneRef(scope, ev, hasTimezone)...)

	return out
}

// checkDateOrder flags an event whose resolved end precedes its resolved
// start. Resolution delegates to the parsing library, which accounts for
// TZID parameters and UTC designators; a floating value is compared at face
// value. If either value fails to resolve there is no finding here:
// malformed dates are the parser's to report, not ours.
func checkDateOrder(scope string, ev *ical.VEvent) []model.Diagnostic {
	if ev.GetProperty(ical.ComponentPropertyDtStart) == nil || ev.GetProperty(ical.ComponentPropertyDtEnd) == nil {
		return nil
	}

	start, err := ev.GetStartAt()
	if err != nil {
		return nil
	}
	end, err := ev.GetEndAt()
	if err != nil {
		return nil
	}

	if end.Before(start) {
		return []model.Diagnostic{errDiag(scope, "End date is before start date")}
	}
	return nil
}

// checkTimezoneRef warns when DTSTART names a timezone but the document
// declares no VTIMEZONE block at all. The check is deliberately coarse:
// any VTIMEZONE suffices, whether or not it matches the TZID in use.
func checkTimezoneRef(scope string, ev *ical.VEvent, hasTimezone bool) []model.Diagnostic {
	if hasTimezone {
		return nil
	}

	p := ev.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil || p.ICalParameters == nil {
		return nil
	}
	tzs, ok := p.ICalParameters["TZID"]
	if !ok || len(tzs) == 0 || tzs[0] == "" {
		return nil
	}

	msg := fmt.Sprintf("DTSTART uses timezone %q but calendar defines no VTIMEZONE component", tzs[0])
	return []model.Diagnostic{warnDiag(scope, msg)}
}

func propValue(ev *ical.VEvent, name ical.ComponentProperty) string {
	p := ev.GetProperty(name)
	if p == nil {
		return ""
	}
	return p.Value
}

func errDiag(scope, message string) model.Diagnostic {
	return model.Diagnostic{Severity: model.SeverityError, Scope: scope, Message: message}
}

func warnDiag(scope, message string) model.Diagnostic {
	return model.Diagnostic{Severity: model.SeverityWarning, Scope: scope, Message: message}
}
