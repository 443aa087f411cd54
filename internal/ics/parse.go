// Package ics wraps the iCalendar parsing library and normalizes parsed
// components for the rest of the tool. Validation rules live in
// internal/validate; this package only produces the document view they
// consume plus the flattened events used by inspection.
package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "icslint/internal/log"
)

// ParsedEvent is the normalized representation of a VEVENT used by the
// inspect pipeline. Recurrence expansion operates on this type.
type ParsedEvent struct {
	Source string

	UID string

	Summary  string
	Location string

	Start  time.Time
	End    time.Time
	AllDay bool

	RawRRule string
	ExDates  []time.Time
}

// Parse parses a single ICS payload into the library's calendar document.
// The returned calendar is treated as read-only by all callers.
func Parse(body []byte) (*ical.Calendar, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	return ical.ParseCalendar(bytes.NewReader(body))
}

// HasTimezone reports whether the calendar declares at least one VTIMEZONE
// sub-component. It does not check that the declared zone matches any TZID
// actually used.
func HasTimezone(cal *ical.Calendar) bool {
	for _, comp := range cal.Components {
		if _, ok := comp.(*ical.VTimezone); ok {
			return true
		}
	}
	return false
}

// Version returns the calendar's VERSION property value, or "" when absent.
func Version(cal *ical.Calendar) string {
	for _, prop := range cal.CalendarProperties {
		if prop.IANAToken == string(ical.PropertyVersion) {
			return prop.Value
		}
	}
	return ""
}

// Events flattens a calendar's VEVENTs into ParsedEvents for inspection.
// Events that cannot be normalized are logged and skipped; this is a
// reporting path, not validation, so defects here are not findings.
func Events(source string, cal *ical.Calendar) []ParsedEvent {
	events := make([]ParsedEvent, 0)
	for _, ve := range cal.Events() {
		ev, err := parseVEvent(source, ve)
		if err != nil {
			appLog.Warn("skipping malformed VEVENT", "source", source, "reason", err.Error())
			continue
		}
		events = append(events, ev)
	}
	return events
}

func parseVEvent(source string, ve *ical.VEvent) (ParsedEvent, error) {
	out := ParsedEvent{Source: source}

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	// DTSTART / DTEND via the library's helpers, which handle TZID and UTC
	// designations.
	start, err := ve.GetStartAt()
	if err != nil {
		return out, errors.New("unparseable DTSTART")
	}
	out.Start = start
	if end, err := ve.GetEndAt(); err == nil {
		out.End = end
	} else {
		out.End = start
	}

	// All-day when DTSTART carries VALUE=DATE or has no time part.
	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		if params := p.ICalParameters; params != nil {
			if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
				out.AllDay = true
			}
		}
		if !strings.Contains(p.Value, "T") {
			out.AllDay = true
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	return out, nil
}

// parseICSTime parses a basic ICS date/date-time string. Only used for
// EXDATE values, where full parameter context is not available.
func parseICSTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	// UTC form, e.g. 20250101T090000Z
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}

	// Local date-time, e.g. 20250101T090000
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, time.Local)
	}

	// Date-only, e.g. 20250101
	return time.ParseInLocation("20060102", v, time.Local)
}
