package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expandWindow() (time.Time, time.Time) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 10)
}

func TestExpandOccurrencesRejectsInvertedRange(t *testing.T) {
	start, end := expandWindow()
	_, err := ExpandOccurrences(nil, ExpandConfig{RangeStart: end, RangeEnd: start})
	require.Error(t, err)
}

func TestExpandSingleEventInRange(t *testing.T) {
	rangeStart, rangeEnd := expandWindow()
	ev := ParsedEvent{
		Source:  "cal.ics",
		UID:     "single",
		Summary: "One-off",
		Start:   time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC),
	}

	occ, err := ExpandOccurrences([]ParsedEvent{ev}, ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      rangeStart,
		RangeEnd:        rangeEnd,
	})
	require.NoError(t, err)
	require.Len(t, occ, 1)
	assert.Equal(t, "single", occ[0].UID)
	assert.Equal(t, ev.Start, occ[0].Start)
}

func TestExpandSingleEventOutOfRange(t *testing.T) {
	rangeStart, rangeEnd := expandWindow()
	ev := ParsedEvent{
		UID:   "later",
		Start: time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 2, 1, 11, 0, 0, 0, time.UTC),
	}

	occ, err := ExpandOccurrences([]ParsedEvent{ev}, ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      rangeStart,
		RangeEnd:        rangeEnd,
	})
	require.NoError(t, err)
	assert.Empty(t, occ)
}

func TestExpandRecurringDaily(t *testing.T) {
	rangeStart, rangeEnd := expandWindow()
	ev := ParsedEvent{
		UID:      "daily",
		Start:    time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC),
		RawRRule: "FREQ=DAILY;COUNT=5",
	}

	occ, err := ExpandOccurrences([]ParsedEvent{ev}, ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      rangeStart,
		RangeEnd:        rangeEnd,
	})
	require.NoError(t, err)
	require.Len(t, occ, 5)

	// Sorted by start, each occurrence preserving the one-hour duration.
	for i, o := range occ {
		wantStart := ev.Start.AddDate(0, 0, i)
		assert.Equal(t, wantStart, o.Start)
		assert.Equal(t, wantStart.Add(time.Hour), o.End)
	}
}

func TestExpandRecurringHonorsExDates(t *testing.T) {
	rangeStart, rangeEnd := expandWindow()
	ev := ParsedEvent{
		UID:      "daily",
		Start:    time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC),
		RawRRule: "FREQ=DAILY;COUNT=5",
		ExDates:  []time.Time{time.Date(2024, 1, 4, 10, 0, 0, 0, time.UTC)},
	}

	occ, err := ExpandOccurrences([]ParsedEvent{ev}, ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      rangeStart,
		RangeEnd:        rangeEnd,
	})
	require.NoError(t, err)
	require.Len(t, occ, 4)
	for _, o := range occ {
		assert.False(t, o.Start.Equal(time.Date(2024, 1, 4, 10, 0, 0, 0, time.UTC)))
	}
}

func TestExpandSkipsUnparseableRRule(t *testing.T) {
	rangeStart, rangeEnd := expandWindow()
	ev := ParsedEvent{
		UID:      "broken",
		Start:    time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC),
		RawRRule: "FREQ=SOMETIMES",
	}

	occ, err := ExpandOccurrences([]ParsedEvent{ev}, ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      rangeStart,
		RangeEnd:        rangeEnd,
	})
	require.NoError(t, err)
	assert.Empty(t, occ)
}

func TestExpandCapsOccurrences(t *testing.T) {
	rangeStart, rangeEnd := expandWindow()
	ev := ParsedEvent{
		UID:      "hourly",
		Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC),
		RawRRule: "FREQ=HOURLY",
	}

	occ, err := ExpandOccurrences([]ParsedEvent{ev}, ExpandConfig{
		DisplayLocation:        time.UTC,
		RangeStart:             rangeStart,
		RangeEnd:               rangeEnd,
		MaxOccurrencesPerEvent: 12,
	})
	require.NoError(t, err)
	assert.Len(t, occ, 12)
}
