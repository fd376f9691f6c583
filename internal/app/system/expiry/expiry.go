// Package expiry computes expiration timestamps for temporary articles.
//
// Only three named durations are accepted. "1m" means one calendar month:
// the same day-of-month in the following month, clamped to that month's last
// day when the source day does not exist (Jan 31 -> Feb 28/29).
package expiry

import (
	"time"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/apperr"
)

// Named durations for temporary articles.
const (
	Duration72Hours = "72h"
	Duration1Week   = "1w"
	Duration1Month  = "1m"
)

// AllDurations returns the accepted duration names.
func AllDurations() []string {
	return []string{Duration72Hours, Duration1Week, Duration1Month}
}

// Valid reports whether d is an accepted duration name.
func Valid(d string) bool {
	switch d {
	case Duration72Hours, Duration1Week, Duration1Month:
		return true
	}
	return false
}

// At computes the absolute expiry instant for a named duration relative to
// from. Unknown names yield a validation error and a zero time.
func At(duration string, from time.Time) (time.Time, error) {
	switch duration {
	case Duration72Hours:
		return from.Add(72 * time.Hour), nil
	case Duration1Week:
		return from.Add(7 * 24 * time.Hour), nil
	case Duration1Month:
		return addCalendarMonth(from), nil
	}
	return time.Time{}, apperr.Validationf("invalid temporary duration %q (must be one of 72h, 1w, 1m)", duration)
}

// addCalendarMonth advances by one month, clamping the day to the target
// month's last day instead of letting Go's date normalization roll past it.
func addCalendarMonth(t time.Time) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	// Day 0 of month+2 is the last day of month+1; time.Date normalizes
	// month overflow across year boundaries.
	lastDay := time.Date(year, month+2, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(year, month+1, day, hour, min, sec, t.Nanosecond(), t.Location())
}
