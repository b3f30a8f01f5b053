package service

import (
	"time"
)

// StartOfDay returns midnight of t's calendar day in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// IsPastDay reports whether t falls on a calendar day strictly before now's day in loc
func IsPastDay(t, now time.Time, loc *time.Location) bool {
	return StartOfDay(t, loc).Before(StartOfDay(now, loc))
}

// EndOfDay returns the last representable instant of t's calendar day in loc
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
