// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowPtr returns a pointer to the current time in UTC
func UTCNowPtr() *time.Time {
	now := UTCNow()
	return &now
}

// UTCNowAdd returns the current UTC time plus the given duration
func UTCNowAdd(d time.Duration) time.Time {
	return UTCNow().Add(d)
}

// UTCNowRFC3339 returns the current UTC time in RFC3339 format
func UTCNowRFC3339() string {
	return UTCNow().Format(time.RFC3339)
}

// TimeToUTC converts a time to UTC if it's not already
func TimeToUTC(t time.Time) time.Time {
	return t.UTC()
}

// DateOnly truncates a time to midnight UTC of the same calendar day.
func DateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// TruncateToMinute drops seconds and sub-second precision, in UTC.
func TruncateToMinute(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}

// DaysInMonth returns the number of calendar days in the month containing t.
func DaysInMonth(t time.Time) int {
	u := t.UTC()
	firstOfNext := time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}

// DaysBetweenCeil returns the whole-day difference between two instants,
// rounding the absolute difference up to full days. Calendar-date based
// callers should pass DateOnly values to avoid midnight boundary flips.
func DaysBetweenCeil(from, to time.Time) int {
	d := to.Sub(from)
	neg := false
	if d < 0 {
		d = -d
		neg = true
	}
	days := int((d + 24*time.Hour - 1) / (24 * time.Hour))
	if neg {
		return -days
	}
	return days
}
