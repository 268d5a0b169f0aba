// Package utils provides utility functions for the application.
package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateOnly(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{
			name:     "midday UTC truncates to midnight",
			input:    time.Date(2025, 3, 15, 13, 45, 30, 123, time.UTC),
			expected: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "already midnight stays unchanged",
			input:    time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "non-UTC zone converts to UTC before truncating",
			input:    time.Date(2025, 3, 15, 22, 0, 0, 0, time.FixedZone("BRT", -3*3600)),
			expected: time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DateOnly(tt.input))
		})
	}
}

func TestTruncateToMinute(t *testing.T) {
	in := time.Date(2025, 7, 1, 9, 30, 59, 999999999, time.UTC)
	assert.Equal(t, time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC), TruncateToMinute(in))
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected int
	}{
		{"january", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), 31},
		{"april", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), 30},
		{"february non-leap", time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), 28},
		{"february leap", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 29},
		{"december", time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC), 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysInMonth(tt.input))
		})
	}
}

func TestDaysBetweenCeil(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name     string
		from     time.Time
		to       time.Time
		expected int
	}{
		{"same day", day(10), day(10), 0},
		{"three days ahead", day(10), day(13), 3},
		{"five days behind", day(15), day(10), -5},
		{"partial day rounds up", day(10), day(10).Add(6 * time.Hour), 1},
		{"partial day behind rounds away from zero", day(10).Add(6 * time.Hour), day(10), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysBetweenCeil(tt.from, tt.to))
		})
	}
}
