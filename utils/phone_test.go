// Package utils provides utility functions for the application.
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"digits only", "11987654321", "11987654321"},
		{"formatted number", "+55 (11) 98765-4321", "5511987654321"},
		{"letters and symbols stripped", "phone: 123-abc-456", "123456"},
		{"empty input", "", ""},
		{"no digits at all", "n/a", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhone(tt.input))
		})
	}
}

func TestIsDeliverablePhone(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		minDigits int
		expected  bool
	}{
		{"valid mobile", "11987654321", 10, true},
		{"formatted valid mobile", "+55 11 98765-4321", 10, true},
		{"too short", "123", 10, false},
		{"exactly at minimum", "1198765432", 10, true},
		{"one digit short", "119876543", 10, false},
		{"empty", "", 10, false},
		{"zero minimum falls back to default", "123456789", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDeliverablePhone(tt.input, tt.minDigits))
		})
	}
}
