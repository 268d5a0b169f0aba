// Package utils provides utility functions for the application.
package utils

// NormalizePhone strips every non-digit character from a phone number.
func NormalizePhone(raw string) string {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			out = append(out, raw[i])
		}
	}
	return string(out)
}

// IsDeliverablePhone reports whether a phone number has at least minDigits
// digits after normalization. Messages to shorter numbers are rejected by
// the WhatsApp gateway, so contracts carrying them are skipped up front.
func IsDeliverablePhone(raw string, minDigits int) bool {
	if minDigits <= 0 {
		minDigits = 10
	}
	return len(NormalizePhone(raw)) >= minDigits
}
