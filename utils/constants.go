package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Billing constants
const (
	// DefaultReminderCooldownDays is the minimum number of days before the
	// same template may be re-sent to the same contract.
	DefaultReminderCooldownDays = 30

	// MinPhoneDigits is the minimum digit count for a deliverable phone number.
	MinPhoneDigits = 10

	// DefaultHistoryLimit bounds per-subscriber session history queries.
	DefaultHistoryLimit = 10
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// ContextKey is the type used for request-scoped context values
type ContextKey string

// Request-scoped context keys
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)
