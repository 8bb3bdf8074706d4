package domain

import "strings"

// Severity is the coarse urgency tier derived from healthy status and
// confidence.
type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ParseSeverity normalizes a severity string, falling back to medium for
// unrecognized values.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityNone:
		return SeverityNone
	case SeverityLow:
		return SeverityLow
	case SeverityHigh:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

// ClassifySeverity maps a condition and a percentage confidence (0-100
// scale) to a severity tier. Thresholds are strict: exactly 80 is medium
// and exactly 60 is low.
func ClassifySeverity(condition string, confidence float64) Severity {
	if IsHealthyCondition(condition) {
		return SeverityNone
	}
	switch {
	case confidence > 80:
		return SeverityHigh
	case confidence > 60:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
