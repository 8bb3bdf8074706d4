package domain

import "testing"

func TestClassifySeverityThresholds(t *testing.T) {
	tests := []struct {
		name       string
		condition  string
		confidence float64
		want       Severity
	}{
		{"healthy ignores confidence", "healthy", 99.9, SeverityNone},
		{"above high threshold", "Late_blight", 80.01, SeverityHigh},
		{"exactly 80 is medium", "Late_blight", 80.00, SeverityMedium},
		{"above medium threshold", "Late_blight", 60.01, SeverityMedium},
		{"exactly 60 is low", "Late_blight", 60.00, SeverityLow},
		{"low confidence", "Late_blight", 12.5, SeverityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySeverity(tt.condition, tt.confidence); got != tt.want {
				t.Fatalf("ClassifySeverity(%q, %v) = %v, want %v", tt.condition, tt.confidence, got, tt.want)
			}
		})
	}
}

func TestParseSeverityFallsBackToMedium(t *testing.T) {
	if got := ParseSeverity("catastrophic"); got != SeverityMedium {
		t.Fatalf("expected medium fallback, got %v", got)
	}
	if got := ParseSeverity(" HIGH "); got != SeverityHigh {
		t.Fatalf("expected high, got %v", got)
	}
}
