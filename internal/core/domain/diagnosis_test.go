package domain

import (
	"testing"
	"time"
)

func TestAssembleDiagnosisDiseased(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	result := AssembleDiagnosis(31, 0.925, now)

	if result.PlantName != "Tomato" {
		t.Fatalf("expected plant Tomato, got %q", result.PlantName)
	}
	if result.DiseaseType != "Late_blight" {
		t.Fatalf("expected Late_blight, got %q", result.DiseaseType)
	}
	if result.IsHealthy {
		t.Fatalf("late blight is not healthy")
	}
	if result.Confidence != 92.5 {
		t.Fatalf("expected confidence 92.5, got %v", result.Confidence)
	}
	if result.Severity != SeverityHigh {
		t.Fatalf("expected high severity, got %v", result.Severity)
	}
	if len(result.Recommendations) == 0 {
		t.Fatalf("expected recommendations")
	}
	if result.Timestamp != "2025-03-14T09:26:53Z" {
		t.Fatalf("unexpected timestamp %q", result.Timestamp)
	}
}

func TestAssembleDiagnosisHealthy(t *testing.T) {
	result := AssembleDiagnosis(3, 0.77, time.Now())
	if !result.IsHealthy {
		t.Fatalf("Apple___healthy must be healthy")
	}
	if result.Severity != SeverityNone {
		t.Fatalf("healthy severity must be none, got %v", result.Severity)
	}
}

func TestAssembleDiagnosisUnknownClass(t *testing.T) {
	result := AssembleDiagnosis(-1, 0.5, time.Now())
	if result.DiseaseType != UnknownCondition {
		t.Fatalf("expected sentinel condition, got %q", result.DiseaseType)
	}
}

func TestAssembleDiagnosisTimestampIsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, loc)
	result := AssembleDiagnosis(0, 0.5, now)
	if result.Timestamp != "2025-06-01T05:00:00Z" {
		t.Fatalf("expected UTC timestamp, got %q", result.Timestamp)
	}
}
