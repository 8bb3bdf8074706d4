package domain

import "testing"

func TestRecommendHealthySkipsUrgencyLines(t *testing.T) {
	recs := Recommend("healthy", SeverityNone)
	if len(recs) == 0 {
		t.Fatalf("expected healthy recommendations")
	}
	if recs[0] == urgentActionLine || recs[0] == moderateInterventionLine {
		t.Fatalf("healthy list must not carry urgency prefix, got %q", recs[0])
	}
}

func TestRecommendHighSeverityPrefixAndEscalation(t *testing.T) {
	recs := Recommend("Late_blight", SeverityHigh)
	if recs[0] != urgentActionLine {
		t.Fatalf("expected urgent prefix, got %q", recs[0])
	}
	if recs[len(recs)-1] != escalationLine {
		t.Fatalf("expected escalation suffix, got %q", recs[len(recs)-1])
	}
}

func TestRecommendMediumSeverityPrefix(t *testing.T) {
	recs := Recommend("Common_rust", SeverityMedium)
	if recs[0] != moderateInterventionLine {
		t.Fatalf("expected moderate prefix, got %q", recs[0])
	}
	if recs[len(recs)-1] == escalationLine {
		t.Fatalf("medium severity must not append escalation line")
	}
}

func TestRecommendSpecificPatternBeatsGenericFamily(t *testing.T) {
	late := Recommend("Late_blight", SeverityLow)
	northern := Recommend("Northern_Leaf_Blight", SeverityLow)
	if late[0] == northern[0] {
		t.Fatalf("late blight must hit its specific entry, not the generic blight family")
	}
	if late[0] != "Apply copper-based fungicide immediately" {
		t.Fatalf("unexpected late blight first line: %q", late[0])
	}
}

func TestRecommendMatchIsCaseInsensitive(t *testing.T) {
	upper := Recommend("LATE_BLIGHT", SeverityLow)
	lower := Recommend("late_blight", SeverityLow)
	if len(upper) != len(lower) || upper[0] != lower[0] {
		t.Fatalf("matching must be case-insensitive")
	}
}

func TestRecommendUnknownConditionFallsBack(t *testing.T) {
	recs := Recommend("Haunglongbing_(Citrus_greening)", SeverityLow)
	if recs[0] != genericRecommendations[0] {
		t.Fatalf("expected generic fallback, got %q", recs[0])
	}
}

func TestRecommendDoesNotMutateTable(t *testing.T) {
	before := Recommend("Late_blight", SeverityLow)
	Recommend("Late_blight", SeverityHigh)
	after := Recommend("Late_blight", SeverityLow)
	if len(before) != len(after) || before[0] != after[0] {
		t.Fatalf("table entries must stay immutable across calls")
	}
}
