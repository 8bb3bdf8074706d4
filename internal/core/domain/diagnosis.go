package domain

import (
	"math"
	"time"
)

// DiagnosisResult is the response payload built once per prediction and
// serialized directly into the HTTP body. Immutable after assembly.
type DiagnosisResult struct {
	PlantName       string   `json:"plant_name"`
	DiseaseType     string   `json:"disease_type"`
	IsHealthy       bool     `json:"is_healthy"`
	Confidence      float64  `json:"confidence"`
	Severity        Severity `json:"severity"`
	Recommendations []string `json:"recommendations"`
	Timestamp       string   `json:"timestamp"`
}

// HistoryRecord is the persisted trace of one prediction for one user.
type HistoryRecord struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	PlantType     string          `json:"plant_type"`
	Result        DiagnosisResult `json:"result"`
	ImageFilename string          `json:"image_filename"`
	CreatedAt     time.Time       `json:"created_at"`
}

// AuthClaims are the decoded identity-provider claims for a bearer token.
type AuthClaims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserProfile is the stored profile keyed by the identity provider uid.
type UserProfile struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlantInfo is one entry of the static plant knowledge base.
type PlantInfo struct {
	Name              string            `json:"name"`
	ScientificName    string            `json:"scientific_name"`
	Diseases          []string          `json:"diseases"`
	OptimalConditions map[string]string `json:"optimal_conditions"`
}

// AssembleDiagnosis packages a resolved class and its raw [0,1] score into
// the response payload: label split, healthy flag, confidence on the 0-100
// scale rounded to two decimals, severity tier, treatment list and the
// assembly instant in UTC.
func AssembleDiagnosis(classID int, rawScore float32, now time.Time) DiagnosisResult {
	label, ok := LabelFor(classID)
	if !ok {
		label = UnknownCondition
	}
	plant, condition := SplitLabel(label)

	confidence := roundTo2(float64(rawScore) * 100)
	severity := ClassifySeverity(condition, confidence)

	return DiagnosisResult{
		PlantName:       plant,
		DiseaseType:     condition,
		IsHealthy:       IsHealthyCondition(condition),
		Confidence:      confidence,
		Severity:        severity,
		Recommendations: Recommend(condition, severity),
		Timestamp:       now.UTC().Format(time.RFC3339),
	}
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
