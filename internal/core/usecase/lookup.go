package usecase

import (
	"fmt"

	"github.com/ragul2105/plant-disease-api/internal/core/domain"
	"github.com/ragul2105/plant-disease-api/internal/core/ports"
)

// PlantSummary is the per-plant view served by /api/plants/supported.
type PlantSummary struct {
	Name         string   `json:"name"`
	Diseases     []string `json:"diseases"`
	TotalClasses int      `json:"total_classes"`
}

// DiseaseEntry is one taxonomy row of the disease-info database.
type DiseaseEntry struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	FullName  string `json:"full_name"`
	IsHealthy bool   `json:"is_healthy"`
}

// LookupUseCase serves the static and derived views over the class
// taxonomy, the recommendation tables and the plant knowledge base. No
// inference involved.
type LookupUseCase struct {
	knowledge ports.PlantKnowledge
}

func NewLookupUseCase(knowledge ports.PlantKnowledge) *LookupUseCase {
	return &LookupUseCase{knowledge: knowledge}
}

func (uc *LookupUseCase) SupportedPlants() map[string]PlantSummary {
	out := make(map[string]PlantSummary)
	for _, plant := range domain.SupportedPlants() {
		diseases, _ := domain.DiseasesFor(plant)
		out[plant] = PlantSummary{
			Name:         capitalize(plant),
			Diseases:     diseases,
			TotalClasses: len(diseases),
		}
	}
	return out
}

func (uc *LookupUseCase) DiseaseDatabase() map[string][]DiseaseEntry {
	out := make(map[string][]DiseaseEntry)
	for id := 0; id < domain.ClassCount(); id++ {
		label, _ := domain.LabelFor(id)
		plant, condition := domain.SplitLabel(label)
		out[plant] = append(out[plant], DiseaseEntry{
			ID:        id,
			Name:      condition,
			FullName:  label,
			IsHealthy: domain.IsHealthyCondition(condition),
		})
	}
	return out
}

// RecommendFor returns the treatment list for a plant/disease pair at the
// requested severity. The plant must be one of the filterable plants.
func (uc *LookupUseCase) RecommendFor(plant, disease, severity string) ([]string, domain.Severity, error) {
	if _, ok := domain.FilterFor(plant); !ok {
		return nil, "", domain.WrapError(domain.ErrUnsupportedPlant, "recommend", fmt.Errorf("plant type %q", plant))
	}
	tier := domain.ParseSeverity(severity)
	return domain.Recommend(disease, tier), tier, nil
}

func (uc *LookupUseCase) PlantsInfo() map[string]domain.PlantInfo {
	if uc.knowledge == nil {
		return map[string]domain.PlantInfo{}
	}
	return uc.knowledge.Plants()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
