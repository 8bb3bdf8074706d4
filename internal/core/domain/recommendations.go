package domain

import "strings"

// recommendationEntry pairs condition substring patterns with a curated
// treatment list. The table is scanned in order and the first matching
// pattern wins, so specific diseases come before generic families like
// "blight" or "spot".
type recommendationEntry struct {
	patterns []string
	lines    []string
}

var recommendationTable = []recommendationEntry{
	{
		patterns: []string{"scab"},
		lines: []string{
			"Remove fallen leaves and infected fruit immediately",
			"Apply fungicide containing captan or myclobutanil",
			"Prune to improve air circulation",
			"Avoid overhead watering",
			"Rotate fungicide types to prevent resistance",
		},
	},
	{
		patterns: []string{"black_rot", "black rot"},
		lines: []string{
			"Prune out infected branches and cankers",
			"Remove and destroy all infected plant material",
			"Apply copper-based fungicide",
			"Improve air circulation and reduce humidity",
			"Avoid watering late in the day",
		},
	},
	{
		patterns: []string{"cercospora", "gray_leaf_spot"},
		lines: []string{
			"Implement crop rotation",
			"Apply fungicide containing strobilurin",
			"Plant resistant corn varieties",
			"Remove crop debris after harvest",
			"Avoid overhead irrigation",
		},
	},
	{
		patterns: []string{"common_rust"},
		lines: []string{
			"Apply fungicide containing azoxystrobin",
			"Plant rust-resistant varieties",
			"Ensure proper plant spacing",
			"Water at soil level",
			"Monitor weather conditions during high humidity",
		},
	},
	{
		patterns: []string{"esca", "black_measles"},
		lines: []string{
			"Prune infected wood during dry weather",
			"Apply wound protectant after pruning",
			"Use systemic fungicides (consult a local expert)",
			"Plant resistant grape varieties",
			"Avoid excessive irrigation",
		},
	},
	{
		patterns: []string{"early_blight"},
		lines: []string{
			"Apply fungicide containing chlorothalonil",
			"Remove infected lower leaves",
			"Improve air circulation",
			"Water at soil level only",
			"Apply mulch to prevent soil splash",
		},
	},
	{
		patterns: []string{"late_blight"},
		lines: []string{
			"Apply copper-based fungicide immediately",
			"Remove and destroy all infected plants",
			"Reduce humidity around plants",
			"Do not compost infected material",
			"Contact agricultural extension service",
		},
	},
	{
		patterns: []string{"bacterial_spot"},
		lines: []string{
			"Apply copper-based bactericide",
			"Reduce humidity and improve ventilation",
			"Avoid overhead watering",
			"Remove infected plant parts",
			"Rotate crops next season",
		},
	},
	{
		patterns: []string{"leaf_mold"},
		lines: []string{
			"Reduce humidity below 85%",
			"Increase ventilation in greenhouse",
			"Apply fungicide containing myclobutanil",
			"Remove infected leaves",
			"Plant resistant varieties",
		},
	},
	{
		patterns: []string{"septoria_leaf_spot"},
		lines: []string{
			"Apply fungicide containing chlorothalonil",
			"Remove infected lower leaves",
			"Mulch around plants",
			"Water at soil level",
			"Stake plants for better air flow",
		},
	},
	{
		patterns: []string{"spider_mites"},
		lines: []string{
			"Spray with insecticidal soap",
			"Increase humidity around plants",
			"Use predatory mites as biological control",
			"Avoid over-fertilizing with nitrogen",
			"Spray leaves regularly with water",
		},
	},
	{
		patterns: []string{"target_spot"},
		lines: []string{
			"Apply fungicide containing azoxystrobin",
			"Improve air circulation",
			"Avoid overhead irrigation",
			"Rotate crops",
			"Remove plant debris",
		},
	},
	{
		patterns: []string{"mosaic_virus"},
		lines: []string{
			"No cure available - remove infected plants",
			"Control aphids and other virus vectors",
			"Plant virus-resistant varieties",
			"Sanitize tools between plants",
			"Do not smoke near plants",
		},
	},
	{
		patterns: []string{"yellow_leaf_curl"},
		lines: []string{
			"Remove infected plants immediately",
			"Control whiteflies, the virus vector",
			"Use reflective mulch",
			"Plant resistant varieties",
			"Use insect-proof screening in greenhouses",
		},
	},
	{
		patterns: []string{"leaf_scorch"},
		lines: []string{
			"Remove infected leaves and dispose properly",
			"Apply fungicide after harvest",
			"Renovate strawberry beds annually",
			"Ensure proper plant spacing",
			"Avoid overhead irrigation",
		},
	},
	{
		patterns: []string{"blight"},
		lines: []string{
			"Remove and destroy affected plant parts immediately",
			"Apply copper-based fungicide",
			"Improve air circulation around plants",
			"Avoid overhead watering",
			"Apply preventive fungicide treatments",
		},
	},
	{
		patterns: []string{"rust"},
		lines: []string{
			"Remove infected plant material",
			"Apply sulfur-based fungicide",
			"Improve air circulation",
			"Avoid overhead irrigation",
			"Consider resistant varieties for future plantings",
		},
	},
	{
		patterns: []string{"mildew"},
		lines: []string{
			"Increase air circulation",
			"Apply fungicide containing myclobutanil or propiconazole",
			"Remove affected plant parts",
			"Reduce humidity around plants",
			"Apply preventive treatments during humid periods",
		},
	},
	{
		patterns: []string{"spot"},
		lines: []string{
			"Remove infected leaves and dispose properly",
			"Apply fungicide containing chlorothalonil or mancozeb",
			"Water at soil level to avoid wetting foliage",
			"Ensure proper spacing between plants",
			"Apply mulch to prevent soil splash",
		},
	},
}

var genericRecommendations = []string{
	"Consult with local agricultural extension service",
	"Remove affected plant parts",
	"Apply appropriate fungicide or bactericide",
	"Improve growing conditions",
	"Consider resistant varieties",
}

var healthyRecommendations = []string{
	"Continue current care practices",
	"Monitor for any changes in plant appearance",
	"Maintain proper watering and fertilization schedule",
	"Ensure adequate sunlight and air circulation",
}

const (
	urgentActionLine         = "URGENT: Immediate action required"
	escalationLine           = "Consider removing severely affected plants"
	moderateInterventionLine = "Moderate intervention needed"
)

// Recommend returns the ordered treatment list for a condition at a given
// severity. Healthy conditions get the positive-care list with no urgency
// prefix; diseased conditions get the first matching curated list (or the
// generic fallback) with severity-specific urgency lines.
func Recommend(condition string, severity Severity) []string {
	if IsHealthyCondition(condition) {
		return append([]string(nil), healthyRecommendations...)
	}

	base := genericRecommendations
	lower := strings.ToLower(condition)
	for _, entry := range recommendationTable {
		if matchesAny(lower, entry.patterns) {
			base = entry.lines
			break
		}
	}

	out := make([]string, 0, len(base)+2)
	switch severity {
	case SeverityHigh:
		out = append(out, urgentActionLine)
		out = append(out, base...)
		out = append(out, escalationLine)
	case SeverityMedium:
		out = append(out, moderateInterventionLine)
		out = append(out, base...)
	default:
		out = append(out, base...)
	}
	return out
}

func matchesAny(s string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(s, pattern) {
			return true
		}
	}
	return false
}
