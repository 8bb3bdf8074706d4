package domain

import (
	"sort"
	"strings"
)

// LabelSeparator splits a class label into its plant and condition halves.
const LabelSeparator = "___"

// UnknownCondition is the sentinel condition for labels without a separator.
const UnknownCondition = "Unknown"

// classLabels is the fixed taxonomy the model was trained on. Ids are
// contiguous and must match the model's output vector positions.
var classLabels = []string{
	0:  "Apple___Apple_scab",
	1:  "Apple___Black_rot",
	2:  "Apple___Cedar_apple_rust",
	3:  "Apple___healthy",
	4:  "Blueberry___healthy",
	5:  "Cherry___healthy",
	6:  "Cherry___Powdery_mildew",
	7:  "Corn___Cercospora_leaf_spot Gray_leaf_spot",
	8:  "Corn___Common_rust",
	9:  "Corn___healthy",
	10: "Corn___Northern_Leaf_Blight",
	11: "Grape___Black_rot",
	12: "Grape___Esca_(Black_Measles)",
	13: "Grape___healthy",
	14: "Grape___Leaf_blight_(Isariopsis_Leaf_Spot)",
	15: "Orange___Haunglongbing_(Citrus_greening)",
	16: "Peach___Bacterial_spot",
	17: "Peach___healthy",
	18: "Pepper,_bell___Bacterial_spot",
	19: "Pepper,_bell___healthy",
	20: "Potato___Early_blight",
	21: "Potato___healthy",
	22: "Potato___Late_blight",
	23: "Raspberry___healthy",
	24: "Soybean___healthy",
	25: "Squash___Powdery_mildew",
	26: "Strawberry___healthy",
	27: "Strawberry___Leaf_scorch",
	28: "Tomato___Bacterial_spot",
	29: "Tomato___Early_blight",
	30: "Tomato___healthy",
	31: "Tomato___Late_blight",
	32: "Tomato___Leaf_Mold",
	33: "Tomato___Septoria_leaf_spot",
	34: "Tomato___Spider_mites Two-spotted_spider_mite",
	35: "Tomato___Target_Spot",
	36: "Tomato___Tomato_mosaic_virus",
	37: "Tomato___Tomato_Yellow_Leaf_Curl_Virus",
}

// plantFilters maps a lowercase plant name to the class ids belonging to
// that plant, in ascending order. Only plants with a complete disease set
// are filterable.
var plantFilters = map[string][]int{
	"apple":  {0, 1, 2, 3},
	"corn":   {7, 8, 9, 10},
	"grape":  {11, 12, 13, 14},
	"potato": {20, 21, 22},
	"tomato": {28, 29, 30, 31, 32, 33, 34, 35, 36, 37},
}

// ClassCount returns the size of the taxonomy. The model's output vector
// must have exactly this length.
func ClassCount() int {
	return len(classLabels)
}

// LabelFor returns the label for a class id.
func LabelFor(id int) (string, bool) {
	if id < 0 || id >= len(classLabels) {
		return "", false
	}
	return classLabels[id], true
}

// SplitLabel splits a "Plant___Condition" label. A label without the
// separator keeps its full text as the plant name and gets the Unknown
// condition sentinel.
func SplitLabel(label string) (plant, condition string) {
	plant, condition, found := strings.Cut(label, LabelSeparator)
	if !found {
		return plant, UnknownCondition
	}
	return plant, condition
}

// IsHealthyCondition reports whether a condition string denotes a healthy
// plant (case-insensitive substring test).
func IsHealthyCondition(condition string) bool {
	return strings.Contains(strings.ToLower(condition), "healthy")
}

// FilterFor returns the class ids for a plant name. Names are matched in
// lowercase; an unknown name returns ok=false and the caller must reject
// the filter rather than silently ignoring it.
func FilterFor(plant string) ([]int, bool) {
	ids, ok := plantFilters[strings.ToLower(strings.TrimSpace(plant))]
	if !ok {
		return nil, false
	}
	out := make([]int, len(ids))
	copy(out, ids)
	return out, true
}

// SupportedPlants lists the filterable plant names in stable order.
func SupportedPlants() []string {
	names := make([]string, 0, len(plantFilters))
	for name := range plantFilters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DiseasesFor returns the condition names of a plant's classes, in class
// id order.
func DiseasesFor(plant string) ([]string, bool) {
	ids, ok := FilterFor(plant)
	if !ok {
		return nil, false
	}
	conditions := make([]string, 0, len(ids))
	for _, id := range ids {
		_, condition := SplitLabel(classLabels[id])
		conditions = append(conditions, condition)
	}
	return conditions, true
}
