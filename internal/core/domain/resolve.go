package domain

import "fmt"

// Resolve selects the winning class from a raw prediction vector. With a
// nil or empty filter the whole vector is searched; otherwise only the
// given class ids are candidates. Confidence is the raw score at the
// winning position, not rescaled. Ties resolve to the lowest index.
func Resolve(vector []float32, filter []int) (classID int, confidence float32, err error) {
	if len(vector) == 0 {
		return 0, 0, fmt.Errorf("empty prediction vector")
	}

	if len(filter) == 0 {
		best := 0
		for i, score := range vector {
			if score > vector[best] {
				best = i
			}
		}
		return best, vector[best], nil
	}

	best := -1
	for _, id := range filter {
		if id < 0 || id >= len(vector) {
			return 0, 0, fmt.Errorf("filter id %d out of range for vector of length %d", id, len(vector))
		}
		if best < 0 || vector[id] > vector[best] {
			best = id
		}
	}
	return best, vector[best], nil
}
