// Package consensus merges classifier tags with community vote scores.
package consensus

import "sort"

const (
	// SuppressThreshold removes a classifier tag once its score drops to it.
	SuppressThreshold = -3

	// PromoteThreshold adds a tag the rules missed once its score reaches it.
	PromoteThreshold = 3
)

// Resolve returns the effective tag set: classifierTags adjusted by scores.
//
// A classified tag with score <= -3 is removed; an unclassified tag with
// score >= +3 is added. Anything in between leaves the tag as classified.
// The result is sorted and neither input is modified.
func Resolve(classifierTags []string, scores map[string]int) []string {
	effective := make(map[string]bool, len(classifierTags))
	for _, tag := range classifierTags {
		effective[tag] = true
	}

	for tag, score := range scores {
		if effective[tag] {
			if score <= SuppressThreshold {
				delete(effective, tag)
			}
			continue
		}
		if score >= PromoteThreshold {
			effective[tag] = true
		}
	}

	result := make([]string, 0, len(effective))
	for tag := range effective {
		result = append(result, tag)
	}
	sort.Strings(result)
	return result
}
