package extract

import (
	"sort"

	"github.com/MeKo-Tech/floorscan/internal/preprocess"
	"github.com/MeKo-Tech/floorscan/internal/utils"
)

// methodRank orders methods for tie-breaking: the original variant wins
// over derived ones at equal confidence.
func methodRank(method string) int {
	switch method {
	case preprocess.MethodOriginal:
		return 0
	case preprocess.MethodContrast:
		return 1
	case preprocess.MethodThreshold:
		return 2
	case preprocess.MethodMorphology:
		return 3
	default:
		return 4
	}
}

// Merge deduplicates elements across recognition methods. Two elements are
// duplicates when their boxes overlap above iouThreshold AND their texts
// match above similarityThreshold; the higher-confidence element survives.
// Ties prefer the original variant, then first-seen order. The result is
// sorted by confidence descending and is deterministic for a given input
// ordering.
func Merge(elements []TextElement, iouThreshold, similarityThreshold float64) []TextElement {
	if len(elements) <= 1 {
		return append([]TextElement(nil), elements...)
	}

	indices := make([]int, len(elements))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		ea, eb := elements[indices[a]], elements[indices[b]]
		if ea.Confidence != eb.Confidence {
			return ea.Confidence > eb.Confidence
		}
		ra, rb := methodRank(ea.Method), methodRank(eb.Method)
		if ra != rb {
			return ra < rb
		}
		return indices[a] < indices[b]
	})

	suppressed := make([]bool, len(elements))
	kept := make([]TextElement, 0, len(elements))
	for _, a := range indices {
		if suppressed[a] {
			continue
		}
		kept = append(kept, elements[a])

		for _, b := range indices {
			if suppressed[b] || a == b {
				continue
			}
			if utils.IoU(elements[a].Box, elements[b].Box) > iouThreshold &&
				utils.TextSimilarity(elements[a].Text, elements[b].Text) >= similarityThreshold {
				suppressed[b] = true
			}
		}
	}
	return kept
}
