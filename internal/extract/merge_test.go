package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/floorscan/internal/utils"
)

func element(text, method string, conf float64, box utils.Box) TextElement {
	return TextElement{Text: text, Confidence: conf, Box: box, Method: method}
}

func TestMergeCollapsesCrossMethodDuplicates(t *testing.T) {
	box := utils.NewBoxFromSize(100, 100, 80, 20)
	shifted := utils.NewBoxFromSize(102, 101, 80, 20)
	in := []TextElement{
		element("KITCHEN", "original", 0.71, box),
		element("KITCHEN", "contrast", 0.88, shifted),
		element("Kitchen", "threshold", 0.65, box),
	}

	out := Merge(in, 0.3, 0.8)
	require.Len(t, out, 1)
	assert.Equal(t, "KITCHEN", out[0].Text)
	assert.InDelta(t, 0.88, out[0].Confidence, 1e-9)
	assert.Equal(t, "contrast", out[0].Method)
}

func TestMergeTiePrefersOriginalVariant(t *testing.T) {
	box := utils.NewBoxFromSize(50, 50, 60, 18)
	in := []TextElement{
		element("LIVING", "morphology", 0.8, box),
		element("LIVING", "original", 0.8, box),
	}

	out := Merge(in, 0.3, 0.8)
	require.Len(t, out, 1)
	assert.Equal(t, "original", out[0].Method)
}

func TestMergeRequiresSpatialOverlap(t *testing.T) {
	// Same label text in two different places is two rooms, not one.
	in := []TextElement{
		element("BED", "original", 0.9, utils.NewBoxFromSize(100, 100, 40, 16)),
		element("BED", "original", 0.85, utils.NewBoxFromSize(400, 300, 40, 16)),
	}

	out := Merge(in, 0.3, 0.8)
	assert.Len(t, out, 2)
}

func TestMergeRequiresTextSimilarity(t *testing.T) {
	box := utils.NewBoxFromSize(10, 10, 80, 20)
	in := []TextElement{
		element("KITCHEN", "original", 0.9, box),
		element("GARAGE", "contrast", 0.8, box),
	}

	out := Merge(in, 0.3, 0.8)
	assert.Len(t, out, 2)
}

func TestMergeOutputSortedByConfidence(t *testing.T) {
	in := []TextElement{
		element("HALL", "original", 0.4, utils.NewBoxFromSize(0, 0, 40, 12)),
		element("BATH", "original", 0.9, utils.NewBoxFromSize(100, 0, 40, 12)),
		element("STUDY", "original", 0.7, utils.NewBoxFromSize(200, 0, 40, 12)),
	}

	out := Merge(in, 0.3, 0.8)
	require.Len(t, out, 3)
	assert.Equal(t, "BATH", out[0].Text)
	assert.Equal(t, "STUDY", out[1].Text)
	assert.Equal(t, "HALL", out[2].Text)
}

func TestMergeSmallInputs(t *testing.T) {
	assert.Empty(t, Merge(nil, 0.3, 0.8))

	single := []TextElement{element("WC", "original", 0.5, utils.NewBoxFromSize(0, 0, 20, 10))}
	out := Merge(single, 0.3, 0.8)
	require.Len(t, out, 1)
	assert.Equal(t, "WC", out[0].Text)
}

func TestMergeDeterministic(t *testing.T) {
	box := utils.NewBoxFromSize(10, 10, 60, 18)
	in := []TextElement{
		element("LAUNDRY", "original", 0.6, box),
		element("LAUNDRY", "contrast", 0.6, box),
		element("GARAGE", "threshold", 0.6, utils.NewBoxFromSize(200, 10, 60, 18)),
	}

	first := Merge(in, 0.3, 0.8)
	second := Merge(in, 0.3, 0.8)
	assert.Equal(t, first, second)
}
