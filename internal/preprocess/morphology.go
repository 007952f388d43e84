package preprocess

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// applyMorphClean runs a morphological closing followed by an opening with
// a small structuring radius. Closing reconnects broken character strokes
// (thin scan gaps), opening removes isolated speckle noise. Both operate
// on the grayscale image; bright regions are treated as background.
func (g *Generator) applyMorphClean(img image.Image) image.Image {
	gray := ToGray(img)
	r := g.cfg.MorphRadius

	// Closing: dilate then erode.
	closed := effect.Erode(effect.Dilate(gray, r), r)
	// Opening: erode then dilate.
	opened := effect.Dilate(effect.Erode(closed, r), r)

	return ToGray(opened)
}
