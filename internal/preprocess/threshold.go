package preprocess

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
)

// applyAdaptiveThreshold binarizes the image against a local Gaussian
// neighborhood mean: a pixel stays foreground (white) when its value
// exceeds the blurred local mean minus ThresholdC. Dark strokes on light
// paper come out as clean black-on-white, which suits blueprint and
// line-drawing floor plans where global thresholds fail on uneven
// lighting.
func (g *Generator) applyAdaptiveThreshold(img image.Image) image.Image {
	gray := ToGray(img)

	// Gaussian blur over the block neighborhood supplies the weighted
	// local mean; radius covers the configured block size.
	radius := float64(g.cfg.BlockSize) / 2.0
	blurred := blur.Gaussian(gray, radius)

	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	c := g.cfg.ThresholdC
	for y := range h {
		for x := range w {
			v := float64(gray.Pix[y*gray.Stride+x])
			// blurred is RGBA with equal channels; red carries the mean.
			mean := float64(blurred.Pix[y*blurred.Stride+x*4])
			if v > mean-c {
				out.Pix[y*out.Stride+x] = 255
			} else {
				out.Pix[y*out.Stride+x] = 0
			}
		}
	}
	return out
}
