package floorplan

import (
	"regexp"
	"strconv"

	"github.com/MeKo-Tech/floorscan/internal/utils"
)

// Dimension is a parsed room measurement in meters.
type Dimension struct {
	WidthM  float64
	LengthM float64
	AreaSqm float64
	Text    string
}

// Measurement patterns in precedence order: explicit trailing unit, unit
// on both numbers, "by" separator, then bare "W x L". The first match
// wins.
var dimensionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[xX×]\s*(\d+(?:\.\d+)?)\s*[mM]\b`),
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[mM]\s*[xX×]\s*(\d+(?:\.\d+)?)\s*[mM]?\b`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*m?\s*by\s*(\d+(?:\.\d+)?)\s*m?\b`),
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[xX×]\s*(\d+(?:\.\d+)?)`),
}

// ParseDimension extracts a width x length measurement from text.
// Area is width*length rounded to two decimals; the normalized text keeps
// the parsed values with a single trailing unit.
func ParseDimension(text string) (Dimension, bool) {
	for _, re := range dimensionPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		w, errW := strconv.ParseFloat(m[1], 64)
		l, errL := strconv.ParseFloat(m[2], 64)
		if errW != nil || errL != nil || w <= 0 || l <= 0 {
			continue
		}
		return Dimension{
			WidthM:  w,
			LengthM: l,
			AreaSqm: utils.Round2(w * l),
			Text:    formatDimension(w, l),
		}, true
	}
	return Dimension{}, false
}

// IsDimensionText reports whether text looks like a measurement rather
// than a room label.
func IsDimensionText(text string) bool {
	for _, re := range dimensionPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func formatDimension(w, l float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64) + " x " + strconv.FormatFloat(l, 'f', -1, 64) + "m"
}

// ResolveDimensions fills a room's measurement from its associated texts;
// the first parsable one wins. Rooms without a measurement are marked
// Estimated and get their area later from EstimateArea, once the type is
// known. Estimated values never override parsed ones.
func ResolveDimensions(room *Room) {
	for _, text := range room.Texts {
		if dim, ok := ParseDimension(text); ok {
			room.AreaSqm = dim.AreaSqm
			room.Dimensions = dim.Text
			room.Estimated = false
			return
		}
	}
	room.Dimensions = EstimatedDimensions
	room.Estimated = true
}

// EstimateArea derives an area for rooms without a parsed measurement.
// The typical area for the classified type applies first; unclassified
// rooms with a meaningful pixel box use the sqmPerPixel calibration, then
// the generic typical area. Parsed areas are left untouched.
func EstimateArea(room *Room, sqmPerPixel float64) {
	if !room.Estimated || room.AreaSqm > 0 {
		return
	}
	if room.Type != TypeOther {
		if area, ok := TypicalAreaSqm(room.Type); ok {
			room.AreaSqm = area
			return
		}
	}
	if room.AreaPixels > 0 && sqmPerPixel > 0 {
		room.AreaSqm = utils.Round2(room.AreaPixels * sqmPerPixel)
		return
	}
	if area, ok := TypicalAreaSqm(TypeOther); ok {
		room.AreaSqm = area
	}
}
