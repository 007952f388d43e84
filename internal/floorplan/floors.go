package floorplan

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/MeKo-Tech/floorscan/internal/extract"
	"github.com/MeKo-Tech/floorscan/internal/utils"
)

// DefaultFloorName is the synthetic level used when no floor keyword
// appears anywhere on the plan.
const DefaultFloorName = "Ground Floor"

// floorKeywords maps indicator phrases to canonical floor names, checked
// in order against normalized element text.
var floorKeywords = []struct {
	keyword string
	name    string
}{
	{"ground floor", "Ground Floor"},
	{"first floor", "First Floor"},
	{"second floor", "Second Floor"},
	{"third floor", "Third Floor"},
	{"basement", "Basement"},
}

var levelPattern = regexp.MustCompile(`\blevel\s*(\d+)\b`)

// FloorSection groups the elements attributed to one floor anchor before
// room extraction. Floor-label elements themselves are consumed by
// segmentation and do not appear in Elements.
type FloorSection struct {
	Name     string
	AnchorY  float64
	Elements []extract.TextElement
}

// MatchFloorName returns the canonical floor name for a floor-indicator
// label, or "" when the text is not one.
func MatchFloorName(text string) string {
	norm := utils.NormalizeLabel(text)
	for _, fk := range floorKeywords {
		if strings.Contains(norm, fk.keyword) {
			return fk.name
		}
	}
	if m := levelPattern.FindStringSubmatch(norm); m != nil {
		return "Level " + m[1]
	}
	return ""
}

// SegmentFloors partitions elements into floor sections. Every floor
// keyword match anchors a section at its vertical center; remaining
// elements go to the nearest anchor at or above them (plans read
// top-to-bottom per level), with elements above the first anchor falling
// into the first section. Without any floor keyword all elements land on
// a single synthetic Ground Floor. Sections are ordered strictly by
// anchor vertical position, ties by first-seen order.
func SegmentFloors(elements []extract.TextElement) []FloorSection {
	type anchor struct {
		name string
		y    float64
		seen int
	}
	var anchors []anchor
	var rest []extract.TextElement

	for _, el := range elements {
		if name := MatchFloorName(el.Text); name != "" {
			anchors = append(anchors, anchor{name: name, y: el.Box.Center().Y, seen: len(anchors)})
			continue
		}
		rest = append(rest, el)
	}

	if len(anchors) == 0 {
		return []FloorSection{{Name: DefaultFloorName, AnchorY: 0, Elements: rest}}
	}

	sort.SliceStable(anchors, func(i, j int) bool {
		if anchors[i].y != anchors[j].y {
			return anchors[i].y < anchors[j].y
		}
		return anchors[i].seen < anchors[j].seen
	})

	// Duplicate floor names (e.g. a legend repeating "GROUND FLOOR") get
	// positional suffixes so sections stay distinct.
	names := make(map[string]int, len(anchors))
	sections := make([]FloorSection, len(anchors))
	for i, a := range anchors {
		name := a.name
		names[name]++
		if n := names[name]; n > 1 {
			name = fmt.Sprintf("%s (%d)", name, n)
		}
		sections[i] = FloorSection{Name: name, AnchorY: a.y}
	}

	for _, el := range rest {
		idx := 0
		y := el.Box.Center().Y
		for i := range sections {
			if sections[i].AnchorY <= y {
				idx = i
			} else {
				break
			}
		}
		sections[idx].Elements = append(sections[idx].Elements, el)
	}
	return sections
}
