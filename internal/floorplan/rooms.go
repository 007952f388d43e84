package floorplan

import (
	"sort"

	"github.com/MeKo-Tech/floorscan/internal/extract"
	"github.com/MeKo-Tech/floorscan/internal/utils"
)

// minLabelLetters is the smallest letter count accepted for a room label
// anchor. Bare numbers and dimension fragments fall below it.
const minLabelLetters = 2

// RoomExtractorConfig controls anchor selection and spatial clustering.
type RoomExtractorConfig struct {
	// MinAnchorConfidence is the lowest recognition confidence accepted
	// for an anchor. Descriptor elements associate regardless of their
	// own confidence.
	MinAnchorConfidence float64 `mapstructure:"min_anchor_confidence" yaml:"min_anchor_confidence" json:"min_anchor_confidence"`

	// BaseRadiusPx is the minimum association radius in pixels.
	BaseRadiusPx float64 `mapstructure:"base_radius_px" yaml:"base_radius_px" json:"base_radius_px"`

	// RadiusImageFrac scales the association radius with the longest
	// image side. The effective radius is
	// max(BaseRadiusPx, RadiusImageFrac*maxSide).
	RadiusImageFrac float64 `mapstructure:"radius_image_frac" yaml:"radius_image_frac" json:"radius_image_frac"`

	// AnchorGridPx is the cell size for positional anchor dedup. When
	// several anchors share a cell only the highest confidence one
	// survives.
	AnchorGridPx int `mapstructure:"anchor_grid_px" yaml:"anchor_grid_px" json:"anchor_grid_px"`

	// AnchorIoUThreshold merges anchors whose boxes overlap beyond it,
	// keeping the higher confidence label.
	AnchorIoUThreshold float64 `mapstructure:"anchor_iou_threshold" yaml:"anchor_iou_threshold" json:"anchor_iou_threshold"`
}

// DefaultRoomExtractorConfig returns the clustering defaults.
func DefaultRoomExtractorConfig() RoomExtractorConfig {
	return RoomExtractorConfig{
		MinAnchorConfidence: 0.3,
		BaseRadiusPx:        150,
		RadiusImageFrac:     0.12,
		AnchorGridPx:        50,
		AnchorIoUThreshold:  0.3,
	}
}

// RoomExtractor clusters a floor section's text elements into room
// candidates around label anchors.
type RoomExtractor struct {
	cfg RoomExtractorConfig
}

// NewRoomExtractor builds an extractor, filling zero config fields from
// the defaults.
func NewRoomExtractor(cfg RoomExtractorConfig) *RoomExtractor {
	def := DefaultRoomExtractorConfig()
	if cfg.MinAnchorConfidence <= 0 {
		cfg.MinAnchorConfidence = def.MinAnchorConfidence
	}
	if cfg.BaseRadiusPx <= 0 {
		cfg.BaseRadiusPx = def.BaseRadiusPx
	}
	if cfg.RadiusImageFrac <= 0 {
		cfg.RadiusImageFrac = def.RadiusImageFrac
	}
	if cfg.AnchorGridPx <= 0 {
		cfg.AnchorGridPx = def.AnchorGridPx
	}
	if cfg.AnchorIoUThreshold <= 0 {
		cfg.AnchorIoUThreshold = def.AnchorIoUThreshold
	}
	return &RoomExtractor{cfg: cfg}
}

// IsRoomLabel reports whether text qualifies as a room label anchor:
// at least two letters, not a dimension token, not a floor keyword.
func IsRoomLabel(text string) bool {
	if utils.LetterCount(text) < minLabelLetters {
		return false
	}
	if IsDimensionText(text) {
		return false
	}
	if MatchFloorName(text) != "" {
		return false
	}
	return true
}

// AssociationRadius returns the maximum anchor-to-descriptor distance
// for an image of the given size.
func (e *RoomExtractor) AssociationRadius(width, height int) float64 {
	side := width
	if height > side {
		side = height
	}
	radius := e.cfg.RadiusImageFrac * float64(side)
	if radius < e.cfg.BaseRadiusPx {
		radius = e.cfg.BaseRadiusPx
	}
	return radius
}

type anchorCluster struct {
	label      string
	confidence float64
	box        utils.Box
	assigned   []extract.TextElement
}

// Extract builds room candidates from one floor section. Anchors are
// deduplicated positionally and by box overlap, then every remaining
// element is attached to its nearest anchor within the association
// radius. Rooms come back in reading order, top to bottom then left to
// right by anchor center.
func (e *RoomExtractor) Extract(section FloorSection, width, height int) []*Room {
	var anchors []anchorCluster
	var rest []extract.TextElement
	for _, el := range section.Elements {
		if el.Confidence >= e.cfg.MinAnchorConfidence && IsRoomLabel(el.Text) {
			anchors = append(anchors, anchorCluster{
				label:      el.Text,
				confidence: el.Confidence,
				box:        el.Box,
			})
			continue
		}
		rest = append(rest, el)
	}
	if len(anchors) == 0 {
		return nil
	}

	anchors = e.dedupeByGrid(anchors)
	anchors = e.mergeOverlapping(anchors)

	radius := e.AssociationRadius(width, height)
	for _, el := range rest {
		best := -1
		bestDist := 0.0
		for i, a := range anchors {
			d := utils.CenterDistance(a.box, el.Box)
			if d > radius {
				continue
			}
			if best == -1 || d < bestDist {
				best = i
				bestDist = d
			}
		}
		if best >= 0 {
			anchors[best].assigned = append(anchors[best].assigned, el)
		}
	}

	rooms := make([]*Room, 0, len(anchors))
	for _, a := range anchors {
		rooms = append(rooms, a.toRoom(section.Name))
	}
	sort.SliceStable(rooms, func(i, j int) bool {
		ci, cj := rooms[i].Box.Center(), rooms[j].Box.Center()
		if ci.Y != cj.Y {
			return ci.Y < cj.Y
		}
		return ci.X < cj.X
	})
	return rooms
}

// dedupeByGrid keeps one anchor per grid cell, preferring confidence.
func (e *RoomExtractor) dedupeByGrid(anchors []anchorCluster) []anchorCluster {
	type cell struct{ cx, cy int }
	grid := float64(e.cfg.AnchorGridPx)
	byCell := make(map[cell]int, len(anchors))
	kept := make([]anchorCluster, 0, len(anchors))
	for _, a := range anchors {
		c := a.box.Center()
		key := cell{int(c.X / grid), int(c.Y / grid)}
		if idx, ok := byCell[key]; ok {
			if a.confidence > kept[idx].confidence {
				kept[idx] = a
			}
			continue
		}
		byCell[key] = len(kept)
		kept = append(kept, a)
	}
	return kept
}

// mergeOverlapping folds anchors whose boxes overlap beyond the IoU
// threshold into the higher confidence one. The losing label is kept as
// an associated text so any dimension it carries is not lost.
func (e *RoomExtractor) mergeOverlapping(anchors []anchorCluster) []anchorCluster {
	order := make([]int, len(anchors))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return anchors[order[a]].confidence > anchors[order[b]].confidence
	})

	suppressed := make([]bool, len(anchors))
	merged := make([]anchorCluster, 0, len(anchors))
	for oi, idx := range order {
		if suppressed[idx] {
			continue
		}
		winner := anchors[idx]
		for _, other := range order[oi+1:] {
			if suppressed[other] {
				continue
			}
			if utils.IoU(winner.box, anchors[other].box) > e.cfg.AnchorIoUThreshold {
				suppressed[other] = true
				winner.assigned = append(winner.assigned, extract.TextElement{
					Text:       anchors[other].label,
					Confidence: anchors[other].confidence,
					Box:        anchors[other].box,
				})
			}
		}
		merged = append(merged, winner)
	}
	return merged
}

func (a anchorCluster) toRoom(floorName string) *Room {
	union := a.box
	texts := make([]extract.TextElement, len(a.assigned))
	copy(texts, a.assigned)
	sort.SliceStable(texts, func(i, j int) bool {
		ci, cj := texts[i].Box.Center(), texts[j].Box.Center()
		if ci.Y != cj.Y {
			return ci.Y < cj.Y
		}
		return ci.X < cj.X
	})

	labels := make([]string, 0, len(texts)+1)
	labels = append(labels, a.label)
	for _, t := range texts {
		labels = append(labels, t.Text)
		union = union.Union(t.Box)
	}

	return &Room{
		Label:      a.label,
		Confidence: a.confidence,
		Box:        union,
		FloorName:  floorName,
		Texts:      labels,
		AreaPixels: union.Area(),
	}
}
