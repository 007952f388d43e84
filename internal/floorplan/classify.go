package floorplan

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/floorscan/internal/utils"
)

// TaxonomyEntry binds a room type to the label keywords that select it.
type TaxonomyEntry struct {
	Type     string   `yaml:"type" json:"type"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// DefaultTaxonomy returns the ordered keyword table used to classify room
// labels. Evaluation is first-match-wins by case-insensitive substring,
// so the order is part of the contract: it decides ambiguous labels
// ("media room" is living space, not office) deterministically instead
// of scoring.
func DefaultTaxonomy() []TaxonomyEntry {
	return []TaxonomyEntry{
		{TypeBedroom, []string{"bedroom", "bed", "master", "guest room"}},
		{TypeLivingRoom, []string{"living", "lounge", "family", "media", "rumpus", "sitting"}},
		{TypeDiningRoom, []string{"dining", "meals", "breakfast"}},
		{TypeKitchen, []string{"kitchen", "kitchenette", "pantry", "scullery"}},
		{TypeBathroom, []string{"bathroom", "bath", "ensuite", "shower", "toilet", "powder", "wc"}},
		{TypeLaundry, []string{"laundry", "utility"}},
		{TypeGarage, []string{"garage", "carport", "car space"}},
		{TypeStorage, []string{"storage", "store", "shed", "attic", "cellar", "under house", "warehouse"}},
		{TypeOffice, []string{"office", "study", "library", "den"}},
		{TypeEntry, []string{"entry", "entrance", "foyer", "lobby", "vestibule"}},
		{TypeHallway, []string{"hallway", "hall", "corridor", "passage", "landing"}},
		{TypeBalcony, []string{"balcony", "deck", "terrace", "patio", "verandah", "veranda", "porch", "alfresco"}},
		{TypeCloset, []string{"closet", "wardrobe", "robe", "linen", "wir"}},
	}
}

// Classifier assigns room types from label text. The zero value is not
// usable; construct with NewClassifier.
type Classifier struct {
	taxonomy []TaxonomyEntry
}

// NewClassifier builds a classifier over the default taxonomy.
func NewClassifier() *Classifier {
	return &Classifier{taxonomy: DefaultTaxonomy()}
}

// NewClassifierWithTaxonomy builds a classifier over a custom ordered
// taxonomy, validating the type names.
func NewClassifierWithTaxonomy(taxonomy []TaxonomyEntry) (*Classifier, error) {
	if len(taxonomy) == 0 {
		return nil, fmt.Errorf("classifier: empty taxonomy")
	}
	for _, entry := range taxonomy {
		if !knownRoomType(entry.Type) {
			return nil, fmt.Errorf("classifier: unknown room type %q", entry.Type)
		}
		if len(entry.Keywords) == 0 {
			return nil, fmt.Errorf("classifier: type %q has no keywords", entry.Type)
		}
	}
	return &Classifier{taxonomy: taxonomy}, nil
}

// Classify maps label text to a room type. A pure function of the
// normalized label: identical text modulo case and whitespace always
// yields the same type. Unmatched labels are TypeOther.
func (c *Classifier) Classify(label string) string {
	norm := utils.NormalizeLabel(label)
	if norm == "" {
		return TypeOther
	}
	for _, entry := range c.taxonomy {
		for _, kw := range entry.Keywords {
			if strings.Contains(norm, kw) {
				return entry.Type
			}
		}
	}
	return TypeOther
}

// typicalAreas lists the nominal size in square meters assumed for a room
// type when no measurement was parsed.
var typicalAreas = map[string]float64{
	TypeBedroom:    12,
	TypeLivingRoom: 25,
	TypeDiningRoom: 15,
	TypeKitchen:    12,
	TypeBathroom:   6,
	TypeLaundry:    5,
	TypeGarage:     20,
	TypeStorage:    30,
	TypeOffice:     12,
	TypeEntry:      5,
	TypeHallway:    8,
	TypeBalcony:    10,
	TypeCloset:     2,
	TypeOther:      10,
}

// TypicalAreaSqm returns the fallback area for a room type.
func TypicalAreaSqm(roomType string) (float64, bool) {
	area, ok := typicalAreas[roomType]
	return area, ok
}

func knownRoomType(t string) bool {
	_, ok := typicalAreas[t]
	return ok
}
