package floorplan

import "fmt"

// Area tier bounds and inventory scaling constants, in square meters.
const (
	SmallRoomMaxSqm  = 10.0
	MediumRoomMaxSqm = 20.0

	// referenceAreaSqm is the room size that maps to a 1.0 inventory
	// multiplier.
	referenceAreaSqm = 15.0
	maxInventoryMult = 1.5
)

// Area tier names.
const (
	TierSmall  = "small"
	TierMedium = "medium"
	TierLarge  = "large"
)

// InventoryTemplate is the canonical contents for one room type. The
// template is a ceiling: scaling selects a prefix, never repeats items.
type InventoryTemplate struct {
	RegularItems []string `yaml:"regular_items" json:"regular_items"`
	Boxes        []string `yaml:"boxes" json:"boxes"`
	HeavyItems   []string `yaml:"heavy_items" json:"heavy_items"`
}

// DefaultInventoryTemplates returns the built-in templates. Types
// without an entry use the TypeOther template.
func DefaultInventoryTemplates() map[string]InventoryTemplate {
	return map[string]InventoryTemplate{
		TypeKitchen: {
			RegularItems: []string{"Dining table", "Chairs", "Microwave", "Toaster", "Kitchen utensils", "Dishes"},
			Boxes:        []string{"Dishes box", "Pantry items box", "Kitchen tools box"},
			HeavyItems:   []string{"Refrigerator", "Dishwasher"},
		},
		TypeLivingRoom: {
			RegularItems: []string{"Sofa", "Coffee table", "TV stand", "Bookshelf", "Lamps"},
			Boxes:        []string{"Books box", "Electronics box", "Decorations box"},
			HeavyItems:   []string{"Large TV", "Heavy bookshelf"},
		},
		TypeBedroom: {
			RegularItems: []string{"Bed frame", "Nightstand", "Dresser", "Lamp", "Bedding"},
			Boxes:        []string{"Clothes box", "Bedding box", "Personal items box"},
			HeavyItems:   []string{"Mattress", "Heavy dresser"},
		},
		TypeBathroom: {
			RegularItems: []string{"Towels", "Toiletries", "Bath mat", "Accessories"},
			Boxes:        []string{"Toiletries box", "Linens box"},
			HeavyItems:   []string{},
		},
		TypeGarage: {
			RegularItems: []string{"Tools", "Garden equipment", "Sports gear"},
			Boxes:        []string{"Tools box", "Sports box", "Garden supplies box"},
			HeavyItems:   []string{"Workbench", "Lawn mower", "Heavy equipment"},
		},
		TypeStorage: {
			RegularItems: []string{"Seasonal items", "Holiday decorations", "Keepsakes"},
			Boxes:        []string{"Storage box 1", "Storage box 2", "Storage box 3"},
			HeavyItems:   []string{"Large storage items"},
		},
		TypeOther: {
			RegularItems: []string{"Miscellaneous items"},
			Boxes:        []string{"General box"},
			HeavyItems:   []string{},
		},
	}
}

// AreaTier buckets a room area into small, medium, or large.
func AreaTier(areaSqm float64) string {
	switch {
	case areaSqm < SmallRoomMaxSqm:
		return TierSmall
	case areaSqm <= MediumRoomMaxSqm:
		return TierMedium
	default:
		return TierLarge
	}
}

// InventoryGenerator maps room type and size to packing estimates.
type InventoryGenerator struct {
	templates map[string]InventoryTemplate
}

// NewInventoryGenerator builds a generator over the built-in templates.
func NewInventoryGenerator() *InventoryGenerator {
	return &InventoryGenerator{templates: DefaultInventoryTemplates()}
}

// NewInventoryGeneratorWithTemplates overlays custom templates on the
// defaults, validating the type keys.
func NewInventoryGeneratorWithTemplates(overrides map[string]InventoryTemplate) (*InventoryGenerator, error) {
	templates := DefaultInventoryTemplates()
	for roomType, tpl := range overrides {
		if !knownRoomType(roomType) {
			return nil, fmt.Errorf("inventory: unknown room type %q", roomType)
		}
		templates[roomType] = tpl
	}
	return &InventoryGenerator{templates: templates}, nil
}

// Generate fills room.Inventory from the room's type and area. Counts
// scale with area but never exceed the template; a type with an empty
// heavy template yields an empty heavy list, which is valid output.
func (g *InventoryGenerator) Generate(room *Room) {
	tpl, ok := g.templates[room.Type]
	if !ok {
		tpl = g.templates[TypeOther]
	}
	mult := inventoryMultiplier(room.AreaSqm)
	room.Inventory = Inventory{
		RegularItems: takeItems(tpl.RegularItems, scaleCount(len(tpl.RegularItems), mult, 3)),
		Boxes:        takeItems(tpl.Boxes, scaleCount(len(tpl.Boxes), mult, 2)),
		HeavyItems:   takeItems(tpl.HeavyItems, scaleCount(len(tpl.HeavyItems), mult, 0)),
	}
}

func inventoryMultiplier(areaSqm float64) float64 {
	if areaSqm < 0 {
		areaSqm = 0
	}
	m := areaSqm / referenceAreaSqm
	if m > maxInventoryMult {
		m = maxInventoryMult
	}
	return m
}

// scaleCount floors the scaled length at minCount and caps it at the
// template length.
func scaleCount(templateLen int, mult float64, minCount int) int {
	if templateLen == 0 {
		return 0
	}
	n := int(float64(templateLen) * mult)
	if n < minCount {
		n = minCount
	}
	if n > templateLen {
		n = templateLen
	}
	return n
}

// takeItems copies the first n template items so callers never alias
// the template slices.
func takeItems(items []string, n int) []string {
	out := make([]string, 0, n)
	out = append(out, items[:n]...)
	return out
}
