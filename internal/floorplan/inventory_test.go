package floorplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAreaTier(t *testing.T) {
	tests := []struct {
		area float64
		want string
	}{
		{0, TierSmall},
		{9.99, TierSmall},
		{10, TierMedium},
		{20, TierMedium},
		{20.01, TierLarge},
		{63.64, TierLarge},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AreaTier(tt.area), "area %v", tt.area)
	}
}

func TestGenerateScalesWithArea(t *testing.T) {
	g := NewInventoryGenerator()

	t.Run("small kitchen trims the template", func(t *testing.T) {
		room := &Room{Type: TypeKitchen, AreaSqm: 9.6}
		g.Generate(room)
		assert.Equal(t, []string{"Dining table", "Chairs", "Microwave"}, room.Inventory.RegularItems)
		assert.Equal(t, []string{"Dishes box", "Pantry items box"}, room.Inventory.Boxes)
		assert.Equal(t, []string{"Refrigerator"}, room.Inventory.HeavyItems)
	})

	t.Run("large living room gets the full template", func(t *testing.T) {
		room := &Room{Type: TypeLivingRoom, AreaSqm: 63.64}
		g.Generate(room)
		assert.Len(t, room.Inventory.RegularItems, 5)
		assert.Len(t, room.Inventory.Boxes, 3)
		assert.Len(t, room.Inventory.HeavyItems, 2)
	})

	t.Run("medium bedroom", func(t *testing.T) {
		room := &Room{Type: TypeBedroom, AreaSqm: 16.2}
		g.Generate(room)
		assert.Len(t, room.Inventory.RegularItems, 5)
		assert.Len(t, room.Inventory.Boxes, 3)
		assert.Equal(t, []string{"Mattress", "Heavy dresser"}, room.Inventory.HeavyItems)
	})
}

func TestGenerateBathroomHeavyItemsEmpty(t *testing.T) {
	g := NewInventoryGenerator()
	room := &Room{Type: TypeBathroom, AreaSqm: 6}
	g.Generate(room)

	assert.NotNil(t, room.Inventory.HeavyItems, "contract wants an array, not null")
	assert.Empty(t, room.Inventory.HeavyItems)
	assert.NotEmpty(t, room.Inventory.RegularItems)
}

func TestGenerateFallsBackToDefaultTemplate(t *testing.T) {
	g := NewInventoryGenerator()
	room := &Room{Type: TypeDiningRoom, AreaSqm: 15}
	g.Generate(room)

	assert.Equal(t, []string{"Miscellaneous items"}, room.Inventory.RegularItems)
	assert.Equal(t, []string{"General box"}, room.Inventory.Boxes)
	assert.Empty(t, room.Inventory.HeavyItems)
}

func TestGenerateNeverExceedsTemplate(t *testing.T) {
	g := NewInventoryGenerator()
	// Far past the multiplier cap; counts stay at template length.
	room := &Room{Type: TypeGarage, AreaSqm: 500}
	g.Generate(room)

	assert.Len(t, room.Inventory.RegularItems, 3)
	assert.Len(t, room.Inventory.Boxes, 3)
	assert.Len(t, room.Inventory.HeavyItems, 3)
}

func TestGenerateDoesNotAliasTemplates(t *testing.T) {
	g := NewInventoryGenerator()
	room := &Room{Type: TypeKitchen, AreaSqm: 30}
	g.Generate(room)
	room.Inventory.RegularItems[0] = "mutated"

	fresh := &Room{Type: TypeKitchen, AreaSqm: 30}
	g.Generate(fresh)
	assert.Equal(t, "Dining table", fresh.Inventory.RegularItems[0])
}

func TestInventoryGeneratorOverrides(t *testing.T) {
	t.Run("override replaces template", func(t *testing.T) {
		g, err := NewInventoryGeneratorWithTemplates(map[string]InventoryTemplate{
			TypeKitchen: {
				RegularItems: []string{"Stool"},
				Boxes:        []string{"Cutlery box"},
				HeavyItems:   []string{},
			},
		})
		require.NoError(t, err)

		room := &Room{Type: TypeKitchen, AreaSqm: 30}
		g.Generate(room)
		assert.Equal(t, []string{"Stool"}, room.Inventory.RegularItems)
		assert.Equal(t, []string{"Cutlery box"}, room.Inventory.Boxes)

		// Untouched types keep their defaults.
		bed := &Room{Type: TypeBedroom, AreaSqm: 12}
		g.Generate(bed)
		assert.Equal(t, "Bed frame", bed.Inventory.RegularItems[0])
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		_, err := NewInventoryGeneratorWithTemplates(map[string]InventoryTemplate{
			"ballroom": {RegularItems: []string{"Chandelier"}},
		})
		require.Error(t, err)
	})
}
