package floorplan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRoomsConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rooms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRoomsConfig(t *testing.T) {
	path := writeRoomsConfig(t, `taxonomy:
  - type: office
    keywords: [media]
  - type: living_room
    keywords: [living, lounge]
inventory_templates:
  kitchen:
    regular_items: [Stool]
    boxes: [Cutlery box]
    heavy_items: []
`)

	cfg, err := LoadRoomsConfig(path)
	require.NoError(t, err)

	c, err := cfg.Classifier()
	require.NoError(t, err)
	// File order is priority order: media now classifies as office.
	assert.Equal(t, TypeOffice, c.Classify("MEDIA ROOM"))
	assert.Equal(t, TypeLivingRoom, c.Classify("LOUNGE"))

	g, err := cfg.InventoryGenerator()
	require.NoError(t, err)
	room := &Room{Type: TypeKitchen, AreaSqm: 30}
	g.Generate(room)
	assert.Equal(t, []string{"Stool"}, room.Inventory.RegularItems)
}

func TestLoadRoomsConfigErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRoomsConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeRoomsConfig(t, "taxonomy: [unclosed")
		_, err := LoadRoomsConfig(path)
		require.Error(t, err)
	})

	t.Run("unknown type surfaces on build", func(t *testing.T) {
		path := writeRoomsConfig(t, `taxonomy:
  - type: ballroom
    keywords: [ball]
`)
		cfg, err := LoadRoomsConfig(path)
		require.NoError(t, err)
		_, err = cfg.Classifier()
		require.Error(t, err)
	})
}

func TestRoomsConfigDefaults(t *testing.T) {
	var cfg *RoomsConfig

	c, err := cfg.Classifier()
	require.NoError(t, err)
	assert.Equal(t, TypeKitchen, c.Classify("KITCHEN"))

	g, err := cfg.InventoryGenerator()
	require.NoError(t, err)
	room := &Room{Type: TypeKitchen, AreaSqm: 30}
	g.Generate(room)
	assert.Equal(t, "Dining table", room.Inventory.RegularItems[0])
}
