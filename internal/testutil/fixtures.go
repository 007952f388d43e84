package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteRoomsConfigYAML writes a taxonomy/template override file that
// remaps the "studio" keyword to office and shrinks its inventory, for
// exercising the --rooms-config path end to end.
func WriteRoomsConfigYAML(t *testing.T, dir string) string {
	t.Helper()

	content := `taxonomy:
  - type: office
    keywords: ["studio", "study", "office"]
  - type: kitchen
    keywords: ["kitchen", "kit"]
  - type: living_room
    keywords: ["living", "lounge"]
inventory_templates:
  office:
    regular_items: ["desk"]
    boxes: ["box-documents-1"]
    heavy_items: []
`
	path := filepath.Join(dir, "rooms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// WriteCorruptImage writes a file with an image extension but garbage
// content, for decode-failure paths.
func WriteCorruptImage(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o600))
	return path
}
