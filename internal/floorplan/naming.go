package floorplan

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MeKo-Tech/floorscan/internal/utils"
)

// displayNames maps room types to human friendly base names.
var displayNames = map[string]string{
	TypeBedroom:    "Bedroom",
	TypeLivingRoom: "Living Room",
	TypeDiningRoom: "Dining Room",
	TypeKitchen:    "Kitchen",
	TypeBathroom:   "Bathroom",
	TypeLaundry:    "Laundry",
	TypeGarage:     "Garage",
	TypeStorage:    "Storage",
	TypeOffice:     "Office",
	TypeEntry:      "Entry",
	TypeHallway:    "Hallway",
	TypeBalcony:    "Balcony",
	TypeCloset:     "Linen Closet",
	TypeOther:      "Room",
}

// DisplayName returns the presentation name for a room type and raw
// label. Some label phrasings specialize the base name; unclassified
// rooms reuse their own label, title cased, so a legible label like
// "SUNROOM" is not flattened to "Room".
func DisplayName(roomType, label string) string {
	norm := utils.NormalizeLabel(label)
	switch {
	case roomType == TypeBedroom && strings.Contains(norm, "master"):
		return "Master Bedroom"
	case roomType == TypeLivingRoom && strings.Contains(norm, "formal"):
		return "Formal Living Room"
	case roomType == TypeStorage && strings.Contains(norm, "under house"):
		return "Under House Storage"
	}
	if roomType == TypeOther && utils.LetterCount(norm) >= minLabelLetters {
		return cases.Title(language.English).String(norm)
	}
	if name, ok := displayNames[roomType]; ok {
		return name
	}
	return displayNames[TypeOther]
}

// NameRooms assigns final display names to one floor's rooms, numbering
// duplicate base names in the order given. Callers pass rooms already in
// reading order so the numbering runs top to bottom, left to right.
func NameRooms(rooms []*Room) {
	counts := make(map[string]int, len(rooms))
	base := make([]string, len(rooms))
	for i, r := range rooms {
		base[i] = DisplayName(r.Type, r.Label)
		counts[base[i]]++
	}
	seen := make(map[string]int, len(counts))
	for i, r := range rooms {
		name := base[i]
		if counts[name] > 1 {
			seen[name]++
			name = fmt.Sprintf("%s %d", name, seen[name])
		}
		r.Name = name
	}
}
