package floorplan

import (
	"github.com/MeKo-Tech/floorscan/internal/utils"
)

// Failure strings surfaced when recognition yields nothing. External
// consumers match on these, so they are part of the contract.
const (
	noTextError   = "OCR failed to extract room information from floor plan"
	noTextMessage = "No room text could be detected in the floor plan image"
)

// BuildFloors assembles floor groups from per-section room groups. Both
// slices run in parallel; sections that produced no rooms are dropped.
// Floor totals sum parsed and estimated areas alike.
func BuildFloors(sections []FloorSection, roomGroups [][]*Room) []Floor {
	floors := make([]Floor, 0, len(sections))
	for i, section := range sections {
		if i >= len(roomGroups) || len(roomGroups[i]) == 0 {
			continue
		}
		rooms := roomGroups[i]
		var total float64
		vals := make([]Room, 0, len(rooms))
		for _, r := range rooms {
			total += r.AreaSqm
			vals = append(vals, *r)
		}
		floors = append(floors, Floor{
			Name:         section.Name,
			RoomCount:    len(vals),
			TotalAreaSqm: utils.Round2(total),
			Rooms:        vals,
			AnchorY:      section.AnchorY,
		})
	}
	return floors
}

// BuildAnalysis assembles the success artifact from assembled floors.
func BuildAnalysis(floors []Floor, storage *StorageAnalysis, debug DebugInfo) *Analysis {
	info := &PropertyInfo{NumFloors: len(floors)}
	summary := &InventorySummary{RoomsByType: map[string]int{}}
	var area float64
	for _, f := range floors {
		info.TotalRooms += len(f.Rooms)
		area += f.TotalAreaSqm
		for _, r := range f.Rooms {
			summary.RoomsByType[r.Type]++
			summary.TotalBoxesEstimated += len(r.Inventory.Boxes)
			summary.TotalHeavyEstimated += len(r.Inventory.HeavyItems)
		}
	}
	info.TotalAreaSqm = utils.Round2(area)
	summary.TotalRooms = info.TotalRooms
	return &Analysis{
		Success:          true,
		PropertyInfo:     info,
		Floors:           floors,
		StorageAnalysis:  storage,
		InventorySummary: summary,
		DebugInfo:        debug,
	}
}

// BuildFailure returns the structured failure used when recognition
// found no text anywhere in the image. Floors stay absent; partial
// results are never reported as success.
func BuildFailure(debug DebugInfo) *Analysis {
	debug.Message = noTextMessage
	return &Analysis{
		Success:   false,
		Error:     noTextError,
		DebugInfo: debug,
	}
}
