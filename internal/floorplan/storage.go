package floorplan

import (
	"strings"

	"github.com/MeKo-Tech/floorscan/internal/utils"
)

// Storage suitability thresholds.
const (
	// LargeAreaFallbackSqm flags unclassified rooms as storage when
	// they reach this size. Heuristic for unlabeled utility spaces.
	LargeAreaFallbackSqm = 25.0

	// HeavyItemAreaSqm is the single-space area required before heavy
	// items fit.
	HeavyItemAreaSqm = 20.0

	// BoxStorageAreaSqm is the total storage area required for box
	// storage.
	BoxStorageAreaSqm = 10.0

	// SqmToSqft converts square meters to square feet.
	SqmToSqft = 10.764
)

// storageKeywords mark labels that indicate storage use even when the
// classifier picked another type.
var storageKeywords = []string{
	"storage", "store", "garage", "under house", "basement",
	"attic", "utility", "shed", "warehouse",
}

// IsStorageSuitable reports whether a room can hold bulk storage:
// garage or storage type, a storage keyword in the label, or an
// unclassified room large enough to act as one.
func IsStorageSuitable(room *Room) bool {
	if room.Type == TypeGarage || room.Type == TypeStorage {
		return true
	}
	norm := utils.NormalizeLabel(room.Label)
	for _, kw := range storageKeywords {
		if strings.Contains(norm, kw) {
			return true
		}
	}
	return room.Type == TypeOther && room.AreaSqm >= LargeAreaFallbackSqm
}

// AnalyzeStorage marks storage-suitable rooms in place and aggregates
// capacity metrics. Rooms must already carry final names and floor
// attribution.
func AnalyzeStorage(rooms []*Room) *StorageAnalysis {
	analysis := &StorageAnalysis{StorageSpaces: []StorageSpace{}}
	var total, largest float64
	for _, r := range rooms {
		if !IsStorageSuitable(r) {
			continue
		}
		r.IsStorage = true
		analysis.StorageSpaces = append(analysis.StorageSpaces, StorageSpace{
			Name:    r.Name,
			AreaSqm: r.AreaSqm,
			Floor:   r.FloorName,
		})
		total += r.AreaSqm
		if r.AreaSqm > largest {
			largest = r.AreaSqm
		}
		switch r.Type {
		case TypeGarage:
			analysis.GarageSpaces++
		case TypeStorage:
			analysis.DedicatedStorage++
		}
	}
	analysis.NumStorageSpaces = len(analysis.StorageSpaces)
	analysis.TotalStorageAreaSqm = utils.Round2(total)
	analysis.TotalStorageAreaSqft = utils.Round2(total * SqmToSqft)
	analysis.SuitableForHeavy = largest >= HeavyItemAreaSqm
	analysis.SuitableForBoxes = total >= BoxStorageAreaSqm
	return analysis
}
