// Package floorplan turns merged text elements into the structured
// property analysis: floors, rooms, dimensions, storage capacity, and
// packing inventory. All types are request-scoped; nothing here is
// persisted or shared between analyses.
package floorplan

import (
	"github.com/MeKo-Tech/floorscan/internal/utils"
)

// Room type identifiers used throughout classification and reporting.
const (
	TypeBedroom    = "bedroom"
	TypeLivingRoom = "living_room"
	TypeDiningRoom = "dining_room"
	TypeKitchen    = "kitchen"
	TypeBathroom   = "bathroom"
	TypeLaundry    = "laundry"
	TypeGarage     = "garage"
	TypeStorage    = "storage"
	TypeOffice     = "office"
	TypeEntry      = "entry"
	TypeHallway    = "hallway"
	TypeBalcony    = "balcony"
	TypeCloset     = "closet"
	TypeOther      = "other"
)

// EstimatedDimensions marks rooms whose area was derived rather than
// parsed from a measurement label.
const EstimatedDimensions = "Estimated"

// Inventory lists the estimated contents of one room.
type Inventory struct {
	RegularItems []string `json:"regular_items"`
	Boxes        []string `json:"boxes"`
	HeavyItems   []string `json:"heavy_items"`
}

// Room is one extracted room, created by clustering and enriched by the
// dimension parser, classifier, storage analyzer, and inventory
// generator. JSON-tagged fields form the external contract; untagged
// working fields stay internal.
type Room struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	AreaSqm    float64   `json:"area_sqm"`
	Dimensions string    `json:"dimensions"`
	IsStorage  bool      `json:"is_storage"`
	Inventory  Inventory `json:"inventory"`

	// Working state, not serialized.
	Label      string    `json:"-"`
	Confidence float64   `json:"-"`
	Box        utils.Box `json:"-"`
	FloorName  string    `json:"-"`
	Texts      []string  `json:"-"`
	AreaPixels float64   `json:"-"`
	Estimated  bool      `json:"-"`
}

// Floor is one building level and the rooms attributed to it.
type Floor struct {
	Name         string  `json:"name"`
	RoomCount    int     `json:"room_count"`
	TotalAreaSqm float64 `json:"total_area_sqm"`
	Rooms        []Room  `json:"rooms"`

	// AnchorY is the vertical position of the floor keyword that
	// anchored this group; floors are ordered by it.
	AnchorY float64 `json:"-"`
}

// PropertyInfo aggregates across all floors.
type PropertyInfo struct {
	TotalRooms   int     `json:"total_rooms"`
	TotalAreaSqm float64 `json:"total_area_sqm"`
	NumFloors    int     `json:"num_floors"`
}

// StorageSpace is one storage-suitable room in the capacity summary.
type StorageSpace struct {
	Name    string  `json:"name"`
	AreaSqm float64 `json:"area_sqm"`
	Floor   string  `json:"floor"`
}

// StorageAnalysis aggregates storage capacity across the property.
type StorageAnalysis struct {
	TotalStorageAreaSqm  float64        `json:"total_storage_area_sqm"`
	TotalStorageAreaSqft float64        `json:"total_storage_area_sqft"`
	NumStorageSpaces     int            `json:"num_storage_spaces"`
	StorageSpaces        []StorageSpace `json:"storage_spaces"`
	GarageSpaces         int            `json:"garage_spaces"`
	DedicatedStorage     int            `json:"dedicated_storage_spaces"`
	SuitableForHeavy     bool           `json:"suitable_for_heavy_items"`
	SuitableForBoxes     bool           `json:"suitable_for_boxes"`
}

// InventorySummary aggregates packing estimates across the property.
type InventorySummary struct {
	TotalRooms          int            `json:"total_rooms"`
	TotalBoxesEstimated int            `json:"total_boxes_estimated"`
	TotalHeavyEstimated int            `json:"total_heavy_items_estimated"`
	RoomsByType         map[string]int `json:"rooms_by_type"`
}

// DebugInfo carries per-request diagnostics in both success and failure
// results.
type DebugInfo struct {
	AnalysisID        string `json:"analysis_id,omitempty"`
	OCRAvailable      bool   `json:"ocr_available"`
	EngineInitialized bool   `json:"ocr_engine_initialized"`
	TextElementsFound int    `json:"text_elements_found"`
	ImageShape        []int  `json:"image_shape,omitempty"`
	Message           string `json:"message,omitempty"`
}

// Analysis is the terminal artifact of one pipeline invocation.
type Analysis struct {
	Success          bool              `json:"success"`
	Error            string            `json:"error,omitempty"`
	PropertyInfo     *PropertyInfo     `json:"property_info,omitempty"`
	Floors           []Floor           `json:"floors,omitempty"`
	StorageAnalysis  *StorageAnalysis  `json:"storage_analysis,omitempty"`
	InventorySummary *InventorySummary `json:"inventory_summary,omitempty"`
	DebugInfo        DebugInfo         `json:"debug_info"`
}
