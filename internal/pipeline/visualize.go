package pipeline

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/MeKo-Tech/floorscan/internal/floorplan"
	"github.com/MeKo-Tech/floorscan/internal/utils"
)

// typeHues spreads room types around the hue wheel so neighboring rooms
// of different types stay distinguishable in the overlay.
var typeHues = map[string]float64{
	floorplan.TypeBedroom:    210,
	floorplan.TypeLivingRoom: 120,
	floorplan.TypeDiningRoom: 90,
	floorplan.TypeKitchen:    30,
	floorplan.TypeBathroom:   180,
	floorplan.TypeLaundry:    270,
	floorplan.TypeGarage:     0,
	floorplan.TypeStorage:    45,
	floorplan.TypeOffice:     300,
	floorplan.TypeEntry:      150,
	floorplan.TypeHallway:    60,
	floorplan.TypeBalcony:    330,
	floorplan.TypeCloset:     240,
}

// TypeColor returns the overlay color for a room type. Unknown and
// unclassified types get a neutral gray.
func TypeColor(roomType string) color.Color {
	h, ok := typeHues[roomType]
	if !ok {
		return color.RGBA{R: 128, G: 128, B: 128, A: 255}
	}
	return colorful.Hsv(h, 0.85, 0.9)
}

// RenderOverlay draws room boxes colored by type, room name labels, and
// floor markers over an RGBA copy of the analyzed image. Box coordinates
// are in the processed image's space, so img must be the same image the
// analysis ran on (after size normalization).
func RenderOverlay(img image.Image, analysis *floorplan.Analysis) *image.RGBA {
	if img == nil {
		return nil
	}
	dst := utils.CloneRGBA(img)
	if analysis == nil || !analysis.Success {
		return dst
	}

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black := color.RGBA{A: 255}
	for _, floor := range analysis.Floors {
		utils.DrawLabel(dst, floor.Name, 4, int(floor.AnchorY)+12, white, black)
		for _, room := range floor.Rooms {
			col := TypeColor(room.Type)
			rect := room.Box.ToRect(dst.Bounds())
			utils.DrawRect(dst, rect, col, 2)
			utils.DrawLabel(dst, room.Name, rect.Min.X+4, rect.Min.Y+14, white, col)
		}
	}
	return dst
}

// SaveOverlay renders the overlay and writes it to path; the format
// follows the file extension.
func SaveOverlay(img image.Image, analysis *floorplan.Analysis, path string) error {
	dst := RenderOverlay(img, analysis)
	if dst == nil {
		return nil
	}
	return imaging.Save(dst, path)
}
