package floorplan

import "errors"

var (
	// ErrNoTextDetected means every recognition method returned zero
	// elements, so no analysis is possible for this image.
	ErrNoTextDetected = errors.New("no text detected in floor plan")

	// ErrEngineUnavailable means the recognition engine failed to
	// initialize or is not configured.
	ErrEngineUnavailable = errors.New("recognition engine unavailable")
)
