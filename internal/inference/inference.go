// Package inference provides the remote model client used to detect grains.
package inference

import (
	"context"

	"github.com/riceguard/backend/internal/models"
)

// Engine runs grain detection on an image. Implementations receive the raw
// (already resized) image bytes plus the decoded width and height, which are
// used to clamp bounding boxes.
type Engine interface {
	// Infer returns the detections found in the image.
	Infer(ctx context.Context, imageData []byte, width, height int) ([]models.Detection, error)

	// Ready reports whether the engine is fully configured. The error carries
	// a user-facing reason when it is not.
	Ready() error
}
