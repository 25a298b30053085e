package vision

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/riceguard/backend/internal/models"
	"github.com/riceguard/backend/internal/profile"
)

// boxColor picks the outline color for a detection from the grading profile.
func boxColor(class models.GrainClass, prof *profile.Profile) color.RGBA {
	switch class {
	case models.ClassBrokenGrain:
		return parseHexColor(prof.BrokenColor, color.RGBA{R: 255, A: 255})
	default:
		return parseHexColor(prof.WholeColor, color.RGBA{G: 255, A: 255})
	}
}

// parseHexColor parses "#rrggbb" (leading '#' optional), returning fallback
// on malformed input.
func parseHexColor(s string, fallback color.RGBA) color.RGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fallback
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}
}
