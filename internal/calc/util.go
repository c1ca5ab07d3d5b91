package calc

import (
	"math"
	"strconv"
	"strings"
)

// parseNumber coerces a text cell to a float. Empty cells, thousands
// separators and outright garbage all degrade to 0 rather than erroring; the
// normalization stage is the only place allowed to see dirty values.
func parseNumber(v string) float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	v = strings.ReplaceAll(v, ",", "")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ceilToMultiple rounds v up to the nearest positive multiple of step.
// A non-positive step or a non-finite result yields 0.
func ceilToMultiple(v, step float64) int {
	if step <= 0 {
		return 0
	}
	r := math.Ceil(v/step) * step
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return 0
	}
	return int(math.Round(r))
}

// floorToMultiple rounds v down to the nearest multiple of step, used when
// snapping a capped quantity back under the cap.
func floorToMultiple(v, step float64) int {
	if step <= 0 {
		return int(math.Round(v))
	}
	return int(math.Floor(v/step) * step)
}
