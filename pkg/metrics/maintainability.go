package metrics

import "math"

// Maintainability formula constants. The formula is a simplified proxy for
// the classical Halstead-based maintainability index; downstream consumers
// depend on these exact constants, so they must not be tuned.
const (
	miBase          = 171.0
	miVolumeWeight  = 5.2
	miComplexWeight = 0.23
	miLinesWeight   = 16.2
	miCommentWeight = 50.0
	miVolumePerLine = 4.0
)

// MaintainabilityIndex combines line count, cyclomatic complexity, and
// comment density into a score clamped to [0, 100], rounded to two decimal
// places. Zero lines yields exactly 100.0 without touching the logarithms.
func MaintainabilityIndex(lines int, complexity float64, commentLines int) float64 {
	if lines == 0 {
		return 100.0
	}

	volume := float64(lines) * miVolumePerLine
	commentRatio := float64(commentLines) / float64(lines)

	mi := miBase -
		miVolumeWeight*math.Log(math.Max(1, volume)) -
		miComplexWeight*complexity -
		miLinesWeight*math.Log(math.Max(1, float64(lines))) +
		miCommentWeight*commentRatio

	mi = math.Max(0, math.Min(100, mi))

	return math.Round(mi*100) / 100
}
