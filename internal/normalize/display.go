package normalize

import (
	"math"

	"github.com/spacesedan/sentilens/internal/models"
)

// Display is what a renderer needs for one result. Percent and BarWidth are
// always the same clamped value.
type Display struct {
	Sentiment string
	Percent   int
	BarWidth  int
}

// Percent converts a score to a whole percentage, rounding halves up.
func Percent(score float64) int {
	// explicit conversion keeps the product from being fused with the add
	p := math.Floor(float64(score*100) + 0.5)
	switch {
	case math.IsNaN(p):
		return 0
	case p > math.MaxInt32:
		return math.MaxInt32
	case p < math.MinInt32:
		return math.MinInt32
	}
	return int(p)
}

func Clamp(percent int) int {
	return min(max(percent, 0), 100)
}

func ToDisplay(result models.AnalysisResult) Display {
	p := Clamp(Percent(result.Score))
	return Display{
		Sentiment: result.Sentiment,
		Percent:   p,
		BarWidth:  p,
	}
}
