package review

// Score bands drive the badge shown next to a score in listings and
// reports. Thresholds assume the default 0-5 judge scale.
const (
	BandGood  = "good"
	BandMixed = "mixed"
	BandPoor  = "poor"
)

// Bands defines the good and mixed score boundaries.
type Bands struct {
	Good  float64
	Mixed float64
}

// DefaultBands are the standard badge thresholds.
var DefaultBands = Bands{Good: 4.0, Mixed: 2.5}

// BandFor maps a score to a badge band using default thresholds.
// score >= 4.0 → good
// score >= 2.5 → mixed
// score <  2.5 → poor
func BandFor(score float64) string {
	return BandForWithThresholds(score, DefaultBands)
}

// BandForWithThresholds maps a score to a badge band using provided thresholds.
func BandForWithThresholds(score float64, b Bands) string {
	switch {
	case score >= b.Good:
		return BandGood
	case score >= b.Mixed:
		return BandMixed
	default:
		return BandPoor
	}
}

// EffectiveScore returns the score a listing should display: the human
// override when present, otherwise the judge's primary dimension value.
func EffectiveScore(judgeValue float64, humanScore *float64) float64 {
	if humanScore != nil {
		return *humanScore
	}
	return judgeValue
}
