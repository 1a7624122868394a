package report

// Flag penalties subtracted from the starting score of 100.
const (
	PenaltyCritical = 40
	PenaltyHigh     = 20
	PenaltyMedium   = 8
)

// Verdict thresholds on the 0-100 score.
const (
	DealThreshold    = 70
	CautionThreshold = 45
)

// Penalty returns the score penalty for a single flag severity. Low
// severity flags are informational and carry no penalty.
func Penalty(s Severity) int {
	switch s {
	case SeverityCritical:
		return PenaltyCritical
	case SeverityHigh:
		return PenaltyHigh
	case SeverityMedium:
		return PenaltyMedium
	default:
		return 0
	}
}

// ComputeScore starts at 100 and subtracts 40 per critical, 20 per high and
// 8 per medium flag. The result is not clamped; callers clamp after all
// adjustments are applied.
func ComputeScore(flags []RedFlag) int {
	score := 100
	for _, f := range flags {
		score -= Penalty(f.Severity)
	}
	return score
}

// PriceAdjustment returns the score adjustment for the asking price relative
// to the estimated value. It never increases as priceDiffPercent increases:
// more than 25% over costs 15, more than 15% over costs 8, any discount
// earns 5. Deep discounts are penalised through the underpriced and
// unusually-low-price flags rather than here.
func PriceAdjustment(priceDiffPercent float64) int {
	switch {
	case priceDiffPercent > 25:
		return -15
	case priceDiffPercent > 15:
		return -8
	case priceDiffPercent < 0:
		return 5
	default:
		return 0
	}
}

// VerdictForScore maps a clamped score to a verdict before any cap is applied.
func VerdictForScore(score int) Verdict {
	switch {
	case score >= DealThreshold:
		return VerdictDeal
	case score >= CautionThreshold:
		return VerdictCaution
	default:
		return VerdictDisaster
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
