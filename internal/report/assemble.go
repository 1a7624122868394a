package report

import "fmt"

// Confidence bounds and adjustments for the verdict confidence score.
const (
	baseConfidence = 75
	minConfidence  = 40
	maxConfidence  = 95
)

// probabilistic flags are location- or behaviour-derived signals that can
// never produce a disaster verdict on their own.
var probabilistic = map[FlagID]bool{
	FlagEnvironmentalRisk: true,
	FlagUnusuallyLowPrice: true,
	FlagTooGoodForTooLong: true,
}

// IsProbabilistic reports whether id is exempt from driving a disaster verdict.
func IsProbabilistic(id FlagID) bool {
	return probabilistic[id]
}

// Premium carries the paid-tier assessments that may adjust the verdict.
type Premium struct {
	Maintenance *MaintenanceRiskAssessment
	Market      *MarketPricingAnalysis
}

// AssemblyInput is everything the verdict engine consumes.
type AssemblyInput struct {
	Flags            []RedFlag
	DataQuality      DataQualityAssessment
	PriceDiffPercent float64
	HasVIN           bool
	// TitleResolved is true when a vehicle history record confirmed the title state.
	TitleResolved bool
	Tier          Tier
	Premium       *Premium
}

// Assessment is the verdict engine's output.
type Assessment struct {
	Verdict     Verdict
	Score       int
	Confidence  int
	Summary     string
	Explanation Explanation
}

// Assemble scores the flag set and derives the verdict, confidence and explanation.
//
// The disaster cap runs last, after price and premium adjustments, so no
// adjustment can push a purely probabilistic flag set into disaster.
func Assemble(in AssemblyInput) Assessment {
	score := ComputeScore(in.Flags) + PriceAdjustment(in.PriceDiffPercent)
	if in.Tier == TierPaid && in.Premium != nil {
		score += premiumAdjustment(in.Premium)
	}
	score = clamp(score, 0, 100)

	verdict := VerdictForScore(score)
	capped := false
	if verdict == VerdictDisaster && onlyProbabilistic(in.Flags) {
		verdict = VerdictCaution
		capped = true
	}

	return Assessment{
		Verdict:    verdict,
		Score:      score,
		Confidence: confidence(in),
		Summary:    summarize(verdict, in.Flags, capped),
		Explanation: Explanation{
			StructuralRisks:     titlesIn(in.Flags, CategoryTitle, CategoryHistory, CategoryDisaster, CategoryOwnership),
			MarketRisks:         titlesIn(in.Flags, CategoryPricing),
			SellerBehaviorRisks: titlesIn(in.Flags, CategorySeller, CategoryListing),
			DataQualityImpact:   dataQualityImpact(in.DataQuality),
			Capped:              capped,
		},
	}
}

// onlyProbabilistic reports whether every score-bearing flag is in the
// probabilistic set. Zero-penalty flags such as private-sale cannot move
// the score and are ignored.
func onlyProbabilistic(flags []RedFlag) bool {
	for _, f := range flags {
		if Penalty(f.Severity) == 0 {
			continue
		}
		if !probabilistic[f.ID] {
			return false
		}
	}
	return true
}

func premiumAdjustment(p *Premium) int {
	adj := 0
	if p.Maintenance != nil {
		switch p.Maintenance.Level {
		case MaintenanceHigh:
			adj -= 10
		case MaintenanceElevated:
			adj -= 5
		}
	}
	if p.Market != nil && p.Market.Position == PositionAbove && p.Market.PercentFromMedian > 15 {
		adj -= 5
	}
	return adj
}

func confidence(in AssemblyInput) int {
	c := baseConfidence
	if !in.HasVIN {
		c -= 20
	}
	if !in.TitleResolved {
		c -= 10
	}
	if HasFlag(in.Flags, FlagEnvironmentalRisk) {
		c -= 5
	}
	if HasFlag(in.Flags, FlagUnusuallyLowPrice) || HasFlag(in.Flags, FlagTooGoodForTooLong) {
		c -= 3
	}
	return clamp(c, minConfidence, maxConfidence)
}

func summarize(v Verdict, flags []RedFlag, capped bool) string {
	critical, high, medium, _ := CountBySeverity(flags)
	switch v {
	case VerdictDeal:
		if high+medium == 0 {
			return "No significant red flags found. This listing looks like a fair deal."
		}
		return fmt.Sprintf("Looks like a reasonable deal with %d minor concern(s) worth checking.", high+medium)
	case VerdictCaution:
		if capped {
			return "Risk signals are elevated but based on location or pricing patterns alone. Verify before buying."
		}
		return fmt.Sprintf("Proceed with caution: %d critical, %d high and %d medium red flag(s) need answers before buying.", critical, high, medium)
	default:
		return fmt.Sprintf("Walk away unless these are resolved: %d critical and %d high severity red flag(s).", critical, high)
	}
}

func titlesIn(flags []RedFlag, cats ...Category) []string {
	want := make(map[Category]bool, len(cats))
	for _, c := range cats {
		want[c] = true
	}
	out := []string{}
	for _, f := range flags {
		if f.Severity == SeverityLow || !want[f.Category] {
			continue
		}
		out = append(out, f.Title)
	}
	return out
}

func dataQualityImpact(dq DataQualityAssessment) string {
	switch dq.OverallConfidence {
	case ConfidenceHigh:
		return "Data coverage is strong. The verdict rests on verified records."
	case ConfidenceMedium:
		return "Some inputs could not be verified. Treat the verdict as provisional until the gaps are closed."
	case ConfidenceLow:
		return "Most inputs could not be verified. The verdict is a best estimate from limited data."
	default:
		return ""
	}
}
