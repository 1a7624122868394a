// Package quality scores how complete the inputs behind a verdict are. It
// says nothing about what the inputs mean, only how much of them exists.
package quality

import (
	"fmt"
	"math"
	"strings"

	"github.com/dshills/carverdict/internal/report"
	"github.com/dshills/carverdict/internal/signals"
)

// Factor ids.
const (
	FactorVIN             = "vin"
	FactorMarketData      = "market-data"
	FactorSellerSignals   = "seller-signals"
	FactorLocation        = "location"
	FactorExternalSources = "external-sources"
	FactorMileage         = "mileage"
)

// Level thresholds and the override ceiling.
const (
	HighThreshold   = 75
	MediumThreshold = 50
	MissingHighCap  = 70
)

// minListings is the number of comparable listings for complete market data.
const minListings = 3

// Input is the request plus the gathered collaborator outcomes.
type Input struct {
	Tier     report.Tier
	VIN      string
	Mileage  int
	Location string
	Signals  signals.Bundle
}

// Weight returns the factor weight for an impact.
func Weight(i report.Impact) int {
	switch i {
	case report.ImpactHigh:
		return 3
	case report.ImpactMedium:
		return 2
	default:
		return 1
	}
}

// StatusScore returns the 0-100 score for a status.
func StatusScore(s report.QualityStatus) int {
	switch s {
	case report.StatusComplete:
		return 100
	case report.StatusPartial:
		return 50
	case report.StatusUnavailable:
		return 25
	default:
		return 0
	}
}

// Assess evaluates the six factors and aggregates them.
func Assess(in Input) report.DataQualityAssessment {
	factors := []report.DataQualityFactor{
		vinFactor(in),
		marketFactor(in),
		sellerFactor(in),
		locationFactor(in),
		sourcesFactor(in),
		mileageFactor(in),
	}
	score, level := Score(factors)
	return report.DataQualityAssessment{
		OverallConfidence: level,
		ConfidenceScore:   score,
		Factors:           factors,
		Summary:           summary(level, factors),
		Recommendations:   recommendations(factors),
	}
}

// Score computes the weighted mean and level. A missing high-impact factor
// caps the level at medium and the score at MissingHighCap.
func Score(factors []report.DataQualityFactor) (int, report.ConfidenceLevel) {
	total, weights := 0, 0
	missingHigh := false
	for _, f := range factors {
		w := Weight(f.Impact)
		total += w * StatusScore(f.Status)
		weights += w
		if f.Impact == report.ImpactHigh && f.Status == report.StatusMissing {
			missingHigh = true
		}
	}
	if weights == 0 {
		return 0, report.ConfidenceLow
	}
	score := int(math.Round(float64(total) / float64(weights)))
	if missingHigh && score > MissingHighCap {
		score = MissingHighCap
	}

	level := report.ConfidenceLow
	switch {
	case score >= HighThreshold:
		level = report.ConfidenceHigh
	case score >= MediumThreshold:
		level = report.ConfidenceMedium
	}
	if missingHigh && level == report.ConfidenceHigh {
		level = report.ConfidenceMedium
	}
	return score, level
}

func vinFactor(in Input) report.DataQualityFactor {
	f := report.DataQualityFactor{ID: FactorVIN, Name: "VIN", Impact: report.ImpactHigh}
	switch {
	case in.VIN == "":
		f.Status = report.StatusMissing
		f.Explanation = "No VIN was supplied, so title and history could not be checked."
	case in.Signals.History.OK():
		f.Status = report.StatusComplete
		f.Explanation = "VIN supplied and matched to a history record."
	default:
		f.Status = report.StatusPartial
		f.Explanation = "VIN supplied but no history record could be retrieved."
	}
	return f
}

func marketFactor(in Input) report.DataQualityFactor {
	f := report.DataQualityFactor{ID: FactorMarketData, Name: "Market data", Impact: report.ImpactHigh}
	o := in.Signals.Market
	if !o.Asked() {
		f.Status = report.StatusMissing
		f.Explanation = "Year, make and model are needed to look up market value."
		return f
	}
	md, ok := o.Get()
	if !ok {
		f.Status = report.StatusUnavailable
		f.Explanation = "Market data could not be retrieved: " + o.Reason
		return f
	}

	sources := 0
	if md.Estimates.Average > 0 || md.Estimates.Median != nil {
		sources++
	}
	if len(md.RawListings) >= minListings {
		sources++
	}
	want := 1
	if in.Tier == report.TierPaid {
		want = 2
	}
	switch {
	case sources >= want:
		f.Status = report.StatusComplete
		f.Explanation = fmt.Sprintf("Valuation from %d market source(s).", sources)
	case sources > 0:
		f.Status = report.StatusPartial
		f.Explanation = fmt.Sprintf("Only %d of %d market sources returned data.", sources, want)
	default:
		f.Status = report.StatusUnavailable
		f.Explanation = "Market data was returned but held no usable estimate."
	}
	return f
}

// sellerFactor weighs seller signals by tier: free results never show
// seller flags, so their absence matters less.
func sellerFactor(in Input) report.DataQualityFactor {
	f := report.DataQualityFactor{ID: FactorSellerSignals, Name: "Seller signals", Impact: report.ImpactMedium}
	if in.Tier != report.TierPaid {
		f.Impact = report.ImpactLow
	}
	o := in.Signals.Seller
	switch {
	case !o.Asked():
		f.Status = report.StatusMissing
		f.Explanation = "Seller behaviour was not checked."
	case o.OK():
		f.Status = report.StatusComplete
		f.Explanation = "Listing and pricing behaviour retrieved."
	default:
		f.Status = report.StatusUnavailable
		f.Explanation = "Seller behaviour could not be retrieved: " + o.Reason
	}
	return f
}

func locationFactor(in Input) report.DataQualityFactor {
	f := report.DataQualityFactor{ID: FactorLocation, Name: "Location", Impact: report.ImpactMedium}
	o := in.Signals.Disaster
	switch {
	case in.Location == "" || !o.Asked():
		f.Status = report.StatusMissing
		f.Explanation = "No location supplied, so disaster and flood exposure is unknown."
	case o.OK():
		f.Status = report.StatusComplete
		f.Explanation = "Disaster and flood exposure checked for the listing location."
	default:
		f.Status = report.StatusUnavailable
		f.Explanation = "Location supplied but environmental data could not be retrieved."
	}
	return f
}

func sourcesFactor(in Input) report.DataQualityFactor {
	f := report.DataQualityFactor{ID: FactorExternalSources, Name: "External sources", Impact: report.ImpactMedium}
	attempted, succeeded := in.Signals.Attempted(), in.Signals.Succeeded()
	switch {
	case attempted == 0:
		f.Status = report.StatusMissing
		f.Explanation = "No external data sources were queried."
	case succeeded == attempted:
		f.Status = report.StatusComplete
		f.Explanation = fmt.Sprintf("All %d queried sources responded.", attempted)
	case succeeded*2 >= attempted:
		f.Status = report.StatusPartial
		f.Explanation = fmt.Sprintf("%d of %d queried sources responded.", succeeded, attempted)
	default:
		f.Status = report.StatusUnavailable
		f.Explanation = fmt.Sprintf("Only %d of %d queried sources responded.", succeeded, attempted)
	}
	return f
}

func mileageFactor(in Input) report.DataQualityFactor {
	f := report.DataQualityFactor{ID: FactorMileage, Name: "Mileage", Impact: report.ImpactLow}
	readings := 0
	if h, ok := in.Signals.History.Get(); ok {
		readings = len(h.Odometer)
	}
	switch {
	case in.Mileage > 0 && readings > 0:
		f.Status = report.StatusComplete
		f.Explanation = fmt.Sprintf("Listed mileage corroborated by %d odometer reading(s).", readings)
	case in.Mileage > 0:
		f.Status = report.StatusPartial
		f.Explanation = "Listed mileage could not be corroborated by odometer records."
	case readings > 0:
		f.Status = report.StatusPartial
		f.Explanation = "No listed mileage; odometer records are available."
	default:
		f.Status = report.StatusMissing
		f.Explanation = "Mileage is unknown."
	}
	return f
}

func summary(level report.ConfidenceLevel, factors []report.DataQualityFactor) string {
	complete := 0
	for _, f := range factors {
		if f.Status == report.StatusComplete {
			complete++
		}
	}
	return fmt.Sprintf("%s confidence: %d of %d data factors complete.", capitalize(string(level)), complete, len(factors))
}

func recommendations(factors []report.DataQualityFactor) []string {
	out := []string{}
	for _, f := range factors {
		if f.Status == report.StatusComplete {
			continue
		}
		switch f.ID {
		case FactorVIN:
			out = append(out, "Get the VIN from the seller and run a history check.")
		case FactorMarketData:
			out = append(out, "Compare the price against local listings for the same year, make and model.")
		case FactorSellerSignals:
			out = append(out, "Search for other listings from the same seller.")
		case FactorLocation:
			out = append(out, "Confirm where the vehicle has been registered and garaged.")
		case FactorExternalSources:
			out = append(out, "Run the analysis again later; some data sources did not respond.")
		case FactorMileage:
			out = append(out, "Photograph the odometer and compare it with service records.")
		}
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
