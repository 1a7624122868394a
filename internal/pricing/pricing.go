// Package pricing derives the probabilistic pricing-risk signals from the
// asking price, market anchors and listing duration. Every function here is
// pure and deterministic.
package pricing

import (
	"math"

	"github.com/dshills/carverdict/internal/band"
	"github.com/dshills/carverdict/internal/report"
)

// Thresholds configures UnusuallyLowPrice. Percentages are negative.
type Thresholds struct {
	BelowMarketPercent    float64 `yaml:"below_market_percent"`
	HighConfidencePercent float64 `yaml:"high_confidence_percent"`
}

// DefaultThresholds returns -15% detection and -25% high confidence.
func DefaultThresholds() Thresholds {
	return Thresholds{BelowMarketPercent: -15, HighConfidencePercent: -25}
}

// DurationThresholds holds the days-listed limit per price class.
type DurationThresholds struct {
	Common int `yaml:"common"`
	Luxury int `yaml:"luxury"`
	Exotic int `yaml:"exotic"`
}

// DefaultDurationThresholds returns 21, 30 and 45 days.
func DefaultDurationThresholds() DurationThresholds {
	return DurationThresholds{Common: 21, Luxury: 30, Exotic: 45}
}

// For returns the threshold for a class, falling back to Common.
func (d DurationThresholds) For(class report.PriceClass) int {
	switch class {
	case report.ClassLuxury:
		return d.Luxury
	case report.ClassExotic:
		return d.Exotic
	default:
		return d.Common
	}
}

// LowPriceSignal is the UnusuallyLowPrice result.
type LowPriceSignal struct {
	Detected           bool    `json:"detected"`
	BelowMarketPercent float64 `json:"belowMarketPercent"`
	Anchor             float64 `json:"anchor"`
	UsedMarketMedian   bool    `json:"usedMarketMedian"`
	Confidence         int     `json:"confidence"`
}

// LongListingSignal is the TooGoodForTooLong result.
type LongListingSignal struct {
	Detected          bool `json:"detected"`
	DaysListed        int  `json:"daysListed"`
	ThresholdDays     int  `json:"thresholdDays"`
	DaysOverThreshold int  `json:"daysOverThreshold"`
	Confidence        int  `json:"confidence"`
}

const (
	lowPriceBaseConfidence    = 50
	lowPriceHighConfidence    = 85
	marketMedianBonus         = 10
	lowPriceConfidenceCeiling = 95
)

var longListingConfidence = []band.Band[int]{
	{AtLeast: 30, Value: 85},
	{AtLeast: 14, Value: 70},
}

// UnusuallyLowPrice compares the asking price against the market median when
// one is supplied, otherwise against the estimated value.
func UnusuallyLowPrice(askingPrice, estimatedValue float64, marketMedian *float64, th Thresholds) LowPriceSignal {
	anchor := estimatedValue
	usedMedian := false
	if marketMedian != nil {
		anchor = *marketMedian
		usedMedian = true
	}
	if anchor <= 0 {
		return LowPriceSignal{}
	}

	pct := round1((askingPrice - anchor) / anchor * 100)
	if pct >= th.BelowMarketPercent {
		return LowPriceSignal{BelowMarketPercent: pct, Anchor: anchor, UsedMarketMedian: usedMedian}
	}

	conf := lowPriceBaseConfidence
	if pct <= th.HighConfidencePercent {
		conf = lowPriceHighConfidence
	}
	if usedMedian {
		conf += marketMedianBonus
	}
	if conf > lowPriceConfidenceCeiling {
		conf = lowPriceConfidenceCeiling
	}

	return LowPriceSignal{
		Detected:           true,
		BelowMarketPercent: pct,
		Anchor:             anchor,
		UsedMarketMedian:   usedMedian,
		Confidence:         conf,
	}
}

// TooGoodForTooLong flags a low-priced listing that has sat unsold past the
// class threshold. It is never detected unless lowPriceDetected is true.
func TooGoodForTooLong(daysListed int, lowPriceDetected bool, class report.PriceClass, th DurationThresholds) LongListingSignal {
	if !lowPriceDetected {
		return LongListingSignal{}
	}
	limit := th.For(class)
	if daysListed <= limit {
		return LongListingSignal{DaysListed: daysListed, ThresholdDays: limit}
	}
	over := daysListed - limit
	return LongListingSignal{
		Detected:          true,
		DaysListed:        daysListed,
		ThresholdDays:     limit,
		DaysOverThreshold: over,
		Confidence:        band.Pick(float64(over), longListingConfidence, 60),
	}
}

// Input collects everything Assess needs.
type Input struct {
	AskingPrice    float64
	EstimatedValue float64
	MarketMedian   *float64
	DaysListed     int
	Class          report.PriceClass
}

// Config bundles both threshold sets.
type Config struct {
	Price    Thresholds
	Duration DurationThresholds
}

// Risk holds the detected signals. LongListing is only set when LowPrice is.
type Risk struct {
	LowPrice    *LowPriceSignal    `json:"unusuallyLowPrice,omitempty"`
	LongListing *LongListingSignal `json:"tooGoodForTooLong,omitempty"`
}

// Any reports whether either signal was detected.
func (r Risk) Any() bool {
	return r.LowPrice != nil || r.LongListing != nil
}

// Assess runs both analyzers and keeps only detected signals.
func Assess(in Input, cfg Config) Risk {
	var r Risk
	low := UnusuallyLowPrice(in.AskingPrice, in.EstimatedValue, in.MarketMedian, cfg.Price)
	if !low.Detected {
		return r
	}
	r.LowPrice = &low
	long := TooGoodForTooLong(in.DaysListed, low.Detected, in.Class, cfg.Duration)
	if long.Detected {
		r.LongListing = &long
	}
	return r
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
