// Package analyze runs the full verdict pipeline for one listing: validate,
// gather signals, derive pricing risk and red flags, score data quality,
// assemble the verdict and project it onto the requested tier.
package analyze

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/carverdict/internal/listing"
	"github.com/dshills/carverdict/internal/premium"
	"github.com/dshills/carverdict/internal/pricing"
	"github.com/dshills/carverdict/internal/profile"
	"github.com/dshills/carverdict/internal/quality"
	"github.com/dshills/carverdict/internal/redact"
	"github.com/dshills/carverdict/internal/redflag"
	"github.com/dshills/carverdict/internal/report"
	"github.com/dshills/carverdict/internal/signals"
	"github.com/dshills/carverdict/internal/tier"
	"github.com/dshills/carverdict/internal/vehicle"
)

// ToolName is recorded in every result's metadata.
const ToolName = "carverdict"

// Analyzer holds the collaborators and thresholds for a run. It is safe for
// concurrent use once built.
type Analyzer struct {
	Gatherer *signals.Gatherer
	Profile  *profile.Profile
	Logger   zerolog.Logger
	Version  string
	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// New returns an Analyzer over the given sources.
func New(src signals.Sources, p *profile.Profile, timeouts signals.Timeouts, logger zerolog.Logger) *Analyzer {
	if p == nil {
		d := profile.Default()
		p = &d
	}
	return &Analyzer{
		Gatherer: &signals.Gatherer{Sources: src, Timeouts: timeouts, Logger: logger},
		Profile:  p,
		Logger:   logger,
		Version:  "dev",
	}
}

// Analyze produces the tier-projected result for req. It fails only on
// input errors: an invalid request or a VIN the history source rejects.
// Collaborator failures degrade the result instead.
func (a *Analyzer) Analyze(ctx context.Context, req listing.Request) (*report.Result, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	now := a.now()

	v := report.VehicleInfo{
		VIN:         req.VIN,
		Year:        req.Year,
		Make:        req.Make,
		Model:       req.Model,
		Trim:        req.Trim,
		Mileage:     req.Mileage,
		AskingPrice: req.AskingPrice,
		Location:    req.Location,
		PriceClass:  a.Profile.Classes.Classify(req.Make),
	}
	if v.Year == 0 && v.VIN != "" {
		v.Year = vehicle.ModelYear(v.VIN)
	}

	logger := a.Logger.With().Str("vin", redact.VIN(v.VIN)).Str("tier", string(req.Tier)).Logger()

	bundle, err := a.Gatherer.Gather(ctx, signals.Query{
		VIN:         v.VIN,
		Year:        v.Year,
		Make:        v.Make,
		Model:       v.Model,
		Trim:        v.Trim,
		Mileage:     v.Mileage,
		Location:    v.Location,
		AskingPrice: v.AskingPrice,
		Tier:        req.Tier,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	logger.Debug().Int("attempted", bundle.Attempted()).Int("succeeded", bundle.Succeeded()).Msg("signals gathered")

	var median *float64
	if md, ok := bundle.Market.Get(); ok {
		median = md.Estimates.Median
		v.EstimatedValue = md.Estimates.Average
		if v.EstimatedValue <= 0 && median != nil {
			v.EstimatedValue = *median
		}
	}
	if v.EstimatedValue > 0 {
		v.PriceDifference = v.AskingPrice - v.EstimatedValue
		v.PriceDiffPercent = round1(v.PriceDifference / v.EstimatedValue * 100)
	}

	daysListed := req.DaysListed
	if s, ok := bundle.Seller.Get(); ok && daysListed == 0 {
		daysListed = s.ListingBehavior.DaysListed
	}
	risk := pricing.Assess(pricing.Input{
		AskingPrice:    v.AskingPrice,
		EstimatedValue: v.EstimatedValue,
		MarketMedian:   median,
		DaysListed:     daysListed,
		Class:          v.PriceClass,
	}, a.Profile.PricingConfig())
	if bundle.Seller.OK() {
		bundle.Seller.Value.PricingRisk = risk
	}

	flags := redflag.Generate(redflag.Input{
		Tier:        req.Tier,
		Vehicle:     v,
		History:     bundle.History,
		Disaster:    bundle.Disaster,
		Seller:      bundle.Seller,
		Recalls:     bundle.Recalls,
		PricingRisk: risk,
		Rules:       a.Profile.Rules,
		Now:         now,
	})

	dq := quality.Assess(quality.Input{
		Tier:     req.Tier,
		VIN:      v.VIN,
		Mileage:  v.Mileage,
		Location: v.Location,
		Signals:  bundle,
	})

	result := report.Result{
		ID:             a.newID(),
		Tier:           req.Tier,
		RedFlags:       flags,
		QuestionsToAsk: premium.Questions(flags),
		VehicleInfo:    v,
		DataQuality:    dq,
		Meta: report.Meta{
			Tool:        ToolName,
			Version:     a.Version,
			Profile:     a.Profile.Name,
			InputHash:   listing.Hash(req),
			GeneratedAt: now,
		},
	}
	result.KnownData, result.UnknownData = dataInventory(v, bundle)
	if rs, ok := bundle.Recalls.Get(); ok && len(rs) > 0 {
		result.Recalls = rs
	}

	var prem *report.Premium
	if req.Tier == report.TierPaid {
		prem = a.premium(&result, bundle, now)
	}

	as := report.Assemble(report.AssemblyInput{
		Flags:            flags,
		DataQuality:      dq,
		PriceDiffPercent: v.PriceDiffPercent,
		HasVIN:           v.VIN != "",
		TitleResolved:    bundle.History.OK(),
		Tier:             req.Tier,
		Premium:          prem,
	})
	result.Verdict = as.Verdict
	result.Score = as.Score
	result.ConfidenceScore = as.Confidence
	result.Summary = as.Summary
	result.Explanation = as.Explanation

	logger.Info().
		Str("verdict", string(result.Verdict)).
		Int("score", result.Score).
		Int("flags", len(flags)).
		Bool("capped", as.Explanation.Capped).
		Msg("analysis complete")

	out := tier.Project(result, req.Tier)
	return &out, nil
}

// premium fills the paid-tier sections of r and returns the parts that feed
// back into the verdict score.
func (a *Analyzer) premium(r *report.Result, b signals.Bundle, now time.Time) *report.Premium {
	recalls, _ := b.Recalls.Get()
	r.MaintenanceRiskAssessment = premium.MaintenanceRisk(r.VehicleInfo, recalls, now)
	if md, ok := b.Market.Get(); ok {
		r.MarketPricingAnalysis = premium.MarketPosition(r.VehicleInfo, md)
		r.ComparableListings = premium.Comparables(md, r.VehicleInfo.Mileage, a.Profile.Comparables)
	}
	if s, ok := b.Seller.Get(); ok {
		r.SellerAnalysis = premium.SellerAnalysis(s)
	}
	if h, ok := b.History.Get(); ok {
		r.CarfaxSummary = premium.HistorySummary(h)
	}
	r.TailoredQuestions = premium.TailoredQuestions(r.RedFlags)
	return &report.Premium{
		Maintenance: r.MaintenanceRiskAssessment,
		Market:      r.MarketPricingAnalysis,
	}
}

// dataInventory lists what the verdict could and could not draw on.
func dataInventory(v report.VehicleInfo, b signals.Bundle) (known, unknown []string) {
	known = []string{fmt.Sprintf("Asking price $%.0f", v.AskingPrice)}
	unknown = []string{}
	add := func(ok bool, have, missing string) {
		if ok {
			known = append(known, have)
		} else {
			unknown = append(unknown, missing)
		}
	}
	add(v.VIN != "", "VIN", "VIN")
	add(v.Year > 0 && v.Make != "" && v.Model != "", "Year, make and model", "Exact year, make and model")
	add(v.Mileage > 0, fmt.Sprintf("Listed mileage %d", v.Mileage), "Mileage")
	add(b.History.OK(), "Title and history record", "Title status and history")
	add(b.Market.OK(), "Market valuation", "Market value")
	add(b.Disaster.OK(), "Disaster and flood exposure", "Disaster and flood exposure")
	add(b.Recalls.OK(), "Recall status", "Recall status")
	add(b.Seller.OK(), "Seller activity", "Seller activity")
	return known, unknown
}

func (a *Analyzer) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

func (a *Analyzer) newID() string {
	if a.NewID != nil {
		return a.NewID()
	}
	return uuid.NewString()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
