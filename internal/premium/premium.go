// Package premium builds the paid-tier detail sections. Each generator
// returns nil when its inputs are insufficient; that is a degraded result,
// not an error.
package premium

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dshills/carverdict/internal/band"
	"github.com/dshills/carverdict/internal/redact"
	"github.com/dshills/carverdict/internal/report"
	"github.com/dshills/carverdict/internal/signals"
	"github.com/dshills/carverdict/internal/vehicle"
)

var maintenanceLevels = []band.Band[string]{
	{AtLeast: 70, Value: report.MaintenanceHigh},
	{AtLeast: 45, Value: report.MaintenanceElevated},
	{AtLeast: 25, Value: report.MaintenanceModerate},
}

var agePoints = []band.Band[int]{
	{AtLeast: 15, Value: 35},
	{AtLeast: 10, Value: 25},
	{AtLeast: 6, Value: 15},
	{AtLeast: 3, Value: 5},
}

var mileagePoints = []band.Band[int]{
	{AtLeast: 150000, Value: 35},
	{AtLeast: 100000, Value: 25},
	{AtLeast: 60000, Value: 10},
}

var baseAnnualCost = map[report.PriceClass]int{
	report.ClassCommon: 900,
	report.ClassLuxury: 1800,
	report.ClassExotic: 4500,
}

// MaintenanceRisk estimates ownership cost risk from age, mileage, price
// class and open recalls. It needs a model year.
func MaintenanceRisk(v report.VehicleInfo, recalls []report.Recall, now time.Time) *report.MaintenanceRiskAssessment {
	if v.Year <= 0 {
		return nil
	}
	age := vehicle.Age(v.Year, now)
	score := band.Pick(float64(age), agePoints, 0)
	factors := []string{fmt.Sprintf("%d years old", age)}

	if v.Mileage > 0 {
		score += band.Pick(float64(v.Mileage), mileagePoints, 0)
		factors = append(factors, fmt.Sprintf("%d miles", v.Mileage))
	}
	switch v.PriceClass {
	case report.ClassLuxury:
		score += 10
		factors = append(factors, "luxury parts and labour rates")
	case report.ClassExotic:
		score += 20
		factors = append(factors, "exotic specialist servicing")
	}
	if n := len(recalls); n > 0 {
		score += 5 * min(n, 4)
		factors = append(factors, fmt.Sprintf("%d open recall(s)", n))
	}
	if score > 100 {
		score = 100
	}

	class := v.PriceClass
	if class == "" {
		class = report.ClassCommon
	}
	cost := float64(baseAnnualCost[class]) * (1 + float64(score)/100)

	return &report.MaintenanceRiskAssessment{
		Level:               band.Pick(float64(score), maintenanceLevels, report.MaintenanceLow),
		Score:               score,
		Factors:             factors,
		EstimatedAnnualCost: int(math.Round(cost/50) * 50),
	}
}

// atMarketBand is the percent either side of the median treated as at-market.
const atMarketBand = 5.0

// MarketPosition places the asking price among live listings. It needs at
// least one priced listing.
func MarketPosition(v report.VehicleInfo, md signals.MarketData) *report.MarketPricingAnalysis {
	var prices []float64
	for _, l := range md.RawListings {
		if l.Price > 0 {
			prices = append(prices, l.Price)
		}
	}
	if len(prices) == 0 || v.AskingPrice <= 0 {
		return nil
	}
	sort.Float64s(prices)
	med := median(prices)
	pct := math.Round((v.AskingPrice-med)/med*1000) / 10

	pos := report.PositionAt
	switch {
	case pct > atMarketBand:
		pos = report.PositionAbove
	case pct < -atMarketBand:
		pos = report.PositionBelow
	}

	return &report.MarketPricingAnalysis{
		Position:          pos,
		MarketMedian:      med,
		MarketLow:         prices[0],
		MarketHigh:        prices[len(prices)-1],
		PercentFromMedian: pct,
		SampleSize:        len(prices),
		Summary:           positionSummary(pos, pct, len(prices)),
	}
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func positionSummary(pos string, pct float64, n int) string {
	switch pos {
	case report.PositionAbove:
		return fmt.Sprintf("Asking price is %.1f%% above the median of %d comparable listings.", pct, n)
	case report.PositionBelow:
		return fmt.Sprintf("Asking price is %.1f%% below the median of %d comparable listings.", -pct, n)
	default:
		return fmt.Sprintf("Asking price is in line with %d comparable listings.", n)
	}
}

// SellerAnalysis summarises seller behaviour with a risk level.
func SellerAnalysis(s signals.SellerSignals) *report.SellerAnalysis {
	lb, pb, pc := s.ListingBehavior, s.PricingBehavior, s.ProfileConsistency
	var sig []string
	if lb.RelistCount > 0 {
		sig = append(sig, fmt.Sprintf("relisted %d time(s)", lb.RelistCount))
	}
	if lb.IsStale {
		sig = append(sig, "listing is stale")
	}
	if pb.PriceChanges > 0 {
		sig = append(sig, fmt.Sprintf("%d price change(s)", pb.PriceChanges))
	}
	if pb.LowPriceLongListing {
		sig = append(sig, "low price has not sold")
	}
	if pc.HiddenDealer {
		sig = append(sig, "seller appears to be a dealer")
	}
	if s.PricingRisk.LongListing != nil {
		sig = append(sig, fmt.Sprintf("%d days past the expected selling window", s.PricingRisk.LongListing.DaysOverThreshold))
	}

	risk := "low"
	switch {
	case pc.HiddenDealer || len(sig) >= 3:
		risk = "high"
	case len(sig) > 0:
		risk = "moderate"
	}

	if sig == nil {
		sig = []string{}
	}
	return &report.SellerAnalysis{
		RiskLevel:         risk,
		DaysListed:        lb.DaysListed,
		RelistCount:       lb.RelistCount,
		PriceChanges:      pb.PriceChanges,
		VolatilityPercent: pb.VolatilityPercent,
		Signals:           sig,
	}
}

// HistorySummary condenses a history record.
func HistorySummary(h signals.VehicleHistory) *report.HistorySummary {
	hs := &report.HistorySummary{
		OwnerCount:       h.OwnerCount,
		TitleBrands:      append([]string{}, h.TitleBrands...),
		SalvageRecord:    h.SalvageRecord,
		TheftRecords:     h.TheftRecords,
		AccidentCount:    h.AccidentCount,
		OdometerReadings: len(h.Odometer),
	}
	var last signals.OdometerReading
	for _, r := range h.Odometer {
		if r.Date.After(last.Date) {
			last = r
		}
	}
	if !last.Date.IsZero() {
		hs.LastReportedMileage = last.Mileage
		hs.LastReportedAt = last.Date.Format("2006-01-02")
	}
	return hs
}

// Comparables returns up to limit listings, nearest mileage first, with
// seller contact details stripped from the free text.
func Comparables(md signals.MarketData, mileage, limit int) []report.ComparableListing {
	if len(md.RawListings) == 0 || limit <= 0 {
		return nil
	}
	ls := append([]signals.Listing{}, md.RawListings...)
	sort.SliceStable(ls, func(i, j int) bool {
		return abs(ls[i].Mileage-mileage) < abs(ls[j].Mileage-mileage)
	})
	if len(ls) > limit {
		ls = ls[:limit]
	}
	out := make([]report.ComparableListing, 0, len(ls))
	for _, l := range ls {
		out = append(out, report.ComparableListing{
			Title:      redact.Redact(l.Title),
			Price:      l.Price,
			Mileage:    l.Mileage,
			Location:   redact.Redact(l.Location),
			DaysListed: l.DaysListed,
			Source:     l.Source,
		})
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
