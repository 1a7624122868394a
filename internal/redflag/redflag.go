// Package redflag turns pricing context and collaborator outcomes into the
// severity-sorted red flag list.
package redflag

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dshills/carverdict/internal/band"
	"github.com/dshills/carverdict/internal/pricing"
	"github.com/dshills/carverdict/internal/report"
	"github.com/dshills/carverdict/internal/signals"
	"github.com/dshills/carverdict/internal/vehicle"
)

// Rules holds the tunable thresholds for the non-pricing flags.
type Rules struct {
	AnnualMiles             int     `yaml:"annual_miles"`
	HighMileageMultiplier   float64 `yaml:"high_mileage_multiplier"`
	SevereMileageMultiplier float64 `yaml:"severe_mileage_multiplier"`
	LowMileageMultiplier    float64 `yaml:"low_mileage_multiplier"`
	LowMileageMinAge        int     `yaml:"low_mileage_min_age"`
	HighAge                 int     `yaml:"high_age"`
	RelistCount             int     `yaml:"relist_count"`
	StaleDays               int     `yaml:"stale_days"`
	PriceChanges            int     `yaml:"price_changes"`
	VolatilityPercent       float64 `yaml:"volatility_percent"`
	DealerActiveListings    int     `yaml:"dealer_active_listings"`
}

// DefaultRules returns the standard thresholds.
func DefaultRules() Rules {
	return Rules{
		AnnualMiles:             12000,
		HighMileageMultiplier:   1.5,
		SevereMileageMultiplier: 2.0,
		LowMileageMultiplier:    0.4,
		LowMileageMinAge:        3,
		HighAge:                 10,
		RelistCount:             1,
		StaleDays:               60,
		PriceChanges:            3,
		VolatilityPercent:       10,
		DealerActiveListings:    5,
	}
}

// Input is everything the generator reads.
type Input struct {
	Tier        report.Tier
	Vehicle     report.VehicleInfo
	History     signals.Outcome[signals.VehicleHistory]
	Disaster    signals.Outcome[signals.DisasterData]
	Seller      signals.Outcome[signals.SellerSignals]
	Recalls     signals.Outcome[[]report.Recall]
	PricingRisk pricing.Risk
	Rules       Rules
	Now         time.Time
}

var (
	overpricedSeverity = []band.Band[report.Severity]{
		{AtLeast: 30, Value: report.SeverityHigh},
	}
	underpricedSeverity = []band.Band[report.Severity]{
		{AtLeast: -35, Value: report.SeverityHigh},
	}
	lowPriceSeverity = []band.Band[report.Severity]{
		{AtLeast: -35, Value: report.SeverityHigh},
		{AtLeast: -25, Value: report.SeverityMedium},
	}
	longListingSeverity = []band.Band[report.Severity]{
		{AtLeast: 30, Value: report.SeverityHigh},
		{AtLeast: 14, Value: report.SeverityMedium},
	}
	accidentSeverity = []band.Band[report.Severity]{
		{AtLeast: 2, Value: report.SeverityHigh},
	}
)

// detail is the paid-tier explanation attached to a flag.
type detail struct {
	expanded string
	method   string
	source   string
}

type builder struct {
	paid  bool
	flags []report.RedFlag
}

func (b *builder) add(f report.RedFlag, d detail) {
	if b.paid {
		f.ExpandedDetails = d.expanded
		f.Methodology = d.method
		f.DataSource = d.source
	}
	b.flags = append(b.flags, f)
}

// Generate evaluates every rule and returns the flags sorted by severity.
// Flags of equal severity keep rule order, so the output never depends on
// which collaborator answered first.
func Generate(in Input) []report.RedFlag {
	b := &builder{paid: in.Tier == report.TierPaid}

	priceFlags(b, in)
	pricingRiskFlags(b, in.PricingRisk)
	if h, ok := in.History.Get(); ok {
		historyFlags(b, h)
	}
	environmentFlags(b, in.Disaster)
	if s, ok := in.Seller.Get(); ok && b.paid {
		sellerFlags(b, s, in.Rules)
	}
	if in.Vehicle.VIN == "" {
		b.add(report.RedFlag{
			ID:          report.FlagNoVIN,
			Title:       "No VIN provided",
			Description: "Without a VIN the title, theft and accident history cannot be checked.",
			Severity:    report.SeverityHigh,
			Category:    report.CategoryDataGap,
		}, detail{
			expanded: "Ask the seller for the 17-character VIN and run the analysis again before meeting.",
			method:   "VIN absent from the request.",
			source:   "Listing request",
		})
	}
	ageMileageFlags(b, in)
	b.add(report.RedFlag{
		ID:          report.FlagPrivateSale,
		Title:       "Private sale",
		Description: "Private sales carry no dealer warranty or lemon-law protection.",
		Severity:    report.SeverityLow,
		Category:    report.CategoryListing,
	}, detail{
		expanded: "Arrange a pre-purchase inspection and complete the sale at a bank or DMV office.",
		method:   "Applied to every listing.",
		source:   "Listing type",
	})
	if rs, ok := in.Recalls.Get(); ok && len(rs) > 0 {
		b.add(report.RedFlag{
			ID:          report.FlagOpenRecalls,
			Title:       fmt.Sprintf("%d open recall(s)", len(rs)),
			Description: "The manufacturer has open safety recalls for this model.",
			Severity:    report.SeverityHigh,
			Category:    report.CategoryHistory,
		}, detail{
			expanded: "Open campaigns: " + recallComponents(rs) + ". Ask for proof the recall work was completed.",
			method:   "Any open recall campaign for the year, make and model.",
			source:   "Recall database",
		})
	}

	report.SortFlags(b.flags)
	return b.flags
}

func priceFlags(b *builder, in Input) {
	v := in.Vehicle
	if v.EstimatedValue <= 0 {
		return
	}
	pct := v.PriceDiffPercent
	switch {
	case pct > 15:
		b.add(report.RedFlag{
			ID:          report.FlagOverpriced,
			Title:       fmt.Sprintf("Priced %.0f%% above estimated value", pct),
			Description: "The asking price is well above what comparable vehicles are worth.",
			Severity:    band.Pick(pct, overpricedSeverity, report.SeverityMedium),
			Category:    report.CategoryPricing,
		}, detail{
			expanded: fmt.Sprintf("Asking $%.0f against an estimated $%.0f, a difference of $%.0f.", v.AskingPrice, v.EstimatedValue, v.PriceDifference),
			method:   "Flagged above 15% over estimate; high severity at 30% or more.",
			source:   "Market valuation",
		})
	case pct < -20:
		b.add(report.RedFlag{
			ID:          report.FlagUnderpriced,
			Title:       fmt.Sprintf("Priced %.0f%% below estimated value", -pct),
			Description: "A price this far below market often hides a problem or a scam.",
			Severity:    band.PickBelow(pct, underpricedSeverity, report.SeverityMedium),
			Category:    report.CategoryPricing,
		}, detail{
			expanded: fmt.Sprintf("Asking $%.0f against an estimated $%.0f.", v.AskingPrice, v.EstimatedValue),
			method:   "Flagged beyond 20% under estimate; high severity at 35% or more.",
			source:   "Market valuation",
		})
	}
}

func pricingRiskFlags(b *builder, r pricing.Risk) {
	if lp := r.LowPrice; lp != nil {
		anchor := "estimated value"
		if lp.UsedMarketMedian {
			anchor = "market median"
		}
		b.add(report.RedFlag{
			ID:          report.FlagUnusuallyLowPrice,
			Title:       "Unusually low price",
			Description: fmt.Sprintf("Asking price is %.1f%% below the %s.", -lp.BelowMarketPercent, anchor),
			Severity:    band.PickBelow(lp.BelowMarketPercent, lowPriceSeverity, report.SeverityLow),
			Category:    report.CategoryPricing,
		}, detail{
			expanded: fmt.Sprintf("Compared against a %s of $%.0f with %d%% confidence.", anchor, lp.Anchor, lp.Confidence),
			method:   "Percent difference from the market median, or the estimate when no median is known.",
			source:   "Market valuation",
		})
	}
	if ll := r.LongListing; ll != nil {
		b.add(report.RedFlag{
			ID:          report.FlagTooGoodForTooLong,
			Title:       "Too good for too long",
			Description: fmt.Sprintf("Priced well below market yet listed for %d days.", ll.DaysListed),
			Severity:    band.Pick(float64(ll.DaysOverThreshold), longListingSeverity, report.SeverityLow),
			Category:    report.CategoryPricing,
		}, detail{
			expanded: fmt.Sprintf("%d days past the %d-day threshold for this class. Buyers may have found a problem.", ll.DaysOverThreshold, ll.ThresholdDays),
			method:   "Only evaluated when the price is unusually low; threshold depends on price class.",
			source:   "Listing history",
		})
	}
}

func historyFlags(b *builder, h signals.VehicleHistory) {
	if len(h.TitleBrands) > 0 || h.SalvageRecord {
		brands := h.TitleBrands
		if len(brands) == 0 {
			brands = []string{"salvage"}
		}
		b.add(report.RedFlag{
			ID:          report.FlagTitleBrands,
			Title:       "Branded title",
			Description: "The title carries a brand: " + strings.Join(brands, ", ") + ".",
			Severity:    report.SeverityCritical,
			Category:    report.CategoryTitle,
		}, detail{
			expanded: "Branded titles reduce resale value and can limit insurance and financing.",
			method:   "Any title brand or salvage record in the history report.",
			source:   "Vehicle history report",
		})
	}
	if h.TheftRecords > 0 {
		b.add(report.RedFlag{
			ID:          report.FlagTheftRecord,
			Title:       "Theft record",
			Description: "The vehicle has been reported stolen.",
			Severity:    report.SeverityCritical,
			Category:    report.CategoryOwnership,
		}, detail{
			expanded: fmt.Sprintf("%d theft record(s). Confirm the recovery and that the seller holds clear title.", h.TheftRecords),
			method:   "Any theft record in the history report.",
			source:   "Vehicle history report",
		})
	}
	if !b.paid {
		return
	}

	if h.AccidentCount > 0 {
		b.add(report.RedFlag{
			ID:          report.FlagAccidentHistory,
			Title:       fmt.Sprintf("%d reported accident(s)", h.AccidentCount),
			Description: "The history report lists accident damage.",
			Severity:    band.Pick(float64(h.AccidentCount), accidentSeverity, report.SeverityMedium),
			Category:    report.CategoryHistory,
		}, detail{
			expanded: "Ask for repair records and have a body shop check for frame damage.",
			method:   "High severity at two or more accidents.",
			source:   "Vehicle history report",
		})
	}
	if prev, cur, ok := Rollback(h.Odometer); ok {
		b.add(report.RedFlag{
			ID:          report.FlagOdometerRollback,
			Title:       "Odometer rollback",
			Description: fmt.Sprintf("Mileage dropped from %d to %d between reports.", prev.Mileage, cur.Mileage),
			Severity:    report.SeverityCritical,
			Category:    report.CategoryHistory,
		}, detail{
			expanded: fmt.Sprintf("Reading of %d on %s followed by %d on %s.", prev.Mileage, prev.Date.Format("2006-01-02"), cur.Mileage, cur.Date.Format("2006-01-02")),
			method:   "Odometer readings scanned in date order; the first decrease is reported.",
			source:   "Vehicle history report",
		})
	}
	if dmg := disasterDamage(h.DamageRecords); len(dmg) > 0 {
		b.add(report.RedFlag{
			ID:          report.FlagDisasterRisk,
			Title:       "Flood or fire damage",
			Description: "The history report lists " + strings.Join(dmg, ", ") + " damage.",
			Severity:    report.SeverityHigh,
			Category:    report.CategoryDisaster,
		}, detail{
			expanded: "Flood and fire damage cause electrical and corrosion faults that surface months later.",
			method:   "Any flood or fire damage record.",
			source:   "Vehicle history report",
		})
	}
}

// Rollback scans readings in date order and returns the first pair where
// mileage decreased.
func Rollback(readings []signals.OdometerReading) (prev, cur signals.OdometerReading, found bool) {
	sorted := make([]signals.OdometerReading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Mileage < sorted[i-1].Mileage {
			return sorted[i-1], sorted[i], true
		}
	}
	return signals.OdometerReading{}, signals.OdometerReading{}, false
}

func disasterDamage(records []string) []string {
	var out []string
	for _, r := range records {
		l := strings.ToLower(r)
		if strings.Contains(l, "flood") || strings.Contains(l, "fire") {
			out = append(out, l)
		}
	}
	return out
}

func environmentFlags(b *builder, o signals.Outcome[signals.DisasterData]) {
	d, ok := o.Get()
	if !ok || (!d.RecentDisasters && !d.HighFloodRisk) {
		return
	}
	sev := report.SeverityMedium
	if d.RecentDisasters && d.HighFloodRisk {
		sev = report.SeverityHigh
	}
	var causes []string
	if d.RecentDisasters {
		causes = append(causes, "recent declared disasters")
	}
	if d.HighFloodRisk {
		causes = append(causes, "high flood risk")
	}
	region := d.Region
	if region == "" {
		region = "the listing area"
	}
	b.add(report.RedFlag{
		ID:          report.FlagEnvironmentalRisk,
		Title:       "Environmental risk",
		Description: fmt.Sprintf("%s has %s.", region, strings.Join(causes, " and ")),
		Severity:    sev,
		Category:    report.CategoryDisaster,
	}, detail{
		expanded: "Vehicles from disaster areas are sometimes retitled elsewhere. Check for water lines, silt and corrosion.",
		method:   "Raised only for recent disasters or high flood risk; high severity when both apply.",
		source:   "Disaster declarations and flood maps",
	})
}

func sellerFlags(b *builder, s signals.SellerSignals, r Rules) {
	lb, pb, pc := s.ListingBehavior, s.PricingBehavior, s.ProfileConsistency
	if r.RelistCount > 0 && lb.RelistCount >= r.RelistCount {
		b.add(report.RedFlag{
			ID:          report.FlagRelistingDetected,
			Title:       "Relisted vehicle",
			Description: fmt.Sprintf("This vehicle has been relisted %d time(s).", lb.RelistCount),
			Severity:    report.SeverityMedium,
			Category:    report.CategoryListing,
		}, detail{
			expanded: "Repeated relisting can mean failed sales after inspection.",
			method:   fmt.Sprintf("Relisted %d or more times.", r.RelistCount),
			source:   "Seller activity",
		})
	}
	if lb.IsStale || (r.StaleDays > 0 && lb.DaysListed >= r.StaleDays) {
		b.add(report.RedFlag{
			ID:          report.FlagStaleListing,
			Title:       "Stale listing",
			Description: fmt.Sprintf("Listed for %d days.", lb.DaysListed),
			Severity:    report.SeverityLow,
			Category:    report.CategoryListing,
		}, detail{
			expanded: "Long-listed vehicles leave room to negotiate.",
			method:   fmt.Sprintf("Marked stale by the listing source or listed %d days or more.", r.StaleDays),
			source:   "Seller activity",
		})
	}
	if (r.PriceChanges > 0 && pb.PriceChanges >= r.PriceChanges) || (r.VolatilityPercent > 0 && pb.VolatilityPercent >= r.VolatilityPercent) {
		b.add(report.RedFlag{
			ID:          report.FlagPriceVolatility,
			Title:       "Volatile pricing",
			Description: fmt.Sprintf("%d price change(s), %.0f%% swing.", pb.PriceChanges, pb.VolatilityPercent),
			Severity:    report.SeverityMedium,
			Category:    report.CategorySeller,
		}, detail{
			expanded: "Frequent price swings suggest a motivated or uncertain seller.",
			method:   fmt.Sprintf("%d or more changes, or a swing of %.0f%% or more.", r.PriceChanges, r.VolatilityPercent),
			source:   "Seller activity",
		})
	}
	if pb.LowPriceLongListing {
		b.add(report.RedFlag{
			ID:          report.FlagTooGoodTooLong,
			Title:       "Too good, too long",
			Description: "The seller service reports a low price that has not sold.",
			Severity:    report.SeverityMedium,
			Category:    report.CategorySeller,
		}, detail{
			expanded: "Other buyers may have walked away after seeing the vehicle.",
			method:   "Low price combined with a long listing, as reported by the seller service.",
			source:   "Seller activity",
		})
	}
	if pc.HiddenDealer || (r.DealerActiveListings > 0 && pc.ActiveListings >= r.DealerActiveListings) {
		b.add(report.RedFlag{
			ID:          report.FlagHiddenDealer,
			Title:       "Possible unlicensed dealer",
			Description: fmt.Sprintf("The seller has %d active listings but presents as a private party.", pc.ActiveListings),
			Severity:    report.SeverityHigh,
			Category:    report.CategorySeller,
		}, detail{
			expanded: "Curbstoners avoid dealer disclosure rules and often sell salvage or flood vehicles.",
			method:   fmt.Sprintf("Seller flagged as a dealer or holds %d or more active listings.", r.DealerActiveListings),
			source:   "Seller profile",
		})
	}
}

func ageMileageFlags(b *builder, in Input) {
	v, r := in.Vehicle, in.Rules
	if v.Year <= 0 {
		return
	}
	age := vehicle.Age(v.Year, in.Now)
	if age > r.HighAge {
		b.add(report.RedFlag{
			ID:          report.FlagHighAge,
			Title:       fmt.Sprintf("%d years old", age),
			Description: "Older vehicles need more maintenance and have fewer safety features.",
			Severity:    report.SeverityLow,
			Category:    report.CategoryHistory,
		}, detail{
			expanded: "Budget for rubber, suspension and cooling-system work.",
			method:   fmt.Sprintf("Age above %d years.", r.HighAge),
			source:   "Model year",
		})
	}
	if v.Mileage <= 0 || r.AnnualMiles <= 0 {
		return
	}
	expected := vehicle.ExpectedMileage(age, r.AnnualMiles)
	ratio := float64(v.Mileage) / float64(expected)
	switch {
	case ratio > r.HighMileageMultiplier:
		sev := report.SeverityMedium
		if ratio > r.SevereMileageMultiplier {
			sev = report.SeverityHigh
		}
		b.add(report.RedFlag{
			ID:          report.FlagHighMileage,
			Title:       "High mileage",
			Description: fmt.Sprintf("%d miles is %.1fx the %d expected for its age.", v.Mileage, ratio, expected),
			Severity:    sev,
			Category:    report.CategoryHistory,
		}, detail{
			expanded: "High-mileage vehicles are due for timing, transmission and suspension service.",
			method:   fmt.Sprintf("Above %.1fx of %d miles per year; high severity above %.1fx.", r.HighMileageMultiplier, r.AnnualMiles, r.SevereMileageMultiplier),
			source:   "Listing mileage",
		})
	case ratio < r.LowMileageMultiplier && age > r.LowMileageMinAge:
		b.add(report.RedFlag{
			ID:          report.FlagSuspiciousLowMileage,
			Title:       "Suspiciously low mileage",
			Description: fmt.Sprintf("%d miles is well below the %d expected for a %d-year-old vehicle.", v.Mileage, expected, age),
			Severity:    report.SeverityMedium,
			Category:    report.CategoryHistory,
		}, detail{
			expanded: "Low mileage is sometimes genuine, but it is also the signature of odometer fraud or a replaced cluster.",
			method:   fmt.Sprintf("Below %.1fx expected mileage on vehicles older than %d years.", r.LowMileageMultiplier, r.LowMileageMinAge),
			source:   "Listing mileage",
		})
	}
}

func recallComponents(rs []report.Recall) string {
	parts := make([]string, 0, len(rs))
	for _, r := range rs {
		if r.Component != "" {
			parts = append(parts, r.Component)
		} else {
			parts = append(parts, r.Campaign)
		}
	}
	return strings.Join(parts, ", ")
}
