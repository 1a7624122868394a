package premium

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/carverdict/internal/pricing"
	"github.com/dshills/carverdict/internal/report"
	"github.com/dshills/carverdict/internal/signals"
)

var now = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func TestMaintenanceRiskNeedsYear(t *testing.T) {
	if got := MaintenanceRisk(report.VehicleInfo{Mileage: 50000}, nil, now); got != nil {
		t.Errorf("expected nil without a year, got %+v", got)
	}
}

func TestMaintenanceRiskLevels(t *testing.T) {
	tests := []struct {
		name  string
		v     report.VehicleInfo
		recs  int
		level string
		score int
	}{
		{"new common", report.VehicleInfo{Year: 2025, Mileage: 8000, PriceClass: report.ClassCommon}, 0, report.MaintenanceLow, 0},
		{"mid-life", report.VehicleInfo{Year: 2019, Mileage: 85000}, 0, report.MaintenanceModerate, 25},
		{"old luxury", report.VehicleInfo{Year: 2010, Mileage: 120000, PriceClass: report.ClassLuxury}, 0, report.MaintenanceHigh, 70},
		{"recalls", report.VehicleInfo{Year: 2019, Mileage: 30000}, 2, report.MaintenanceModerate, 25},
		{"exotic", report.VehicleInfo{Year: 2016, Mileage: 40000, PriceClass: report.ClassExotic}, 0, report.MaintenanceElevated, 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recalls := make([]report.Recall, tt.recs)
			got := MaintenanceRisk(tt.v, recalls, now)
			if got == nil {
				t.Fatal("unexpected nil")
			}
			if got.Level != tt.level || got.Score != tt.score {
				t.Errorf("level=%s score=%d, want %s/%d", got.Level, got.Score, tt.level, tt.score)
			}
			if got.EstimatedAnnualCost <= 0 || got.EstimatedAnnualCost%50 != 0 {
				t.Errorf("annual cost = %d", got.EstimatedAnnualCost)
			}
		})
	}
}

func listings(prices ...float64) signals.MarketData {
	md := signals.MarketData{}
	for i, p := range prices {
		md.RawListings = append(md.RawListings, signals.Listing{Title: "listing", Price: p, Mileage: 50000 + i*10000})
	}
	return md
}

func TestMarketPosition(t *testing.T) {
	if MarketPosition(report.VehicleInfo{AskingPrice: 20000}, signals.MarketData{}) != nil {
		t.Error("expected nil without listings")
	}

	tests := []struct {
		asking float64
		pos    string
		pct    float64
	}{
		{24000, report.PositionAbove, 20},
		{20500, report.PositionAt, 2.5},
		{17000, report.PositionBelow, -15},
	}
	for _, tt := range tests {
		got := MarketPosition(report.VehicleInfo{AskingPrice: tt.asking}, listings(22000, 18000, 20000))
		if got.Position != tt.pos || got.PercentFromMedian != tt.pct {
			t.Errorf("asking %.0f: %s %.1f, want %s %.1f", tt.asking, got.Position, got.PercentFromMedian, tt.pos, tt.pct)
		}
		if got.MarketMedian != 20000 || got.MarketLow != 18000 || got.MarketHigh != 22000 || got.SampleSize != 3 {
			t.Errorf("stats = %+v", got)
		}
	}
}

func TestMarketPositionEvenSample(t *testing.T) {
	got := MarketPosition(report.VehicleInfo{AskingPrice: 15000}, listings(10000, 20000))
	if got.MarketMedian != 15000 || got.Position != report.PositionAt {
		t.Errorf("median=%.0f position=%s", got.MarketMedian, got.Position)
	}
}

func TestSellerAnalysis(t *testing.T) {
	calm := SellerAnalysis(signals.SellerSignals{ListingBehavior: signals.ListingBehavior{DaysListed: 5}})
	if calm.RiskLevel != "low" || len(calm.Signals) != 0 {
		t.Errorf("calm seller = %+v", calm)
	}

	busy := SellerAnalysis(signals.SellerSignals{
		ListingBehavior: signals.ListingBehavior{DaysListed: 70, RelistCount: 2, IsStale: true},
		PricingBehavior: signals.PricingBehavior{PriceChanges: 3},
		PricingRisk: pricing.Risk{
			LowPrice:    &pricing.LowPriceSignal{Detected: true},
			LongListing: &pricing.LongListingSignal{Detected: true, DaysOverThreshold: 49},
		},
	})
	if busy.RiskLevel != "high" || len(busy.Signals) != 4 {
		t.Errorf("busy seller = %+v", busy)
	}

	dealer := SellerAnalysis(signals.SellerSignals{ProfileConsistency: signals.ProfileConsistency{HiddenDealer: true}})
	if dealer.RiskLevel != "high" {
		t.Errorf("hidden dealer risk = %s, want high", dealer.RiskLevel)
	}
}

func TestHistorySummary(t *testing.T) {
	h := signals.VehicleHistory{
		OwnerCount:  3,
		TitleBrands: []string{"rebuilt"},
		Odometer: []signals.OdometerReading{
			{Mileage: 61000, Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
			{Mileage: 30000, Date: time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
	want := &report.HistorySummary{
		OwnerCount:          3,
		TitleBrands:         []string{"rebuilt"},
		OdometerReadings:    2,
		LastReportedMileage: 61000,
		LastReportedAt:      "2024-05-01",
	}
	if diff := cmp.Diff(want, HistorySummary(h)); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestComparables(t *testing.T) {
	md := signals.MarketData{RawListings: []signals.Listing{
		{Title: "far", Mileage: 150000, Price: 9000},
		{Title: "near, call me at 555-123-4567", Mileage: 61000, Price: 15000},
		{Title: "close", Mileage: 52000, Price: 16000},
	}}
	got := Comparables(md, 60000, 2)
	want := []report.ComparableListing{
		{Title: "near, [REDACTED]", Mileage: 61000, Price: 15000},
		{Title: "close", Mileage: 52000, Price: 16000},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("comparables mismatch (-want +got):\n%s", diff)
	}
	if md.RawListings[0].Title != "far" {
		t.Error("input listings were reordered")
	}
}

func TestQuestionsLeadWithTitle(t *testing.T) {
	flags := []report.RedFlag{
		{ID: report.FlagOdometerRollback},
		{ID: report.FlagPrivateSale},
		{ID: report.FlagOpenRecalls},
	}
	qs := Questions(flags)
	if qs[0] != TitleQuestion {
		t.Errorf("first question = %q", qs[0])
	}
	if len(qs) != len(BaseQuestions())+2 {
		t.Errorf("questions = %d, want %d", len(qs), len(BaseQuestions())+2)
	}

	tq := TailoredQuestions(flags)
	if len(tq) != 2 || tq[0].FlagID != report.FlagOdometerRollback || tq[1].FlagID != report.FlagOpenRecalls {
		t.Errorf("tailored = %+v", tq)
	}
}
