package redflag

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/carverdict/internal/pricing"
	"github.com/dshills/carverdict/internal/report"
	"github.com/dshills/carverdict/internal/signals"
)

var now = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func baseInput(tier report.Tier) Input {
	return Input{
		Tier: tier,
		Vehicle: report.VehicleInfo{
			VIN:            "1HGCM82633A004352",
			Year:           2020,
			Make:           "Honda",
			Model:          "Accord",
			Mileage:        70000,
			AskingPrice:    20000,
			EstimatedValue: 20000,
		},
		History: signals.OK(signals.VehicleHistory{OwnerCount: 1}),
		Rules:   DefaultRules(),
		Now:     now,
	}
}

func ids(flags []report.RedFlag) []report.FlagID {
	out := make([]report.FlagID, len(flags))
	for i, f := range flags {
		out[i] = f.ID
	}
	return out
}

func find(flags []report.RedFlag, id report.FlagID) (report.RedFlag, bool) {
	for _, f := range flags {
		if f.ID == id {
			return f, true
		}
	}
	return report.RedFlag{}, false
}

func TestCleanListingOnlyPrivateSale(t *testing.T) {
	flags := Generate(baseInput(report.TierFree))
	if diff := cmp.Diff([]report.FlagID{report.FlagPrivateSale}, ids(flags)); diff != "" {
		t.Errorf("flags mismatch (-want +got):\n%s", diff)
	}
	if flags[0].Severity != report.SeverityLow {
		t.Errorf("private-sale severity = %s, want low", flags[0].Severity)
	}
}

func TestPriceBands(t *testing.T) {
	tests := []struct {
		pct  float64
		id   report.FlagID
		want report.Severity
	}{
		{50, report.FlagOverpriced, report.SeverityHigh},
		{30, report.FlagOverpriced, report.SeverityHigh},
		{20, report.FlagOverpriced, report.SeverityMedium},
		{15, "", ""},
		{-20, "", ""},
		{-25, report.FlagUnderpriced, report.SeverityMedium},
		{-40, report.FlagUnderpriced, report.SeverityHigh},
	}
	for _, tt := range tests {
		in := baseInput(report.TierFree)
		in.Vehicle.PriceDiffPercent = tt.pct
		flags := Generate(in)
		over, hasOver := find(flags, report.FlagOverpriced)
		under, hasUnder := find(flags, report.FlagUnderpriced)
		switch tt.id {
		case "":
			if hasOver || hasUnder {
				t.Errorf("pct %.0f: unexpected price flag", tt.pct)
			}
		case report.FlagOverpriced:
			if !hasOver || over.Severity != tt.want {
				t.Errorf("pct %.0f: overpriced=%v severity=%s, want %s", tt.pct, hasOver, over.Severity, tt.want)
			}
		case report.FlagUnderpriced:
			if !hasUnder || under.Severity != tt.want {
				t.Errorf("pct %.0f: underpriced=%v severity=%s, want %s", tt.pct, hasUnder, under.Severity, tt.want)
			}
		}
	}
}

func TestPriceFlagsNeedEstimate(t *testing.T) {
	in := baseInput(report.TierFree)
	in.Vehicle.EstimatedValue = 0
	in.Vehicle.PriceDiffPercent = 80
	if _, ok := find(Generate(in), report.FlagOverpriced); ok {
		t.Error("overpriced should not fire without an estimate")
	}
}

func TestPricingRiskSeverity(t *testing.T) {
	tests := []struct {
		name     string
		pct      float64
		daysOver int
		wantLow  report.Severity
		wantLong report.Severity
	}{
		{"mild", -18, 5, report.SeverityLow, report.SeverityLow},
		{"moderate", -28, 20, report.SeverityMedium, report.SeverityMedium},
		{"deep", -40, 45, report.SeverityHigh, report.SeverityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput(report.TierFree)
			in.PricingRisk = pricing.Risk{
				LowPrice:    &pricing.LowPriceSignal{Detected: true, BelowMarketPercent: tt.pct, Anchor: 20000, Confidence: 85},
				LongListing: &pricing.LongListingSignal{Detected: true, DaysListed: 21 + tt.daysOver, ThresholdDays: 21, DaysOverThreshold: tt.daysOver, Confidence: 70},
			}
			flags := Generate(in)
			low, ok := find(flags, report.FlagUnusuallyLowPrice)
			if !ok || low.Severity != tt.wantLow {
				t.Errorf("unusually-low-price present=%v severity=%s, want %s", ok, low.Severity, tt.wantLow)
			}
			long, ok := find(flags, report.FlagTooGoodForTooLong)
			if !ok || long.Severity != tt.wantLong {
				t.Errorf("too-good-for-too-long present=%v severity=%s, want %s", ok, long.Severity, tt.wantLong)
			}
		})
	}
}

func TestTitleAndTheftAreCritical(t *testing.T) {
	in := baseInput(report.TierFree)
	in.History = signals.OK(signals.VehicleHistory{SalvageRecord: true, TheftRecords: 1})
	flags := Generate(in)
	for _, id := range []report.FlagID{report.FlagTitleBrands, report.FlagTheftRecord} {
		f, ok := find(flags, id)
		if !ok || f.Severity != report.SeverityCritical {
			t.Errorf("%s present=%v severity=%s, want critical", id, ok, f.Severity)
		}
	}
}

func TestOdometerRollbackPaidOnly(t *testing.T) {
	d1 := time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2023, 2, 20, 0, 0, 0, 0, time.UTC)
	h := signals.VehicleHistory{Odometer: []signals.OdometerReading{
		{Mileage: 55000, Date: d2},
		{Mileage: 60000, Date: d1},
	}}

	paid := baseInput(report.TierPaid)
	paid.History = signals.OK(h)
	f, ok := find(Generate(paid), report.FlagOdometerRollback)
	if !ok {
		t.Fatal("expected odometer-rollback on paid tier")
	}
	if f.Severity != report.SeverityCritical {
		t.Errorf("severity = %s, want critical", f.Severity)
	}
	if f.Methodology == "" {
		t.Error("paid flag should carry methodology")
	}

	free := baseInput(report.TierFree)
	free.History = signals.OK(h)
	if _, ok := find(Generate(free), report.FlagOdometerRollback); ok {
		t.Error("odometer-rollback must not fire on free tier")
	}
}

func TestRollbackStopsAtFirstDecrease(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	readings := []signals.OdometerReading{
		{Mileage: 10000, Date: day(1)},
		{Mileage: 9000, Date: day(2)},
		{Mileage: 20000, Date: day(3)},
		{Mileage: 5000, Date: day(4)},
	}
	prev, cur, ok := Rollback(readings)
	if !ok || prev.Mileage != 10000 || cur.Mileage != 9000 {
		t.Errorf("Rollback = %d -> %d (%v), want 10000 -> 9000", prev.Mileage, cur.Mileage, ok)
	}
	if _, _, ok := Rollback(readings[:1]); ok {
		t.Error("single reading cannot roll back")
	}
}

func TestEnvironmentalRisk(t *testing.T) {
	tests := []struct {
		name   string
		data   signals.DisasterData
		want   report.Severity
		expect bool
	}{
		{"historical only", signals.DisasterData{HistoricalEvents: 12}, "", false},
		{"recent only", signals.DisasterData{RecentDisasters: true}, report.SeverityMedium, true},
		{"flood only", signals.DisasterData{HighFloodRisk: true}, report.SeverityMedium, true},
		{"both", signals.DisasterData{RecentDisasters: true, HighFloodRisk: true}, report.SeverityHigh, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput(report.TierFree)
			in.Disaster = signals.OK(tt.data)
			f, ok := find(Generate(in), report.FlagEnvironmentalRisk)
			if ok != tt.expect {
				t.Fatalf("present = %v, want %v", ok, tt.expect)
			}
			if ok && f.Severity != tt.want {
				t.Errorf("severity = %s, want %s", f.Severity, tt.want)
			}
		})
	}
}

func TestFailedCollaboratorsRaiseNothing(t *testing.T) {
	in := baseInput(report.TierPaid)
	in.History = signals.Failed[signals.VehicleHistory](errors.New("timeout"))
	in.Disaster = signals.Absent[signals.DisasterData]("no record")
	in.Seller = signals.Failed[signals.SellerSignals](errors.New("503"))
	in.Recalls = signals.Failed[[]report.Recall](errors.New("503"))
	if diff := cmp.Diff([]report.FlagID{report.FlagPrivateSale}, ids(Generate(in))); diff != "" {
		t.Errorf("flags mismatch (-want +got):\n%s", diff)
	}
}

func TestSellerFlagsPaidOnly(t *testing.T) {
	s := signals.SellerSignals{
		ListingBehavior:    signals.ListingBehavior{DaysListed: 75, RelistCount: 2},
		PricingBehavior:    signals.PricingBehavior{PriceChanges: 4, LowPriceLongListing: true},
		ProfileConsistency: signals.ProfileConsistency{ActiveListings: 8},
	}
	paid := baseInput(report.TierPaid)
	paid.Seller = signals.OK(s)
	got := Generate(paid)
	for _, id := range []report.FlagID{
		report.FlagRelistingDetected, report.FlagStaleListing, report.FlagPriceVolatility,
		report.FlagTooGoodTooLong, report.FlagHiddenDealer,
	} {
		if !report.HasFlag(got, id) {
			t.Errorf("paid tier missing %s", id)
		}
	}

	free := baseInput(report.TierFree)
	free.Seller = signals.OK(s)
	for _, f := range Generate(free) {
		if f.Category == report.CategorySeller {
			t.Errorf("free tier raised seller flag %s", f.ID)
		}
	}
}

func TestNoVINFlag(t *testing.T) {
	in := baseInput(report.TierFree)
	in.Vehicle.VIN = ""
	in.History = signals.Skipped[signals.VehicleHistory]("no VIN supplied")
	f, ok := find(Generate(in), report.FlagNoVIN)
	if !ok || f.Severity != report.SeverityHigh || f.Category != report.CategoryDataGap {
		t.Errorf("no-vin = %+v present=%v", f, ok)
	}
}

func TestAgeAndMileage(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		mileage int
		want    map[report.FlagID]report.Severity
	}{
		{"old", 2012, 150000, map[report.FlagID]report.Severity{report.FlagHighAge: report.SeverityLow}},
		{"high mileage", 2022, 90000, map[report.FlagID]report.Severity{report.FlagHighMileage: report.SeverityMedium}},
		{"severe mileage", 2024, 80000, map[report.FlagID]report.Severity{report.FlagHighMileage: report.SeverityHigh}},
		{"low mileage old", 2018, 20000, map[report.FlagID]report.Severity{report.FlagSuspiciousLowMileage: report.SeverityMedium}},
		{"low mileage young", 2024, 5000, map[report.FlagID]report.Severity{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput(report.TierFree)
			in.Vehicle.Year = tt.year
			in.Vehicle.Mileage = tt.mileage
			got := map[report.FlagID]report.Severity{}
			for _, f := range Generate(in) {
				switch f.ID {
				case report.FlagHighAge, report.FlagHighMileage, report.FlagSuspiciousLowMileage:
					got[f.ID] = f.Severity
				}
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("age/mileage flags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOpenRecalls(t *testing.T) {
	in := baseInput(report.TierFree)
	in.Recalls = signals.OK([]report.Recall{{Campaign: "20V100000", Component: "FUEL PUMP"}})
	f, ok := find(Generate(in), report.FlagOpenRecalls)
	if !ok || f.Severity != report.SeverityHigh {
		t.Errorf("open-recalls present=%v severity=%s", ok, f.Severity)
	}

	in.Recalls = signals.OK([]report.Recall{})
	if _, ok := find(Generate(in), report.FlagOpenRecalls); ok {
		t.Error("empty recall list should not raise open-recalls")
	}
}

func TestDetailFieldsTierGated(t *testing.T) {
	in := baseInput(report.TierFree)
	in.Vehicle.PriceDiffPercent = 40
	for _, f := range Generate(in) {
		if f.ExpandedDetails != "" || f.Methodology != "" || f.DataSource != "" {
			t.Errorf("free flag %s exposes detail fields", f.ID)
		}
	}
	in.Tier = report.TierPaid
	for _, f := range Generate(in) {
		if f.Methodology == "" || f.DataSource == "" {
			t.Errorf("paid flag %s missing detail fields", f.ID)
		}
	}
}

func TestSeverityOrdering(t *testing.T) {
	in := baseInput(report.TierPaid)
	in.Vehicle.VIN = ""
	in.Vehicle.Year = 2010
	in.Vehicle.PriceDiffPercent = 20
	in.History = signals.OK(signals.VehicleHistory{TitleBrands: []string{"rebuilt"}, AccidentCount: 1})
	in.Disaster = signals.OK(signals.DisasterData{HighFloodRisk: true})
	in.Recalls = signals.OK([]report.Recall{{Campaign: "X"}})

	flags := Generate(in)
	for i := 1; i < len(flags); i++ {
		if flags[i].Severity.Rank() < flags[i-1].Severity.Rank() {
			t.Fatalf("flag %d (%s, %s) precedes more severe %s", i-1, flags[i-1].ID, flags[i-1].Severity, flags[i].Severity)
		}
	}
	if flags[0].ID != report.FlagTitleBrands {
		t.Errorf("first flag = %s, want title-brands", flags[0].ID)
	}
}
