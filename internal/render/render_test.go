package render

import (
	"strings"
	"testing"

	"github.com/dshills/carverdict/internal/report"
)

func sampleResult() *report.Result {
	return &report.Result{
		Tier:            report.TierPaid,
		Verdict:         report.VerdictCaution,
		Score:           52,
		ConfidenceScore: 75,
		Summary:         "Proceed with caution.",
		VehicleInfo: report.VehicleInfo{
			Year: 2016, Make: "Honda", Model: "Accord",
			AskingPrice: 13000, EstimatedValue: 16000, PriceDiffPercent: -18.8,
		},
		RedFlags: []report.RedFlag{
			{ID: report.FlagOdometerRollback, Title: "Odometer rollback", Description: "Mileage dropped.",
				Severity: report.SeverityCritical, Category: report.CategoryHistory, Methodology: "Readings in date order."},
			{ID: report.FlagUnusuallyLowPrice, Title: "Unusually low price", Description: "Below market.",
				Severity: report.SeverityMedium, Category: report.CategoryPricing},
			{ID: report.FlagPrivateSale, Title: "Private sale", Description: "No warranty.",
				Severity: report.SeverityLow, Category: report.CategoryListing},
		},
		QuestionsToAsk: []string{"Can you confirm the title is clean?"},
		Explanation: report.Explanation{
			StructuralRisks: []string{"Odometer rollback"},
			MarketRisks:     []string{"Unusually low price"},
		},
		MaintenanceRiskAssessment: &report.MaintenanceRiskAssessment{
			Level: report.MaintenanceModerate, Score: 30, Factors: []string{"10 years old"}, EstimatedAnnualCost: 1150,
		},
		ComparableListings: []report.ComparableListing{
			{Title: "2016 Honda Accord EX", Price: 15500, Mileage: 80000, DaysListed: 12},
		},
		DataQuality: report.DataQualityAssessment{
			OverallConfidence: report.ConfidenceMedium,
			ConfidenceScore:   68,
			Factors:           []report.DataQualityFactor{{Name: "VIN", Status: report.StatusComplete}},
		},
		KnownData: []string{"Asking price $13000"},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleResult())

	checks := []string{
		"# Verdict: CAUTION",
		"**Vehicle:** 2016 Honda Accord",
		"(estimated $16000, -18.8%)",
		"**Score:** 52 / 100",
		"## Critical Red Flags",
		"Odometer rollback [critical / history]",
		"**Method:** Readings in date order.",
		"## Medium Severity",
		"## Informational",
		"**Structural risks:** Odometer rollback",
		"## Questions to Ask",
		"## Maintenance Risk",
		"about $1150 per year",
		"| 2016 Honda Accord EX | $15500 | 80000 | 12 |",
		"## Data Quality",
		"- VIN: complete",
		"**Known:** Asking price $13000",
	}
	for _, want := range checks {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(md, "## High Severity") {
		t.Error("empty severity group rendered")
	}
}

func TestMarkdownEmpty(t *testing.T) {
	r := &report.Result{Verdict: report.VerdictDeal, Score: 100, VehicleInfo: report.VehicleInfo{AskingPrice: 1}}
	md := Markdown(r)
	if !strings.Contains(md, "No red flags found") {
		t.Error("expected 'No red flags found' for empty result")
	}
	if strings.Contains(md, "## Maintenance Risk") {
		t.Error("premium section rendered without data")
	}
}

func TestMarkdownCapped(t *testing.T) {
	r := sampleResult()
	r.Explanation = report.Explanation{Capped: true}
	md := Markdown(r)
	if !strings.Contains(md, "Verdict held at caution") {
		t.Error("capped note missing")
	}
}
