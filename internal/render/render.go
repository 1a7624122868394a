// Package render produces Markdown output from a verdict result.
package render

import (
	"fmt"
	"strings"

	"github.com/dshills/carverdict/internal/report"
)

var verdictLabel = map[report.Verdict]string{
	report.VerdictDeal:     "DEAL",
	report.VerdictCaution:  "CAUTION",
	report.VerdictDisaster: "DISASTER",
}

// Markdown renders a result as a Markdown report. Sections absent from the
// result, such as premium detail on the free tier, are omitted.
func Markdown(r *report.Result) string {
	var b strings.Builder

	// Summary
	fmt.Fprintf(&b, "# Verdict: %s\n\n", verdictLabel[r.Verdict])
	if name := vehicleName(r.VehicleInfo); name != "" {
		fmt.Fprintf(&b, "**Vehicle:** %s\n", name)
	}
	fmt.Fprintf(&b, "**Asking price:** $%.0f", r.VehicleInfo.AskingPrice)
	if r.VehicleInfo.EstimatedValue > 0 {
		fmt.Fprintf(&b, " (estimated $%.0f, %+.1f%%)", r.VehicleInfo.EstimatedValue, r.VehicleInfo.PriceDiffPercent)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "**Score:** %d / 100\n", r.Score)
	fmt.Fprintf(&b, "**Confidence:** %d%%\n", r.ConfidenceScore)
	fmt.Fprintf(&b, "**Tier:** %s\n\n", r.Tier)
	if r.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", r.Summary)
	}

	// Flags by severity
	groups := []struct {
		sev     report.Severity
		heading string
	}{
		{report.SeverityCritical, "Critical Red Flags"},
		{report.SeverityHigh, "High Severity"},
		{report.SeverityMedium, "Medium Severity"},
		{report.SeverityLow, "Informational"},
	}
	for _, g := range groups {
		flags := filterFlags(r.RedFlags, g.sev)
		if len(flags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", g.heading)
		for _, f := range flags {
			renderFlag(&b, f)
		}
	}
	if len(r.RedFlags) == 0 {
		b.WriteString("No red flags found.\n\n")
	}

	renderExplanation(&b, r.Explanation)

	// Questions
	if len(r.QuestionsToAsk) > 0 {
		b.WriteString("## Questions to Ask\n\n")
		for _, q := range r.QuestionsToAsk {
			fmt.Fprintf(&b, "- %s\n", q)
		}
		b.WriteString("\n")
	}
	if len(r.TailoredQuestions) > 0 {
		b.WriteString("## Follow-up Questions\n\n")
		for _, q := range r.TailoredQuestions {
			fmt.Fprintf(&b, "### %s\n\n%s\n\n", q.Question, q.Why)
		}
	}

	renderPremium(&b, r)
	renderDataQuality(&b, r)

	if len(r.Recalls) > 0 {
		b.WriteString("## Open Recalls\n\n")
		for _, rc := range r.Recalls {
			fmt.Fprintf(&b, "- **%s** %s: %s\n", rc.Campaign, rc.Component, rc.Summary)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func vehicleName(v report.VehicleInfo) string {
	var parts []string
	if v.Year > 0 {
		parts = append(parts, fmt.Sprint(v.Year))
	}
	for _, s := range []string{v.Make, v.Model, v.Trim} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func filterFlags(flags []report.RedFlag, sev report.Severity) []report.RedFlag {
	var result []report.RedFlag
	for _, f := range flags {
		if f.Severity == sev {
			result = append(result, f)
		}
	}
	return result
}

func renderFlag(b *strings.Builder, f report.RedFlag) {
	fmt.Fprintf(b, "### %s [%s / %s]\n\n", f.Title, f.Severity, f.Category)
	fmt.Fprintf(b, "%s\n\n", f.Description)
	if f.ExpandedDetails != "" {
		fmt.Fprintf(b, "%s\n\n", f.ExpandedDetails)
	}
	if f.Methodology != "" {
		fmt.Fprintf(b, "**Method:** %s\n\n", f.Methodology)
	}
	if f.DataSource != "" {
		fmt.Fprintf(b, "**Source:** %s\n\n", f.DataSource)
	}
}

func renderExplanation(b *strings.Builder, e report.Explanation) {
	sections := []struct {
		heading string
		items   []string
	}{
		{"Structural risks", e.StructuralRisks},
		{"Market risks", e.MarketRisks},
		{"Seller behaviour risks", e.SellerBehaviorRisks},
	}
	wrote := false
	for _, s := range sections {
		if len(s.items) == 0 {
			continue
		}
		if !wrote {
			b.WriteString("## Why\n\n")
			wrote = true
		}
		fmt.Fprintf(b, "**%s:** %s\n\n", s.heading, strings.Join(s.items, "; "))
	}
	if e.Capped {
		if !wrote {
			b.WriteString("## Why\n\n")
		}
		b.WriteString("_Verdict held at caution: the risk comes from location and pricing patterns only._\n\n")
	}
}

func renderPremium(b *strings.Builder, r *report.Result) {
	if m := r.MarketPricingAnalysis; m != nil {
		b.WriteString("## Market Position\n\n")
		fmt.Fprintf(b, "%s\n\n", m.Summary)
		fmt.Fprintf(b, "- median $%.0f, range $%.0f to $%.0f across %d listings\n\n", m.MarketMedian, m.MarketLow, m.MarketHigh, m.SampleSize)
	}
	if m := r.MaintenanceRiskAssessment; m != nil {
		b.WriteString("## Maintenance Risk\n\n")
		fmt.Fprintf(b, "**Level:** %s (score %d), about $%d per year\n\n", m.Level, m.Score, m.EstimatedAnnualCost)
		for _, f := range m.Factors {
			fmt.Fprintf(b, "- %s\n", f)
		}
		b.WriteString("\n")
	}
	if s := r.SellerAnalysis; s != nil {
		b.WriteString("## Seller Analysis\n\n")
		fmt.Fprintf(b, "**Risk:** %s, listed %d days, relisted %d times\n\n", s.RiskLevel, s.DaysListed, s.RelistCount)
		for _, sig := range s.Signals {
			fmt.Fprintf(b, "- %s\n", sig)
		}
		if len(s.Signals) > 0 {
			b.WriteString("\n")
		}
	}
	if h := r.CarfaxSummary; h != nil {
		b.WriteString("## History Summary\n\n")
		fmt.Fprintf(b, "- owners: %d\n- accidents: %d\n- theft records: %d\n- odometer readings: %d\n",
			h.OwnerCount, h.AccidentCount, h.TheftRecords, h.OdometerReadings)
		if len(h.TitleBrands) > 0 {
			fmt.Fprintf(b, "- title brands: %s\n", strings.Join(h.TitleBrands, ", "))
		}
		b.WriteString("\n")
	}
	if len(r.ComparableListings) > 0 {
		b.WriteString("## Comparable Listings\n\n")
		b.WriteString("| Listing | Price | Mileage | Days listed |\n|---|---|---|---|\n")
		for _, c := range r.ComparableListings {
			fmt.Fprintf(b, "| %s | $%.0f | %d | %d |\n", c.Title, c.Price, c.Mileage, c.DaysListed)
		}
		b.WriteString("\n")
	}
}

func renderDataQuality(b *strings.Builder, r *report.Result) {
	dq := r.DataQuality
	b.WriteString("## Data Quality\n\n")
	fmt.Fprintf(b, "**Confidence:** %s (%d / 100)\n\n", dq.OverallConfidence, dq.ConfidenceScore)
	if dq.Summary != "" {
		fmt.Fprintf(b, "%s\n\n", dq.Summary)
	}
	for _, f := range dq.Factors {
		fmt.Fprintf(b, "- %s: %s\n", f.Name, f.Status)
	}
	if len(dq.Factors) > 0 {
		b.WriteString("\n")
	}
	if len(r.KnownData) > 0 {
		fmt.Fprintf(b, "**Known:** %s\n\n", strings.Join(r.KnownData, ", "))
	}
	if len(r.UnknownData) > 0 {
		fmt.Fprintf(b, "**Unknown:** %s\n\n", strings.Join(r.UnknownData, ", "))
	}
	for _, rec := range dq.Recommendations {
		fmt.Fprintf(b, "- %s\n", rec)
	}
	if len(dq.Recommendations) > 0 {
		b.WriteString("\n")
	}
}
