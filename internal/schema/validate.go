// Package schema checks a verdict result against the invariants every
// result must satisfy before it is emitted.
package schema

import (
	"fmt"

	"github.com/dshills/carverdict/internal/premium"
	"github.com/dshills/carverdict/internal/report"
	"github.com/dshills/carverdict/internal/tier"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Path    string
	Message string
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Result for structural validity.
func Validate(r *report.Result) []ValidationError {
	var errs []ValidationError

	if r.ID == "" {
		errs = append(errs, ValidationError{"id", "required"})
	}
	if r.Meta.Tool == "" {
		errs = append(errs, ValidationError{"meta.tool", "required"})
	}
	if r.Meta.Version == "" {
		errs = append(errs, ValidationError{"meta.version", "required"})
	}
	if !r.Tier.Valid() {
		errs = append(errs, ValidationError{"tier", fmt.Sprintf("invalid tier: %q", r.Tier)})
	}
	if !r.Verdict.Valid() {
		errs = append(errs, ValidationError{"verdict", fmt.Sprintf("invalid verdict: %q", r.Verdict)})
	}
	if r.Score < 0 || r.Score > 100 {
		errs = append(errs, ValidationError{"score", fmt.Sprintf("%d outside 0-100", r.Score)})
	}
	if r.ConfidenceScore < 40 || r.ConfidenceScore > 95 {
		errs = append(errs, ValidationError{"confidenceScore", fmt.Sprintf("%d outside 40-95", r.ConfidenceScore)})
	}
	if r.VehicleInfo.AskingPrice <= 0 {
		errs = append(errs, ValidationError{"vehicleInfo.askingPrice", "must be greater than zero"})
	}

	errs = append(errs, validateVerdict(r)...)
	errs = append(errs, validateFlags(r.RedFlags)...)
	errs = append(errs, validateDataQuality(r.DataQuality)...)
	if r.Tier == report.TierFree {
		errs = append(errs, validateFreeTier(r)...)
	}

	return errs
}

// validateVerdict checks the verdict against the score and the disaster cap.
func validateVerdict(r *report.Result) []ValidationError {
	var errs []ValidationError
	if !r.Verdict.Valid() {
		return nil
	}
	expected := report.VerdictForScore(r.Score)
	capped := expected == report.VerdictDisaster && r.Verdict == report.VerdictCaution && r.Explanation.Capped
	if r.Verdict != expected && !capped {
		errs = append(errs, ValidationError{"verdict", fmt.Sprintf("%s does not match score %d (expected %s)", r.Verdict, r.Score, expected)})
	}
	if r.Explanation.Capped && !capped {
		errs = append(errs, ValidationError{"explanation.capped", "set without a capped verdict"})
	}
	if r.Verdict == report.VerdictDisaster && onlyProbabilistic(r.RedFlags) {
		errs = append(errs, ValidationError{"verdict", "disaster driven only by probabilistic flags"})
	}
	return errs
}

func onlyProbabilistic(flags []report.RedFlag) bool {
	for _, f := range flags {
		if report.Penalty(f.Severity) > 0 && !report.IsProbabilistic(f.ID) {
			return false
		}
	}
	return true
}

func validateFlags(flags []report.RedFlag) []ValidationError {
	var errs []ValidationError
	seen := make(map[report.FlagID]bool)
	prevRank := -1
	for i, f := range flags {
		prefix := fmt.Sprintf("redFlags[%d]", i)
		if !f.ID.Valid() {
			errs = append(errs, ValidationError{prefix + ".id", fmt.Sprintf("unknown flag id: %q", f.ID)})
		} else if seen[f.ID] {
			errs = append(errs, ValidationError{prefix + ".id", fmt.Sprintf("duplicate flag: %q", f.ID)})
		} else {
			seen[f.ID] = true
		}
		if !f.Severity.Valid() {
			errs = append(errs, ValidationError{prefix + ".severity", fmt.Sprintf("invalid: %q", f.Severity)})
		}
		if !f.Category.Valid() {
			errs = append(errs, ValidationError{prefix + ".category", fmt.Sprintf("invalid: %q", f.Category)})
		}
		if f.Title == "" {
			errs = append(errs, ValidationError{prefix + ".title", "required"})
		}
		if rank := f.Severity.Rank(); rank < prevRank {
			errs = append(errs, ValidationError{prefix + ".severity", fmt.Sprintf("%s flag sorted after a less severe flag", f.Severity)})
		} else {
			prevRank = rank
		}
	}
	return errs
}

func validateDataQuality(dq report.DataQualityAssessment) []ValidationError {
	var errs []ValidationError
	if dq.ConfidenceScore < 0 || dq.ConfidenceScore > 100 {
		errs = append(errs, ValidationError{"dataQuality.confidenceScore", fmt.Sprintf("%d outside 0-100", dq.ConfidenceScore)})
	}
	missingHigh := false
	for i, f := range dq.Factors {
		prefix := fmt.Sprintf("dataQuality.factors[%d]", i)
		if f.ID == "" {
			errs = append(errs, ValidationError{prefix + ".id", "required"})
		}
		if !f.Status.Valid() {
			errs = append(errs, ValidationError{prefix + ".status", fmt.Sprintf("invalid: %q", f.Status)})
		}
		if f.Impact == report.ImpactHigh && f.Status == report.StatusMissing {
			missingHigh = true
		}
	}
	if missingHigh && dq.OverallConfidence == report.ConfidenceHigh {
		errs = append(errs, ValidationError{"dataQuality.overallConfidence", "high despite a missing high-impact factor"})
	}
	return errs
}

func validateFreeTier(r *report.Result) []ValidationError {
	var errs []ValidationError
	if len(r.QuestionsToAsk) > tier.FreeMaxQuestions {
		errs = append(errs, ValidationError{"questionsToAsk", fmt.Sprintf("%d questions exceed the free limit of %d", len(r.QuestionsToAsk), tier.FreeMaxQuestions)})
	}
	if len(r.QuestionsToAsk) > 0 && r.QuestionsToAsk[0] != premium.TitleQuestion {
		errs = append(errs, ValidationError{"questionsToAsk[0]", "must be the title verification question"})
	}
	for i, f := range r.RedFlags {
		if f.ExpandedDetails != "" || f.Methodology != "" || f.DataSource != "" {
			errs = append(errs, ValidationError{fmt.Sprintf("redFlags[%d]", i), "detail fields exposed on free tier"})
		}
	}
	if r.MarketPricingAnalysis != nil || r.MaintenanceRiskAssessment != nil || r.SellerAnalysis != nil ||
		r.TailoredQuestions != nil || r.CarfaxSummary != nil || r.ComparableListings != nil {
		errs = append(errs, ValidationError{"premium", "paid sections present on free tier"})
	}
	return errs
}
