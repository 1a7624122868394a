package schema

import (
	"strings"
	"testing"

	"github.com/dshills/carverdict/internal/premium"
	"github.com/dshills/carverdict/internal/report"
)

func validResult() *report.Result {
	flags := []report.RedFlag{
		{ID: report.FlagOverpriced, Title: "Priced 30% above", Severity: report.SeverityHigh, Category: report.CategoryPricing},
		{ID: report.FlagPrivateSale, Title: "Private sale", Severity: report.SeverityLow, Category: report.CategoryListing},
	}
	return &report.Result{
		ID:              "r-1",
		Tier:            report.TierFree,
		Verdict:         report.VerdictCaution,
		Score:           65,
		ConfidenceScore: 75,
		RedFlags:        flags,
		QuestionsToAsk:  []string{premium.TitleQuestion, "Why are you selling?"},
		VehicleInfo:     report.VehicleInfo{AskingPrice: 26000},
		DataQuality: report.DataQualityAssessment{
			OverallConfidence: report.ConfidenceMedium,
			ConfidenceScore:   60,
			Factors: []report.DataQualityFactor{
				{ID: "vin", Status: report.StatusComplete, Impact: report.ImpactHigh},
			},
		},
		Meta: report.Meta{Tool: "carverdict", Version: "1.0"},
	}
}

func hasPath(errs []ValidationError, path string) bool {
	for _, e := range errs {
		if e.Path == path {
			return true
		}
	}
	return false
}

func TestValidateValid(t *testing.T) {
	errs := Validate(validResult())
	for _, e := range errs {
		t.Errorf("unexpected error: %s", e)
	}
}

func TestValidateMissingTool(t *testing.T) {
	r := validResult()
	r.Meta.Tool = ""
	if !hasPath(Validate(r), "meta.tool") {
		t.Error("expected error for missing tool")
	}
}

func TestValidateVerdictScoreMismatch(t *testing.T) {
	r := validResult()
	r.Verdict = report.VerdictDeal
	if !hasPath(Validate(r), "verdict") {
		t.Error("expected verdict/score mismatch")
	}
}

func TestValidateCappedVerdict(t *testing.T) {
	r := validResult()
	r.Score = 35
	r.RedFlags = []report.RedFlag{
		{ID: report.FlagEnvironmentalRisk, Title: "Environmental risk", Severity: report.SeverityHigh, Category: report.CategoryDisaster},
	}
	r.Verdict = report.VerdictCaution
	r.Explanation.Capped = true
	if errs := Validate(r); len(errs) > 0 {
		t.Errorf("capped caution rejected: %v", errs)
	}

	r.Explanation.Capped = false
	if !hasPath(Validate(r), "verdict") {
		t.Error("caution at score 35 without the cap should be rejected")
	}
}

func TestValidateProbabilisticDisaster(t *testing.T) {
	r := validResult()
	r.Score = 30
	r.Verdict = report.VerdictDisaster
	r.RedFlags = []report.RedFlag{
		{ID: report.FlagUnusuallyLowPrice, Title: "Unusually low price", Severity: report.SeverityHigh, Category: report.CategoryPricing},
		{ID: report.FlagPrivateSale, Title: "Private sale", Severity: report.SeverityLow, Category: report.CategoryListing},
	}
	errs := Validate(r)
	found := false
	for _, e := range errs {
		if e.Path == "verdict" && strings.Contains(e.Message, "probabilistic") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected probabilistic disaster error, got %v", errs)
	}
}

func TestValidateFlagVocabulary(t *testing.T) {
	r := validResult()
	r.RedFlags = append(r.RedFlags, report.RedFlag{ID: "made-up", Title: "x", Severity: report.SeverityLow, Category: report.CategoryListing})
	if !hasPath(Validate(r), "redFlags[2].id") {
		t.Error("expected unknown flag id error")
	}
}

func TestValidateDuplicateFlag(t *testing.T) {
	r := validResult()
	r.RedFlags = append(r.RedFlags, r.RedFlags[1])
	if !hasPath(Validate(r), "redFlags[2].id") {
		t.Error("expected duplicate flag error")
	}
}

func TestValidateSortOrder(t *testing.T) {
	r := validResult()
	r.RedFlags[0], r.RedFlags[1] = r.RedFlags[1], r.RedFlags[0]
	if !hasPath(Validate(r), "redFlags[1].severity") {
		t.Error("expected sort order error")
	}
}

func TestValidateRanges(t *testing.T) {
	r := validResult()
	r.ConfidenceScore = 20
	r.DataQuality.ConfidenceScore = 101
	r.VehicleInfo.AskingPrice = 0
	errs := Validate(r)
	for _, path := range []string{"confidenceScore", "dataQuality.confidenceScore", "vehicleInfo.askingPrice"} {
		if !hasPath(errs, path) {
			t.Errorf("expected error at %s", path)
		}
	}
}

func TestValidateMissingHighImpactFactor(t *testing.T) {
	r := validResult()
	r.DataQuality.Factors[0].Status = report.StatusMissing
	r.DataQuality.OverallConfidence = report.ConfidenceHigh
	if !hasPath(Validate(r), "dataQuality.overallConfidence") {
		t.Error("expected overall confidence error")
	}
}

func TestValidateFreeTierRedaction(t *testing.T) {
	r := validResult()
	r.QuestionsToAsk = []string{"Why are you selling?", premium.TitleQuestion, "Can I inspect it?"}
	r.RedFlags[0].Methodology = "threshold"
	r.SellerAnalysis = &report.SellerAnalysis{RiskLevel: "low"}

	errs := Validate(r)
	for _, path := range []string{"questionsToAsk", "questionsToAsk[0]", "redFlags[0]", "premium"} {
		if !hasPath(errs, path) {
			t.Errorf("expected error at %s", path)
		}
	}

	r.Tier = report.TierPaid
	if errs := Validate(r); len(errs) > 0 {
		t.Errorf("paid tier should allow detail: %v", errs)
	}
}
