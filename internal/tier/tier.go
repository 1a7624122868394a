// Package tier projects a full result onto what an access tier may see.
package tier

import (
	"github.com/dshills/carverdict/internal/premium"
	"github.com/dshills/carverdict/internal/report"
)

// Free tier limits.
const (
	FreeMaxQuestions = 2
	FreeMaxDataItems = 3
)

// Project returns the view of r for tier t. The free tier keeps every flag
// but drops their detail fields, the premium sections and most questions.
// The paid tier is an unredacted pass-through. r is never modified.
func Project(r report.Result, t report.Tier) report.Result {
	out := r
	out.Tier = t
	if t == report.TierPaid {
		return out
	}

	out.RedFlags = make([]report.RedFlag, len(r.RedFlags))
	for i, f := range r.RedFlags {
		f.ExpandedDetails = ""
		f.Methodology = ""
		f.DataSource = ""
		out.RedFlags[i] = f
	}

	out.QuestionsToAsk = freeQuestions(r.QuestionsToAsk)
	out.KnownData = abbreviate(r.KnownData, FreeMaxDataItems)
	out.UnknownData = abbreviate(r.UnknownData, FreeMaxDataItems)

	out.MarketPricingAnalysis = nil
	out.MaintenanceRiskAssessment = nil
	out.SellerAnalysis = nil
	out.TailoredQuestions = nil
	out.CarfaxSummary = nil
	out.ComparableListings = nil
	return out
}

// freeQuestions leads with the title question and keeps at most
// FreeMaxQuestions entries.
func freeQuestions(qs []string) []string {
	out := []string{premium.TitleQuestion}
	for _, q := range qs {
		if len(out) == FreeMaxQuestions {
			break
		}
		if q != premium.TitleQuestion {
			out = append(out, q)
		}
	}
	return out
}

func abbreviate(items []string, n int) []string {
	if len(items) > n {
		items = items[:n]
	}
	return append([]string{}, items...)
}
