package premium

import "github.com/dshills/carverdict/internal/report"

// TitleQuestion always leads the question list.
const TitleQuestion = "Is the title clean and in your name, and can I see it before paying?"

// BaseQuestions are asked of every seller, title verification first.
func BaseQuestions() []string {
	return []string{
		TitleQuestion,
		"Do you have maintenance and service records?",
		"Can I take it to an independent mechanic for a pre-purchase inspection?",
		"Has the vehicle ever been in an accident or flood?",
	}
}

var flagQuestions = map[report.FlagID]report.TailoredQuestion{
	report.FlagOverpriced: {
		Question: "How did you arrive at the asking price?",
		Why:      "The price is well above comparable vehicles.",
	},
	report.FlagUnderpriced: {
		Question: "Why is the price so far below market?",
		Why:      "Deep discounts often hide mechanical, title or ownership problems.",
	},
	report.FlagUnusuallyLowPrice: {
		Question: "Is there anything wrong with the vehicle that explains the price?",
		Why:      "The price is unusually low against the market.",
	},
	report.FlagTooGoodForTooLong: {
		Question: "Why hasn't it sold yet at this price?",
		Why:      "A low-priced vehicle that lingers may have failed other buyers' inspections.",
	},
	report.FlagTitleBrands: {
		Question: "What caused the title brand, and who did the repairs?",
		Why:      "Branded titles affect safety, insurance and resale.",
	},
	report.FlagTheftRecord: {
		Question: "Can you show the recovery paperwork and a clear title?",
		Why:      "The vehicle has a theft record.",
	},
	report.FlagAccidentHistory: {
		Question: "Can I see the repair invoices for the reported accidents?",
		Why:      "Accident repairs vary widely in quality.",
	},
	report.FlagOdometerRollback: {
		Question: "Has the instrument cluster ever been replaced?",
		Why:      "Odometer records show a mileage decrease.",
	},
	report.FlagEnvironmentalRisk: {
		Question: "Where has the vehicle been kept during recent storms?",
		Why:      "The listing area has recent disasters or high flood risk.",
	},
	report.FlagDisasterRisk: {
		Question: "What flood or fire damage was repaired, and by whom?",
		Why:      "The history report lists flood or fire damage.",
	},
	report.FlagRelistingDetected: {
		Question: "Why did earlier sales fall through?",
		Why:      "The vehicle has been relisted.",
	},
	report.FlagHiddenDealer: {
		Question: "Is the vehicle titled in your own name?",
		Why:      "The seller may be an unlicensed dealer.",
	},
	report.FlagNoVIN: {
		Question: "What is the full 17-character VIN?",
		Why:      "History cannot be checked without it.",
	},
	report.FlagHighMileage: {
		Question: "Has the timing belt, transmission fluid and suspension been serviced?",
		Why:      "Mileage is well above average for the vehicle's age.",
	},
	report.FlagSuspiciousLowMileage: {
		Question: "Can you show dated service records confirming the mileage?",
		Why:      "Mileage is unusually low for the vehicle's age.",
	},
	report.FlagOpenRecalls: {
		Question: "Have the open recalls been completed at a dealer?",
		Why:      "The model has open safety recalls.",
	},
}

// TailoredQuestions returns one question per flag that has one, in flag order.
func TailoredQuestions(flags []report.RedFlag) []report.TailoredQuestion {
	var out []report.TailoredQuestion
	seen := map[report.FlagID]bool{}
	for _, f := range flags {
		q, ok := flagQuestions[f.ID]
		if !ok || seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		q.FlagID = f.ID
		out = append(out, q)
	}
	return out
}

// Questions merges the base questions with flag-driven ones, title question
// first, without duplicates.
func Questions(flags []report.RedFlag) []string {
	out := BaseQuestions()
	seen := make(map[string]bool, len(out))
	for _, q := range out {
		seen[q] = true
	}
	for _, tq := range TailoredQuestions(flags) {
		if !seen[tq.Question] {
			seen[tq.Question] = true
			out = append(out, tq.Question)
		}
	}
	return out
}
