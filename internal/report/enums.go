package report

// Verdict is the three-way purchase outcome.
type Verdict string

const (
	VerdictDeal     Verdict = "deal"
	VerdictCaution  Verdict = "caution"
	VerdictDisaster Verdict = "disaster"
)

func (v Verdict) Valid() bool {
	switch v {
	case VerdictDeal, VerdictCaution, VerdictDisaster:
		return true
	}
	return false
}

// Ordinal returns 0 for deal, 1 for caution, 2 for disaster and -1 otherwise.
func (v Verdict) Ordinal() int {
	switch v {
	case VerdictDeal:
		return 0
	case VerdictCaution:
		return 1
	case VerdictDisaster:
		return 2
	default:
		return -1
	}
}

// Severity indicates the weight of a red flag.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Rank returns a sort key (lower = more severe).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// Category groups red flags by the kind of evidence behind them.
type Category string

const (
	CategoryPricing   Category = "pricing"
	CategoryHistory   Category = "history"
	CategoryTitle     Category = "title"
	CategoryDataGap   Category = "data-gap"
	CategoryListing   Category = "listing"
	CategoryOwnership Category = "ownership"
	CategoryDisaster  Category = "disaster"
	CategorySeller    Category = "seller"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryPricing, CategoryHistory, CategoryTitle, CategoryDataGap,
		CategoryListing, CategoryOwnership, CategoryDisaster, CategorySeller:
		return true
	}
	return false
}

// Tier is the access level that controls how much detail a result exposes.
type Tier string

const (
	TierFree Tier = "free"
	TierPaid Tier = "paid"
)

func (t Tier) Valid() bool {
	return t == TierFree || t == TierPaid
}

// FlagID is the stable key of a red flag. Downstream logic tests membership by id.
type FlagID string

const (
	FlagOverpriced           FlagID = "overpriced"
	FlagUnderpriced          FlagID = "underpriced"
	FlagUnusuallyLowPrice    FlagID = "unusually-low-price"
	FlagTooGoodForTooLong    FlagID = "too-good-for-too-long"
	FlagTitleBrands          FlagID = "title-brands"
	FlagTheftRecord          FlagID = "theft-record"
	FlagAccidentHistory      FlagID = "accident-history"
	FlagOdometerRollback     FlagID = "odometer-rollback"
	FlagEnvironmentalRisk    FlagID = "environmental-risk"
	FlagDisasterRisk         FlagID = "disaster-risk"
	FlagRelistingDetected    FlagID = "relisting-detected"
	FlagStaleListing         FlagID = "stale-listing"
	FlagPriceVolatility      FlagID = "price-volatility"
	FlagTooGoodTooLong       FlagID = "too-good-too-long"
	FlagHiddenDealer         FlagID = "hidden-dealer"
	FlagNoVIN                FlagID = "no-vin"
	FlagHighAge              FlagID = "high-age"
	FlagHighMileage          FlagID = "high-mileage"
	FlagSuspiciousLowMileage FlagID = "suspicious-low-mileage"
	FlagPrivateSale          FlagID = "private-sale"
	FlagOpenRecalls          FlagID = "open-recalls"
)

// AllFlagIDs is the complete red flag vocabulary.
var AllFlagIDs = []FlagID{
	FlagOverpriced, FlagUnderpriced, FlagUnusuallyLowPrice, FlagTooGoodForTooLong,
	FlagTitleBrands, FlagTheftRecord, FlagAccidentHistory, FlagOdometerRollback,
	FlagEnvironmentalRisk, FlagDisasterRisk, FlagRelistingDetected, FlagStaleListing,
	FlagPriceVolatility, FlagTooGoodTooLong, FlagHiddenDealer, FlagNoVIN,
	FlagHighAge, FlagHighMileage, FlagSuspiciousLowMileage, FlagPrivateSale,
	FlagOpenRecalls,
}

func (f FlagID) Valid() bool {
	for _, id := range AllFlagIDs {
		if id == f {
			return true
		}
	}
	return false
}

// QualityStatus describes how complete one data dimension is.
type QualityStatus string

const (
	StatusComplete    QualityStatus = "complete"
	StatusPartial     QualityStatus = "partial"
	StatusUnavailable QualityStatus = "unavailable"
	StatusMissing     QualityStatus = "missing"
)

func (s QualityStatus) Valid() bool {
	switch s {
	case StatusComplete, StatusPartial, StatusUnavailable, StatusMissing:
		return true
	}
	return false
}

// Impact is how much a data dimension matters to the verdict.
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// ConfidenceLevel is the coarse data-quality reading.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// PriceClass buckets a vehicle for listing-duration thresholds.
type PriceClass string

const (
	ClassCommon PriceClass = "common"
	ClassLuxury PriceClass = "luxury"
	ClassExotic PriceClass = "exotic"
)

func (c PriceClass) Valid() bool {
	switch c {
	case ClassCommon, ClassLuxury, ClassExotic:
		return true
	}
	return false
}
