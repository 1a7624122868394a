// Package report defines the verdict result types and the deterministic
// scoring and assembly logic that produces them.
package report

import "time"

// Result is the top-level output of one analysis.
type Result struct {
	ID              string                `json:"id"`
	Tier            Tier                  `json:"tier"`
	Verdict         Verdict               `json:"verdict"`
	ConfidenceScore int                   `json:"confidenceScore"`
	Score           int                   `json:"score"`
	Summary         string                `json:"summary"`
	RedFlags        []RedFlag             `json:"redFlags"`
	QuestionsToAsk  []string              `json:"questionsToAsk"`
	KnownData       []string              `json:"knownData"`
	UnknownData     []string              `json:"unknownData"`
	VehicleInfo     VehicleInfo           `json:"vehicleInfo"`
	DataQuality     DataQualityAssessment `json:"dataQuality"`
	Explanation     Explanation           `json:"explanation"`

	MarketPricingAnalysis     *MarketPricingAnalysis     `json:"marketPricingAnalysis,omitempty"`
	MaintenanceRiskAssessment *MaintenanceRiskAssessment `json:"maintenanceRiskAssessment,omitempty"`
	SellerAnalysis            *SellerAnalysis            `json:"sellerAnalysis,omitempty"`
	TailoredQuestions         []TailoredQuestion         `json:"tailoredQuestions,omitempty"`
	CarfaxSummary             *HistorySummary            `json:"carfaxSummary,omitempty"`
	ComparableListings        []ComparableListing        `json:"comparableListings,omitempty"`
	Recalls                   []Recall                   `json:"recalls,omitempty"`

	Meta Meta `json:"meta"`
}

// VehicleInfo holds the identifying and pricing attributes of the listed vehicle.
type VehicleInfo struct {
	VIN              string     `json:"vin,omitempty"`
	Year             int        `json:"year,omitempty"`
	Make             string     `json:"make,omitempty"`
	Model            string     `json:"model,omitempty"`
	Trim             string     `json:"trim,omitempty"`
	Mileage          int        `json:"mileage,omitempty"`
	AskingPrice      float64    `json:"askingPrice"`
	EstimatedValue   float64    `json:"estimatedValue,omitempty"`
	PriceDifference  float64    `json:"priceDifference"`
	PriceDiffPercent float64    `json:"priceDiffPercent"`
	Location         string     `json:"location,omitempty"`
	PriceClass       PriceClass `json:"priceClass,omitempty"`
}

// RedFlag is a discrete, severity-tagged finding. It is never mutated after creation.
type RedFlag struct {
	ID              FlagID   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Severity        Severity `json:"severity"`
	Category        Category `json:"category"`
	ExpandedDetails string   `json:"expandedDetails,omitempty"`
	Methodology     string   `json:"methodology,omitempty"`
	DataSource      string   `json:"dataSource,omitempty"`
}

// DataQualityFactor scores one input dimension.
type DataQualityFactor struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Status      QualityStatus `json:"status"`
	Impact      Impact        `json:"impact"`
	Explanation string        `json:"explanation"`
}

// DataQualityAssessment aggregates the factors into a confidence reading.
type DataQualityAssessment struct {
	OverallConfidence ConfidenceLevel     `json:"overallConfidence"`
	ConfidenceScore   int                 `json:"confidenceScore"`
	Factors           []DataQualityFactor `json:"factors"`
	Summary           string              `json:"summary"`
	Recommendations   []string            `json:"recommendations"`
}

// Explanation breaks the verdict down by risk family.
type Explanation struct {
	StructuralRisks     []string `json:"structuralRisks"`
	MarketRisks         []string `json:"marketRisks"`
	SellerBehaviorRisks []string `json:"sellerBehaviorRisks"`
	DataQualityImpact   string   `json:"dataQualityImpact"`
	// Capped is set when a disaster score was held at caution because only
	// probabilistic signals drove it.
	Capped bool `json:"capped,omitempty"`
}

// MarketPricingAnalysis positions the asking price against live listings.
type MarketPricingAnalysis struct {
	Position          string  `json:"position"`
	MarketMedian      float64 `json:"marketMedian"`
	MarketLow         float64 `json:"marketLow"`
	MarketHigh        float64 `json:"marketHigh"`
	PercentFromMedian float64 `json:"percentFromMedian"`
	SampleSize        int     `json:"sampleSize"`
	Summary           string  `json:"summary"`
}

// Market positions.
const (
	PositionBelow = "below-market"
	PositionAt    = "at-market"
	PositionAbove = "above-market"
)

// MaintenanceRiskAssessment estimates near-term ownership cost risk.
type MaintenanceRiskAssessment struct {
	Level               string   `json:"level"`
	Score               int      `json:"score"`
	Factors             []string `json:"factors"`
	EstimatedAnnualCost int      `json:"estimatedAnnualCost"`
}

// Maintenance risk levels.
const (
	MaintenanceLow      = "low"
	MaintenanceModerate = "moderate"
	MaintenanceElevated = "elevated"
	MaintenanceHigh     = "high"
)

// SellerAnalysis summarises seller-behaviour signals.
type SellerAnalysis struct {
	RiskLevel         string   `json:"riskLevel"`
	DaysListed        int      `json:"daysListed"`
	RelistCount       int      `json:"relistCount"`
	PriceChanges      int      `json:"priceChanges"`
	VolatilityPercent float64  `json:"volatilityPercent"`
	Signals           []string `json:"signals"`
}

// TailoredQuestion is a flag-specific question for the seller.
type TailoredQuestion struct {
	Question string `json:"question"`
	Why      string `json:"why"`
	FlagID   FlagID `json:"flagId,omitempty"`
}

// HistorySummary condenses the vehicle-history record.
type HistorySummary struct {
	OwnerCount          int      `json:"ownerCount"`
	TitleBrands         []string `json:"titleBrands"`
	SalvageRecord       bool     `json:"salvageRecord"`
	TheftRecords        int      `json:"theftRecords"`
	AccidentCount       int      `json:"accidentCount"`
	OdometerReadings    int      `json:"odometerReadings"`
	LastReportedMileage int      `json:"lastReportedMileage"`
	LastReportedAt      string   `json:"lastReportedAt,omitempty"`
}

// ComparableListing is one market listing similar to the subject vehicle.
type ComparableListing struct {
	Title      string  `json:"title"`
	Price      float64 `json:"price"`
	Mileage    int     `json:"mileage"`
	Location   string  `json:"location,omitempty"`
	DaysListed int     `json:"daysListed"`
	Source     string  `json:"source"`
}

// Recall is an open safety recall campaign.
type Recall struct {
	Campaign  string `json:"campaign"`
	Component string `json:"component"`
	Summary   string `json:"summary"`
	Remedy    string `json:"remedy,omitempty"`
}

// Meta records how the result was produced.
type Meta struct {
	Tool        string    `json:"tool"`
	Version     string    `json:"version"`
	Profile     string    `json:"profile"`
	InputHash   string    `json:"inputHash,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}
