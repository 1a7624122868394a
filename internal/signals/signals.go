// Package signals defines the external data collaborators, the tagged
// outcome of calling them and the concurrent fan-out that gathers them.
// Raw collaborator payloads never leave this package.
package signals

import (
	"context"
	"errors"
	"time"

	"github.com/dshills/carverdict/internal/pricing"
	"github.com/dshills/carverdict/internal/report"
)

var (
	// ErrNotFound is returned by a source that has no record. It maps to Absent.
	ErrNotFound = errors.New("signals: no record found")
	// ErrInvalidVIN is returned by the history source when it rejects the
	// VIN format. It is the only collaborator error that aborts an analysis.
	ErrInvalidVIN = errors.New("signals: history source rejected VIN")
)

// OdometerReading is one mileage snapshot from the history record.
type OdometerReading struct {
	Mileage int       `yaml:"mileage" json:"mileage"`
	Date    time.Time `yaml:"date" json:"date"`
	Source  string    `yaml:"source" json:"source,omitempty"`
}

// VehicleHistory is the title, theft, damage and odometer record for a VIN.
// DamageRecords lists reported flood or fire damage events.
type VehicleHistory struct {
	TitleBrands   []string          `yaml:"title_brands"`
	SalvageRecord bool              `yaml:"salvage_record"`
	TheftRecords  int               `yaml:"theft_records"`
	AccidentCount int               `yaml:"accident_count"`
	DamageRecords []string          `yaml:"damage_records"`
	OwnerCount    int               `yaml:"owner_count"`
	Odometer      []OdometerReading `yaml:"odometer"`
}

// MarketEstimates are valuation figures for the year/make/model.
type MarketEstimates struct {
	Low     float64  `yaml:"low"`
	Average float64  `yaml:"average"`
	High    float64  `yaml:"high"`
	Median  *float64 `yaml:"median"`
}

// Listing is one raw market listing.
type Listing struct {
	Title      string  `yaml:"title"`
	Price      float64 `yaml:"price"`
	Mileage    int     `yaml:"mileage"`
	Location   string  `yaml:"location"`
	DaysListed int     `yaml:"days_listed"`
	Source     string  `yaml:"source"`
}

// MarketData bundles estimates and the listings they came from.
type MarketData struct {
	Estimates   MarketEstimates `yaml:"estimates"`
	RawListings []Listing       `yaml:"listings"`
}

// DisasterData describes disaster and flood exposure for a location.
type DisasterData struct {
	Region           string   `yaml:"region"`
	RecentDisasters  bool     `yaml:"recent_disasters"`
	HighFloodRisk    bool     `yaml:"high_flood_risk"`
	HistoricalEvents int      `yaml:"historical_events"`
	DeclaredEvents   []string `yaml:"declared_events"`
}

// ListingBehavior describes how long and how often the vehicle was listed.
type ListingBehavior struct {
	DaysListed  int  `yaml:"days_listed"`
	RelistCount int  `yaml:"relist_count"`
	IsStale     bool `yaml:"is_stale"`
}

// PricingBehavior describes the seller's price history. LowPriceLongListing
// is the seller service's own low-price/long-listing check.
type PricingBehavior struct {
	PriceChanges        int     `yaml:"price_changes"`
	VolatilityPercent   float64 `yaml:"volatility_percent"`
	LowPriceLongListing bool    `yaml:"low_price_long_listing"`
}

// ProfileConsistency describes whether the seller looks like a private party.
type ProfileConsistency struct {
	HiddenDealer   bool `yaml:"hidden_dealer"`
	ActiveListings int  `yaml:"active_listings"`
}

// SellerSignals is the seller-behaviour record. PricingRisk is filled by the
// analyzer after the pricing risk signals are derived.
type SellerSignals struct {
	ListingBehavior    ListingBehavior    `yaml:"listing_behavior"`
	PricingBehavior    PricingBehavior    `yaml:"pricing_behavior"`
	ProfileConsistency ProfileConsistency `yaml:"profile_consistency"`
	PricingRisk        pricing.Risk       `yaml:"-"`
}

// MarketQuery identifies the vehicle for a market lookup.
type MarketQuery struct {
	Year    int
	Make    string
	Model   string
	Trim    string
	Mileage int
	Tier    report.Tier
}

// HistorySource fetches the vehicle-history record.
type HistorySource interface {
	FetchVehicleHistory(ctx context.Context, vin string) (*VehicleHistory, error)
}

// MarketSource fetches valuation estimates and listings.
type MarketSource interface {
	FetchMarketData(ctx context.Context, q MarketQuery) (*MarketData, error)
}

// DisasterSource fetches disaster exposure for a location.
type DisasterSource interface {
	FetchDisasterData(ctx context.Context, location string, tier report.Tier) (*DisasterData, error)
}

// RecallSource fetches open recalls. A nil slice with nil error means no data.
type RecallSource interface {
	FetchRecalls(ctx context.Context, make, model string, year int) ([]report.Recall, error)
}

// SellerSource fetches seller-behaviour signals.
type SellerSource interface {
	FetchSellerSignals(ctx context.Context, vin string, askingPrice float64) (*SellerSignals, error)
}

// Sources is the set of collaborators. A nil source is never called.
type Sources struct {
	History  HistorySource
	Market   MarketSource
	Disaster DisasterSource
	Recalls  RecallSource
	Seller   SellerSource
}
