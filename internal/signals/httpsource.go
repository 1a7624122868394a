package signals

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dshills/carverdict/internal/report"
)

// HTTPSources implements every collaborator against one signals API.
type HTTPSources struct {
	client *Client
}

// NewHTTPSources wraps a Client.
func NewHTTPSources(c *Client) *HTTPSources {
	return &HTTPSources{client: c}
}

// Sources returns the collaborator set backed by this API.
func (h *HTTPSources) Sources() Sources {
	return Sources{History: h, Market: h, Disaster: h, Recalls: h, Seller: h}
}

type historyPayload struct {
	TitleBrands   []string `json:"titleBrands"`
	Salvage       bool     `json:"salvage"`
	TheftRecords  int      `json:"theftRecords"`
	AccidentCount int      `json:"accidentCount"`
	DamageRecords []struct {
		Type string `json:"type"`
	} `json:"damageRecords"`
	OwnerCount int `json:"ownerCount"`
	Odometer   []struct {
		Mileage int    `json:"mileage"`
		Date    string `json:"date"`
		Source  string `json:"source"`
	} `json:"odometer"`
}

// FetchVehicleHistory calls GET /v1/history/{vin}. A 400 or 422 means the
// source rejected the VIN.
func (h *HTTPSources) FetchVehicleHistory(ctx context.Context, vin string) (*VehicleHistory, error) {
	var p historyPayload
	err := h.client.getJSON(ctx, "/v1/history/"+url.PathEscape(vin), nil, &p)
	if isStatus(err, http.StatusBadRequest, http.StatusUnprocessableEntity) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVIN, err)
	}
	if err != nil {
		return nil, err
	}

	vh := &VehicleHistory{
		TitleBrands:   p.TitleBrands,
		SalvageRecord: p.Salvage,
		TheftRecords:  p.TheftRecords,
		AccidentCount: p.AccidentCount,
		OwnerCount:    p.OwnerCount,
	}
	for _, d := range p.DamageRecords {
		vh.DamageRecords = append(vh.DamageRecords, d.Type)
	}
	for _, o := range p.Odometer {
		date, err := time.Parse("2006-01-02", o.Date)
		if err != nil {
			return nil, fmt.Errorf("odometer date %q: %w", o.Date, err)
		}
		vh.Odometer = append(vh.Odometer, OdometerReading{Mileage: o.Mileage, Date: date, Source: o.Source})
	}
	return vh, nil
}

type marketPayload struct {
	Estimates struct {
		Low     float64  `json:"low"`
		Average float64  `json:"average"`
		High    float64  `json:"high"`
		Median  *float64 `json:"median"`
	} `json:"estimates"`
	Listings []struct {
		Title      string  `json:"title"`
		Price      float64 `json:"price"`
		Mileage    int     `json:"mileage"`
		Location   string  `json:"location"`
		DaysListed int     `json:"daysListed"`
		Source     string  `json:"source"`
	} `json:"listings"`
}

// FetchMarketData calls GET /v1/market. Comparable listings are only
// requested for the paid tier.
func (h *HTTPSources) FetchMarketData(ctx context.Context, q MarketQuery) (*MarketData, error) {
	params := url.Values{}
	params.Set("year", strconv.Itoa(q.Year))
	params.Set("make", q.Make)
	params.Set("model", q.Model)
	if q.Trim != "" {
		params.Set("trim", q.Trim)
	}
	if q.Mileage > 0 {
		params.Set("mileage", strconv.Itoa(q.Mileage))
	}
	params.Set("listings", strconv.FormatBool(q.Tier == report.TierPaid))

	var p marketPayload
	if err := h.client.getJSON(ctx, "/v1/market", params, &p); err != nil {
		return nil, err
	}
	md := &MarketData{Estimates: MarketEstimates{
		Low:     p.Estimates.Low,
		Average: p.Estimates.Average,
		High:    p.Estimates.High,
		Median:  p.Estimates.Median,
	}}
	for _, l := range p.Listings {
		md.RawListings = append(md.RawListings, Listing(l))
	}
	return md, nil
}

type disasterPayload struct {
	Region           string   `json:"region"`
	RecentDisasters  bool     `json:"recentDisasters"`
	HighFloodRisk    bool     `json:"highFloodRisk"`
	HistoricalEvents int      `json:"historicalEvents"`
	DeclaredEvents   []string `json:"declaredEvents"`
}

// FetchDisasterData calls GET /v1/disasters.
func (h *HTTPSources) FetchDisasterData(ctx context.Context, location string, tier report.Tier) (*DisasterData, error) {
	params := url.Values{}
	params.Set("location", location)
	params.Set("detail", strconv.FormatBool(tier == report.TierPaid))

	var p disasterPayload
	if err := h.client.getJSON(ctx, "/v1/disasters", params, &p); err != nil {
		return nil, err
	}
	d := DisasterData(p)
	return &d, nil
}

type recallPayload struct {
	Recalls []struct {
		Campaign  string `json:"campaignNumber"`
		Component string `json:"component"`
		Summary   string `json:"summary"`
		Remedy    string `json:"remedy"`
	} `json:"recalls"`
}

// FetchRecalls calls GET /v1/recalls. An empty list is a valid answer.
func (h *HTTPSources) FetchRecalls(ctx context.Context, vehicleMake, model string, year int) ([]report.Recall, error) {
	params := url.Values{}
	params.Set("make", vehicleMake)
	params.Set("model", model)
	params.Set("year", strconv.Itoa(year))

	var p recallPayload
	if err := h.client.getJSON(ctx, "/v1/recalls", params, &p); err != nil {
		return nil, err
	}
	out := make([]report.Recall, 0, len(p.Recalls))
	for _, r := range p.Recalls {
		out = append(out, report.Recall(r))
	}
	return out, nil
}

type sellerPayload struct {
	DaysListed          int     `json:"daysListed"`
	RelistCount         int     `json:"relistCount"`
	Stale               bool    `json:"stale"`
	PriceChanges        int     `json:"priceChanges"`
	VolatilityPercent   float64 `json:"volatilityPercent"`
	LowPriceLongListing bool    `json:"lowPriceLongListing"`
	HiddenDealer        bool    `json:"hiddenDealer"`
	ActiveListings      int     `json:"activeListings"`
}

// FetchSellerSignals calls GET /v1/seller.
func (h *HTTPSources) FetchSellerSignals(ctx context.Context, vin string, askingPrice float64) (*SellerSignals, error) {
	params := url.Values{}
	params.Set("vin", vin)
	params.Set("price", strconv.FormatFloat(askingPrice, 'f', 2, 64))

	var p sellerPayload
	if err := h.client.getJSON(ctx, "/v1/seller", params, &p); err != nil {
		return nil, fmt.Errorf("seller signals: %w", err)
	}
	return &SellerSignals{
		ListingBehavior: ListingBehavior{
			DaysListed:  p.DaysListed,
			RelistCount: p.RelistCount,
			IsStale:     p.Stale,
		},
		PricingBehavior: PricingBehavior{
			PriceChanges:        p.PriceChanges,
			VolatilityPercent:   p.VolatilityPercent,
			LowPriceLongListing: p.LowPriceLongListing,
		},
		ProfileConsistency: ProfileConsistency{
			HiddenDealer:   p.HiddenDealer,
			ActiveListings: p.ActiveListings,
		},
	}, nil
}
