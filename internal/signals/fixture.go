package signals

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/carverdict/internal/report"
)

// ErrFixtureFailure is returned by a fixture source listed under fail.
var ErrFixtureFailure = errors.New("signals: fixture source configured to fail")

// FixtureSet is an offline collaborator data set loaded from YAML. It stands
// in for the live signals API in tests, demos and the CLI's --fixtures mode.
//
// Market and recall entries are keyed by "year make model" (lowercase).
type FixtureSet struct {
	History   map[string]VehicleHistory  `yaml:"history"`
	Market    map[string]MarketData      `yaml:"market"`
	Disasters map[string]DisasterData    `yaml:"disasters"`
	Recalls   map[string][]report.Recall `yaml:"recalls"`
	Seller    map[string]SellerSignals   `yaml:"seller"`
	Fail      []string                   `yaml:"fail"`
	Invalid   []string                   `yaml:"invalid_vins"`
}

// LoadFixtures reads a FixtureSet from path.
func LoadFixtures(path string) (*FixtureSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("signals.LoadFixtures: %w", err)
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes a FixtureSet from YAML.
func ParseFixtures(data []byte) (*FixtureSet, error) {
	var fs FixtureSet
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("signals.ParseFixtures: %w", err)
	}
	return &fs, nil
}

// VehicleKey builds the lookup key for market and recall fixtures.
func VehicleKey(year int, make, model string) string {
	return strings.ToLower(strings.Join([]string{strconv.Itoa(year), strings.TrimSpace(make), strings.TrimSpace(model)}, " "))
}

// Sources returns the collaborator set backed by the fixtures.
func (f *FixtureSet) Sources() Sources {
	return Sources{History: f, Market: f, Disaster: f, Recalls: f, Seller: f}
}

func (f *FixtureSet) failing(source string) bool {
	for _, s := range f.Fail {
		if strings.EqualFold(s, source) {
			return true
		}
	}
	return false
}

// FetchVehicleHistory implements HistorySource.
func (f *FixtureSet) FetchVehicleHistory(ctx context.Context, vin string) (*VehicleHistory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, bad := range f.Invalid {
		if strings.EqualFold(bad, vin) {
			return nil, ErrInvalidVIN
		}
	}
	if f.failing("history") {
		return nil, ErrFixtureFailure
	}
	h, ok := f.History[strings.ToUpper(vin)]
	if !ok {
		return nil, ErrNotFound
	}
	return &h, nil
}

// FetchMarketData implements MarketSource.
func (f *FixtureSet) FetchMarketData(ctx context.Context, q MarketQuery) (*MarketData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.failing("market") {
		return nil, ErrFixtureFailure
	}
	md, ok := f.Market[VehicleKey(q.Year, q.Make, q.Model)]
	if !ok {
		return nil, ErrNotFound
	}
	if q.Tier != report.TierPaid {
		md.RawListings = nil
	}
	return &md, nil
}

// FetchDisasterData implements DisasterSource.
func (f *FixtureSet) FetchDisasterData(ctx context.Context, location string, _ report.Tier) (*DisasterData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.failing("disaster") {
		return nil, ErrFixtureFailure
	}
	d, ok := f.Disasters[strings.ToLower(strings.TrimSpace(location))]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

// FetchRecalls implements RecallSource. A vehicle with no entry has no recalls.
func (f *FixtureSet) FetchRecalls(ctx context.Context, vehicleMake, model string, year int) ([]report.Recall, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.failing("recalls") {
		return nil, ErrFixtureFailure
	}
	rs := f.Recalls[VehicleKey(year, vehicleMake, model)]
	if rs == nil {
		rs = []report.Recall{}
	}
	return rs, nil
}

// FetchSellerSignals implements SellerSource.
func (f *FixtureSet) FetchSellerSignals(ctx context.Context, vin string, _ float64) (*SellerSignals, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.failing("seller") {
		return nil, ErrFixtureFailure
	}
	s, ok := f.Seller[strings.ToUpper(vin)]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}
