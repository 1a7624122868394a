package signals

import (
	"context"
	"time"

	"github.com/dshills/carverdict/internal/report"
)

// Static is a test double that returns canned values for every collaborator.
// A nil value with a nil error reports ErrNotFound. Delay, when set, blocks
// each call until it elapses or ctx is done.
type Static struct {
	History  *VehicleHistory
	Market   *MarketData
	Disaster *DisasterData
	Recalls  []report.Recall
	Seller   *SellerSignals

	HistoryErr  error
	MarketErr   error
	DisasterErr error
	RecallsErr  error
	SellerErr   error

	Delay time.Duration
}

// Sources returns a collaborator set where every source is s.
func (s *Static) Sources() Sources {
	return Sources{History: s, Market: s, Disaster: s, Recalls: s, Seller: s}
}

func (s *Static) wait(ctx context.Context) error {
	if s.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func respond[T any](ctx context.Context, s *Static, v *T, err error) (*T, error) {
	if werr := s.wait(ctx); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrNotFound
	}
	return v, nil
}

func (s *Static) FetchVehicleHistory(ctx context.Context, _ string) (*VehicleHistory, error) {
	return respond(ctx, s, s.History, s.HistoryErr)
}

func (s *Static) FetchMarketData(ctx context.Context, _ MarketQuery) (*MarketData, error) {
	return respond(ctx, s, s.Market, s.MarketErr)
}

func (s *Static) FetchDisasterData(ctx context.Context, _ string, _ report.Tier) (*DisasterData, error) {
	return respond(ctx, s, s.Disaster, s.DisasterErr)
}

func (s *Static) FetchRecalls(ctx context.Context, _, _ string, _ int) ([]report.Recall, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.Recalls, s.RecallsErr
}

func (s *Static) FetchSellerSignals(ctx context.Context, _ string, _ float64) (*SellerSignals, error) {
	return respond(ctx, s, s.Seller, s.SellerErr)
}
