package signals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/carverdict/internal/redact"
	"github.com/dshills/carverdict/internal/report"
)

// Query is what the collaborators are asked about.
type Query struct {
	VIN         string
	Year        int
	Make        string
	Model       string
	Trim        string
	Mileage     int
	Location    string
	AskingPrice float64
	Tier        report.Tier
}

// Timeouts bounds each collaborator call independently.
type Timeouts struct {
	History  time.Duration
	Market   time.Duration
	Disaster time.Duration
	Recalls  time.Duration
	Seller   time.Duration
}

// DefaultTimeouts returns per-call limits in the 10-15s range.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		History:  15 * time.Second,
		Market:   15 * time.Second,
		Disaster: 10 * time.Second,
		Recalls:  10 * time.Second,
		Seller:   12 * time.Second,
	}
}

// Bundle holds the outcome of every collaborator for one analysis.
type Bundle struct {
	History  Outcome[VehicleHistory]
	Market   Outcome[MarketData]
	Disaster Outcome[DisasterData]
	Recalls  Outcome[[]report.Recall]
	Seller   Outcome[SellerSignals]
}

// Attempted counts the collaborators that were called.
func (b Bundle) Attempted() int {
	n := 0
	for _, asked := range []bool{b.History.Asked(), b.Market.Asked(), b.Disaster.Asked(), b.Recalls.Asked(), b.Seller.Asked()} {
		if asked {
			n++
		}
	}
	return n
}

// Succeeded counts the collaborators that returned data.
func (b Bundle) Succeeded() int {
	n := 0
	for _, ok := range []bool{b.History.OK(), b.Market.OK(), b.Disaster.OK(), b.Recalls.OK(), b.Seller.OK()} {
		if ok {
			n++
		}
	}
	return n
}

// Gatherer fans a query out to every collaborator.
type Gatherer struct {
	Sources  Sources
	Timeouts Timeouts
	Logger   zerolog.Logger
}

// Gather calls all collaborators concurrently and waits for all of them.
// Each failure is absorbed into its Outcome. The only returned error is a
// history source rejecting the VIN, which is a user input error.
func (g *Gatherer) Gather(ctx context.Context, q Query) (Bundle, error) {
	var b Bundle
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if g.Sources.History == nil {
			b.History = Skipped[VehicleHistory]("history source not configured")
			return nil
		}
		if q.VIN == "" {
			b.History = Skipped[VehicleHistory]("no VIN supplied")
			return nil
		}
		out, err := call(ctx, g.Timeouts.History, func(ctx context.Context) (*VehicleHistory, error) {
			return g.Sources.History.FetchVehicleHistory(ctx, q.VIN)
		})
		if errors.Is(err, ErrInvalidVIN) {
			return fmt.Errorf("signals.Gather: history: %w", err)
		}
		b.History = logged(g.Logger, "history", q, out)
		return nil
	})

	eg.Go(func() error {
		switch {
		case g.Sources.Market == nil:
			b.Market = Skipped[MarketData]("market source not configured")
		case q.Year == 0 || q.Make == "" || q.Model == "":
			b.Market = Skipped[MarketData]("year, make and model are required")
		default:
			mq := MarketQuery{Year: q.Year, Make: q.Make, Model: q.Model, Trim: q.Trim, Mileage: q.Mileage, Tier: q.Tier}
			out, _ := call(ctx, g.Timeouts.Market, func(ctx context.Context) (*MarketData, error) {
				return g.Sources.Market.FetchMarketData(ctx, mq)
			})
			b.Market = logged(g.Logger, "market", q, out)
		}
		return nil
	})

	eg.Go(func() error {
		switch {
		case g.Sources.Disaster == nil:
			b.Disaster = Skipped[DisasterData]("disaster source not configured")
		case q.Location == "":
			b.Disaster = Skipped[DisasterData]("no location supplied")
		default:
			out, _ := call(ctx, g.Timeouts.Disaster, func(ctx context.Context) (*DisasterData, error) {
				return g.Sources.Disaster.FetchDisasterData(ctx, q.Location, q.Tier)
			})
			b.Disaster = logged(g.Logger, "disaster", q, out)
		}
		return nil
	})

	eg.Go(func() error {
		switch {
		case g.Sources.Recalls == nil:
			b.Recalls = Skipped[[]report.Recall]("recall source not configured")
		case q.Year == 0 || q.Make == "" || q.Model == "":
			b.Recalls = Skipped[[]report.Recall]("year, make and model are required")
		default:
			out, _ := call(ctx, g.Timeouts.Recalls, func(ctx context.Context) (*[]report.Recall, error) {
				rs, err := g.Sources.Recalls.FetchRecalls(ctx, q.Make, q.Model, q.Year)
				if err != nil || rs == nil {
					return nil, err
				}
				return &rs, nil
			})
			b.Recalls = logged(g.Logger, "recalls", q, out)
		}
		return nil
	})

	eg.Go(func() error {
		switch {
		case g.Sources.Seller == nil:
			b.Seller = Skipped[SellerSignals]("seller source not configured")
		case q.VIN == "":
			b.Seller = Skipped[SellerSignals]("no VIN supplied")
		default:
			out, _ := call(ctx, g.Timeouts.Seller, func(ctx context.Context) (*SellerSignals, error) {
				return g.Sources.Seller.FetchSellerSignals(ctx, q.VIN, q.AskingPrice)
			})
			b.Seller = logged(g.Logger, "seller", q, out)
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return Bundle{}, err
	}
	return b, nil
}

// call runs fetch under its own timeout and maps the result to an Outcome.
// The raw error is returned alongside so the caller can detect fatal errors.
func call[T any](ctx context.Context, timeout time.Duration, fetch func(context.Context) (*T, error)) (Outcome[T], error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	v, err := fetch(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		return Absent[T]("no record found"), err
	case errors.Is(err, context.DeadlineExceeded):
		return Failed[T](fmt.Errorf("timed out after %s", timeout)), err
	case err != nil:
		return Failed[T](err), err
	case v == nil:
		return Absent[T]("empty response"), nil
	}
	return OK(*v), nil
}

// logged records absorbed failures and passes the outcome through.
func logged[T any](log zerolog.Logger, source string, q Query, out Outcome[T]) Outcome[T] {
	switch out.State {
	case StateFailed:
		log.Warn().Str("source", source).Str("vin", redact.VIN(q.VIN)).Str("reason", out.Reason).Msg("collaborator failed, continuing without it")
	case StateAbsent:
		log.Debug().Str("source", source).Str("vin", redact.VIN(q.VIN)).Str("reason", out.Reason).Msg("collaborator returned no data")
	}
	return out
}
