package poller

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/nft-pricewatch/internal/aggregator"
	"github.com/rickgao/nft-pricewatch/internal/api"
	"github.com/rickgao/nft-pricewatch/internal/model"
)

// Sources fetches every price source. Each method returns nil when its
// source has nothing usable. *api.Client implements it.
type Sources interface {
	FetchGetgems(ctx context.Context) *model.Listing
	FetchReferencePrice(ctx context.Context) *decimal.Decimal
	FetchSwapBuy(ctx context.Context) *decimal.Decimal
	FetchSwapSell(ctx context.Context) *decimal.Decimal
	FetchFragment(ctx context.Context) *model.Listing
	FetchXRare(ctx context.Context) *model.Listing
	FetchMarketApp(ctx context.Context) *model.Listing
}

var _ Sources = (*api.Client)(nil)

// Results holds the outcome of every source for one cycle. Nil means absent.
type Results struct {
	Getgems   *model.Listing
	Reference *decimal.Decimal
	SwapBuy   *decimal.Decimal
	SwapSell  *decimal.Decimal
	Fragment  *model.Listing
	XRare     *model.Listing
	MarketApp *model.Listing
}

// FetchAll runs every fetch concurrently and waits for all of them. A failed
// source never cancels its siblings.
func FetchAll(ctx context.Context, sources Sources) Results {
	return fetchAll(ctx, sources, slog.Default())
}

func fetchAll(ctx context.Context, sources Sources, logger *slog.Logger) Results {
	var (
		r Results
		g errgroup.Group
	)

	// Each goroutine owns one field of r.
	g.Go(func() error {
		defer recoverSource(logger, api.SourceGetgems)
		r.Getgems = sources.FetchGetgems(ctx)
		return nil
	})
	g.Go(func() error {
		defer recoverSource(logger, api.SourcePrice)
		r.Reference = sources.FetchReferencePrice(ctx)
		return nil
	})
	g.Go(func() error {
		defer recoverSource(logger, api.SourceStonfiBuy)
		r.SwapBuy = sources.FetchSwapBuy(ctx)
		return nil
	})
	g.Go(func() error {
		defer recoverSource(logger, api.SourceStonfiSell)
		r.SwapSell = sources.FetchSwapSell(ctx)
		return nil
	})
	g.Go(func() error {
		defer recoverSource(logger, api.SourceFragment)
		r.Fragment = sources.FetchFragment(ctx)
		return nil
	})
	g.Go(func() error {
		defer recoverSource(logger, api.SourceXRare)
		r.XRare = sources.FetchXRare(ctx)
		return nil
	})
	g.Go(func() error {
		defer recoverSource(logger, api.SourceMarketApp)
		r.MarketApp = sources.FetchMarketApp(ctx)
		return nil
	})

	_ = g.Wait()
	return r
}

// recoverSource turns a panicking fetch into an absent result.
func recoverSource(logger *slog.Logger, source string) {
	if r := recover(); r != nil {
		logger.Error("source fetch panicked", "source", source, "panic", r)
	}
}

// Inputs converts the results for the merger.
func (r Results) Inputs() aggregator.Inputs {
	return aggregator.Inputs{
		Getgems:   r.Getgems,
		Fragment:  r.Fragment,
		XRare:     r.XRare,
		MarketApp: r.MarketApp,
		Reference: r.Reference,
		SwapBuy:   r.SwapBuy,
		SwapSell:  r.SwapSell,
	}
}

// Present reports whether the named source returned a value.
func (r Results) Present(source string) bool {
	switch source {
	case api.SourceGetgems:
		return r.Getgems != nil
	case api.SourcePrice:
		return r.Reference != nil
	case api.SourceStonfiBuy:
		return r.SwapBuy != nil
	case api.SourceStonfiSell:
		return r.SwapSell != nil
	case api.SourceFragment:
		return r.Fragment != nil
	case api.SourceXRare:
		return r.XRare != nil
	case api.SourceMarketApp:
		return r.MarketApp != nil
	}
	return false
}

// Count returns how many sources returned a value.
func (r Results) Count() int {
	n := 0
	for _, s := range api.AllSources {
		if r.Present(s) {
			n++
		}
	}
	return n
}
