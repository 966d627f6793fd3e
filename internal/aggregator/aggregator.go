package aggregator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/nft-pricewatch/internal/model"
)

// pricePlaces is the number of decimal places every output price is rounded to.
const pricePlaces = 2

// Commissions holds the sale commission rate of each marketplace as a fraction.
type Commissions struct {
	Getgems   decimal.Decimal
	Fragment  decimal.Decimal
	MarketApp decimal.Decimal
}

// DefaultCommissions returns the production rates.
func DefaultCommissions() Commissions {
	return Commissions{
		Getgems:   decimal.RequireFromString("0.05"),
		Fragment:  decimal.RequireFromString("0.05"),
		MarketApp: decimal.RequireFromString("0.01"),
	}
}

// Combined is the rate applied to Getgems sales: the Getgems rate plus the
// Fragment rate.
func (c Commissions) Combined() decimal.Decimal {
	return c.Getgems.Add(c.Fragment)
}

// table is the commission section reported in the snapshot.
func (c Commissions) table() model.Commissions {
	return model.Commissions{
		GetgemsSale:   model.NewNumber(c.Getgems),
		FragmentSale:  model.NewNumber(c.Fragment),
		MarketAppSale: model.NewNumber(c.MarketApp),
	}
}

// Inputs is the outcome of one fetch cycle. Nil fields are absent sources.
type Inputs struct {
	Getgems   *model.Listing
	Fragment  *model.Listing
	XRare     *model.Listing
	MarketApp *model.Listing

	Reference *decimal.Decimal // TON to USD
	SwapBuy   *decimal.Decimal
	SwapSell  *decimal.Decimal
}

// Combine builds the snapshot for one cycle stamped with now.
func Combine(in Inputs, commissions Commissions, now time.Time) model.Snapshot {
	snap := model.Snapshot{
		Getgems:   listingEntry(in.Getgems, commissions.Combined(), in.Reference),
		Fragment:  listingEntry(in.Fragment, commissions.Fragment, in.Reference),
		XRare:     listingEntry(in.XRare, decimal.Zero, in.Reference),
		MarketApp: listingEntry(in.MarketApp, commissions.MarketApp, in.Reference),
		Shardify:  swapEntry(model.NewSwapQuote(in.SwapBuy, in.SwapSell), in.Reference),
		General: model.General{
			LastUpdate:  now,
			Commissions: commissions.table(),
		},
	}
	if in.Reference != nil {
		snap.General.PriceTON = model.NumberPtr(*in.Reference)
	}
	return snap
}

// AfterFee returns price less a commission rate, rounded.
func AfterFee(price, rate decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(1).Sub(rate)).Round(pricePlaces)
}

// ToFiat converts a native price with the reference rate. It returns nil when
// the rate is unknown.
func ToFiat(price decimal.Decimal, ref *decimal.Decimal) *model.Number {
	if ref == nil {
		return nil
	}
	return model.NumberPtr(price.Mul(*ref).Round(pricePlaces))
}

func listingEntry(l *model.Listing, rate decimal.Decimal, ref *decimal.Decimal) model.Entry {
	if l == nil {
		return model.Entry{}
	}
	// Fiat sale price converts the already rounded native sale price, so
	// price_usdt_sale is round(round(p*(1-c))*ref), not round(p*(1-c)*ref).
	after := AfterFee(l.PriceTON, rate)
	return model.Entry{Offer: &model.Offer{
		Link:          l.Link,
		PriceTON:      model.NewNumber(l.PriceTON),
		PriceTONSale:  model.NewNumber(after),
		PriceUSDT:     ToFiat(l.PriceTON, ref),
		PriceUSDTSale: ToFiat(after, ref),
	}}
}

// swapEntry reports the buy side as the price and the sell side as the sale
// price. A one-sided quote leaves the entry empty.
func swapEntry(q *model.SwapQuote, ref *decimal.Decimal) model.Entry {
	if q == nil {
		return model.Entry{}
	}
	return model.Entry{Offer: &model.Offer{
		PriceTON:      model.NewNumber(q.Buy),
		PriceTONSale:  model.NewNumber(q.Sell),
		PriceUSDT:     ToFiat(q.Buy, ref),
		PriceUSDTSale: ToFiat(q.Sell, ref),
	}}
}
