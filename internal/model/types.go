package model

import (
	"github.com/shopspring/decimal"
)

// Source names, in snapshot order.
const (
	SourceGetgems   = "getgems"
	SourceFragment  = "fragment"
	SourceXRare     = "xrare"
	SourceMarketApp = "marketapp"
	SourceShardify  = "shardify"
	SectionGeneral  = "general"
)

// SourceNames lists every per-source key of a Snapshot in output order.
var SourceNames = []string{
	SourceGetgems,
	SourceFragment,
	SourceXRare,
	SourceMarketApp,
	SourceShardify,
}

// Listing is the cheapest sellable item reported by a marketplace.
// A non-nil Listing always carries both a link and a price.
type Listing struct {
	Link     string          // Absolute deep link to the item
	PriceTON decimal.Decimal // Native price, 2 decimal places
}

// SwapQuote is the two-sided DEX price of the collection jetton notional.
type SwapQuote struct {
	Buy  decimal.Decimal // TON paid to buy
	Sell decimal.Decimal // TON received on sale
}

// NewSwapQuote pairs independently fetched sides. It returns nil unless both
// are present.
func NewSwapQuote(buy, sell *decimal.Decimal) *SwapQuote {
	if buy == nil || sell == nil {
		return nil
	}
	return &SwapQuote{Buy: *buy, Sell: *sell}
}

// Number is a decimal that encodes as a bare JSON number ("5.3", not "\"5.3\"").
type Number struct {
	decimal.Decimal
}

// NewNumber wraps d.
func NewNumber(d decimal.Decimal) Number {
	return Number{Decimal: d}
}

// NumberPtr wraps d and returns a pointer, for optional fields.
func NumberPtr(d decimal.Decimal) *Number {
	n := NewNumber(d)
	return &n
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.Decimal.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler. Both quoted and bare numbers are accepted.
func (n *Number) UnmarshalJSON(b []byte) error {
	return n.Decimal.UnmarshalJSON(b)
}
