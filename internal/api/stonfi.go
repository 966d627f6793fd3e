package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Swap simulation parameters: 1e15 smallest units notional, 1% slippage.
const (
	swapUnits     = "1000000000000000"
	swapSlippage  = "1"
	stonfiReverse = "/reverse_swap/simulate"
	stonfiForward = "/swap/simulate"
)

// stonfiMarkup is added to both sides of the swap quote.
var stonfiMarkup = decimal.RequireFromString("0.5")

type swapSimulation struct {
	OfferUnits flexString `json:"offer_units"`
	AskUnits   flexString `json:"ask_units"`
}

// FetchSwapBuy returns the TON cost of buying the collection jetton notional.
func (c *Client) FetchSwapBuy(ctx context.Context) *decimal.Decimal {
	p, err := c.swap(ctx, SourceStonfiBuy, stonfiReverse, c.collection.TONAddress, c.collection.JettonAddress)
	return report(c, SourceStonfiBuy, p, err)
}

// FetchSwapSell returns the TON received for selling the collection jetton notional.
func (c *Client) FetchSwapSell(ctx context.Context) *decimal.Decimal {
	p, err := c.swap(ctx, SourceStonfiSell, stonfiForward, c.collection.JettonAddress, c.collection.TONAddress)
	return report(c, SourceStonfiSell, p, err)
}

// swap runs one simulation. The reverse simulation reports offer_units, the
// forward one ask_units; both are TON nano amounts.
func (c *Client) swap(ctx context.Context, source, path, offer, ask string) (*decimal.Decimal, error) {
	query := url.Values{}
	query.Set("offer_address", offer)
	query.Set("ask_address", ask)
	query.Set("units", swapUnits)
	query.Set("slippage_tolerance", swapSlippage)

	var resp swapSimulation
	err := c.doJSON(ctx, request{
		source: source,
		method: http.MethodPost,
		url:    strings.TrimRight(c.endpoints.Stonfi, "/") + path,
		query:  query,
		body:   []byte{},
	}, &resp)
	if err != nil {
		return nil, err
	}

	field, raw := "ask_units", resp.AskUnits
	if path == stonfiReverse {
		field, raw = "offer_units", resp.OfferUnits
	}
	if raw == "" {
		return nil, &ParseError{Source: source, Field: field, Err: errors.New("missing")}
	}
	units, err := nanoToTON(string(raw))
	if err != nil {
		return nil, &ParseError{Source: source, Field: field, Err: err}
	}

	price := withMarkup(units, stonfiMarkup)
	return &price, nil
}
