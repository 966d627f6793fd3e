package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rickgao/nft-pricewatch/internal/model"
)

// xrareSearch is the collection filter sent to XRare. Field order matches
// what the site itself sends.
type xrareSearch struct {
	Address   string   `json:"address"`
	Atts      []string `json:"atts"`
	Currency  string   `json:"currency"`
	Cursor    string   `json:"cursor"`
	FromPrice string   `json:"fromPrice"`
	Model     string   `json:"model"`
	Sale      string   `json:"sale"`
	Search    string   `json:"search"`
	Sort      string   `json:"sort"`
	ToPrice   string   `json:"toPrice"`
}

type xrareResponse struct {
	OK   json.RawMessage `json:"ok"`
	NFTs []struct {
		Address  string     `json:"address"`
		TONPrice flexString `json:"ton_price"`
	} `json:"nfts"`
}

// truthy reports whether a loosely typed JSON flag is set. Missing, null,
// false, zero and the empty string are false.
func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}

func newXRareSearch(collection string) xrareSearch {
	return xrareSearch{
		Address:  collection,
		Atts:     []string{},
		Currency: "TON",
		Model:    "collection",
		Sort:     "price_low",
	}
}

// XRareLink returns the purchase deep link for an item.
func XRareLink(item string) string {
	return fmt.Sprintf("https://xrare.io/nft/%s/buy", item)
}

// FetchXRare returns the cheapest TON listing on XRare.
func (c *Client) FetchXRare(ctx context.Context) *model.Listing {
	l, err := c.xrare(ctx)
	return report(c, SourceXRare, l, err)
}

func (c *Client) xrare(ctx context.Context) (*model.Listing, error) {
	body, err := json.Marshal(newXRareSearch(c.collection.Address))
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var resp xrareResponse
	err = c.doJSON(ctx, request{
		source: SourceXRare,
		method: http.MethodPost,
		url:    c.endpoints.XRare,
		body:   body,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if !truthy(resp.OK) {
		return nil, &ParseError{Source: SourceXRare, Field: "ok", Err: errors.New("not ok")}
	}
	if len(resp.NFTs) == 0 {
		return nil, ErrNoListing
	}

	nft := resp.NFTs[0]
	if nft.Address == "" || nft.TONPrice == "" {
		return nil, &ParseError{Source: SourceXRare, Field: "nfts[0]", Err: errors.New("address or ton_price missing")}
	}
	price, err := decimal.NewFromString(string(nft.TONPrice))
	if err != nil {
		return nil, &ParseError{Source: SourceXRare, Field: "ton_price", Err: err}
	}
	if price.IsZero() {
		return nil, &ParseError{Source: SourceXRare, Field: "ton_price", Err: errors.New("zero")}
	}

	return &model.Listing{
		Link:     XRareLink(nft.Address),
		PriceTON: price,
	}, nil
}
