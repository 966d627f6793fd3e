package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

type tokenPriceResponse struct {
	Data *struct {
		Attributes *struct {
			TokenPrices map[string]flexString `json:"token_prices"`
		} `json:"attributes"`
	} `json:"data"`
}

// FetchReferencePrice returns the TON/USD rate rounded to 2 places.
func (c *Client) FetchReferencePrice(ctx context.Context) *decimal.Decimal {
	p, err := c.referencePrice(ctx)
	return report(c, SourcePrice, p, err)
}

func (c *Client) referencePrice(ctx context.Context) (*decimal.Decimal, error) {
	token := c.collection.TONAddress
	var resp tokenPriceResponse
	err := c.doJSON(ctx, request{
		source: SourcePrice,
		method: http.MethodGet,
		url:    strings.TrimRight(c.endpoints.Price, "/") + "/" + token,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Data == nil || resp.Data.Attributes == nil {
		return nil, &ParseError{Source: SourcePrice, Field: "data.attributes", Err: errors.New("missing")}
	}
	raw, ok := resp.Data.Attributes.TokenPrices[token]
	if !ok || raw == "" {
		return nil, &ParseError{Source: SourcePrice, Field: "token_prices." + token, Err: errors.New("missing")}
	}
	price, err := decimal.NewFromString(string(raw))
	if err != nil {
		return nil, &ParseError{Source: SourcePrice, Field: "token_prices." + token, Err: err}
	}

	price = price.Round(2)
	return &price, nil
}
