package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/rickgao/nft-pricewatch/internal/model"
)

// getgemsMarkup covers listing and transaction overhead on top of the sale price.
var getgemsMarkup = decimal.RequireFromString("0.3")

const getgemsQueryTemplate = `query nftSearch {
  alphaNftItemSearch(
    query: %s,
    sort: %s,
    first: 1
  ) {
    edges {
      node {
        address
        sale {
          ... on NftSaleFixPrice {
            fullPrice
          }
          ... on NftSaleFixPriceDisintar {
            fullPrice
          }
        }
      }
    }
  }
}`

// getgemsSort orders on-sale items first, then by ascending price and index.
const getgemsSort = `[{"isOnSale":{"order":"desc"}},{"price":{"order":"asc"}},{"index":{"order":"asc"}}]`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type getgemsResponse struct {
	Data struct {
		AlphaNftItemSearch *struct {
			Edges []struct {
				Node struct {
					Address string `json:"address"`
					Sale    *struct {
						FullPrice flexString `json:"fullPrice"`
					} `json:"sale"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"alphaNftItemSearch"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// getgemsQuery builds the search for the cheapest fixed-price item of a collection.
func getgemsQuery(collection string) (string, error) {
	filter, err := json.Marshal(map[string]any{
		"$and": []map[string]string{
			{"collectionAddress": collection},
			{"saleType": "fix_price"},
		},
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(getgemsQueryTemplate, strconv.Quote(string(filter)), strconv.Quote(getgemsSort)), nil
}

// GetgemsLink returns the purchase deep link for an item of a collection.
func GetgemsLink(collection, item string) string {
	return fmt.Sprintf("https://getgems.io/collection/%s/%s?modalNft=%s&modalId=nft_buy", collection, item, item)
}

// FetchGetgems returns the cheapest fixed-price listing on Getgems.
func (c *Client) FetchGetgems(ctx context.Context) *model.Listing {
	l, err := c.getgems(ctx)
	return report(c, SourceGetgems, l, err)
}

func (c *Client) getgems(ctx context.Context) (*model.Listing, error) {
	query, err := getgemsQuery(c.collection.Address)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: map[string]any{}})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var resp getgemsResponse
	err = c.doJSON(ctx, request{
		source: SourceGetgems,
		method: http.MethodPost,
		url:    c.endpoints.Getgems,
		body:   body,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.Errors) > 0 {
		return nil, &ParseError{Source: SourceGetgems, Err: fmt.Errorf("graphql: %s", resp.Errors[0].Message)}
	}
	search := resp.Data.AlphaNftItemSearch
	if search == nil {
		return nil, &ParseError{Source: SourceGetgems, Field: "alphaNftItemSearch", Err: errors.New("missing")}
	}
	if len(search.Edges) == 0 {
		return nil, ErrNoListing
	}

	node := search.Edges[0].Node
	if node.Address == "" {
		return nil, &ParseError{Source: SourceGetgems, Field: "address", Err: errors.New("missing")}
	}
	if node.Sale == nil || node.Sale.FullPrice == "" {
		return nil, &ParseError{Source: SourceGetgems, Field: "fullPrice", Err: errors.New("missing")}
	}
	price, err := nanoToTON(string(node.Sale.FullPrice))
	if err != nil {
		return nil, &ParseError{Source: SourceGetgems, Field: "fullPrice", Err: err}
	}

	return &model.Listing{
		Link:     GetgemsLink(c.collection.Address, node.Address),
		PriceTON: withMarkup(price, getgemsMarkup),
	}, nil
}
