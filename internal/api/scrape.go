package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rickgao/nft-pricewatch/internal/model"
)

// Selectors shared by the Fragment and MarketApp listing tables.
const (
	rowSelector   = "tr.tm-row-selectable"
	linkSelector  = "a.table-cell"
	priceSelector = "div.table-cell-value.tm-value.icon-before.icon-ton"
)

// FetchFragment returns the cheapest listing on the Fragment numbers page.
func (c *Client) FetchFragment(ctx context.Context) *model.Listing {
	l, err := c.scrape(ctx, SourceFragment, c.endpoints.Fragment)
	return report(c, SourceFragment, l, err)
}

// FetchMarketApp returns the cheapest listing on the MarketApp collection page.
func (c *Client) FetchMarketApp(ctx context.Context) *model.Listing {
	page := strings.TrimRight(c.endpoints.MarketApp, "/") + "/" + c.collection.Address + "/"
	l, err := c.scrape(ctx, SourceMarketApp, page)
	return report(c, SourceMarketApp, l, err)
}

func (c *Client) scrape(ctx context.Context, source, page string) (*model.Listing, error) {
	base, err := siteRoot(page)
	if err != nil {
		return nil, fmt.Errorf("%s url: %w", source, err)
	}

	body, err := c.do(ctx, request{
		source: source,
		method: http.MethodGet,
		url:    page,
		accept: "text/html",
		html:   true,
	})
	if err != nil {
		return nil, err
	}

	l, err := ParseListingPage(bytes.NewReader(body), base)
	if err != nil {
		if errors.Is(err, ErrNoListing) {
			return nil, err
		}
		return nil, &ParseError{Source: source, Err: err}
	}
	return l, nil
}

// ParseListingPage extracts the first selectable row of a listing table.
// Relative links are resolved against base. It returns ErrNoListing when the
// page has no selectable row.
func ParseListingPage(r io.Reader, base string) (*model.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	row := doc.Find(rowSelector).First()
	if row.Length() == 0 {
		return nil, ErrNoListing
	}

	href, ok := row.Find(linkSelector).First().Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return nil, errors.New("row has no link")
	}

	priceText := row.Find(priceSelector).First().Text()
	price, err := parsePrice(priceText)
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}

	return &model.Listing{
		Link:     absoluteLink(base, href),
		PriceTON: price,
	}, nil
}

// siteRoot returns scheme://host of a page URL.
func siteRoot(page string) (string, error) {
	u, err := url.Parse(page)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%q is not absolute", page)
	}
	return u.Scheme + "://" + u.Host, nil
}

func absoluteLink(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return strings.TrimRight(base, "/") + href
}
