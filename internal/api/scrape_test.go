package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

const listingPage = `<html><body><table><tbody>
<tr class="tm-row-selectable">
  <td><a class="table-cell" href="%s">item</a></td>
  <td><div class="table-cell-value tm-value icon-before icon-ton">%s</div></td>
</tr>
<tr class="tm-row-selectable">
  <td><a class="table-cell" href="/number/second">item</a></td>
  <td><div class="table-cell-value tm-value icon-before icon-ton">99,999</div></td>
</tr>
</tbody></table></body></html>`

func page(href, price string) string {
	return fmt.Sprintf(listingPage, href, price)
}

func TestParseListingPage(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		wantLink string
		wantTON  string
		wantErr  bool
	}{
		{
			name:     "relative link and thousands separator",
			html:     page("/number/88800000000", "1,234.5"),
			wantLink: "https://fragment.com/number/88800000000",
			wantTON:  "1234.5",
		},
		{
			name:     "absolute link",
			html:     page("https://fragment.com/number/1", " 42 "),
			wantLink: "https://fragment.com/number/1",
			wantTON:  "42",
		},
		{
			name:     "link without leading slash",
			html:     page("number/2", "7.25"),
			wantLink: "https://fragment.com/number/2",
			wantTON:  "7.25",
		},
		{
			name:    "unparseable price",
			html:    page("/number/3", "soon"),
			wantErr: true,
		},
		{
			name:    "empty price",
			html:    page("/number/3", ""),
			wantErr: true,
		},
		{
			name:    "missing link",
			html:    `<table><tr class="tm-row-selectable"><td><div class="table-cell-value tm-value icon-before icon-ton">5</div></td></tr></table>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseListingPage(strings.NewReader(tt.html), "https://fragment.com")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseListingPage = %+v, want error", got)
				}
				if errors.Is(err, ErrNoListing) {
					t.Errorf("error = %v, should not be ErrNoListing", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseListingPage failed: %v", err)
			}
			if got.Link != tt.wantLink {
				t.Errorf("Link = %q, want %q", got.Link, tt.wantLink)
			}
			if !got.PriceTON.Equal(decimal.RequireFromString(tt.wantTON)) {
				t.Errorf("PriceTON = %s, want %s", got.PriceTON, tt.wantTON)
			}
		})
	}

	t.Run("no rows", func(t *testing.T) {
		_, err := ParseListingPage(strings.NewReader(`<html><body><table></table></body></html>`), "https://fragment.com")
		if !errors.Is(err, ErrNoListing) {
			t.Errorf("error = %v, want ErrNoListing", err)
		}
	})
}

func TestFetchFragment(t *testing.T) {
	t.Run("first row", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/numbers" {
				t.Errorf("path = %q, want /numbers", r.URL.Path)
			}
			if r.URL.Query().Get("sort") != "price_asc" || r.URL.Query().Get("filter") != "sale" {
				t.Errorf("query = %q", r.URL.RawQuery)
			}
			if r.Header.Get("User-Agent") != "Mozilla/5.0" {
				t.Errorf("User-Agent = %q, want Mozilla/5.0", r.Header.Get("User-Agent"))
			}
			if r.Header.Get("Accept") != "text/html" {
				t.Errorf("Accept = %q, want text/html", r.Header.Get("Accept"))
			}
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(page("/number/88812345678", "1,234.5")))
		}))
		defer server.Close()

		c, _ := newTestClient(t, server)
		got := c.FetchFragment(context.Background())
		if got == nil {
			t.Fatal("FetchFragment returned nil")
		}
		if got.Link != server.URL+"/number/88812345678" {
			t.Errorf("Link = %q, want %q", got.Link, server.URL+"/number/88812345678")
		}
		if !got.PriceTON.Equal(decimal.RequireFromString("1234.5")) {
			t.Errorf("PriceTON = %s, want 1234.5", got.PriceTON)
		}
	})

	t.Run("no rows", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html><body>Nothing on sale</body></html>`))
		}))
		defer server.Close()

		c, logs := newTestClient(t, server)
		if got := c.FetchFragment(context.Background()); got != nil {
			t.Errorf("FetchFragment = %+v, want nil", got)
		}
		if !strings.Contains(logs.String(), "source has no listing") {
			t.Errorf("expected no-listing log, got: %s", logs.String())
		}
	})

	t.Run("blocked", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		c, logs := newTestClient(t, server)
		if got := c.FetchFragment(context.Background()); got != nil {
			t.Errorf("FetchFragment = %+v, want nil", got)
		}
		if !strings.Contains(logs.String(), "source fetch failed") {
			t.Errorf("expected failure log, got: %s", logs.String())
		}
	})
}

func TestFetchMarketApp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := "/collection/" + testCollection + "/"
		if r.URL.Path != want {
			t.Errorf("path = %q, want %q", r.URL.Path, want)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("User-Agent should be set")
		}
		w.Write([]byte(page("/nft/EQitem", "12.4")))
	}))
	defer server.Close()

	c, _ := newTestClient(t, server)
	got := c.FetchMarketApp(context.Background())
	if got == nil {
		t.Fatal("FetchMarketApp returned nil")
	}
	if got.Link != server.URL+"/nft/EQitem" {
		t.Errorf("Link = %q, want %q", got.Link, server.URL+"/nft/EQitem")
	}
	if !got.PriceTON.Equal(decimal.RequireFromString("12.4")) {
		t.Errorf("PriceTON = %s, want 12.4", got.PriceTON)
	}
}
