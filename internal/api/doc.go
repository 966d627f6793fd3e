// Package api provides the HTTP clients for every price source.
//
// Sources:
//   - getgems: GraphQL collection search (cheapest fixed-price listing)
//   - price: GeckoTerminal TON/USD reference price
//   - stonfi_buy, stonfi_sell: STON.fi swap simulations for the collection jetton
//   - fragment, marketapp: HTML listing pages
//   - xrare: REST collection search
//
// Every Fetch method returns an optional record and never an error: transport
// and parse failures are logged here and reported as nil.
package api
