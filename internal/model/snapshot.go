package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Snapshot is the merged view of every source for one poll cycle.
// Field order is the on-disk key order.
type Snapshot struct {
	Getgems   Entry   `json:"getgems"`
	Fragment  Entry   `json:"fragment"`
	XRare     Entry   `json:"xrare"`
	MarketApp Entry   `json:"marketapp"`
	Shardify  Entry   `json:"shardify"`
	General   General `json:"general"`
}

// Entry holds one source's current offer. A nil Offer means the source had
// nothing this cycle and encodes as an empty object, so the key is always present.
type Entry struct {
	Offer *Offer
}

// Offer is a normalized price quote.
type Offer struct {
	Link          string  `json:"link,omitempty"` // empty for shardify
	PriceTON      Number  `json:"price_ton"`
	PriceTONSale  Number  `json:"price_ton_sale"`
	PriceUSDT     *Number `json:"price_usdt"`      // nil without a reference price
	PriceUSDTSale *Number `json:"price_usdt_sale"` // nil without a reference price
}

// General carries the cycle-wide values.
type General struct {
	PriceTON    *Number     `json:"price_ton"`
	LastUpdate  time.Time   `json:"last_update"`
	Commissions Commissions `json:"commissions"`
}

// Commissions is the per-marketplace sale commission table reported with a snapshot.
type Commissions struct {
	GetgemsSale   Number `json:"getgems_sale"`
	FragmentSale  Number `json:"fragment_sale"`
	MarketAppSale Number `json:"marketapp_sale"`
}

// MarshalJSON implements json.Marshaler.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Offer == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // links carry '&'
	if err := enc.Encode(e.Offer); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if len(fields) == 0 {
		e.Offer = nil
		return nil
	}
	var o Offer
	if err := json.Unmarshal(b, &o); err != nil {
		return err
	}
	e.Offer = &o
	return nil
}

// Entry returns the entry stored under a source name.
func (s *Snapshot) Entry(source string) (Entry, bool) {
	switch source {
	case SourceGetgems:
		return s.Getgems, true
	case SourceFragment:
		return s.Fragment, true
	case SourceXRare:
		return s.XRare, true
	case SourceMarketApp:
		return s.MarketApp, true
	case SourceShardify:
		return s.Shardify, true
	}
	return Entry{}, false
}

// Populated returns the names of sources that have an offer, in snapshot order.
func (s *Snapshot) Populated() []string {
	var out []string
	for _, name := range SourceNames {
		if e, _ := s.Entry(name); e.Offer != nil {
			out = append(out, name)
		}
	}
	return out
}

// Encode renders the snapshot as indented UTF-8 JSON with a trailing newline.
func (s *Snapshot) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot parses a document produced by Encode.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
