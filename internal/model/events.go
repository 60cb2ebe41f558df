package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventTypeBidPlaced     = "bid_placed"
	EventTypeAuctionClosed = "auction_closed"
)

// BidPlacedEvent is emitted after every accepted bid. Delivery is
// at-least-once and fire-and-forget; consumers handle duplicates.
type BidPlacedEvent struct {
	EventID         string          `json:"event_id"`
	ListingID       string          `json:"listing_id"`
	BidderID        string          `json:"bidder_id"`
	Amount          decimal.Decimal `json:"amount"`
	NewHighBid      decimal.Decimal `json:"new_high_bid"`
	PreviousHighBid decimal.Decimal `json:"previous_high_bid"`
	PlacedAt        time.Time       `json:"placed_at"`
}

// AuctionClosedEvent is emitted on the first successful settlement of
// an expired auction.
type AuctionClosedEvent struct {
	EventID       string           `json:"event_id"`
	ListingID     string           `json:"listing_id"`
	WinnerID      *string          `json:"winner_id,omitempty"`
	WinningAmount *decimal.Decimal `json:"winning_amount,omitempty"`
	ClosedAt      time.Time        `json:"closed_at"`
}

type WSEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}
