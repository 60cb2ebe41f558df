package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Bid struct {
	ID        string          `json:"id"`
	ListingID string          `json:"listing_id"`
	BidderID  string          `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	PlacedAt  time.Time       `json:"placed_at"`
}

type PlaceBidRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// BidReceipt is returned to a bidder whose bid was accepted.
type BidReceipt struct {
	BidID          string          `json:"bid_id"`
	ListingID      string          `json:"listing_id"`
	AcceptedAmount decimal.Decimal `json:"accepted_amount"`
	HighBid        decimal.Decimal `json:"high_bid"`
	PlacedAt       time.Time       `json:"placed_at"`
}

// WinnerOutcome is the settlement result for a listing. WinnerID and
// WinningAmount are nil when the auction closed without bids.
// Provisional is set when the outcome was computed before close.
type WinnerOutcome struct {
	ListingID     string           `json:"listing_id"`
	WinnerID      *string          `json:"winner_id,omitempty"`
	WinningAmount *decimal.Decimal `json:"winning_amount,omitempty"`
	Provisional   bool             `json:"provisional,omitempty"`
}

// AuctionStatusView is the read model a presentation layer renders as a
// countdown plus current-bid display.
type AuctionStatusView struct {
	ListingID            string          `json:"listing_id"`
	Phase                string          `json:"phase"`
	HighBid              decimal.Decimal `json:"high_bid"`
	BidCount             int             `json:"bid_count"`
	TimeRemainingSeconds int64           `json:"time_remaining_seconds"`
	Winner               *WinnerOutcome  `json:"winner,omitempty"`
}
