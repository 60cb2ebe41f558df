package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ListingStatusAvailable = "available"
	ListingStatusSold      = "sold"
)

type Listing struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"owner_id"`
	Title          string          `json:"title"`
	BasePrice      decimal.Decimal `json:"base_price"`
	IsAuction      bool            `json:"is_auction"`
	AuctionEndAt   *time.Time      `json:"auction_end_at,omitempty"`
	CurrentHighBid decimal.Decimal `json:"current_high_bid"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	SettledAt      *time.Time      `json:"settled_at,omitempty"`
}

type CreateListingRequest struct {
	Title        string          `json:"title"`
	BasePrice    decimal.Decimal `json:"base_price"`
	IsAuction    bool            `json:"is_auction"`
	AuctionEndAt *time.Time      `json:"auction_end_at,omitempty"`
}
