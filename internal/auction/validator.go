package auction

import (
	"errors"

	"auctionhouse-backend/internal/model"

	"github.com/shopspring/decimal"
)

var (
	ErrNotAuction    = errors.New("listing is not an auction")
	ErrAuctionClosed = errors.New("auction is closed")
	ErrSelfBid       = errors.New("cannot bid on your own listing")
	ErrInvalidAmount = errors.New("bid amount must be greater than zero")
	ErrBidTooLow     = errors.New("bid must be greater than the current high bid")
)

// Validate checks a prospective bid against the listing and the current
// high bid. Rules are evaluated in a fixed order and the first failure
// wins, so rejections are deterministic.
func Validate(l *model.Listing, phase Phase, highBid decimal.Decimal, bidderID string, amount decimal.Decimal) error {
	if phase == PhaseNotAuction {
		return ErrNotAuction
	}
	if phase == PhaseClosed {
		return ErrAuctionClosed
	}
	if bidderID == l.OwnerID {
		return ErrSelfBid
	}
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	// Strictly greater. Equal bids lose; there is no minimum increment
	// beyond that.
	if amount.LessThanOrEqual(highBid) {
		return ErrBidTooLow
	}
	return nil
}
