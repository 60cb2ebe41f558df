package auction

import "auctionhouse-backend/internal/model"

// Resolve computes the settlement outcome for a listing. The top bid is
// the maximum-amount entry of the listing's ledger, or nil when nothing
// was bid. Ties are impossible: the ledger only ever accepts strictly
// increasing amounts.
//
// Calling before the auction is closed is allowed; the result is then
// marked provisional and must not be persisted.
func Resolve(l *model.Listing, top *model.Bid, phase Phase) model.WinnerOutcome {
	outcome := model.WinnerOutcome{
		ListingID:   l.ID,
		Provisional: phase != PhaseClosed,
	}
	if top == nil {
		return outcome
	}
	winnerID := top.BidderID
	amount := top.Amount
	outcome.WinnerID = &winnerID
	outcome.WinningAmount = &amount
	return outcome
}
