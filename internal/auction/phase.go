package auction

import (
	"time"

	"auctionhouse-backend/internal/model"
)

// Phase is the derived lifecycle state of a listing. It is never
// stored; it is recomputed from the clock on every request, so it is
// correct no matter how long the listing sat idle.
type Phase string

const (
	PhaseActive     Phase = "active"
	PhaseClosed     Phase = "closed"
	PhaseNotAuction Phase = "not_auction"
)

// PhaseOf derives the phase of a listing at the given instant. The
// Active -> Closed transition is one-directional: once now reaches
// auction_end_at the listing never reopens.
func PhaseOf(l *model.Listing, now time.Time) Phase {
	if !l.IsAuction || l.AuctionEndAt == nil {
		return PhaseNotAuction
	}
	if now.Before(*l.AuctionEndAt) {
		return PhaseActive
	}
	return PhaseClosed
}

// TimeRemaining returns auction_end_at - now, clamped to zero.
func TimeRemaining(l *model.Listing, now time.Time) time.Duration {
	if !l.IsAuction || l.AuctionEndAt == nil {
		return 0
	}
	d := l.AuctionEndAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
