package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"auctionhouse-backend/internal/auction"
	"auctionhouse-backend/internal/clock"
	"auctionhouse-backend/internal/model"
	"auctionhouse-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrListingNotFound  = errors.New("listing not found")
	ErrAuctionStillOpen = errors.New("auction has not ended yet")
)

// ListingStore is the engine's view of the catalog. The store is the
// single source of truth; the engine only ever writes back the cached
// high bid (via the ledger) and the settlement fields.
type ListingStore interface {
	Create(ctx context.Context, l *model.Listing) error
	GetByID(ctx context.Context, id string) (*model.Listing, error)
	MarkSettled(ctx context.Context, id string, at time.Time, sold bool) (bool, error)
	ExpiredAuctions(ctx context.Context, now time.Time, limit int) ([]string, error)
}

// BidLedger is the append-only record of accepted bids per listing.
// Append must re-check strict increase itself and fail with
// repository.ErrStaleBid when the bid lost a race.
type BidLedger interface {
	Append(ctx context.Context, bid *model.Bid) (decimal.Decimal, error)
	HighBid(ctx context.Context, listingID string) (decimal.Decimal, error)
	History(ctx context.Context, listingID string) ([]model.Bid, error)
	Count(ctx context.Context, listingID string) (int, error)
	TopBid(ctx context.Context, listingID string) (*model.Bid, error)
}

// AuctionService owns the per-listing serialization point. Mutating
// operations on one listing run one at a time; reads stay lock-free and
// may observe briefly stale values.
type AuctionService struct {
	listings ListingStore
	ledger   BidLedger
	clock    clock.Clock
	events   EventPublisher
	cache    StatusCache
	feed     *FeedHub
	locks    keyedMutex
}

func NewAuctionService(listings ListingStore, ledger BidLedger, clk clock.Clock, events EventPublisher, cache StatusCache, feed *FeedHub) *AuctionService {
	if events == nil {
		events = NewLogPublisher()
	}
	if cache == nil {
		cache = NoopCache{}
	}
	return &AuctionService{
		listings: listings,
		ledger:   ledger,
		clock:    clk,
		events:   events,
		cache:    cache,
		feed:     feed,
	}
}

// PlaceBid runs the full accept path under the listing's lock:
// phase check, validation against the current high bid, then the ledger
// append with its own stale re-check. A stale append surfaces as
// ErrBidTooLow since the remediation for the caller is identical.
func (s *AuctionService) PlaceBid(ctx context.Context, listingID, bidderID string, amount decimal.Decimal) (*model.BidReceipt, error) {
	unlock := s.locks.lock(listingID)
	defer unlock()

	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	phase := auction.PhaseOf(listing, now)

	high, err := s.ledger.HighBid(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if err := auction.Validate(listing, phase, high, bidderID, amount); err != nil {
		return nil, err
	}

	bid := &model.Bid{
		ID:        uuid.NewString(),
		ListingID: listingID,
		BidderID:  bidderID,
		Amount:    amount,
		PlacedAt:  now,
	}

	prev, err := s.ledger.Append(ctx, bid)
	if errors.Is(err, repository.ErrStaleBid) {
		return nil, auction.ErrBidTooLow
	}
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, listingID)
	s.emitBidPlaced(bid, prev)

	return &model.BidReceipt{
		BidID:          bid.ID,
		ListingID:      listingID,
		AcceptedAmount: amount,
		HighBid:        amount,
		PlacedAt:       now,
	}, nil
}

// GetStatus is the unserialized read path. The returned view may be
// immediately stale; the accept/reject decision never uses it.
func (s *AuctionService) GetStatus(ctx context.Context, listingID string) (*model.AuctionStatusView, error) {
	if view, ok := s.cache.Get(ctx, listingID); ok {
		return view, nil
	}

	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	phase := auction.PhaseOf(listing, now)

	high, err := s.ledger.HighBid(ctx, listingID)
	if err != nil {
		return nil, err
	}
	count, err := s.ledger.Count(ctx, listingID)
	if err != nil {
		return nil, err
	}

	view := &model.AuctionStatusView{
		ListingID:            listingID,
		Phase:                string(phase),
		HighBid:              high,
		BidCount:             count,
		TimeRemainingSeconds: int64(auction.TimeRemaining(listing, now) / time.Second),
	}

	if phase == auction.PhaseClosed {
		top, err := s.ledger.TopBid(ctx, listingID)
		if err != nil {
			return nil, err
		}
		outcome := auction.Resolve(listing, top, phase)
		view.Winner = &outcome
	}

	s.cache.Set(ctx, listingID, view)
	return view, nil
}

// History returns the listing's bids, newest first.
func (s *AuctionService) History(ctx context.Context, listingID string) ([]model.Bid, error) {
	if _, err := s.getListing(ctx, listingID); err != nil {
		return nil, err
	}
	return s.ledger.History(ctx, listingID)
}

// CloseAndSettle resolves a closed auction and, on the first call,
// persists the outcome: status flips to sold when there is a winner,
// and the AuctionClosed event fires exactly once. Every later call
// returns the same outcome and mutates nothing, so any trigger (HTTP,
// sweeper, a client viewing an expired listing) may invoke it freely.
func (s *AuctionService) CloseAndSettle(ctx context.Context, listingID string) (*model.WinnerOutcome, error) {
	unlock := s.locks.lock(listingID)
	defer unlock()

	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	phase := auction.PhaseOf(listing, now)
	if phase == auction.PhaseNotAuction {
		return nil, auction.ErrNotAuction
	}
	if phase != auction.PhaseClosed {
		return nil, ErrAuctionStillOpen
	}

	top, err := s.ledger.TopBid(ctx, listingID)
	if err != nil {
		return nil, err
	}
	outcome := auction.Resolve(listing, top, phase)

	first, err := s.listings.MarkSettled(ctx, listingID, now, outcome.WinnerID != nil)
	if err != nil {
		return nil, err
	}
	if first {
		s.cache.Invalidate(ctx, listingID)
		s.emitAuctionClosed(&outcome, now)
	}

	return &outcome, nil
}

// SettleExpired settles every expired, unsettled auction listing.
// Returns how many were settled. Used by the sweeper; not required for
// correctness since phase evaluation is lazy.
func (s *AuctionService) SettleExpired(ctx context.Context) (int, error) {
	ids, err := s.listings.ExpiredAuctions(ctx, s.clock.Now(), 100)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, id := range ids {
		if _, err := s.CloseAndSettle(ctx, id); err != nil {
			log.Printf("[AUCTION] settle %s: %v", id, err)
			continue
		}
		settled++
	}
	return settled, nil
}

func (s *AuctionService) getListing(ctx context.Context, id string) (*model.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *AuctionService) emitBidPlaced(bid *model.Bid, prev decimal.Decimal) {
	event := &model.BidPlacedEvent{
		EventID:         uuid.NewString(),
		ListingID:       bid.ListingID,
		BidderID:        bid.BidderID,
		Amount:          bid.Amount,
		NewHighBid:      bid.Amount,
		PreviousHighBid: prev,
		PlacedAt:        bid.PlacedAt,
	}

	if s.feed != nil {
		s.feed.Publish(bid.ListingID, model.EventTypeBidPlaced, event)
	}

	// Fire and forget. Delivery failures are logged, never retried, and
	// never fail the bid.
	go func() {
		if err := s.events.PublishBidPlaced(event); err != nil {
			log.Printf("[AUCTION] publish bid_placed for %s: %v", event.ListingID, err)
		}
	}()
}

func (s *AuctionService) emitAuctionClosed(outcome *model.WinnerOutcome, at time.Time) {
	event := &model.AuctionClosedEvent{
		EventID:       uuid.NewString(),
		ListingID:     outcome.ListingID,
		WinnerID:      outcome.WinnerID,
		WinningAmount: outcome.WinningAmount,
		ClosedAt:      at,
	}

	if s.feed != nil {
		s.feed.Publish(outcome.ListingID, model.EventTypeAuctionClosed, event)
	}

	go func() {
		if err := s.events.PublishAuctionClosed(event); err != nil {
			log.Printf("[AUCTION] publish auction_closed for %s: %v", event.ListingID, err)
		}
	}()
}

// keyedMutex serializes mutating operations per listing. Different
// listings never block each other. Entries are never evicted; the map
// is bounded by the number of listings this process has touched.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
