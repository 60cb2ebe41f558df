package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"auctionhouse-backend/internal/clock"
	"auctionhouse-backend/internal/model"
	"auctionhouse-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// memStore is an in-memory ListingStore.
type memStore struct {
	mu       sync.RWMutex
	listings map[string]*model.Listing
}

func newMemStore() *memStore {
	return &memStore{listings: make(map[string]*model.Listing)}
}

func (s *memStore) Create(_ context.Context, l *model.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = uuid.NewString()
	l.CurrentHighBid = l.BasePrice
	l.Status = model.ListingStatusAvailable
	cp := *l
	s.listings[l.ID] = &cp
	return nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *memStore) MarkSettled(_ context.Context, id string, at time.Time, sold bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if l.SettledAt != nil {
		return false, nil
	}
	settledAt := at
	l.SettledAt = &settledAt
	if sold {
		l.Status = model.ListingStatusSold
	}
	return true, nil
}

func (s *memStore) ExpiredAuctions(_ context.Context, now time.Time, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, l := range s.listings {
		if len(ids) >= limit {
			break
		}
		if l.IsAuction && l.SettledAt == nil && l.AuctionEndAt != nil && !l.AuctionEndAt.After(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// memLedger is an in-memory BidLedger with the same strict-increase
// re-check the pg implementation performs inside its transaction.
type memLedger struct {
	mu    sync.Mutex
	store *memStore
	bids  map[string][]model.Bid
}

func newMemLedger(store *memStore) *memLedger {
	return &memLedger{store: store, bids: make(map[string][]model.Bid)}
}

func (l *memLedger) Append(ctx context.Context, bid *model.Bid) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev, err := l.highLocked(ctx, bid.ListingID)
	if err != nil {
		return decimal.Zero, err
	}
	if bid.Amount.LessThanOrEqual(prev) {
		return prev, repository.ErrStaleBid
	}

	l.bids[bid.ListingID] = append(l.bids[bid.ListingID], *bid)

	l.store.mu.Lock()
	l.store.listings[bid.ListingID].CurrentHighBid = bid.Amount
	l.store.mu.Unlock()

	return prev, nil
}

func (l *memLedger) HighBid(ctx context.Context, listingID string) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.highLocked(ctx, listingID)
}

func (l *memLedger) highLocked(ctx context.Context, listingID string) (decimal.Decimal, error) {
	if bids := l.bids[listingID]; len(bids) > 0 {
		return bids[len(bids)-1].Amount, nil
	}
	listing, err := l.store.GetByID(ctx, listingID)
	if err != nil {
		return decimal.Zero, err
	}
	return listing.BasePrice, nil
}

func (l *memLedger) History(_ context.Context, listingID string) ([]model.Bid, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bids := l.bids[listingID]
	out := make([]model.Bid, 0, len(bids))
	for i := len(bids) - 1; i >= 0; i-- {
		out = append(out, bids[i])
	}
	return out, nil
}

func (l *memLedger) Count(_ context.Context, listingID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.bids[listingID]), nil
}

func (l *memLedger) TopBid(_ context.Context, listingID string) (*model.Bid, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bids := l.bids[listingID]
	if len(bids) == 0 {
		return nil, nil
	}
	// Appends are strictly increasing, so the last bid is the max.
	top := bids[len(bids)-1]
	return &top, nil
}

// memPublisher records emitted events.
type memPublisher struct {
	mu        sync.Mutex
	bidPlaced []*model.BidPlacedEvent
	closed    []*model.AuctionClosedEvent
}

func (p *memPublisher) PublishBidPlaced(e *model.BidPlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bidPlaced = append(p.bidPlaced, e)
	return nil
}

func (p *memPublisher) PublishAuctionClosed(e *model.AuctionClosedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = append(p.closed, e)
	return nil
}

func (p *memPublisher) bidPlacedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.bidPlaced)
}

func (p *memPublisher) closedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.closed)
}

// waitForCount polls until fn reaches want, since events are published
// from goroutines.
func waitForCount(t *testing.T, want int, fn func() int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if fn() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d events, got %d", want, fn())
}

type fixture struct {
	store  *memStore
	ledger *memLedger
	clk    *clock.Fake
	events *memPublisher
	svc    *AuctionService
}

var testStart = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newFixture() *fixture {
	store := newMemStore()
	ledger := newMemLedger(store)
	clk := clock.NewFake(testStart)
	events := &memPublisher{}
	return &fixture{
		store:  store,
		ledger: ledger,
		clk:    clk,
		events: events,
		svc:    NewAuctionService(store, ledger, clk, events, nil, nil),
	}
}

func (f *fixture) addAuction(owner, basePrice string, endIn time.Duration) *model.Listing {
	endAt := f.clk.Now().Add(endIn)
	l := &model.Listing{
		OwnerID:      owner,
		Title:        "test listing",
		BasePrice:    dec(basePrice),
		IsAuction:    true,
		AuctionEndAt: &endAt,
	}
	_ = f.store.Create(context.Background(), l)
	return l
}

func (f *fixture) addFixedPrice(owner, basePrice string) *model.Listing {
	l := &model.Listing{
		OwnerID:   owner,
		Title:     "test listing",
		BasePrice: dec(basePrice),
		IsAuction: false,
	}
	_ = f.store.Create(context.Background(), l)
	return l
}
