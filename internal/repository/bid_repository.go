package repository

import (
	"context"
	"errors"

	"auctionhouse-backend/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrStaleBid means the bid lost a race: by the time the append ran,
// the listing's high bid was at or above the offered amount. The ledger
// re-checks strict increase itself, independent of the validator.
var ErrStaleBid = errors.New("bid is not above the current high bid")

type BidRepository struct {
	pool *pgxpool.Pool
}

func NewBidRepository(pool *pgxpool.Pool) *BidRepository {
	return &BidRepository{pool: pool}
}

// Append records an accepted bid and advances the listing's cached high
// bid in one transaction. The listing row is locked FOR UPDATE first,
// so the check-then-insert is atomic against every other bidder.
// Returns the high bid that was in effect before this bid.
func (r *BidRepository) Append(ctx context.Context, bid *model.Bid) (decimal.Decimal, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback(ctx)

	var prev decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT current_high_bid FROM listings WHERE id = $1 FOR UPDATE
	`, bid.ListingID).Scan(&prev)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}

	if bid.Amount.LessThanOrEqual(prev) {
		return prev, ErrStaleBid
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bids (id, listing_id, bidder_id, amount, placed_at)
		VALUES ($1, $2, $3, $4, $5)
	`, bid.ID, bid.ListingID, bid.BidderID, bid.Amount, bid.PlacedAt)
	if err != nil {
		return prev, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE listings SET current_high_bid = $2 WHERE id = $1
	`, bid.ListingID, bid.Amount)
	if err != nil {
		return prev, err
	}

	if err := tx.Commit(ctx); err != nil {
		return prev, err
	}
	return prev, nil
}

// HighBid returns the current high bid for a listing, which is the base
// price until the first bid lands.
func (r *BidRepository) HighBid(ctx context.Context, listingID string) (decimal.Decimal, error) {
	var high decimal.Decimal
	err := r.pool.QueryRow(ctx, `
		SELECT current_high_bid FROM listings WHERE id = $1
	`, listingID).Scan(&high)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return high, nil
}

// History returns the listing's bids newest first. Each call is a fresh
// read.
func (r *BidRepository) History(ctx context.Context, listingID string) ([]model.Bid, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, listing_id, bidder_id, amount, placed_at
		FROM bids
		WHERE listing_id = $1
		ORDER BY placed_at DESC, amount DESC
	`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []model.Bid
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.ID, &b.ListingID, &b.BidderID, &b.Amount, &b.PlacedAt); err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	if bids == nil {
		bids = []model.Bid{}
	}
	return bids, rows.Err()
}

func (r *BidRepository) Count(ctx context.Context, listingID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM bids WHERE listing_id = $1
	`, listingID).Scan(&n)
	return n, err
}

// TopBid returns the maximum-amount bid, or nil when the listing has no
// bids.
func (r *BidRepository) TopBid(ctx context.Context, listingID string) (*model.Bid, error) {
	b := &model.Bid{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, listing_id, bidder_id, amount, placed_at
		FROM bids
		WHERE listing_id = $1
		ORDER BY amount DESC
		LIMIT 1
	`, listingID).Scan(&b.ID, &b.ListingID, &b.BidderID, &b.Amount, &b.PlacedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}
