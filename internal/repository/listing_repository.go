package repository

import (
	"context"
	"errors"
	"time"

	"auctionhouse-backend/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

func (r *ListingRepository) Create(ctx context.Context, l *model.Listing) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO listings (owner_id, title, base_price, is_auction, auction_end_at, current_high_bid, status)
		VALUES ($1, $2, $3, $4, $5, $3, 'available')
		RETURNING id, created_at
	`, l.OwnerID, l.Title, l.BasePrice, l.IsAuction, l.AuctionEndAt).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return err
	}
	l.CurrentHighBid = l.BasePrice
	l.Status = model.ListingStatusAvailable
	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	l := &model.Listing{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, title, base_price, is_auction, auction_end_at,
		       current_high_bid, status, created_at, settled_at
		FROM listings WHERE id = $1
	`, id).Scan(
		&l.ID, &l.OwnerID, &l.Title, &l.BasePrice, &l.IsAuction, &l.AuctionEndAt,
		&l.CurrentHighBid, &l.Status, &l.CreatedAt, &l.SettledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// MarkSettled records the first settlement of a listing. When sold is
// true the status flips to 'sold' in the same statement. Returns false
// when the listing was already settled, which makes settlement
// idempotent for every caller.
func (r *ListingRepository) MarkSettled(ctx context.Context, id string, at time.Time, sold bool) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE listings
		SET settled_at = $2,
		    status = CASE WHEN $3 THEN 'sold' ELSE status END
		WHERE id = $1 AND settled_at IS NULL
	`, id, at, sold)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ExpiredAuctions returns ids of auction listings whose deadline has
// passed and that were never settled. Used by the background sweeper.
func (r *ListingRepository) ExpiredAuctions(ctx context.Context, now time.Time, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM listings
		WHERE is_auction AND settled_at IS NULL AND auction_end_at <= $1
		ORDER BY auction_end_at ASC
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
