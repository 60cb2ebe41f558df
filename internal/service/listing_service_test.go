package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"auctionhouse-backend/internal/clock"
	"auctionhouse-backend/internal/model"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestCreateListing(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	future := start.Add(24 * time.Hour)
	past := start.Add(-time.Hour)

	tests := []struct {
		name     string
		req      model.CreateListingRequest
		expected error
	}{
		{
			name: "fixed price",
			req:  model.CreateListingRequest{Title: "lamp", BasePrice: dec("25")},
		},
		{
			name: "auction with future deadline",
			req:  model.CreateListingRequest{Title: "lamp", BasePrice: dec("25"), IsAuction: true, AuctionEndAt: &future},
		},
		{
			name:     "missing title",
			req:      model.CreateListingRequest{BasePrice: dec("25")},
			expected: ErrMissingTitle,
		},
		{
			name:     "zero base price",
			req:      model.CreateListingRequest{Title: "lamp"},
			expected: ErrInvalidBasePrice,
		},
		{
			name:     "negative base price",
			req:      model.CreateListingRequest{Title: "lamp", BasePrice: dec("-1")},
			expected: ErrInvalidBasePrice,
		},
		{
			name:     "auction without deadline",
			req:      model.CreateListingRequest{Title: "lamp", BasePrice: dec("25"), IsAuction: true},
			expected: ErrMissingEndTime,
		},
		{
			name:     "auction deadline in the past",
			req:      model.CreateListingRequest{Title: "lamp", BasePrice: dec("25"), IsAuction: true, AuctionEndAt: &past},
			expected: ErrEndTimeInPast,
		},
		{
			name:     "fixed price with deadline",
			req:      model.CreateListingRequest{Title: "lamp", BasePrice: dec("25"), AuctionEndAt: &future},
			expected: ErrUnexpectedEndTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewListingService(newMemStore(), clock.NewFake(start))
			listing, err := svc.CreateListing(context.Background(), "owner-1", &tt.req)
			if tt.expected != nil {
				check.True(t, errors.Is(err, tt.expected))
				return
			}
			assert.NoError(t, err)
			check.NotEqual(t, "", listing.ID)
			check.Equal(t, "owner-1", listing.OwnerID)
			check.Equal(t, model.ListingStatusAvailable, listing.Status)
			check.True(t, listing.CurrentHighBid.Equal(listing.BasePrice))
		})
	}
}

func TestGetListingNotFound(t *testing.T) {
	svc := NewListingService(newMemStore(), clock.NewFake(time.Now()))
	_, err := svc.GetListing(context.Background(), "missing")
	check.True(t, errors.Is(err, ErrListingNotFound))
}
