package service

import (
	"context"
	"errors"

	"auctionhouse-backend/internal/clock"
	"auctionhouse-backend/internal/model"
	"auctionhouse-backend/internal/repository"
)

var (
	ErrInvalidBasePrice  = errors.New("base price must be greater than zero")
	ErrMissingEndTime    = errors.New("auction listings require an end time")
	ErrEndTimeInPast     = errors.New("auction end time must be in the future")
	ErrUnexpectedEndTime = errors.New("fixed-price listings cannot have an end time")
	ErrMissingTitle      = errors.New("title is required")
)

type ListingService struct {
	listings ListingStore
	clock    clock.Clock
}

func NewListingService(listings ListingStore, clk clock.Clock) *ListingService {
	return &ListingService{listings: listings, clock: clk}
}

func (s *ListingService) CreateListing(ctx context.Context, ownerID string, req *model.CreateListingRequest) (*model.Listing, error) {
	if req.Title == "" {
		return nil, ErrMissingTitle
	}
	if req.BasePrice.Sign() <= 0 {
		return nil, ErrInvalidBasePrice
	}
	if req.IsAuction {
		if req.AuctionEndAt == nil {
			return nil, ErrMissingEndTime
		}
		if !req.AuctionEndAt.After(s.clock.Now()) {
			return nil, ErrEndTimeInPast
		}
	} else if req.AuctionEndAt != nil {
		return nil, ErrUnexpectedEndTime
	}

	listing := &model.Listing{
		OwnerID:      ownerID,
		Title:        req.Title,
		BasePrice:    req.BasePrice,
		IsAuction:    req.IsAuction,
		AuctionEndAt: req.AuctionEndAt,
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *ListingService) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return listing, nil
}
