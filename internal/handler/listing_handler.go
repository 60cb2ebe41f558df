package handler

import (
	"errors"

	"auctionhouse-backend/internal/model"
	"auctionhouse-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ListingHandler struct {
	listingSvc *service.ListingService
}

func NewListingHandler(listingSvc *service.ListingService) *ListingHandler {
	return &ListingHandler{listingSvc: listingSvc}
}

// POST /api/v1/listings
func (h *ListingHandler) Create(c *fiber.Ctx) error {
	ownerID := c.Locals("user_id").(string)

	var req model.CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	listing, err := h.listingSvc.CreateListing(c.Context(), ownerID, &req)
	if err != nil {
		return listingError(c, err)
	}

	return c.Status(201).JSON(listing)
}

// GET /api/v1/listings/:id
func (h *ListingHandler) GetByID(c *fiber.Ctx) error {
	listing, err := h.listingSvc.GetListing(c.Context(), c.Params("id"))
	if err != nil {
		return listingError(c, err)
	}
	return c.JSON(listing)
}

func listingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrListingNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "listing not found"})
	case errors.Is(err, service.ErrMissingTitle),
		errors.Is(err, service.ErrInvalidBasePrice),
		errors.Is(err, service.ErrMissingEndTime),
		errors.Is(err, service.ErrEndTimeInPast),
		errors.Is(err, service.ErrUnexpectedEndTime):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
}
