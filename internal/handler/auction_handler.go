package handler

import (
	"errors"
	"log"
	"strings"

	"auctionhouse-backend/internal/auction"
	"auctionhouse-backend/internal/model"
	"auctionhouse-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuctionHandler struct {
	auctionSvc *service.AuctionService
}

func NewAuctionHandler(auctionSvc *service.AuctionService) *AuctionHandler {
	return &AuctionHandler{auctionSvc: auctionSvc}
}

// POST /api/v1/listings/:id/bids
func (h *AuctionHandler) PlaceBid(c *fiber.Ctx) error {
	bidderID := c.Locals("user_id").(string)
	listingID := c.Params("id")

	var req model.PlaceBidRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	receipt, err := h.auctionSvc.PlaceBid(c.Context(), listingID, bidderID, req.Amount)
	if err != nil {
		return auctionError(c, err)
	}

	return c.Status(201).JSON(receipt)
}

// GET /api/v1/listings/:id/auction
func (h *AuctionHandler) Status(c *fiber.Ctx) error {
	view, err := h.auctionSvc.GetStatus(c.Context(), c.Params("id"))
	if err != nil {
		return auctionError(c, err)
	}
	return c.JSON(view)
}

// GET /api/v1/listings/:id/bids
func (h *AuctionHandler) History(c *fiber.Ctx) error {
	bids, err := h.auctionSvc.History(c.Context(), c.Params("id"))
	if err != nil {
		return auctionError(c, err)
	}
	return c.JSON(fiber.Map{
		"bids":  bids,
		"total": len(bids),
	})
}

// POST /api/v1/listings/:id/close
func (h *AuctionHandler) Close(c *fiber.Ctx) error {
	outcome, err := h.auctionSvc.CloseAndSettle(c.Context(), c.Params("id"))
	if err != nil {
		return auctionError(c, err)
	}
	return c.JSON(outcome)
}

func auctionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrListingNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "listing not found"})
	case errors.Is(err, auction.ErrNotAuction):
		return c.Status(400).JSON(fiber.Map{"error": "listing is not an auction"})
	case errors.Is(err, auction.ErrAuctionClosed):
		return c.Status(410).JSON(fiber.Map{"error": "auction is closed"})
	case errors.Is(err, auction.ErrSelfBid):
		return c.Status(403).JSON(fiber.Map{"error": "cannot bid on your own listing"})
	case errors.Is(err, auction.ErrInvalidAmount):
		return c.Status(400).JSON(fiber.Map{"error": "bid amount must be greater than zero"})
	case errors.Is(err, auction.ErrBidTooLow):
		return c.Status(409).JSON(fiber.Map{"error": "bid must be greater than the current high bid"})
	case errors.Is(err, service.ErrAuctionStillOpen):
		return c.Status(409).JSON(fiber.Map{"error": "auction has not ended yet"})
	default:
		errStr := err.Error()
		if strings.Contains(errStr, "no rows") {
			return c.Status(404).JSON(fiber.Map{"error": "listing not found"})
		}
		log.Printf("[AUCTION ERROR] %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
}
