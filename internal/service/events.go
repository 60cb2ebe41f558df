package service

import (
	"encoding/json"
	"fmt"
	"log"

	"auctionhouse-backend/internal/model"

	"github.com/nats-io/nats.go"
)

// EventPublisher delivers auction events to out-of-process consumers
// (notification dispatchers, archival). At-least-once, best effort.
type EventPublisher interface {
	PublishBidPlaced(e *model.BidPlacedEvent) error
	PublishAuctionClosed(e *model.AuctionClosedEvent) error
}

const (
	subjectBidPlaced     = "auction.bid_placed.%s"
	subjectAuctionClosed = "auction.closed.%s"
)

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("auctionhouse-backend"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) PublishBidPlaced(e *model.BidPlacedEvent) error {
	return p.publish(fmt.Sprintf(subjectBidPlaced, e.ListingID), e)
}

func (p *NATSPublisher) PublishAuctionClosed(e *model.AuctionClosedEvent) error {
	return p.publish(fmt.Sprintf(subjectAuctionClosed, e.ListingID), e)
}

func (p *NATSPublisher) publish(subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.conn.Publish(subject, data)
}

func (p *NATSPublisher) Close() {
	p.conn.Close()
}

// LogPublisher is the fallback when no NATS URL is configured.
type LogPublisher struct{}

func NewLogPublisher() LogPublisher { return LogPublisher{} }

func (LogPublisher) PublishBidPlaced(e *model.BidPlacedEvent) error {
	log.Printf("[EVENT] bid_placed listing=%s bidder=%s amount=%s", e.ListingID, e.BidderID, e.Amount)
	return nil
}

func (LogPublisher) PublishAuctionClosed(e *model.AuctionClosedEvent) error {
	if e.WinnerID != nil {
		log.Printf("[EVENT] auction_closed listing=%s winner=%s amount=%s", e.ListingID, *e.WinnerID, e.WinningAmount)
	} else {
		log.Printf("[EVENT] auction_closed listing=%s no bids", e.ListingID)
	}
	return nil
}
