package service

import (
	"encoding/json"
	"log"
	"sync"

	"auctionhouse-backend/internal/model"

	"github.com/gofiber/contrib/websocket"
)

// FeedClient is one websocket subscriber watching a single listing.
type FeedClient struct {
	Conn      *websocket.Conn
	ListingID string
	Send      chan []byte
}

// FeedHub fans accepted-bid and settlement events out to the watchers
// of each listing, so a presentation layer can render a live bid list
// without polling.
type FeedHub struct {
	clients    map[*FeedClient]bool
	register   chan *FeedClient
	unregister chan *FeedClient
	mu         sync.RWMutex
	done       chan struct{}
}

func NewFeedHub() *FeedHub {
	return &FeedHub{
		clients:    make(map[*FeedClient]bool),
		register:   make(chan *FeedClient),
		unregister: make(chan *FeedClient),
		done:       make(chan struct{}),
	}
}

func (h *FeedHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("FEED: watcher joined listing %s (total: %d)", client.ListingID, total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("FEED: watcher left listing %s (total: %d)", client.ListingID, total)

		case <-h.done:
			return
		}
	}
}

func (h *FeedHub) Shutdown() {
	close(h.done)
}

func (h *FeedHub) Register(client *FeedClient) {
	select {
	case h.register <- client:
	case <-h.done:
		// Hub is gone; the client is never added, so Unregister's
		// fallback is what closes Send.
	}
}

func (h *FeedHub) Unregister(client *FeedClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
		h.mu.Lock()
		delete(h.clients, client)
		close(client.Send)
		h.mu.Unlock()
	}
}

// Publish sends an event to every watcher of the listing. Slow clients
// are skipped rather than blocking the caller.
func (h *FeedHub) Publish(listingID, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg, err := json.Marshal(model.WSEvent{Type: eventType, Data: data})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.ListingID != listingID {
			continue
		}
		select {
		case client.Send <- msg:
		default:
		}
	}
}

func (h *FeedHub) WatcherCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
