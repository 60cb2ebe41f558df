package service

import (
	"context"
	"log"
	"time"
)

// Sweeper periodically settles expired auctions nobody is actively
// viewing. Correctness never depends on it: phase evaluation is lazy
// and CloseAndSettle is idempotent, so the sweep and on-demand
// settlement can race freely.
type Sweeper struct {
	svc      *AuctionService
	interval time.Duration
	done     chan struct{}
}

func NewSweeper(svc *AuctionService, interval time.Duration) *Sweeper {
	return &Sweeper{svc: svc, interval: interval, done: make(chan struct{})}
}

func (s *Sweeper) Run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.interval)
			n, err := s.svc.SettleExpired(ctx)
			cancel()
			if err != nil {
				log.Printf("[SWEEP] failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[SWEEP] settled %d expired auctions", n)
			}
		case <-s.done:
			return
		}
	}
}

func (s *Sweeper) Shutdown() {
	close(s.done)
}
