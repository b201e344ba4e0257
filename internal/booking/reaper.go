package booking

import (
	"context"
	"log"
	"time"
)

// StartReaper periodically deletes expired seat locks and flips lapsed
// pending reservations to expired.  Correctness never depends on it,
// every reader already filters on expiry, so failures are logged and
// the loop keeps going.  The loop stops when ctx is cancelled.
func (s *Service) StartReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reap(ctx)
		}
	}
}

func (s *Service) reap(ctx context.Context) {
	if n, err := s.locks.DeleteExpired(ctx); err != nil {
		log.Printf("reaper: delete expired locks: %v", err)
	} else if n > 0 {
		log.Printf("reaper: removed %d expired seat locks", n)
	}
	if n, err := s.reservations.MarkExpired(ctx); err != nil {
		log.Printf("reaper: expire reservations: %v", err)
	} else if n > 0 {
		log.Printf("reaper: expired %d pending reservations", n)
	}
}
