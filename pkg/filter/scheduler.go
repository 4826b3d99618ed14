package filter

import (
	"context"
	"log"
	"time"
)

// Run performs the initial build in the background and then refreshes on a
// fixed interval until ctx is cancelled. Refresh failures never stop the loop.
func (s *Service) Run(ctx context.Context) {
	go func() {
		if err := s.Refresh(ctx); err == nil {
			log.Println("Filter: initial automaton ready")
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("Filter: refreshing every %s", s.interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Refresh(ctx)
		}
	}
}
