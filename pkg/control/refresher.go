// Package control triggers out-of-schedule filter refreshes when the word
// lists change, either through a Redis pub/sub signal or a file edit.
package control

import (
	"context"
	"log"
)

// Refresher rebuilds the filter from the word store.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Invalidator drops cached word sets so a refresh reads the store.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// forceRefresh clears the cache, if any, then refreshes. Failures are logged
// only; the filter keeps serving the previous automaton.
func forceRefresh(ctx context.Context, source string, cache Invalidator, r Refresher) {
	if cache != nil {
		if err := cache.Invalidate(ctx); err != nil {
			log.Printf("Control: %s: cache invalidation failed: %v", source, err)
		}
	}
	if err := r.Refresh(ctx); err != nil {
		log.Printf("Control: %s: refresh failed: %v", source, err)
		return
	}
	log.Printf("Control: %s: filter refreshed", source)
}
