package engine

import (
	"context"
)

// ProcessingContext carries per-worker state through a processor chain.
type ProcessingContext struct {
	context.Context

	// Flagged is set by a processor that found forbidden words in the
	// current message, whether or not the message was dropped.
	Flagged bool
}
