package engine

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"wordgate/pkg/output"
)

// Stats counts messages seen by a Pipeline.
type Stats struct {
	Processed uint64 // went through the processor chain
	Flagged   uint64 // contained forbidden words
	Dropped   uint64 // removed by a processor
	Bypassed  uint64 // forwarded unmoderated while the buffer was nearly full
	Errors    uint64 // processor failures; the message is dropped
}

// Pipeline connects the ingest buffer, the moderation chain and the outputs.
type Pipeline struct {
	buffer *RingBuffer
	chain  atomic.Pointer[ProcessorChain] // hot-swappable
	output atomic.Pointer[output.FanOutOutput]

	batchSize int
	// Above this buffer fill ratio messages skip moderation so the gateway
	// keeps draining. Zero disables the bypass.
	bypassRatio float64

	processed, flagged, dropped, bypassed, failed atomic.Uint64
}

// NewPipeline creates a pipeline that drains buf through chain into out.
func NewPipeline(buf *RingBuffer, chain *ProcessorChain, out output.Output, batchSize int) *Pipeline {
	if batchSize < 1 {
		batchSize = 100
	}
	p := &Pipeline{
		buffer:      buf,
		batchSize:   batchSize,
		bypassRatio: 0.8,
	}
	p.chain.Store(chain)
	p.UpdateOutput(out)
	return p
}

// SetBypassRatio changes the fill ratio above which moderation is skipped.
// Must be called before Start.
func (p *Pipeline) SetBypassRatio(r float64) {
	p.bypassRatio = r
}

// UpdateChain hot-swaps the processor chain.
func (p *Pipeline) UpdateChain(chain *ProcessorChain) {
	p.chain.Store(chain)
	log.Printf("Pipeline: processor chain swapped (%d processors)", chain.Len())
}

// UpdateOutput hot-swaps the output, wrapping it in a fan-out if needed.
func (p *Pipeline) UpdateOutput(out output.Output) {
	fan, ok := out.(*output.FanOutOutput)
	if !ok {
		fan = output.NewFanOutOutput(out)
	}
	p.output.Store(fan)
}

func (p *Pipeline) Stats() Stats {
	return Stats{
		Processed: p.processed.Load(),
		Flagged:   p.flagged.Load(),
		Dropped:   p.dropped.Load(),
		Bypassed:  p.bypassed.Load(),
		Errors:    p.failed.Load(),
	}
}

// Start launches the single moderation worker. It flushes and exits when ctx ends.
func (p *Pipeline) Start(ctx context.Context) {
	log.Println("Pipeline: starting moderation worker")
	go p.worker(ctx)
}

func (p *Pipeline) worker(ctx context.Context) {
	batch := make([][]byte, 0, p.batchSize)
	pCtx := &ProcessingContext{Context: ctx}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := p.output.Load().WriteBatch(batch); err != nil {
			log.Printf("Pipeline: output error: %v", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-ticker.C:
			flush()
		default:
			msg := p.buffer.Pop()
			if msg == nil {
				time.Sleep(1 * time.Millisecond)
				continue
			}

			if p.overloaded() {
				p.bypassed.Add(1)
				batch = append(batch, msg)
			} else if out, keep := p.moderate(pCtx, msg); keep {
				batch = append(batch, out)
			}

			if len(batch) >= p.batchSize {
				flush()
			}
		}
	}
}

func (p *Pipeline) moderate(pCtx *ProcessingContext, msg []byte) ([]byte, bool) {
	pCtx.Flagged = false
	p.processed.Add(1)

	out, drop, err := p.chain.Load().Process(pCtx, msg)
	if pCtx.Flagged {
		p.flagged.Add(1)
	}
	if err != nil {
		p.failed.Add(1)
		log.Printf("Pipeline: process error: %v", err)
		return nil, false
	}
	if drop {
		p.dropped.Add(1)
		return nil, false
	}
	return out, true
}

func (p *Pipeline) overloaded() bool {
	if p.bypassRatio <= 0 {
		return false
	}
	return float64(p.buffer.Usage()) > float64(p.buffer.Capacity())*p.bypassRatio
}
