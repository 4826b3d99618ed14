package engine

// ProcessorChain runs processors in order.
type ProcessorChain struct {
	processors []Processor
}

// NewProcessorChain creates a chain with the given list of processors.
func NewProcessorChain(processors ...Processor) *ProcessorChain {
	return &ProcessorChain{
		processors: processors,
	}
}

// Process stops at the first processor that drops the message or fails.
func (c *ProcessorChain) Process(ctx *ProcessingContext, msg []byte) ([]byte, bool, error) {
	var drop bool
	var err error

	for _, p := range c.processors {
		msg, drop, err = p.Process(ctx, msg)
		if err != nil {
			return msg, false, err
		}
		if drop {
			return msg, true, nil
		}
	}
	return msg, false, nil
}

// Len returns the number of processors.
func (c *ProcessorChain) Len() int {
	return len(c.processors)
}
