package engine

// Processor is one step of message moderation.
type Processor interface {
	// Process inspects a message and returns the (possibly rewritten) message
	// and whether it must be dropped. A dropped message stops the chain.
	Process(ctx *ProcessingContext, msg []byte) ([]byte, bool, error)

	// Name identifies the processor in logs.
	Name() string
}
