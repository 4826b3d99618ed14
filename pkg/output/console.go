package output

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// Output receives batches of moderated messages. Each message keeps its
// trailing newline.
type Output interface {
	WriteBatch(msgs [][]byte) error
}

// ConsoleOutput writes messages to a writer, stdout by default.
type ConsoleOutput struct {
	mu sync.Mutex
	w  *bufio.Writer
}

// NewConsoleOutput creates an output that writes to stdout.
func NewConsoleOutput() *ConsoleOutput {
	return NewWriterOutput(os.Stdout)
}

// NewWriterOutput creates an output that writes to w.
func NewWriterOutput(w io.Writer) *ConsoleOutput {
	return &ConsoleOutput{w: bufio.NewWriter(w)}
}

func (c *ConsoleOutput) WriteBatch(msgs [][]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, msg := range msgs {
		if _, err := c.w.Write(msg); err != nil {
			return err
		}
	}
	return c.w.Flush()
}
