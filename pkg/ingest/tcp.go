package ingest

import (
	"bufio"
	"context"
	"log"
	"net"

	"github.com/pkg/errors"

	"wordgate/pkg/engine"
)

// MaxMessageSize bounds a single chat message line.
const MaxMessageSize = 64 * 1024

// TCPIngestor accepts newline-delimited chat messages and pushes them to the buffer.
type TCPIngestor struct {
	addr   string
	buffer *engine.RingBuffer
}

// NewTCPIngestor creates an ingestor listening on addr that pushes lines into buffer.
func NewTCPIngestor(addr string, buffer *engine.RingBuffer) *TCPIngestor {
	return &TCPIngestor{
		addr:   addr,
		buffer: buffer,
	}
}

// Start listens until ctx is cancelled. Blocking call.
func (t *TCPIngestor) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", t.addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", t.addr)
	}
	return t.Serve(ctx, listener)
}

// Serve accepts connections on an existing listener until ctx is cancelled.
func (t *TCPIngestor) Serve(ctx context.Context, listener net.Listener) error {
	log.Printf("Ingest: TCP listening on %s", listener.Addr())

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("Ingest: accept error: %v", err)
			continue
		}
		go t.handleConnection(ctx, conn)
	}
}

func (t *TCPIngestor) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), MaxMessageSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		// Scanner reuses its buffer; the message outlives this iteration.
		msg := make([]byte, len(line)+1)
		copy(msg, line)
		msg[len(line)] = '\n'

		// Tail drop on a full buffer; logging every drop would flood the log.
		_ = t.buffer.Push(msg)
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		log.Printf("Ingest: read error from %s: %v", conn.RemoteAddr(), err)
	}
}
