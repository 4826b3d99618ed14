package ingest

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordgate/pkg/engine"
)

func TestTCPIngestor_Integration(t *testing.T) {
	rb, err := engine.NewRingBuffer(1024)
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	ingestor := NewTCPIngestor(listener.Addr().String(), rb)
	go func() { done <- ingestor.Serve(ctx, listener) }()

	conn, err := net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("hello wordgate\n\n{\"text\": \"second\"}\r\n"))
	require.NoError(t, err)

	var got []string
	require.Eventually(t, func() bool {
		for msg := rb.Pop(); msg != nil; msg = rb.Pop() {
			got = append(got, string(msg))
		}
		return len(got) == 2
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, "hello wordgate\n", got[0])
	assert.True(t, strings.HasPrefix(got[1], `{"text": "second"}`))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
