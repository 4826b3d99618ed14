package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordgate/pkg/filter"
)

// MockOutput captures writes for verification.
type MockOutput struct {
	mu       sync.Mutex
	Captured []string
}

func (m *MockOutput) WriteBatch(msgs [][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range msgs {
		m.Captured = append(m.Captured, string(msg))
	}
	return nil
}

func (m *MockOutput) snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Captured...)
}

type staticWords struct{ bad, allowed []string }

func (s staticWords) LoadBadWords(ctx context.Context) ([]string, error)     { return s.bad, nil }
func (s staticWords) LoadAllowedWords(ctx context.Context) ([]string, error) { return s.allowed, nil }

func TestPipeline_Integration(t *testing.T) {
	svc := filter.NewService(staticWords{bad: []string{"bad"}, allowed: []string{"badge"}}, time.Hour)
	proc, err := NewModerationProcessor(svc, ModerationConfig{Name: "moderate"})
	require.NoError(t, err)

	buf, err := NewRingBuffer(128)
	require.NoError(t, err)
	out := &MockOutput{}
	p := NewPipeline(buf, NewProcessorChain(proc), out, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	require.NoError(t, buf.Push([]byte(`{"text": "good morning"}`+"\n")))
	require.NoError(t, buf.Push([]byte(`{"text": "nice badge"}`+"\n")))
	require.NoError(t, buf.Push([]byte(`{"text": "you are b.a.d"}`+"\n")))
	require.NoError(t, buf.Push([]byte("plain text, still bad\n")))

	require.Eventually(t, func() bool { return p.Stats().Processed == 4 }, time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return len(out.snapshot()) == 2 }, time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{
		`{"text": "good morning"}` + "\n",
		`{"text": "nice badge"}` + "\n",
	}, out.snapshot())

	stats := p.Stats()
	assert.Equal(t, uint64(2), stats.Flagged)
	assert.Equal(t, uint64(2), stats.Dropped)
	assert.Equal(t, uint64(0), stats.Errors)
}

func TestPipeline_HotSwapChain(t *testing.T) {
	buf, err := NewRingBuffer(16)
	require.NoError(t, err)
	out := &MockOutput{}
	p := NewPipeline(buf, NewProcessorChain(), out, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	require.NoError(t, buf.Push([]byte("bad\n")))
	require.Eventually(t, func() bool { return len(out.snapshot()) == 1 }, time.Second, 10*time.Millisecond)

	proc, err := NewModerationProcessor(stubChecker{words: []string{"bad"}}, ModerationConfig{Name: "moderate"})
	require.NoError(t, err)
	p.UpdateChain(NewProcessorChain(proc))

	require.NoError(t, buf.Push([]byte("bad\n")))
	require.NoError(t, buf.Push([]byte("good\n")))
	require.Eventually(t, func() bool { return len(out.snapshot()) == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"bad\n", "good\n"}, out.snapshot())
}

func TestPipeline_BypassWhenOverloaded(t *testing.T) {
	buf, err := NewRingBuffer(8)
	require.NoError(t, err)
	proc, err := NewModerationProcessor(stubChecker{words: []string{"bad"}}, ModerationConfig{Name: "moderate"})
	require.NoError(t, err)
	out := &MockOutput{}
	p := NewPipeline(buf, NewProcessorChain(proc), out, 100)

	// Fill the buffer before the worker starts so the first pops see it full.
	for i := 0; i < 8; i++ {
		require.NoError(t, buf.Push([]byte("bad\n")))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	require.Eventually(t, func() bool { return buf.Usage() == 0 }, time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		s := p.Stats()
		return s.Bypassed+s.Processed == 8
	}, time.Second, 10*time.Millisecond)

	stats := p.Stats()
	assert.Greater(t, stats.Bypassed, uint64(0))
	assert.Equal(t, stats.Processed, stats.Dropped)
}
