// Package filter owns the active forbidden-word automaton and answers
// moderation queries against it.
package filter

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"wordgate/pkg/automaton"
	"wordgate/pkg/boundary"
)

const DefaultRefreshInterval = 12 * time.Hour

const buildKey = "build"

var (
	ErrFilterUnavailable = errors.New("filter unavailable")
)

// WordLoader supplies the word sets a build starts from.
type WordLoader interface {
	LoadBadWords(ctx context.Context) ([]string, error)
	LoadAllowedWords(ctx context.Context) ([]string, error)
}

// Status is the lifecycle state of a Service.
type Status int32

const (
	StatusUninitialized Status = iota
	StatusBuilding
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusBuilding:
		return "building"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// snapshot is one published automaton and the allow-list built with it.
// It is never modified after it is stored.
type snapshot struct {
	automaton   *automaton.Automaton
	allow       boundary.AllowSet
	fingerprint uint64
	builtAt     time.Time
}

// Service is safe for concurrent use. Queries load the current snapshot once
// and never block on a refresh, except for the very first build.
type Service struct {
	loader   WordLoader
	interval time.Duration

	state    atomic.Pointer[snapshot] // hot-swappable
	building atomic.Int32
	group    singleflight.Group
	buildMu  sync.Mutex // one load-and-compile at a time
}

// NewService creates a service with no automaton yet. A non-positive
// refreshInterval falls back to DefaultRefreshInterval.
func NewService(loader WordLoader, refreshInterval time.Duration) *Service {
	if refreshInterval <= 0 {
		refreshInterval = DefaultRefreshInterval
	}
	return &Service{
		loader:   loader,
		interval: refreshInterval,
	}
}

// Status reports whether a build is running and whether one has completed.
func (s *Service) Status() Status {
	if s.building.Load() > 0 {
		return StatusBuilding
	}
	if s.state.Load() == nil {
		return StatusUninitialized
	}
	return StatusReady
}

// Stats describes the active snapshot. Zero values mean nothing is built yet.
type Stats struct {
	Patterns int
	Allowed  int
	Nodes    int
	BuiltAt  time.Time
}

func (s *Service) Stats() Stats {
	snap := s.state.Load()
	if snap == nil {
		return Stats{}
	}
	return Stats{
		Patterns: snap.automaton.PatternCount(),
		Allowed:  len(snap.allow),
		Nodes:    snap.automaton.NodeCount(),
		BuiltAt:  snap.builtAt,
	}
}

// ContainsForbiddenWord reports whether text holds at least one forbidden
// word that is not excused by the allow-list.
func (s *Service) ContainsForbiddenWord(ctx context.Context, text string) (bool, error) {
	if isBlank(text) {
		return false, nil
	}
	snap, err := s.current(ctx)
	if err != nil {
		return false, err
	}

	t := boundary.Normalize(text)
	for _, m := range snap.automaton.Search(t.Normalized) {
		if !boundary.IsAllowedOccurrence(t, m, snap.allow) {
			return true, nil
		}
	}
	return false, nil
}

// FindForbiddenWords returns the distinct forbidden words found in text in
// the order they first occur.
func (s *Service) FindForbiddenWords(ctx context.Context, text string) ([]string, error) {
	if isBlank(text) {
		return nil, nil
	}
	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.find(text), nil
}

func (snap *snapshot) find(text string) []string {
	t := boundary.Normalize(text)
	var out []string
	seen := make(map[int]struct{})
	for _, m := range snap.automaton.Search(t.Normalized) {
		if _, ok := seen[m.Pattern]; ok {
			continue
		}
		if boundary.IsAllowedOccurrence(t, m, snap.allow) {
			continue
		}
		seen[m.Pattern] = struct{}{}
		out = append(out, snap.automaton.Pattern(m.Pattern))
	}
	return out
}

// Refresh reloads both word sets and publishes a new automaton. On failure
// the previous snapshot stays active; the error is logged and returned.
//
// Refresh never joins a build that is already running: that build may have
// read the word sets before they changed. It starts a new load that runs
// once the in-flight one has published.
func (s *Service) Refresh(ctx context.Context) error {
	s.group.Forget(buildKey)
	_, err := s.build(ctx)
	if err != nil {
		log.Printf("Filter: refresh failed, keeping previous automaton: %v", err)
	}
	return err
}

// current returns the active snapshot, building one synchronously if none
// has ever been published.
func (s *Service) current(ctx context.Context) (*snapshot, error) {
	if snap := s.state.Load(); snap != nil {
		return snap, nil
	}

	log.Println("Filter: automaton not initialized, building synchronously")
	snap, err := s.build(ctx)
	if err != nil {
		return nil, errors.Wrapf(ErrFilterUnavailable, "build on demand: %v", err)
	}
	return snap, nil
}

// build coalesces concurrent callers into one load-and-compile run. The run
// is detached from the caller's cancellation since other callers share it; a
// cancelled caller stops waiting and gets its context error.
func (s *Service) build(ctx context.Context) (*snapshot, error) {
	ch := s.group.DoChan(buildKey, func() (interface{}, error) {
		return s.rebuild(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*snapshot), nil
	}
}

func (s *Service) rebuild(ctx context.Context) (*snapshot, error) {
	s.building.Add(1)
	defer s.building.Add(-1)
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	start := time.Now()

	bad, err := s.loader.LoadBadWords(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load bad words")
	}
	allowed, err := s.loader.LoadAllowedWords(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load allowed words")
	}

	patterns := normalizePatterns(bad)
	allow := boundary.NewAllowSet(allowed)
	fp := fingerprint(patterns, allow)

	if prev := s.state.Load(); prev != nil && prev.fingerprint == fp {
		log.Printf("Filter: word sets unchanged (%d patterns), keeping current automaton", len(patterns))
		return prev, nil
	}

	a, err := automaton.Build(patterns)
	if err != nil {
		return nil, errors.Wrap(err, "build automaton")
	}

	snap := &snapshot{
		automaton:   a,
		allow:       allow,
		fingerprint: fp,
		builtAt:     time.Now(),
	}
	s.state.Store(snap)

	log.Printf("Filter: automaton built with %d patterns, %d allowed words, %d nodes in %s",
		a.PatternCount(), len(allow), a.NodeCount(), time.Since(start))
	return snap, nil
}

// normalizePatterns brings bad words into the same form as normalized text.
// Words with nothing matchable left are skipped since they could never occur.
func normalizePatterns(words []string) []string {
	out := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		n := boundary.NormalizeWord(w)
		if n == "" {
			log.Printf("Filter: skipping bad word %q, nothing left after normalization", w)
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func fingerprint(patterns []string, allow boundary.AllowSet) uint64 {
	bad := append([]string(nil), patterns...)
	sort.Strings(bad)
	ok := make([]string, 0, len(allow))
	for w := range allow {
		ok = append(ok, w)
	}
	sort.Strings(ok)

	h := xxhash.New()
	for _, w := range bad {
		h.WriteString(w)
		h.WriteString("\n")
	}
	h.WriteString("\x00")
	for _, w := range ok {
		h.WriteString(w)
		h.WriteString("\n")
	}
	return h.Sum64()
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
