// Package wordset loads the forbidden and allowed word lists. The cache is
// consulted first; on a miss the persistent store is read and the cache is
// repopulated with a TTL.
package wordset

import (
	"context"
	"log"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultBadWordsKey     = "bad_words"
	DefaultAllowedWordsKey = "allowed_words"
	DefaultTTL             = 24 * time.Hour
)

var (
	ErrPatternSourceUnavailable = errors.New("pattern source unavailable")
)

// Store is the authoritative word source. Ordering is irrelevant and
// duplicates are tolerated.
type Store interface {
	BadWords(ctx context.Context) ([]string, error)
	AllowedWords(ctx context.Context) ([]string, error)
}

// Cache is a shared key-value cache holding word sets.
// Get returns ok=false on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]string, bool, error)
	Set(ctx context.Context, key string, words []string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Options configure a Loader. Zero values fall back to the defaults.
type Options struct {
	BadWordsKey     string
	AllowedWordsKey string
	TTL             time.Duration
}

// Loader reads word sets through the cache.
type Loader struct {
	store      Store
	cache      Cache // optional
	badKey     string
	allowedKey string
	ttl        time.Duration
}

func NewLoader(store Store, cache Cache, opts Options) *Loader {
	l := &Loader{
		store:      store,
		cache:      cache,
		badKey:     opts.BadWordsKey,
		allowedKey: opts.AllowedWordsKey,
		ttl:        opts.TTL,
	}
	if l.badKey == "" {
		l.badKey = DefaultBadWordsKey
	}
	if l.allowedKey == "" {
		l.allowedKey = DefaultAllowedWordsKey
	}
	if l.ttl <= 0 {
		l.ttl = DefaultTTL
	}
	return l
}

// LoadBadWords returns the forbidden word set. A cached empty set is treated
// as a miss so a bad cache write can never switch filtering off.
func (l *Loader) LoadBadWords(ctx context.Context) ([]string, error) {
	return l.load(ctx, l.badKey, false, l.store.BadWords)
}

// LoadAllowedWords returns the allow-list. An empty cached allow-list is a hit.
func (l *Loader) LoadAllowedWords(ctx context.Context) ([]string, error) {
	return l.load(ctx, l.allowedKey, true, l.store.AllowedWords)
}

// Invalidate removes both cached sets so the next load reads the store.
func (l *Loader) Invalidate(ctx context.Context) error {
	if l.cache == nil {
		return nil
	}
	return l.cache.Delete(ctx, l.badKey, l.allowedKey)
}

func (l *Loader) load(ctx context.Context, key string, emptyIsHit bool, fetch func(context.Context) ([]string, error)) ([]string, error) {
	if l.cache != nil {
		words, ok, err := l.cache.Get(ctx, key)
		switch {
		case err != nil:
			log.Printf("Wordset: cache read %s failed, falling back to store: %v", key, err)
		case ok && (emptyIsHit || len(words) > 0):
			return Dedupe(words), nil
		}
	}

	raw, err := fetch(ctx)
	if err != nil {
		return nil, errors.Wrapf(ErrPatternSourceUnavailable, "load %s: %v", key, err)
	}
	words := Dedupe(raw)

	if l.cache != nil {
		if err := l.cache.Set(ctx, key, words, l.ttl); err != nil {
			log.Printf("Wordset: cache write %s failed: %v", key, err)
		} else {
			log.Printf("Wordset: loaded %d %s from store and cached for %s", len(words), key, l.ttl)
		}
	}
	return words, nil
}

// Dedupe removes duplicates while keeping first-seen order.
func Dedupe(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
