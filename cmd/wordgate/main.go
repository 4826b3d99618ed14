package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"wordgate/pkg/config"
	"wordgate/pkg/filter"
	"wordgate/pkg/wordset"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "wordgate",
	Short:         "Forbidden word filter for chat messages and reviews",
	Long:          "Aho-Corasick based forbidden word detection with allow-list, Redis caching and hot reload.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (defaults if empty)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}
}

// wordStore is a persistent store that can also be seeded.
type wordStore interface {
	wordset.Store
	AddBadWords(ctx context.Context, words ...string) error
	AddAllowedWords(ctx context.Context, words ...string) error
}

// app bundles the components every command needs.
type app struct {
	cfg    *config.Config
	store  wordset.Store
	redis  *redis.Client
	loader *wordset.Loader
	filter *filter.Service
	closer []io.Closer
}

// newApp loads config and wires store, cache and filter. Redis is optional:
// withCache=false builds straight from the store.
func newApp(withCache bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	if a.store, err = openStore(cfg.Store); err != nil {
		return nil, err
	}
	if c, ok := a.store.(io.Closer); ok {
		a.closer = append(a.closer, c)
	}

	var cache wordset.Cache
	if withCache {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closer = append(a.closer, a.redis)
		cache = wordset.NewRedisCache(a.redis)
	}

	a.loader = wordset.NewLoader(a.store, cache, wordset.Options{
		BadWordsKey:     cfg.Redis.BadWordsKey,
		AllowedWordsKey: cfg.Redis.AllowedWordsKey,
		TTL:             cfg.Redis.TTL,
	})
	a.filter = filter.NewService(a.loader, cfg.Filter.RefreshInterval)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closer) - 1; i >= 0; i-- {
		if err := a.closer[i].Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}
}

func openStore(cfg config.StoreConfig) (wordset.Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return wordset.NewSQLiteStore(cfg.Path)
	case "bolt":
		return wordset.NewBoltStore(cfg.Path)
	case "file":
		return wordset.NewFileStore(cfg.BadWordsFile, cfg.AllowedWordsFile), nil
	default:
		return nil, errors.Errorf("unknown store driver %q", cfg.Driver)
	}
}
