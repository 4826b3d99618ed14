package control

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// RedisWatcher refreshes the filter whenever a message arrives on a Redis
// pub/sub channel. Admin tooling publishes after editing the word tables.
type RedisWatcher struct {
	client    redis.UniversalClient
	channel   string
	cache     Invalidator
	refresher Refresher
}

func NewRedisWatcher(client redis.UniversalClient, channel string, cache Invalidator, r Refresher) *RedisWatcher {
	return &RedisWatcher{
		client:    client,
		channel:   channel,
		cache:     cache,
		refresher: r,
	}
}

// Start subscribes and returns once the subscription is confirmed. Updates are
// handled in the background until ctx is cancelled.
func (w *RedisWatcher) Start(ctx context.Context) error {
	pubsub := w.client.Subscribe(ctx, w.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return err
	}
	log.Printf("Control: watching Redis channel %s", w.channel)

	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				log.Printf("Control: received update signal: %s", msg.Payload)
				forceRefresh(ctx, "redis", w.cache, w.refresher)
			}
		}
	}()
	return nil
}
