package main

import (
	"context"
	"log"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"wordgate/pkg/wordset"
)

var (
	seedBadFile     string
	seedAllowedFile string
	seedNotify      bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import word list files into the sqlite or bolt store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedBadFile == "" && seedAllowedFile == "" {
			return errors.New("nothing to seed: pass --bad and/or --allowed")
		}

		a, err := newApp(seedNotify)
		if err != nil {
			return err
		}
		defer a.Close()

		store, ok := a.store.(wordStore)
		if !ok {
			return errors.Errorf("store driver %q is read-only", a.cfg.Store.Driver)
		}

		ctx := context.Background()
		bad, err := wordset.ReadWordFile(seedBadFile)
		if err != nil {
			return err
		}
		allowed, err := wordset.ReadWordFile(seedAllowedFile)
		if err != nil {
			return err
		}
		if err := store.AddBadWords(ctx, bad...); err != nil {
			return errors.Wrap(err, "seed bad words")
		}
		if err := store.AddAllowedWords(ctx, allowed...); err != nil {
			return errors.Wrap(err, "seed allowed words")
		}
		log.Printf("Seeded %d bad words, %d allowed words", len(bad), len(allowed))

		if seedNotify {
			// Running instances drop their cache and rebuild.
			if err := a.loader.Invalidate(ctx); err != nil {
				return err
			}
			if err := a.redis.Publish(ctx, a.cfg.Redis.Channel, "seed").Err(); err != nil {
				return errors.Wrap(err, "publish refresh")
			}
			log.Printf("Published refresh on %s", a.cfg.Redis.Channel)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedBadFile, "bad", "", "file with one bad word per line")
	seedCmd.Flags().StringVar(&seedAllowedFile, "allowed", "", "file with one allowed word per line")
	seedCmd.Flags().BoolVar(&seedNotify, "notify", false, "invalidate the Redis cache and publish a refresh")
}
