package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wordgate/pkg/config"
	"wordgate/pkg/control"
	"wordgate/pkg/engine"
	"wordgate/pkg/ingest"
	"wordgate/pkg/output"
	"wordgate/pkg/wordset"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the filter with scheduled refresh and the TCP moderation gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Println("Initializing wordgate...")

		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()
		cfg := a.cfg

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Filter: async initial build, then periodic refresh.
		go a.filter.Run(ctx)

		// Out-of-schedule refresh triggers.
		watcher := control.NewRedisWatcher(a.redis, cfg.Redis.Channel, a.loader, a.filter)
		if err := watcher.Start(ctx); err != nil {
			log.Printf("Control: Redis watcher disabled: %v", err)
		}
		if fs, ok := a.store.(*wordset.FileStore); ok {
			fw, err := control.NewFileWatcher(fs.Paths(), a.loader, a.filter)
			if err == nil {
				err = fw.Start(ctx)
			}
			if err != nil {
				log.Printf("Control: file watcher disabled: %v", err)
			}
		}

		// Gateway: ingest -> buffer -> moderation -> outputs.
		buffer, err := engine.NewRingBuffer(cfg.Pipeline.BufferSize)
		if err != nil {
			return err
		}
		proc, err := engine.NewModerationProcessor(a.filter, engine.ModerationConfig{
			Name:     "moderation",
			TextPath: cfg.Pipeline.TextPath,
			Action:   engine.Action(cfg.Pipeline.Action),
		})
		if err != nil {
			return err
		}
		pipeline := engine.NewPipeline(buffer, engine.NewProcessorChain(proc), buildOutputs(cfg.Pipeline.Outputs), cfg.Pipeline.BatchSize)
		pipeline.Start(ctx)

		tcp := ingest.NewTCPIngestor(fmt.Sprintf(":%d", cfg.Server.TCPPort), buffer)
		go func() {
			if err := tcp.Start(ctx); err != nil {
				log.Fatalf("TCP ingestor died: %v", err)
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		log.Println("wordgate running. Press Ctrl+C to stop.")

		<-sigChan
		log.Println("Shutting down...")
		cancel()
		time.Sleep(1 * time.Second) // let the pipeline flush

		s := pipeline.Stats()
		log.Printf("Processed %d messages: %d flagged, %d dropped, %d bypassed, %d errors, %d rejected (buffer full)",
			s.Processed, s.Flagged, s.Dropped, s.Bypassed, s.Errors, buffer.DroppedCount())
		return nil
	},
}

// buildOutputs defaults to the console when nothing usable is configured.
func buildOutputs(cfgs []config.OutputConfig) output.Output {
	var outputs []output.Output
	for _, oc := range cfgs {
		switch oc.Type {
		case "console":
			outputs = append(outputs, output.NewConsoleOutput())
		case "http":
			if oc.URL != "" {
				outputs = append(outputs, output.NewHTTPOutput(oc.URL, oc.Headers))
			}
		default:
			log.Printf("Ignoring unknown output type %q", oc.Type)
		}
	}
	if len(outputs) == 0 {
		outputs = append(outputs, output.NewConsoleOutput())
	}
	return output.NewFanOutOutput(outputs...)
}
