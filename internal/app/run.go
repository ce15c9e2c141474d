package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/nixgraphgo/internal/ctxlog"
	"github.com/vk/nixgraphgo/internal/derivation"
	"github.com/vk/nixgraphgo/internal/extract"
)

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if cfg.OutputSchema {
		schema, err := derivation.Schema()
		if err != nil {
			return fmt.Errorf("could not generate schema: %w", err)
		}
		_, err = fmt.Fprintln(a.outW, string(schema))
		return err
	}

	out, closeOut, err := a.openOutput(cfg.OutputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	stream, err := extract.Run(ctx, extract.Options{
		FlakeRef:       cfg.FlakeRef,
		System:         cfg.System,
		AttributePath:  cfg.AttributePath,
		Offline:        cfg.Offline,
		RuntimeOnly:    cfg.RuntimeOnly,
		IncludeNarInfo: cfg.IncludeNarInfo,
		BinaryCaches:   cfg.BinaryCaches,
		Workers:        cfg.Workers,
		Progress:       cfg.Progress,
	})
	if err != nil {
		return fmt.Errorf("extraction failed to start: %w", err)
	}

	eventsDone := a.logEvents(stream)

	count := 0
	for description := range stream.Results() {
		if err := writeDescription(out, description, cfg.Pretty); err != nil {
			// The consumer side is broken (e.g. a closed pipe); tell the
			// traversal to stop instead of extracting into the void.
			stream.Close()
			for range stream.Results() {
			}
			<-eventsDone
			return fmt.Errorf("could not write result: %w", err)
		}
		count++
	}
	<-eventsDone

	a.logger.Info("Extraction finished.", "derivations", count)
	a.logger.Debug("App.Run method finished.")
	return nil
}

// logEvents mirrors traversal lifecycle events into the log until the
// event channel closes. The returned channel closes when mirroring is done.
func (a *App) logEvents(stream *extract.Stream) <-chan struct{} {
	done := make(chan struct{})
	events := stream.Events()
	if events == nil {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		for event := range events {
			a.logger.Info("Progress.", "worker", event.WorkerID, "status", string(event.Status), "attribute_path", event.AttributePath)
		}
	}()
	return done
}

// openOutput resolves the configured output destination. Empty and "-"
// both mean the writer the App was constructed with.
func (a *App) openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return a.outW, func() {}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create output file: %w", err)
	}
	return file, func() { file.Close() }, nil
}
