package extract

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/vk/nixgraphgo/internal/claimset"
	"github.com/vk/nixgraphgo/internal/ctxlog"
	"github.com/vk/nixgraphgo/internal/derivation"
)

// ErrStreamClosed is returned inside a unit of work when the consumer has
// closed the stream. It is fatal to that unit only: the work is abandoned
// without recursing, and no new evaluations are scheduled for its subtree.
var ErrStreamClosed = errors.New("result stream closed by consumer")

// Describer resolves one derivation's full description. Implementations
// are expected to be safe for concurrent use.
type Describer interface {
	Describe(ctx context.Context, attributePath string) (*derivation.Description, error)
}

// Enricher attaches cache metadata to a resolved output path.
type Enricher interface {
	Enrich(ctx context.Context, outputPath string) (*derivation.NarInfo, error)
}

// resultBuffer softens the coupling between producers and the consumer;
// producers block (never drop) once it is full.
const resultBuffer = 64

// eventBuffer absorbs progress bursts. Unlike results, events are dropped
// when the consumer falls this far behind, because observability must
// never stall the traversal.
const eventBuffer = 256

// engine is the state shared by every unit of work in one extraction run.
type engine struct {
	describer Describer
	enricher  Enricher // nil when enrichment is off

	claimed *claimset.Set
	sem     *semaphore.Weighted

	results chan *derivation.Description
	events  chan Event // nil when progress reporting is off

	wg        sync.WaitGroup
	workerSeq atomic.Int64
}

func newEngine(describer Describer, enricher Enricher, workers int, progress bool) *engine {
	e := &engine{
		describer: describer,
		enricher:  enricher,
		claimed:   claimset.New(),
		sem:       semaphore.NewWeighted(int64(workers)),
		results:   make(chan *derivation.Description, resultBuffer),
	}
	if progress {
		e.events = make(chan Event, eventBuffer)
	}
	return e
}

// start seeds one unit of work per root and returns the consumer's stream
// immediately. onDone runs after the traversal has fully terminated and
// the channels are closed.
func (e *engine) start(ctx context.Context, roots []string, onDone func()) *Stream {
	runCtx, cancel := context.WithCancel(ctx)

	for _, root := range roots {
		e.wg.Add(1)
		go e.process(runCtx, root)
	}

	// Closing the channels after the WaitGroup drains is the moment the
	// last producer handle is gone; the consumer's range loops end here.
	go func() {
		e.wg.Wait()
		close(e.results)
		if e.events != nil {
			close(e.events)
		}
		cancel()
		if onDone != nil {
			onDone()
		}
	}()

	return &Stream{results: e.results, events: e.events, cancel: cancel}
}

// process runs one unit of work to a terminal state. Failures are node
// local: they are logged here and never propagate to siblings or
// ancestors.
func (e *engine) process(ctx context.Context, attributePath string) {
	defer e.wg.Done()
	logger := ctxlog.FromContext(ctx)

	err := e.processNode(ctx, attributePath)
	switch {
	case err == nil:
	case errors.Is(err, ErrStreamClosed), errors.Is(err, context.Canceled):
		logger.Debug("Abandoning unit of work, consumer is gone.", "attribute_path", attributePath)
	default:
		logger.Warn("Could not process derivation, abandoning branch.", "attribute_path", attributePath, "error", err)
	}
}

func (e *engine) processNode(ctx context.Context, attributePath string) error {
	logger := ctxlog.FromContext(ctx)
	workerID := e.workerSeq.Add(1)

	e.event(Event{Status: StatusStarted, WorkerID: workerID, AttributePath: attributePath})

	// The semaphore bounds concurrent evaluations. It is held only around
	// the external call, never across the fan-out, so deep recursion can
	// not deadlock the pool.
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return ErrStreamClosed
	}
	description, err := e.describer.Describe(ctx, attributePath)
	e.sem.Release(1)
	if err != nil {
		return err
	}

	if e.enricher != nil && description.OutputPath != nil {
		narInfo, err := e.enricher.Enrich(ctx, *description.OutputPath)
		if err != nil {
			return err
		}
		description.NarInfo = narInfo
	}

	// Emit before recursing: results are pre-order within this subtree,
	// arbitrarily interleaved across sibling subtrees.
	select {
	case e.results <- description:
	case <-ctx.Done():
		return ErrStreamClosed
	}

	for _, input := range description.BuildInputs {
		outputPath := ""
		if input.OutputPath != nil {
			outputPath = *input.OutputPath
		} else {
			logger.Warn("Found a build input without an output path; it cannot be deduplicated.", "attribute_path", input.AttributePath)
		}

		if !e.claimed.Claim(outputPath) {
			logger.Debug("Skipping already claimed derivation.", "attribute_path", input.AttributePath)
			e.event(Event{Status: StatusSkipped, WorkerID: workerID, AttributePath: input.AttributePath})
			continue
		}

		// A closed stream means no new work for this subtree. The claim
		// already made is harmless: nothing else will emit that path
		// either.
		if ctx.Err() != nil {
			return ErrStreamClosed
		}

		e.wg.Add(1)
		go e.process(ctx, input.AttributePath)
	}

	e.event(Event{Status: StatusCompleted, WorkerID: workerID, AttributePath: attributePath})
	return nil
}

// event delivers a progress event best-effort. No-op when progress
// reporting is off; drops the event when the consumer is too far behind.
func (e *engine) event(event Event) {
	if e.events == nil {
		return
	}
	select {
	case e.events <- event:
	default:
	}
}
