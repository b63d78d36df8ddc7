// internal/historian/historian.go drains the room action journal into long-term storage.
package historian

import (
	"context"
	"errors"
	"time"

	"github.com/jason-s-yu/trivia/internal/room"
	"github.com/sirupsen/logrus"
)

// Source yields journaled actions. Pop returns ok=false when nothing arrived within timeout.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (room.ActionRecord, bool, error)
}

// Sink stores a batch of actions atomically.
type Sink interface {
	InsertActions(ctx context.Context, recs []room.ActionRecord) error
}

// Options tunes batching. Zero values fall back to defaults.
type Options struct {
	BatchSize     int
	FlushInterval time.Duration
	// ErrorBackoff is the pause after a failed pop or flush, so a dead Redis or
	// Postgres does not spin the loop.
	ErrorBackoff time.Duration
	// MaxFlushAttempts is how many times one batch is tried before it is dropped.
	MaxFlushAttempts int
}

// Service accumulates actions from a Source and flushes them to a Sink whenever
// the batch is full or FlushInterval has passed. While a flush is failing nothing
// new is popped, so the batch never grows past BatchSize.
type Service struct {
	src    Source
	sink   Sink
	logger *logrus.Logger

	batchSize        int
	flushInterval    time.Duration
	errorBackoff     time.Duration
	maxFlushAttempts int

	batch    []room.ActionRecord
	attempts int
}

func NewService(src Source, sink Sink, logger *logrus.Logger, opts Options) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 500 * time.Millisecond
	}
	if opts.ErrorBackoff <= 0 {
		opts.ErrorBackoff = time.Second
	}
	if opts.MaxFlushAttempts <= 0 {
		opts.MaxFlushAttempts = 5
	}
	return &Service{
		src:              src,
		sink:             sink,
		logger:           logger,
		batchSize:        opts.BatchSize,
		flushInterval:    opts.FlushInterval,
		errorBackoff:     opts.ErrorBackoff,
		maxFlushAttempts: opts.MaxFlushAttempts,
		batch:            make([]room.ActionRecord, 0, opts.BatchSize),
	}
}

// Run pops and flushes until ctx is cancelled. Whatever is still batched is flushed
// once more before Run returns.
func (hs *Service) Run(ctx context.Context) {
	hs.logger.Info("historian started")
	lastFlush := time.Now()
	for {
		if ctx.Err() != nil {
			hs.flush(context.Background())
			hs.logger.Info("historian shutting down")
			return
		}

		// a pending batch that failed to flush is retried before anything else is popped
		if hs.attempts == 0 && len(hs.batch) < hs.batchSize {
			rec, ok, err := hs.src.Pop(ctx, hs.flushInterval)
			switch {
			case err != nil && errors.Is(err, context.Canceled):
				continue
			case err != nil:
				hs.logger.WithError(err).Error("failed to pop action record")
				hs.sleep(ctx)
			case ok:
				hs.batch = append(hs.batch, rec)
			}
		}

		if hs.attempts > 0 || len(hs.batch) >= hs.batchSize || time.Since(lastFlush) >= hs.flushInterval {
			if !hs.flush(ctx) {
				hs.sleep(ctx)
			}
			lastFlush = time.Now()
		}
	}
}

func (hs *Service) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(hs.errorBackoff):
	}
}

// flush writes the pending batch and reports whether it succeeded. A failed batch
// is kept for the next flush until MaxFlushAttempts is reached, then dropped.
func (hs *Service) flush(ctx context.Context) bool {
	if len(hs.batch) == 0 {
		return true
	}
	if err := hs.sink.InsertActions(ctx, hs.batch); err != nil {
		hs.attempts++
		log := hs.logger.WithError(err).WithFields(logrus.Fields{
			"pending": len(hs.batch),
			"attempt": hs.attempts,
		})
		if hs.attempts < hs.maxFlushAttempts {
			log.Warn("failed to flush room actions, will retry")
			return false
		}
		first, last := hs.batch[0], hs.batch[len(hs.batch)-1]
		log.WithFields(logrus.Fields{
			"first_room":  first.RoomCode,
			"first_index": first.ActionIndex,
			"last_room":   last.RoomCode,
			"last_index":  last.ActionIndex,
		}).Error("dropping room actions after repeated flush failures")
		hs.reset()
		return false
	}
	hs.logger.WithField("count", len(hs.batch)).Debug("flushed room actions")
	hs.reset()
	return true
}

func (hs *Service) reset() {
	hs.batch = make([]room.ActionRecord, 0, hs.batchSize)
	hs.attempts = 0
}
