// internal/historian/historian.go
package historian

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jason-s-yu/solitaire/internal/cache"
	"github.com/jason-s-yu/solitaire/internal/models"
	"github.com/sirupsen/logrus"
)

// Queue yields logged session actions. cache.ActionQueue reads them from
// the Redis list the sessions publish to.
type Queue interface {
	// Pop waits up to timeout and returns nil, nil when nothing arrived.
	Pop(ctx context.Context, timeout time.Duration) (*cache.ActionRecord, error)
}

// WriteFunc persists one batch, e.g. database.InsertGameActions.
type WriteFunc func(ctx context.Context, actions []models.GameAction) error

// Service drains the action queue into the database in batches. A batch is
// written when it reaches the batch size or when the flush delay elapses.
type Service struct {
	queue      Queue
	write      WriteFunc
	batchSize  int
	flushDelay time.Duration
	popTimeout time.Duration
	retryDelay time.Duration // wait after a failed pop
	logger     logrus.FieldLogger

	batchMu sync.Mutex
	batch   []models.GameAction
}

func New(queue Queue, write WriteFunc, batchSize int, flushDelay time.Duration, logger logrus.FieldLogger) *Service {
	if batchSize < 1 {
		batchSize = 1
	}
	if flushDelay <= 0 {
		flushDelay = 500 * time.Millisecond
	}
	return &Service{
		queue:      queue,
		write:      write,
		batchSize:  batchSize,
		flushDelay: flushDelay,
		popTimeout: 3 * time.Second,
		retryDelay: time.Second,
		logger:     logger,
		batch:      make([]models.GameAction, 0, batchSize),
	}
}

// Run reads the queue until ctx is cancelled, then writes what is left.
func (hs *Service) Run(ctx context.Context) {
	hs.logger.Info("historian started")
	defer hs.logger.Info("historian stopped")

	// Popping runs apart from the ticker so a long BLPOP does not delay flushes.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		hs.readLoop(ctx)
	}()

	ticker := time.NewTicker(hs.flushDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			hs.flush(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
			hs.flush(ctx)
		}
	}
}

func (hs *Service) readLoop(ctx context.Context) {
	for ctx.Err() == nil {
		rec, err := hs.queue.Pop(ctx, hs.popTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			hs.logger.WithError(err).Error("failed to pop action")
			select {
			case <-ctx.Done():
				return
			case <-time.After(hs.retryDelay):
			}
			continue
		}
		if rec == nil {
			continue
		}
		if hs.append(toGameAction(*rec)) {
			hs.flush(ctx)
		}
	}
}

// append adds an action and reports whether the batch is full.
func (hs *Service) append(a models.GameAction) bool {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	hs.batch = append(hs.batch, a)
	return len(hs.batch) >= hs.batchSize
}

// flush writes the pending batch in one call. A failed batch is logged and
// dropped.
func (hs *Service) flush(ctx context.Context) {
	hs.batchMu.Lock()
	if len(hs.batch) == 0 {
		hs.batchMu.Unlock()
		return
	}
	pending := make([]models.GameAction, len(hs.batch))
	copy(pending, hs.batch)
	hs.batch = hs.batch[:0]
	hs.batchMu.Unlock()

	if err := hs.write(ctx, pending); err != nil {
		hs.logger.WithError(err).Errorf("failed to flush %d actions", len(pending))
		return
	}
	hs.logger.Debugf("flushed %d actions", len(pending))
}

func toGameAction(rec cache.ActionRecord) models.GameAction {
	return models.GameAction{
		SessionID:   rec.SessionID,
		ActionIndex: rec.ActionIndex,
		PlayerID:    rec.PlayerID,
		ActionType:  rec.ActionType,
		Payload:     rec.ActionPayload,
		CreatedAt:   time.UnixMilli(rec.Timestamp),
	}
}
