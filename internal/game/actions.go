// internal/game/actions.go
package game

import (
	"context"
	"time"

	"github.com/jason-s-yu/solitaire/internal/cache"
)

// logAction sends the action details to the historian service via Redis.
// Assumes lock is held by caller.
func (s *Session) logAction(actionType string, payload map[string]interface{}) {
	s.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.ActionRecord{
		SessionID:     s.ID,
		ActionIndex:   s.actionIndex,
		PlayerID:      s.PlayerID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	if cache.Rdb == nil {
		return
	}
	logger := s.logger
	go func(rec cache.ActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishAction(ctx, rec); err != nil {
			logger.WithError(err).Warnf("failed to publish action %d", rec.ActionIndex)
		}
	}(record)
}
