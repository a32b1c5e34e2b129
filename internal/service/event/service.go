// Package event records domain events in the transactional outbox. The
// worker relays them to the broker.
package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

// Recorder is what the domain services depend on. Record never fails the
// caller; the business write has already committed.
type Recorder interface {
	Record(ctx context.Context, eventType string, payload interface{})
}

type Service struct {
	outboxRepo repository.OutboxRepository
}

func NewService(outboxRepo repository.OutboxRepository) *Service {
	return &Service{outboxRepo: outboxRepo}
}

// Emit stores the event as pending.
func (s *Service) Emit(ctx context.Context, eventType string, payload interface{}) (*model.OutboxEvent, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	evt := &model.OutboxEvent{
		EventType: eventType,
		Payload:   payloadJSON,
	}
	if err := s.outboxRepo.Create(ctx, evt); err != nil {
		return nil, fmt.Errorf("failed to create outbox event: %w", err)
	}
	return evt, nil
}

func (s *Service) Record(ctx context.Context, eventType string, payload interface{}) {
	if _, err := s.Emit(ctx, eventType, payload); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("event_type", eventType).Msg("failed to record event")
	}
}

type discard struct{}

func (discard) Record(context.Context, string, interface{}) {}

// Discard drops every event.
var Discard Recorder = discard{}
