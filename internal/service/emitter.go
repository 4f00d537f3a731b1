package service

import (
	"context"

	"go-storefront/internal/events"
	"go-storefront/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actor is the authenticated account a service call runs on behalf of
type Actor struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  string
}

func (a Actor) event() events.Actor {
	return events.Actor{ID: a.ID.String(), Name: a.Name}
}

// Emitter publishes domain events after a transaction has committed
type Emitter struct {
	pub      events.Publisher
	producer string
	log      *zap.Logger
}

func NewEmitter(pub events.Publisher, producer string, log *zap.Logger) *Emitter {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{pub: pub, producer: producer, log: log}
}

func (e *Emitter) emit(ctx context.Context, eventType, correlationID string, payload any) {
	if e == nil {
		return
	}
	env, err := events.New(eventType, e.producer, correlationID, payload)
	if err != nil {
		logger.FromContextOr(ctx, e.log).Warn("build event", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	e.pub.Publish(ctx, env)
}
