package service

import (
	"context"
	"time"

	"omni-backend/internal/pkg/logger"
	"omni-backend/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// forwardTimeout bounds one broker publish so a stalled connection cannot
// block the drain loop.
const forwardTimeout = 2 * time.Second

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EventSource is satisfied by *events.Bus.
type EventSource interface {
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
}

// consumerService drains the in-process workflow bus, logs each event and
// forwards it to the external broker when one is configured.
type consumerService struct {
	source    EventSource
	forwarder events.Publisher
	logger    logger.ILogger
}

func NewConsumerService(source EventSource, forwarder events.Publisher, log logger.ILogger) IConsumerService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &consumerService{
		source:    source,
		forwarder: forwarder,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.source.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	// Always Ack: a bad payload would otherwise be redelivered forever.
	defer msg.Ack()

	evt, err := events.Decode(msg)
	if err != nil {
		cs.logger.Error("EVENTS", "Failed to decode workflow event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	cs.logger.Debug("EVENTS", "Workflow event received", map[string]interface{}{
		"type": evt.Type,
		"data": evt.Data,
	})

	if cs.forwarder == nil {
		return
	}
	fwdCtx, cancel := context.WithTimeout(ctx, forwardTimeout)
	defer cancel()
	if err := cs.forwarder.Publish(fwdCtx, evt); err != nil {
		cs.logger.Warn("EVENTS", "Failed to forward workflow event", map[string]interface{}{
			"type":  evt.Type,
			"error": err.Error(),
		})
	}
}
