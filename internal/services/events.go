package services

import (
	"context"

	"neuron_backoffice/internal/events"
	"neuron_backoffice/internal/models"
	"neuron_backoffice/pkg/whatsapp"

	"go.uber.org/zap"
)

const (
	EventContactCreated = "contact.created"
	EventInboundMessage = "whatsapp.inbound_message"
)

type EventPublisher interface {
	Publish(name, key string, handler events.Handler) error
}

// ConversationEvents hands domain events to the conversation engine off the
// request path. Publishing never fails the caller.
type ConversationEvents struct {
	publisher     EventPublisher
	conversations ConversationService
	logger        *zap.Logger
}

func NewConversationEvents(publisher EventPublisher, conversations ConversationService, logger *zap.Logger) *ConversationEvents {
	return &ConversationEvents{publisher: publisher, conversations: conversations, logger: logger}
}

func (e *ConversationEvents) ContactCreated(contact models.Contact) {
	e.publish(EventContactCreated, contact.ID.String(), func(ctx context.Context) {
		if err := e.conversations.HandleContactCreated(ctx, &contact); err != nil {
			e.logger.Error("failed to start conversation",
				zap.String("contact_id", contact.ID.String()),
				zap.Error(err),
			)
		}
	})
}

// InboundMessage is keyed by sender so one lead's messages are handled in order.
func (e *ConversationEvents) InboundMessage(from, body string) {
	key := NormalizePhone(whatsapp.PhoneFromJID(from))
	e.publish(EventInboundMessage, key, func(ctx context.Context) {
		if err := e.conversations.HandleInboundMessage(ctx, from, body); err != nil {
			e.logger.Error("failed to handle inbound message",
				zap.String("from", from),
				zap.Error(err),
			)
		}
	})
}

func (e *ConversationEvents) publish(name, key string, handler events.Handler) {
	if err := e.publisher.Publish(name, key, handler); err != nil {
		e.logger.Warn("event dropped", zap.String("event", name), zap.String("key", key), zap.Error(err))
	}
}
