package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"similar-products-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishProfileEnriched publishes ProfileEnriched event
func (ep *EventPublisher) PublishProfileEnriched(ctx context.Context, event *models.ProfileEnrichedEvent) error {
	key := fmt.Sprintf("profile-%s", event.ProfileHash)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishProfileCleaned publishes ProfileCleaned event
func (ep *EventPublisher) PublishProfileCleaned(ctx context.Context, event *models.ProfileCleanedEvent) error {
	key := fmt.Sprintf("profile-%s", event.ProfileHash)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming catalog events
type EventHandler struct {
	onProductUpdated func(context.Context, *models.ProductUpdatedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnProductUpdated registers a handler for ProductUpdated events
func (eh *EventHandler) OnProductUpdated(handler func(context.Context, *models.ProductUpdatedEvent) error) {
	eh.onProductUpdated = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeProductUpdated:
		if eh.onProductUpdated != nil {
			var event models.ProductUpdatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ProductUpdated event: %w", err)
			}
			return eh.onProductUpdated(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
