package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"rental-project/internal/core/domain"
	"rental-project/pkg/rabbitmq/rabbitmq_producer"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// publisher is the subset of rabbitmq_producer.Publisher the adapter needs.
type publisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// RabbitMQListingEventsAdapter implements port.ListingEventsPort.
type RabbitMQListingEventsAdapter struct {
	producer   publisher
	routingKey string
}

func NewRabbitMQListingEventsAdapter(producer *rabbitmq_producer.Publisher, routingKey string) (*RabbitMQListingEventsAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	return newListingEventsAdapter(producer, routingKey)
}

func newListingEventsAdapter(p publisher, routingKey string) (*RabbitMQListingEventsAdapter, error) {
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &RabbitMQListingEventsAdapter{producer: p, routingKey: routingKey}, nil
}

// Publish sends the event as a persistent JSON message.
func (a *RabbitMQListingEventsAdapter) Publish(ctx context.Context, event domain.ListingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to marshal %s event for listing %s: %w", event.Type, event.ListingID, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		MessageId:    event.ID,
		Type:         string(event.Type),
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to publish %s event for listing %s: %w", event.Type, event.ListingID, err)
	}

	log.Printf("RabbitMQAdapter: Published %s event for listing %s to '%s'\n", event.Type, event.ListingID, a.routingKey)
	return nil
}
