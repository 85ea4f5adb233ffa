package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"rental-project/internal/core/domain"
	"rental-project/internal/core/usecase"
	"rental-project/pkg/rabbitmq/rabbitmq_consumer"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ListingChangeConsumerAdapter listens for listing events and drops cached
// search pages so every instance serves fresh results.
type ListingChangeConsumerAdapter struct {
	consumer *rabbitmq_consumer.Consumer
	useCase  *usecase.InvalidateSearchCacheUseCase
}

func NewListingChangeConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	useCase *usecase.InvalidateSearchCacheUseCase,
) (*ListingChangeConsumerAdapter, error) {
	if useCase == nil {
		return nil, fmt.Errorf("listing change consumer: use case cannot be nil")
	}
	adapter := &ListingChangeConsumerAdapter{useCase: useCase}

	consumer, err := rabbitmq_consumer.NewConsumer(consumerCfg, adapter.messageHandler)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for listing changes: %w", err)
	}
	adapter.consumer = consumer
	return adapter, nil
}

func (a *ListingChangeConsumerAdapter) messageHandler(ctx context.Context, d amqp.Delivery) (ack bool, requeueOnError bool, err error) {
	var event domain.ListingEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		log.Printf("ListingChangeConsumerAdapter: Error unmarshalling (Tag: %d): %v. NACK (no requeue).\n", d.DeliveryTag, err)
		return false, false, fmt.Errorf("unmarshal error: %w", err)
	}
	if event.ListingID == "" {
		return false, false, fmt.Errorf("listing event %q has no listing id", event.ID)
	}

	if err := a.useCase.Execute(ctx, event); err != nil {
		// A redelivered message failed twice; give up on it.
		if d.Redelivered {
			log.Printf("ListingChangeConsumerAdapter: Repeated failure, discarding message (Tag: %d).", d.DeliveryTag)
			return false, false, err
		}
		return false, true, err
	}
	return true, false, nil
}

// Start implements port.EventListenerPort.
func (a *ListingChangeConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

// Close implements port.EventListenerPort.
func (a *ListingChangeConsumerAdapter) Close() error {
	return a.consumer.Close()
}
