package rabbitmq_consumer

import (
	"context"
	"fmt"
	"log"
	"rental-project/pkg/rabbitmq/rabbitmq_common"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler processes one delivery. With err == nil the message is
// acked when ack is true and dropped otherwise; with err != nil it is
// nacked and requeued when requeueOnError is true.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) (ack bool, requeueOnError bool, err error)

// ConsumerConfig configures a consumer.
type ConsumerConfig struct {
	rabbitmq_common.Config

	// Queue
	QueueName       string // may be empty when DeclareQueue is true; the server then names it
	DeclareQueue    bool
	DurableQueue    bool
	ExclusiveQueue  bool
	AutoDeleteQueue bool
	QueueArgs       amqp.Table

	// Exchange to bind to; no binding when empty
	ExchangeNameForBind    string
	DeclareExchangeForBind bool
	ExchangeTypeForBind    string
	DurableExchangeForBind bool
	ExchangeArgsForBind    amqp.Table

	RoutingKeyForBind string
	BindingArgs       amqp.Table

	// QoS; zero means unlimited
	PrefetchCount int
	PrefetchSize  int
	QosGlobal     bool

	ConsumerTag       string
	ExclusiveConsumer bool
}

// Consumer owns one connection and one channel and dispatches every
// delivery to the handler in its own goroutine.
type Consumer struct {
	config          ConsumerConfig
	handler         MessageHandler
	connection      *amqp.Connection
	channel         *amqp.Channel
	actualQueueName string

	wg sync.WaitGroup
}

// NewConsumer connects and declares/binds what the config asks for.
func NewConsumer(cfg ConsumerConfig, handler MessageHandler) (*Consumer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid base config: %w", err)
	}
	if !cfg.DeclareQueue && cfg.QueueName == "" {
		return nil, fmt.Errorf("consumer: queue name is required if DeclareQueue is false")
	}
	if cfg.DeclareExchangeForBind && cfg.ExchangeNameForBind != "" && cfg.ExchangeTypeForBind == "" {
		return nil, fmt.Errorf("consumer: exchange type is required if declaring an exchange for binding")
	}
	if handler == nil {
		return nil, fmt.Errorf("consumer: message handler is required")
	}

	c := &Consumer{config: cfg, handler: handler}
	if err := c.connectAndSetup(); err != nil {
		return nil, fmt.Errorf("consumer: initial connection and setup failed: %w", err)
	}
	return c, nil
}

func (c *Consumer) connectAndSetup() error {
	log.Printf("Consumer: Connecting to RabbitMQ for queue '%s'\n", c.config.QueueName)
	conn, ch, err := rabbitmq_common.Dial(c.config.Config)
	if err != nil {
		return err
	}
	c.connection = conn
	c.channel = ch

	fail := func(format string, args ...any) error {
		_ = c.channel.Close()
		_ = c.connection.Close()
		return fmt.Errorf(format, args...)
	}

	if c.config.PrefetchCount > 0 || c.config.PrefetchSize > 0 {
		if err := ch.Qos(c.config.PrefetchCount, c.config.PrefetchSize, c.config.QosGlobal); err != nil {
			return fail("failed to set QoS: %w", err)
		}
	}

	c.actualQueueName = c.config.QueueName
	if c.config.DeclareQueue {
		q, err := ch.QueueDeclare(
			c.config.QueueName,
			c.config.DurableQueue,
			c.config.AutoDeleteQueue,
			c.config.ExclusiveQueue,
			false, // no-wait
			c.config.QueueArgs,
		)
		if err != nil {
			return fail("failed to declare queue '%s': %w", c.config.QueueName, err)
		}
		c.actualQueueName = q.Name
	}

	if c.config.DeclareExchangeForBind {
		err := ch.ExchangeDeclare(
			c.config.ExchangeNameForBind,
			c.config.ExchangeTypeForBind,
			c.config.DurableExchangeForBind,
			false, // auto-deleted
			false, // internal
			false, // no-wait
			c.config.ExchangeArgsForBind,
		)
		if err != nil {
			return fail("failed to declare exchange '%s' for binding: %w", c.config.ExchangeNameForBind, err)
		}
	}

	if c.config.ExchangeNameForBind != "" {
		log.Printf("Consumer: Binding queue '%s' to exchange '%s' with routing key '%s'\n",
			c.actualQueueName, c.config.ExchangeNameForBind, c.config.RoutingKeyForBind)
		err := ch.QueueBind(
			c.actualQueueName,
			c.config.RoutingKeyForBind,
			c.config.ExchangeNameForBind,
			false, // no-wait
			c.config.BindingArgs,
		)
		if err != nil {
			return fail("failed to bind queue '%s' to exchange '%s': %w", c.actualQueueName, c.config.ExchangeNameForBind, err)
		}
	}

	log.Printf("Consumer: Setup complete for queue '%s'.\n", c.actualQueueName)
	return nil
}

// StartConsuming blocks until ctx is cancelled (returns nil) or the
// connection is closed by the broker (returns the close error).
func (c *Consumer) StartConsuming(ctx context.Context) error {
	if c.channel == nil || c.connection == nil || c.connection.IsClosed() {
		return fmt.Errorf("consumer: not connected")
	}

	msgs, err := c.channel.Consume(
		c.actualQueueName,
		c.config.ConsumerTag,
		false, // auto-ack
		c.config.ExclusiveConsumer,
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("consumer: failed to register a consumer on queue '%s': %w", c.actualQueueName, err)
	}
	log.Printf("Consumer: [*] Waiting for messages on queue '%s'.\n", c.actualQueueName)

	go c.dispatch(ctx, msgs)

	notifyClose := c.connection.NotifyClose(make(chan *amqp.Error, 1))
	select {
	case <-ctx.Done():
		log.Printf("Consumer: Context cancelled for tag '%s'. Shutting down consumer.", c.config.ConsumerTag)
		return nil
	case amqpErr := <-notifyClose:
		log.Printf("Consumer: Connection closed for tag '%s'. Error: %v", c.config.ConsumerTag, amqpErr)
		if amqpErr == nil {
			return fmt.Errorf("consumer: connection closed")
		}
		return amqpErr
	}
}

func (c *Consumer) dispatch(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		// Cancellation wins over a ready delivery.
		select {
		case <-ctx.Done():
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				log.Printf("Consumer: Deliveries channel closed for tag '%s'.", c.config.ConsumerTag)
				return
			}
			c.wg.Add(1)
			go func(delivery amqp.Delivery) {
				defer c.wg.Done()
				c.handle(ctx, delivery)
			}(d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	ack, requeueOnError, err := c.handler(ctx, d)
	switch {
	case err != nil:
		log.Printf("Consumer: Error processing message (Tag: %d): %v. Requeue: %v\n", d.DeliveryTag, err, requeueOnError)
		if nackErr := d.Nack(false, requeueOnError); nackErr != nil {
			log.Printf("Consumer: Error sending Nack (Tag: %d): %v\n", d.DeliveryTag, nackErr)
		}
	case ack:
		if ackErr := d.Ack(false); ackErr != nil {
			log.Printf("Consumer: Error sending Ack (Tag: %d): %v\n", d.DeliveryTag, ackErr)
		}
	default:
		log.Printf("Consumer: Message dropped by handler (Tag: %d)\n", d.DeliveryTag)
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Printf("Consumer: Error sending Nack (Tag: %d): %v\n", d.DeliveryTag, nackErr)
		}
	}
}

// Close waits for running handlers, then closes the channel and connection.
func (c *Consumer) Close() error {
	log.Println("Consumer: Waiting for message handlers to finish...")
	c.wg.Wait()

	var firstErr error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			log.Printf("Consumer: Error closing channel: %v\n", err)
			firstErr = err
		}
		c.channel = nil
	}
	if c.connection != nil {
		if err := c.connection.Close(); err != nil {
			log.Printf("Consumer: Error closing connection: %v\n", err)
			if firstErr == nil {
				firstErr = err
			}
		}
		c.connection = nil
	}
	log.Println("Consumer: Closed.")
	return firstErr
}
