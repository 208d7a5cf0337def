package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/merchkit/storefront/internal/dal/rabbitmq"
)

// service represents the service layer interface.
type service interface {
	ProcessMessage(ctx context.Context, messageID string, body []byte) error
}

// Consumer represents the RabbitMQ consumer transport for order events.
type Consumer struct {
	client  *rabbitmq.Client
	service service
	queue   amqp.Queue
	stop    chan struct{}
	done    chan struct{}
}

// NewConsumer creates a new Consumer bound to the order-events exchange.
func NewConsumer(client *rabbitmq.Client, service service) *Consumer {
	queueName := viper.GetString("rabbitmq.notifier_queue")
	if queueName == "" {
		panic("rabbitmq.notifier_queue is not set in config")
	}

	exchange := viper.GetString("rabbitmq.exchange")
	if exchange == "" {
		exchange = "order-events"
	}

	if err := client.DeclareFanoutExchange(exchange); err != nil {
		panic(err)
	}

	queue, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:       queueName,
		Durable:    true,
		AutoDelete: false,
		Exclusive:  false,
		NoWait:     false,
	})
	if err != nil {
		panic(err)
	}

	if err := client.BindQueue(queue.Name, exchange); err != nil {
		panic(err)
	}

	return &Consumer{
		client:  client,
		service: service,
		queue:   queue,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Run starts consuming messages from RabbitMQ.
func (c *Consumer) Run(ctx context.Context) error {
	consumerTag := viper.GetString("rabbitmq.consumer_tag")
	if consumerTag == "" {
		consumerTag = "notifier-svc"
	}

	msgs, err := c.client.Consume(rabbitmq.ConsumeConfig{
		Queue:     c.queue.Name,
		Consumer:  consumerTag,
		AutoAck:   false,
		Exclusive: false,
		NoLocal:   false,
		NoWait:    false,
	})
	if err != nil {
		return err
	}

	slog.Info("Consumer started", "queue", c.queue.Name, "consumer_tag", consumerTag)

	c.consume(ctx, msgs)

	return nil
}

// consume drains deliveries with bounded concurrency. The group carries no
// shared cancellation on purpose: a failed delivery is already nacked and
// redelivered by the broker, and must not tear down the context the healthy
// deliveries run under.
func (c *Consumer) consume(ctx context.Context, msgs <-chan amqp.Delivery) {
	var g errgroup.Group
	g.SetLimit(50)

	go func() {
		for {
			select {
			case <-c.stop:
				slog.Info("Stopping consumer")
				close(c.done)

				return
			case msg, ok := <-msgs:
				if !ok {
					slog.Info("Message channel closed")
					close(c.done)

					return
				}

				g.Go(func() error {
					// processDelivery nacks on failure; redelivery is the
					// retry path.
					_ = c.processDelivery(ctx, msg)

					return nil
				})
			}
		}
	}()

	<-c.done
	_ = g.Wait()
}

// processDelivery processes a single delivery. The service decides whether a
// message is done or must be redelivered; one failing delivery never blocks
// the others.
func (c *Consumer) processDelivery(ctx context.Context, msg amqp.Delivery) error {
	ctx, span := otel.Tracer("consumer").Start(ctx, "Consumer.processDelivery")
	defer span.End()

	messageID := msg.MessageId
	if messageID == "" {
		messageID = fmt.Sprintf("delivery-%d", msg.DeliveryTag)
	}

	slog.Info("Received message", "message_id", messageID)

	if err := c.service.ProcessMessage(ctx, messageID, msg.Body); err != nil {
		slog.Error("Failed to process order event", "message_id", messageID, "error", err)
		// Requeue so the broker's redelivery applies.
		if err := msg.Nack(false, true); err != nil {
			slog.Error("Failed to nack message", "error", err)
		}

		return err
	}

	if err := msg.Ack(false); err != nil {
		slog.Error("Failed to ack message", "error", err)

		return err
	}

	return nil
}

// Shutdown gracefully shuts down the consumer.
func (c *Consumer) Shutdown() error {
	slog.Info("Shutting down consumer")
	close(c.stop)

	select {
	case <-c.done:
		slog.Info("Consumer stopped successfully")
	case <-time.After(10 * time.Second):
		slog.Warn("Consumer shutdown timeout")
	}

	return nil
}
