package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/septivank/attendance-ingestion-worker/internal/domain"
	"github.com/septivank/attendance-ingestion-worker/internal/logging"
	"github.com/septivank/attendance-ingestion-worker/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MessageHandler is a function that processes a message
type MessageHandler func(ctx context.Context, body []byte) error

// Consumer handles message consumption from RabbitMQ
type Consumer struct {
	channel          *amqp.Channel
	queue            string
	prefetchCount    int
	workers          int
	ackOnFailure     bool
	logger           *zap.Logger
	metrics          *metrics.Metrics
	messageProcessor MessageHandler
	group            *errgroup.Group
}

// ConsumerConfig holds consumer configuration
type ConsumerConfig struct {
	Connection    *Connection
	Queue         string
	PrefetchCount int
	Workers       int
	// AckOnFailure acknowledges messages that failed for operational
	// reasons (at-most-once). When false they are requeued (at-least-once).
	// Rejections and malformed payloads are acknowledged either way.
	AckOnFailure     bool
	Logger           *zap.Logger
	Metrics          *metrics.Metrics
	MessageProcessor MessageHandler
}

// NewConsumer creates a new RabbitMQ consumer
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	ch, err := cfg.Connection.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	// Set QoS (prefetch)
	err = ch.Qos(cfg.PrefetchCount, 0, false)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	if err := declareQueue(ch, cfg.Queue); err != nil {
		ch.Close()
		return nil, err
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	return &Consumer{
		channel:          ch,
		queue:            cfg.Queue,
		prefetchCount:    cfg.PrefetchCount,
		workers:          workers,
		ackOnFailure:     cfg.AckOnFailure,
		logger:           cfg.Logger,
		metrics:          cfg.Metrics,
		messageProcessor: cfg.MessageProcessor,
	}, nil
}

// Start starts consuming messages
func (c *Consumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("consumer started",
		zap.String("queue", c.queue),
		zap.Int("prefetch", c.prefetchCount),
		zap.Int("workers", c.workers),
		zap.Bool("ack_on_failure", c.ackOnFailure),
	)

	c.group = new(errgroup.Group)
	for i := 0; i < c.workers; i++ {
		c.group.Go(func() error {
			c.run(ctx, msgs)
			return nil
		})
	}

	return nil
}

// run pulls deliveries until ctx is cancelled or msgs closes. A message
// already taken off the channel is finished on a context detached from ctx,
// so stopping the loop never cancels its store calls.
func (c *Consumer) run(ctx context.Context, msgs <-chan amqp.Delivery) {
	handlerCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer context cancelled, stopping")
			return
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("message channel closed")
				return
			}
			if ctx.Err() != nil {
				c.requeue(msg)
				return
			}
			c.handleDelivery(handlerCtx, msg)
		}
	}
}

// requeue hands back a delivery received after the stop signal.
func (c *Consumer) requeue(msg amqp.Delivery) {
	if err := msg.Nack(false, true); err != nil {
		c.logger.Error("failed to NACK message on shutdown", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(err))
		return
	}
	c.metrics.IncrementSettlement("nack_requeue")
}

// handleDelivery processes msg and settles it exactly once.
func (c *Consumer) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	logger := logging.WithDelivery(c.logger, msg.DeliveryTag, msg.MessageId)
	logger.Info("received message from queue",
		zap.String("queue", c.queue),
		zap.Bool("redelivered", msg.Redelivered),
		zap.Int("body_size", len(msg.Body)),
	)

	err := c.process(ctx, msg.Body)
	c.settle(msg, err, logger)
}

func (c *Consumer) process(ctx context.Context, body []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing message: %v", r)
		}
	}()
	return c.messageProcessor(ctx, body)
}

func (c *Consumer) settle(msg amqp.Delivery, err error, logger *zap.Logger) {
	if err != nil && !domain.IsRejection(err) && !c.ackOnFailure {
		// Requeue so another attempt can pick it up
		if nackErr := msg.Nack(false, true); nackErr != nil {
			logger.Error("failed to NACK message", zap.Error(nackErr))
			return
		}
		c.metrics.IncrementSettlement("nack_requeue")
		logger.Warn("message requeued after processing failure", zap.Error(err))
		return
	}

	if ackErr := msg.Ack(false); ackErr != nil {
		logger.Error("failed to ACK message", zap.Error(ackErr))
		return
	}
	c.metrics.IncrementSettlement("ack")

	switch {
	case err == nil:
		logger.Info("message processed and acknowledged successfully")
	case domain.IsRejection(err):
		logger.Info("rejected message acknowledged")
	default:
		logger.Warn("failed message acknowledged without retry", zap.Error(err))
	}
}

// Close waits for in-flight messages to be settled, then closes the
// channel. The context passed to Start must be cancelled first.
func (c *Consumer) Close() error {
	if c.group != nil {
		_ = c.group.Wait()
	}
	if c.channel != nil {
		return c.channel.Close()
	}
	return nil
}
