package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type Consumer interface {
	Start() error
	Close() error
}

type AccessEventHandler interface {
	HandleAccessEvent(ctx context.Context, event *AccessEvent) error
}

// NotificationConsumer feeds access events from the exchange to a handler
// that records per-user notifications.
type NotificationConsumer struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
	handler   AccessEventHandler
	enabled   bool
	logger    *zap.Logger
}

func NewNotificationConsumer(rabbitURI, exchangeName, queueName string, handler AccessEventHandler, logger *zap.Logger) (*NotificationConsumer, error) {
	if rabbitURI == "" {
		logger.Warn("RabbitMQ URI is empty, event consumption is disabled")
		return &NotificationConsumer{enabled: false, logger: logger}, nil
	}

	conn, err := amqp.Dial(rabbitURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := declareExchange(channel, exchangeName); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	queue, err := channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		queue.Name,   // queue name
		"access.*",   // routing key
		exchangeName, // exchange
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	return &NotificationConsumer{
		conn:      conn,
		channel:   channel,
		queueName: queue.Name,
		handler:   handler,
		enabled:   true,
		logger:    logger,
	}, nil
}

func (c *NotificationConsumer) Start() error {
	if !c.enabled {
		c.logger.Info("Event consumption is disabled")
		return nil
	}

	err := c.channel.Qos(
		10,    // prefetch count
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			if err := c.processMessage(msg.RoutingKey, msg.Body); err != nil {
				c.logger.Error("Failed to process message", zap.String("routing_key", msg.RoutingKey), zap.Error(err))
				msg.Nack(false, false)
			} else {
				msg.Ack(false)
			}
		}
	}()

	c.logger.Info("Notification consumer started", zap.String("queue", c.queueName))
	return nil
}

func (c *NotificationConsumer) processMessage(routingKey string, body []byte) error {
	if !strings.HasPrefix(routingKey, "access.") {
		c.logger.Debug("Ignoring message", zap.String("routing_key", routingKey))
		return nil
	}

	var event AccessEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to unmarshal access event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return c.handler.HandleAccessEvent(ctx, &event)
}

func (c *NotificationConsumer) Close() error {
	if !c.enabled {
		return nil
	}
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("Error closing RabbitMQ channel", zap.Error(err))
		}
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
