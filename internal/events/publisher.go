package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type Publisher interface {
	PublishAccessEvent(ctx context.Context, event *AccessEvent) error
	PublishInviteEvent(ctx context.Context, event *InviteEvent) error
	PublishDocumentEvent(ctx context.Context, event *DocumentEvent) error

	// Close closes the publisher and releases resources
	Close() error
}

type EventPublisher struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	exchangeName string
	enabled      bool
	mu           sync.Mutex
	logger       *zap.Logger
}

// NewEventPublisher connects to RabbitMQ and declares the topic exchange. An
// empty URI yields a disabled publisher that drops every event.
func NewEventPublisher(rabbitURI, exchangeName string, logger *zap.Logger) (*EventPublisher, error) {
	if rabbitURI == "" {
		logger.Warn("RabbitMQ URI is empty, event publishing is disabled")
		return &EventPublisher{enabled: false, logger: logger}, nil
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

	return &EventPublisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		enabled:      true,
		logger:       logger,
	}, nil
}

func declareExchange(channel *amqp.Channel, exchangeName string) error {
	err := channel.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchangeName, err)
	}
	return nil
}

func (p *EventPublisher) publishEvent(ctx context.Context, routingKey EventType, event any) error {
	if !p.enabled {
		p.logger.Debug("Event publishing is disabled, skipping event", zap.String("routing_key", string(routingKey)))
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(
		pubCtx,
		p.exchangeName,     // exchange
		string(routingKey), // routing key
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", routingKey, err)
	}

	p.logger.Debug("Published event", zap.String("routing_key", string(routingKey)))
	return nil
}

func (p *EventPublisher) PublishAccessEvent(ctx context.Context, event *AccessEvent) error {
	return p.publishEvent(ctx, event.Type, event)
}

func (p *EventPublisher) PublishInviteEvent(ctx context.Context, event *InviteEvent) error {
	return p.publishEvent(ctx, event.Type, event)
}

func (p *EventPublisher) PublishDocumentEvent(ctx context.Context, event *DocumentEvent) error {
	return p.publishEvent(ctx, event.Type, event)
}

func (p *EventPublisher) Close() error {
	if !p.enabled {
		return nil
	}

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.Warn("Error closing RabbitMQ channel", zap.Error(err))
		}
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}
	return nil
}
