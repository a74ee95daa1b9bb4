package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"premise_fetcher/internal/domain"
)

const ActionCreated = "created"

// RabbitMQ publishes an event for every newly stored premise.
type RabbitMQ struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	logger     *slog.Logger
}

type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
}

func NewRabbitMQ(cfg Config, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareTopology(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
	)

	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
	}, nil
}

// declareTopology sets up a durable direct exchange and binds the premise
// queue to it. Without a queue name only the exchange is declared.
func declareTopology(ch *amqp.Channel, cfg Config) error {
	if err := ch.ExchangeDeclare(cfg.Exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if cfg.QueueName == "" {
		return nil
	}

	q, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PremiseMessage is the JSON body of a premise event.
type PremiseMessage struct {
	Action    string         `json:"action"`
	Premise   domain.Premise `json:"premise"`
	Timestamp time.Time      `json:"timestamp"`
}

func newPublishing(premise *domain.Premise, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(PremiseMessage{
		Action:    ActionCreated,
		Premise:   *premise,
		Timestamp: now.UTC(),
	})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal message: %w", err)
	}

	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    premise.ID,
		Type:         "premise." + ActionCreated,
		Headers:      amqp.Table{"platform": string(premise.Source.Platform)},
		Body:         body,
		Timestamp:    now,
	}, nil
}

func (r *RabbitMQ) Publish(ctx context.Context, premise *domain.Premise) error {
	msg, err := newPublishing(premise, time.Now())
	if err != nil {
		return err
	}

	if err := r.channel.PublishWithContext(ctx, r.exchange, r.routingKey, false, false, msg); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	r.logger.Debug("published premise",
		"premise_id", premise.ID,
		"link", premise.Link,
	)

	return nil
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
