package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"seatmap-scraper/models"
	"seatmap-scraper/utils"

	amqp "github.com/rabbitmq/amqp091-go"
)

// CompletedQueue receives one message per finished scrape run
const CompletedQueue = "scrape.completed"

// ScrapeCompletedEvent is the message published when a run finishes
type ScrapeCompletedEvent struct {
	RunID      string         `json:"run_id"`
	Event      string         `json:"event"`
	EventURL   string         `json:"event_url"`
	FinishedAt string         `json:"finished_at"`
	Summary    models.Summary `json:"summary"`
}

// NewScrapeCompletedEvent builds the message for a run
func NewScrapeCompletedEvent(run *models.Run) ScrapeCompletedEvent {
	ev := ScrapeCompletedEvent{
		RunID:      run.ID,
		Event:      run.EventKey(),
		EventURL:   run.EventURL,
		FinishedAt: run.FinishedAt.UTC().Format(time.RFC3339),
	}
	if run.Result != nil {
		ev.Summary = run.Result.Summary
	}
	return ev
}

// AMQPPublisher announces finished runs on a durable RabbitMQ queue
type AMQPPublisher struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *utils.Logger
}

// NewAMQPPublisher dials the broker and declares the queue
func NewAMQPPublisher(url string, logger *utils.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		CompletedQueue, // name
		true,           // durable
		false,          // autoDelete
		false,          // exclusive
		false,          // noWait
		nil,            // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: queue declare failed: %w", err)
	}

	logger.Info("Connected to RabbitMQ, publishing to %s", CompletedQueue)
	return &AMQPPublisher{conn: conn, ch: ch, logger: logger}, nil
}

func (p *AMQPPublisher) Name() string { return "amqp" }

// Save publishes a persistent ScrapeCompletedEvent for the run
func (p *AMQPPublisher) Save(ctx context.Context, run *models.Run) error {
	body, err := json.Marshal(NewScrapeCompletedEvent(run))
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event failed: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    run.ID,
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", CompletedQueue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq: publish failed: %w", err)
	}

	p.logger.Info("Published %s for run %s", CompletedQueue, run.ID)
	return nil
}

func (p *AMQPPublisher) Close() error {
	_ = p.ch.Close()
	return p.conn.Close()
}
