package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/revature/expense-manager/internal/model"
	"github.com/revature/expense-manager/internal/queue"
)

// ReviewPublisher publishes expense.reviewed events.  Errors are logged and
// returned so callers can ignore them without interrupting the request.
type ReviewPublisher struct {
	url string
	log zerolog.Logger
}

func NewReviewPublisher(url string, log zerolog.Logger) *ReviewPublisher {
	return &ReviewPublisher{url: url, log: log}
}

// ReviewedEvent converts a recorded decision to its wire event.
func ReviewedEvent(d Decision) queue.ExpenseReviewedEvent {
	return queue.ExpenseReviewedEvent{
		ExpenseID:  d.ExpenseID,
		Status:     string(d.Status),
		ReviewerID: d.ReviewerID,
		Comment:    d.Comment,
		ReviewedAt: d.ReviewedAt.UTC().Format(model.ReviewDateLayout),
	}
}

// PublishReviewed dials the broker, declares the durable queue and publishes
// a persistent message for d.  One connection per call keeps the publisher
// stateless; review traffic is low.
func (p *ReviewPublisher) PublishReviewed(ctx context.Context, d Decision) error {
	body, err := json.Marshal(ReviewedEvent(d))
	if err != nil {
		p.log.Error().Err(err).Msg("rabbitmq: marshal event failed")
		return err
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.ReviewedQueue, true, false, false, false, nil); err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq: queue declare failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.ReviewedQueue, false, false, pub); err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}
