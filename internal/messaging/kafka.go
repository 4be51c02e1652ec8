package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/tannerv/shopsmith/internal/config"
	"github.com/tannerv/shopsmith/pkg/models"
)

// RecommendationEvent is published after a recommendation result is persisted.
type RecommendationEvent struct {
	EventID     uuid.UUID       `json:"event_id"`
	CustomerID  string          `json:"customer_id"`
	Strategy    models.Strategy `json:"strategy"`
	ProductIDs  []string        `json:"product_ids"`
	Fallback    bool            `json:"explanation_fallback"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// FeedbackEvent is published after feedback is recorded against a
// recommendation, whether or not the strategy rotated.
type FeedbackEvent struct {
	EventID          uuid.UUID       `json:"event_id"`
	CustomerID       string          `json:"customer_id"`
	ProductID        string          `json:"product_id"`
	Feedback         int             `json:"feedback"`
	ActionTaken      string          `json:"action_taken"`
	PreviousStrategy models.Strategy `json:"previous_strategy,omitempty"`
	NewStrategy      models.Strategy `json:"new_strategy,omitempty"`
	Timestamp        time.Time       `json:"timestamp"`
}

// EventPublisher is the outbound event surface. Publishing is best-effort from
// the caller's point of view; failures are returned but never abort the
// recommendation or feedback flow that triggered them.
type EventPublisher interface {
	PublishRecommendation(ctx context.Context, event RecommendationEvent) error
	PublishFeedback(ctx context.Context, event FeedbackEvent) error
	Close() error
}

type MessageBus struct {
	recWriter      *kafka.Writer
	feedbackWriter *kafka.Writer
	logger         *logrus.Logger
}

func NewMessageBus(cfg *config.Config, logger *logrus.Logger) (*MessageBus, error) {
	recWriter := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.Topics.Recommendations,
		Balancer:     &kafka.Hash{}, // Key by customer ID so one customer's events stay ordered
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	feedbackWriter := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.Topics.Feedback,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	return &MessageBus{
		recWriter:      recWriter,
		feedbackWriter: feedbackWriter,
		logger:         logger,
	}, nil
}

func (mb *MessageBus) PublishRecommendation(ctx context.Context, event RecommendationEvent) error {
	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation event: %w", err)
	}

	kafkaMessage := kafka.Message{
		Key:   []byte(event.CustomerID),
		Value: messageBytes,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID.String())},
			{Key: "strategy", Value: []byte(event.Strategy)},
			{Key: "timestamp", Value: []byte(event.GeneratedAt.Format(time.RFC3339))},
		},
	}

	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := mb.recWriter.WriteMessages(writeCtx, kafkaMessage); err != nil {
		mb.logger.WithError(err).WithField("customer_id", event.CustomerID).Error("Failed to publish recommendation event")
		return fmt.Errorf("failed to write recommendation event: %w", err)
	}

	mb.logger.WithFields(logrus.Fields{
		"event_id":    event.EventID,
		"customer_id": event.CustomerID,
		"strategy":    event.Strategy,
	}).Info("Recommendation event published")

	return nil
}

func (mb *MessageBus) PublishFeedback(ctx context.Context, event FeedbackEvent) error {
	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback event: %w", err)
	}

	kafkaMessage := kafka.Message{
		Key:   []byte(event.CustomerID),
		Value: messageBytes,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID.String())},
			{Key: "action_taken", Value: []byte(event.ActionTaken)},
			{Key: "timestamp", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}

	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := mb.feedbackWriter.WriteMessages(writeCtx, kafkaMessage); err != nil {
		mb.logger.WithError(err).WithField("customer_id", event.CustomerID).Error("Failed to publish feedback event")
		return fmt.Errorf("failed to write feedback event: %w", err)
	}

	mb.logger.WithFields(logrus.Fields{
		"event_id":    event.EventID,
		"customer_id": event.CustomerID,
		"action":      event.ActionTaken,
	}).Info("Feedback event published")

	return nil
}

func (mb *MessageBus) Close() error {
	var errors []error

	if err := mb.recWriter.Close(); err != nil {
		errors = append(errors, fmt.Errorf("failed to close recommendation writer: %w", err))
	}

	if err := mb.feedbackWriter.Close(); err != nil {
		errors = append(errors, fmt.Errorf("failed to close feedback writer: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("errors closing message bus: %v", errors)
	}

	return nil
}

// NoopPublisher satisfies EventPublisher when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishRecommendation(context.Context, RecommendationEvent) error { return nil }
func (NoopPublisher) PublishFeedback(context.Context, FeedbackEvent) error             { return nil }
func (NoopPublisher) Close() error                                                     { return nil }
