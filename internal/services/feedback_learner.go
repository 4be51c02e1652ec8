package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tannerv/shopsmith/internal/messaging"
	"github.com/tannerv/shopsmith/pkg/models"
)

// FeedbackLearner records feedback against a persisted recommendation and
// adapts the customer's strategy preference. Adaptation is a heuristic, not a
// learned model: one dislike advances the stored preference exactly one step
// in the fixed rotation, regardless of magnitude or history.
type FeedbackLearner struct {
	recommendations RecommendationRepository
	preferences     PreferenceStore
	events          messaging.EventPublisher
	metrics         *MetricsCollector
	logger          *logrus.Logger
}

func NewFeedbackLearner(
	recommendations RecommendationRepository,
	preferences PreferenceStore,
	events messaging.EventPublisher,
	metrics *MetricsCollector,
	logger *logrus.Logger,
) *FeedbackLearner {
	return &FeedbackLearner{
		recommendations: recommendations,
		preferences:     preferences,
		events:          events,
		metrics:         metrics,
		logger:          logger,
	}
}

// Learn validates and records the feedback value, then rotates the stored
// strategy preference iff the feedback is negative and a preference exists.
// Positive feedback, and negative feedback for a customer with no stored
// preference, leave the preference untouched.
func (l *FeedbackLearner) Learn(ctx context.Context, customerID, productID string, feedback int) (*models.FeedbackResult, error) {
	if customerID == "" {
		return nil, &ValidationError{Field: "customer_id", Message: "must not be empty"}
	}
	if productID == "" {
		return nil, &ValidationError{Field: "product_id", Message: "must not be empty"}
	}
	if feedback != models.FeedbackPositive && feedback != models.FeedbackNegative {
		return nil, &ValidationError{Field: "feedback", Message: "must be 1 or -1"}
	}

	if err := l.recommendations.UpdateFeedback(ctx, customerID, productID, feedback); err != nil {
		return nil, err
	}

	if l.metrics != nil {
		l.metrics.RecordFeedback(feedback)
	}

	result, err := l.adaptStrategy(ctx, customerID, feedback)
	if err != nil {
		return nil, err
	}

	l.publishEvent(ctx, customerID, productID, feedback, result)

	return result, nil
}

// adaptStrategy performs the read-modify-write of the preference under the
// customer's lock so concurrent rotations cannot lose updates.
func (l *FeedbackLearner) adaptStrategy(ctx context.Context, customerID string, feedback int) (*models.FeedbackResult, error) {
	unlock := l.preferences.Lock(customerID)
	defer unlock()

	current, found, err := l.preferences.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if feedback >= 0 || !found {
		return &models.FeedbackResult{
			Status:          models.FeedbackStatusRecorded,
			ActionTaken:     models.FeedbackActionMaintained,
			CurrentStrategy: current,
		}, nil
	}

	next := current.Next()
	if err := l.preferences.Set(ctx, customerID, next); err != nil {
		return nil, err
	}

	if l.metrics != nil {
		l.metrics.RecordStrategyRotation(current, next)
	}

	l.logger.WithFields(logrus.Fields{
		"customer_id":       customerID,
		"previous_strategy": current,
		"new_strategy":      next,
	}).Info("Strategy preference rotated after negative feedback")

	return &models.FeedbackResult{
		Status:           models.FeedbackStatusLearned,
		ActionTaken:      models.FeedbackActionAdjusted,
		PreviousStrategy: current,
		NewStrategy:      next,
	}, nil
}

func (l *FeedbackLearner) publishEvent(ctx context.Context, customerID, productID string, feedback int, result *models.FeedbackResult) {
	event := messaging.FeedbackEvent{
		CustomerID:       customerID,
		ProductID:        productID,
		Feedback:         feedback,
		ActionTaken:      result.ActionTaken,
		PreviousStrategy: result.PreviousStrategy,
		NewStrategy:      result.NewStrategy,
		Timestamp:        time.Now(),
	}

	if err := l.events.PublishFeedback(ctx, event); err != nil {
		// Event publication is best effort; the feedback itself is already
		// recorded.
		l.logger.WithError(err).WithField("customer_id", customerID).
			Warn("Failed to publish feedback event")
	}
}
