package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tannerv/shopsmith/internal/messaging"
	"github.com/tannerv/shopsmith/pkg/models"
)

// RecommendationOrchestrator sequences the recommendation pipeline: strategy
// selection, engine dispatch, persistence, explanation, event publication.
type RecommendationOrchestrator struct {
	selector        *StrategySelector
	engines         map[models.Strategy]StrategyEngine
	hybrid          StrategyEngine
	recommendations RecommendationRepository
	explanations    ExplanationGenerator
	events          messaging.EventPublisher
	metrics         *MetricsCollector
	logger          *logrus.Logger
}

func NewRecommendationOrchestrator(
	selector *StrategySelector,
	engines []StrategyEngine,
	recommendations RecommendationRepository,
	explanations ExplanationGenerator,
	events messaging.EventPublisher,
	metrics *MetricsCollector,
	logger *logrus.Logger,
) *RecommendationOrchestrator {
	byName := make(map[models.Strategy]StrategyEngine, len(engines))
	var hybrid StrategyEngine
	for _, engine := range engines {
		byName[engine.Name()] = engine
		if engine.Name() == models.StrategyHybrid {
			hybrid = engine
		}
	}

	return &RecommendationOrchestrator{
		selector:        selector,
		engines:         byName,
		hybrid:          hybrid,
		recommendations: recommendations,
		explanations:    explanations,
		events:          events,
		metrics:         metrics,
		logger:          logger,
	}
}

// GenerateRecommendations runs the full pipeline for one customer request.
// Persistence failure is fatal for the request; rows already written are not
// rolled back. Explanation failure is never fatal: the fallback sentence is
// substituted and the request succeeds.
func (o *RecommendationOrchestrator) GenerateRecommendations(ctx context.Context, customer *models.CustomerContext, candidates []models.ScoredProduct) (*models.RecommendationResult, error) {
	if customer == nil || customer.CustomerID == "" {
		return nil, &ValidationError{Field: "customer_id", Message: "must not be empty"}
	}

	start := time.Now()

	strategy, err := o.selector.Select(ctx, customer)
	if err != nil {
		return nil, err
	}

	engine, ok := o.engines[strategy]
	if !ok {
		// Unrecognized stored strategy falls back to hybrid rather than
		// failing the request.
		o.logger.WithFields(logrus.Fields{
			"customer_id": customer.CustomerID,
			"strategy":    strategy,
		}).Warn("Unknown strategy, falling back to hybrid")
		engine = o.hybrid
	}

	recommendations := engine.Recommend(customer, candidates)

	now := time.Now()
	for i := range recommendations {
		recommendations[i].Timestamp = now
		if err := o.recommendations.Append(ctx, customer.CustomerID, recommendations[i]); err != nil {
			return nil, err
		}
	}

	explanation := o.explanations.Explain(ctx, customer, recommendations, strategy)

	result := &models.RecommendationResult{
		CustomerID:      customer.CustomerID,
		Recommendations: recommendations,
		Strategy:        strategy,
		Explanation:     explanation,
		GeneratedAt:     now,
	}

	o.publishEvent(ctx, result)

	if o.metrics != nil {
		o.metrics.RecordRecommendation(strategy, len(recommendations), time.Since(start), explanation.Fallback)
	}

	o.logger.WithFields(logrus.Fields{
		"customer_id": customer.CustomerID,
		"strategy":    strategy,
		"count":       len(recommendations),
		"fallback":    explanation.Fallback,
	}).Info("Recommendations generated")

	return result, nil
}

func (o *RecommendationOrchestrator) publishEvent(ctx context.Context, result *models.RecommendationResult) {
	productIDs := make([]string, 0, len(result.Recommendations))
	for _, rec := range result.Recommendations {
		productIDs = append(productIDs, rec.ProductID)
	}

	event := messaging.RecommendationEvent{
		CustomerID:  result.CustomerID,
		Strategy:    result.Strategy,
		ProductIDs:  productIDs,
		Fallback:    result.Explanation.Fallback,
		GeneratedAt: result.GeneratedAt,
	}

	if err := o.events.PublishRecommendation(ctx, event); err != nil {
		// Best effort; the result is already persisted.
		o.logger.WithError(err).WithField("customer_id", result.CustomerID).
			Warn("Failed to publish recommendation event")
	}
}
