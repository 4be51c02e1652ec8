package services

import (
	"github.com/sirupsen/logrus"

	"github.com/tannerv/shopsmith/internal/config"
	"github.com/tannerv/shopsmith/internal/database"
	"github.com/tannerv/shopsmith/internal/llm"
	"github.com/tannerv/shopsmith/internal/messaging"
	"github.com/tannerv/shopsmith/internal/validation"
)

type Services struct {
	Auth             *AuthService
	Health           *HealthService
	Metrics          *MetricsCollector
	EventPublisher   messaging.EventPublisher
	CustomerAnalysis *CustomerAnalysisService
	ProductFilter    *ProductFilterService
	ProductAnalysis  *ProductAnalysisService
	Similarity       *SimilarityService
	Orchestrator     *RecommendationOrchestrator
	FeedbackLearner  *FeedbackLearner
	Recommendations  *RecommendationStore
	Catalog          *CatalogStore
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database) (*Services, error) {
	authService := NewAuthService(cfg, logger, db.Redis.Hot)
	healthService := NewHealthService(cfg, logger, db)
	metrics := NewMetricsCollector()

	var events messaging.EventPublisher
	if cfg.Kafka.Enabled {
		bus, err := messaging.NewMessageBus(cfg, logger)
		if err != nil {
			return nil, err
		}
		events = bus
	} else {
		events = messaging.NoopPublisher{}
	}

	validator, err := validation.NewSchemaValidator()
	if err != nil {
		return nil, err
	}

	generator := llm.NewOllamaClient(&cfg.Ollama, logger)

	catalogStore := NewCatalogStore(db.PG, logger)
	recommendationStore := NewRecommendationStore(db.PG, logger)
	preferenceStore := NewStrategyPreferenceStore(NewPostgresPreferenceRepository(db.PG, logger), logger)

	scorer := NewRelevanceScorer(&cfg.Recommendation.Scoring, logger)
	selector := NewStrategySelector(preferenceStore, logger)

	collaborative := NewCollaborativeEngine(&cfg.Recommendation)
	contentBased := NewContentBasedEngine(&cfg.Recommendation)
	popularity := NewPopularityEngine(&cfg.Recommendation)
	hybrid := NewHybridEngine(collaborative, contentBased, popularity, &cfg.Recommendation)
	engines := []StrategyEngine{collaborative, contentBased, popularity, hybrid}

	explanationService := NewExplanationService(generator, &cfg.Recommendation.Explanation, logger)

	customerAnalysis := NewCustomerAnalysisService(
		catalogStore, generator, validator, db.Redis.Warm,
		cfg.Recommendation.Caching.InsightsTTL, logger,
	)
	productFilter := NewProductFilterService(
		catalogStore, scorer, db.Redis.Warm,
		cfg.Recommendation.Caching.CandidatesTTL, logger,
	)
	similarity := NewSimilarityService(catalogStore, generator, logger)
	productAnalysis := NewProductAnalysisService(
		catalogStore, generator, validator, similarity, db.Redis.Warm,
		cfg.Recommendation.Caching.InsightsTTL, logger,
	)

	orchestrator := NewRecommendationOrchestrator(
		selector, engines, recommendationStore, explanationService,
		events, metrics, logger,
	)
	feedbackLearner := NewFeedbackLearner(
		recommendationStore, preferenceStore, events, metrics, logger,
	)

	return &Services{
		Auth:             authService,
		Health:           healthService,
		Metrics:          metrics,
		EventPublisher:   events,
		CustomerAnalysis: customerAnalysis,
		ProductFilter:    productFilter,
		ProductAnalysis:  productAnalysis,
		Similarity:       similarity,
		Orchestrator:     orchestrator,
		FeedbackLearner:  feedbackLearner,
		Recommendations:  recommendationStore,
		Catalog:          catalogStore,
	}, nil
}
