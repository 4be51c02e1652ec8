package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/tannerv/shopsmith/internal/services"
)

type Handlers struct {
	Health         *HealthHandler
	Recommendation *RecommendationHandler
	Customer       *CustomerHandler
	Product        *ProductHandler
}

func New(logger *logrus.Logger, services *services.Services) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(logger, services.Health),
		Recommendation: NewRecommendationHandler(services.CustomerAnalysis, services.ProductFilter, services.Orchestrator, services.FeedbackLearner, services.Recommendations, logger),
		Customer:       NewCustomerHandler(services.CustomerAnalysis, logger),
		Product:        NewProductHandler(services.Similarity, services.ProductAnalysis, logger),
	}
}
