package services

import (
	"github.com/sirupsen/logrus"

	"github.com/tannerv/shopsmith/internal/config"
	"github.com/tannerv/shopsmith/pkg/models"
)

// RelevanceScorer computes the per-(product, customer) relevance score that
// all strategy engines read. Pure function over its inputs; adjustment
// magnitudes come from configuration.
type RelevanceScorer struct {
	config *config.ScoringConfig
	logger *logrus.Logger
}

func NewRelevanceScorer(cfg *config.ScoringConfig, logger *logrus.Logger) *RelevanceScorer {
	return &RelevanceScorer{
		config: cfg,
		logger: logger,
	}
}

// Score starts from the product's base recommendation probability and applies
// independent additive adjustments, clamping once at the end. Adjustments are
// order-insensitive: sum, then clamp to [0,1].
func (s *RelevanceScorer) Score(product *models.Product, customer *models.CustomerContext) float64 {
	// The default applies only when the catalog carries no probability at
	// all; an explicit zero is honored.
	score := s.config.BaseProbability
	if product.RecommendationProbability != nil {
		score = *product.RecommendationProbability
	}

	if product.GeographicalLocation == customer.Location {
		score += s.config.LocationBoost
	}

	if product.Season == customer.Season {
		score += s.config.SeasonBoost
	}

	if product.Holiday == customer.HolidayShopping {
		score += s.config.HolidayBoost
	}

	// Price fit: the customer's price sensitivity widens or narrows the
	// affordable band around their average order value.
	if product.Price <= customer.AvgOrderValue*customer.PriceFactor() {
		score += s.config.PriceFitBoost
	} else {
		score -= s.config.PriceFitBoost
	}

	switch {
	case product.ProductRating >= 4.0:
		score += s.config.RatingBoost
	case product.ProductRating <= 2.0:
		score -= s.config.RatingBoost
	}

	switch {
	case product.SentimentScore >= 0.7:
		score += s.config.SentimentBoost
	case product.SentimentScore <= 0.3:
		score -= s.config.SentimentBoost
	}

	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
