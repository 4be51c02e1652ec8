package services

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tannerv/shopsmith/pkg/models"
)

type MockProductCatalog struct {
	mock.Mock
}

func (m *MockProductCatalog) ListProductsByCategories(ctx context.Context, categories []string) ([]models.Product, error) {
	args := m.Called(ctx, categories)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func TestProductFilterService_GetScoredCandidates(t *testing.T) {
	ctx := context.Background()

	customer := &models.CustomerContext{
		CustomerID:         "C1",
		Location:           "Seattle",
		Season:             "Winter",
		HolidayShopping:    false,
		AvgOrderValue:      100,
		RelevantCategories: []string{"Books", "Garden"},
		Insights:           models.CustomerInsights{PriceSensitivity: models.PriceSensitivityMedium},
	}

	t.Run("scores and orders by relevance descending", func(t *testing.T) {
		catalog := &MockProductCatalog{}
		catalog.On("ListProductsByCategories", ctx, []string{"Books", "Garden"}).Return([]models.Product{
			// Weak candidate: expensive and poorly rated.
			{ProductID: "P1", Category: "Books", Price: 900, ProductRating: 1.0,
				SentimentScore: 0.5, RecommendationProbability: probability(0.5), Season: "Summer"},
			// Strong candidate: local, in season, affordable, well rated.
			{ProductID: "P2", Category: "Garden", Price: 40, ProductRating: 4.8,
				SentimentScore: 0.9, RecommendationProbability: probability(0.5),
				GeographicalLocation: "Seattle", Season: "Winter"},
		}, nil)

		service := NewProductFilterService(catalog, NewRelevanceScorer(defaultScoringConfig(), logrus.New()), nil, time.Minute, logrus.New())

		candidates, err := service.GetScoredCandidates(ctx, customer)

		require.NoError(t, err)
		require.Len(t, candidates, 2)
		assert.Equal(t, "P2", candidates[0].ProductID)
		assert.Greater(t, candidates[0].RelevanceScore, candidates[1].RelevanceScore)
		for _, candidate := range candidates {
			assert.GreaterOrEqual(t, candidate.RelevanceScore, 0.0)
			assert.LessOrEqual(t, candidate.RelevanceScore, 1.0)
		}
	})

	t.Run("empty catalog yields empty candidates", func(t *testing.T) {
		catalog := &MockProductCatalog{}
		catalog.On("ListProductsByCategories", ctx, mock.Anything).Return([]models.Product{}, nil)

		service := NewProductFilterService(catalog, NewRelevanceScorer(defaultScoringConfig(), logrus.New()), nil, time.Minute, logrus.New())

		candidates, err := service.GetScoredCandidates(ctx, customer)

		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("missing customer id is a validation error", func(t *testing.T) {
		service := NewProductFilterService(&MockProductCatalog{}, NewRelevanceScorer(defaultScoringConfig(), logrus.New()), nil, time.Minute, logrus.New())

		_, err := service.GetScoredCandidates(ctx, &models.CustomerContext{})

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}
