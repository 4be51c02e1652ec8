package services

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/tannerv/shopsmith/internal/config"
	"github.com/tannerv/shopsmith/pkg/models"
)

func defaultScoringConfig() *config.ScoringConfig {
	return &config.ScoringConfig{
		BaseProbability: 0.5,
		LocationBoost:   0.15,
		SeasonBoost:     0.10,
		HolidayBoost:    0.10,
		PriceFitBoost:   0.10,
		RatingBoost:     0.10,
		SentimentBoost:  0.05,
	}
}

func probability(v float64) *float64 {
	return &v
}

func TestRelevanceScorer_Score(t *testing.T) {
	scorer := NewRelevanceScorer(defaultScoringConfig(), logrus.New())

	// Neutral baseline: no adjustment fires except the price-fit penalty,
	// which always goes one way or the other.
	baseCustomer := &models.CustomerContext{
		CustomerID:      "C1",
		Location:        "Seattle",
		Season:          "Winter",
		HolidayShopping: true,
		AvgOrderValue:   100,
		Insights:        models.CustomerInsights{PriceSensitivity: models.PriceSensitivityMedium},
	}

	tests := []struct {
		name     string
		product  models.Product
		customer *models.CustomerContext
		expected float64
	}{
		{
			name: "base probability with price fit only",
			product: models.Product{
				ProductID:                 "P1",
				RecommendationProbability: probability(0.5),
				Price:                     80,
				ProductRating:             3.0,
				SentimentScore:            0.5,
				Season:                    "Summer",
			},
			customer: baseCustomer,
			expected: 0.6, // 0.5 + 0.10 price fit (holiday flags differ: product false vs customer true)
		},
		{
			name: "missing base probability defaults to 0.5",
			product: models.Product{
				ProductID:      "P2",
				Price:          80,
				ProductRating:  3.0,
				SentimentScore: 0.5,
				Season:         "Summer",
			},
			customer: baseCustomer,
			expected: 0.6,
		},
		{
			name: "explicit zero probability is honored, not defaulted",
			product: models.Product{
				ProductID:                 "P7",
				RecommendationProbability: probability(0),
				Price:                     80,
				ProductRating:             3.0,
				SentimentScore:            0.5,
				Season:                    "Summer",
			},
			customer: baseCustomer,
			expected: 0.1, // 0 + 0.10 price fit
		},
		{
			name: "all boosts fire",
			product: models.Product{
				ProductID:                 "P3",
				RecommendationProbability: probability(0.5),
				GeographicalLocation:      "Seattle",
				Season:                    "Winter",
				Holiday:                   true,
				Price:                     50,
				ProductRating:             4.5,
				SentimentScore:            0.9,
			},
			customer: baseCustomer,
			expected: 1.0, // 0.5 + 0.15 + 0.10 + 0.10 + 0.10 + 0.10 + 0.05 clamped
		},
		{
			name: "all penalties fire",
			product: models.Product{
				ProductID:                 "P4",
				RecommendationProbability: probability(0.3),
				Season:                    "Summer",
				Price:                     500,
				ProductRating:             1.5,
				SentimentScore:            0.1,
			},
			customer: baseCustomer,
			expected: 0.05, // 0.3 - 0.10 - 0.10 - 0.05
		},
		{
			name: "low sensitivity widens the affordable band",
			product: models.Product{
				ProductID:                 "P5",
				RecommendationProbability: probability(0.5),
				Season:                    "Summer",
				Price:                     140,
				ProductRating:             3.0,
				SentimentScore:            0.5,
			},
			customer: &models.CustomerContext{
				Location:        "Seattle",
				Season:          "Winter",
				HolidayShopping: true,
				AvgOrderValue:   100,
				Insights:        models.CustomerInsights{PriceSensitivity: models.PriceSensitivityLow},
			},
			expected: 0.6, // 140 <= 100*1.5
		},
		{
			name: "high sensitivity narrows the affordable band",
			product: models.Product{
				ProductID:                 "P6",
				RecommendationProbability: probability(0.5),
				Season:                    "Summer",
				Price:                     80,
				ProductRating:             3.0,
				SentimentScore:            0.5,
			},
			customer: &models.CustomerContext{
				Location:        "Seattle",
				Season:          "Winter",
				HolidayShopping: true,
				AvgOrderValue:   100,
				Insights:        models.CustomerInsights{PriceSensitivity: models.PriceSensitivityHigh},
			},
			expected: 0.4, // 80 > 100*0.7
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := scorer.Score(&tt.product, tt.customer)
			assert.InDelta(t, tt.expected, score, 1e-9)
		})
	}
}

func TestRelevanceScorer_ScoreBounds(t *testing.T) {
	scorer := NewRelevanceScorer(defaultScoringConfig(), logrus.New())

	customers := []*models.CustomerContext{
		{Location: "Seattle", Season: "Winter", HolidayShopping: true, AvgOrderValue: 100,
			Insights: models.CustomerInsights{PriceSensitivity: models.PriceSensitivityLow}},
		{Location: "Austin", Season: "Summer", AvgOrderValue: 0,
			Insights: models.CustomerInsights{PriceSensitivity: models.PriceSensitivityHigh}},
		{},
	}

	products := []models.Product{
		{RecommendationProbability: probability(0.95), GeographicalLocation: "Seattle", Season: "Winter",
			Holiday: true, Price: 1, ProductRating: 5, SentimentScore: 1},
		{RecommendationProbability: probability(0.05), Price: 9999, ProductRating: 0.5, SentimentScore: 0},
		{},
	}

	for _, customer := range customers {
		for _, product := range products {
			score := scorer.Score(&product, customer)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	}
}
