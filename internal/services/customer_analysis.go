package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tannerv/shopsmith/internal/llm"
	"github.com/tannerv/shopsmith/internal/validation"
	"github.com/tannerv/shopsmith/pkg/models"
)

const customerInsightsSystemPrompt = `You are an AI assistant that analyzes customer shopping profiles. Based on the customer data provided, identify their preferences, interests, and potential product needs. Focus on extracting insights that would be useful for personalized product recommendations.`

// CustomerCatalog is the slice of the catalog the analysis service needs.
type CustomerCatalog interface {
	GetCustomer(ctx context.Context, customerID string) (*models.Customer, error)
	GetEmbedding(ctx context.Context, entityType, entityID string) ([]float64, error)
	UpsertEmbedding(ctx context.Context, entityType, entityID string, vector []float64) error
}

// CustomerAnalysisService builds the immutable per-request CustomerContext:
// raw record, derived attributes, and LLM insights with schema validation and
// a fixed fallback structure when generation or validation fails.
type CustomerAnalysisService struct {
	catalog     CustomerCatalog
	generator   llm.Generator
	validator   *validation.SchemaValidator
	cache       *redis.Client
	insightsTTL time.Duration
	logger      *logrus.Logger
}

func NewCustomerAnalysisService(
	catalog CustomerCatalog,
	generator llm.Generator,
	validator *validation.SchemaValidator,
	cache *redis.Client,
	insightsTTL time.Duration,
	logger *logrus.Logger,
) *CustomerAnalysisService {
	return &CustomerAnalysisService{
		catalog:     catalog,
		generator:   generator,
		validator:   validator,
		cache:       cache,
		insightsTTL: insightsTTL,
		logger:      logger,
	}
}

func (s *CustomerAnalysisService) GetCustomerContext(ctx context.Context, customerID string) (*models.CustomerContext, error) {
	if customerID == "" {
		return nil, &ValidationError{Field: "customer_id", Message: "must not be empty"}
	}

	customer, err := s.catalog.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	insights, fallback := s.customerInsights(ctx, customer)

	s.ensureEmbedding(ctx, customer)

	return &models.CustomerContext{
		CustomerID:         customer.CustomerID,
		Segment:            customer.Segment,
		AgeGroup:           ageGroup(customer.Age),
		BrowsingHistory:    customer.BrowsingHistory,
		PurchaseHistory:    customer.PurchaseHistory,
		RelevantCategories: uniqueCategories(customer.BrowsingHistory, customer.PurchaseHistory),
		AvgOrderValue:      customer.AvgOrderValue,
		Location:           customer.Location,
		Season:             customer.Season,
		HolidayShopping:    customer.HolidayShopping,
		Insights:           insights,
		InsightsFallback:   fallback,
	}, nil
}

// customerInsights returns LLM insights for the customer, cache-aside over
// Redis. Any failure in generation, JSON extraction, or schema validation
// yields the fixed fallback structure; the failure is never surfaced.
func (s *CustomerAnalysisService) customerInsights(ctx context.Context, customer *models.Customer) (models.CustomerInsights, bool) {
	cacheKey := fmt.Sprintf("customer:insights:%s", customer.CustomerID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var insights models.CustomerInsights
			if err := json.Unmarshal([]byte(cached), &insights); err == nil {
				return insights, false
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.WithError(err).Debug("Insights cache read failed")
		}
	}

	insights, err := s.generateInsights(ctx, customer)
	if err != nil {
		s.logger.WithError(err).WithField("customer_id", customer.CustomerID).
			Warn("Customer insight generation failed, using fallback")
		return fallbackInsights(customer), true
	}

	if s.cache != nil {
		if data, err := json.Marshal(insights); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, s.insightsTTL).Err(); err != nil {
				s.logger.WithError(err).Debug("Insights cache write failed")
			}
		}
	}

	return insights, false
}

func (s *CustomerAnalysisService) generateInsights(ctx context.Context, customer *models.Customer) (models.CustomerInsights, error) {
	holiday := "No"
	if customer.HolidayShopping {
		holiday = "Yes"
	}

	prompt := fmt.Sprintf(`Analyze the following customer data and provide insights on their preferences and potential product interests:

Customer ID: %s
Age: %d
Gender: %s
Location: %s
Customer Segment: %s
Average Order Value: $%.2f
Browsing History: %s
Purchase History: %s
Season: %s
Holiday Shopping: %s

Provide insights in JSON format with the following structure:
{
    "primary_interests": ["category1", "category2"],
    "secondary_interests": ["category3", "category4"],
    "price_sensitivity": "high/medium/low",
    "likely_next_purchase": ["product1", "product2"],
    "personalization_notes": "brief analysis of customer preferences"
}`,
		customer.CustomerID,
		customer.Age,
		customer.Gender,
		customer.Location,
		customer.Segment,
		customer.AvgOrderValue,
		strings.Join(customer.BrowsingHistory, ", "),
		strings.Join(customer.PurchaseHistory, ", "),
		customer.Season,
		holiday,
	)

	response, err := s.generator.Generate(ctx, prompt, customerInsightsSystemPrompt)
	if err != nil {
		return models.CustomerInsights{}, err
	}

	document := validation.ExtractJSON(response)
	if result := s.validator.ValidateCustomerInsights(document); !result.Valid {
		return models.CustomerInsights{}, fmt.Errorf("insight JSON failed validation: %s", strings.Join(result.Errors, "; "))
	}

	var insights models.CustomerInsights
	if err := json.Unmarshal([]byte(document), &insights); err != nil {
		return models.CustomerInsights{}, fmt.Errorf("failed to unmarshal insights: %w", err)
	}

	return insights, nil
}

// ensureEmbedding stores a profile embedding for the customer if none exists
// yet. Best effort; failures are logged and ignored.
func (s *CustomerAnalysisService) ensureEmbedding(ctx context.Context, customer *models.Customer) {
	if _, err := s.catalog.GetEmbedding(ctx, "customer", customer.CustomerID); err == nil {
		return
	} else if !errors.Is(err, ErrNotFound) {
		s.logger.WithError(err).Debug("Customer embedding lookup failed")
		return
	}

	text := fmt.Sprintf("Customer %s from %s is %d years old, %s. They browse %s and have purchased %s. They are a %s with average order value of %.2f.",
		customer.CustomerID,
		customer.Location,
		customer.Age,
		customer.Gender,
		strings.Join(customer.BrowsingHistory, ", "),
		strings.Join(customer.PurchaseHistory, ", "),
		customer.Segment,
		customer.AvgOrderValue,
	)

	vector, err := s.generator.Embed(ctx, text)
	if err != nil {
		s.logger.WithError(err).WithField("customer_id", customer.CustomerID).
			Debug("Customer embedding generation failed")
		return
	}

	if err := s.catalog.UpsertEmbedding(ctx, "customer", customer.CustomerID, vector); err != nil {
		s.logger.WithError(err).WithField("customer_id", customer.CustomerID).
			Debug("Customer embedding write failed")
	}
}

func fallbackInsights(customer *models.Customer) models.CustomerInsights {
	primary := customer.BrowsingHistory
	if len(primary) > 2 {
		primary = primary[:2]
	}

	return models.CustomerInsights{
		PrimaryInterests:     primary,
		SecondaryInterests:   []string{},
		PriceSensitivity:     models.PriceSensitivityMedium,
		LikelyNextPurchase:   []string{},
		PersonalizationNotes: "Basic analysis based on browsing and purchase history.",
	}
}

func ageGroup(age int) string {
	switch {
	case age < 18:
		return "under_18"
	case age < 25:
		return "18_24"
	case age < 35:
		return "25_34"
	case age < 45:
		return "35_44"
	case age < 55:
		return "45_54"
	case age < 65:
		return "55_64"
	default:
		return "65_plus"
	}
}

func uniqueCategories(histories ...[]string) []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, history := range histories {
		for _, category := range history {
			if _, ok := seen[category]; ok {
				continue
			}
			seen[category] = struct{}{}
			categories = append(categories, category)
		}
	}
	return categories
}
