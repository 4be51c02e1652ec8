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

const productInsightsSystemPrompt = `You are an AI assistant that analyzes product data. Based on the product information provided, generate insights about this product, its potential customer appeal, and selling points.`

const similarProductsInAnalysis = 5

// ProductAnalysisCatalog is the slice of the catalog the product analysis
// service needs.
type ProductAnalysisCatalog interface {
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
}

// ProductAnalysisService assembles the full analysis of one product: the raw
// record, LLM insights with schema validation and a fixed fallback structure,
// and the closest products by embedding similarity.
type ProductAnalysisService struct {
	catalog     ProductAnalysisCatalog
	generator   llm.Generator
	validator   *validation.SchemaValidator
	similarity  SimilarProductFinder
	cache       *redis.Client
	insightsTTL time.Duration
	logger      *logrus.Logger
}

func NewProductAnalysisService(
	catalog ProductAnalysisCatalog,
	generator llm.Generator,
	validator *validation.SchemaValidator,
	similarity SimilarProductFinder,
	cache *redis.Client,
	insightsTTL time.Duration,
	logger *logrus.Logger,
) *ProductAnalysisService {
	return &ProductAnalysisService{
		catalog:     catalog,
		generator:   generator,
		validator:   validator,
		similarity:  similarity,
		cache:       cache,
		insightsTTL: insightsTTL,
		logger:      logger,
	}
}

func (s *ProductAnalysisService) AnalyzeProduct(ctx context.Context, productID string) (*models.ProductAnalysis, error) {
	if productID == "" {
		return nil, &ValidationError{Field: "product_id", Message: "must not be empty"}
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	insights, fallback := s.productInsights(ctx, product)

	// Similar products are supplementary; a similarity failure does not fail
	// the analysis.
	similar, err := s.similarity.FindSimilarProducts(ctx, productID, similarProductsInAnalysis)
	if err != nil {
		s.logger.WithError(err).WithField("product_id", productID).
			Warn("Similar product lookup failed during analysis")
		similar = nil
	}

	return &models.ProductAnalysis{
		ProductID:        productID,
		Product:          *product,
		Insights:         insights,
		InsightsFallback: fallback,
		SimilarProducts:  similar,
	}, nil
}

// productInsights returns LLM insights for the product, cache-aside over
// Redis. Any failure in generation, JSON extraction, or schema validation
// yields the fixed fallback structure; the failure is never surfaced.
func (s *ProductAnalysisService) productInsights(ctx context.Context, product *models.Product) (models.ProductInsights, bool) {
	cacheKey := fmt.Sprintf("product:insights:%s", product.ProductID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var insights models.ProductInsights
			if err := json.Unmarshal([]byte(cached), &insights); err == nil {
				return insights, false
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.WithError(err).Debug("Product insights cache read failed")
		}
	}

	insights, err := s.generateInsights(ctx, product)
	if err != nil {
		s.logger.WithError(err).WithField("product_id", product.ProductID).
			Warn("Product insight generation failed, using fallback")
		return fallbackProductInsights(), true
	}

	if s.cache != nil {
		if data, err := json.Marshal(insights); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, s.insightsTTL).Err(); err != nil {
				s.logger.WithError(err).Debug("Product insights cache write failed")
			}
		}
	}

	return insights, false
}

func (s *ProductAnalysisService) generateInsights(ctx context.Context, product *models.Product) (models.ProductInsights, error) {
	holiday := "No"
	if product.Holiday {
		holiday = "Yes"
	}

	prompt := fmt.Sprintf(`Analyze the following product data and provide insights:

Product ID: %s
Category: %s
Subcategory: %s
Price: $%.2f
Brand: %s
Product Rating: %.1f
Customer Sentiment Score: %.2f
Season: %s
Applicable for Holidays: %s
Similar Products: %s

Provide insights in JSON format with the following structure:
{
    "target_demographics": ["demographic1", "demographic2"],
    "key_selling_points": ["point1", "point2"],
    "suggested_customer_segments": ["segment1", "segment2"],
    "product_insights": "brief analysis of the product's appeal"
}`,
		product.ProductID,
		product.Category,
		product.Subcategory,
		product.Price,
		product.Brand,
		product.ProductRating,
		product.SentimentScore,
		product.Season,
		holiday,
		strings.Join(product.SimilarProducts, ", "),
	)

	response, err := s.generator.Generate(ctx, prompt, productInsightsSystemPrompt)
	if err != nil {
		return models.ProductInsights{}, err
	}

	document := validation.ExtractJSON(response)
	if result := s.validator.ValidateProductInsights(document); !result.Valid {
		return models.ProductInsights{}, fmt.Errorf("insight JSON failed validation: %s", strings.Join(result.Errors, "; "))
	}

	var insights models.ProductInsights
	if err := json.Unmarshal([]byte(document), &insights); err != nil {
		return models.ProductInsights{}, fmt.Errorf("failed to unmarshal insights: %w", err)
	}

	return insights, nil
}

func fallbackProductInsights() models.ProductInsights {
	return models.ProductInsights{
		TargetDemographics:        []string{"General"},
		KeySellingPoints:          []string{"Quality product"},
		SuggestedCustomerSegments: []string{"All segments"},
		ProductInsights:           "Basic product in its category.",
	}
}
