package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tannerv/shopsmith/pkg/models"
)

// ProductCatalog is the slice of the catalog the filter service needs.
type ProductCatalog interface {
	ListProductsByCategories(ctx context.Context, categories []string) ([]models.Product, error)
}

// ProductFilterService produces the scored candidate set for a customer:
// catalog products in the customer's relevant categories, each scored by the
// relevance scorer, ordered by relevance descending. Candidate sets are
// cached per customer in Redis.
type ProductFilterService struct {
	catalog       ProductCatalog
	scorer        *RelevanceScorer
	cache         *redis.Client
	candidatesTTL time.Duration
	logger        *logrus.Logger
}

func NewProductFilterService(
	catalog ProductCatalog,
	scorer *RelevanceScorer,
	cache *redis.Client,
	candidatesTTL time.Duration,
	logger *logrus.Logger,
) *ProductFilterService {
	return &ProductFilterService{
		catalog:       catalog,
		scorer:        scorer,
		cache:         cache,
		candidatesTTL: candidatesTTL,
		logger:        logger,
	}
}

func (s *ProductFilterService) GetScoredCandidates(ctx context.Context, customer *models.CustomerContext) ([]models.ScoredProduct, error) {
	if customer == nil || customer.CustomerID == "" {
		return nil, &ValidationError{Field: "customer_id", Message: "must not be empty"}
	}

	cacheKey := s.cacheKey(customer)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var candidates []models.ScoredProduct
			if err := json.Unmarshal([]byte(cached), &candidates); err == nil {
				return candidates, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.WithError(err).Debug("Candidate cache read failed")
		}
	}

	products, err := s.catalog.ListProductsByCategories(ctx, customer.RelevantCategories)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.ScoredProduct, 0, len(products))
	for i := range products {
		candidates = append(candidates, models.ScoredProduct{
			Product:        products[i],
			RelevanceScore: s.scorer.Score(&products[i], customer),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RelevanceScore > candidates[j].RelevanceScore
	})

	if s.cache != nil {
		if data, err := json.Marshal(candidates); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, s.candidatesTTL).Err(); err != nil {
				s.logger.WithError(err).Debug("Candidate cache write failed")
			}
		}
	}

	return candidates, nil
}

// cacheKey ties the cached candidate set to the customer and the category
// set it was computed for.
func (s *ProductFilterService) cacheKey(customer *models.CustomerContext) string {
	categories := make([]string, len(customer.RelevantCategories))
	copy(categories, customer.RelevantCategories)
	sort.Strings(categories)
	return fmt.Sprintf("candidates:%s:%s", customer.CustomerID, strings.Join(categories, ","))
}
