package services

import (
	"fmt"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tannerv/shopsmith/internal/config"
	"github.com/tannerv/shopsmith/pkg/models"
)

// Content-based history boosts. Both can apply to the same candidate.
const (
	browsingHistoryBoost = 0.10
	purchaseHistoryBoost = 0.15
)

var titleCaser = cases.Title(language.AmericanEnglish)

// PopularityEngine ranks candidates by product rating. Ties keep the input
// candidate order (stable sort, no secondary key).
type PopularityEngine struct {
	maxRecommendations int
}

func NewPopularityEngine(cfg *config.RecommendationConfig) *PopularityEngine {
	return &PopularityEngine{maxRecommendations: cfg.MaxRecommendations}
}

func (e *PopularityEngine) Name() models.Strategy {
	return models.StrategyPopularity
}

func (e *PopularityEngine) Recommend(customer *models.CustomerContext, candidates []models.ScoredProduct) []models.Recommendation {
	if len(candidates) == 0 {
		return []models.Recommendation{}
	}

	sorted := make([]models.ScoredProduct, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ProductRating > sorted[j].ProductRating
	})

	recommendations := make([]models.Recommendation, 0, e.maxRecommendations)
	for _, product := range sorted {
		if len(recommendations) == e.maxRecommendations {
			break
		}
		recommendations = append(recommendations, models.Recommendation{
			ProductID: product.ProductID,
			Category:  product.Category,
			Price:     product.Price,
			Score:     clamp01(product.ProductRating / 5.0),
			Reason:    fmt.Sprintf("Popular %s product with a rating of %.1f", titleCaser.String(product.Category), product.ProductRating),
		})
	}

	return recommendations
}

// ContentBasedEngine boosts the relevance score for candidates whose category
// the customer has browsed or purchased.
type ContentBasedEngine struct {
	maxRecommendations int
}

func NewContentBasedEngine(cfg *config.RecommendationConfig) *ContentBasedEngine {
	return &ContentBasedEngine{maxRecommendations: cfg.MaxRecommendations}
}

func (e *ContentBasedEngine) Name() models.Strategy {
	return models.StrategyContentBased
}

func (e *ContentBasedEngine) Recommend(customer *models.CustomerContext, candidates []models.ScoredProduct) []models.Recommendation {
	if len(candidates) == 0 {
		return []models.Recommendation{}
	}

	scored := make([]models.Recommendation, 0, len(candidates))
	for _, product := range candidates {
		score := product.RelevanceScore
		if containsCategory(customer.BrowsingHistory, product.Category) {
			score += browsingHistoryBoost
		}
		if containsCategory(customer.PurchaseHistory, product.Category) {
			score += purchaseHistoryBoost
		}

		scored = append(scored, models.Recommendation{
			ProductID: product.ProductID,
			Category:  product.Category,
			Price:     product.Price,
			Score:     clamp01(score),
			Reason:    fmt.Sprintf("Recommended based on your interest in %s products", titleCaser.String(product.Category)),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > e.maxRecommendations {
		scored = scored[:e.maxRecommendations]
	}

	return scored
}

// CollaborativeEngine is a simplified collaborative filter: no real peer
// data, the relevance score stands in for peer affinity and the customer's
// segment stands in for the peer group.
type CollaborativeEngine struct {
	maxRecommendations int
}

func NewCollaborativeEngine(cfg *config.RecommendationConfig) *CollaborativeEngine {
	return &CollaborativeEngine{maxRecommendations: cfg.MaxRecommendations}
}

func (e *CollaborativeEngine) Name() models.Strategy {
	return models.StrategyCollaborative
}

func (e *CollaborativeEngine) Recommend(customer *models.CustomerContext, candidates []models.ScoredProduct) []models.Recommendation {
	if len(candidates) == 0 {
		return []models.Recommendation{}
	}

	sorted := make([]models.ScoredProduct, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RelevanceScore > sorted[j].RelevanceScore
	})

	recommendations := make([]models.Recommendation, 0, e.maxRecommendations)
	for _, product := range sorted {
		if len(recommendations) == e.maxRecommendations {
			break
		}
		recommendations = append(recommendations, models.Recommendation{
			ProductID: product.ProductID,
			Category:  product.Category,
			Price:     product.Price,
			Score:     clamp01(product.RelevanceScore),
			Reason:    fmt.Sprintf("Recommended based on preferences of similar %s customers", customer.Segment),
		})
	}

	return recommendations
}

// HybridEngine blends the truncated top-10 outputs of the other three
// engines. A product missing from a sub-engine's output contributes zero for
// that engine's term. Blending only the truncated lists is documented
// behavior: products strong in one dimension but outside another engine's
// top-10 are undercounted.
type HybridEngine struct {
	collaborative      StrategyEngine
	contentBased       StrategyEngine
	popularity         StrategyEngine
	weights            config.HybridConfig
	maxRecommendations int
}

func NewHybridEngine(collaborative, contentBased, popularity StrategyEngine, cfg *config.RecommendationConfig) *HybridEngine {
	return &HybridEngine{
		collaborative:      collaborative,
		contentBased:       contentBased,
		popularity:         popularity,
		weights:            cfg.Hybrid,
		maxRecommendations: cfg.MaxRecommendations,
	}
}

func (e *HybridEngine) Name() models.Strategy {
	return models.StrategyHybrid
}

func (e *HybridEngine) Recommend(customer *models.CustomerContext, candidates []models.ScoredProduct) []models.Recommendation {
	if len(candidates) == 0 {
		return []models.Recommendation{}
	}

	collaborativeRecs := e.collaborative.Recommend(customer, candidates)
	contentRecs := e.contentBased.Recommend(customer, candidates)
	popularityRecs := e.popularity.Recommend(customer, candidates)

	merged := make(map[string]*models.Recommendation)
	order := make([]string, 0, len(collaborativeRecs)+len(contentRecs)+len(popularityRecs))

	add := func(rec models.Recommendation, weight float64, combineReason bool) {
		weighted := rec.Score * weight
		if existing, ok := merged[rec.ProductID]; ok {
			existing.Score += weighted
			if combineReason {
				existing.Reason += " and " + rec.Reason
			}
			return
		}
		rec.Score = weighted
		merged[rec.ProductID] = &rec
		order = append(order, rec.ProductID)
	}

	for _, rec := range collaborativeRecs {
		add(rec, e.weights.CollaborativeWeight, false)
	}
	// Reasons combine only when a product appears in both the collaborative
	// and content lists.
	for _, rec := range contentRecs {
		add(rec, e.weights.ContentWeight, true)
	}
	for _, rec := range popularityRecs {
		add(rec, e.weights.PopularityWeight, false)
	}

	combined := make([]models.Recommendation, 0, len(order))
	for _, productID := range order {
		rec := *merged[productID]
		rec.Score = clamp01(rec.Score)
		combined = append(combined, rec)
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Score > combined[j].Score
	})

	if len(combined) > e.maxRecommendations {
		combined = combined[:e.maxRecommendations]
	}

	return combined
}

func containsCategory(history []string, category string) bool {
	for _, entry := range history {
		if entry == category {
			return true
		}
	}
	return false
}
