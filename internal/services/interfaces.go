package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tannerv/shopsmith/pkg/models"
)

// DatabaseQuerier abstracts pgxpool.Pool for store implementations so tests
// can substitute pgxmock.
type DatabaseQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// CustomerContextProvider builds the per-request customer snapshot.
type CustomerContextProvider interface {
	GetCustomerContext(ctx context.Context, customerID string) (*models.CustomerContext, error)
}

// CandidateProvider produces the scored candidate set a recommendation
// request runs over.
type CandidateProvider interface {
	GetScoredCandidates(ctx context.Context, customer *models.CustomerContext) ([]models.ScoredProduct, error)
}

// StrategyEngine is one of the four recommendation algorithms. Recommend is
// pure over its inputs and returns at most ten recommendations with scores
// clamped to [0,1]; an empty candidate set yields an empty list, never an
// error.
type StrategyEngine interface {
	Name() models.Strategy
	Recommend(customer *models.CustomerContext, candidates []models.ScoredProduct) []models.Recommendation
}

// PreferenceStore is the two-tier per-customer strategy preference storage.
// Lock hands out the per-customer mutex that serializes the selector's
// first-write and the feedback learner's read-modify-write rotation.
type PreferenceStore interface {
	Get(ctx context.Context, customerID string) (models.Strategy, bool, error)
	Set(ctx context.Context, customerID string, strategy models.Strategy) error
	Lock(customerID string) func()
}

// RecommendationRepository persists generated recommendations and later
// feedback against them.
type RecommendationRepository interface {
	Append(ctx context.Context, customerID string, rec models.Recommendation) error
	UpdateFeedback(ctx context.Context, customerID, productID string, feedback int) error
	ListForCustomer(ctx context.Context, customerID string, limit int) ([]models.Recommendation, error)
}

// SimilarProductFinder ranks the products closest to a given one by
// embedding similarity.
type SimilarProductFinder interface {
	FindSimilarProducts(ctx context.Context, productID string, topN int) ([]models.SimilarProduct, error)
}

// ProductAnalyzer assembles the full analysis of one product.
type ProductAnalyzer interface {
	AnalyzeProduct(ctx context.Context, productID string) (*models.ProductAnalysis, error)
}

// ExplanationGenerator produces the natural-language explanation for a
// recommendation set. It never fails: on any LLM problem the returned
// Explanation carries the deterministic fallback text with Fallback set.
type ExplanationGenerator interface {
	Explain(ctx context.Context, customer *models.CustomerContext, recs []models.Recommendation, strategy models.Strategy) models.Explanation
}
