package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/tannerv/shopsmith/internal/llm"
	"github.com/tannerv/shopsmith/pkg/models"
)

// SimilarityCatalog is the slice of the catalog the similarity service needs.
type SimilarityCatalog interface {
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	GetEmbedding(ctx context.Context, entityType, entityID string) ([]float64, error)
	ListProductEmbeddings(ctx context.Context) ([]ProductEmbedding, error)
	UpsertEmbedding(ctx context.Context, entityType, entityID string, vector []float64) error
}

// SimilarityService finds products similar to a given product by cosine
// similarity over stored embedding vectors. Search is a linear scan; the
// catalog is small enough that an index would not pay for itself.
type SimilarityService struct {
	catalog   SimilarityCatalog
	generator llm.Generator
	logger    *logrus.Logger
}

func NewSimilarityService(catalog SimilarityCatalog, generator llm.Generator, logger *logrus.Logger) *SimilarityService {
	return &SimilarityService{
		catalog:   catalog,
		generator: generator,
		logger:    logger,
	}
}

func (s *SimilarityService) FindSimilarProducts(ctx context.Context, productID string, topN int) ([]models.SimilarProduct, error) {
	if productID == "" {
		return nil, &ValidationError{Field: "product_id", Message: "must not be empty"}
	}
	if topN <= 0 {
		topN = 5
	}

	target, err := s.productEmbedding(ctx, productID)
	if err != nil {
		return nil, err
	}

	embeddings, err := s.catalog.ListProductEmbeddings(ctx)
	if err != nil {
		return nil, err
	}

	similar := make([]models.SimilarProduct, 0, len(embeddings))
	for _, embedding := range embeddings {
		if embedding.ProductID == productID {
			continue
		}
		similarity, ok := cosineSimilarity(target, embedding.Vector)
		if !ok {
			continue
		}
		similar = append(similar, models.SimilarProduct{
			ProductID:  embedding.ProductID,
			Similarity: similarity,
		})
	}

	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].Similarity > similar[j].Similarity
	})

	if len(similar) > topN {
		similar = similar[:topN]
	}

	return similar, nil
}

// productEmbedding returns the stored vector for a product, generating and
// storing one from the product's attributes when none exists yet.
func (s *SimilarityService) productEmbedding(ctx context.Context, productID string) ([]float64, error) {
	vector, err := s.catalog.GetEmbedding(ctx, "product", productID)
	if err == nil {
		return vector, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("Product %s: %s %s by %s, priced at %.2f with rating %.1f",
		product.ProductID,
		titleCaser.String(product.Category),
		product.Subcategory,
		product.Brand,
		product.Price,
		product.ProductRating,
	)

	vector, err = s.generator.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := s.catalog.UpsertEmbedding(ctx, "product", productID, vector); err != nil {
		return nil, err
	}

	return vector, nil
}

// cosineSimilarity reports the cosine of the angle between two vectors. The
// second result is false for mismatched lengths or zero vectors.
func cosineSimilarity(a, b []float64) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}

	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0, false
	}

	return floats.Dot(a, b) / (normA * normB), true
}
