package services

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tannerv/shopsmith/pkg/models"
)

type MockSimilarityCatalog struct {
	mock.Mock
}

func (m *MockSimilarityCatalog) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockSimilarityCatalog) GetEmbedding(ctx context.Context, entityType, entityID string) ([]float64, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float64), args.Error(1)
}

func (m *MockSimilarityCatalog) ListProductEmbeddings(ctx context.Context) ([]ProductEmbedding, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ProductEmbedding), args.Error(1)
}

func (m *MockSimilarityCatalog) UpsertEmbedding(ctx context.Context, entityType, entityID string, vector []float64) error {
	args := m.Called(ctx, entityType, entityID, vector)
	return args.Error(0)
}

func TestSimilarityService_FindSimilarProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks by cosine similarity", func(t *testing.T) {
		catalog := &MockSimilarityCatalog{}
		catalog.On("GetEmbedding", ctx, "product", "P1").Return([]float64{1, 0, 0}, nil)
		catalog.On("ListProductEmbeddings", ctx).Return([]ProductEmbedding{
			{ProductID: "P1", Vector: []float64{1, 0, 0}},
			{ProductID: "P2", Vector: []float64{0.9, 0.1, 0}},
			{ProductID: "P3", Vector: []float64{0, 1, 0}},
			{ProductID: "P4", Vector: []float64{0.5, 0.5, 0}},
		}, nil)

		service := NewSimilarityService(catalog, &MockGenerator{}, logrus.New())

		similar, err := service.FindSimilarProducts(ctx, "P1", 3)

		require.NoError(t, err)
		require.Len(t, similar, 3)
		assert.Equal(t, "P2", similar[0].ProductID)
		assert.Equal(t, "P4", similar[1].ProductID)
		assert.Equal(t, "P3", similar[2].ProductID)
		// The query product itself is excluded.
		for _, sp := range similar {
			assert.NotEqual(t, "P1", sp.ProductID)
		}
	})

	t.Run("generates a missing embedding from product attributes", func(t *testing.T) {
		catalog := &MockSimilarityCatalog{}
		catalog.On("GetEmbedding", ctx, "product", "P1").Return(nil, ErrNotFound)
		catalog.On("GetProduct", ctx, "P1").Return(&models.Product{
			ProductID: "P1", Category: "Books", Subcategory: "Fiction", Brand: "Acme",
			Price: 20, ProductRating: 4.5,
		}, nil)
		catalog.On("UpsertEmbedding", ctx, "product", "P1", []float64{1, 0}).Return(nil)
		catalog.On("ListProductEmbeddings", ctx).Return([]ProductEmbedding{
			{ProductID: "P2", Vector: []float64{1, 0}},
		}, nil)

		generator := &MockGenerator{}
		generator.On("Embed", mock.Anything, mock.Anything).Return([]float64{1, 0}, nil)

		service := NewSimilarityService(catalog, generator, logrus.New())

		similar, err := service.FindSimilarProducts(ctx, "P1", 5)

		require.NoError(t, err)
		require.Len(t, similar, 1)
		assert.InDelta(t, 1.0, similar[0].Similarity, 1e-9)
		catalog.AssertExpectations(t)
	})

	t.Run("unknown product propagates not found", func(t *testing.T) {
		catalog := &MockSimilarityCatalog{}
		catalog.On("GetEmbedding", ctx, "product", "P404").Return(nil, ErrNotFound)
		catalog.On("GetProduct", ctx, "P404").Return(nil, ErrNotFound)

		service := NewSimilarityService(catalog, &MockGenerator{}, logrus.New())

		_, err := service.FindSimilarProducts(ctx, "P404", 5)

		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("mismatched and zero vectors are skipped", func(t *testing.T) {
		catalog := &MockSimilarityCatalog{}
		catalog.On("GetEmbedding", ctx, "product", "P1").Return([]float64{1, 0}, nil)
		catalog.On("ListProductEmbeddings", ctx).Return([]ProductEmbedding{
			{ProductID: "P2", Vector: []float64{1, 0, 0}}, // wrong length
			{ProductID: "P3", Vector: []float64{0, 0}},    // zero vector
			{ProductID: "P4", Vector: []float64{0, 1}},
		}, nil)

		service := NewSimilarityService(catalog, &MockGenerator{}, logrus.New())

		similar, err := service.FindSimilarProducts(ctx, "P1", 5)

		require.NoError(t, err)
		require.Len(t, similar, 1)
		assert.Equal(t, "P4", similar[0].ProductID)
	})
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
		ok       bool
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0, true},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.0, true},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1.0, true},
		{"length mismatch", []float64{1, 0}, []float64{1}, 0, false},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0, false},
		{"empty", nil, nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			similarity, ok := cosineSimilarity(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.expected, similarity, 1e-9)
			}
		})
	}
}
