package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tannerv/shopsmith/internal/config"
	"github.com/tannerv/shopsmith/internal/messaging"
	"github.com/tannerv/shopsmith/internal/services"
	"github.com/tannerv/shopsmith/pkg/models"
)

type memoryPreferenceStore struct {
	mu       sync.Mutex
	customer sync.Mutex
	prefs    map[string]models.Strategy
}

func newMemoryPreferenceStore() *memoryPreferenceStore {
	return &memoryPreferenceStore{prefs: make(map[string]models.Strategy)}
}

func (s *memoryPreferenceStore) Get(ctx context.Context, customerID string) (models.Strategy, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	strategy, ok := s.prefs[customerID]
	return strategy, ok, nil
}

func (s *memoryPreferenceStore) Set(ctx context.Context, customerID string, strategy models.Strategy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[customerID] = strategy
	return nil
}

func (s *memoryPreferenceStore) Lock(customerID string) func() {
	s.customer.Lock()
	return s.customer.Unlock
}

type mockCustomerProvider struct {
	mock.Mock
}

func (m *mockCustomerProvider) GetCustomerContext(ctx context.Context, customerID string) (*models.CustomerContext, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomerContext), args.Error(1)
}

type mockCandidateProvider struct {
	mock.Mock
}

func (m *mockCandidateProvider) GetScoredCandidates(ctx context.Context, customer *models.CustomerContext) ([]models.ScoredProduct, error) {
	args := m.Called(ctx, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ScoredProduct), args.Error(1)
}

type mockRecommendationRepo struct {
	mock.Mock
}

func (m *mockRecommendationRepo) Append(ctx context.Context, customerID string, rec models.Recommendation) error {
	args := m.Called(ctx, customerID, rec)
	return args.Error(0)
}

func (m *mockRecommendationRepo) UpdateFeedback(ctx context.Context, customerID, productID string, feedback int) error {
	args := m.Called(ctx, customerID, productID, feedback)
	return args.Error(0)
}

func (m *mockRecommendationRepo) ListForCustomer(ctx context.Context, customerID string, limit int) ([]models.Recommendation, error) {
	args := m.Called(ctx, customerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recommendation), args.Error(1)
}

type staticExplainer struct{}

func (staticExplainer) Explain(ctx context.Context, customer *models.CustomerContext, recs []models.Recommendation, strategy models.Strategy) models.Explanation {
	return models.Explanation{Text: "static explanation"}
}

func recommendationConfig() *config.RecommendationConfig {
	return &config.RecommendationConfig{
		MaxRecommendations: 10,
		Hybrid: config.HybridConfig{
			CollaborativeWeight: 0.4,
			ContentWeight:       0.4,
			PopularityWeight:    0.2,
		},
	}
}

func newTestHandler(t *testing.T, customers *mockCustomerProvider, candidates *mockCandidateProvider, recRepo *mockRecommendationRepo) *RecommendationHandler {
	t.Helper()

	logger := logrus.New()
	prefs := newMemoryPreferenceStore()
	cfg := recommendationConfig()

	collaborative := services.NewCollaborativeEngine(cfg)
	contentBased := services.NewContentBasedEngine(cfg)
	popularity := services.NewPopularityEngine(cfg)
	hybrid := services.NewHybridEngine(collaborative, contentBased, popularity, cfg)

	orchestrator := services.NewRecommendationOrchestrator(
		services.NewStrategySelector(prefs, logger),
		[]services.StrategyEngine{collaborative, contentBased, popularity, hybrid},
		recRepo,
		staticExplainer{},
		messaging.NoopPublisher{},
		nil,
		logger,
	)

	learner := services.NewFeedbackLearner(recRepo, prefs, messaging.NoopPublisher{}, nil, logger)

	return NewRecommendationHandler(customers, candidates, orchestrator, learner, recRepo, logger)
}

func setupRouter(handler *RecommendationHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/v1/recommendations/:customerId", handler.GetRecommendations)
	router.GET("/api/v1/recommendations/:customerId/history", handler.GetRecommendationHistory)
	router.POST("/api/v1/feedback", handler.RecordFeedback)
	return router
}

func TestRecommendationHandler_GetRecommendations(t *testing.T) {
	customer := &models.CustomerContext{
		CustomerID: "C1",
		Segment:    models.SegmentNewVisitor,
	}
	candidates := []models.ScoredProduct{
		{Product: models.Product{ProductID: "P1", Category: "Books", Price: 20, ProductRating: 4.5}, RelevanceScore: 0.8},
	}

	t.Run("returns recommendations", func(t *testing.T) {
		customers := &mockCustomerProvider{}
		customers.On("GetCustomerContext", mock.Anything, "C1").Return(customer, nil)

		candidateProvider := &mockCandidateProvider{}
		candidateProvider.On("GetScoredCandidates", mock.Anything, customer).Return(candidates, nil)

		recRepo := &mockRecommendationRepo{}
		recRepo.On("Append", mock.Anything, "C1", mock.AnythingOfType("models.Recommendation")).Return(nil)

		handler := newTestHandler(t, customers, candidateProvider, recRepo)
		router := setupRouter(handler)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/C1", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var result models.RecommendationResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, "C1", result.CustomerID)
		assert.Equal(t, models.StrategyPopularity, result.Strategy)
		require.Len(t, result.Recommendations, 1)
		assert.Equal(t, "P1", result.Recommendations[0].ProductID)
		assert.Equal(t, "static explanation", result.Explanation.Text)
	})

	t.Run("unknown customer yields 404", func(t *testing.T) {
		customers := &mockCustomerProvider{}
		customers.On("GetCustomerContext", mock.Anything, "C404").Return(nil, services.ErrNotFound)

		handler := newTestHandler(t, customers, &mockCandidateProvider{}, &mockRecommendationRepo{})
		router := setupRouter(handler)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/C404", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRecommendationHandler_RecordFeedback(t *testing.T) {
	t.Run("records positive feedback", func(t *testing.T) {
		recRepo := &mockRecommendationRepo{}
		recRepo.On("UpdateFeedback", mock.Anything, "C1", "P1", 1).Return(nil)

		handler := newTestHandler(t, &mockCustomerProvider{}, &mockCandidateProvider{}, recRepo)
		router := setupRouter(handler)

		body, _ := json.Marshal(models.FeedbackRequest{CustomerID: "C1", ProductID: "P1", Feedback: 1})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var result models.FeedbackResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, models.FeedbackStatusRecorded, result.Status)
	})

	t.Run("invalid feedback value yields 400", func(t *testing.T) {
		handler := newTestHandler(t, &mockCustomerProvider{}, &mockCandidateProvider{}, &mockRecommendationRepo{})
		router := setupRouter(handler)

		body := []byte(`{"customer_id": "C1", "product_id": "P1", "feedback": 3}`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing body yields 400", func(t *testing.T) {
		handler := newTestHandler(t, &mockCustomerProvider{}, &mockCandidateProvider{}, &mockRecommendationRepo{})
		router := setupRouter(handler)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRecommendationHandler_GetRecommendationHistory(t *testing.T) {
	recRepo := &mockRecommendationRepo{}
	recRepo.On("ListForCustomer", mock.Anything, "C1", 20).Return([]models.Recommendation{
		{ProductID: "P1", Category: "Books", Score: 0.9},
	}, nil)

	handler := newTestHandler(t, &mockCustomerProvider{}, &mockCandidateProvider{}, recRepo)
	router := setupRouter(handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/C1/history", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "P1")
}
