package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/tannerv/shopsmith/internal/services"
	"github.com/tannerv/shopsmith/pkg/models"
)

type RecommendationHandler struct {
	customers       services.CustomerContextProvider
	candidates      services.CandidateProvider
	orchestrator    *services.RecommendationOrchestrator
	learner         *services.FeedbackLearner
	recommendations services.RecommendationRepository
	validate        *validator.Validate
	logger          *logrus.Logger
}

func NewRecommendationHandler(
	customers services.CustomerContextProvider,
	candidates services.CandidateProvider,
	orchestrator *services.RecommendationOrchestrator,
	learner *services.FeedbackLearner,
	recommendations services.RecommendationRepository,
	logger *logrus.Logger,
) *RecommendationHandler {
	return &RecommendationHandler{
		customers:       customers,
		candidates:      candidates,
		orchestrator:    orchestrator,
		learner:         learner,
		recommendations: recommendations,
		validate:        validator.New(),
		logger:          logger,
	}
}

// GetRecommendations runs the full pipeline for one customer.
// GET /api/v1/recommendations/:customerId
func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	customerID := c.Param("customerId")

	customer, err := h.customers.GetCustomerContext(c.Request.Context(), customerID)
	if err != nil {
		writeError(c, err)
		return
	}

	candidates, err := h.candidates.GetScoredCandidates(c.Request.Context(), customer)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.orchestrator.GenerateRecommendations(c.Request.Context(), customer, candidates)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RecordFeedback records feedback on a recommended product and reports what
// the learner did with it.
// POST /api/v1/feedback
func (h *RecommendationHandler) RecordFeedback(c *gin.Context) {
	var req models.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST_BODY",
				"message": err.Error(),
			},
		})
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.learner.Learn(c.Request.Context(), req.CustomerID, req.ProductID, req.Feedback)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRecommendationHistory lists previously persisted recommendations.
// GET /api/v1/recommendations/:customerId/history
func (h *RecommendationHandler) GetRecommendationHistory(c *gin.Context) {
	customerID := c.Param("customerId")
	if customerID == "" {
		writeError(c, &services.ValidationError{Field: "customer_id", Message: "must not be empty"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "limit must be an integer between 1 and 100",
				},
			})
			return
		}
		limit = parsed
	}

	recs, err := h.recommendations.ListForCustomer(c.Request.Context(), customerID, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customer_id":     customerID,
		"recommendations": recs,
	})
}
