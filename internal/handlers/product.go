package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tannerv/shopsmith/internal/services"
)

type ProductHandler struct {
	similarity services.SimilarProductFinder
	analysis   services.ProductAnalyzer
	logger     *logrus.Logger
}

func NewProductHandler(similarity services.SimilarProductFinder, analysis services.ProductAnalyzer, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		similarity: similarity,
		analysis:   analysis,
		logger:     logger,
	}
}

// GetProductAnalysis returns the full analysis of one product: the raw
// record, LLM insights, and the closest products by embedding similarity.
// GET /api/v1/products/:productId/analysis
func (h *ProductHandler) GetProductAnalysis(c *gin.Context) {
	productID := c.Param("productId")

	analysis, err := h.analysis.AnalyzeProduct(c.Request.Context(), productID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// GetSimilarProducts returns the products closest to the given one by
// embedding similarity.
// GET /api/v1/products/:productId/similar
func (h *ProductHandler) GetSimilarProducts(c *gin.Context) {
	productID := c.Param("productId")

	limit := 5
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "limit must be an integer between 1 and 50",
				},
			})
			return
		}
		limit = parsed
	}

	similar, err := h.similarity.FindSimilarProducts(c.Request.Context(), productID, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id":       productID,
		"similar_products": similar,
	})
}
