package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tannerv/shopsmith/internal/services"
)

type CustomerHandler struct {
	analysis services.CustomerContextProvider
	logger   *logrus.Logger
}

func NewCustomerHandler(analysis services.CustomerContextProvider, logger *logrus.Logger) *CustomerHandler {
	return &CustomerHandler{
		analysis: analysis,
		logger:   logger,
	}
}

// GetCustomerAnalysis returns the analyzed customer profile, including the
// derived attributes and LLM insights the pipeline runs on.
// GET /api/v1/customers/:customerId/analysis
func (h *CustomerHandler) GetCustomerAnalysis(c *gin.Context) {
	customerCtx, err := h.analysis.GetCustomerContext(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, customerCtx)
}
