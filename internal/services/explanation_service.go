package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tannerv/shopsmith/internal/config"
	"github.com/tannerv/shopsmith/internal/llm"
	"github.com/tannerv/shopsmith/pkg/models"
)

const explanationSystemPrompt = `You are an AI assistant that explains product recommendations. Based on the recommended products and customer data, explain why these specific recommendations were made in a personalized, conversational manner. Focus on highlighting the personalization aspects and the benefits to the customer.`

// ExplanationService turns a recommendation set into a short natural-language
// explanation. It never returns an error: any LLM failure or timeout yields
// the deterministic fallback sentence referencing the customer's segment,
// with Fallback set so callers can tell the branches apart.
type ExplanationService struct {
	generator llm.Generator
	config    *config.ExplanationConfig
	logger    *logrus.Logger
}

func NewExplanationService(generator llm.Generator, cfg *config.ExplanationConfig, logger *logrus.Logger) *ExplanationService {
	return &ExplanationService{
		generator: generator,
		config:    cfg,
		logger:    logger,
	}
}

func (s *ExplanationService) Explain(ctx context.Context, customer *models.CustomerContext, recs []models.Recommendation, strategy models.Strategy) models.Explanation {
	prompt, err := s.buildPrompt(customer, recs, strategy)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to build explanation prompt")
		return s.fallback(customer)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	text, err := s.generator.Generate(genCtx, prompt, explanationSystemPrompt)
	if err != nil || strings.TrimSpace(text) == "" {
		s.logger.WithError(err).WithField("customer_id", customer.CustomerID).
			Warn("Explanation generation failed, using fallback")
		return s.fallback(customer)
	}

	return models.Explanation{Text: strings.TrimSpace(text)}
}

func (s *ExplanationService) buildPrompt(customer *models.CustomerContext, recs []models.Recommendation, strategy models.Strategy) (string, error) {
	top := recs
	if len(top) > s.config.TopN {
		top = top[:s.config.TopN]
	}

	type recInfo struct {
		ProductID string  `json:"product_id"`
		Category  string  `json:"category"`
		Price     float64 `json:"price"`
		Reason    string  `json:"reason"`
	}

	info := make([]recInfo, 0, len(top))
	for _, rec := range top {
		info = append(info, recInfo{
			ProductID: rec.ProductID,
			Category:  titleCaser.String(rec.Category),
			Price:     rec.Price,
			Reason:    rec.Reason,
		})
	}

	recJSON, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal recommendation info: %w", err)
	}

	prompt := fmt.Sprintf(`Based on the customer data and recommended products, generate a personalized explanation for why these products were recommended to the customer.

Customer ID: %s
Customer Segment: %s
Recommendation Strategy: %s
Browsing History: %s
Purchase History: %s

Recommended Products:
%s

Generate a friendly, personalized explanation (2-4 sentences) that would help the customer understand why these items were recommended specifically for them.`,
		customer.CustomerID,
		customer.Segment,
		strategy,
		strings.Join(customer.BrowsingHistory, ", "),
		strings.Join(customer.PurchaseHistory, ", "),
		string(recJSON),
	)

	return prompt, nil
}

func (s *ExplanationService) fallback(customer *models.CustomerContext) models.Explanation {
	text := fmt.Sprintf("These products were selected based on your browsing and purchase history, as well as your preferences as a %s. We've highlighted items that we think will be most relevant to your interests.", customer.Segment)
	return models.Explanation{Text: text, Fallback: true}
}
