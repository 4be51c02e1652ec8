package models

// Product is the raw product record as stored durably.
type Product struct {
	ProductID                 string   `json:"product_id"`
	Category                  string   `json:"category"`
	Subcategory               string   `json:"subcategory"`
	Price                     float64  `json:"price"`
	Brand                     string   `json:"brand"`
	ProductRating             float64  `json:"product_rating"`
	SentimentScore            float64  `json:"sentiment_score"`
	Season                    string   `json:"season"`
	Holiday                   bool     `json:"holiday"`
	GeographicalLocation      string   `json:"geographical_location"`
	RecommendationProbability *float64 `json:"recommendation_probability,omitempty"`
	SimilarProducts           []string `json:"similar_products,omitempty"`
	EmbeddingID               string   `json:"embedding_id,omitempty"`
}

// ScoredProduct is a product candidate with its relevance score attached.
// Produced once per request by the product filter service; the relevance
// score is the shared substrate all strategy engines read.
type ScoredProduct struct {
	Product
	RelevanceScore float64 `json:"relevance_score"`
}

// ProductInsights holds the qualitative product analysis produced by the LLM
// (or the fixed fallback structure when generation fails).
type ProductInsights struct {
	TargetDemographics        []string `json:"target_demographics"`
	KeySellingPoints          []string `json:"key_selling_points"`
	SuggestedCustomerSegments []string `json:"suggested_customer_segments"`
	ProductInsights           string   `json:"product_insights"`
}

// SimilarProduct is one linear-scan similarity result.
type SimilarProduct struct {
	ProductID  string  `json:"product_id"`
	Similarity float64 `json:"similarity"`
}

// ProductAnalysis bundles a full product analysis response.
type ProductAnalysis struct {
	ProductID        string           `json:"product_id"`
	Product          Product          `json:"product_details"`
	Insights         ProductInsights  `json:"insights"`
	InsightsFallback bool             `json:"insights_fallback"`
	SimilarProducts  []SimilarProduct `json:"similar_products"`
}
