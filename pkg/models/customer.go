package models

// Customer segments as stored in the customers table.
const (
	SegmentNewVisitor        = "New Visitor"
	SegmentOccasionalShopper = "Occasional Shopper"
	SegmentFrequentBuyer     = "Frequent Buyer"
)

// Price sensitivity levels reported by customer insights.
const (
	PriceSensitivityLow    = "low"
	PriceSensitivityMedium = "medium"
	PriceSensitivityHigh   = "high"
)

// Customer is the raw customer record as stored durably.
type Customer struct {
	CustomerID      string   `json:"customer_id"`
	Age             int      `json:"age"`
	Gender          string   `json:"gender"`
	Location        string   `json:"location"`
	Segment         string   `json:"customer_segment"`
	AvgOrderValue   float64  `json:"avg_order_value"`
	BrowsingHistory []string `json:"browsing_history"`
	PurchaseHistory []string `json:"purchase_history"`
	Season          string   `json:"season"`
	HolidayShopping bool     `json:"holiday"`
}

// CustomerInsights holds the qualitative profile produced by the LLM
// (or the fixed fallback structure when generation fails).
type CustomerInsights struct {
	PrimaryInterests     []string `json:"primary_interests"`
	SecondaryInterests   []string `json:"secondary_interests"`
	PriceSensitivity     string   `json:"price_sensitivity"`
	LikelyNextPurchase   []string `json:"likely_next_purchase"`
	PersonalizationNotes string   `json:"personalization_notes"`
}

// CustomerContext is the immutable per-request snapshot of everything the
// recommendation pipeline knows about a customer. Built once by the customer
// analysis service and passed by value through the pipeline.
type CustomerContext struct {
	CustomerID         string           `json:"customer_id"`
	Segment            string           `json:"customer_segment"`
	AgeGroup           string           `json:"age_group"`
	BrowsingHistory    []string         `json:"browsing_history"`
	PurchaseHistory    []string         `json:"purchase_history"`
	RelevantCategories []string         `json:"relevant_categories"`
	AvgOrderValue      float64          `json:"avg_order_value"`
	Location           string           `json:"location"`
	Season             string           `json:"season"`
	HolidayShopping    bool             `json:"holiday_shopping"`
	Insights           CustomerInsights `json:"insights"`

	// InsightsFallback is true when the LLM insight generation failed and
	// the fixed fallback structure was substituted.
	InsightsFallback bool `json:"insights_fallback"`
}

// PriceFactor maps the customer's price sensitivity to the multiplier used
// by the relevance scorer's price-fit adjustment.
func (c *CustomerContext) PriceFactor() float64 {
	switch c.Insights.PriceSensitivity {
	case PriceSensitivityLow:
		return 1.5
	case PriceSensitivityHigh:
		return 0.7
	default:
		return 1.0
	}
}
