package models

import (
	"time"
)

// Strategy identifies one of the four recommendation algorithms.
type Strategy string

const (
	StrategyCollaborative Strategy = "collaborative_filtering"
	StrategyContentBased  Strategy = "content_based"
	StrategyPopularity    Strategy = "popularity_based"
	StrategyHybrid        Strategy = "hybrid"
)

// StrategyRotation is the fixed cyclic order used by feedback-driven
// strategy adaptation. One negative feedback advances exactly one position.
var StrategyRotation = []Strategy{
	StrategyCollaborative,
	StrategyContentBased,
	StrategyPopularity,
	StrategyHybrid,
}

// Valid reports whether s is one of the four known strategies.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyCollaborative, StrategyContentBased, StrategyPopularity, StrategyHybrid:
		return true
	}
	return false
}

// Next returns the strategy following s in the fixed rotation, wrapping
// around after hybrid. Unknown strategies rotate to collaborative filtering.
func (s Strategy) Next() Strategy {
	for i, candidate := range StrategyRotation {
		if candidate == s {
			return StrategyRotation[(i+1)%len(StrategyRotation)]
		}
	}
	return StrategyRotation[0]
}

// Feedback values recorded against a persisted recommendation.
const (
	FeedbackUnset    = 0
	FeedbackPositive = 1
	FeedbackNegative = -1
)

// Recommendation is a single ranked product recommendation. Score is clamped
// to [0,1] at engine output; Feedback is set after the fact by the feedback
// learner's caller.
type Recommendation struct {
	ProductID string    `json:"product_id"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Score     float64   `json:"score"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
	Feedback  int       `json:"feedback,omitempty"`
}

// Explanation is the natural-language summary attached to a recommendation
// result. Fallback is true when the LLM was unavailable and the deterministic
// templated sentence was substituted; callers can rely on Text always being
// populated.
type Explanation struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

// RecommendationResult is the orchestrator's final output for one request.
type RecommendationResult struct {
	CustomerID      string           `json:"customer_id"`
	Recommendations []Recommendation `json:"recommendations"`
	Strategy        Strategy         `json:"strategy"`
	Explanation     Explanation      `json:"explanation"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// FeedbackRequest is the API payload for recording recommendation feedback.
type FeedbackRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
	ProductID  string `json:"product_id" validate:"required"`
	Feedback   int    `json:"feedback" validate:"required,oneof=-1 1"`
}

// Feedback learner outcome labels.
const (
	FeedbackStatusLearned  = "learned_from_feedback"
	FeedbackStatusRecorded = "feedback_recorded"

	FeedbackActionAdjusted   = "adjusted_strategy"
	FeedbackActionMaintained = "maintained_strategy"
)

// FeedbackResult reports what the feedback learner did.
type FeedbackResult struct {
	Status           string   `json:"status"`
	ActionTaken      string   `json:"action_taken"`
	PreviousStrategy Strategy `json:"previous_strategy,omitempty"`
	NewStrategy      Strategy `json:"new_strategy,omitempty"`
	CurrentStrategy  Strategy `json:"current_strategy,omitempty"`
}
