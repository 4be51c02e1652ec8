package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tannerv/shopsmith/pkg/models"
)

// RecommendationStore persists generated recommendations and feedback in
// PostgreSQL.
type RecommendationStore struct {
	db     DatabaseQuerier
	logger *logrus.Logger
}

func NewRecommendationStore(db DatabaseQuerier, logger *logrus.Logger) *RecommendationStore {
	return &RecommendationStore{db: db, logger: logger}
}

// Append writes one recommendation row with feedback initialized unset.
func (s *RecommendationStore) Append(ctx context.Context, customerID string, rec models.Recommendation) error {
	query := `
		INSERT INTO recommendations (id, customer_id, product_id, category, price, score, reason, feedback, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.Exec(ctx, query,
		uuid.New(),
		customerID,
		rec.ProductID,
		rec.Category,
		rec.Price,
		rec.Score,
		rec.Reason,
		models.FeedbackUnset,
		rec.Timestamp,
	)
	if err != nil {
		return &PersistenceError{Op: "append recommendation", Err: err}
	}

	return nil
}

// UpdateFeedback sets the feedback value on the customer's single most
// recent recommendation row for the product; older rows for the same pair
// keep their recorded feedback. ErrNotFound when no row matches.
func (s *RecommendationStore) UpdateFeedback(ctx context.Context, customerID, productID string, feedback int) error {
	query := `
		UPDATE recommendations
		SET feedback = $3
		WHERE id = (
			SELECT id FROM recommendations
			WHERE customer_id = $1 AND product_id = $2
			ORDER BY created_at DESC
			LIMIT 1
		)
	`

	tag, err := s.db.Exec(ctx, query, customerID, productID, feedback)
	if err != nil {
		return &PersistenceError{Op: "update feedback", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recommendation for customer %s product %s: %w", customerID, productID, ErrNotFound)
	}

	return nil
}

func (s *RecommendationStore) ListForCustomer(ctx context.Context, customerID string, limit int) ([]models.Recommendation, error) {
	query := `
		SELECT product_id, category, price, score, reason, feedback, created_at
		FROM recommendations
		WHERE customer_id = $1
		ORDER BY created_at DESC, score DESC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	var recommendations []models.Recommendation
	for rows.Next() {
		var rec models.Recommendation
		if err := rows.Scan(
			&rec.ProductID,
			&rec.Category,
			&rec.Price,
			&rec.Score,
			&rec.Reason,
			&rec.Feedback,
			&rec.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recommendations = append(recommendations, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recommendations: %w", err)
	}

	return recommendations, nil
}
