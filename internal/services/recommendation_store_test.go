package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tannerv/shopsmith/pkg/models"
)

func TestRecommendationStore_Append(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts one row", func(t *testing.T) {
		mockDB, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockDB.Close()

		now := time.Now()
		mockDB.ExpectExec(`INSERT INTO recommendations`).
			WithArgs(pgxmock.AnyArg(), "C1", "P1", "Books", 20.0, 0.9,
				"Popular Books product with a rating of 4.5", models.FeedbackUnset, now).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		store := NewRecommendationStore(mockDB, logrus.New())

		err = store.Append(ctx, "C1", models.Recommendation{
			ProductID: "P1",
			Category:  "Books",
			Price:     20.0,
			Score:     0.9,
			Reason:    "Popular Books product with a rating of 4.5",
			Timestamp: now,
		})

		require.NoError(t, err)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("write failure wraps as persistence error", func(t *testing.T) {
		mockDB, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockDB.Close()

		mockDB.ExpectExec(`INSERT INTO recommendations`).
			WillReturnError(errors.New("connection reset"))

		store := NewRecommendationStore(mockDB, logrus.New())

		err = store.Append(ctx, "C1", models.Recommendation{ProductID: "P1"})

		var persistenceErr *PersistenceError
		require.ErrorAs(t, err, &persistenceErr)
		assert.Equal(t, "append recommendation", persistenceErr.Op)
	})
}

func TestRecommendationStore_UpdateFeedback(t *testing.T) {
	ctx := context.Background()

	t.Run("updates only the latest matching row", func(t *testing.T) {
		mockDB, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockDB.Close()

		mockDB.ExpectExec(`UPDATE recommendations\s+SET feedback = \$3\s+WHERE id = \(\s+SELECT id FROM recommendations\s+WHERE customer_id = \$1 AND product_id = \$2\s+ORDER BY created_at DESC\s+LIMIT 1`).
			WithArgs("C1", "P1", models.FeedbackNegative).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		store := NewRecommendationStore(mockDB, logrus.New())

		require.NoError(t, store.UpdateFeedback(ctx, "C1", "P1", models.FeedbackNegative))
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("no matching row yields not found", func(t *testing.T) {
		mockDB, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockDB.Close()

		mockDB.ExpectExec(`UPDATE recommendations`).
			WithArgs("C1", "P404", models.FeedbackPositive).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		store := NewRecommendationStore(mockDB, logrus.New())

		err = store.UpdateFeedback(ctx, "C1", "P404", models.FeedbackPositive)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRecommendationStore_ListForCustomer(t *testing.T) {
	ctx := context.Background()

	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	now := time.Now()
	mockDB.ExpectQuery(`SELECT product_id, category, price, score, reason, feedback, created_at`).
		WithArgs("C1", 10).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "category", "price", "score", "reason", "feedback", "created_at"}).
			AddRow("P1", "Books", 20.0, 0.9, "reason one", models.FeedbackPositive, now).
			AddRow("P2", "Garden", 35.0, 0.7, "reason two", models.FeedbackUnset, now))

	store := NewRecommendationStore(mockDB, logrus.New())

	recs, err := store.ListForCustomer(ctx, "C1", 10)

	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "P1", recs[0].ProductID)
	assert.Equal(t, models.FeedbackPositive, recs[0].Feedback)
	assert.Equal(t, "P2", recs[1].ProductID)
}
