package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/tannerv/shopsmith/pkg/models"
)

// StrategyPreferenceRepository is the durable tier of the preference store.
type StrategyPreferenceRepository interface {
	GetPreference(ctx context.Context, customerID string) (models.Strategy, bool, error)
	SetPreference(ctx context.Context, customerID string, strategy models.Strategy) error
}

// PostgresPreferenceRepository stores strategy preferences in the
// strategy_preferences table.
type PostgresPreferenceRepository struct {
	db     DatabaseQuerier
	logger *logrus.Logger
}

func NewPostgresPreferenceRepository(db DatabaseQuerier, logger *logrus.Logger) *PostgresPreferenceRepository {
	return &PostgresPreferenceRepository{db: db, logger: logger}
}

func (r *PostgresPreferenceRepository) GetPreference(ctx context.Context, customerID string) (models.Strategy, bool, error) {
	query := `SELECT strategy FROM strategy_preferences WHERE customer_id = $1`

	var strategy models.Strategy
	err := r.db.QueryRow(ctx, query, customerID).Scan(&strategy)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read strategy preference: %w", err)
	}

	return strategy, true, nil
}

func (r *PostgresPreferenceRepository) SetPreference(ctx context.Context, customerID string, strategy models.Strategy) error {
	query := `
		INSERT INTO strategy_preferences (customer_id, strategy, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (customer_id) DO UPDATE SET strategy = $2, updated_at = NOW()
	`

	if _, err := r.db.Exec(ctx, query, customerID, strategy); err != nil {
		return &PersistenceError{Op: "set strategy preference", Err: err}
	}

	return nil
}

// StrategyPreferenceStore layers an in-process cache over the durable
// repository. The cache is populated lazily on read miss and is the source of
// truth once warm; writes go durable-first, then update the cache.
//
// Lock returns the per-customer mutex that callers hold across a
// read-modify-write of the preference. The selector's first-write and the
// feedback learner's rotation both take it so concurrent requests for the
// same customer cannot lose updates.
type StrategyPreferenceStore struct {
	durable StrategyPreferenceRepository
	logger  *logrus.Logger

	mu    sync.RWMutex
	cache map[string]models.Strategy

	locks sync.Map // customer_id -> *sync.Mutex
}

func NewStrategyPreferenceStore(durable StrategyPreferenceRepository, logger *logrus.Logger) *StrategyPreferenceStore {
	return &StrategyPreferenceStore{
		durable: durable,
		logger:  logger,
		cache:   make(map[string]models.Strategy),
	}
}

func (s *StrategyPreferenceStore) Get(ctx context.Context, customerID string) (models.Strategy, bool, error) {
	s.mu.RLock()
	strategy, ok := s.cache[customerID]
	s.mu.RUnlock()
	if ok {
		return strategy, true, nil
	}

	strategy, found, err := s.durable.GetPreference(ctx, customerID)
	if err != nil {
		return "", false, err
	}
	if !found {
		// Absence is not cached; the durable store stays authoritative
		// until a preference exists.
		return "", false, nil
	}

	s.mu.Lock()
	s.cache[customerID] = strategy
	s.mu.Unlock()

	return strategy, true, nil
}

func (s *StrategyPreferenceStore) Set(ctx context.Context, customerID string, strategy models.Strategy) error {
	if err := s.durable.SetPreference(ctx, customerID, strategy); err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[customerID] = strategy
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"customer_id": customerID,
		"strategy":    strategy,
	}).Debug("Strategy preference stored")

	return nil
}

// Lock acquires the per-customer mutex and returns its release func.
func (s *StrategyPreferenceStore) Lock(customerID string) func() {
	value, _ := s.locks.LoadOrStore(customerID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
