package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/tannerv/shopsmith/pkg/models"
)

// StrategySelector picks the recommendation strategy for a customer. A stored
// preference always wins; otherwise the segment and behavior rules below
// decide, and the choice is persisted so selection stays stable until
// feedback rotates it.
type StrategySelector struct {
	preferences PreferenceStore
	logger      *logrus.Logger
}

func NewStrategySelector(preferences PreferenceStore, logger *logrus.Logger) *StrategySelector {
	return &StrategySelector{
		preferences: preferences,
		logger:      logger,
	}
}

// Select evaluates the policy in order, first match wins:
//  1. stored preference (cache or durable)
//  2. New Visitor -> popularity_based
//  3. Frequent Buyer -> collaborative_filtering
//  4. more browsing than purchasing -> content_based
//  5. hybrid
//
// The first selection is written through to the preference store under the
// customer's lock so concurrent first requests agree on one strategy.
func (s *StrategySelector) Select(ctx context.Context, customer *models.CustomerContext) (models.Strategy, error) {
	unlock := s.preferences.Lock(customer.CustomerID)
	defer unlock()

	stored, found, err := s.preferences.Get(ctx, customer.CustomerID)
	if err != nil {
		return "", err
	}
	if found {
		return stored, nil
	}

	strategy := s.defaultStrategy(customer)

	if err := s.preferences.Set(ctx, customer.CustomerID, strategy); err != nil {
		return "", err
	}

	s.logger.WithFields(logrus.Fields{
		"customer_id": customer.CustomerID,
		"segment":     customer.Segment,
		"strategy":    strategy,
	}).Info("Strategy selected for customer")

	return strategy, nil
}

func (s *StrategySelector) defaultStrategy(customer *models.CustomerContext) models.Strategy {
	switch {
	case customer.Segment == models.SegmentNewVisitor:
		return models.StrategyPopularity
	case customer.Segment == models.SegmentFrequentBuyer:
		return models.StrategyCollaborative
	case len(customer.BrowsingHistory) > len(customer.PurchaseHistory):
		return models.StrategyContentBased
	default:
		return models.StrategyHybrid
	}
}
