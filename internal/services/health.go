package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tannerv/shopsmith/internal/config"
	"github.com/tannerv/shopsmith/internal/database"
)

type HealthService struct {
	config *config.Config
	logger *logrus.Logger
	db     *database.Database
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

func NewHealthService(cfg *config.Config, logger *logrus.Logger, db *database.Database) *HealthService {
	return &HealthService{
		config: cfg,
		logger: logger,
		db:     db,
	}
}

// Check pings every backing service. PostgreSQL is critical; a Redis outage
// degrades caching but the pipeline still works.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Services:  make(map[string]string),
	}

	if err := s.db.PG.Ping(checkCtx); err != nil {
		s.logger.WithError(err).Error("PostgreSQL health check failed")
		status.Services["postgresql"] = "unhealthy"
		status.Status = "unhealthy"
	} else {
		status.Services["postgresql"] = "healthy"
	}

	if err := s.db.Redis.Hot.Ping(checkCtx).Err(); err != nil {
		s.logger.WithError(err).Warn("Redis hot health check failed")
		status.Services["redis_hot"] = "unhealthy"
		if status.Status == "healthy" {
			status.Status = "degraded"
		}
	} else {
		status.Services["redis_hot"] = "healthy"
	}

	if err := s.db.Redis.Warm.Ping(checkCtx).Err(); err != nil {
		s.logger.WithError(err).Warn("Redis warm health check failed")
		status.Services["redis_warm"] = "unhealthy"
		if status.Status == "healthy" {
			status.Status = "degraded"
		}
	} else {
		status.Services["redis_warm"] = "healthy"
	}

	return status
}
