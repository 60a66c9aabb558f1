package service

import (
	"context"
	"time"

	"loghive-be/internal/pkg/logger"
	"loghive-be/internal/repository/contract"
)

type IRetentionService interface {
	Run(ctx context.Context)
}

// retentionService periodically hard-deletes records whose event time fell
// out of the retention window. It runs as a background task next to the
// request handlers; each sweep is a single bulk delete statement.
type retentionService struct {
	logRepo       contract.LogRecordRepository
	retentionDays int
	sweepInterval time.Duration
	logger        logger.ILogger
}

func NewRetentionService(
	logRepo contract.LogRecordRepository,
	retentionDays int,
	sweepInterval time.Duration,
	log logger.ILogger,
) IRetentionService {
	return &retentionService{
		logRepo:       logRepo,
		retentionDays: retentionDays,
		sweepInterval: sweepInterval,
		logger:        log,
	}
}

func (s *retentionService) Run(ctx context.Context) {
	if s.retentionDays <= 0 {
		s.logger.Info("retention", "retention disabled, sweeper not started", nil)
		return
	}

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *retentionService) sweep(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	purged, err := s.logRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("retention", "sweep failed", map[string]interface{}{
			"cutoff": cutoff.Format(time.RFC3339),
			"error":  err.Error(),
		})
		return
	}
	s.logger.Info("retention", "sweep completed", map[string]interface{}{
		"cutoff": cutoff.Format(time.RFC3339),
		"purged": purged,
	})
}
