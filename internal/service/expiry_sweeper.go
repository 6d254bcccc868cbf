package service

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

// ExpirySweeper periodically expires bargains and challenges whose deadline
// has passed. Reads also expire lazily, so a missed sweep is harmless.
type ExpirySweeper struct {
	bargains   repository.BargainRepository
	challenges repository.ChallengeRepository
	interval   time.Duration
	metrics    *metrics.MetricsManager
	log        logger.Logger
}

func NewExpirySweeper(
	bargains repository.BargainRepository,
	challenges repository.ChallengeRepository,
	interval time.Duration,
	metricsManager *metrics.MetricsManager,
	log logger.Logger,
) *ExpirySweeper {
	return &ExpirySweeper{
		bargains:   bargains,
		challenges: challenges,
		interval:   interval,
		metrics:    metricsManager,
		log:        log.Named("ExpirySweeper"),
	}
}

// Run sweeps until ctx is cancelled.
func (s *ExpirySweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info("Expiry sweeper disabled")
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Infof("Expiry sweeper running every %s", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Expiry sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

func (s *ExpirySweeper) Sweep(ctx context.Context) {
	now := time.Now().UTC()

	n, err := s.bargains.ExpireStale(ctx, now)
	if err != nil {
		s.log.Errorf("Failed to expire stale bargains: %v", err)
	} else if n > 0 {
		s.metrics.NegotiationsExpired.WithLabelValues("bargain").Add(float64(n))
		s.log.Infof("Expired %d bargains", n)
	}

	n, err = s.challenges.ExpireStale(ctx, now)
	if err != nil {
		s.log.Errorf("Failed to expire stale challenges: %v", err)
	} else if n > 0 {
		s.metrics.NegotiationsExpired.WithLabelValues("challenge").Add(float64(n))
		s.log.Infof("Expired %d challenges", n)
	}
}
