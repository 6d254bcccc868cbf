package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestExpirySweeper_Sweep(t *testing.T) {
	bargains := new(MockBargainRepository)
	challenges := new(MockChallengeRepository)
	m := metrics.NewMetricsManager("test")
	sweeper := NewExpirySweeper(bargains, challenges, 0, m, logger.NewNop())

	bargains.On("ExpireStale", mock.Anything, mock.Anything).Return(int64(3), nil).Once()
	challenges.On("ExpireStale", mock.Anything, mock.Anything).Return(int64(0), errors.New("mongo down")).Once()

	sweeper.Sweep(context.Background())

	assert.Equal(t, 3.0, testutil.ToFloat64(m.NegotiationsExpired.WithLabelValues("bargain")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.NegotiationsExpired.WithLabelValues("challenge")))
	bargains.AssertExpectations(t)
	challenges.AssertExpectations(t)
}

func TestExpirySweeper_RunStopsOnCancel(t *testing.T) {
	sweeper := NewExpirySweeper(new(MockBargainRepository), new(MockChallengeRepository), 0, metrics.NewMetricsManager("test"), logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sweeper.Run(ctx)
}
