package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const sweepTimeout = time.Minute

// Sweeper removes refresh tokens past their expiry.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// newScheduler registers the background jobs. Nothing runs until Start.
func newScheduler(sweepSchedule string, sweeper Sweeper, log logrus.FieldLogger) (*cron.Cron, error) {
	c := cron.New()
	log = log.WithField("component", "scheduler")

	_, err := c.AddFunc(sweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		if _, err := sweeper.SweepExpired(ctx); err != nil {
			log.WithError(err).Error("refresh token sweep failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule token sweep %q: %w", sweepSchedule, err)
	}

	log.WithField("schedule", sweepSchedule).Info("token sweep scheduled")
	return c, nil
}
