package app

import (
	"context"
	"errors"
	stdhttp "net/http"

	"projecthub/internal/config"
	apphttp "projecthub/internal/http"
	"projecthub/internal/infra/cache"
	"projecthub/internal/repository/postgres"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const serverAddrPrefix = ":"

// Service represents the running application: HTTP server, background jobs
// and the stores they share.
type Service struct {
	config    *config.Config
	log       *logrus.Logger
	db        *postgres.DB
	redis     *cache.RedisRoleCache
	scheduler *cron.Cron
	server    *apphttp.Server
}

// Start starts background jobs and blocks serving HTTP until Shutdown.
func (s *Service) Start() error {
	s.scheduler.Start()

	s.log.WithField("port", s.config.Server.Port).Info("starting HTTP server")
	err := s.server.Start(serverAddrPrefix + s.config.Server.Port)
	if errors.Is(err, stdhttp.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests, waits for a running sweep and closes
// the stores.
func (s *Service) Shutdown(ctx context.Context) error {
	err := s.server.Shutdown(ctx)

	select {
	case <-s.scheduler.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("scheduler did not stop before shutdown deadline")
	}

	s.closeStores()
	return err
}

func (s *Service) closeStores() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.log.WithError(err).Warn("failed to close redis client")
		}
	}
	if s.db != nil {
		s.db.Close()
	}
}
