package app

import (
	"context"
	"fmt"
	"time"

	"projecthub/internal/audit"
	"projecthub/internal/auth"
	"projecthub/internal/comments"
	"projecthub/internal/config"
	apphttp "projecthub/internal/http"
	"projecthub/internal/infra/cache"
	"projecthub/internal/labels"
	"projecthub/internal/projects"
	"projecthub/internal/rbac"
	"projecthub/internal/repository/postgres"
	"projecthub/internal/storage/s3"
	"projecthub/internal/tasks"
	"projecthub/internal/timelogs"
	"projecthub/pkg/metrics"
	"projecthub/pkg/password"

	"github.com/sirupsen/logrus"
)

const seedTimeout = 30 * time.Second

// InitializeService wires up all dependencies and returns a configured Service.
// Built-in roles are seeded before the server is built.
func InitializeService(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*Service, error) {
	db, err := postgres.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("database connection established")

	svc := &Service{config: cfg, log: log, db: db}
	ok := false
	defer func() {
		if !ok {
			svc.closeStores()
		}
	}()

	m := metrics.New()

	userRepo := postgres.NewUserRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	projectRepo := postgres.NewProjectRepository(db)
	taskRepo := postgres.NewTaskRepository(db)
	commentRepo := postgres.NewCommentRepository(db)
	timeLogRepo := postgres.NewTimeLogRepository(db)
	labelRepo := postgres.NewLabelRepository(db)

	roleCache, err := svc.roleCache(ctx)
	if err != nil {
		return nil, err
	}

	catalog := rbac.NewCatalog(roleRepo, roleCache, log, m)
	seedCtx, cancel := context.WithTimeout(ctx, seedTimeout)
	err = catalog.SeedDefaults(seedCtx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to seed built-in roles: %w", err)
	}
	gate := rbac.NewGate(rbac.NewResolver(projectRepo, catalog), log, m)

	hasher := password.Default()
	identity := auth.NewIdentityStore(userRepo, hasher, log)
	tokens := auth.NewTokenService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		tokenRepo,
		identity,
		log,
		auth.WithAccessTTL(cfg.JWT.AccessTTL),
		auth.WithRefreshTTL(cfg.JWT.RefreshTTL),
		auth.WithMetrics(m),
	)
	authService := auth.NewService(identity, tokens, log)

	ledger := audit.NewLogger(db.SQL, log, m)
	exporter, err := newExporter(cfg, ledger, log)
	if err != nil {
		return nil, err
	}

	scheduler, err := newScheduler(cfg.JWT.SweepSchedule, tokens, log)
	if err != nil {
		return nil, err
	}
	svc.scheduler = scheduler

	svc.server = apphttp.NewServer(&apphttp.ServerDependencies{
		Config:         cfg,
		Log:            log,
		Metrics:        m,
		DB:             db.SQL,
		AuthMiddleware: auth.NewMiddleware(tokens, identity),
		RBACMiddleware: auth.NewRBACMiddleware(gate),
		Auth:           authService,
		Users:          identity,
		Roles:          catalog,
		Projects:       projects.NewService(projectRepo, catalog, gate, ledger, log, cfg.App.PageSize),
		Tasks:          tasks.NewService(taskRepo, gate, ledger, log, cfg.App.PageSize),
		Comments:       comments.NewService(commentRepo, taskRepo, gate, ledger, log),
		TimeLogs:       timelogs.NewService(timeLogRepo, taskRepo, gate, ledger, log),
		Labels:         labels.NewService(labelRepo, taskRepo, gate, ledger, log),
		Activity:       ledger,
		Exporter:       exporter,
	})

	ok = true
	return svc, nil
}

// roleCache uses Redis when REDIS_URL is set and the in-process LRU otherwise.
func (s *Service) roleCache(ctx context.Context) (rbac.RoleCache, error) {
	if s.config.Cache.RedisURL == "" {
		s.log.Info("using in-process role cache")
		return cache.NewLocalRoleCache(s.config.Cache.Size, s.config.Cache.TTL), nil
	}

	redisCache, err := cache.NewRedisRoleCache(s.config.Cache.RedisURL, s.config.Cache.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis role cache: %w", err)
	}
	s.redis = redisCache
	if err := redisCache.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	s.log.Info("using redis role cache")
	return redisCache, nil
}

func newExporter(cfg *config.Config, ledger *audit.Logger, log logrus.FieldLogger) (*audit.Exporter, error) {
	if !cfg.AWS.ExportEnabled() {
		log.Info("activity export disabled: EXPORT_BUCKET not set")
		return audit.NewExporter(ledger, nil, log), nil
	}

	client, err := s3.NewClient(&cfg.AWS)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	log.WithField("bucket", cfg.AWS.ExportBucket).Info("S3 client initialized")
	return audit.NewExporter(ledger, client, log), nil
}
