package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yjw768/groupup/internal/config"
	s3infra "github.com/yjw768/groupup/internal/infra/s3"
	"github.com/yjw768/groupup/internal/metrics"
	pgrepo "github.com/yjw768/groupup/internal/repo/postgres"
	redrepo "github.com/yjw768/groupup/internal/repo/redis"
	matchessvc "github.com/yjw768/groupup/internal/services/matches"
	mediasvc "github.com/yjw768/groupup/internal/services/media"
	messagessvc "github.com/yjw768/groupup/internal/services/messages"
	swipesvc "github.com/yjw768/groupup/internal/services/swipes"
	userssvc "github.com/yjw768/groupup/internal/services/users"
	"github.com/yjw768/groupup/internal/transport/http/handlers"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	r := chi.NewRouter()
	ApplyMiddlewares(r, log, collector, cfg.HTTP.RequestTimeout)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, pgrepo.PoolConfig{
		DSN:              cfg.Postgres.DSN,
		MaxConns:         cfg.Postgres.MaxConns,
		StatementTimeout: cfg.Postgres.StatementTimeout,
	}); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	if pool != nil && cfg.Postgres.AutoMigrate {
		if err := pgrepo.RunMigrations(cfg.Postgres.DSN); err != nil {
			log.Warn("postgres migrations failed, continuing in degraded mode", zap.Error(err))
		} else {
			log.Info("postgres migrations applied")
		}
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	matchCache := redrepo.NewMatchCacheRepo(redisClient, cfg.Redis.MatchCacheTTL)

	userRepo := pgrepo.NewUserRepo(pool)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	messageRepo := pgrepo.NewMessageRepo(pool)
	txManager := pgrepo.NewTxManager(pool)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	mediaService := mediasvc.NewService(mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket), cfg.S3.PresignTTL)
	userService := userssvc.NewService(userssvc.Dependencies{
		Store:     userRepo,
		URLSigner: mediaService,
		Logger:    log,
	})
	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Decisions: swipeRepo,
		Matches:   matchRepo,
		Cache:     matchCache,
		Metrics:   collector,
		Logger:    log,
	})
	matchService := matchessvc.NewService(matchessvc.Dependencies{
		Store:  matchRepo,
		Cache:  matchCache,
		Signer: mediaService,
		Logger: log,
	})
	messageService := messagessvc.NewService(messagessvc.Dependencies{
		Tx:       txManager,
		Matches:  matchRepo,
		Messages: messageRepo,
		Cache:    matchCache,
		Signer:   mediaService,
		Metrics:  collector,
		Logger:   log,
		Config: messagessvc.Config{
			MaxContentLen:     cfg.Messages.MaxContentLen,
			EnforceMembership: cfg.Messages.EnforceMembership,
		},
	})

	var pinger handlers.Pinger
	if pool != nil {
		pinger = pool
	}

	RegisterRoutes(r, Dependencies{
		UserService:    userService,
		SwipeService:   swipeService,
		MatchService:   matchService,
		MessageService: messageService,
		MediaService:   mediaService,
		Postgres:       pinger,
		Metrics:        metrics.Handler(registry),
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
