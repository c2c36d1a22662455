package main // entry point for the HTTP API

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/opportunity-hub/internal/config"
	"github.com/iliyamo/opportunity-hub/internal/database"
	"github.com/iliyamo/opportunity-hub/internal/handler"
	"github.com/iliyamo/opportunity-hub/internal/jobs"
	"github.com/iliyamo/opportunity-hub/internal/logger"
	"github.com/iliyamo/opportunity-hub/internal/middleware"
	"github.com/iliyamo/opportunity-hub/internal/queue"
	"github.com/iliyamo/opportunity-hub/internal/repository"
	"github.com/iliyamo/opportunity-hub/internal/revocation"
	"github.com/iliyamo/opportunity-hub/internal/router"
	"github.com/iliyamo/opportunity-hub/internal/service"
	"github.com/iliyamo/opportunity-hub/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mysql")
	}
	defer db.Close()

	if cfg.DBAutoMigrate {
		applied, err := database.Migrate(ctx, db)
		if err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
		log.Info().Ints64("applied", applied).Msg("migrations up to date")
	}

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable; response cache disabled")
	} else {
		defer rdb.Close()
	}

	revoked, memRegistry, err := revocationRegistry(cfg.RevocationBackend, rdb)
	if err != nil {
		log.Fatal().Err(err).Msg("revocation registry")
	}
	log.Info().Str("backend", cfg.RevocationBackend).Bool("shared", memRegistry == nil).Msg("revocation registry ready")

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		pub := service.NewAMQPPublisher(cfg.RabbitMQURL, log)
		defer pub.Close()
		events = pub
		if cfg.ConsumerEnabled {
			consumer := queue.NewConsumer(cfg.RabbitMQURL, cfg.ActivityLogDir, log)
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error().Err(err).Msg("activity consumer stopped")
				}
			}()
		}
	}

	tokens := utils.NewTokenService(cfg.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL(), cfg.AdminTTL())
	policy := utils.PasswordPolicy{MinLength: cfg.MinPasswordLength, RequireComplexity: cfg.RequirePasswordComplexity}

	users := repository.NewUserRepo(db)
	refresh := repository.NewTokenRepo(db)
	admins := repository.NewAdminRepo(db)
	opportunities := repository.NewOpportunityRepo(db)

	authSvc := service.NewAuthService(users, refresh, tokens, revoked, events, log, service.AuthOptions{
		BcryptCost:    cfg.BcryptCost,
		Policy:        policy,
		RotateRefresh: cfg.RotateRefreshTokens,
	})
	adminSvc := service.NewAdminService(admins, tokens, policy, cfg.BcryptCost, log)
	checkIns := service.NewCheckInService(users, events, cfg.Location(), log)
	profiles := service.NewProfileService(users)

	limits := middleware.NewRateLimits(config.LoadRateLimitConfig())
	cacheCfg := config.LoadCacheConfig()
	var cache echo.MiddlewareFunc
	var invalidate func(ctx context.Context) error
	if rdb != nil && cacheCfg.Enabled {
		cache = middleware.NewRedisCache(cacheCfg, rdb)
		invalidate = func(ctx context.Context) error {
			return middleware.InvalidateRoutes(ctx, cacheCfg, rdb, router.OpportunityRoutes...)
		}
	}

	e := router.New(router.Deps{
		Log:        log,
		Production: cfg.IsProduction(),
		Tokens:     tokens,
		Revoked:    revoked,
		Users:      users,
		Admins:     admins,
		Limits:     limits,
		Cache:      cache,
		Ready:      readiness(db, rdb),

		Auth:          handler.NewAuthHandler(authSvc),
		User:          handler.NewUserHandler(profiles, checkIns),
		Profile:       handler.NewProfileHandler(profiles),
		Community:     handler.NewCommunityHandler(users),
		Opportunities: handler.NewOpportunityHandler(opportunities, invalidate),
		Admin:         handler.NewAdminHandler(adminSvc),
	})

	sweepers := map[string]jobs.Sweeper{"rate_limits": limits}
	if memRegistry != nil {
		sweepers["revocation"] = memRegistry
	}
	scheduler := jobs.NewScheduler(sweepers, refresh, log)
	if err := scheduler.Start(); err != nil {
		log.Error().Err(err).Msg("scheduler start failed")
	}
	defer scheduler.Stop()

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Msg("api listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	waitForShutdown(ctx, e, log)
}

// revocationRegistry picks the blacklist backend.  The in-memory registry is
// returned a second time so the scheduler can sweep it.
func revocationRegistry(backend string, rdb *redis.Client) (revocation.Registry, *revocation.Memory, error) {
	switch backend {
	case "redis":
		if rdb == nil {
			return nil, nil, errors.New("REVOCATION_BACKEND=redis but redis is unavailable")
		}
		return revocation.NewRedis(rdb), nil, nil
	case "auto":
		if rdb != nil {
			return revocation.NewRedis(rdb), nil, nil
		}
	}
	mem := revocation.NewMemory()
	return mem, mem, nil
}

func readiness(db *sql.DB, rdb *redis.Client) map[string]func(ctx context.Context) error {
	checks := map[string]func(ctx context.Context) error{
		"mysql": db.PingContext,
		"redis": nil,
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}

func waitForShutdown(ctx context.Context, e *echo.Echo, log zerolog.Logger) {
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
