package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Freeeeeet/driver_availability/internal/api"
	"github.com/Freeeeeet/driver_availability/internal/app"
	"github.com/Freeeeeet/driver_availability/internal/config"
	"github.com/Freeeeeet/driver_availability/internal/controller"
	"github.com/Freeeeeet/driver_availability/internal/controller/state"
	"github.com/Freeeeeet/driver_availability/internal/metrics"
	"github.com/Freeeeeet/driver_availability/internal/repository"
	"github.com/Freeeeeet/driver_availability/internal/repository/memory"
	"github.com/Freeeeeet/driver_availability/internal/service"
)

const shutdownTimeout = 10 * time.Second

type stores struct {
	days      service.DayStore
	templates service.TemplateStore
	users     service.UserStore
	ready     api.ReadyCheck
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting driver availability service",
		zap.String("environment", cfg.Environment),
		zap.String("storage", cfg.Storage),
		zap.Bool("env_file", cfg.EnvFileLoaded),
		zap.Bool("bot_enabled", cfg.TelegramToken != ""))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Service stopped with error", zap.Error(err))
	}
	logger.Info("Service stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	m := metrics.New(prometheus.DefaultRegisterer)

	users := service.NewUserService(st.users, logger)
	templates := service.NewTemplateService(st.templates, logger)
	availability := service.NewAvailabilityService(st.days, logger)
	applier := service.NewTemplateApplier(st.templates, st.days, m, logger)

	sessions, ready, cleanup := openSessions(ctx, cfg, logger, st.ready)
	defer cleanup()

	router := api.NewRouter(api.Deps{
		Availability: availability,
		Templates:    templates,
		Applier:      applier,
		Metrics:      m,
		Gatherer:     prometheus.DefaultGatherer,
		Ready:        ready,
		Logger:       logger.Named("http"),
		RateLimit:    api.RateLimit{
			PerSecond:  cfg.RateLimitRPS,
			Burst:      cfg.RateLimitBurst,
			TrustProxy: cfg.TrustProxy,
		},
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("HTTP API listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			return err
		}
		bc := controller.NewBotController(b, controller.Deps{
			Users:     users,
			Templates: templates,
			Days:      availability,
			Applier:   applier,
			Sessions:  sessions,
			Logger:    logger.Named("bot"),
		})
		if err := bc.RegisterHandlers(ctx); err != nil {
			logger.Warn("Bot command menu not updated", zap.Error(err))
		}
		go func() {
			if err := bc.Start(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("Component failed", zap.Error(err))
		shutdown(srv, logger)
		return err
	}

	shutdown(srv, logger)
	return nil
}

func shutdown(srv *http.Server, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown failed", zap.Error(err))
	}
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("Using in-memory storage; data is lost on restart")
		mem := memory.NewStore()
		return &stores{
			days:      mem.Days(),
			templates: mem.Templates(),
			users:     mem.Users(),
			ready:     func(context.Context) error { return nil },
			close:     func() {},
		}, nil
	}

	pool, err := app.OpenPool(ctx, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	if err := migrate(ctx, pool, cfg.MigrationsPath, logger); err != nil {
		pool.Close()
		return nil, err
	}

	return &stores{
		days:      repository.NewAvailabilityRepository(pool),
		templates: repository.NewTemplateRepository(pool),
		users:     repository.NewUserRepository(pool),
		ready:     app.PoolReadyCheck(pool),
		close:     pool.Close,
	}, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool, path string, logger *zap.Logger) error {
	migrator, err := app.NewMigrator(pool, path, logger)
	if err != nil {
		return err
	}
	defer migrator.Close()
	return migrator.Run(ctx)
}

// openSessions picks Redis when configured and the in-memory manager otherwise.
// The returned ready check covers the storage and the session backend.
func openSessions(ctx context.Context, cfg *config.Config, logger *zap.Logger, storageReady api.ReadyCheck) (state.Store, api.ReadyCheck, func()) {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		rs := state.NewRedisStore(client, cfg.SessionTTL)
		if err := rs.Ping(ctx); err != nil {
			logger.Warn("Redis is not reachable yet", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		logger.Info("Bot sessions stored in Redis", zap.String("addr", cfg.RedisAddr))

		ready := func(ctx context.Context) error {
			if err := storageReady(ctx); err != nil {
				return err
			}
			return rs.Ping(ctx)
		}
		return rs, ready, func() { _ = client.Close() }
	}

	manager := state.NewManager()
	scheduler := app.NewScheduler(manager, cfg.SessionTTL, logger)
	scheduler.Start(ctx)
	return manager, storageReady, scheduler.Stop
}
