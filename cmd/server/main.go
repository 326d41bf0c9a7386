// Command server runs the inkpad backend: the notes API and the protected
// AI-query pipeline behind the origin, rate-limit and session guards.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	aihandler "inkpad/internal/ai/handler"
	"inkpad/internal/ai/llm"
	aimetrics "inkpad/internal/ai/metrics"
	aiservice "inkpad/internal/ai/service"
	authmiddleware "inkpad/internal/auth/middleware"
	"inkpad/internal/auth/provider"
	authservice "inkpad/internal/auth/service"
	noteshandler "inkpad/internal/notes/handler"
	notesports "inkpad/internal/notes/ports"
	notesservice "inkpad/internal/notes/service"
	notesstore "inkpad/internal/notes/store"
	"inkpad/internal/origin"
	"inkpad/internal/platform/config"
	"inkpad/internal/platform/httpserver"
	"inkpad/internal/platform/logger"
	platformredis "inkpad/internal/platform/redis"
	rlmetrics "inkpad/internal/ratelimit/metrics"
	rlmiddleware "inkpad/internal/ratelimit/middleware"
	rlservice "inkpad/internal/ratelimit/service"
	"inkpad/internal/ratelimit/store/bucket"
	httptransport "inkpad/internal/transport/http"
	"inkpad/pkg/platform/audit"
	"inkpad/pkg/platform/audit/publisher"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auditPub, err := newAuditPublisher(ctx, cfg.Audit, log)
	if err != nil {
		return fmt.Errorf("audit publisher: %w", err)
	}
	defer auditPub.Close()

	limiter, redisClient, err := newLimiter(cfg, log, auditPub)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	noteStore, pool, err := newNoteStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("note store: %w", err)
	}
	if pool != nil {
		defer pool.Close()
	}

	notes, err := notesservice.New(noteStore, notesservice.WithLogger(log))
	if err != nil {
		return fmt.Errorf("notes service: %w", err)
	}

	gate, err := authservice.New(newProviderFactory(cfg.Auth),
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(auditPub),
	)
	if err != nil {
		return fmt.Errorf("session gate: %w", err)
	}

	ai, err := aiservice.New(notes, limiter, llm.NewOpenAI(cfg.Model),
		aiservice.WithLogger(log),
		aiservice.WithMetrics(aimetrics.New()),
	)
	if err != nil {
		return fmt.Errorf("ai service: %w", err)
	}

	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:    log,
		Origin:    origin.NewMiddleware(origin.NewGuard(cfg.AllowedOrigins), log, auditPub),
		RateLimit: rlmiddleware.New(limiter, log),
		Auth:      authmiddleware.New(gate, cfg.Auth.AccessCookie, log),
		Locator:   notes,
		Notes:     noteshandler.New(notes, log),
		AI:        aihandler.New(ai, log),
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newAuditPublisher returns the Kafka sink when brokers are configured, the
// no-op sink otherwise.
func newAuditPublisher(ctx context.Context, cfg config.AuditConfig, log *slog.Logger) (audit.Publisher, error) {
	if len(cfg.Brokers) == 0 {
		log.Info("audit brokers not configured, events go to the log only")
		return publisher.NewNoop(), nil
	}
	return publisher.NewKafka(ctx, cfg.Brokers, cfg.Topic, log)
}

// newLimiter builds the limiter stack. With Redis configured the shared
// store is primary and the in-process window is the circuit-breaker
// fallback; without it the in-process window is the only backend.
func newLimiter(cfg config.Config, log *slog.Logger, auditPub audit.Publisher) (rlmiddleware.Acquirer, *platformredis.Client, error) {
	m := rlmetrics.New()

	memory, err := rlservice.New(bucket.NewInMemoryBucketStore(), cfg.RateLimits,
		rlservice.WithLogger(log),
		rlservice.WithMetrics(m),
		rlservice.WithAuditPublisher(auditPub),
	)
	if err != nil {
		return nil, nil, err
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if redisClient == nil {
		log.Info("redis not configured, rate limiting is process-local")
		return memory, nil, nil
	}

	primary, err := rlservice.New(bucket.NewRedis(redisClient.Client), cfg.RateLimits,
		rlservice.WithLogger(log),
		rlservice.WithMetrics(m),
		rlservice.WithAuditPublisher(auditPub),
	)
	if err != nil {
		redisClient.Close()
		return nil, nil, err
	}

	limiter := rlmiddleware.NewLimiter(primary, memory, log,
		rlmiddleware.WithLimiterMetrics(m),
		rlmiddleware.WithLimiterAuditPublisher(auditPub),
	)
	return limiter, redisClient, nil
}

// newNoteStore prefers Postgres; without a database URL notes live in
// process memory, which is enough for development.
func newNoteStore(ctx context.Context, cfg config.Config, log *slog.Logger) (notesports.NoteStore, *pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("database not configured, notes are in-memory only")
		return notesstore.NewInMemory(), nil, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	store := notesstore.NewPostgres(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool, nil
}

// newProviderFactory picks local JWT validation when the provider secret is
// available, otherwise every resolution round-trips to the provider.
func newProviderFactory(cfg config.AuthConfig) provider.Factory {
	if cfg.JWTSecret != "" {
		return func() provider.Provider { return provider.NewJWT(cfg.JWTSecret) }
	}
	return func() provider.Provider { return provider.NewGoTrue(cfg) }
}
