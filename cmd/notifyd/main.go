// Command notifyd runs the notification delivery service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/dispatchkit/pkg/api"
	"github.com/dmitrymomot/dispatchkit/pkg/auth"
	"github.com/dmitrymomot/dispatchkit/pkg/config"
	"github.com/dmitrymomot/dispatchkit/pkg/dispatch"
	"github.com/dmitrymomot/dispatchkit/pkg/httpserver"
	"github.com/dmitrymomot/dispatchkit/pkg/ledger"
	"github.com/dmitrymomot/dispatchkit/pkg/live"
	"github.com/dmitrymomot/dispatchkit/pkg/logger"
	"github.com/dmitrymomot/dispatchkit/pkg/metrics"
	mongodb "github.com/dmitrymomot/dispatchkit/pkg/mongo"
	"github.com/dmitrymomot/dispatchkit/pkg/pg"
	"github.com/dmitrymomot/dispatchkit/pkg/push"
	"github.com/dmitrymomot/dispatchkit/pkg/ratelimiter"
	"github.com/dmitrymomot/dispatchkit/pkg/redis"
	"github.com/dmitrymomot/dispatchkit/pkg/registry"
	"github.com/dmitrymomot/dispatchkit/pkg/stats"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("notifyd stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load[Config]()
	if err != nil {
		return err
	}

	logOpts := []logger.Option{
		logger.WithEnvironment(cfg.AppEnv, "notifyd"),
		logger.WithContextValue("request_id", middleware.RequestIDKey),
	}
	if cfg.LogLevel != "" {
		level, err := logger.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logOpts = append(logOpts, logger.WithLevel(level))
	}
	log := logger.New(logOpts...)
	slog.SetDefault(log)

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	var checks []httpserver.Check

	l, check, closeLedger, err := openLedger(ctx, cfg, log)
	if err != nil {
		return err
	}
	closers = append(closers, closeLedger)
	if check.Probe != nil {
		checks = append(checks, check)
	}

	tokens, check, closeTokens, err := openTokenStore(ctx, cfg)
	if err != nil {
		return err
	}
	closers = append(closers, closeTokens)
	if check.Probe != nil {
		checks = append(checks, check)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewRecorder(reg)
	if err != nil {
		return err
	}

	table := live.NewTable(
		live.WithBufferSize(cfg.LiveBufferSize),
		live.WithLogger(log.With(logger.Component("live"))),
		live.WithObserver(recorder.SetLiveConnections),
	)
	closers = append(closers, table.Close)

	recipients := registry.New(table, tokens,
		registry.WithMaxTokenAge(cfg.PushTokenMaxAge),
		registry.WithLogger(log.With(logger.Component("registry"))),
	)

	dispatcher := dispatch.New(l, recipients,
		dispatch.WithDeliverer(ledger.ChannelPush, dispatch.NewPushDeliverer(newPushProvider(cfg, log), recipients,
			dispatch.WithPushTimeout(2*cfg.PushTimeout),
		)),
		dispatch.WithDeliverer(ledger.ChannelLive, dispatch.LiveDeliverer{}),
		dispatch.WithWorkers(cfg.DispatchWorkers),
		dispatch.WithLogger(log.With(logger.Component("dispatch"))),
		dispatch.WithRecorder(recorder),
	)

	sessions, err := auth.NewService(cfg.JWTSecret, auth.WithTTL(cfg.SessionTTL), auth.WithIssuer("notifyd"))
	if err != nil {
		return err
	}

	directory, err := loadDirectory(cfg.RecipientNamesFile)
	if err != nil {
		return err
	}
	view, err := stats.NewView(l, stats.WithDirectory(directory))
	if err != nil {
		return err
	}

	limitStore := ratelimiter.NewMemoryStore()
	closers = append(closers, limitStore.Close)
	limiter, err := ratelimiter.NewBucket(limitStore, ratelimiter.Config{
		Capacity:       cfg.RateLimitBurst,
		RefillRate:     cfg.RateLimitPerSecond,
		RefillInterval: time.Second,
	})
	if err != nil {
		return err
	}

	handler := api.New(dispatcher, l, recipients, sessions,
		api.WithStats(view),
		api.WithLogger(log.With(logger.Component("api"))),
		api.WithReadinessChecks(checks...),
		api.WithMetricsHandler(metrics.Handler(reg)),
		api.WithInternalToken(cfg.InternalToken),
		api.WithRecipientRateLimit(limiter),
	).Routes()

	httpCfg, err := config.Load[httpserver.Config]()
	if err != nil {
		return err
	}
	srv := httpserver.NewFromConfig(httpCfg,
		httpserver.WithLogger(log.With(logger.Component("http"))),
		httpserver.WithOnShutdown(table.Close),
	)

	log.InfoContext(ctx, "starting notifyd",
		slog.String("ledger", cfg.LedgerBackend),
		slog.String("push_tokens", cfg.PushTokenBackend),
		slog.Int("workers", cfg.DispatchWorkers),
	)
	return srv.Run(ctx, handler)
}

func openLedger(ctx context.Context, cfg Config, log *slog.Logger) (ledger.Ledger, httpserver.Check, func(), error) {
	switch cfg.LedgerBackend {
	case BackendMemory:
		return ledger.NewMemoryLedger(), httpserver.Check{}, func() {}, nil

	case BackendPostgres:
		pgCfg, err := config.Load[pg.Config]()
		if err != nil {
			return nil, httpserver.Check{}, nil, err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return nil, httpserver.Check{}, nil, err
		}
		if err := pg.Migrate(ctx, pool, ledger.Migrations, ledger.MigrationsDir, pgCfg, log); err != nil {
			pool.Close()
			return nil, httpserver.Check{}, nil, err
		}
		check := httpserver.Check{Name: "postgres", Probe: pg.Healthcheck(pool)}
		return ledger.NewPostgresLedger(pool), check, pool.Close, nil

	case BackendMongo:
		mongoCfg, err := config.Load[mongodb.Config]()
		if err != nil {
			return nil, httpserver.Check{}, nil, err
		}
		db, err := mongodb.Database(ctx, mongoCfg)
		if err != nil {
			return nil, httpserver.Check{}, nil, err
		}
		disconnect := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = db.Client().Disconnect(ctx)
		}
		l, err := ledger.NewMongoLedger(ctx, db, mongoCfg.Collection)
		if err != nil {
			disconnect()
			return nil, httpserver.Check{}, nil, err
		}
		check := httpserver.Check{Name: "mongo", Probe: mongodb.Healthcheck(db.Client())}
		return l, check, disconnect, nil
	}
	return nil, httpserver.Check{}, nil, fmt.Errorf("unknown LEDGER_BACKEND %q", cfg.LedgerBackend)
}

func openTokenStore(ctx context.Context, cfg Config) (push.TokenStore, httpserver.Check, func(), error) {
	switch cfg.PushTokenBackend {
	case BackendMemory:
		return push.NewMemoryTokenStore(), httpserver.Check{}, func() {}, nil

	case BackendRedis:
		redisCfg, err := config.Load[redis.Config]()
		if err != nil {
			return nil, httpserver.Check{}, nil, err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return nil, httpserver.Check{}, nil, err
		}
		check := httpserver.Check{Name: "redis", Probe: redis.Healthcheck(client)}
		return push.NewRedisTokenStore(client), check, func() { _ = client.Close() }, nil
	}
	return nil, httpserver.Check{}, nil, fmt.Errorf("unknown PUSH_TOKEN_BACKEND %q", cfg.PushTokenBackend)
}

func newPushProvider(cfg Config, log *slog.Logger) push.Provider {
	if cfg.PushProviderURL == "" {
		log.Warn("PUSH_PROVIDER_URL is empty, push delivery disabled")
		return push.DisabledProvider{}
	}
	return push.NewHTTPProvider(cfg.PushProviderURL,
		push.WithAPIKey(cfg.PushProviderKey),
		push.WithTimeout(cfg.PushTimeout),
		push.WithHTTPLogger(log.With(logger.Component("push"))),
	)
}

// loadDirectory reads a YAML map of recipient id to display name.
func loadDirectory(path string) (*stats.MemoryDirectory, error) {
	if path == "" {
		return stats.NewMemoryDirectory(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipient names: %w", err)
	}
	names := map[string]string{}
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, errors.Join(fmt.Errorf("parse recipient names %s", path), err)
	}
	return stats.NewMemoryDirectory(names), nil
}
