package main

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/vijay-veer/swasthya-sarthi/internal/config"
	"github.com/vijay-veer/swasthya-sarthi/internal/domain/agent"
	"github.com/vijay-veer/swasthya-sarthi/internal/domain/anomaly"
	"github.com/vijay-veer/swasthya-sarthi/internal/domain/crrs"
	"github.com/vijay-veer/swasthya-sarthi/internal/domain/patient"
	"github.com/vijay-veer/swasthya-sarthi/internal/platform/db"
	"github.com/vijay-veer/swasthya-sarthi/internal/platform/lock"
	"github.com/vijay-veer/swasthya-sarthi/internal/platform/notification"
)

// app holds the wired services shared by serve and run.
type app struct {
	pool          *pgxpool.Pool
	redis         *redis.Client
	scores        *crrs.Service
	agent         *agent.Service
	notifications *notification.Manager
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a := &app{pool: pool}

	var locker lock.Locker
	switch cfg.LockBackend {
	case "redis":
		client, err := lock.NewRedisClient(cfg.RedisURL)
		if err != nil {
			pool.Close()
			return nil, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			pool.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.redis = client
		locker = lock.NewRedisLocker(client, cfg.LockTTL)
	default:
		locker = lock.NewKeyedMutex()
	}

	loc, err := cfg.Location()
	if err != nil {
		a.Close()
		return nil, err
	}

	profiles := patient.NewProfileRepoPG(pool)
	users := patient.NewUserRepoPG(pool)
	scoreRepo := crrs.NewScoreRepoPG(pool)

	engine := crrs.NewEngine(
		patient.NewVitalStorePG(pool),
		patient.NewEncounterStorePG(pool),
		scoreRepo,
		locker,
		crrs.EngineConfig{
			DefaultInitialScore: cfg.DefaultInitialScore,
			TrendWindowDays:     cfg.TrendWindowDays,
			Location:            loc,
		},
		logger,
	)

	// No provider integrations yet: every channel goes to the log.
	sender := notification.NewLogSender(logger)
	a.notifications = notification.NewManager(sender, sender, sender, notification.NewTemplateEngine())
	dispatcher := notification.NewDispatcher(a.notifications, logger)

	executor := agent.NewExecutor(dispatcher, engine, nil, logger)
	a.scores = crrs.NewService(engine, profiles, scoreRepo)
	a.agent = agent.NewService(engine, anomaly.NewDetector(), executor, patient.NewResolver(profiles, users), logger)
	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	a.pool.Close()
}
