package cli

import (
	"context"
	"fmt"
	"time"

	"artquiz-service/internal/app"
	"artquiz-service/internal/catalog"
	"artquiz-service/internal/config"
	"artquiz-service/internal/infra/file"
	"artquiz-service/internal/infra/memory"
	"artquiz-service/internal/infra/postgres"
	infraredis "artquiz-service/internal/infra/redis"
	"artquiz-service/internal/logger"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// deps are the collaborators every subcommand builds the engine from.
type deps struct {
	cfg      config.Config
	logger   *zap.Logger
	redis    *redis.Client
	pool     *pgxpool.Pool
	quizzes  app.DefinitionRepository
	progress app.ProgressStore
}

func (d *deps) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
	_ = d.logger.Sync()
}

func loadDeps(ctx context.Context, configPath string) (*deps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	d := &deps{cfg: cfg, logger: log}

	if cfg.Redis.Addr != "" {
		d.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	if cfg.Postgres.URL != "" {
		d.pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
	}

	var loader memory.QuizLoader = file.NewQuizLoader(cfg.Quiz.DefinitionsPath)
	if d.pool != nil {
		loader = postgres.NewQuizLoader(d.pool)
	}
	quizTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	if d.redis != nil {
		d.quizzes = infraredis.NewQuizRepository(d.redis, loader, quizTTL, log)
	} else {
		d.quizzes = memory.NewQuizRepository(loader, quizTTL)
	}

	d.progress, err = d.progressStore()
	if err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *deps) progressStore() (app.ProgressStore, error) {
	switch backend := d.cfg.Quiz.ProgressBackend; backend {
	case "", "file":
		return file.NewProgressStore(d.cfg.Quiz.ProgressPath), nil
	case "memory":
		return memory.NewProgressStore(), nil
	case "redis":
		if d.redis == nil {
			return nil, fmt.Errorf("progress backend redis needs redis.addr")
		}
		return infraredis.NewProgressStore(d.redis), nil
	case "postgres":
		if d.pool == nil {
			return nil, fmt.Errorf("progress backend postgres needs postgres.url")
		}
		return postgres.NewProgressStore(d.pool), nil
	default:
		return nil, fmt.Errorf("unknown progress backend %q", backend)
	}
}

func (d *deps) progressManager(ctx context.Context) (*app.ProgressManager, error) {
	quizzes, err := d.quizzes.ListQuizzes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}
	return app.NewProgressManager(ctx, d.progress, quizzes, app.ProgressOptions{
		Key:           d.cfg.Quiz.ProgressKey,
		FirstQuizID:   d.cfg.Quiz.FirstQuizID,
		PassThreshold: d.cfg.Quiz.PassThreshold,
		Logger:        d.logger,
	}), nil
}

func (d *deps) studyTracker(ctx context.Context) *app.StudyTracker {
	return app.NewStudyTracker(ctx, d.progress, app.StudyOptions{
		Key:    d.cfg.Quiz.StudyKey,
		Logger: d.logger,
	})
}

func (d *deps) catalog(ctx context.Context) (*catalog.Catalog, error) {
	return file.NewCatalogLoader(d.cfg.Quiz.CatalogPath, d.logger).Load(ctx)
}

func (d *deps) sessions() app.SessionRepository {
	if d.redis != nil {
		return infraredis.NewSessionStore(d.redis, config.TTLDuration(d.cfg.Redis.TTL, 10*time.Minute))
	}
	return memory.NewSessionStore()
}
