package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"artquiz-service/internal/domain"
	"artquiz-service/internal/infra/memory"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const definitionsKey = "quiz:definitions"

// QuizRepository caches the ordered definition list in Redis as one JSON document and falls back
// to a loader on a cache miss:
//
//	SET quiz:definitions {"quizzes":[...]} EX <ttl>
type QuizRepository struct {
	client *redis.Client
	loader memory.QuizLoader
	ttl    time.Duration
	logger *zap.Logger
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader memory.QuizLoader, ttl time.Duration, logger *zap.Logger) *QuizRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		logger: logger,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) ListQuizzes(ctx context.Context) ([]domain.QuizDefinition, error) {
	if quizzes, ok := r.cached(ctx); ok {
		return quizzes, nil
	}

	result, err, _ := r.sf.Do(definitionsKey, func() (interface{}, error) {
		// another caller may have filled the cache while we waited
		if quizzes, ok := r.cached(ctx); ok {
			return quizzes, nil
		}

		quizzes, err := r.loader.LoadQuizzes(ctx)
		if err != nil {
			return nil, err
		}
		if quizzes == nil {
			quizzes = []domain.QuizDefinition{}
		}

		data, err := json.Marshal(domain.QuizDefinitions{Quizzes: quizzes})
		if err != nil {
			return nil, err
		}
		if err := r.client.Set(ctx, definitionsKey, data, r.ttlWithJitter()).Err(); err != nil {
			// the cache is an optimization; serve the loaded list anyway
			r.logger.Warn("cache quiz definitions", zap.Error(err))
		}
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuizDefinition), nil
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error) {
	quizzes, err := r.ListQuizzes(ctx)
	if err != nil {
		return domain.QuizDefinition{}, err
	}
	return memory.FindQuiz(quizzes, quizID)
}

// Invalidate drops the cached document so the next read goes to the loader.
func (r *QuizRepository) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, definitionsKey).Err()
}

func (r *QuizRepository) cached(ctx context.Context) ([]domain.QuizDefinition, bool) {
	data, err := r.client.Get(ctx, definitionsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("read cached quiz definitions", zap.Error(err))
		}
		return nil, false
	}
	var env domain.QuizDefinitions
	if err := json.Unmarshal(data, &env); err != nil {
		r.logger.Warn("malformed cached quiz definitions", zap.Error(err))
		return nil, false
	}
	if env.Quizzes == nil {
		env.Quizzes = []domain.QuizDefinition{}
	}
	return env.Quizzes, true
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
