package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"artquiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches the ordered quiz definition list from a backing store (file, Postgres).
type QuizLoader interface {
	LoadQuizzes(ctx context.Context) ([]domain.QuizDefinition, error)
}

// QuizRepository caches the definition list with TTL to avoid repeated loads.
type QuizRepository struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	cached    []domain.QuizDefinition
	expiresAt time.Time
}

func NewQuizRepository(loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) ListQuizzes(ctx context.Context) ([]domain.QuizDefinition, error) {
	now := r.clock()

	r.mu.RLock()
	if r.cached != nil && r.expiresAt.After(now) {
		out := r.cached
		r.mu.RUnlock()
		return out, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("quizzes", func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if r.cached != nil && r.expiresAt.After(now) {
			out := r.cached
			r.mu.RUnlock()
			return out, nil
		}
		r.mu.RUnlock()

		quizzes, err := r.loader.LoadQuizzes(ctx)
		if err != nil {
			return nil, err
		}
		if quizzes == nil {
			quizzes = []domain.QuizDefinition{}
		}

		r.mu.Lock()
		r.cached = quizzes
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
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
	return FindQuiz(quizzes, quizID)
}

// FindQuiz returns the definition with quizID or domain.ErrQuizNotFound.
func FindQuiz(quizzes []domain.QuizDefinition, quizID string) (domain.QuizDefinition, error) {
	for _, q := range quizzes {
		if q.ID == quizID {
			return q, nil
		}
	}
	return domain.QuizDefinition{}, domain.ErrQuizNotFound
}

// StaticQuizLoader is a loader backed by an in-memory list (useful for tests/demos).
type StaticQuizLoader struct {
	quizzes []domain.QuizDefinition
}

func NewStaticQuizLoader(quizzes []domain.QuizDefinition) *StaticQuizLoader {
	return &StaticQuizLoader{quizzes: quizzes}
}

func (l *StaticQuizLoader) LoadQuizzes(_ context.Context) ([]domain.QuizDefinition, error) {
	return append([]domain.QuizDefinition(nil), l.quizzes...), nil
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
