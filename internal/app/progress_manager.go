package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"artquiz-service/internal/domain"
	"go.uber.org/zap"
)

const (
	// DefaultProgressKey is the store key of the single progress record.
	DefaultProgressKey = "quiz_progress"
	// DefaultFirstQuizID is unlocked on first run when the definition list is empty.
	DefaultFirstQuizID = "periods-quiz-1"
	// DefaultPassThreshold applies to quizzes without a minimumCorrectToPass setting.
	DefaultPassThreshold = 0.8
)

// ProgressStore is the key/value persistence behind the progress record.
// Get returns domain.ErrProgressNotFound when the key was never written.
type ProgressStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// ProgressOptions tune a ProgressManager. Zero values select the defaults above.
type ProgressOptions struct {
	Key           string
	FirstQuizID   string
	PassThreshold float64
	Logger        *zap.Logger
}

// Completion is the outcome of finalizing one quiz run.
type Completion struct {
	QuizID     string  `json:"quizId"`
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
	Unlocked   string  `json:"unlocked,omitempty"`
}

// ProgressManager is the single writer of the progress record.
type ProgressManager struct {
	store            ProgressStore
	key              string
	firstQuizID      string
	defaultThreshold float64
	logger           *zap.Logger

	mu          sync.Mutex
	index       *domain.QuizIndex
	quizzes     map[string]domain.QuizDefinition
	progress    domain.QuizProgress
	subscribers map[chan domain.QuizProgress]struct{}
}

// NewProgressManager loads the stored record. Load failures never abort startup: they are
// logged and the default record is used instead.
func NewProgressManager(ctx context.Context, store ProgressStore, quizzes []domain.QuizDefinition, opts ProgressOptions) *ProgressManager {
	m := &ProgressManager{
		store:            store,
		key:              opts.Key,
		firstQuizID:      opts.FirstQuizID,
		defaultThreshold: opts.PassThreshold,
		logger:           opts.Logger,
		subscribers:      make(map[chan domain.QuizProgress]struct{}),
	}
	if m.key == "" {
		m.key = DefaultProgressKey
	}
	m.SetQuizzes(quizzes)
	if m.firstQuizID == "" {
		if first, ok := m.index.First(); ok {
			m.firstQuizID = first
		} else {
			m.firstQuizID = DefaultFirstQuizID
		}
	}
	if m.defaultThreshold <= 0 {
		m.defaultThreshold = DefaultPassThreshold
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	m.progress = m.load(ctx)
	return m
}

// SetQuizzes replaces the definition list that drives successor lookup and per-quiz thresholds.
// The first quiz of a fresh record stays the one chosen at construction.
func (m *ProgressManager) SetQuizzes(quizzes []domain.QuizDefinition) {
	byID := make(map[string]domain.QuizDefinition, len(quizzes))
	for _, q := range quizzes {
		if _, ok := byID[q.ID]; !ok {
			byID[q.ID] = q
		}
	}
	index := domain.NewQuizIndex(quizzes)

	m.mu.Lock()
	m.index = index
	m.quizzes = byID
	m.mu.Unlock()
}

func (m *ProgressManager) load(ctx context.Context) domain.QuizProgress {
	data, err := m.store.Get(ctx, m.key)
	if err != nil {
		if errors.Is(err, domain.ErrProgressNotFound) {
			m.logger.Info("no saved progress, starting fresh", zap.String("key", m.key))
		} else {
			m.logger.Warn("failed to read progress, using defaults", zap.String("key", m.key), zap.Error(err))
		}
		return domain.NewQuizProgress(m.firstQuizID)
	}
	progress, err := domain.DecodeProgress(data)
	if err != nil {
		m.logger.Warn("malformed progress record, using defaults", zap.String("key", m.key), zap.Error(err))
		return domain.NewQuizProgress(m.firstQuizID)
	}
	return progress
}

// FirstQuizID is the quiz unlocked on a fresh or reset record.
func (m *ProgressManager) FirstQuizID() string { return m.firstQuizID }

// PassThreshold returns the fraction needed to pass quizID.
func (m *ProgressManager) PassThreshold(quizID string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.passThresholdLocked(quizID)
}

func (m *ProgressManager) passThresholdLocked(quizID string) float64 {
	if q, ok := m.quizzes[quizID]; ok {
		return q.PassThreshold(m.defaultThreshold)
	}
	return m.defaultThreshold
}

// CompleteQuiz records a finished run and unlocks the next quiz on a pass. The in-memory record
// keeps the update even if persisting it fails; the save error is returned.
func (m *ProgressManager) CompleteQuiz(ctx context.Context, quizID string, score, total int) (Completion, error) {
	if total < 0 {
		total = 0
	}
	score = min(max(score, 0), total)

	m.mu.Lock()
	defer m.mu.Unlock()

	c := Completion{QuizID: quizID, Score: score, Total: total}
	if total > 0 {
		ratio := float64(score) / float64(total)
		c.Percentage = ratio * 100
		// tolerate float noise from settings-derived thresholds like 8/10
		c.Passed = ratio+1e-9 >= m.passThresholdLocked(quizID)
	}

	next := m.progress.Clone()
	next.RecordCompletion(quizID, score)
	if c.Passed {
		if successor, ok := m.index.Successor(quizID); ok {
			next.Unlock(successor)
			c.Unlocked = successor
		} else {
			m.logger.Warn("no successor for quiz, skipping unlock", zap.String("quiz_id", quizID))
		}
	}
	m.progress = next
	m.logger.Info("quiz completed",
		zap.String("quiz_id", quizID),
		zap.Int("score", score),
		zap.Int("total", total),
		zap.Bool("passed", c.Passed),
		zap.String("unlocked", c.Unlocked),
	)
	m.broadcastLocked()

	if err := m.saveLocked(ctx); err != nil {
		return c, fmt.Errorf("save progress: %w", err)
	}
	return c, nil
}

// Reset restores the first-run record and persists it.
func (m *ProgressManager) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = domain.NewQuizProgress(m.firstQuizID)
	m.broadcastLocked()
	if err := m.saveLocked(ctx); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (m *ProgressManager) IsUnlocked(quizID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress.IsUnlocked(quizID)
}

func (m *ProgressManager) IsCompleted(quizID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress.IsCompleted(quizID)
}

// Score returns the last recorded score for quizID.
func (m *ProgressManager) Score(quizID string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress.Score(quizID)
}

// Snapshot returns a deep copy of the current record.
func (m *ProgressManager) Snapshot() domain.QuizProgress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress.Clone()
}

// Subscribe returns a channel that receives a snapshot after every change, starting with the
// current one. The caller must invoke the returned cancel function to avoid leaks.
func (m *ProgressManager) Subscribe() (<-chan domain.QuizProgress, func()) {
	ch := make(chan domain.QuizProgress, 4)

	m.mu.Lock()
	m.subscribers[ch] = struct{}{}
	ch <- m.progress.Clone()
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		if _, ok := m.subscribers[ch]; ok {
			delete(m.subscribers, ch)
			close(ch)
		}
		m.mu.Unlock()
	}
	return ch, cancel
}

func (m *ProgressManager) broadcastLocked() {
	for ch := range m.subscribers {
		snapshot := m.progress.Clone()
		select {
		case ch <- snapshot:
		default:
			// subscriber is behind: drop its oldest snapshot, latest wins
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

func (m *ProgressManager) saveLocked(ctx context.Context) error {
	data, err := domain.EncodeProgress(m.progress)
	if err != nil {
		return err
	}
	return m.store.Put(ctx, m.key, data)
}
