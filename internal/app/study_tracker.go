package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"artquiz-service/internal/domain"
	"go.uber.org/zap"
)

// DefaultStudyKey is the store key of the study record.
const DefaultStudyKey = "study_progress"

// StudyOptions tune a StudyTracker. Zero values select the defaults.
type StudyOptions struct {
	Key    string
	Logger *zap.Logger
	Now    func() time.Time
}

// StudyTracker owns the per-painting study record: favorites, learned paintings and views.
// Like ProgressManager it keeps changes in memory when a save fails and returns the error.
type StudyTracker struct {
	store  ProgressStore
	key    string
	now    func() time.Time
	logger *zap.Logger

	mu     sync.Mutex
	record domain.StudyRecord
}

func NewStudyTracker(ctx context.Context, store ProgressStore, opts StudyOptions) *StudyTracker {
	t := &StudyTracker{store: store, key: opts.Key, now: opts.Now, logger: opts.Logger}
	if t.key == "" {
		t.key = DefaultStudyKey
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	t.record = t.load(ctx)
	return t
}

func (t *StudyTracker) load(ctx context.Context) domain.StudyRecord {
	data, err := t.store.Get(ctx, t.key)
	if err != nil {
		if !errors.Is(err, domain.ErrProgressNotFound) {
			t.logger.Warn("failed to read study record, starting fresh", zap.String("key", t.key), zap.Error(err))
		}
		return domain.NewStudyRecord()
	}
	record, err := domain.DecodeStudy(data)
	if err != nil {
		t.logger.Warn("malformed study record, starting fresh", zap.String("key", t.key), zap.Error(err))
		return domain.NewStudyRecord()
	}
	return record
}

// ToggleFavorite flips the favorite flag of paintingID.
func (t *StudyTracker) ToggleFavorite(ctx context.Context, paintingID string) (domain.PaintingStudy, error) {
	return t.update(ctx, paintingID, func(r *domain.StudyRecord) { r.ToggleFavorite(paintingID) })
}

// MarkLearned adds paintingID to the learned set.
func (t *StudyTracker) MarkLearned(ctx context.Context, paintingID string) (domain.PaintingStudy, error) {
	return t.update(ctx, paintingID, func(r *domain.StudyRecord) { r.MarkLearned(paintingID) })
}

// RecordView counts one view of paintingID at the tracker's clock.
func (t *StudyTracker) RecordView(ctx context.Context, paintingID string) (domain.PaintingStudy, error) {
	at := t.now()
	return t.update(ctx, paintingID, func(r *domain.StudyRecord) { r.RecordView(paintingID, at) })
}

func (t *StudyTracker) Painting(paintingID string) domain.PaintingStudy {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.record.Painting(paintingID)
}

// Snapshot returns a deep copy of the study record.
func (t *StudyTracker) Snapshot() domain.StudyRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.record.Clone()
}

// Reset clears the study record and persists the empty one.
func (t *StudyTracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record = domain.NewStudyRecord()
	return t.saveLocked(ctx)
}

func (t *StudyTracker) update(ctx context.Context, paintingID string, apply func(*domain.StudyRecord)) (domain.PaintingStudy, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.record.Clone()
	apply(&next)
	t.record = next
	return next.Painting(paintingID), t.saveLocked(ctx)
}

func (t *StudyTracker) saveLocked(ctx context.Context) error {
	data, err := domain.EncodeStudy(t.record)
	if err != nil {
		return fmt.Errorf("encode study record: %w", err)
	}
	if err := t.store.Put(ctx, t.key, data); err != nil {
		return fmt.Errorf("save study record: %w", err)
	}
	return nil
}
