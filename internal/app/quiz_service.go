package app

import (
	"context"
	"fmt"

	"artquiz-service/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionRepository abstracts where running sessions live (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// DefinitionRepository serves quiz definitions in progression order.
type DefinitionRepository interface {
	ListQuizzes(ctx context.Context) ([]domain.QuizDefinition, error)
	GetQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error)
}

// PaintingSource is the read-only catalog the generator samples from.
type PaintingSource interface {
	Paintings() []domain.Painting
}

// QuizOverview is a quiz definition joined with the learner's progress.
type QuizOverview struct {
	domain.QuizDefinition
	Unlocked      bool    `json:"unlocked"`
	Completed     bool    `json:"completed"`
	LastScore     *int    `json:"lastScore,omitempty"`
	PassThreshold float64 `json:"passThreshold"`
}

// QuizService contains the quiz use cases.
type QuizService struct {
	sessions  SessionRepository
	quizzes   DefinitionRepository
	paintings PaintingSource
	generator *Generator
	progress  *ProgressManager
	logger    *zap.Logger
	newID     func() string
}

func NewQuizService(
	sessions SessionRepository,
	quizzes DefinitionRepository,
	paintings PaintingSource,
	generator *Generator,
	progress *ProgressManager,
	logger *zap.Logger,
) *QuizService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizService{
		sessions:  sessions,
		quizzes:   quizzes,
		paintings: paintings,
		generator: generator,
		progress:  progress,
		logger:    logger,
		newID:     uuid.NewString,
	}
}

// ListQuizzes returns every quiz in order with its lock state and last score.
func (s *QuizService) ListQuizzes(ctx context.Context) ([]QuizOverview, error) {
	defs, err := s.definitions(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := s.progress.Snapshot()
	out := make([]QuizOverview, 0, len(defs))
	for _, d := range defs {
		o := QuizOverview{
			QuizDefinition: d,
			Unlocked:       snapshot.IsUnlocked(d.ID),
			Completed:      snapshot.IsCompleted(d.ID),
			PassThreshold:  s.progress.PassThreshold(d.ID),
		}
		if score, ok := snapshot.Score(d.ID); ok {
			o.LastScore = &score
		}
		out = append(out, o)
	}
	return out, nil
}

// definitions lists the quizzes and hands them to the progress manager, so definitions reloaded
// by the repository (e.g. after an import) take effect without a restart.
func (s *QuizService) definitions(ctx context.Context) ([]domain.QuizDefinition, error) {
	defs, err := s.quizzes.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	s.progress.SetQuizzes(defs)
	return defs, nil
}

func findDefinition(defs []domain.QuizDefinition, quizID string) (domain.QuizDefinition, bool) {
	for _, d := range defs {
		if d.ID == quizID {
			return d, true
		}
	}
	return domain.QuizDefinition{}, false
}

// Generate builds a question set for quizID without starting a session or checking locks.
func (s *QuizService) Generate(ctx context.Context, quizID string) ([]domain.Question, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return s.generator.Generate(s.paintings.Paintings(), quiz), nil
}

// Start opens a session for an unlocked quiz.
func (s *QuizService) Start(ctx context.Context, quizID string) (SessionState, error) {
	defs, err := s.definitions(ctx)
	if err != nil {
		return SessionState{}, err
	}
	quiz, ok := findDefinition(defs, quizID)
	if !ok {
		return SessionState{}, domain.ErrQuizNotFound
	}
	if !s.progress.IsUnlocked(quizID) {
		return SessionState{}, domain.ErrQuizLocked
	}

	questions := s.generator.Generate(s.paintings.Paintings(), quiz)
	if len(questions) == 0 {
		s.logger.Warn("catalog does not cover quiz", zap.String("quiz_id", quizID), zap.Strings("periods", quiz.CoversPeriods))
		return SessionState{}, fmt.Errorf("%w: %s", domain.ErrNoQuestions, quizID)
	}

	session := NewSession(s.newID(), quiz, questions, s.progress.CompleteQuiz)
	s.sessions.Put(session)
	s.logger.Debug("session started",
		zap.String("session_id", session.ID()),
		zap.String("quiz_id", quizID),
		zap.Int("questions", len(questions)),
	)
	return session.State(), nil
}

// SubmitAnswer scores the first answer to the current question. The correct key is only
// revealed for quizzes that show explanations.
func (s *QuizService) SubmitAnswer(_ context.Context, sessionID, answer string) (AnswerResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return AnswerResult{}, domain.ErrSessionNotFound
	}
	res, err := session.Submit(answer)
	if err != nil {
		return AnswerResult{}, err
	}
	if !session.Quiz().Settings.ShowExplanations {
		res.CorrectAnswer = ""
	}
	return res, nil
}

// Advance moves to the next question. Completed sessions are finalized into progress and dropped.
func (s *QuizService) Advance(ctx context.Context, sessionID string) (SessionState, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return SessionState{}, domain.ErrSessionNotFound
	}
	state, err := session.Advance(ctx)
	if state.Completed {
		s.sessions.Delete(sessionID)
	}
	return state, err
}

// State returns the current snapshot of a running session.
func (s *QuizService) State(_ context.Context, sessionID string) (SessionState, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return SessionState{}, domain.ErrSessionNotFound
	}
	return session.State(), nil
}

// Abandon drops a session without touching progress.
func (s *QuizService) Abandon(_ context.Context, sessionID string) {
	s.sessions.Delete(sessionID)
}

// Progress returns a snapshot of the progress record.
func (s *QuizService) Progress() domain.QuizProgress {
	return s.progress.Snapshot()
}

// ResetProgress restores the first-run record.
func (s *QuizService) ResetProgress(ctx context.Context) error {
	return s.progress.Reset(ctx)
}

// SubscribeProgress forwards progress change notifications to the presentation layer.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) SubscribeProgress() (<-chan domain.QuizProgress, func()) {
	return s.progress.Subscribe()
}
