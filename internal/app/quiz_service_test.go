package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"artquiz-service/internal/app"
	"artquiz-service/internal/catalog"
	"artquiz-service/internal/domain"
	"artquiz-service/internal/infra/memory"
)

func TestStartRequiresUnlockedQuiz(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	if _, err := service.Start(ctx, "periods-quiz-2"); !errors.Is(err, domain.ErrQuizLocked) {
		t.Fatalf("expected ErrQuizLocked, got %v", err)
	}
	if _, err := service.Start(ctx, "nope"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestStartWithoutCoverage(t *testing.T) {
	ctx := context.Background()
	quizzes := []domain.QuizDefinition{{
		ID:            "periods-quiz-1",
		CoversPeriods: []string{"Futurism"},
		Settings:      domain.QuizSettings{QuestionsPerSession: 5},
	}}
	progress := app.NewProgressManager(ctx, memory.NewProgressStore(), quizzes, app.ProgressOptions{})
	repo := memory.NewQuizRepository(memory.NewStaticQuizLoader(quizzes), time.Minute)
	service := app.NewQuizService(memory.NewSessionStore(), repo, catalog.New(samplePaintings()), app.NewGenerator(1), progress, nil)

	if _, err := service.Start(ctx, "periods-quiz-1"); !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestFullRunUnlocksNextQuiz(t *testing.T) {
	ctx := context.Background()
	service, sessions := newTestService(t)

	state, err := service.Start(ctx, "periods-quiz-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if state.Total != 4 {
		t.Fatalf("expected 4 questions, got %d", state.Total)
	}

	for !state.Completed {
		res, err := service.SubmitAnswer(ctx, state.SessionID, state.Question.CorrectAnswer)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if !res.Correct {
			t.Fatalf("expected correct answer")
		}
		if res.CorrectAnswer != "" {
			t.Fatalf("correct answer revealed without showExplanations")
		}
		if state, err = service.Advance(ctx, state.SessionID); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}

	if state.Completion == nil || !state.Completion.Passed || state.Completion.Unlocked != "periods-quiz-2" {
		t.Fatalf("unexpected completion %+v", state.Completion)
	}
	if sessions.Len() != 0 {
		t.Fatalf("completed session should be dropped")
	}
	if _, err := service.State(ctx, state.SessionID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	quizzes, err := service.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !quizzes[0].Completed || quizzes[0].LastScore == nil || *quizzes[0].LastScore != 4 {
		t.Fatalf("expected first quiz completed with score 4: %+v", quizzes[0])
	}
	if !quizzes[1].Unlocked {
		t.Fatalf("expected second quiz unlocked")
	}
}

func TestAbandonLeavesProgressUntouched(t *testing.T) {
	ctx := context.Background()
	service, sessions := newTestService(t)

	state, err := service.Start(ctx, "periods-quiz-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	service.Abandon(ctx, state.SessionID)
	if sessions.Len() != 0 {
		t.Fatalf("expected session dropped")
	}
	if service.Progress().IsCompleted("periods-quiz-1") {
		t.Fatalf("abandoned run must not complete the quiz")
	}
	if _, err := service.SubmitAnswer(ctx, state.SessionID, "x"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestGenerateIgnoresLocks(t *testing.T) {
	service, _ := newTestService(t)
	questions, err := service.Generate(context.Background(), "periods-quiz-2")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(questions) == 0 {
		t.Fatalf("expected questions for locked quiz preview")
	}
}

func TestReloadedDefinitionsDriveUnlocks(t *testing.T) {
	ctx := context.Background()
	first := domain.QuizDefinition{
		ID:            "periods-quiz-1",
		CoversPeriods: []string{"Renaissance", "Baroque"},
		Settings:      domain.QuizSettings{QuestionsPerSession: 2},
	}
	loader := &swappableLoader{quizzes: []domain.QuizDefinition{first}}
	progress := app.NewProgressManager(ctx, memory.NewProgressStore(), loader.quizzes, app.ProgressOptions{})
	// zero TTL reloads on every call
	repo := memory.NewQuizRepository(loader, 0)
	service := app.NewQuizService(memory.NewSessionStore(), repo, catalog.New(samplePaintings()), app.NewGenerator(5), progress, nil)

	loader.set([]domain.QuizDefinition{first, {
		ID:            "impressionists",
		CoversPeriods: []string{"Impressionism", "Post-Impressionism"},
		Settings:      domain.QuizSettings{QuestionsPerSession: 4, MinimumCorrectToPass: 1},
	}})

	quizzes, err := service.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quizzes) != 2 || quizzes[1].PassThreshold != 0.25 {
		t.Fatalf("expected imported quiz with its own threshold, got %+v", quizzes)
	}

	state, err := service.Start(ctx, "periods-quiz-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for !state.Completed {
		if _, err := service.SubmitAnswer(ctx, state.SessionID, state.Question.CorrectAnswer); err != nil {
			t.Fatalf("submit: %v", err)
		}
		if state, err = service.Advance(ctx, state.SessionID); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	if state.Completion == nil || state.Completion.Unlocked != "impressionists" {
		t.Fatalf("expected imported successor unlocked, got %+v", state.Completion)
	}
}

type swappableLoader struct {
	mu      sync.Mutex
	quizzes []domain.QuizDefinition
}

func (l *swappableLoader) set(quizzes []domain.QuizDefinition) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.quizzes = quizzes
}

func (l *swappableLoader) LoadQuizzes(context.Context) ([]domain.QuizDefinition, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.QuizDefinition(nil), l.quizzes...), nil
}

func newTestService(t *testing.T) (*app.QuizService, *memory.SessionStore) {
	t.Helper()
	ctx := context.Background()
	quizzes := []domain.QuizDefinition{
		{
			ID:            "periods-quiz-1",
			Title:         "Renaissance and Baroque",
			CoversPeriods: []string{"Renaissance", "Baroque"},
			Settings:      domain.QuizSettings{QuestionsPerSession: 4, MinimumCorrectToPass: 3},
		},
		{
			ID:            "periods-quiz-2",
			Title:         "Impressionism",
			CoversPeriods: []string{"Impressionism", "Post-Impressionism"},
			Settings:      domain.QuizSettings{QuestionsPerSession: 4},
		},
	}
	sessions := memory.NewSessionStore()
	progress := app.NewProgressManager(ctx, memory.NewProgressStore(), quizzes, app.ProgressOptions{})
	repo := memory.NewQuizRepository(memory.NewStaticQuizLoader(quizzes), 5*time.Minute)
	return app.NewQuizService(sessions, repo, catalog.New(samplePaintings()), app.NewGenerator(11), progress, nil), sessions
}

func samplePaintings() []domain.Painting {
	return []domain.Painting{
		{ID: "mona-lisa", Title: "Mona Lisa", Artist: "Leonardo da Vinci", Year: 1503, Period: domain.PeriodRenaissance},
		{ID: "birth-of-venus", Title: "The Birth of Venus", Artist: "Sandro Botticelli", Year: 1485, Period: domain.PeriodRenaissance},
		{ID: "school-of-athens", Title: "The School of Athens", Artist: "Raphael", Year: 1511, Period: domain.PeriodRenaissance},
		{ID: "night-watch", Title: "The Night Watch", Artist: "Rembrandt", Year: 1642, Period: domain.PeriodBaroque},
		{ID: "las-meninas", Title: "Las Meninas", Artist: "Diego Velázquez", Year: 1656, Period: domain.PeriodBaroque},
		{ID: "girl-pearl-earring", Title: "Girl with a Pearl Earring", Artist: "Johannes Vermeer", Year: 1665, Period: domain.PeriodBaroque},
		{ID: "impression-sunrise", Title: "Impression, Sunrise", Artist: "Claude Monet", Year: 1872, Period: domain.PeriodImpressionism},
		{ID: "starry-night", Title: "The Starry Night", Artist: "Vincent van Gogh", Year: 1889, Period: domain.PeriodPostImpressionism},
	}
}
