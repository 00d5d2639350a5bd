package app

import (
	"context"
	"sync"
	"time"

	"artquiz-service/internal/domain"
)

// CompletionFunc finalizes a session into the progress record.
type CompletionFunc func(ctx context.Context, quizID string, score, total int) (Completion, error)

// AnswerResult is the outcome of one submission.
type AnswerResult struct {
	Accepted      bool   `json:"accepted"` // false for repeat submissions on the same question
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer,omitempty"`
	Score         int    `json:"score"`
}

// SessionState is an immutable snapshot of a session.
type SessionState struct {
	SessionID  string           `json:"sessionId"`
	QuizID     string           `json:"quizId"`
	Index      int              `json:"index"`
	Total      int              `json:"total"`
	Score      int              `json:"score"`
	Answered   bool             `json:"answered"`
	Selected   string           `json:"selected,omitempty"`
	Completed  bool             `json:"completed"`
	Question   *domain.Question `json:"question,omitempty"`
	Completion *Completion      `json:"completion,omitempty"`
	StartedAt  time.Time        `json:"startedAt"`
}

// Session drives one run through generated questions.
// It moves from in-progress (index, score, answered) to completed (score, total).
type Session struct {
	id         string
	quiz       domain.QuizDefinition
	questions  []domain.Question
	onComplete CompletionFunc
	startedAt  time.Time

	mu         sync.Mutex
	index      int
	score      int
	answered   bool
	selected   string
	completed  bool
	completion *Completion
}

// NewSession starts a session over questions. onComplete may be nil.
func NewSession(id string, quiz domain.QuizDefinition, questions []domain.Question, onComplete CompletionFunc) *Session {
	return NewSessionWithClock(id, quiz, questions, onComplete, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(id string, quiz domain.QuizDefinition, questions []domain.Question, onComplete CompletionFunc, now func() time.Time) *Session {
	return &Session{
		id:         id,
		quiz:       quiz,
		questions:  questions,
		onComplete: onComplete,
		startedAt:  now(),
		completed:  len(questions) == 0,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) QuizID() string { return s.quiz.ID }

// Quiz returns the definition the session was generated from.
func (s *Session) Quiz() domain.QuizDefinition { return s.quiz }

// Submit scores answer against the current question. Only the first submission per question
// counts; later ones return Accepted=false and change nothing.
func (s *Session) Submit(answer string) (AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return AnswerResult{}, domain.ErrSessionCompleted
	}
	q := s.questions[s.index]
	if s.answered {
		return AnswerResult{
			Correct:       s.selected == q.CorrectAnswer,
			CorrectAnswer: q.CorrectAnswer,
			Score:         s.score,
		}, nil
	}

	s.answered = true
	s.selected = answer
	correct := answer == q.CorrectAnswer
	if correct {
		s.score++
	}
	return AnswerResult{
		Accepted:      true,
		Correct:       correct,
		CorrectAnswer: q.CorrectAnswer,
		Score:         s.score,
	}, nil
}

// Advance moves past an answered question. Leaving the last question completes the session and
// runs the completion callback; a callback error is returned but the session stays completed.
func (s *Session) Advance(ctx context.Context) (SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return s.stateLocked(), domain.ErrSessionCompleted
	}
	if !s.answered {
		return s.stateLocked(), domain.ErrAnswerRequired
	}

	if s.index+1 < len(s.questions) {
		s.index++
		s.answered = false
		s.selected = ""
		return s.stateLocked(), nil
	}

	s.index = len(s.questions)
	s.answered = false
	s.selected = ""
	s.completed = true
	if s.onComplete == nil {
		return s.stateLocked(), nil
	}
	c, err := s.onComplete(ctx, s.quiz.ID, s.score, len(s.questions))
	s.completion = &c
	return s.stateLocked(), err
}

// State returns a snapshot of the session.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Completed reports whether the session has been finalized.
func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

func (s *Session) stateLocked() SessionState {
	st := SessionState{
		SessionID: s.id,
		QuizID:    s.quiz.ID,
		Index:     s.index,
		Total:     len(s.questions),
		Score:     s.score,
		Answered:  s.answered,
		Selected:  s.selected,
		Completed: s.completed,
		StartedAt: s.startedAt,
	}
	if !s.completed {
		q := s.questions[s.index]
		st.Question = &q
	}
	if s.completion != nil {
		c := *s.completion
		st.Completion = &c
	}
	return st
}
