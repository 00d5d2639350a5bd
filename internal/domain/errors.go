package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session id is unknown or expired.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuizNotFound indicates the quiz definition could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizLocked is returned when starting a quiz that has not been unlocked yet.
	ErrQuizLocked = errors.New("quiz is locked")
	// ErrNoQuestions means the catalog cannot cover the quiz's periods.
	ErrNoQuestions = errors.New("no questions available for quiz")
	// ErrAnswerRequired is returned when advancing before answering the current question.
	ErrAnswerRequired = errors.New("current question has not been answered")
	// ErrSessionCompleted is returned for actions on a finished session.
	ErrSessionCompleted = errors.New("quiz session already completed")
	// ErrUnknownPeriod is returned when a period label is not recognized.
	ErrUnknownPeriod = errors.New("unknown period")
	// ErrProgressNotFound is returned by progress stores when nothing was saved yet.
	ErrProgressNotFound = errors.New("progress not found")
)
