package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNoQuestions indicates a quiz loaded without any questions; an
	// attempt cannot be started on it.
	ErrNoQuestions = errors.New("quiz has no questions")
	// ErrAttemptNotFound is returned when acting on an attempt that was
	// never started (or already discarded).
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrOptionNotFound indicates a submitted option ID is invalid.
	ErrOptionNotFound = errors.New("option not found")
	// ErrBlankAnswer is returned when neither an option nor text was given.
	ErrBlankAnswer = errors.New("answer is blank")
	// ErrUnanswered blocks navigation and submission while the gating
	// question has no recorded answer.
	ErrUnanswered = errors.New("current question not answered")
	// ErrLastQuestion is returned when advancing past the final question;
	// the caller should submit instead.
	ErrLastQuestion = errors.New("already on last question")
	// ErrSubmitInProgress guards against double submission.
	ErrSubmitInProgress = errors.New("submission already in progress")
	// ErrAttemptCompleted is returned when mutating a finished attempt.
	ErrAttemptCompleted = errors.New("attempt already completed")
)
