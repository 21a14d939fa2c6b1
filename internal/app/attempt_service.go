package app

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"quiz-attempt-service/internal/domain"
)

// AttemptRepository abstracts how in-flight attempts are stored.
type AttemptRepository interface {
	Put(key string, attempt *Attempt)
	Get(key string) (*Attempt, bool)
	Delete(key string)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// AnswerSubmitter delivers one graded answer to the answer sink (database,
// external quiz service). Called once per answer, on finalization only.
type AnswerSubmitter interface {
	SubmitAnswer(ctx context.Context, record domain.AnswerRecord) error
}

// CacheInvalidator signals that attempt-derived data for a quiz/user is
// stale. Failures are logged, never surfaced: invalidation is fire-and-forget.
type CacheInvalidator interface {
	InvalidateAttempt(ctx context.Context, quizID, userID string) error
}

// ResultStore persists finished attempt results for later reads
// (dashboards, history). Optional; best-effort on submit.
type ResultStore interface {
	SaveResult(ctx context.Context, result domain.AttemptResult) error
}

// AttemptService contains the quiz-taking use cases: start an attempt,
// record answers, navigate, and finalize.
type AttemptService struct {
	attempts    AttemptRepository
	quizzes     QuizRepository
	submitter   AnswerSubmitter
	invalidator CacheInvalidator
	results     ResultStore
	now         func() time.Time
}

// Option configures an AttemptService.
type Option func(*AttemptService)

// WithClock overrides the service clock for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *AttemptService) { s.now = now }
}

// WithResultStore enables persistence of finished results.
func WithResultStore(store ResultStore) Option {
	return func(s *AttemptService) { s.results = store }
}

func NewAttemptService(attempts AttemptRepository, quizzes QuizRepository, submitter AnswerSubmitter, invalidator CacheInvalidator, opts ...Option) *AttemptService {
	s := &AttemptService{
		attempts:    attempts,
		quizzes:     quizzes,
		submitter:   submitter,
		invalidator: invalidator,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func attemptKey(quizID, userID string) string {
	return quizID + "/" + userID
}

// Start loads the quiz and creates (or resumes) the user's attempt. A quiz
// that loads with zero questions is unusable and reported as such.
func (s *AttemptService) Start(ctx context.Context, quizID, userID string) (*Attempt, error) {
	if attempt, ok := s.attempts.Get(attemptKey(quizID, userID)); ok {
		return attempt, nil
	}

	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if len(quiz.Questions) == 0 {
		return nil, domain.ErrNoQuestions
	}

	attempt := newAttempt(quiz, userID, s.now)
	s.attempts.Put(attemptKey(quizID, userID), attempt)
	return attempt, nil
}

// Get returns the user's in-flight attempt.
func (s *AttemptService) Get(quizID, userID string) (*Attempt, error) {
	attempt, ok := s.attempts.Get(attemptKey(quizID, userID))
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

// Abandon discards an attempt without submitting it.
func (s *AttemptService) Abandon(quizID, userID string) {
	s.attempts.Delete(attemptKey(quizID, userID))
}

// Submit finalizes the attempt exactly once. All recorded answers are sent
// to the answer sink concurrently and the pipeline waits for the whole
// batch: if any single submission fails the operation fails as a whole, the
// attempt stays open with every answer intact, and the user may retry. Only
// on full success are caches invalidated and the immutable result built.
func (s *AttemptService) Submit(ctx context.Context, quizID, userID string) (domain.AttemptResult, error) {
	attempt, ok := s.attempts.Get(attemptKey(quizID, userID))
	if !ok {
		return domain.AttemptResult{}, domain.ErrAttemptNotFound
	}

	if err := attempt.beginSubmit(); err != nil {
		return domain.AttemptResult{}, err
	}

	answers := attempt.snapshotAnswers()
	g, gctx := errgroup.WithContext(ctx)
	for _, answer := range answers {
		answer := answer
		g.Go(func() error {
			return s.submitter.SubmitAnswer(gctx, domain.AnswerRecord{
				QuizID:     quizID,
				UserID:     userID,
				UserAnswer: answer,
			})
		})
	}
	if err := g.Wait(); err != nil {
		attempt.failSubmit()
		return domain.AttemptResult{}, err
	}

	result := attempt.complete()

	if s.results != nil {
		if err := s.results.SaveResult(ctx, result); err != nil {
			log.Printf("save result for quiz %s user %s: %v", quizID, userID, err)
		}
	}
	if err := s.invalidator.InvalidateAttempt(ctx, quizID, userID); err != nil {
		log.Printf("invalidate caches for quiz %s user %s: %v", quizID, userID, err)
	}
	return result, nil
}
