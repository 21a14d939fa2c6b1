package memory

import (
	"context"
	"sync"

	"quiz-attempt-service/internal/domain"
)

// AnswerRecorder is an in-memory answer sink, used when no database or
// external quiz service is configured. It keeps every submitted record so
// demos and tests can inspect what would have been persisted.
type AnswerRecorder struct {
	mu      sync.Mutex
	records []domain.AnswerRecord
	results []domain.AttemptResult
}

func NewAnswerRecorder() *AnswerRecorder {
	return &AnswerRecorder{}
}

func (r *AnswerRecorder) SubmitAnswer(_ context.Context, record domain.AnswerRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *AnswerRecorder) SaveResult(_ context.Context, result domain.AttemptResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
	return nil
}

// Records returns a copy of everything submitted so far.
func (r *AnswerRecorder) Records() []domain.AnswerRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AnswerRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Results returns a copy of every saved result.
func (r *AnswerRecorder) Results() []domain.AttemptResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AttemptResult, len(r.results))
	copy(out, r.results)
	return out
}

// NoopInvalidator satisfies app.CacheInvalidator when no cache layer is
// configured.
type NoopInvalidator struct{}

func (NoopInvalidator) InvalidateAttempt(context.Context, string, string) error { return nil }
