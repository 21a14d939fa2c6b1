package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-attempt-service/internal/domain"
)

// AnswerStore persists graded answers and finished attempt results. It
// implements both app.AnswerSubmitter and app.ResultStore.
type AnswerStore struct {
	pool *pgxpool.Pool
}

func NewAnswerStore(pool *pgxpool.Pool) *AnswerStore {
	return &AnswerStore{pool: pool}
}

// SubmitAnswer upserts one answer row. The pipeline may retry a whole batch
// after a partial failure, so a replayed answer simply overwrites itself.
func (s *AnswerStore) SubmitAnswer(ctx context.Context, record domain.AnswerRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO attempt_answers (quiz_id, user_id, question_id, option_id, text_answer, is_correct, time_taken_seconds)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)
		ON CONFLICT (quiz_id, user_id, question_id) DO UPDATE SET
			option_id = EXCLUDED.option_id,
			text_answer = EXCLUDED.text_answer,
			is_correct = EXCLUDED.is_correct,
			time_taken_seconds = EXCLUDED.time_taken_seconds`,
		record.QuizID, record.UserID, record.QuestionID,
		record.OptionID, record.Text, record.Correct, record.TimeTakenSeconds,
	)
	if err != nil {
		return fmt.Errorf("submit answer %s: %w", record.QuestionID, err)
	}
	return nil
}

// SaveResult appends one finished attempt. The answer snapshot rides along
// as JSONB so past attempts can be replayed without joining on answers.
func (s *AnswerStore) SaveResult(ctx context.Context, result domain.AttemptResult) error {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO attempt_results (quiz_id, user_id, score, correct_answers, total_questions, time_taken_seconds, answers, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)`,
		result.QuizID, result.UserID, result.Score, result.CorrectAnswers,
		result.TotalQuestions, result.TimeTakenSeconds, answers, result.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}
