package domain

import "time"

// Option represents a possible answer for a question. Correct is only
// consulted server-side for grading and must never be sent to clients
// before they answer.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question models a quiz question. Multiple-choice questions carry their
// options; free-text questions are graded against the option flagged correct.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
}

// Quiz is an ordered collection of questions.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// UserAnswer is one recorded response. Exactly one of OptionID / Text is
// populated; Correct is decided once when the answer is recorded and never
// recomputed.
type UserAnswer struct {
	QuestionID       string `json:"questionId"`
	OptionID         string `json:"optionId,omitempty"`
	Text             string `json:"text,omitempty"`
	Correct          bool   `json:"correct"`
	TimeTakenSeconds int    `json:"timeTakenSeconds"`
}

// AnswerRecord is the per-answer submission payload sent to the answer sink
// when an attempt is finalized.
type AnswerRecord struct {
	QuizID string `json:"quizId"`
	UserID string `json:"userId"`
	UserAnswer
}

// AttemptResult is the immutable outcome of a finished attempt.
type AttemptResult struct {
	QuizID           string       `json:"quizId"`
	UserID           string       `json:"userId"`
	Score            int          `json:"score"` // 0-100, rounded
	CorrectAnswers   int          `json:"correctAnswers"`
	TotalQuestions   int          `json:"totalQuestions"`
	TimeTaken        string       `json:"timeTaken"` // m:ss
	TimeTakenSeconds int          `json:"timeTakenSeconds"`
	Answers          []UserAnswer `json:"answers"`
	CompletedAt      time.Time    `json:"completedAt"`
}

// QuestionStatus is a display-only view of a question slot, used by the
// jump-to-question strip.
type QuestionStatus struct {
	Index    int  `json:"index"`
	Answered bool `json:"answered"`
	Current  bool `json:"current"`
}
