package app_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func capitalsQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Capitals",
		Questions: []domain.Question{
			{
				ID:     "q1",
				Prompt: "Capital of France?",
				Options: []domain.Option{
					{ID: "o1", Text: "Lyon", Correct: false},
					{ID: "o2", Text: "Paris", Correct: true},
					{ID: "o3", Text: "Marseille", Correct: false},
				},
			},
			{
				ID:     "q2",
				Prompt: "Capital of Japan?",
				Options: []domain.Option{
					{ID: "o1", Text: "Osaka", Correct: false},
					{ID: "o2", Text: "Tokyo", Correct: true},
				},
			},
			{
				ID:     "q3",
				Prompt: "Capital of Italy?",
				Options: []domain.Option{
					{ID: "o1", Text: "Rome", Correct: true},
					{ID: "o2", Text: "Milan", Correct: false},
				},
			},
		},
	}
}

func generatedQuiz(n int) domain.Quiz {
	quiz := domain.Quiz{ID: "quiz-gen"}
	for i := 0; i < n; i++ {
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:     fmt.Sprintf("q%d", i+1),
			Prompt: fmt.Sprintf("Question %d", i+1),
			Options: []domain.Option{
				{ID: "right", Text: "Right", Correct: true},
				{ID: "wrong", Text: "Wrong", Correct: false},
			},
		})
	}
	return quiz
}

func TestRecordAnswerOption(t *testing.T) {
	attempt := app.NewAttemptWithClock(capitalsQuiz(), "u1", newFakeClock().Now)

	answer, err := attempt.RecordAnswer("o2", "")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !answer.Correct {
		t.Fatalf("expected correct option to grade true")
	}

	answer, err = attempt.RecordAnswer("o1", "")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if answer.Correct {
		t.Fatalf("expected wrong option to grade false")
	}

	if _, err := attempt.RecordAnswer("missing", ""); err != domain.ErrOptionNotFound {
		t.Fatalf("expected ErrOptionNotFound, got %v", err)
	}
}

func TestRecordAnswerText(t *testing.T) {
	attempt := app.NewAttemptWithClock(capitalsQuiz(), "u1", newFakeClock().Now)

	for _, text := range []string{"paris", "PARIS", "Paris"} {
		answer, err := attempt.RecordAnswer("", text)
		if err != nil {
			t.Fatalf("record %q: %v", text, err)
		}
		if !answer.Correct {
			t.Fatalf("expected %q to match ignoring case", text)
		}
	}

	answer, err := attempt.RecordAnswer("", "pariss")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if answer.Correct {
		t.Fatalf("expected near-miss text to grade false")
	}
}

func TestRecordAnswerBlank(t *testing.T) {
	attempt := app.NewAttemptWithClock(capitalsQuiz(), "u1", newFakeClock().Now)
	if _, err := attempt.RecordAnswer("", ""); err != domain.ErrBlankAnswer {
		t.Fatalf("expected ErrBlankAnswer, got %v", err)
	}
	if len(attempt.Answers()) != 0 {
		t.Fatalf("blank answer must not be stored")
	}
}

func TestRecordAnswerOverwrites(t *testing.T) {
	attempt := app.NewAttemptWithClock(capitalsQuiz(), "u1", newFakeClock().Now)

	if _, err := attempt.RecordAnswer("o1", ""); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := attempt.RecordAnswer("o2", ""); err != nil {
		t.Fatalf("record: %v", err)
	}

	answers := attempt.Answers()
	if len(answers) != 1 {
		t.Fatalf("expected one answer per question, got %d", len(answers))
	}
	if answers[0].OptionID != "o2" || !answers[0].Correct {
		t.Fatalf("expected latest answer to win, got %+v", answers[0])
	}
}

func TestAdvanceGating(t *testing.T) {
	attempt := app.NewAttemptWithClock(capitalsQuiz(), "u1", newFakeClock().Now)

	if err := attempt.Advance(); err != domain.ErrUnanswered {
		t.Fatalf("expected ErrUnanswered, got %v", err)
	}
	if attempt.CurrentIndex() != 0 {
		t.Fatalf("index must not move past an unanswered question")
	}

	if _, err := attempt.RecordAnswer("o2", ""); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := attempt.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if attempt.CurrentIndex() != 1 {
		t.Fatalf("expected index 1, got %d", attempt.CurrentIndex())
	}
}

func TestAdvanceStopsAtLastQuestion(t *testing.T) {
	attempt := app.NewAttemptWithClock(capitalsQuiz(), "u1", newFakeClock().Now)

	for i := 0; i < 2; i++ {
		if _, err := attempt.RecordAnswer("o1", ""); err != nil {
			t.Fatalf("record: %v", err)
		}
		if err := attempt.Advance(); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	if _, err := attempt.RecordAnswer("o1", ""); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := attempt.Advance(); err != domain.ErrLastQuestion {
		t.Fatalf("expected ErrLastQuestion, got %v", err)
	}
	if attempt.CurrentIndex() != 2 {
		t.Fatalf("index must stay on last question, got %d", attempt.CurrentIndex())
	}
}

func TestRetreatKeepsAnswersAndBounds(t *testing.T) {
	attempt := app.NewAttemptWithClock(capitalsQuiz(), "u1", newFakeClock().Now)

	attempt.Retreat()
	if attempt.CurrentIndex() != 0 {
		t.Fatalf("retreat at first question must not move, got %d", attempt.CurrentIndex())
	}

	if _, err := attempt.RecordAnswer("o2", ""); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := attempt.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	attempt.Retreat()
	if attempt.CurrentIndex() != 0 {
		t.Fatalf("expected index 0 after retreat, got %d", attempt.CurrentIndex())
	}
	if len(attempt.Answers()) != 1 {
		t.Fatalf("retreat must not clear recorded answers")
	}
	if !attempt.HasAnsweredCurrent() {
		t.Fatalf("revisited question should still count as answered")
	}
}

func TestJumpWindow(t *testing.T) {
	clock := newFakeClock()
	attempt := app.NewAttemptWithClock(generatedQuiz(12), "u1", clock.Now)

	for i := 0; i < 7; i++ {
		if _, err := attempt.RecordAnswer("right", ""); err != nil {
			t.Fatalf("record: %v", err)
		}
		if err := attempt.Advance(); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}

	window := attempt.JumpWindow()
	if len(window) != 5 {
		t.Fatalf("expected window of 5, got %d", len(window))
	}
	if window[0].Index != 5 || window[4].Index != 9 {
		t.Fatalf("expected window 5..9 for index 7, got %d..%d", window[0].Index, window[4].Index)
	}
	for _, slot := range window {
		wantCurrent := slot.Index == 7
		wantAnswered := slot.Index <= 6
		if slot.Current != wantCurrent || slot.Answered != wantAnswered {
			t.Fatalf("unexpected slot state %+v", slot)
		}
	}

	// Last window is truncated at the question count.
	for i := 7; i < 11; i++ {
		_, _ = attempt.RecordAnswer("right", "")
		_ = attempt.Advance()
	}
	window = attempt.JumpWindow()
	if len(window) != 2 || window[0].Index != 10 || window[1].Index != 11 {
		t.Fatalf("expected truncated window 10..11, got %+v", window)
	}
}

func TestElapsedFormattingAndMonotonicity(t *testing.T) {
	clock := newFakeClock()
	attempt := app.NewAttemptWithClock(capitalsQuiz(), "u1", clock.Now)

	if got := attempt.ElapsedTotal(); got != "0:00" {
		t.Fatalf("expected 0:00 at start, got %s", got)
	}

	prev := attempt.ElapsedSeconds()
	for i := 0; i < 70; i++ {
		clock.Advance(time.Second)
		cur := attempt.ElapsedSeconds()
		if cur < prev {
			t.Fatalf("elapsed went backwards: %d -> %d", prev, cur)
		}
		prev = cur
	}
	if got := attempt.ElapsedTotal(); got != "1:10" {
		t.Fatalf("expected 1:10 after 70s, got %s", got)
	}
}

func TestPerQuestionTiming(t *testing.T) {
	clock := newFakeClock()
	attempt := app.NewAttemptWithClock(capitalsQuiz(), "u1", clock.Now)

	clock.Advance(4 * time.Second)
	answer, err := attempt.RecordAnswer("o2", "")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if answer.TimeTakenSeconds != 4 {
		t.Fatalf("expected 4s on q1, got %d", answer.TimeTakenSeconds)
	}

	// The per-question timer restarts when the index changes.
	if err := attempt.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	clock.Advance(2 * time.Second)
	answer, err = attempt.RecordAnswer("o2", "")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if answer.TimeTakenSeconds != 2 {
		t.Fatalf("expected 2s on q2, got %d", answer.TimeTakenSeconds)
	}
}

func TestProgressPercent(t *testing.T) {
	attempt := app.NewAttemptWithClock(capitalsQuiz(), "u1", newFakeClock().Now)

	if got := attempt.ProgressPercent(); got != 33 {
		t.Fatalf("expected 33 on first of three, got %d", got)
	}
	_, _ = attempt.RecordAnswer("o2", "")
	_ = attempt.Advance()
	if got := attempt.ProgressPercent(); got != 67 {
		t.Fatalf("expected 67 on second of three, got %d", got)
	}
	_, _ = attempt.RecordAnswer("o2", "")
	_ = attempt.Advance()
	if got := attempt.ProgressPercent(); got != 100 {
		t.Fatalf("expected 100 on last, got %d", got)
	}
}
