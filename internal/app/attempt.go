package app

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"quiz-attempt-service/internal/domain"
)

type attemptPhase int

const (
	phaseTaking attemptPhase = iota
	phaseSubmitting
	phaseCompleted
)

// jumpWindowSize is how many question slots the jump strip shows at once.
const jumpWindowSize = 5

// Attempt is the in-memory state of one user taking one quiz. It is the
// single source of truth for the attempt: the fixed question order, the
// current position, the recorded answers, and the timers. All methods are
// safe for concurrent use.
//
// Attempts are ephemeral: they live only as long as the process and are
// discarded once completed or abandoned.
type Attempt struct {
	quiz   domain.Quiz
	userID string
	now    func() time.Time

	mu                sync.Mutex
	current           int
	answers           map[string]domain.UserAnswer
	startedAt         time.Time
	questionStartedAt time.Time
	phase             attemptPhase
	result            *domain.AttemptResult
}

func newAttempt(quiz domain.Quiz, userID string, now func() time.Time) *Attempt {
	start := now()
	return &Attempt{
		quiz:              quiz,
		userID:            userID,
		now:               now,
		answers:           make(map[string]domain.UserAnswer),
		startedAt:         start,
		questionStartedAt: start,
	}
}

// NewAttemptWithClock is exported for tests that need deterministic time.
func NewAttemptWithClock(quiz domain.Quiz, userID string, now func() time.Time) *Attempt {
	return newAttempt(quiz, userID, now)
}

// Quiz returns the quiz being attempted.
func (a *Attempt) Quiz() domain.Quiz { return a.quiz }

// UserID returns the attempting user.
func (a *Attempt) UserID() string { return a.userID }

// CurrentIndex returns the zero-based position within the question list.
func (a *Attempt) CurrentIndex() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// CurrentQuestion returns the question at the current position.
func (a *Attempt) CurrentQuestion() domain.Question {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.quiz.Questions[a.current]
}

// HasAnsweredCurrent reports whether the current question has a recorded
// answer.
func (a *Attempt) HasAnsweredCurrent() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hasAnsweredLocked()
}

func (a *Attempt) hasAnsweredLocked() bool {
	_, ok := a.answers[a.quiz.Questions[a.current].ID]
	return ok
}

// ProgressPercent returns how far through the question list the user is,
// counting the current question as reached.
func (a *Attempt) ProgressPercent() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(math.Round(float64(a.current+1) / float64(len(a.quiz.Questions)) * 100))
}

// RecordAnswer grades and stores the response to the current question.
// Exactly one of optionID / text should be given; empty strings count as
// absent. Recording twice for the same question overwrites the earlier
// answer. Correctness is decided here, once, and never revisited.
func (a *Attempt) RecordAnswer(optionID, text string) (domain.UserAnswer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.mutableLocked(); err != nil {
		return domain.UserAnswer{}, err
	}
	if optionID == "" && text == "" {
		return domain.UserAnswer{}, domain.ErrBlankAnswer
	}
	// At most one of the two is kept; a selected option wins over stray text.
	if optionID != "" {
		text = ""
	}

	question := a.quiz.Questions[a.current]
	correct, err := evaluate(question, optionID, text)
	if err != nil {
		return domain.UserAnswer{}, err
	}

	answer := domain.UserAnswer{
		QuestionID:       question.ID,
		OptionID:         optionID,
		Text:             text,
		Correct:          correct,
		TimeTakenSeconds: int(a.now().Sub(a.questionStartedAt).Seconds()),
	}
	a.answers[question.ID] = answer
	return answer, nil
}

// evaluate applies the grading rule: a selected option is correct when its
// flag is set; a free-text answer is correct when it equals the correct
// option's text ignoring case. No trimming, no fuzzy matching.
func evaluate(q domain.Question, optionID, text string) (bool, error) {
	if optionID != "" {
		for _, opt := range q.Options {
			if opt.ID == optionID {
				return opt.Correct, nil
			}
		}
		return false, domain.ErrOptionNotFound
	}
	for _, opt := range q.Options {
		if opt.Correct {
			return strings.EqualFold(text, opt.Text), nil
		}
	}
	return false, nil
}

// Advance moves to the next question. It refuses to move past an unanswered
// question and refuses to move off the last one (submission takes over
// there). The per-question timer restarts on success.
func (a *Attempt) Advance() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.mutableLocked(); err != nil {
		return err
	}
	if !a.hasAnsweredLocked() {
		return domain.ErrUnanswered
	}
	if a.current == len(a.quiz.Questions)-1 {
		return domain.ErrLastQuestion
	}
	a.current++
	a.questionStartedAt = a.now()
	return nil
}

// Retreat moves back one question when possible. Going back never clears
// answers; at the first question it is a no-op.
func (a *Attempt) Retreat() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.phase != phaseTaking || a.current == 0 {
		return
	}
	a.current--
	a.questionStartedAt = a.now()
}

// JumpWindow returns the display-only strip of question statuses for the
// window of five questions containing the current index.
func (a *Attempt) JumpWindow() []domain.QuestionStatus {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := (a.current / jumpWindowSize) * jumpWindowSize
	end := start + jumpWindowSize
	if end > len(a.quiz.Questions) {
		end = len(a.quiz.Questions)
	}
	window := make([]domain.QuestionStatus, 0, end-start)
	for i := start; i < end; i++ {
		_, answered := a.answers[a.quiz.Questions[i].ID]
		window = append(window, domain.QuestionStatus{
			Index:    i,
			Answered: answered,
			Current:  i == a.current,
		})
	}
	return window
}

// ElapsedSeconds returns whole seconds since the attempt started.
func (a *Attempt) ElapsedSeconds() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(a.now().Sub(a.startedAt).Seconds())
}

// ElapsedTotal returns the running session time formatted as m:ss.
func (a *Attempt) ElapsedTotal() string {
	return formatElapsed(a.ElapsedSeconds())
}

func formatElapsed(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// Result returns the finished attempt's outcome, if any.
func (a *Attempt) Result() (domain.AttemptResult, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.result == nil {
		return domain.AttemptResult{}, false
	}
	return *a.result, true
}

func (a *Attempt) mutableLocked() error {
	switch a.phase {
	case phaseSubmitting:
		return domain.ErrSubmitInProgress
	case phaseCompleted:
		return domain.ErrAttemptCompleted
	}
	return nil
}

// beginSubmit transitions taking -> submitting. It enforces the submission
// preconditions: the user is on the last question, every question has a
// recorded answer, and no answer is blank.
func (a *Attempt) beginSubmit() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.mutableLocked(); err != nil {
		return err
	}
	if a.current != len(a.quiz.Questions)-1 || len(a.answers) != len(a.quiz.Questions) {
		return domain.ErrUnanswered
	}
	for _, answer := range a.answers {
		if answer.OptionID == "" && answer.Text == "" {
			return domain.ErrBlankAnswer
		}
	}
	a.phase = phaseSubmitting
	return nil
}

// failSubmit returns to taking after a failed submission. Answers are left
// untouched so the user can retry.
func (a *Attempt) failSubmit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.phase == phaseSubmitting {
		a.phase = phaseTaking
	}
}

// Answers returns a copy of the recorded answers in question order.
func (a *Attempt) Answers() []domain.UserAnswer {
	return a.snapshotAnswers()
}

// snapshotAnswers copies the recorded answers in question order.
func (a *Attempt) snapshotAnswers() []domain.UserAnswer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotAnswersLocked()
}

func (a *Attempt) snapshotAnswersLocked() []domain.UserAnswer {
	out := make([]domain.UserAnswer, 0, len(a.answers))
	for _, q := range a.quiz.Questions {
		if answer, ok := a.answers[q.ID]; ok {
			out = append(out, answer)
		}
	}
	return out
}

// complete computes the final result and makes the attempt terminal.
func (a *Attempt) complete() domain.AttemptResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	correct := 0
	for _, answer := range a.answers {
		if answer.Correct {
			correct++
		}
	}
	total := len(a.quiz.Questions)
	elapsed := int(a.now().Sub(a.startedAt).Seconds())

	result := domain.AttemptResult{
		QuizID:           a.quiz.ID,
		UserID:           a.userID,
		Score:            int(math.Round(float64(correct) / float64(total) * 100)),
		CorrectAnswers:   correct,
		TotalQuestions:   total,
		TimeTaken:        formatElapsed(elapsed),
		TimeTakenSeconds: elapsed,
		Answers:          a.snapshotAnswersLocked(),
		CompletedAt:      a.now(),
	}
	a.result = &result
	a.phase = phaseCompleted
	return result
}
