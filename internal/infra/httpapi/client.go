package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"quiz-attempt-service/internal/domain"
)

// Client submits graded answers to an external quiz service over REST.
// It implements app.AnswerSubmitter.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SubmitAnswer POSTs one answer record. A non-2xx response is an error; the
// service's own message is preserved when it sends one so the user sees the
// real reason a batch failed.
func (c *Client) SubmitAnswer(ctx context.Context, record domain.AnswerRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}

	url := fmt.Sprintf("%s/quizzes/%s/answers", c.baseURL, record.QuizID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("submit answer %s: %w", record.QuestionID, err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		var payload struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(res.Body).Decode(&payload) == nil && payload.Message != "" {
			return fmt.Errorf("submit answer %s: %s", record.QuestionID, payload.Message)
		}
		return fmt.Errorf("submit answer %s: %s", record.QuestionID, res.Status)
	}
	return nil
}
