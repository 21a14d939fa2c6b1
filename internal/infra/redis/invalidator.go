package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Invalidator implements app.CacheInvalidator by deleting the Redis keys
// that hold attempt-derived data: the user's attempt history for the quiz,
// their dashboard aggregates, and the flashcard-existence flag readers
// consult before offering a study session. Readers repopulate the keys on
// their next fetch.
type Invalidator struct {
	client *redis.Client
}

func NewInvalidator(client *redis.Client) *Invalidator {
	return &Invalidator{client: client}
}

func (i *Invalidator) InvalidateAttempt(ctx context.Context, quizID, userID string) error {
	keys := []string{
		AttemptsKey(quizID, userID),
		DashboardKey(userID),
		FlashcardsKey(quizID),
	}
	if err := i.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate attempt caches: %w", err)
	}
	return nil
}

// AttemptsKey caches a user's attempt history for one quiz.
func AttemptsKey(quizID, userID string) string {
	return "attempts:" + quizID + ":" + userID
}

// DashboardKey caches a user's dashboard aggregates.
func DashboardKey(userID string) string {
	return "dashboard:" + userID
}

// FlashcardsKey caches whether flashcards exist for a quiz.
func FlashcardsKey(quizID string) string {
	return "flashcards:" + quizID + ":exists"
}
