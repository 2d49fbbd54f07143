package storage

import (
	"context"

	"github.com/iudanet/thoughtbook/internal/models"
)

// FeedbackStorage defines interface for user feedback persistence
type FeedbackStorage interface {
	// SaveFeedback stores feedback and returns its id
	SaveFeedback(ctx context.Context, fb *models.StoredFeedback) (int64, error)

	// ListFeedback returns stored feedback, newest first
	ListFeedback(ctx context.Context, limit int) ([]*models.StoredFeedback, error)
}
