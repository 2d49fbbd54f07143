package sqlite

import (
	"context"
	"fmt"

	"github.com/iudanet/thoughtbook/internal/models"
)

// SaveFeedback stores feedback and returns its id
func (s *Storage) SaveFeedback(ctx context.Context, fb *models.StoredFeedback) (int64, error) {
	query := `
		INSERT INTO feedback (app_name, user_name, follow_up, user_feedback, timestamp, user_app_log, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		fb.AppName,
		fb.UserName,
		fb.FollowUp,
		fb.UserFeedback,
		fb.Timestamp,
		fb.UserAppLog,
		fb.ReceivedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert feedback: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get feedback id: %w", err)
	}
	fb.ID = id

	return id, nil
}

// ListFeedback returns stored feedback, newest first
func (s *Storage) ListFeedback(ctx context.Context, limit int) ([]*models.StoredFeedback, error) {
	query := `
		SELECT id, app_name, user_name, follow_up, user_feedback, timestamp, user_app_log, received_at
		FROM feedback
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var items []*models.StoredFeedback
	for rows.Next() {
		fb := &models.StoredFeedback{}
		if err := rows.Scan(
			&fb.ID,
			&fb.AppName,
			&fb.UserName,
			&fb.FollowUp,
			&fb.UserFeedback,
			&fb.Timestamp,
			&fb.UserAppLog,
			&fb.ReceivedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		items = append(items, fb)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback: %w", err)
	}

	return items, nil
}
