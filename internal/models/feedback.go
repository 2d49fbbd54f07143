package models

import "time"

// FeedbackTimeLayout формат поля timestamp (DD-MM-YYYY, HH:MM:SS)
const FeedbackTimeLayout = "02-01-2006, 15:04:05"

// Feedback представляет отзыв пользователя, готовый к отправке
type Feedback struct {
	AppName      string `json:"app_name"`
	UserName     string `json:"user_name"`
	FollowUp     string `json:"follow_up"` // email для обратной связи
	UserFeedback string `json:"user_feedback"`
	Timestamp    string `json:"timestamp"`
	UserAppLog   string `json:"user_app_log"`
}

// StoredFeedback отзыв, сохраненный на сервере
type StoredFeedback struct {
	ReceivedAt time.Time `json:"received_at"`
	Feedback
	ID int64 `json:"id"`
}
