package api

// FeedbackRequest тело POST /feedback
type FeedbackRequest struct {
	AppName      string `json:"app_name"`
	UserName     string `json:"user_name"`
	FollowUp     string `json:"follow_up"`
	UserFeedback string `json:"user_feedback"`
	Timestamp    string `json:"timestamp"` // DD-MM-YYYY, HH:MM:SS
	UserAppLog   string `json:"user_app_log"`
}

// FeedbackResponse ответ на принятый отзыв
type FeedbackResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}
