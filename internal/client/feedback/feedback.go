// Package feedback собирает отзывы пользователя и доставляет их на сервер.
// Если сервер недоступен, отзыв сохраняется в очередь (feedbacks.json)
// и отправляется позже фоновым циклом Run.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	clientapi "github.com/iudanet/thoughtbook/internal/client/api"
	"github.com/iudanet/thoughtbook/internal/client/storage"
	"github.com/iudanet/thoughtbook/internal/config"
	"github.com/iudanet/thoughtbook/internal/logging"
	"github.com/iudanet/thoughtbook/internal/models"
	"github.com/iudanet/thoughtbook/internal/validation"
	"github.com/iudanet/thoughtbook/pkg/api"
)

// LogTailLines число строк app.log, прикладываемых к отзыву
const LogTailLines = 3

// Result итог отправки отзыва
type Result int

const (
	// Sent сервер принял отзыв
	Sent Result = iota
	// Queued сервер недоступен, отзыв сохранен для повторной отправки
	Queued
)

// Sender отправляет отзыв на сервер.
// Ошибка, удовлетворяющая errors.Is(err, clientapi.ErrUnavailable),
// означает, что отправку стоит повторить позже.
type Sender interface {
	SendFeedback(ctx context.Context, req api.FeedbackRequest) error
}

// Service composes, sends and queues feedback.
type Service struct {
	sender  Sender
	store   storage.RecordStore
	logger  *slog.Logger
	now     func() time.Time
	logPath string
	mu      sync.Mutex // защищает очередь в store
	drainMu sync.Mutex // один Drain за раз
}

// NewService создает сервис отзывов. logPath используется для вложения
// последних строк журнала.
func NewService(sender Sender, store storage.RecordStore, logPath string, logger *slog.Logger) *Service {
	return &Service{
		sender:  sender,
		store:   store,
		logPath: logPath,
		logger:  logger,
		now:     time.Now,
	}
}

// Compose проверяет поля и собирает отзыв. Текст отзыва и email
// для ответа обязательны.
func (s *Service) Compose(userName, followUp, body string) (models.Feedback, error) {
	userName = strings.TrimSpace(userName)
	followUp = strings.TrimSpace(followUp)
	body = strings.TrimSpace(body)

	if body == "" || followUp == "" {
		s.logger.Info("feedback validation failed: empty email or feedback")
		return models.Feedback{}, fmt.Errorf("your email and feedback are required")
	}
	if err := validation.ValidateEmail(followUp); err != nil {
		return models.Feedback{}, err
	}

	appLog, err := logging.Tail(s.logPath, LogTailLines)
	if err != nil {
		s.logger.Error("failed to read app log", "error", err)
		appLog = "Could not read log file."
	}

	return models.Feedback{
		AppName:      config.AppName,
		UserName:     userName,
		FollowUp:     followUp,
		UserFeedback: body,
		Timestamp:    s.now().Format(models.FeedbackTimeLayout),
		UserAppLog:   appLog,
	}, nil
}

// Submit отправляет отзыв. 503 или сетевая ошибка ставят отзыв в очередь
// и возвращают Queued без ошибки; любой другой ответ сервера это ошибка.
func (s *Service) Submit(ctx context.Context, fb models.Feedback) (Result, error) {
	err := s.sender.SendFeedback(ctx, toRequest(fb))
	switch {
	case err == nil:
		s.logger.Info("feedback sent to server")
		return Sent, nil
	case errors.Is(err, clientapi.ErrUnavailable):
		s.logger.Error("server unavailable, saving feedback locally", "error", err)
		if qerr := s.enqueue(ctx, fb); qerr != nil {
			return Queued, qerr
		}
		return Queued, nil
	default:
		s.logger.Error("feedback rejected by server", "error", err)
		return Sent, fmt.Errorf("feedback not sent: %w", err)
	}
}

// Pending returns queued feedback in submission order.
func (s *Service) Pending(ctx context.Context) ([]models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Drain отправляет очередь по порядку. Отправленные отзывы удаляются;
// при недоступности сервера проход прерывается, остаток сохраняется.
// Отзывы, отклоненные сервером, удаляются: повтор их не исправит.
// Очередь не блокируется на время отправки: отзывы, добавленные во время
// прохода, сохраняются после остатка. Возвращает число отправленных отзывов.
func (s *Service) Drain(ctx context.Context) (int, error) {
	s.drainMu.Lock()
	defer s.drainMu.Unlock()

	s.mu.Lock()
	queue, err := s.load(ctx)
	s.mu.Unlock()
	if err != nil || len(queue) == 0 {
		return 0, err
	}

	s.logger.Info("sending saved feedback", "count", len(queue))

	sent := 0
	rest := queue[:0:0]
	for i, fb := range queue {
		err := s.sender.SendFeedback(ctx, toRequest(fb))
		if err == nil {
			sent++
			continue
		}
		if errors.Is(err, clientapi.ErrUnavailable) || ctx.Err() != nil {
			s.logger.Warn("server unavailable, will retry later", "error", err)
			rest = append(rest, queue[i:]...)
			break
		}
		s.logger.Error("saved feedback rejected, dropping", "timestamp", fb.Timestamp, "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// enqueue только дописывает в конец, поэтому новое лежит после снимка
	current, err := s.load(ctx)
	if err != nil {
		return sent, err
	}
	if len(current) > len(queue) {
		rest = append(rest, current[len(queue):]...)
	}

	if err := s.save(ctx, rest); err != nil {
		return sent, err
	}
	return sent, nil
}

// Run вызывает Drain сразу и затем каждые interval до отмены ctx.
// Ошибки логируются и не прерывают цикл.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	s.logger.Info("starting feedback drain loop", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Drain(ctx); err != nil {
			s.logger.Error("feedback drain failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Service) enqueue(ctx context.Context, fb models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue, err := s.load(ctx)
	if err != nil {
		return err
	}
	queue = append(queue, fb)
	if err := s.save(ctx, queue); err != nil {
		return err
	}
	s.logger.Info("saved feedback locally", "queued", len(queue))
	return nil
}

// load must be called with s.mu held.
func (s *Service) load(ctx context.Context) ([]models.Feedback, error) {
	var queue []models.Feedback
	err := s.store.Get(ctx, storage.RecordFeedbackQueue, &queue)
	switch {
	case err == nil:
		return queue, nil
	case errors.Is(err, storage.ErrRecordNotFound):
		return nil, nil
	case errors.Is(err, storage.ErrRecordCorrupted):
		s.logger.Error("feedback queue corrupted, starting empty", "error", err)
		return nil, nil
	default:
		return nil, fmt.Errorf("failed to read feedback queue: %w", err)
	}
}

func (s *Service) save(ctx context.Context, queue []models.Feedback) error {
	if queue == nil {
		queue = []models.Feedback{}
	}
	if err := s.store.Put(ctx, storage.RecordFeedbackQueue, queue); err != nil {
		return fmt.Errorf("failed to save feedback queue: %w", err)
	}
	return nil
}

func toRequest(fb models.Feedback) api.FeedbackRequest {
	return api.FeedbackRequest{
		AppName:      fb.AppName,
		UserName:     fb.UserName,
		FollowUp:     fb.FollowUp,
		UserFeedback: fb.UserFeedback,
		Timestamp:    fb.Timestamp,
		UserAppLog:   fb.UserAppLog,
	}
}
