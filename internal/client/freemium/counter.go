// Package freemium решает, можно ли создать еще одну заметку в бесплатной версии.
package freemium

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/iudanet/thoughtbook/internal/client/storage"
	"github.com/iudanet/thoughtbook/internal/models"
)

// Decision результат проверки лимита
type Decision int

const (
	// Allow заметку можно создать
	Allow Decision = iota
	// Prompt лимит достигнут, показать предложение купить лицензию
	Prompt
	// Block лимит достигнут, напоминания исчерпаны: создание молча запрещено
	Block
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Prompt:
		return "prompt"
	case Block:
		return "block"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Counter хранит метрики freemium в RecordStore под ключом storage.RecordMetrics.
type Counter struct {
	store    storage.RecordStore
	logger   *slog.Logger
	defaults models.Metrics
	mu       sync.Mutex
}

// NewCounter создает Counter. defaults используются, когда файл метрик
// отсутствует или поврежден.
func NewCounter(store storage.RecordStore, defaults models.Metrics, logger *slog.Logger) *Counter {
	return &Counter{
		store:    store,
		defaults: defaults,
		logger:   logger,
	}
}

// Metrics returns current metrics, regenerating the record if needed.
func (c *Counter) Metrics(ctx context.Context) (models.Metrics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

func (c *Counter) load(ctx context.Context) (models.Metrics, error) {
	var m models.Metrics
	err := c.store.Get(ctx, storage.RecordMetrics, &m)
	switch {
	case err == nil:
		if m.NoteCountLimit > 0 && m.MaxUpgradeRemind >= 0 && m.UpgradeReminderCount >= 0 {
			return m, nil
		}
		c.logger.Warn("metrics record has invalid values, using defaults", "metrics", m)
	case errors.Is(err, storage.ErrRecordNotFound):
		c.logger.Info("metrics record not found, creating defaults")
	case errors.Is(err, storage.ErrRecordCorrupted):
		c.logger.Warn("metrics record corrupted, using defaults", "error", err)
	default:
		return models.Metrics{}, fmt.Errorf("failed to load metrics: %w", err)
	}

	m = c.defaults
	if err := c.store.Put(ctx, storage.RecordMetrics, m); err != nil {
		// метрики не критичны: работаем с значениями по умолчанию
		c.logger.Error("failed to write default metrics", "error", err)
	}
	return m, nil
}

// Evaluate возвращает решение для текущего числа заметок noteCount.
// Prompt возвращается пока UpgradeReminderCount < MaxUpgradeRemind, и каждый
// Prompt увеличивает и сохраняет счетчик. Премиум пользователю всегда Allow.
func (c *Counter) Evaluate(ctx context.Context, noteCount int, premium bool) (Decision, error) {
	if premium {
		return Allow, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.load(ctx)
	if err != nil {
		return Allow, err
	}

	if noteCount < m.NoteCountLimit {
		return Allow, nil
	}

	if m.UpgradeReminderCount >= m.MaxUpgradeRemind {
		c.logger.Debug("note limit reached, reminders exhausted", "count", noteCount)
		return Block, nil
	}

	m.UpgradeReminderCount++
	if err := c.store.Put(ctx, storage.RecordMetrics, m); err != nil {
		return Prompt, fmt.Errorf("failed to save metrics: %w", err)
	}

	c.logger.Info("upgrade reminder shown", "reminder", m.UpgradeReminderCount, "max", m.MaxUpgradeRemind)
	return Prompt, nil
}

// ShouldPromptUpgrade reports whether Evaluate resulted in Prompt.
func (c *Counter) ShouldPromptUpgrade(ctx context.Context, noteCount int) (bool, error) {
	d, err := c.Evaluate(ctx, noteCount, false)
	return d == Prompt, err
}
