package notes

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// saveTimeout ограничивает одну фоновую запись в базу
const saveTimeout = 5 * time.Second

// Draft содержимое буфера редактора
type Draft struct {
	Title string
	Body  string
	ID    int64 // 0 для заметки, которая еще не сохранялась
}

// Autosaver сохраняет черновики после паузы в редактировании.
// Каждому буферу соответствует ключ; после первого сохранения новой
// заметки ее id запоминается, и следующие сохранения обновляют ту же запись.
type Autosaver struct {
	svc       *Service
	debouncer *Debouncer
	logger    *slog.Logger
	pending   map[string]Draft
	ids       map[string]int64
	onSaved   func(key string, id int64, err error)
	mu        sync.Mutex
	saveMu    sync.Mutex
}

// NewAutosaver создает Autosaver с задержкой delay.
// onSaved (может быть nil) вызывается после каждой фоновой записи.
func NewAutosaver(svc *Service, delay time.Duration, logger *slog.Logger, onSaved func(key string, id int64, err error)) *Autosaver {
	return &Autosaver{
		svc:       svc,
		debouncer: NewDebouncer(delay),
		logger:    logger,
		pending:   make(map[string]Draft),
		ids:       make(map[string]int64),
		onSaved:   onSaved,
	}
}

// Edit запоминает последнее состояние буфера и откладывает сохранение
func (a *Autosaver) Edit(key string, d Draft) {
	a.mu.Lock()
	if d.ID != 0 {
		a.ids[key] = d.ID
	}
	a.pending[key] = d
	a.mu.Unlock()

	a.debouncer.Debounce(key, func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		_, _ = a.save(ctx, key)
	})
}

// ID returns the saved note id for key, or 0.
func (a *Autosaver) ID(key string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ids[key]
}

// Flush немедленно сохраняет все отложенные черновики
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	keys := make([]string, 0, len(a.pending))
	for k := range a.pending {
		keys = append(keys, k)
	}
	a.mu.Unlock()

	var errs []error
	for _, key := range keys {
		a.debouncer.Cancel(key)
		if _, err := a.save(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stop отменяет отложенные сохранения без записи
func (a *Autosaver) Stop() {
	a.debouncer.Clear()
	a.mu.Lock()
	clear(a.pending)
	a.mu.Unlock()
}

// Forget убирает буфер (например, после удаления заметки)
func (a *Autosaver) Forget(key string) {
	a.debouncer.Cancel(key)
	a.mu.Lock()
	delete(a.pending, key)
	delete(a.ids, key)
	a.mu.Unlock()
}

func (a *Autosaver) save(ctx context.Context, key string) (int64, error) {
	// записи сериализуются, чтобы вставка новой заметки не произошла дважды
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	d, ok := a.pending[key]
	if !ok {
		a.mu.Unlock()
		return 0, nil
	}
	delete(a.pending, key)
	id := a.ids[key]
	a.mu.Unlock()

	savedID, err := a.svc.Save(ctx, id, d.Title, d.Body)
	if err != nil {
		a.logger.Error("autosave failed", "key", key, "error", err)
	} else {
		a.mu.Lock()
		a.ids[key] = savedID
		a.mu.Unlock()
	}

	if a.onSaved != nil {
		a.onSaved(key, savedID, err)
	}
	return savedID, err
}
