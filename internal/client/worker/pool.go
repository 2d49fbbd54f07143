// Package worker запускает фоновые задачи (HTTP запросы, проверка
// обновлений, отправка очереди отзывов) с ограниченной параллельностью.
// Каждая задача возвращает Future, через который видно ее завершение.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ErrPoolClosed пул закрыт, новые задачи не принимаются
var ErrPoolClosed = errors.New("worker pool is closed")

// Job фоновая задача
type Job func(ctx context.Context) (any, error)

// Future результат задачи
type Future struct {
	value any
	err   error
	done  chan struct{}
	name  string
}

func newFuture(name string) *Future {
	return &Future{name: name, done: make(chan struct{})}
}

func (f *Future) resolve(value any, err error) {
	f.value = value
	f.err = err
	close(f.done)
}

// Done закрывается после завершения задачи
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait блокируется до завершения задачи или отмены ctx
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Name returns the job name given to Submit.
func (f *Future) Name() string {
	return f.name
}

// Pool ограничивает число одновременно выполняемых задач
type Pool struct {
	sem    *semaphore.Weighted
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// NewPool создает пул на size одновременных задач
func NewPool(size int, logger *slog.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		sem:    semaphore.NewWeighted(int64(size)),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Submit запускает job в фоне. Контекст задачи отменяется, когда
// отменен ctx или пул закрыт с Shutdown. Ошибки и паники задачи
// логируются и попадают в Future.
func (p *Pool) Submit(ctx context.Context, name string, job Job) *Future {
	f := newFuture(name)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		f.resolve(nil, ErrPoolClosed)
		return f
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()

		jobCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(p.ctx, cancel)
		defer stop()

		if err := p.sem.Acquire(jobCtx, 1); err != nil {
			f.resolve(nil, err)
			return
		}
		defer p.sem.Release(1)

		value, err := p.run(jobCtx, name, job)
		if err != nil {
			p.logger.Error("background job failed", "job", name, "error", err)
		} else {
			p.logger.Debug("background job finished", "job", name)
		}
		f.resolve(value, err)
	}()

	return f
}

func (p *Pool) run(ctx context.Context, name string, job Job) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", name, r)
		}
	}()
	return job(ctx)
}

// Close перестает принимать задачи и ждет завершения запущенных
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
	p.cancel()
}

// Shutdown отменяет контексты задач и ждет их завершения
func (p *Pool) Shutdown() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cancel()
	p.wg.Wait()
}
