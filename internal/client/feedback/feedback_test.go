package feedback

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientapi "github.com/iudanet/thoughtbook/internal/client/api"
	"github.com/iudanet/thoughtbook/internal/client/storage"
	"github.com/iudanet/thoughtbook/internal/client/storage/records"
	"github.com/iudanet/thoughtbook/internal/logging"
	"github.com/iudanet/thoughtbook/internal/models"
	"github.com/iudanet/thoughtbook/pkg/api"
)

// fakeSender возвращает ошибки из errs по очереди, затем nil
type fakeSender struct {
	errs []error
	sent []api.FeedbackRequest
	mu   sync.Mutex
}

func (f *fakeSender) SendFeedback(ctx context.Context, req api.FeedbackRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return err
		}
	}
	f.sent = append(f.sent, req)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

var errUnavailable = fmt.Errorf("send feedback: %w", clientapi.ErrUnavailable)

func newTestService(t *testing.T, sender Sender) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	queuePath := filepath.Join(dir, "feedbacks.json")
	store := records.NewFileStore(map[string]records.Location{
		storage.RecordFeedbackQueue: {Path: queuePath},
	})
	svc := NewService(sender, store, filepath.Join(dir, "app.log"), logging.Discard())
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC) }
	return svc, queuePath
}

func item(body string) models.Feedback {
	return models.Feedback{AppName: "Thought Book", FollowUp: "a@b.co", UserFeedback: body}
}

func TestCompose(t *testing.T) {
	svc, _ := newTestService(t, &fakeSender{})
	require.NoError(t, os.WriteFile(svc.logPath, []byte("l1\nl2\nl3\nl4\n"), 0o600))

	fb, err := svc.Compose(" Ann ", "ann@example.com", "  great app ")
	require.NoError(t, err)
	assert.Equal(t, "Thought Book", fb.AppName)
	assert.Equal(t, "Ann", fb.UserName)
	assert.Equal(t, "great app", fb.UserFeedback)
	assert.Equal(t, "05-03-2024, 14:07:09", fb.Timestamp)
	assert.Equal(t, "l2\nl3\nl4", fb.UserAppLog)
}

func TestCompose_Validation(t *testing.T) {
	svc, _ := newTestService(t, &fakeSender{})

	tests := []struct {
		name     string
		followUp string
		body     string
	}{
		{name: "empty body", followUp: "a@b.co", body: "  "},
		{name: "empty email", followUp: "", body: "text"},
		{name: "invalid email", followUp: "nope", body: "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Compose("", tt.followUp, tt.body)
			assert.Error(t, err)
		})
	}
}

func TestSubmit(t *testing.T) {
	tests := []struct {
		sendErr    error
		name       string
		wantResult Result
		wantErr    bool
		wantQueued int
	}{
		{name: "sent", wantResult: Sent},
		{name: "unavailable", sendErr: errUnavailable, wantResult: Queued, wantQueued: 1},
		{name: "rejected", sendErr: errors.New("server error (400)"), wantResult: Sent, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc, _ := newTestService(t, &fakeSender{errs: []error{tt.sendErr}})

			res, err := svc.Submit(ctx, item("hi"))
			assert.Equal(t, tt.wantResult, res)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			pending, err := svc.Pending(ctx)
			require.NoError(t, err)
			assert.Len(t, pending, tt.wantQueued)
		})
	}
}

func TestDrain_KeepsOrderAndStopsWhenUnavailable(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{errs: []error{errUnavailable, errUnavailable, errUnavailable}}
	svc, _ := newTestService(t, sender)

	for _, body := range []string{"one", "two", "three"} {
		res, err := svc.Submit(ctx, item(body))
		require.NoError(t, err)
		require.Equal(t, Queued, res)
	}

	// первый отправлен, второй упал на 503: остаток сохраняется по порядку
	sender.errs = []error{nil, errUnavailable}
	sent, err := svc.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "two", pending[0].UserFeedback)
	assert.Equal(t, "three", pending[1].UserFeedback)

	sent, err = svc.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	pending, err = svc.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	bodies := make([]string, 0, len(sender.sent))
	for _, r := range sender.sent {
		bodies = append(bodies, r.UserFeedback)
	}
	assert.Equal(t, []string{"one", "two", "three"}, bodies)
}

// slowSender держит отправку "old" до release, остальное отвечает 503
type slowSender struct {
	started chan struct{}
	release chan struct{}
}

func (s *slowSender) SendFeedback(ctx context.Context, req api.FeedbackRequest) error {
	if req.UserFeedback != "old" {
		return errUnavailable
	}
	close(s.started)
	<-s.release
	return nil
}

func TestDrain_QueueStaysWritableWhileSending(t *testing.T) {
	ctx := context.Background()
	sender := &slowSender{started: make(chan struct{}), release: make(chan struct{})}
	svc, _ := newTestService(t, sender)
	require.NoError(t, svc.enqueue(ctx, item("old")))

	type drainResult struct {
		err  error
		sent int
	}
	drained := make(chan drainResult, 1)
	go func() {
		sent, err := svc.Drain(ctx)
		drained <- drainResult{sent: sent, err: err}
	}()
	<-sender.started

	submitted := make(chan error, 1)
	go func() {
		_, err := svc.Submit(ctx, item("new"))
		submitted <- err
	}()

	select {
	case err := <-submitted:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("submit blocked by drain in progress")
	}

	close(sender.release)
	res := <-drained
	require.NoError(t, res.err)
	assert.Equal(t, 1, res.sent)

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "new", pending[0].UserFeedback)
}

func TestDrain_DropsRejected(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{errs: []error{errUnavailable, errUnavailable}}
	svc, _ := newTestService(t, sender)

	_, err := svc.Submit(ctx, item("bad"))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, item("good"))
	require.NoError(t, err)

	sender.errs = []error{errors.New("server error (400)")}
	sent, err := svc.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDrain_CorruptedQueue(t *testing.T) {
	svc, queuePath := newTestService(t, &fakeSender{})
	require.NoError(t, os.WriteFile(queuePath, []byte("[{"), 0o600))

	sent, err := svc.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestRun_DrainsUntilCancelled(t *testing.T) {
	sender := &fakeSender{errs: []error{errUnavailable}}
	svc, _ := newTestService(t, sender)

	_, err := svc.Submit(context.Background(), item("later"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx, 10*time.Millisecond) }()

	assert.Eventually(t, func() bool { return sender.count() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
