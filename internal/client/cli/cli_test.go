package cli

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/thoughtbook/internal/cipher"
	"github.com/iudanet/thoughtbook/internal/client/api"
	"github.com/iudanet/thoughtbook/internal/client/auth"
	"github.com/iudanet/thoughtbook/internal/client/feedback"
	"github.com/iudanet/thoughtbook/internal/client/freemium"
	"github.com/iudanet/thoughtbook/internal/client/iocli"
	"github.com/iudanet/thoughtbook/internal/client/license"
	"github.com/iudanet/thoughtbook/internal/client/notes"
	"github.com/iudanet/thoughtbook/internal/client/settings"
	"github.com/iudanet/thoughtbook/internal/client/storage/records"
	"github.com/iudanet/thoughtbook/internal/client/storage/sqlite"
	"github.com/iudanet/thoughtbook/internal/client/update"
	"github.com/iudanet/thoughtbook/internal/client/worker"
	"github.com/iudanet/thoughtbook/internal/config"
	"github.com/iudanet/thoughtbook/internal/crypto"
	"github.com/iudanet/thoughtbook/internal/logging"
	"github.com/iudanet/thoughtbook/internal/models"
	pkgapi "github.com/iudanet/thoughtbook/pkg/api"
)

// fakeServer минимальный сервер лицензий и отзывов
type fakeServer struct {
	key            *rsa.PrivateKey
	feedbackStatus int
	feedbacks      []pkgapi.FeedbackRequest
	latest         string
	mu             sync.Mutex
}

func (f *fakeServer) set(fn func(f *fakeServer)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeServer) received() []pkgapi.FeedbackRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pkgapi.FeedbackRequest(nil), f.feedbacks...)
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Path {
	case "/payment":
		_ = json.NewEncoder(w).Encode(pkgapi.PaymentResponse{Data: pkgapi.PaymentData{
			Reference:        "ref-1",
			AuthorizationURL: "http://pay.example/ref-1",
		}})
	case "/license":
		if r.Header.Get("Authorization") != "Bearer ref-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		data := `{"email":"user@example.com","reference":"ref-1"}`
		sig, _ := crypto.SignPKCS1v15(f.key, []byte(data))
		_ = json.NewEncoder(w).Encode(pkgapi.LicenseResponse{LicenseData: data, LicenseKey: sig})
	case "/feedback":
		var req pkgapi.FeedbackRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if f.feedbackStatus != http.StatusOK {
			w.WriteHeader(f.feedbackStatus)
			return
		}
		f.feedbacks = append(f.feedbacks, req)
	case "/update.json":
		_ = json.NewEncoder(w).Encode(pkgapi.UpdateManifest{LatestVersion: f.latest, URL: "http://dl.example", Notes: "Bug fixes"})
	default:
		http.NotFound(w, r)
	}
}

type testEnv struct {
	cli    *Cli
	io     *iocli.Script
	server *fakeServer
	paths  config.Paths
	deps   Deps
}

func newTestEnv(t *testing.T, noteLimit int, answers ...string) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := logging.Discard()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	fs := &fakeServer{key: key, feedbackStatus: http.StatusOK, latest: "1.0.0"}
	srv := httptest.NewServer(fs)
	t.Cleanup(srv.Close)

	paths := config.NewPaths(t.TempDir())
	require.NoError(t, paths.Ensure())
	recs := records.NewFileStore(records.DefaultLocations(paths))

	db, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := notes.NewService(db, cipher.NewShift(cipher.DefaultShiftKey), logger)
	pool := worker.NewPool(2, logger)
	t.Cleanup(pool.Shutdown)

	script := iocli.NewScript(answers...)
	client := api.NewClient(srv.URL)
	store := auth.NewStore(paths.PasswordFile, paths.RecoveryFile, logger)
	lic := license.NewManager(recs, license.NewValidator(&key.PublicKey), logger)
	emails := license.NewEmailStore(recs)

	deps := Deps{
		Notes:     svc,
		Autosave:  notes.NewAutosaver(svc, time.Hour, logger, nil),
		Auth:      store,
		Gate:      auth.NewGate(store, script, logger),
		Settings:  settings.NewService(recs, logger),
		License:   lic,
		Purchaser: license.NewPurchaser(client, lic, emails, logger),
		Emails:    emails,
		Freemium:  freemium.NewCounter(recs, models.Metrics{NoteCountLimit: noteLimit, MaxUpgradeRemind: 1}, logger),
		Feedback:  feedback.NewService(client, recs, paths.LogFile, logger),
		Updates:   update.NewChecker(client, srv.URL+"/update.json", "1.0.0", paths.DeployInfo, logger),
		Pool:      pool,
		Logger:    logger,
		DeviceID:  "device-1",
	}

	return &testEnv{
		cli:    New(script, deps),
		io:     script,
		server: fs,
		paths:  paths,
		deps:   deps,
	}
}

func (e *testEnv) exec(t *testing.T, line string) {
	t.Helper()
	exit, err := e.cli.Execute(context.Background(), line)
	require.NoError(t, err)
	require.False(t, exit)
}

func TestExecute_UnknownCommandPrintsHelp(t *testing.T) {
	env := newTestEnv(t, 10)

	env.exec(t, "frobnicate")
	out := env.io.Output()
	assert.Contains(t, out, "Unknown command: frobnicate")
	for _, name := range []string{"list", "new", "search", "upgrade", "feedback", "settings", "exit"} {
		assert.Contains(t, out, name)
	}

	exit, err := env.cli.Execute(context.Background(), "   ")
	require.NoError(t, err)
	assert.False(t, exit)
}

func TestExecute_Exit(t *testing.T) {
	env := newTestEnv(t, 10)

	exit, err := env.cli.Execute(context.Background(), "EXIT")
	require.NoError(t, err)
	assert.True(t, exit)
}

func TestNewShowAndList(t *testing.T) {
	env := newTestEnv(t, 10, "Groceries", "- milk", "- eggs", ".")
	ctx := context.Background()

	env.exec(t, "new")
	assert.Contains(t, env.io.Output(), "saved")

	all, err := env.deps.Notes.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Groceries", all[0].Title)
	assert.Equal(t, "- milk\n- eggs", all[0].Body)

	env.exec(t, "list")
	assert.Contains(t, env.io.Output(), "Groceries")

	env.exec(t, "show "+itoa(all[0].ID))
	assert.Contains(t, env.io.Output(), "- eggs")

	_, err = env.cli.Execute(ctx, "show 999")
	assert.Error(t, err)
	_, err = env.cli.Execute(ctx, "show abc")
	assert.Error(t, err)
}

func TestNew_EmptyDiscarded(t *testing.T) {
	env := newTestEnv(t, 10, "", ".")

	env.exec(t, "new")
	assert.Contains(t, env.io.Output(), "Empty note discarded")

	n, err := env.deps.Notes.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEdit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 10, "", "new body", ".")
	id, err := env.deps.Notes.Create(ctx, "Title", "old body")
	require.NoError(t, err)

	env.exec(t, "edit "+itoa(id))

	note, err := env.deps.Notes.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Title", note.Title)
	assert.Equal(t, "new body", note.Body)

	n, err := env.deps.Notes.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 10, "no", "yes")
	id, err := env.deps.Notes.Create(ctx, "Doomed", "x")
	require.NoError(t, err)

	env.exec(t, "delete "+itoa(id))
	assert.Contains(t, env.io.Output(), "Deletion cancelled")

	env.exec(t, "delete "+itoa(id))
	_, err = env.deps.Notes.Get(ctx, id)
	assert.Error(t, err)

	// отсутствующий id не ошибка
	env.exec(t, "delete "+itoa(id))
	assert.Contains(t, env.io.Output(), "does not exist")
}

func TestClearAndSearch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 10, "yes")
	_, err := env.deps.Notes.Create(ctx, "Groceries", "milk")
	require.NoError(t, err)
	_, err = env.deps.Notes.Create(ctx, "Ideas", "novel")
	require.NoError(t, err)

	env.exec(t, "search MILK")
	out := env.io.Output()
	assert.Contains(t, out, "Groceries")
	assert.NotContains(t, out, "Ideas")

	env.exec(t, "clear")
	n, err := env.deps.Notes.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestImportExport(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 10)
	dir := t.TempDir()

	in := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(in, []byte(`[{"title":"a","content":"b"}]`), 0o600))
	env.exec(t, "import "+in)
	assert.Contains(t, env.io.Output(), "Imported 1 note(s)")

	out := filepath.Join(dir, "out.json")
	env.exec(t, "export "+out)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"title":"a","content":"b"}]`, string(data))

	_, err = env.cli.Execute(ctx, "import")
	assert.Error(t, err)
}

func TestNew_FreemiumPromptsOnceThenBlocks(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 1)
	_, err := env.deps.Notes.Create(ctx, "only", "free")
	require.NoError(t, err)

	env.exec(t, "new")
	assert.Contains(t, env.io.Output(), "free limit of 1 notes")

	env.exec(t, "new")
	assert.Contains(t, env.io.Output(), "Note limit reached.")

	n, err := env.deps.Notes.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	m, err := env.deps.Freemium.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, m.UpgradeReminderCount)
}

func TestUpgrade(t *testing.T) {
	env := newTestEnv(t, 1, "user@example.com", "")

	env.exec(t, "upgrade")
	out := env.io.Output()
	assert.Contains(t, out, "http://pay.example/ref-1")
	assert.Contains(t, out, "License activated successfully")
	assert.True(t, env.deps.License.IsPremium())
	assert.FileExists(t, env.paths.LicenseFile)

	email, err := env.deps.Emails.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)

	env.exec(t, "upgrade")
	assert.Contains(t, env.io.Output(), "already a premium user")
}

func TestActivate_Invalid(t *testing.T) {
	env := newTestEnv(t, 1, "data", "bm90IGEgc2lnbmF0dXJl")

	env.exec(t, "activate")
	assert.Contains(t, env.io.Output(), "Invalid license")
	assert.False(t, env.deps.License.IsPremium())
	assert.NoFileExists(t, env.paths.LicenseFile)
}

func TestEmail(t *testing.T) {
	env := newTestEnv(t, 10)
	ctx := context.Background()

	env.exec(t, "email")
	assert.Contains(t, env.io.Output(), "No email saved")

	_, err := env.cli.Execute(ctx, "email nope")
	assert.Error(t, err)

	env.exec(t, "email me@example.com")
	env.exec(t, "email")
	assert.Contains(t, env.io.Output(), "Email: me@example.com")
}

func TestFeedback_SentAndQueued(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 10,
		"Ann", "ann@example.com", "Love it", ".",
		"Ann", "ann@example.com", "Still love it", ".",
	)

	env.exec(t, "feedback")
	assert.Contains(t, env.io.Output(), "Thank you for your feedback!")
	received := env.server.received()
	require.Len(t, received, 1)
	assert.Equal(t, "Love it", received[0].UserFeedback)
	assert.Equal(t, config.AppName, received[0].AppName)

	env.server.set(func(f *fakeServer) { f.feedbackStatus = http.StatusServiceUnavailable })
	env.exec(t, "feedback")
	assert.Contains(t, env.io.Output(), "will be sent later")

	pending, err := env.deps.Feedback.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Still love it", pending[0].UserFeedback)
}

func TestFeedback_ValidationError(t *testing.T) {
	env := newTestEnv(t, 10, "", "", "text", ".")

	_, err := env.cli.Execute(context.Background(), "feedback")
	assert.Error(t, err)
}

func TestPasswordChange(t *testing.T) {
	env := newTestEnv(t, 10, "old", "new", "new", "wrong", "x", "x")
	require.NoError(t, env.deps.Auth.Setup("old", "code"))

	env.exec(t, "password")
	assert.Contains(t, env.io.Output(), "Password changed")

	ok, err := env.deps.Auth.Verify("new")
	require.NoError(t, err)
	assert.True(t, ok)

	env.exec(t, "password")
	assert.Contains(t, env.io.Output(), "Incorrect password.")
}

func TestPassword_ExitSentinel(t *testing.T) {
	env := newTestEnv(t, 10, "Exit")
	require.NoError(t, env.deps.Auth.Setup("old", "code"))

	exit, err := env.cli.Execute(context.Background(), "password")
	require.NoError(t, err)
	assert.True(t, exit)
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 10, "pw", "pw", "code")

	env.exec(t, "settings")
	out := env.io.Output()
	assert.Contains(t, out, "Ask password at startup: true")
	assert.Contains(t, out, "free")

	env.exec(t, "settings password off")
	st, err := env.deps.Settings.Load(ctx)
	require.NoError(t, err)
	assert.False(t, st.RequestPassword)

	// включение без пароля запускает первичную настройку
	env.exec(t, "settings password on")
	st, err = env.deps.Settings.Load(ctx)
	require.NoError(t, err)
	assert.True(t, st.RequestPassword)
	assert.FileExists(t, env.paths.PasswordFile)

	_, err = env.cli.Execute(ctx, "settings password maybe")
	assert.Error(t, err)
}

func TestUpdate(t *testing.T) {
	env := newTestEnv(t, 10)

	env.exec(t, "update")
	assert.Contains(t, env.io.Output(), "is up to date (1.0.0)")

	env.server.set(func(f *fakeServer) { f.latest = "1.1.0" })
	env.exec(t, "update")
	out := env.io.Output()
	assert.Contains(t, out, "Version 1.1.0 is available.")
	assert.Contains(t, out, "http://dl.example")
}

func TestShell_RunsUntilExit(t *testing.T) {
	env := newTestEnv(t, 10, "list", "bogus", "exit", "list")

	require.NoError(t, env.cli.Shell(context.Background()))
	assert.Equal(t, 1, env.io.Remaining())
	assert.Contains(t, env.io.Output(), "Unknown command: bogus")
}

func TestShell_StopsOnEOF(t *testing.T) {
	env := newTestEnv(t, 10, "list")

	require.NoError(t, env.cli.Shell(context.Background()))
	assert.True(t, strings.HasSuffix(env.io.Output(), Prompt))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
