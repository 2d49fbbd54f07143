package app

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/thoughtbook/internal/client/iocli"
	"github.com/iudanet/thoughtbook/internal/config"
	"github.com/iudanet/thoughtbook/internal/logging"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DataDir = t.TempDir()
	cfg.ServerURL = "http://127.0.0.1:1"
	cfg.UpdateURL = "http://127.0.0.1:1/update.json"
	cfg.UpdateDelay = time.Hour
	cfg.FeedbackInterval = time.Hour
	cfg.AutosaveDelay = 10 * time.Millisecond
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config, answers ...string) (*App, *iocli.Script) {
	t.Helper()
	script := iocli.NewScript(answers...)
	a, err := New(context.Background(), cfg, script, logging.Discard(), "1.0.0")
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a, script
}

func TestRun_FirstStartSetsUpPassword(t *testing.T) {
	cfg := testConfig(t)
	a, script := newTestApp(t, cfg, "secret", "secret", "recovery", "new", "Groceries", "- milk", ".", "exit")

	require.NoError(t, a.Run(context.Background(), ""))

	paths := cfg.Paths()
	assert.FileExists(t, paths.PasswordFile)
	assert.FileExists(t, paths.RecoveryFile)
	assert.FileExists(t, paths.NotesDB)
	assert.FileExists(t, paths.SettingsFile)
	assert.Contains(t, script.Output(), "Thought Book 1.0.0")

	all, err := a.notes.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "- milk", all[0].Body)
}

func TestRun_ExistingPasswordExit(t *testing.T) {
	cfg := testConfig(t)
	first, _ := newTestApp(t, cfg, "secret", "secret", "recovery", "exit")
	require.NoError(t, first.Run(context.Background(), ""))
	first.Close()

	second, _ := newTestApp(t, cfg, "wrong", "EXIT")
	err := second.Run(context.Background(), "")
	assert.ErrorIs(t, err, ErrExit)
	// база заметок не открывается до входа
	assert.Nil(t, second.notesDB)
}

func TestRun_FirstSetupCancelled(t *testing.T) {
	cfg := testConfig(t)
	a, _ := newTestApp(t, cfg)

	err := a.Run(context.Background(), "")
	assert.ErrorIs(t, err, ErrExit)
	assert.NoFileExists(t, cfg.Paths().PasswordFile)
}

func TestRun_PasswordDisabled(t *testing.T) {
	cfg := testConfig(t)
	paths := cfg.Paths()
	require.NoError(t, paths.Ensure())
	require.NoError(t, os.WriteFile(paths.SettingsFile, []byte(`{"request_password": false}`), 0o600))

	a, script := newTestApp(t, cfg)

	require.NoError(t, a.Run(context.Background(), "list"))
	assert.Contains(t, script.Output(), "No notes yet")
	assert.NoFileExists(t, paths.PasswordFile)
}

func TestNew_BoltBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.RecordBackend = config.BackendBolt

	a, _ := newTestApp(t, cfg)
	require.NoError(t, a.settings.SetRequestPassword(context.Background(), false))

	assert.FileExists(t, cfg.Paths().BoltFile)
	// настройки лежат в bolt, а не в settings.json
	assert.NoFileExists(t, cfg.Paths().SettingsFile)
}

func TestNew_UnknownCipher(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cipher = "rot13"

	_, err := New(context.Background(), cfg, iocli.NewScript(), logging.Discard(), "1.0.0")
	assert.Error(t, err)
}

func TestStartBackground_Cancel(t *testing.T) {
	cfg := testConfig(t)
	a, _ := newTestApp(t, cfg)
	require.NoError(t, a.OpenNotes(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	updateCheck, drain := a.StartBackground(ctx)
	cancel()

	wait, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	_, err := updateCheck.Wait(wait)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = drain.Wait(wait)
	assert.ErrorIs(t, err, context.Canceled)
}
