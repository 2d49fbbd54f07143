// Package app собирает клиентские сервисы и проводит запуск приложения:
// проверка пароля, открытие базы заметок, проверка лицензии,
// фоновые задачи и интерактивная оболочка.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/iudanet/thoughtbook/internal/cipher"
	"github.com/iudanet/thoughtbook/internal/client/api"
	"github.com/iudanet/thoughtbook/internal/client/auth"
	"github.com/iudanet/thoughtbook/internal/client/cli"
	"github.com/iudanet/thoughtbook/internal/client/device"
	"github.com/iudanet/thoughtbook/internal/client/feedback"
	"github.com/iudanet/thoughtbook/internal/client/freemium"
	"github.com/iudanet/thoughtbook/internal/client/iocli"
	"github.com/iudanet/thoughtbook/internal/client/license"
	"github.com/iudanet/thoughtbook/internal/client/notes"
	"github.com/iudanet/thoughtbook/internal/client/settings"
	"github.com/iudanet/thoughtbook/internal/client/storage"
	"github.com/iudanet/thoughtbook/internal/client/storage/boltdb"
	"github.com/iudanet/thoughtbook/internal/client/storage/records"
	"github.com/iudanet/thoughtbook/internal/client/storage/sqlite"
	"github.com/iudanet/thoughtbook/internal/client/update"
	"github.com/iudanet/thoughtbook/internal/client/worker"
	"github.com/iudanet/thoughtbook/internal/config"
	"github.com/iudanet/thoughtbook/internal/models"
)

// ErrExit пользователь завершил приложение на этапе входа
var ErrExit = errors.New("exit requested")

// App владеет ресурсами клиента от запуска до выхода
type App struct {
	cfg     *config.Config
	paths   config.Paths
	io      iocli.IO
	logger  *slog.Logger
	version string

	records  storage.RecordStore
	closers  []io.Closer
	notesDB  *sqlite.Storage
	cipher   cipher.Cipher
	pool     *worker.Pool
	client   *api.Client
	authSt   *auth.Store
	gate     *auth.Gate
	settings *settings.Service
	license  *license.Manager
	emails   *license.EmailStore
	counter  *freemium.Counter
	feedback *feedback.Service
	updates  *update.Checker

	notes    *notes.Service
	autosave *notes.Autosaver
}

// New создает каталоги данных, хранилище записей и сервисы, которым
// не нужна база заметок. version это версия сборки.
func New(ctx context.Context, cfg *config.Config, io iocli.IO, logger *slog.Logger, version string) (*App, error) {
	a := &App{
		cfg:     cfg,
		paths:   cfg.Paths(),
		io:      io,
		logger:  logger,
		version: version,
	}

	if err := a.paths.Ensure(); err != nil {
		return nil, err
	}

	c, err := cipher.New(cfg.Cipher)
	if err != nil {
		return nil, err
	}
	a.cipher = c

	if err := a.openRecords(ctx); err != nil {
		return nil, err
	}

	pub, err := license.LoadPublicKey(cfg.PublicKeyFile)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load license public key: %w", err)
	}

	a.pool = worker.NewPool(cfg.Workers, logger)
	a.client = api.NewClient(cfg.ServerURL)
	a.authSt = auth.NewStore(a.paths.PasswordFile, a.paths.RecoveryFile, logger)
	a.gate = auth.NewGate(a.authSt, io, logger)
	a.settings = settings.NewService(a.records, logger)
	a.license = license.NewManager(a.records, license.NewValidator(pub), logger)
	a.emails = license.NewEmailStore(a.records)
	a.counter = freemium.NewCounter(a.records, models.Metrics{
		NoteCountLimit:   cfg.NoteLimit,
		MaxUpgradeRemind: cfg.MaxUpgradeRemind,
	}, logger)
	a.feedback = feedback.NewService(a.client, a.records, a.paths.LogFile, logger)
	a.updates = update.NewChecker(a.client, cfg.UpdateURL, version, a.paths.DeployInfo, logger)

	return a, nil
}

func (a *App) openRecords(ctx context.Context) error {
	switch a.cfg.RecordBackend {
	case config.BackendBolt:
		st, err := boltdb.New(ctx, a.paths.BoltFile)
		if err != nil {
			return fmt.Errorf("failed to open record store: %w", err)
		}
		a.records = st
		a.closers = append(a.closers, st)
	default:
		a.records = records.NewFileStore(records.DefaultLocations(a.paths))
	}
	return nil
}

// Unlock проверяет пароль, если он включен в настройках.
// Возвращает ErrExit, если пользователь ввел "exit" или отменил настройку.
func (a *App) Unlock(ctx context.Context) error {
	st, err := a.settings.Load(ctx)
	if err != nil {
		return err
	}
	if !st.RequestPassword {
		a.logger.Info("startup password disabled")
		return nil
	}

	presence, err := a.authSt.Check()
	if err != nil {
		return err
	}
	a.logger.Info("credential check", "presence", presence.String())

	outcome, err := a.gate.Unlock(ctx)
	if err != nil {
		return err
	}
	if outcome != auth.OutcomeUnlocked {
		a.logger.Info("startup aborted", "outcome", outcome.String())
		return ErrExit
	}
	return nil
}

// OpenNotes открывает базу заметок и проверяет сохраненную лицензию
func (a *App) OpenNotes(ctx context.Context) error {
	db, err := sqlite.New(ctx, a.paths.NotesDB)
	if err != nil {
		return fmt.Errorf("failed to open notes: %w", err)
	}
	a.notesDB = db
	a.closers = append(a.closers, db)

	a.notes = notes.NewService(db, a.cipher, a.logger)
	a.autosave = notes.NewAutosaver(a.notes, a.cfg.AutosaveDelay, a.logger, func(key string, id int64, err error) {
		if err == nil {
			a.logger.Debug("draft autosaved", "key", key, "id", id)
		}
	})

	if _, err := a.notes.CheckSize(a.paths.NotesDB); err != nil {
		a.logger.Warn("failed to check notes size", "error", err)
	}

	if _, err := a.license.Load(ctx); err != nil {
		a.logger.Error("license check failed", "error", err)
	}
	return nil
}

// StartBackground планирует проверку обновлений через UpdateDelay и
// запускает отправку очереди отзывов. Возвращает futures задач.
func (a *App) StartBackground(ctx context.Context) (updateCheck, drain *worker.Future) {
	updateCheck = a.pool.Submit(ctx, "update-check", func(ctx context.Context) (any, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(a.cfg.UpdateDelay):
		}

		rel, ok := a.updates.Check(ctx)
		if ok {
			a.io.Printf("\n%s %s is available. Run 'update' for details.\n", config.AppName, rel.Version)
		}
		return rel, nil
	})

	drain = a.pool.Submit(ctx, "feedback-drain", func(ctx context.Context) (any, error) {
		return nil, a.feedback.Run(ctx, a.cfg.FeedbackInterval)
	})

	return updateCheck, drain
}

// Cli returns a command shell wired to the app services.
// OpenNotes must have been called.
func (a *App) Cli(ctx context.Context) *cli.Cli {
	deviceID, err := device.ID(ctx, a.records, a.logger)
	if err != nil {
		a.logger.Error("device id unavailable", "error", err)
	}

	return cli.New(a.io, cli.Deps{
		Notes:     a.notes,
		Autosave:  a.autosave,
		Auth:      a.authSt,
		Gate:      a.gate,
		Settings:  a.settings,
		License:   a.license,
		Purchaser: license.NewPurchaser(a.client, a.license, a.emails, a.logger),
		Emails:    a.emails,
		Freemium:  a.counter,
		Feedback:  a.feedback,
		Updates:   a.updates,
		Pool:      a.pool,
		Logger:    a.logger,
		DeviceID:  deviceID,
	})
}

// Run проводит полный запуск и, если command пуст, открывает оболочку;
// иначе выполняет одну команду.
func (a *App) Run(ctx context.Context, command string) error {
	a.logger.Info("starting", "app", config.AppName, "version", a.version)

	if err := a.Unlock(ctx); err != nil {
		return err
	}

	if err := a.OpenNotes(ctx); err != nil {
		return err
	}

	shell := a.Cli(ctx)

	if command != "" {
		_, err := shell.Execute(ctx, command)
		if ferr := a.autosave.Flush(ctx); ferr != nil {
			a.logger.Error("failed to flush drafts", "error", ferr)
		}
		return err
	}

	bgCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.StartBackground(bgCtx)

	a.io.Printf("%s %s\n", config.AppName, a.updates.CurrentVersion())
	return shell.Shell(ctx)
}

// Close останавливает фоновые задачи и закрывает хранилища
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Shutdown()
	}
	if a.autosave != nil {
		if err := a.autosave.Flush(context.Background()); err != nil {
			a.logger.Error("failed to flush drafts", "error", err)
		}
		a.autosave.Stop()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Error("failed to close storage", "error", err)
		}
	}
	a.closers = nil
}
