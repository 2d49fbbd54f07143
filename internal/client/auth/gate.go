package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iudanet/thoughtbook/internal/client/iocli"
	"github.com/iudanet/thoughtbook/internal/validation"
)

// Outcome результат интерактивной разблокировки
type Outcome int

const (
	// OutcomeUnlocked пароль введен верно или настроен впервые
	OutcomeUnlocked Outcome = iota
	// OutcomeExit пользователь ввел "exit"
	OutcomeExit
	// OutcomeCancelled ввод прерван (EOF, отмена первичной настройки)
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnlocked:
		return "unlocked"
	case OutcomeExit:
		return "exit"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Gate проводит пользователя через первичную настройку или ввод пароля.
//
// Пустой ввод пароля запускает восстановление, "exit" в любом поле
// завершает приложение. Неверный пароль запрашивается снова без ограничения попыток.
type Gate struct {
	store  *Store
	io     iocli.IO
	logger *slog.Logger
}

// NewGate создает Gate
func NewGate(store *Store, io iocli.IO, logger *slog.Logger) *Gate {
	return &Gate{store: store, io: io, logger: logger}
}

// Unlock блокирует до разблокировки, выхода или отмены
func (g *Gate) Unlock(ctx context.Context) (Outcome, error) {
	presence, err := g.store.Check()
	if err != nil {
		return OutcomeCancelled, err
	}

	if presence == Fresh {
		return g.firstSetup(ctx)
	}

	for {
		if err := ctx.Err(); err != nil {
			return OutcomeCancelled, err
		}

		entered, err := g.io.ReadPassword("Password (blank if forgotten, 'exit' to quit): ")
		if err != nil {
			return OutcomeCancelled, nil
		}

		switch {
		case validation.IsExit(entered):
			return OutcomeExit, nil
		case strings.TrimSpace(entered) == "":
			outcome, done, err := g.recover(ctx)
			if err != nil || done {
				return outcome, err
			}
			continue
		}

		ok, err := g.store.Verify(entered)
		if err != nil {
			return OutcomeCancelled, err
		}
		if ok {
			g.logger.Info("application unlocked")
			return OutcomeUnlocked, nil
		}

		g.io.Println("Incorrect password. Try again.")
	}
}

// Setup запускает первичную настройку пароля независимо от наличия файла.
// Используется, когда запрос пароля включают в настройках.
func (g *Gate) Setup(ctx context.Context) (Outcome, error) {
	return g.firstSetup(ctx)
}

// recover возвращает done=true, если разблокировка должна завершиться с outcome
func (g *Gate) recover(ctx context.Context) (Outcome, bool, error) {
	g.io.Println("Password recovery.")

	code, err := g.io.ReadPassword("Recovery code (blank to go back): ")
	if err != nil {
		return OutcomeCancelled, true, nil
	}
	if validation.IsExit(code) {
		return OutcomeExit, true, nil
	}
	if strings.TrimSpace(code) == "" {
		return OutcomeCancelled, false, nil
	}

	valid, err := g.store.VerifyRecovery(code)
	if err != nil {
		return OutcomeCancelled, true, err
	}
	if !valid {
		g.io.Println("Incorrect recovery code.")
		return OutcomeCancelled, false, nil
	}

	newPassword, outcome, done := g.readNewPassword(ctx)
	if done {
		return outcome, true, nil
	}

	ok, err := g.store.Recover(code, newPassword)
	if err != nil {
		return OutcomeCancelled, true, err
	}
	if !ok {
		g.io.Println("Incorrect recovery code.")
		return OutcomeCancelled, false, nil
	}

	g.io.Println("Password has been reset. Log in with the new password.")
	return OutcomeCancelled, false, nil
}

func (g *Gate) firstSetup(ctx context.Context) (Outcome, error) {
	g.io.Println("Welcome! Create a password to protect your notes.")

	password, outcome, done := g.readNewPassword(ctx)
	if done {
		return outcome, nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return OutcomeCancelled, err
		}

		code, err := g.io.ReadPassword("Recovery code (used if you forget the password): ")
		if err != nil || strings.TrimSpace(code) == "" {
			return OutcomeCancelled, nil
		}
		if validation.IsExit(code) {
			return OutcomeExit, nil
		}

		if err := g.store.Setup(password, code); err != nil {
			g.io.Printf("%v\n", err)
			continue
		}

		g.io.Println("Password saved. Keep your recovery code somewhere safe.")
		return OutcomeUnlocked, nil
	}
}

// readNewPassword запрашивает новый пароль с подтверждением.
// done=true означает, что нужно вернуть outcome (выход или отмена).
func (g *Gate) readNewPassword(ctx context.Context) (string, Outcome, bool) {
	for {
		if ctx.Err() != nil {
			return "", OutcomeCancelled, true
		}

		password, err := g.io.ReadPassword("New password: ")
		if err != nil || strings.TrimSpace(password) == "" {
			return "", OutcomeCancelled, true
		}
		if validation.IsExit(password) {
			return "", OutcomeExit, true
		}

		confirm, err := g.io.ReadPassword("Confirm password: ")
		if err != nil {
			return "", OutcomeCancelled, true
		}
		if validation.IsExit(confirm) {
			return "", OutcomeExit, true
		}

		if confirm != password {
			g.io.Println("Passwords do not match.")
			continue
		}

		return password, OutcomeUnlocked, false
	}
}
