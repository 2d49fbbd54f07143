// Package auth хранит хеши пароля приложения и кода восстановления
// и управляет разблокировкой при запуске.
package auth

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/iudanet/thoughtbook/internal/crypto"
	"github.com/iudanet/thoughtbook/internal/validation"
)

// State состояние хранилища учетных данных
type State int

const (
	// StateNoCredential файл пароля еще не проверялся или отсутствует
	StateNoCredential State = iota
	// StateAwaitingFirstSetup файла пароля нет, нужна первичная настройка
	StateAwaitingFirstSetup
	// StateLocked пароль задан, но не введен
	StateLocked
	// StateUnlocked пароль введен верно
	StateUnlocked
)

func (s State) String() string {
	switch s {
	case StateNoCredential:
		return "no-credential"
	case StateAwaitingFirstSetup:
		return "awaiting-first-setup"
	case StateLocked:
		return "locked"
	case StateUnlocked:
		return "unlocked"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Presence результат проверки наличия учетных данных
type Presence int

const (
	// Fresh файла пароля нет (первый запуск)
	Fresh Presence = iota
	// Existing пароль уже настроен
	Existing
)

func (p Presence) String() string {
	if p == Fresh {
		return "fresh"
	}
	return "existing"
}

var (
	// ErrNotConfigured пароль еще не настроен
	ErrNotConfigured = errors.New("password is not configured")
	// ErrWrongPassword неверный текущий пароль
	ErrWrongPassword = errors.New("wrong password")
	// ErrWrongRecoveryCode неверный код восстановления
	ErrWrongRecoveryCode = errors.New("wrong recovery code")
)

// Store хранит SHA256 хеш пароля (pass.pass) и хеш кода восстановления
// (recovery.key) в отдельных однострочных файлах. Хеш восстановления
// не меняется при смене пароля.
//
// Старый формат pass.pass из двух строк (пароль, затем код восстановления)
// поддерживается: вторая строка используется, если recovery.key нет,
// и сохраняется при перезаписи пароля.
type Store struct {
	logger       *slog.Logger
	passwordPath string
	recoveryPath string
	state        State
	mu           sync.Mutex
}

// NewStore создает хранилище учетных данных
func NewStore(passwordPath, recoveryPath string, logger *slog.Logger) *Store {
	return &Store{
		logger:       logger,
		passwordPath: passwordPath,
		recoveryPath: recoveryPath,
		state:        StateNoCredential,
	}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Check проверяет наличие файла пароля и переводит хранилище
// в AwaitingFirstSetup (Fresh) или Locked (Existing).
func (s *Store) Check() (Presence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := fileExists(s.passwordPath)
	if err != nil {
		return Fresh, err
	}

	if !ok {
		s.state = StateAwaitingFirstSetup
		return Fresh, nil
	}

	if s.state != StateUnlocked {
		s.state = StateLocked
	}
	return Existing, nil
}

// Setup записывает хеши пароля и кода восстановления.
// После успешной настройки хранилище разблокировано.
func (s *Store) Setup(password, recoveryCode string) error {
	if err := validation.ValidatePassword(password); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}
	if err := validation.ValidatePassword(recoveryCode); err != nil {
		return fmt.Errorf("invalid recovery code: %w", err)
	}

	passwordHash, err := crypto.HashSecret(password)
	if err != nil {
		return err
	}
	recoveryHash, err := crypto.HashSecret(recoveryCode)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeLine(s.recoveryPath, recoveryHash); err != nil {
		return fmt.Errorf("failed to save recovery hash: %w", err)
	}
	if err := writeLine(s.passwordPath, passwordHash); err != nil {
		return fmt.Errorf("failed to save password hash: %w", err)
	}

	s.state = StateUnlocked
	s.logger.Info("password configured")
	return nil
}

// Verify сравнивает кандидата с сохраненным хешем.
// Ограничения числа попыток нет.
func (s *Store) Verify(candidate string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := readLines(s.passwordPath)
	if err != nil {
		return false, err
	}

	if !crypto.VerifySecret(candidate, lines[0]) {
		s.logger.Warn("wrong password entered")
		return false, nil
	}

	s.state = StateUnlocked
	return true, nil
}

// VerifyRecovery проверяет код восстановления без изменения пароля.
// Если код восстановления не настроен, любой код неверен.
func (s *Store) VerifyRecovery(recoveryCode string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.recoveryHash()
	if err != nil {
		return false, err
	}
	return stored != "" && crypto.VerifySecret(recoveryCode, stored), nil
}

// Recover перезаписывает хеш пароля, если код восстановления верный.
// Возвращает false без ошибки при неверном коде.
func (s *Store) Recover(recoveryCode, newPassword string) (bool, error) {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return false, fmt.Errorf("invalid password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.recoveryHash()
	if err != nil {
		return false, err
	}

	if stored == "" || !crypto.VerifySecret(recoveryCode, stored) {
		s.logger.Warn("wrong recovery code entered")
		return false, nil
	}

	passwordHash, err := crypto.HashSecret(newPassword)
	if err != nil {
		return false, err
	}

	if err := s.writePassword(passwordHash); err != nil {
		return false, fmt.Errorf("failed to save password hash: %w", err)
	}

	// после сброса нужно войти с новым паролем
	s.state = StateLocked
	s.logger.Info("password reset with recovery code")
	return true, nil
}

// Change меняет пароль после проверки текущего. Код восстановления не меняется.
func (s *Store) Change(oldPassword, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := readLines(s.passwordPath)
	if err != nil {
		return err
	}

	if !crypto.VerifySecret(oldPassword, lines[0]) {
		return ErrWrongPassword
	}

	passwordHash, err := crypto.HashSecret(newPassword)
	if err != nil {
		return err
	}

	if err := s.writePassword(passwordHash); err != nil {
		return fmt.Errorf("failed to save password hash: %w", err)
	}

	s.logger.Info("password changed")
	return nil
}

// Lock возвращает хранилище в Locked, если пароль настроен
func (s *Store) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateUnlocked {
		s.state = StateLocked
	}
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
}

// recoveryHash возвращает хеш кода восстановления из recovery.key,
// а при его отсутствии вторую строку pass.pass. Пустая строка без ошибки
// означает, что код восстановления не настроен.
func (s *Store) recoveryHash() (string, error) {
	lines, err := readLines(s.recoveryPath)
	if err == nil {
		return lines[0], nil
	}
	if !errors.Is(err, ErrNotConfigured) {
		return "", err
	}

	lines, err = readLines(s.passwordPath)
	if err != nil {
		return "", err
	}
	if len(lines) < 2 {
		s.logger.Warn("recovery code is not configured")
		return "", nil
	}
	return lines[1], nil
}

// writePassword заменяет первую строку pass.pass, остальные строки не трогает
func (s *Store) writePassword(hash string) error {
	lines, err := readLines(s.passwordPath)
	if err != nil && !errors.Is(err, ErrNotConfigured) {
		return err
	}
	if len(lines) == 0 {
		lines = []string{hash}
	} else {
		lines[0] = hash
	}
	return writeLine(s.passwordPath, strings.Join(lines, "\n"))
}

// readLines читает непустые строки файла.
// ErrNotConfigured, если файла нет или он пустой.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(lines) == 0 {
		return nil, ErrNotConfigured
	}
	return lines, nil
}

func writeLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(line+"\n"), 0o600)
}
