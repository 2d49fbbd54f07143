package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// EmailPattern определяет допустимый формат email
var EmailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// ExitSentinel строка, введя которую пользователь завершает приложение
const ExitSentinel = "exit"

// IsExit сообщает, ввел ли пользователь команду выхода (без учета регистра)
func IsExit(input string) bool {
	return strings.EqualFold(strings.TrimSpace(input), ExitSentinel)
}

// ValidateEmail проверяет формат email
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if !EmailPattern.MatchString(email) {
		return fmt.Errorf("invalid email address %q", email)
	}

	return nil
}

// ValidatePassword проверяет пароль приложения или код восстановления.
// Пустая строка зарезервирована под "забыл пароль", "exit" под выход,
// поэтому оба значения недопустимы.
func ValidatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if IsExit(password) {
		return fmt.Errorf("%q is reserved and cannot be used as a password", ExitSentinel)
	}

	return nil
}
