// Package cipher содержит обратимые преобразования текста заметок.
//
// Это обфускация, а не шифрование: ключа нет (или он фиксирован),
// nonce не используется, одинаковый plaintext всегда даёт одинаковый результат.
// Не используйте эти преобразования для защиты секретов.
package cipher

import "fmt"

// Cipher преобразует текст заметки перед сохранением и после чтения.
// Decrypt(Encrypt(s)) == s для любой валидной UTF-8 строки.
type Cipher interface {
	Encrypt(plaintext string) string
	Decrypt(ciphertext string) string
	Name() string
}

const (
	// NameShift имя шифра сдвига
	NameShift = "shift"
	// NameSubstitution имя табличной подстановки
	NameSubstitution = "substitution"
)

// New возвращает шифр по имени. Пустое имя означает шифр сдвига с ключом по умолчанию.
func New(name string) (Cipher, error) {
	switch name {
	case "", NameShift:
		return NewShift(DefaultShiftKey), nil
	case NameSubstitution:
		return NewSubstitution(), nil
	default:
		return nil, fmt.Errorf("unknown cipher %q", name)
	}
}
