package cipher

import (
	"fmt"
	"strings"
)

// printable повторяет набор печатных ASCII символов в фиксированном порядке:
// цифры, строчные, заглавные, пунктуация, пробельные. Индекс символа это его код.
const printable = "0123456789" +
	"abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~" +
	" \t\n\r\x0b\x0c"

// Substitution заменяет каждый печатный символ двузначным кодом.
// Символы вне таблицы проходят без изменений.
type Substitution struct {
	encode map[rune]string
	decode map[string]rune
}

// NewSubstitution создает шифр табличной подстановки
func NewSubstitution() *Substitution {
	s := &Substitution{
		encode: make(map[rune]string, len(printable)),
		decode: make(map[string]rune, len(printable)),
	}
	for i, r := range printable {
		code := fmt.Sprintf("%02d", i)
		s.encode[r] = code
		s.decode[code] = r
	}
	return s
}

// Name implements Cipher.
func (s *Substitution) Name() string { return NameSubstitution }

// Encrypt implements Cipher.
func (s *Substitution) Encrypt(plaintext string) string {
	var b strings.Builder
	b.Grow(len(plaintext) * 2)
	for _, r := range plaintext {
		if code, ok := s.encode[r]; ok {
			b.WriteString(code)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Decrypt implements Cipher.
// Пара символов декодируется, если она есть в таблице; иначе один символ
// копируется как есть. Мусор в шифротексте никогда не вызывает ошибку.
func (s *Substitution) Decrypt(ciphertext string) string {
	runes := []rune(ciphertext)
	var b strings.Builder
	b.Grow(len(ciphertext) / 2)
	for i := 0; i < len(runes); {
		if i+1 < len(runes) {
			if r, ok := s.decode[string(runes[i:i+2])]; ok {
				b.WriteRune(r)
				i += 2
				continue
			}
		}
		b.WriteRune(runes[i])
		i++
	}
	return b.String()
}
