package cipher

import (
	"strings"
	"unicode/utf8"
)

// DefaultShiftKey ключ сдвига, которым записаны существующие заметки
const DefaultShiftKey = 3

const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
	surrogateLen = surrogateMax - surrogateMin + 1

	// scalarSpace количество валидных Unicode scalar values (без суррогатов)
	scalarSpace = utf8.MaxRune + 1 - surrogateLen
)

// Shift сдвигает каждый символ на фиксированное число позиций.
// Сдвиг выполняется по кругу в пространстве Unicode scalar values,
// поэтому результат всегда валидный UTF-8 и суррогаты не появляются.
type Shift struct {
	key int
}

// NewShift создает шифр сдвига. Ключ может быть отрицательным
// или больше размера алфавита, он нормализуется по модулю.
func NewShift(key int) *Shift {
	k := key % scalarSpace
	if k < 0 {
		k += scalarSpace
	}
	return &Shift{key: k}
}

// Name implements Cipher.
func (s *Shift) Name() string { return NameShift }

// Encrypt implements Cipher.
func (s *Shift) Encrypt(plaintext string) string {
	return s.apply(plaintext, s.key)
}

// Decrypt implements Cipher.
func (s *Shift) Decrypt(ciphertext string) string {
	return s.apply(ciphertext, scalarSpace-s.key)
}

func (s *Shift) apply(text string, offset int) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		idx := (scalarIndex(r) + offset) % scalarSpace
		b.WriteRune(indexScalar(idx))
	}
	return b.String()
}

// scalarIndex переводит руну в индекс без учета суррогатного диапазона
func scalarIndex(r rune) int {
	if r > surrogateMax {
		return int(r) - surrogateLen
	}
	return int(r)
}

func indexScalar(idx int) rune {
	if idx >= surrogateMin {
		return rune(idx + surrogateLen)
	}
	return rune(idx)
}
