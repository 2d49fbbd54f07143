package iocli

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// Script это IO для тестов и неинтерактивного запуска: ответы берутся
// по порядку из заранее заданного списка, вывод копится в буфере.
// Когда ответы закончились, чтение возвращает io.EOF.
type Script struct {
	out     bytes.Buffer
	answers []string
	mu      sync.Mutex
}

// NewScript создает IO с заданными ответами
func NewScript(answers ...string) *Script {
	return &Script{answers: answers}
}

func (s *Script) Println(a ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(&s.out, a...)
}

func (s *Script) Printf(format string, a ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(&s.out, format, a...)
}

func (s *Script) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Write(p)
}

func (s *Script) ReadInput(prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.out.WriteString(prompt)
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

func (s *Script) ReadPassword(prompt string) (string, error) {
	return s.ReadInput(prompt)
}

// Output возвращает весь накопленный вывод
func (s *Script) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.String()
}

// Remaining количество неиспользованных ответов
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}
