// Package logging настраивает slog для клиента и сервера.
package logging

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for app.log.
const (
	MaxLogSizeMB  = 1
	MaxLogBackups = 3
)

// NewFileLogger создает логгер, пишущий в path с ротацией по размеру.
// Возвращенный io.Closer нужно закрыть при завершении приложения.
func NewFileLogger(path string, debug bool) (*slog.Logger, io.Closer) {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    MaxLogSizeMB,
		MaxBackups: MaxLogBackups,
	}

	return slog.New(slog.NewTextHandler(rotator, &slog.HandlerOptions{Level: level(debug)})), rotator
}

// NewJSONLogger логгер для сервера, пишет JSON записи в w
func NewJSONLogger(w io.Writer, debug bool) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level(debug)}))
}

// Discard логгер для тестов
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func level(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Tail возвращает последние n строк файла журнала, объединенные через \n.
// Отсутствующий файл не считается ошибкой.
func Tail(path string, n int) (string, error) {
	if n <= 0 {
		return "", nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to open log: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	// кольцевой буфер последних n строк
	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(ring) == n {
			ring = ring[1:]
		}
		ring = append(ring, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read log: %w", err)
	}

	return strings.Join(ring, "\n"), nil
}
