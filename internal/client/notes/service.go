// Package notes связывает хранилище заметок с шифром: в базу всегда
// попадает преобразованный текст, наружу отдается расшифрованный.
package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/iudanet/thoughtbook/internal/cipher"
	"github.com/iudanet/thoughtbook/internal/client/storage"
	"github.com/iudanet/thoughtbook/internal/models"
)

// SizeWarningBytes размер файла базы, после которого пишется предупреждение
const SizeWarningBytes = 10 * 1024 * 1024

// Service implements note operations on top of storage.NoteStorage.
type Service struct {
	store  storage.NoteStorage
	cipher cipher.Cipher
	logger *slog.Logger
}

// NewService создает сервис заметок
func NewService(store storage.NoteStorage, c cipher.Cipher, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		cipher: c,
		logger: logger,
	}
}

func normalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.DefaultNoteTitle
	}
	return title
}

// Create сохраняет новую заметку и возвращает ее id.
// Пустой заголовок заменяется на "New Note".
func (s *Service) Create(ctx context.Context, title, body string) (int64, error) {
	id, err := s.store.AddNote(ctx, normalizeTitle(title), s.cipher.Encrypt(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create note: %w", err)
	}

	s.logger.Debug("note created", "id", id)
	return id, nil
}

// Save вставляет заметку при id == 0, иначе обновляет существующую.
// Возвращает id сохраненной заметки.
func (s *Service) Save(ctx context.Context, id int64, title, body string) (int64, error) {
	if id == 0 {
		return s.Create(ctx, title, body)
	}

	if err := s.store.UpdateNote(ctx, id, normalizeTitle(title), s.cipher.Encrypt(body)); err != nil {
		return 0, fmt.Errorf("failed to save note %d: %w", id, err)
	}

	s.logger.Debug("note saved", "id", id)
	return id, nil
}

// Get returns a decrypted note.
func (s *Service) Get(ctx context.Context, id int64) (*models.PlainNote, error) {
	note, err := s.store.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decrypt(note), nil
}

// List returns decrypted notes, most recently updated first.
func (s *Service) List(ctx context.Context) ([]*models.PlainNote, error) {
	stored, err := s.store.ListNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	result := make([]*models.PlainNote, 0, len(stored))
	for _, n := range stored {
		result = append(result, s.decrypt(n))
	}
	return result, nil
}

// Count returns the number of notes.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.CountNotes(ctx)
}

// Delete удаляет заметку; отсутствующий id не ошибка
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteNote(ctx, id); err != nil {
		return fmt.Errorf("failed to delete note %d: %w", id, err)
	}
	s.logger.Info("note deleted", "id", id)
	return nil
}

// ClearAll удаляет все заметки
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.store.ClearNotes(ctx); err != nil {
		return err
	}
	s.logger.Info("all notes cleared")
	return nil
}

// Search ищет подстроку (без учета регистра) в заголовке и расшифрованном тексте.
// Зашифрованное содержимое сравнивать бессмысленно, поэтому поиск идет после Decrypt.
func (s *Service) Search(ctx context.Context, query string) ([]*models.PlainNote, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all, nil
	}

	result := make([]*models.PlainNote, 0)
	for _, n := range all {
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Body), q) {
			result = append(result, n)
		}
	}
	return result, nil
}

// ImportJSON импортирует старый экспорт вида [{"title": ..., "content": ...}]
// с открытым текстом. Содержимое шифруется перед записью.
func (s *Service) ImportJSON(ctx context.Context, r io.Reader) (int, error) {
	var legacy []models.LegacyNote
	if err := json.NewDecoder(r).Decode(&legacy); err != nil {
		return 0, fmt.Errorf("failed to decode notes: %w", err)
	}

	encrypted := make([]models.LegacyNote, 0, len(legacy))
	for _, n := range legacy {
		encrypted = append(encrypted, models.LegacyNote{
			Title:   normalizeTitle(n.Title),
			Content: s.cipher.Encrypt(n.Content),
		})
	}

	added, err := s.store.ImportNotes(ctx, encrypted)
	if err != nil {
		return 0, err
	}

	s.logger.Info("notes imported", "count", added)
	return added, nil
}

// ExportJSON пишет все заметки в открытом виде в формате импорта
func (s *Service) ExportJSON(ctx context.Context, w io.Writer) error {
	all, err := s.List(ctx)
	if err != nil {
		return err
	}

	out := make([]models.LegacyNote, 0, len(all))
	for _, n := range all {
		out = append(out, models.LegacyNote{Title: n.Title, Content: n.Body})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode notes: %w", err)
	}
	return nil
}

// CheckSize пишет предупреждение, если файл базы больше SizeWarningBytes.
// Возвращает размер файла.
func (s *Service) CheckSize(dbPath string) (int64, error) {
	info, err := os.Stat(dbPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to stat notes database: %w", err)
	}

	if info.Size() > SizeWarningBytes {
		s.logger.Warn("notes database is large", "path", dbPath, "bytes", info.Size())
	}
	return info.Size(), nil
}

func (s *Service) decrypt(n *models.Note) *models.PlainNote {
	return &models.PlainNote{
		ID:        n.ID,
		Title:     n.Title,
		Body:      s.cipher.Decrypt(n.Content),
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}
