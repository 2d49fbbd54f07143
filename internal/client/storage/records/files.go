// Package records хранит JSON документы приложения в отдельных файлах,
// как их ожидают увидеть пользователи и установщик (settings.json, license.json и т.д.).
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/iudanet/thoughtbook/internal/client/storage"
)

// Location описывает файл одной записи
type Location struct {
	Path   string
	Hidden bool // файл помечается скрытым атрибутом (Windows)
}

// FileStore implements storage.RecordStore on top of JSON files.
type FileStore struct {
	locations map[string]Location
	hide      func(path string) error
	unhide    func(path string) error
	mu        sync.Mutex
}

// NewFileStore создает хранилище с фиксированным набором ключей
func NewFileStore(locations map[string]Location) *FileStore {
	copied := make(map[string]Location, len(locations))
	for k, v := range locations {
		copied[k] = v
	}
	return &FileStore{locations: copied, hide: hide, unhide: unhide}
}

func (s *FileStore) location(key string) (Location, error) {
	loc, ok := s.locations[key]
	if !ok {
		return Location{}, fmt.Errorf("unknown record %q", key)
	}
	return loc, nil
}

// Get implements storage.RecordStore.
// Скрытый файл на время чтения открывается (-H) и затем снова скрывается.
func (s *FileStore) Get(ctx context.Context, key string, v any) error {
	loc, err := s.location(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if loc.Hidden {
		if err := s.unhide(loc.Path); err != nil {
			return fmt.Errorf("failed to unhide %s: %w", key, err)
		}
	}

	data, err := os.ReadFile(loc.Path)
	if loc.Hidden && !errors.Is(err, os.ErrNotExist) {
		if herr := s.hide(loc.Path); herr != nil && err == nil {
			return fmt.Errorf("failed to hide %s: %w", key, herr)
		}
	}
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return storage.ErrRecordNotFound
		}
		return fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", storage.ErrRecordCorrupted, key, err)
	}

	return nil
}

// Put implements storage.RecordStore.
// Скрытый файл сначала открывается (-H), перезаписывается и снова скрывается (+H).
func (s *FileStore) Put(ctx context.Context, key string, v any) error {
	loc, err := s.location(key)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(loc.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	if loc.Hidden {
		if err := s.unhide(loc.Path); err != nil {
			return fmt.Errorf("failed to unhide %s: %w", key, err)
		}
	}

	if err := writeFileAtomic(loc.Path, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	if loc.Hidden {
		if err := s.hide(loc.Path); err != nil {
			return fmt.Errorf("failed to hide %s: %w", key, err)
		}
	}

	return nil
}

// Delete implements storage.RecordStore.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	loc, err := s.location(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if loc.Hidden {
		_ = s.unhide(loc.Path)
	}

	if err := os.Remove(loc.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	return nil
}

// Exists implements storage.RecordStore.
func (s *FileStore) Exists(ctx context.Context, key string) (bool, error) {
	loc, err := s.location(key)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(loc.Path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat %s: %w", key, err)
	}
}

// writeFileAtomic пишет во временный файл и переименовывает его,
// чтобы прерванная запись не оставила наполовину записанный JSON
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return nil
}

var _ storage.RecordStore = (*FileStore)(nil)
