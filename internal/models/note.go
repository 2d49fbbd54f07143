package models

import "time"

// DefaultNoteTitle заголовок, который получает заметка без названия
const DefaultNoteTitle = "New Note"

// Note представляет заметку в локальном хранилище.
// Content всегда хранится в преобразованном шифром виде и должен
// пройти Decrypt перед показом пользователю или поиском.
type Note struct {
	CreatedAt time.Time `json:"created_at"` // время создания
	UpdatedAt time.Time `json:"updated_at"` // время последнего сохранения
	Title     string    `json:"title"`      // заголовок (хранится открыто)
	Content   string    `json:"content"`    // содержимое в зашифрованном виде
	ID        int64     `json:"id"`         // суррогатный ключ, 0 для несохраненной заметки
}

// PlainNote заметка с расшифрованным содержимым, используется только в памяти
type PlainNote struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Title     string    `json:"title"`
	Body      string    `json:"content"`
	ID        int64     `json:"id"`
}

// LegacyNote формат старого JSON экспорта заметок
type LegacyNote struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
