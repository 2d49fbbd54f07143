// Package config загружает конфигурацию Thought Book.
//
// Источники в порядке приоритета (последующие перекрывают предыдущие):
//
//  1. Значения по умолчанию (LoadDefaults).
//  2. JSON файл, указанный флагом --config.
//  3. Флаги командной строки, явно заданные пользователем.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/iudanet/thoughtbook/internal/models"
)

// Application constants.
const (
	AppName      = "Thought Book"
	AppShortName = "BMTB"
	AppVersion   = "1.0.0"
	// PremiumPrice цена премиум лицензии в минимальных единицах валюты
	PremiumPrice = 5000
)

// Record store backends.
const (
	BackendFiles = "files"
	BackendBolt  = "bolt"
)

// Config holds runtime settings of the client application.
type Config struct {
	DataDir          string        `json:"data_dir"`
	ServerURL        string        `json:"server_url"`
	UpdateURL        string        `json:"update_url"`
	Cipher           string        `json:"cipher"`
	RecordBackend    string        `json:"record_backend"`
	PublicKeyFile    string        `json:"public_key_file"`
	FeedbackInterval time.Duration `json:"-"`
	AutosaveDelay    time.Duration `json:"-"`
	UpdateDelay      time.Duration `json:"-"`
	Workers          int           `json:"workers"`
	NoteLimit        int           `json:"note_limit"`
	MaxUpgradeRemind int           `json:"max_upgrade_remind"`
	Debug            bool          `json:"debug"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = DefaultDataDir()
	c.ServerURL = "http://localhost:8080"
	c.UpdateURL = "http://localhost:8080/update.json"
	c.Cipher = "shift"
	c.RecordBackend = BackendFiles
	c.PublicKeyFile = ""
	c.FeedbackInterval = 60 * time.Second
	c.AutosaveDelay = 500 * time.Millisecond
	c.UpdateDelay = 2 * time.Second
	c.Workers = 4
	c.NoteLimit = models.DefaultNoteCountLimit
	c.MaxUpgradeRemind = models.DefaultMaxUpgradeRemind
	c.Debug = false
}

// DefaultDataDir возвращает <user config dir>/BM/Thought Book.
// Если каталог пользователя не определен, используется домашний каталог.
func DefaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return filepath.Join(".", "BM", AppName)
		}
		base = home
	}
	return filepath.Join(base, "BM", AppName)
}

// Load builds Config from defaults and the optional JSON file at path.
// Flags are applied separately by ApplyFlags.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path == "" {
		return cfg, nil
	}

	if err := parseJSON(cfg, path); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Paths resolves file locations inside DataDir.
func (c *Config) Paths() Paths {
	return NewPaths(c.DataDir)
}
