package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HiddenDirName имя скрытой папки с лицензией и служебными файлами
const HiddenDirName = ".BMTB"

// Paths содержит расположение всех файлов приложения
type Paths struct {
	NotesDir  string
	HiddenDir string

	NotesDB      string // BMTbnotes.db
	PasswordFile string // pass.pass
	RecoveryFile string // recovery.key
	FeedbackFile string // feedbacks.json
	SettingsFile string // settings.json
	LogFile      string // app.log
	BoltFile     string // records.db, используется с record_backend=bolt

	LicenseFile string // license.json
	DeviceFile  string // config.json
	EmailFile   string // email_config.json
	MetricsFile string // metrics.json
	DeployInfo  string // deploy.info
}

// NewPaths resolves all file names relative to dataDir.
func NewPaths(dataDir string) Paths {
	hidden := filepath.Join(dataDir, HiddenDirName)
	return Paths{
		NotesDir:  dataDir,
		HiddenDir: hidden,

		NotesDB:      filepath.Join(dataDir, "BMTbnotes.db"),
		PasswordFile: filepath.Join(dataDir, "pass.pass"),
		RecoveryFile: filepath.Join(dataDir, "recovery.key"),
		FeedbackFile: filepath.Join(dataDir, "feedbacks.json"),
		SettingsFile: filepath.Join(dataDir, "settings.json"),
		LogFile:      filepath.Join(dataDir, "app.log"),
		BoltFile:     filepath.Join(dataDir, "records.db"),

		LicenseFile: filepath.Join(hidden, "license.json"),
		DeviceFile:  filepath.Join(hidden, "config.json"),
		EmailFile:   filepath.Join(hidden, "email_config.json"),
		MetricsFile: filepath.Join(hidden, "metrics.json"),
		DeployInfo:  filepath.Join(hidden, "deploy.info"),
	}
}

// Ensure создает каталоги данных, если их еще нет
func (p Paths) Ensure() error {
	for _, dir := range []string{p.NotesDir, p.HiddenDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return nil
}
