package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Flag names shared by the client commands.
const (
	FlagConfig        = "config"
	FlagDataDir       = "data-dir"
	FlagServer        = "server"
	FlagUpdateURL     = "update-url"
	FlagCipher        = "cipher"
	FlagRecordBackend = "record-backend"
	FlagPublicKey     = "public-key"
	FlagDebug         = "debug"
)

// RegisterFlags объявляет флаги конфигурации. Значения по умолчанию
// берутся из LoadDefaults, чтобы --help показывал реальные значения.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "Path to JSON config file")
	fs.String(FlagDataDir, d.DataDir, "Directory for notes and application data")
	fs.String(FlagServer, d.ServerURL, "License and feedback server URL")
	fs.String(FlagUpdateURL, d.UpdateURL, "Update manifest URL")
	fs.String(FlagCipher, d.Cipher, "Note cipher (shift, substitution)")
	fs.String(FlagRecordBackend, d.RecordBackend, "Record store backend (files, bolt)")
	fs.String(FlagPublicKey, "", "PEM file overriding the embedded license public key")
	fs.Bool(FlagDebug, false, "Enable debug logging")
}

// ApplyFlags перекрывает cfg только теми флагами, которые пользователь задал явно.
func ApplyFlags(cfg *Config, fs *pflag.FlagSet) error {
	strs := []struct {
		dst  *string
		name string
	}{
		{dst: &cfg.DataDir, name: FlagDataDir},
		{dst: &cfg.ServerURL, name: FlagServer},
		{dst: &cfg.UpdateURL, name: FlagUpdateURL},
		{dst: &cfg.Cipher, name: FlagCipher},
		{dst: &cfg.RecordBackend, name: FlagRecordBackend},
		{dst: &cfg.PublicKeyFile, name: FlagPublicKey},
	}

	for _, s := range strs {
		if !fs.Changed(s.name) {
			continue
		}
		v, err := fs.GetString(s.name)
		if err != nil {
			return fmt.Errorf("flag --%s: %w", s.name, err)
		}
		*s.dst = v
	}

	if fs.Changed(FlagDebug) {
		v, err := fs.GetBool(FlagDebug)
		if err != nil {
			return fmt.Errorf("flag --%s: %w", FlagDebug, err)
		}
		cfg.Debug = v
	}

	return cfg.Validate()
}

// Validate checks enum-like fields.
func (c *Config) Validate() error {
	switch c.RecordBackend {
	case BackendFiles, BackendBolt:
	default:
		return fmt.Errorf("unknown record backend %q", c.RecordBackend)
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}

	if c.NoteLimit < 1 || c.MaxUpgradeRemind < 0 {
		return fmt.Errorf("invalid freemium limits: note_limit=%d max_upgrade_remind=%d", c.NoteLimit, c.MaxUpgradeRemind)
	}

	return nil
}
