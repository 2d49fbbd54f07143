package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// jsonConfig DTO для чтения файла конфигурации.
// Интервалы задаются строками вида "500ms", "60s".
type jsonConfig struct {
	DataDir          *string `json:"data_dir"`
	ServerURL        *string `json:"server_url"`
	UpdateURL        *string `json:"update_url"`
	Cipher           *string `json:"cipher"`
	RecordBackend    *string `json:"record_backend"`
	PublicKeyFile    *string `json:"public_key_file"`
	FeedbackInterval *string `json:"feedback_interval"`
	AutosaveDelay    *string `json:"autosave_delay"`
	UpdateDelay      *string `json:"update_delay"`
	Workers          *int    `json:"workers"`
	NoteLimit        *int    `json:"note_limit"`
	MaxUpgradeRemind *int    `json:"max_upgrade_remind"`
	Debug            *bool   `json:"debug"`
}

// parseJSON overlays cfg with values present in the JSON file.
// Absent keys keep their current values.
func parseJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.UpdateURL, jc.UpdateURL)
	setString(&cfg.Cipher, jc.Cipher)
	setString(&cfg.RecordBackend, jc.RecordBackend)
	setString(&cfg.PublicKeyFile, jc.PublicKeyFile)

	durations := []struct {
		dst  *time.Duration
		src  *string
		name string
	}{
		{dst: &cfg.FeedbackInterval, src: jc.FeedbackInterval, name: "feedback_interval"},
		{dst: &cfg.AutosaveDelay, src: jc.AutosaveDelay, name: "autosave_delay"},
		{dst: &cfg.UpdateDelay, src: jc.UpdateDelay, name: "update_delay"},
	}
	for _, d := range durations {
		if d.src == nil {
			continue
		}
		v, err := time.ParseDuration(*d.src)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.dst = v
	}

	if jc.Workers != nil {
		cfg.Workers = *jc.Workers
	}
	if jc.NoteLimit != nil {
		cfg.NoteLimit = *jc.NoteLimit
	}
	if jc.MaxUpgradeRemind != nil {
		cfg.MaxUpgradeRemind = *jc.MaxUpgradeRemind
	}
	if jc.Debug != nil {
		cfg.Debug = *jc.Debug
	}

	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
