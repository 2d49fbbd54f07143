// Package update проверяет наличие новой версии приложения.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/iudanet/thoughtbook/pkg/api"
)

// CheckTimeout ограничивает запрос манифеста
const CheckTimeout = 5 * time.Second

// ManifestFetcher загружает манифест обновления
type ManifestFetcher interface {
	FetchManifest(ctx context.Context, url string) (*api.UpdateManifest, error)
}

// Release описывает доступную новую версию
type Release struct {
	Version string
	URL     string
	Notes   string
}

// deployInfo содержимое deploy.info, которое пишет установщик
type deployInfo struct {
	AppVersion string `json:"APP_VERSION"`
}

// Checker compares the manifest version with the installed one.
type Checker struct {
	fetcher      ManifestFetcher
	logger       *slog.Logger
	manifestURL  string
	buildVersion string
	deployInfo   string
}

// NewChecker создает Checker. deployInfoPath может указывать на
// несуществующий файл, тогда текущей считается buildVersion.
func NewChecker(fetcher ManifestFetcher, manifestURL, buildVersion, deployInfoPath string, logger *slog.Logger) *Checker {
	return &Checker{
		fetcher:      fetcher,
		manifestURL:  manifestURL,
		buildVersion: buildVersion,
		deployInfo:   deployInfoPath,
		logger:       logger,
	}
}

// CurrentVersion возвращает версию из deploy.info, если файл есть и
// читается, иначе версию сборки.
func (c *Checker) CurrentVersion() string {
	data, err := os.ReadFile(c.deployInfo)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("failed to read deploy.info", "error", err)
		}
		return c.buildVersion
	}

	var info deployInfo
	if err := json.Unmarshal(data, &info); err != nil || info.AppVersion == "" {
		c.logger.Warn("deploy.info has no usable version", "error", err)
		return c.buildVersion
	}
	return info.AppVersion
}

// Check запрашивает манифест. Любая ошибка логируется и означает
// "обновлений нет": фоновая проверка не должна мешать пользователю.
func (c *Checker) Check(ctx context.Context) (*Release, bool) {
	rel, newer, err := c.check(ctx)
	if err != nil {
		c.logger.Error("update check failed", "error", err)
		return nil, false
	}
	return rel, newer
}

func (c *Checker) check(ctx context.Context) (*Release, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	m, err := c.fetcher.FetchManifest(ctx, c.manifestURL)
	if err != nil {
		return nil, false, err
	}

	c.logger.Info("latest version found", "version", m.LatestVersion)

	current := c.CurrentVersion()
	newer, err := IsNewer(m.LatestVersion, current)
	if err != nil {
		return nil, false, err
	}
	if !newer {
		c.logger.Info("software up to date", "version", current)
		return nil, false, nil
	}

	return &Release{Version: m.LatestVersion, URL: m.URL, Notes: m.Notes}, true, nil
}

// IsNewer reports whether latest is a higher semantic version than current.
// The "v" prefix is optional in both.
func IsNewer(latest, current string) (bool, error) {
	l, c := canonical(latest), canonical(current)
	if !semver.IsValid(l) {
		return false, fmt.Errorf("invalid version %q", latest)
	}
	if !semver.IsValid(c) {
		return false, fmt.Errorf("invalid version %q", current)
	}
	return semver.Compare(l, c) > 0, nil
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
