package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/willofcode/flowmind/internal/models"
	"github.com/willofcode/flowmind/internal/storage/postgres"
	"github.com/willofcode/flowmind/internal/storage/sqlite"
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Profiles. GetProfile wraps models.ErrNotFound when the person is unknown.
	GetProfile(ctx context.Context, personID string) (models.Profile, error)
	SaveProfile(ctx context.Context, p models.Profile) error
	GetAllProfiles(ctx context.Context) ([]models.Profile, error)

	// Calendar entries
	AddEntry(ctx context.Context, e models.CalendarEntry) error
	ListEntries(ctx context.Context, personID, day string) ([]models.CalendarEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	DeleteEntriesBySource(ctx context.Context, personID, day, source string) (int, error)

	// Day markers and claims
	HasMarker(ctx context.Context, personID, day string) (bool, error)
	SetMarkerIfAbsent(ctx context.Context, personID, day string) (bool, error)
	ClearMarker(ctx context.Context, personID, day string) error
	ClaimDay(ctx context.Context, personID, day string, ttl time.Duration) (string, error)
	ReleaseDay(ctx context.Context, personID, day, token string) error
	MarkPending(ctx context.Context, personID, day string) error
	IsPending(ctx context.Context, personID, day string) (bool, error)
	ClearPending(ctx context.Context, personID, day string) error

	// Utils
	GetConfigPath() string
}

var (
	_ Provider = (*sqlite.Store)(nil)
	_ Provider = (*postgres.Store)(nil)
)

// Open picks a backend from config: a postgres:// URL selects PostgreSQL,
// anything else is treated as a SQLite file path. The store is not loaded.
func Open(config string) (Provider, error) {
	if postgres.IsConnString(config) {
		if _, err := postgres.ValidateConnString(config); err != nil {
			return nil, err
		}
		return postgres.New(config), nil
	}

	path, err := ExpandPath(config)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

// ConfigDir returns the directory that holds logs and the SQLite file for
// config. PostgreSQL configs fall back to the default config directory.
func ConfigDir(config string) (string, error) {
	if postgres.IsConnString(config) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "flowmind"), nil
	}
	path, err := ExpandPath(config)
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// OpenTrusted opens a PostgreSQL connection string read from the OS keyring.
// Unlike Open it accepts embedded passwords.
func OpenTrusted(connStr string) (Provider, error) {
	if !postgres.IsConnString(connStr) && !strings.Contains(connStr, "host=") {
		return nil, fmt.Errorf("%w: keyring entry is not a PostgreSQL connection string", postgres.ErrInvalidConnectionString)
	}
	return postgres.New(connStr), nil
}
