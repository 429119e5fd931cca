package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/willofcode/flowmind/internal/models"
)

func (s *Store) GetProfile(ctx context.Context, personID string) (models.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT person_id, wake, sleep, timezone, updated_at FROM profiles WHERE person_id = ?", personID)

	var p models.Profile
	var updatedAt string
	if err := row.Scan(&p.PersonID, &p.Wake, &p.Sleep, &p.Timezone, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Profile{}, fmt.Errorf("profile %q: %w", personID, models.ErrNotFound)
		}
		return models.Profile{}, err
	}
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return p, nil
}

func (s *Store) SaveProfile(ctx context.Context, p models.Profile) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (person_id, wake, sleep, timezone, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(person_id) DO UPDATE SET
			wake = excluded.wake,
			sleep = excluded.sleep,
			timezone = excluded.timezone,
			updated_at = excluded.updated_at`,
		p.PersonID, p.Wake, p.Sleep, p.Timezone, p.UpdatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *Store) GetAllProfiles(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT person_id, wake, sleep, timezone, updated_at FROM profiles ORDER BY person_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		var updatedAt string
		if err := rows.Scan(&p.PersonID, &p.Wake, &p.Sleep, &p.Timezone, &updatedAt); err != nil {
			return nil, err
		}
		p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
