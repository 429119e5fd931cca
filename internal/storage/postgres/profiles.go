package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/willofcode/flowmind/internal/models"
)

func (s *Store) GetProfile(ctx context.Context, personID string) (models.Profile, error) {
	var p models.Profile
	err := s.db.QueryRowContext(ctx,
		"SELECT person_id, wake, sleep, timezone, updated_at FROM profiles WHERE person_id = $1", personID).
		Scan(&p.PersonID, &p.Wake, &p.Sleep, &p.Timezone, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, fmt.Errorf("profile %q: %w", personID, models.ErrNotFound)
	}
	return p, err
}

func (s *Store) SaveProfile(ctx context.Context, p models.Profile) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (person_id, wake, sleep, timezone, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (person_id) DO UPDATE SET
			wake = EXCLUDED.wake,
			sleep = EXCLUDED.sleep,
			timezone = EXCLUDED.timezone,
			updated_at = EXCLUDED.updated_at`,
		p.PersonID, p.Wake, p.Sleep, p.Timezone, p.UpdatedAt)
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
		if err := rows.Scan(&p.PersonID, &p.Wake, &p.Sleep, &p.Timezone, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
