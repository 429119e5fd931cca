package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

func (s *Store) HasMarker(ctx context.Context, personID, day string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM generation_markers WHERE person_id = $1 AND day = $2", personID, day).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) SetMarkerIfAbsent(ctx context.Context, personID, day string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_markers (person_id, day) VALUES ($1, $2)
		ON CONFLICT (person_id, day) DO NOTHING`, personID, day)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ClearMarker forgets the day's marker and any pending write record.
func (s *Store) ClearMarker(ctx context.Context, personID, day string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM generation_markers WHERE person_id = $1 AND day = $2", personID, day); err != nil {
		return err
	}
	return s.ClearPending(ctx, personID, day)
}

func (s *Store) ClaimDay(ctx context.Context, personID, day string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := uuid.NewString()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_claims (person_id, day, expires_at, token) VALUES ($1, $2, $3, $4)
		ON CONFLICT (person_id, day) DO UPDATE SET expires_at = EXCLUDED.expires_at, token = EXCLUDED.token
		WHERE generation_claims.expires_at <= $5`,
		personID, day, now.Add(ttl), token, now)
	if err != nil {
		return "", err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n != 1 {
		return "", nil
	}
	return token, nil
}

func (s *Store) ReleaseDay(ctx context.Context, personID, day, token string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM generation_claims WHERE person_id = $1 AND day = $2 AND token = $3", personID, day, token)
	return err
}

func (s *Store) MarkPending(ctx context.Context, personID, day string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_pending (person_id, day) VALUES ($1, $2)
		ON CONFLICT (person_id, day) DO NOTHING`, personID, day)
	return err
}

func (s *Store) IsPending(ctx context.Context, personID, day string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM generation_pending WHERE person_id = $1 AND day = $2", personID, day).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) ClearPending(ctx context.Context, personID, day string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM generation_pending WHERE person_id = $1 AND day = $2", personID, day)
	return err
}
