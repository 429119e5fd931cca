package sqlite

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
		"SELECT 1 FROM generation_markers WHERE person_id = ? AND day = ?", personID, day).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetMarkerIfAbsent inserts the marker and reports whether this call created it.
func (s *Store) SetMarkerIfAbsent(ctx context.Context, personID, day string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_markers (person_id, day, created_at) VALUES (?, ?, ?)
		ON CONFLICT(person_id, day) DO NOTHING`,
		personID, day, time.Now().UTC().Format(time.RFC3339Nano))
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
		"DELETE FROM generation_markers WHERE person_id = ? AND day = ?", personID, day); err != nil {
		return err
	}
	return s.ClearPending(ctx, personID, day)
}

// ClaimDay takes a lease on (person, day) and returns its token. An expired
// lease can be taken over; "" means another run holds it.
func (s *Store) ClaimDay(ctx context.Context, personID, day string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := uuid.NewString()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_claims (person_id, day, expires_at, token) VALUES (?, ?, ?, ?)
		ON CONFLICT(person_id, day) DO UPDATE SET expires_at = excluded.expires_at, token = excluded.token
		WHERE generation_claims.expires_at <= ?`,
		personID, day, now.Add(ttl).UnixMilli(), token, now.UnixMilli())
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

// ReleaseDay drops the lease only while token still holds it.
func (s *Store) ReleaseDay(ctx context.Context, personID, day, token string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM generation_claims WHERE person_id = ? AND day = ? AND token = ?", personID, day, token)
	return err
}

func (s *Store) MarkPending(ctx context.Context, personID, day string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_pending (person_id, day, created_at) VALUES (?, ?, ?)
		ON CONFLICT(person_id, day) DO NOTHING`,
		personID, day, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (s *Store) IsPending(ctx context.Context, personID, day string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM generation_pending WHERE person_id = ? AND day = ?", personID, day).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) ClearPending(ctx context.Context, personID, day string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM generation_pending WHERE person_id = ? AND day = ?", personID, day)
	return err
}
