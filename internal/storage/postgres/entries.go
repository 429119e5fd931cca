package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/willofcode/flowmind/internal/models"
)

func (s *Store) AddEntry(ctx context.Context, e models.CalendarEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calendar_entries
			(id, person_id, day, label, source, category, description, start_at, end_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.PersonID, e.Day, e.Label, e.Source, string(e.Category), e.Description, e.Start, e.End, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add calendar entry: %w", err)
	}
	return nil
}

// ListEntries returns a person's entries for one day ordered by start time.
func (s *Store) ListEntries(ctx context.Context, personID, day string) ([]models.CalendarEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, person_id, day, label, source, category, description, start_at, end_at, created_at
		FROM calendar_entries WHERE person_id = $1 AND day = $2
		ORDER BY start_at, id`, personID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.CalendarEntry{}
	for rows.Next() {
		var e models.CalendarEntry
		var category string
		if err := rows.Scan(&e.ID, &e.PersonID, &e.Day, &e.Label, &e.Source, &category, &e.Description, &e.Start, &e.End, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Category = models.Category(category)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM calendar_entries WHERE id = $1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("calendar entry %q: %w", id, models.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteEntriesBySource(ctx context.Context, personID, day, source string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM calendar_entries WHERE person_id = $1 AND day = $2 AND source = $3", personID, day, source)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
