package sqlite

import (
	"context"
	"fmt"
	"sort"
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.PersonID, e.Day, e.Label, e.Source, string(e.Category), e.Description,
		e.Start.Format(time.RFC3339Nano), e.End.Format(time.RFC3339Nano), e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to add calendar entry: %w", err)
	}
	return nil
}

// ListEntries returns a person's entries for one day ordered by start time.
func (s *Store) ListEntries(ctx context.Context, personID, day string) ([]models.CalendarEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, person_id, day, label, source, category, description, start_at, end_at, created_at
		FROM calendar_entries WHERE person_id = ? AND day = ?`, personID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.CalendarEntry{}
	for rows.Next() {
		var e models.CalendarEntry
		var category, start, end, created string
		if err := rows.Scan(&e.ID, &e.PersonID, &e.Day, &e.Label, &e.Source, &category, &e.Description, &start, &end, &created); err != nil {
			return nil, err
		}
		e.Category = models.Category(category)
		if e.Start, err = time.Parse(time.RFC3339Nano, start); err != nil {
			return nil, fmt.Errorf("entry %s: parsing start: %w", e.ID, err)
		}
		if e.End, err = time.Parse(time.RFC3339Nano, end); err != nil {
			return nil, fmt.Errorf("entry %s: parsing end: %w", e.ID, err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Start.Before(entries[j].Start)
	})
	return entries, nil
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM calendar_entries WHERE id = ?", id)
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

// DeleteEntriesBySource removes a person's entries of one source for a day.
func (s *Store) DeleteEntriesBySource(ctx context.Context, personID, day, source string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM calendar_entries WHERE person_id = ? AND day = ? AND source = ?", personID, day, source)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
