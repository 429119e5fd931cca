package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/models"
)

const sourceFlowmind = constants.SourceFlowmind

// EntryStore is the slice of storage.Provider the local calendar needs.
type EntryStore interface {
	AddEntry(ctx context.Context, e models.CalendarEntry) error
	ListEntries(ctx context.Context, personID, day string) ([]models.CalendarEntry, error)
}

// Local keeps the calendar in flowmind's own database.
type Local struct {
	store EntryStore
	now   func() time.Time
}

func NewLocal(store EntryStore) *Local {
	return &Local{store: store, now: time.Now}
}

func (l *Local) ListExisting(ctx context.Context, personID, day string) ([]models.Commitment, error) {
	entries, err := l.store.ListEntries(ctx, personID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar entries: %w", err)
	}

	out := make([]models.Commitment, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Commitment())
	}
	return out, nil
}

func (l *Local) WriteActivities(ctx context.Context, personID, day string, acts []models.PlacedActivity) (WriteResult, error) {
	res := WriteResult{WrittenIDs: make([]string, 0, len(acts))}
	for _, a := range acts {
		entry := models.CalendarEntry{
			ID:          uuid.NewString(),
			PersonID:    personID,
			Day:         day,
			Label:       a.Title,
			Source:      sourceFlowmind,
			Category:    a.Category,
			Description: a.Description,
			Start:       a.Interval.Start,
			End:         a.Interval.End,
			CreatedAt:   l.now(),
		}
		if err := l.store.AddEntry(ctx, entry); err != nil {
			return res, fmt.Errorf("failed to write %q: %w", a.Title, err)
		}
		res.WrittenIDs = append(res.WrittenIDs, entry.ID)
	}
	return res, nil
}
