// Package calendar holds the calendar collaborators: the place commitments
// are read from and generated activities are written to.
package calendar

import (
	"context"

	"github.com/willofcode/flowmind/internal/models"
)

// WriteResult lists the IDs of the entries that were written, in input order.
type WriteResult struct {
	WrittenIDs []string
}

type Calendar interface {
	// ListExisting returns every entry on the person's calendar for day,
	// including activities written by earlier runs (Source "flowmind").
	ListExisting(ctx context.Context, personID, day string) ([]models.Commitment, error)
	// WriteActivities writes acts and reports which were written. On error
	// the result still lists the entries written before the failure.
	WriteActivities(ctx context.Context, personID, day string, acts []models.PlacedActivity) (WriteResult, error)
}

// Externals filters out the activities written by flowmind, leaving the
// person's own commitments.
func Externals(entries []models.Commitment) []models.Commitment {
	out := make([]models.Commitment, 0, len(entries))
	for _, e := range entries {
		if e.Source != sourceFlowmind {
			out = append(out, e)
		}
	}
	return out
}

// HasGenerated reports whether any entry was written by flowmind.
func HasGenerated(entries []models.Commitment) bool {
	for _, e := range entries {
		if e.Source == sourceFlowmind {
			return true
		}
	}
	return false
}
