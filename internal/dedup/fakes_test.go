package dedup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/willofcode/flowmind/internal/calendar"
	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/models"
)

type fakeMarkers struct {
	mu       sync.Mutex
	markers  map[string]bool
	claims   map[string]string
	pending  map[string]bool
	tokens   int
	denyNext bool
	readErr  error
}

func newFakeMarkers() *fakeMarkers {
	return &fakeMarkers{markers: map[string]bool{}, claims: map[string]string{}, pending: map[string]bool{}}
}

func dayKey(personID, day string) string { return personID + "/" + day }

func (f *fakeMarkers) HasMarker(ctx context.Context, personID, day string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return false, f.readErr
	}
	return f.markers[dayKey(personID, day)], nil
}

func (f *fakeMarkers) SetMarkerIfAbsent(ctx context.Context, personID, day string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := dayKey(personID, day)
	if f.markers[k] {
		return false, nil
	}
	f.markers[k] = true
	return true, nil
}

func (f *fakeMarkers) ClaimDay(ctx context.Context, personID, day string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.denyNext {
		f.denyNext = false
		return "", nil
	}
	k := dayKey(personID, day)
	if f.claims[k] != "" {
		return "", nil
	}
	f.tokens++
	token := fmt.Sprintf("token-%d", f.tokens)
	f.claims[k] = token
	return token, nil
}

func (f *fakeMarkers) ReleaseDay(ctx context.Context, personID, day, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := dayKey(personID, day)
	if f.claims[k] == token {
		delete(f.claims, k)
	}
	return nil
}

func (f *fakeMarkers) MarkPending(ctx context.Context, personID, day string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[dayKey(personID, day)] = true
	return nil
}

func (f *fakeMarkers) IsPending(ctx context.Context, personID, day string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending[dayKey(personID, day)], nil
}

func (f *fakeMarkers) ClearPending(ctx context.Context, personID, day string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, dayKey(personID, day))
	return nil
}

func (f *fakeMarkers) has(personID, day string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markers[dayKey(personID, day)]
}

func (f *fakeMarkers) claimed(personID, day string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.claims[dayKey(personID, day)] != ""
}

func (f *fakeMarkers) isPending(personID, day string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending[dayKey(personID, day)]
}

// fakeCalendar stores entries in memory. failAfter >= 0 makes writes fail
// once that many activities have been written in a call.
type fakeCalendar struct {
	mu        sync.Mutex
	entries   []models.Commitment
	writes    int
	failAfter int
	shortBy   int
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{failAfter: -1}
}

func (f *fakeCalendar) ListExisting(ctx context.Context, personID, day string) ([]models.Commitment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Commitment(nil), f.entries...), nil
}

func (f *fakeCalendar) WriteActivities(ctx context.Context, personID, day string, acts []models.PlacedActivity) (calendar.WriteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := calendar.WriteResult{}
	for i, a := range acts {
		if f.failAfter >= 0 && i >= f.failAfter {
			return res, errors.New("calendar unavailable")
		}
		if i >= len(acts)-f.shortBy {
			break
		}
		f.writes++
		id := fmt.Sprintf("id-%d", f.writes)
		f.entries = append(f.entries, models.Commitment{
			ID: id, Label: a.Title, Source: constants.SourceFlowmind, TimeInterval: a.Interval,
		})
		res.WrittenIDs = append(res.WrittenIDs, id)
	}
	return res, nil
}

func (f *fakeCalendar) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}
