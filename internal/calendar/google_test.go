package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/willofcode/flowmind/internal/models"
)

type fakeCalendarAPI struct {
	mu       sync.Mutex
	inserted []*gcal.Event
	listed   string
}

func (f *fakeCalendarAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/calendars/primary/events") {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodGet:
		fmt.Fprint(w, f.listed)
	case http.MethodPost:
		var ev gcal.Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if ev.Summary == "Fail" {
			http.Error(w, `{"error":{"code":400,"message":"rejected"}}`, http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.inserted = append(f.inserted, &ev)
		ev.Id = fmt.Sprintf("ev-%d", len(f.inserted))
		f.mu.Unlock()
		json.NewEncoder(w).Encode(&ev)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestGoogle(t *testing.T, api *fakeCalendarAPI, workers int) *Google {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	g, err := NewGoogle(context.Background(), GoogleOptions{
		Workers:  workers,
		Location: time.UTC,
		ClientOptions: []option.ClientOption{
			option.WithEndpoint(srv.URL + "/"),
			option.WithHTTPClient(srv.Client()),
		},
	})
	if err != nil {
		t.Fatalf("NewGoogle failed: %v", err)
	}
	return g
}

func TestGoogle_ListExisting(t *testing.T) {
	api := &fakeCalendarAPI{listed: `{"items":[
		{"id":"e1","summary":"Standup","status":"confirmed",
		 "start":{"dateTime":"2025-03-10T09:00:00Z"},"end":{"dateTime":"2025-03-10T09:30:00Z"}},
		{"id":"e2","summary":"Holiday","start":{"date":"2025-03-10"},"end":{"date":"2025-03-11"}},
		{"id":"e3","summary":"Dropped","status":"cancelled",
		 "start":{"dateTime":"2025-03-10T11:00:00Z"},"end":{"dateTime":"2025-03-10T12:00:00Z"}},
		{"id":"e4","summary":"Box breathing",
		 "start":{"dateTime":"2025-03-10T10:00:00Z"},"end":{"dateTime":"2025-03-10T10:05:00Z"},
		 "extendedProperties":{"private":{"flowmind_source":"flowmind"}}}
	]}`}
	g := newTestGoogle(t, api, 2)

	got, err := g.ListExisting(context.Background(), "p1", "2025-03-10")
	if err != nil {
		t.Fatalf("ListExisting failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d commitments, want 2: %+v", len(got), got)
	}
	if got[0].Label != "Standup" || got[0].Source != "external" || !got[0].Start.Equal(at(9, 0)) {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Source != sourceFlowmind {
		t.Errorf("second source = %q, want flowmind", got[1].Source)
	}
}

func TestGoogle_WriteActivities(t *testing.T) {
	api := &fakeCalendarAPI{}
	g := newTestGoogle(t, api, 3)

	res, err := g.WriteActivities(context.Background(), "p1", "2025-03-10", []models.PlacedActivity{
		activity(models.CategoryBreathing, "Box breathing", at(10, 0), at(10, 5)),
		activity(models.CategoryWalk, "Walk", at(12, 0), at(12, 20)),
		activity(models.CategoryJournaling, "Journal", at(15, 0), at(15, 15)),
	})
	if err != nil {
		t.Fatalf("WriteActivities failed: %v", err)
	}
	if len(res.WrittenIDs) != 3 {
		t.Fatalf("WrittenIDs = %v, want 3", res.WrittenIDs)
	}
	for _, ev := range api.inserted {
		if ev.ExtendedProperties == nil || ev.ExtendedProperties.Private[propSource] != sourceFlowmind {
			t.Errorf("event %q missing source property", ev.Summary)
		}
		if ev.ExtendedProperties.Private[propPerson] != "p1" {
			t.Errorf("event %q person = %q", ev.Summary, ev.ExtendedProperties.Private[propPerson])
		}
	}
}

func TestGoogle_WriteActivities_Failure(t *testing.T) {
	api := &fakeCalendarAPI{}
	g := newTestGoogle(t, api, 1)

	res, err := g.WriteActivities(context.Background(), "p1", "2025-03-10", []models.PlacedActivity{
		activity(models.CategoryBreathing, "Box breathing", at(10, 0), at(10, 5)),
		activity(models.CategoryWalk, "Fail", at(12, 0), at(12, 20)),
		activity(models.CategoryJournaling, "Journal", at(15, 0), at(15, 15)),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(res.WrittenIDs) != 1 || res.WrittenIDs[0] != "ev-1" {
		t.Errorf("WrittenIDs = %v, want [ev-1]", res.WrittenIDs)
	}
}

func TestCredentialOptions(t *testing.T) {
	if opts := CredentialOptions("  "); opts != nil {
		t.Errorf("empty credentials gave %d options", len(opts))
	}
	if opts := CredentialOptions(`{"type":"service_account"}`); len(opts) != 1 {
		t.Errorf("inline JSON gave %d options, want 1", len(opts))
	}
	if opts := CredentialOptions("/nonexistent/creds.json"); len(opts) != 2 {
		t.Errorf("file path gave %d options, want 2", len(opts))
	}
}
