package calendar

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/logger"
	"github.com/willofcode/flowmind/internal/models"
	"github.com/willofcode/flowmind/internal/utils"
)

// Private extended properties that mark events written by flowmind.
const (
	propSource   = "flowmind_source"
	propPerson   = "flowmind_person"
	propCategory = "flowmind_category"
)

type GoogleOptions struct {
	// CalendarID defaults to "primary".
	CalendarID string
	// Workers bounds concurrent event inserts.
	Workers int
	// Location anchors day boundaries when listing events.
	Location      *time.Location
	ClientOptions []option.ClientOption
}

// Google reads and writes a Google Calendar. One calendar belongs to one
// person; the person ID is recorded on written events for traceability.
type Google struct {
	svc        *gcal.Service
	calendarID string
	workers    int
	loc        *time.Location
}

func NewGoogle(ctx context.Context, opts GoogleOptions) (*Google, error) {
	svc, err := gcal.NewService(ctx, opts.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	calendarID := opts.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = constants.DefaultCalendarWorkers
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	return &Google{svc: svc, calendarID: calendarID, workers: workers, loc: loc}, nil
}

// CredentialOptions turns a credentials setting into client options. The
// value may be inline JSON or a path to a service-account file.
func CredentialOptions(creds string) []option.ClientOption {
	creds = strings.TrimSpace(creds)
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	if _, err := os.Stat(creds); err != nil {
		logger.Warn("Google credentials file not readable", "path", creds, "error", err)
	}
	return []option.ClientOption{option.WithCredentialsFile(creds), option.WithScopes(gcal.CalendarEventsScope)}
}

func (g *Google) ListExisting(ctx context.Context, personID, day string) ([]models.Commitment, error) {
	start, err := utils.ParseDateInLocation(day, g.loc)
	if err != nil {
		return nil, fmt.Errorf("invalid day %q: %w", day, err)
	}
	end := start.AddDate(0, 0, 1)

	var out []models.Commitment
	call := g.svc.Events.List(g.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	err = call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			c, ok := toCommitment(item)
			if ok {
				out = append(out, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	if out == nil {
		out = []models.Commitment{}
	}
	return out, nil
}

// toCommitment skips cancelled and all-day events, which do not block time slots.
func toCommitment(item *gcal.Event) (models.Commitment, bool) {
	if item == nil || item.Status == "cancelled" || item.Start == nil || item.End == nil {
		return models.Commitment{}, false
	}
	if item.Start.DateTime == "" || item.End.DateTime == "" {
		return models.Commitment{}, false
	}
	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return models.Commitment{}, false
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return models.Commitment{}, false
	}
	iv, err := models.NewInterval(start, end)
	if err != nil {
		return models.Commitment{}, false
	}

	source := constants.SourceExternal
	if item.ExtendedProperties != nil && item.ExtendedProperties.Private[propSource] == sourceFlowmind {
		source = sourceFlowmind
	}
	return models.Commitment{ID: item.Id, Label: item.Summary, Source: source, TimeInterval: iv}, true
}

func (g *Google) WriteActivities(ctx context.Context, personID, day string, acts []models.PlacedActivity) (WriteResult, error) {
	ids := make([]string, len(acts))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for i, a := range acts {
		eg.Go(func() error {
			ev := &gcal.Event{
				Summary:     a.Title,
				Description: a.Description,
				Start:       &gcal.EventDateTime{DateTime: a.Interval.Start.Format(time.RFC3339)},
				End:         &gcal.EventDateTime{DateTime: a.Interval.End.Format(time.RFC3339)},
				ExtendedProperties: &gcal.EventExtendedProperties{
					Private: map[string]string{
						propSource:   sourceFlowmind,
						propPerson:   personID,
						propCategory: string(a.Category),
					},
				},
			}
			created, err := g.svc.Events.Insert(g.calendarID, ev).Context(egCtx).Do()
			if err != nil {
				return fmt.Errorf("failed to insert %q: %w", a.Title, err)
			}
			ids[i] = created.Id
			return nil
		})
	}
	err := eg.Wait()

	res := WriteResult{WrittenIDs: make([]string, 0, len(acts))}
	for _, id := range ids {
		if id != "" {
			res.WrittenIDs = append(res.WrittenIDs, id)
		}
	}
	return res, err
}
