// Package google implements the calendar gateway on the Google Calendar v3
// API, operating on each linked user's primary calendar.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/agendavoz/agendavoz/pkg/calendar"
	"github.com/agendavoz/agendavoz/pkg/token"
)

const calendarID = "primary"

// findHorizon caps how far ahead FindEvent searches.
const findHorizon = 365 * 24 * time.Hour

// Gateway talks to the Google Calendar API on behalf of linked users. A
// fresh service is built per call from the user's oauth2 client; the API
// client itself carries no per-user state worth caching.
type Gateway struct {
	tokens *token.Source
	loc    *time.Location
	now    func() time.Time

	// newService overrides service construction in tests.
	newService func(ctx context.Context, client *http.Client) (*gcal.Service, error)
}

// Option configures the gateway.
type Option func(*Gateway)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// WithServiceFactory overrides how the API service is built.
func WithServiceFactory(f func(ctx context.Context, client *http.Client) (*gcal.Service, error)) Option {
	return func(g *Gateway) { g.newService = f }
}

// NewGateway creates a Google-backed gateway. Events are created and listed
// in loc.
func NewGateway(tokens *token.Source, loc *time.Location, opts ...Option) *Gateway {
	g := &Gateway{
		tokens: tokens,
		loc:    loc,
		now:    time.Now,
		newService: func(ctx context.Context, client *http.Client) (*gcal.Service, error) {
			return gcal.NewService(ctx, option.WithHTTPClient(client))
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ calendar.Gateway = (*Gateway)(nil)

func (g *Gateway) service(ctx context.Context, userID string) (*gcal.Service, error) {
	client, err := g.tokens.Client(ctx, userID)
	if err != nil {
		if token.IsNoToken(err) {
			return nil, calendar.ErrAuthRequired
		}
		return nil, fmt.Errorf("%w: %v", calendar.ErrAPI, err)
	}
	svc, err := g.newService(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", calendar.ErrAPI, err)
	}
	return svc, nil
}

// EnsureAccess resolves a usable token for the user without calling the API.
func (g *Gateway) EnsureAccess(ctx context.Context, userID string) error {
	if _, err := g.tokens.Token(ctx, userID); err != nil {
		if token.IsNoToken(err) {
			return calendar.ErrAuthRequired
		}
		return fmt.Errorf("%w: %v", calendar.ErrAPI, err)
	}
	return nil
}

// CreateEvent creates a one-hour event starting at start.
func (g *Gateway) CreateEvent(ctx context.Context, userID, name string, start time.Time) (*calendar.Event, error) {
	svc, err := g.service(ctx, userID)
	if err != nil {
		return nil, err
	}

	item := &gcal.Event{
		Summary:     name,
		Description: name,
		Start:       &gcal.EventDateTime{DateTime: start.In(g.loc).Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: start.Add(calendar.DefaultEventDuration).In(g.loc).Format(time.RFC3339)},
	}

	created, err := svc.Events.Insert(calendarID, item).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}
	return g.fromItem(created)
}

// EventsByDate lists events starting on day, ordered by start time.
func (g *Gateway) EventsByDate(ctx context.Context, userID string, day time.Time) ([]calendar.Event, error) {
	svc, err := g.service(ctx, userID)
	if err != nil {
		return nil, err
	}

	from, to := calendar.DayWindow(day.In(g.loc))
	list, err := svc.Events.List(calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapError(err)
	}

	out := make([]calendar.Event, 0, len(list.Items))
	for _, item := range list.Items {
		if item.Status == "cancelled" {
			continue
		}
		ev, err := g.fromItem(item)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, nil
}

// FindEvent returns the first non-cancelled future event whose summary
// contains name, or nil. The v3 list API has no substring filter, so the
// match runs client-side over the next year of events.
func (g *Gateway) FindEvent(ctx context.Context, userID, name string) (*calendar.Event, error) {
	svc, err := g.service(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := g.now().In(g.loc)
	list, err := svc.Events.List(calendarID).
		TimeMin(now.Format(time.RFC3339)).
		TimeMax(now.Add(findHorizon).Format(time.RFC3339)).
		Q(name).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(50).
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapError(err)
	}

	lower := strings.ToLower(name)
	for _, item := range list.Items {
		if item.Status == "cancelled" {
			continue
		}
		if !strings.Contains(strings.ToLower(item.Summary), lower) {
			continue
		}
		return g.fromItem(item)
	}
	return nil, nil
}

// UpdateEvent patches only the fields that are set.
func (g *Gateway) UpdateEvent(ctx context.Context, userID, eventID string, fields calendar.Fields) (*calendar.Event, error) {
	svc, err := g.service(ctx, userID)
	if err != nil {
		return nil, err
	}

	patch := &gcal.Event{}
	if fields.Subject != nil {
		patch.Summary = *fields.Subject
	}
	if fields.Start != nil {
		patch.Start = &gcal.EventDateTime{DateTime: fields.Start.In(g.loc).Format(time.RFC3339)}
	}
	if fields.End != nil {
		patch.End = &gcal.EventDateTime{DateTime: fields.End.In(g.loc).Format(time.RFC3339)}
	}

	updated, err := svc.Events.Patch(calendarID, eventID, patch).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}
	return g.fromItem(updated)
}

// DeleteEvent removes the event. 404 and 410 both mean it is already gone.
func (g *Gateway) DeleteEvent(ctx context.Context, userID, eventID string) (bool, error) {
	svc, err := g.service(ctx, userID)
	if err != nil {
		return false, err
	}

	if err := svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		var ge *googleapi.Error
		if errors.As(err, &ge) && (ge.Code == http.StatusNotFound || ge.Code == http.StatusGone) {
			return false, nil
		}
		return false, mapError(err)
	}
	return true, nil
}

func (g *Gateway) fromItem(item *gcal.Event) (*calendar.Event, error) {
	start, err := g.parseItemTime(item.Start)
	if err != nil {
		return nil, err
	}
	end, err := g.parseItemTime(item.End)
	if err != nil {
		return nil, err
	}
	return &calendar.Event{
		ID:      item.Id,
		Subject: item.Summary,
		Start:   start,
		End:     end,
		Body:    item.Description,
	}, nil
}

// parseItemTime handles both timed events (DateTime) and all-day events
// (Date only).
func (g *Gateway) parseItemTime(edt *gcal.EventDateTime) (time.Time, error) {
	if edt == nil {
		return time.Time{}, fmt.Errorf("%w: event without time", calendar.ErrAPI)
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: bad event time %q: %v", calendar.ErrAPI, edt.DateTime, err)
		}
		return t.In(g.loc), nil
	}
	t, err := time.ParseInLocation("2006-01-02", edt.Date, g.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad event date %q: %v", calendar.ErrAPI, edt.Date, err)
	}
	return t, nil
}

func mapError(err error) error {
	var ge *googleapi.Error
	if errors.As(err, &ge) && (ge.Code == http.StatusUnauthorized || ge.Code == http.StatusForbidden) {
		return calendar.ErrAuthRequired
	}
	return fmt.Errorf("%w: %v", calendar.ErrAPI, err)
}
