// Package outlook implements the calendar gateway on the Microsoft Graph
// REST API. Requests run with the user's delegated token; all responses are
// requested in the assistant's timezone via the Prefer header.
package outlook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pitabwire/util"

	"github.com/agendavoz/agendavoz/pkg/calendar"
	"github.com/agendavoz/agendavoz/pkg/token"
)

// DefaultBaseURL is the Graph endpoint for the signed-in user's calendar.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0/me/calendar"

const maxErrorBody = 4096

// Graph dateTime values carry no offset; the timeZone field names the zone.
const graphTimeLayout = "2006-01-02T15:04:05"

// Gateway talks to Microsoft Graph on behalf of linked users.
type Gateway struct {
	tokens  *token.Source
	baseURL string
	loc     *time.Location
	now     func() time.Time

	// client overrides the per-user oauth2 client when set; tests use it.
	client *http.Client
}

// Option configures the gateway.
type Option func(*Gateway)

// WithBaseURL points the gateway at a different Graph root.
func WithBaseURL(u string) Option {
	return func(g *Gateway) { g.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient fixes the HTTP client instead of building one per user.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// NewGateway creates a Graph-backed gateway. Events are created and listed
// in loc.
func NewGateway(tokens *token.Source, loc *time.Location, opts ...Option) *Gateway {
	g := &Gateway{
		tokens:  tokens,
		baseURL: DefaultBaseURL,
		loc:     loc,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ calendar.Gateway = (*Gateway)(nil)

// graphDateTime is Graph's {dateTime, timeZone} pair.
type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type graphEvent struct {
	ID          string        `json:"id,omitempty"`
	Subject     string        `json:"subject"`
	Start       graphDateTime `json:"start"`
	End         graphDateTime `json:"end"`
	Body        *graphBody    `json:"body,omitempty"`
	IsCancelled bool          `json:"isCancelled,omitempty"`
}

type graphEventList struct {
	Value []graphEvent `json:"value"`
}

// EnsureAccess resolves a usable token for the user without touching Graph.
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
	payload := graphEvent{
		Subject: name,
		Start:   g.toGraphTime(start),
		End:     g.toGraphTime(start.Add(calendar.DefaultEventDuration)),
		Body:    &graphBody{ContentType: "text", Content: name},
	}

	var created graphEvent
	if err := g.do(ctx, userID, http.MethodPost, g.baseURL+"/events", payload, &created); err != nil {
		return nil, err
	}
	ev, err := g.fromGraph(created)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// EventsByDate lists events starting on day, ordered by start time.
func (g *Gateway) EventsByDate(ctx context.Context, userID string, day time.Time) ([]calendar.Event, error) {
	from, to := calendar.DayWindow(day.In(g.loc))

	q := url.Values{}
	q.Set("startDateTime", from.Format(time.RFC3339))
	q.Set("endDateTime", to.Format(time.RFC3339))
	q.Set("$orderby", "start/dateTime")

	var list graphEventList
	if err := g.do(ctx, userID, http.MethodGet, g.baseURL+"/calendarView?"+q.Encode(), nil, &list); err != nil {
		return nil, err
	}

	out := make([]calendar.Event, 0, len(list.Value))
	for _, ge := range list.Value {
		if ge.IsCancelled {
			continue
		}
		ev, err := g.fromGraph(ge)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, nil
}

// FindEvent returns the first non-cancelled future event whose subject
// contains name, or nil.
func (g *Gateway) FindEvent(ctx context.Context, userID, name string) (*calendar.Event, error) {
	now := g.now().In(g.loc)

	q := url.Values{}
	q.Set("$filter", fmt.Sprintf("start/dateTime ge '%s' and contains(subject,'%s')",
		now.Format(graphTimeLayout), escapeODataLiteral(name)))
	q.Set("$orderby", "start/dateTime")
	q.Set("$top", "10")

	var list graphEventList
	if err := g.do(ctx, userID, http.MethodGet, g.baseURL+"/events?"+q.Encode(), nil, &list); err != nil {
		return nil, err
	}

	for _, ge := range list.Value {
		if ge.IsCancelled {
			continue
		}
		return g.fromGraph(ge)
	}
	return nil, nil
}

// UpdateEvent patches only the fields that are set.
func (g *Gateway) UpdateEvent(ctx context.Context, userID, eventID string, fields calendar.Fields) (*calendar.Event, error) {
	patch := map[string]any{}
	if fields.Subject != nil {
		patch["subject"] = *fields.Subject
	}
	if fields.Start != nil {
		patch["start"] = g.toGraphTime(*fields.Start)
	}
	if fields.End != nil {
		patch["end"] = g.toGraphTime(*fields.End)
	}

	var updated graphEvent
	if err := g.do(ctx, userID, http.MethodPatch, g.baseURL+"/events/"+url.PathEscape(eventID), patch, &updated); err != nil {
		return nil, err
	}
	return g.fromGraph(updated)
}

// DeleteEvent removes the event. A 404 means it is already gone.
func (g *Gateway) DeleteEvent(ctx context.Context, userID, eventID string) (bool, error) {
	err := g.do(ctx, userID, http.MethodDelete, g.baseURL+"/events/"+url.PathEscape(eventID), nil, nil)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// do performs one Graph request as the user and decodes the response into
// out when out is non-nil. Auth failures come back as ErrAuthRequired,
// everything else as ErrAPI.
func (g *Gateway) do(ctx context.Context, userID, method, rawURL string, body, out any) error {
	client := g.client
	if client == nil {
		c, err := g.tokens.Client(ctx, userID)
		if err != nil {
			if token.IsNoToken(err) {
				return calendar.ErrAuthRequired
			}
			return fmt.Errorf("%w: %v", calendar.ErrAPI, err)
		}
		client = c
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", calendar.ErrAPI, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", calendar.ErrAPI, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Prefer", fmt.Sprintf("outlook.timezone=%q", g.loc.String()))

	resp, err := client.Do(req)
	if err != nil {
		util.Log(ctx).WithError(err).Error("graph request failed")
		return fmt.Errorf("%w: %v", calendar.ErrAPI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		io.Copy(io.Discard, resp.Body)
		return calendar.ErrAuthRequired
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		io.Copy(io.Discard, resp.Body)
		return &statusError{code: resp.StatusCode, body: string(msg)}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", calendar.ErrAPI, err)
	}
	return nil
}

// statusError is a non-2xx Graph response. It unwraps to ErrAPI so callers
// that only check errors.Is(err, calendar.ErrAPI) keep working.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("calendar: provider request failed: HTTP %d: %s", e.code, e.body)
}

func (e *statusError) Unwrap() error { return calendar.ErrAPI }

func (g *Gateway) toGraphTime(t time.Time) graphDateTime {
	return graphDateTime{
		DateTime: t.In(g.loc).Format(graphTimeLayout),
		TimeZone: g.loc.String(),
	}
}

func (g *Gateway) fromGraph(ge graphEvent) (*calendar.Event, error) {
	start, err := g.parseGraphTime(ge.Start)
	if err != nil {
		return nil, err
	}
	end, err := g.parseGraphTime(ge.End)
	if err != nil {
		return nil, err
	}

	ev := &calendar.Event{
		ID:      ge.ID,
		Subject: ge.Subject,
		Start:   start,
		End:     end,
	}
	if ge.Body != nil {
		ev.Body = ge.Body.Content
	}
	return ev, nil
}

func (g *Gateway) parseGraphTime(dt graphDateTime) (time.Time, error) {
	// Graph appends fractional seconds ("2026-08-28T10:00:00.0000000").
	raw := dt.DateTime
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		raw = raw[:i]
	}

	loc := g.loc
	if dt.TimeZone != "" && dt.TimeZone != "UTC" {
		if l, err := time.LoadLocation(dt.TimeZone); err == nil {
			loc = l
		}
	} else if dt.TimeZone == "UTC" {
		loc = time.UTC
	}

	t, err := time.ParseInLocation(graphTimeLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad event time %q: %v", calendar.ErrAPI, dt.DateTime, err)
	}
	return t.In(g.loc), nil
}

// escapeODataLiteral doubles single quotes for OData string literals.
func escapeODataLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
