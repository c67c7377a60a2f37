package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/zcanzcan/tong2-portfolio-sub000/internal/util"
)

// defaultMaxListResults bounds the schedule listing.
const defaultMaxListResults = 50

// untitledSummary is the placeholder for events without a summary.
const untitledSummary = "(untitled)"

// reauthorizeRemedy is the operator guidance attached to terminal
// authentication failures.
const reauthorizeRemedy = "re-run the Google authorization flow from the admin calendar settings, or save a fresh access token"

// EventInput describes an event to create.
type EventInput struct {
	Summary       string `json:"summary"`
	StartDateTime string `json:"startDateTime"`
	EndDateTime   string `json:"endDateTime"`
	Description   string `json:"description"`
	Location      string `json:"location"`
}

// CreatedEvent is the normalized result of an event insertion.
type CreatedEvent struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	Start    string `json:"start"`
	End      string `json:"end"`
	HTMLLink string `json:"htmlLink"`
}

// CreateResult carries the created event plus any access token minted
// along the way, so the caller can write it through on success.
type CreateResult struct {
	Event CreatedEvent
	// RefreshedAccessToken is non-empty when a token refresh happened
	// during this write.
	RefreshedAccessToken string
}

// EventItem is a normalized listing entry.
type EventItem struct {
	Summary     string `json:"summary"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// EventClient reads and writes calendar events. Writes authenticate
// with a bearer token and retry exactly once after a refresh when the
// provider reports an authentication failure; reads prefer bearer auth
// and fall back to an API key.
type EventClient struct {
	oauth    *OAuthClient
	location *time.Location

	// endpoint overrides the Calendar API base URL; empty means Google.
	endpoint       string
	maxListResults int64
	nowFunc        func() time.Time
}

// NewEventClient creates an event client in the given display zone.
func NewEventClient(oauth *OAuthClient, location *time.Location) *EventClient {
	return &EventClient{
		oauth:          oauth,
		location:       location,
		maxListResults: defaultMaxListResults,
		nowFunc:        time.Now,
	}
}

// CreateEvent inserts an event into the credential record's calendar.
// The flow is an explicit two-phase attempt: try with the available
// token; if the provider reports an authentication failure and a
// refresh path exists, refresh once and try once more.
func (c *EventClient) CreateEvent(ctx context.Context, creds *Credentials, input EventInput) (*CreateResult, error) {
	var missing []string
	if creds.CalendarID == "" {
		missing = append(missing, "calendarId")
	}
	if input.Summary == "" {
		missing = append(missing, "summary")
	}
	if input.StartDateTime == "" {
		missing = append(missing, "startDateTime")
	}
	if len(missing) > 0 {
		return nil, &FlowError{
			Kind:    KindMissingRequiredFields,
			Message: "missing required fields: " + strings.Join(missing, ", "),
		}
	}

	calendarID := NormalizeCalendarID(creds.CalendarID)

	end := input.EndDateTime
	if end == "" {
		end = input.StartDateTime
	}

	token := creds.AccessToken
	refreshed := ""

	// No cached bearer token: refresh proactively before touching the
	// calendar API.
	if token == "" {
		if !creds.CanRefresh() {
			return nil, &FlowError{
				Kind:    KindAuthenticationRequired,
				Message: "no access token available and no refresh credentials to obtain one",
				Remedy:  reauthorizeRemedy,
			}
		}
		grant, err := c.oauth.Refresh(ctx, creds.RefreshToken, creds.OAuthClientID, creds.OAuthClientSecret)
		if err != nil {
			return nil, &FlowError{
				Kind:    KindAuthenticationRequired,
				Message: "token refresh failed before event creation",
				Detail:  Detail(err),
				Remedy:  reauthorizeRemedy,
				Err:     err,
			}
		}
		token = grant.AccessToken
		refreshed = token
	}

	created, err := c.insertEvent(ctx, token, calendarID, input, end)
	if err != nil && isAuthError(err) {
		// One refresh, one retry. A token minted moments ago that still
		// fails is a terminal authentication failure, not a retry case.
		if refreshed != "" || !creds.CanRefresh() {
			return nil, authFailure(err)
		}

		grant, rerr := c.oauth.Refresh(ctx, creds.RefreshToken, creds.OAuthClientID, creds.OAuthClientSecret)
		if rerr != nil {
			return nil, &FlowError{
				Kind:    KindAuthenticationFailed,
				Message: "token refresh failed after authentication error",
				Detail:  Detail(rerr),
				Remedy:  reauthorizeRemedy,
				Err:     rerr,
			}
		}
		refreshed = grant.AccessToken

		created, err = c.insertEvent(ctx, refreshed, calendarID, input, end)
		if err != nil && isAuthError(err) {
			return nil, authFailure(err)
		}
	}
	if err != nil {
		return nil, classifyEventError(err, KindEventCreationFailed)
	}

	return &CreateResult{Event: *created, RefreshedAccessToken: refreshed}, nil
}

// insertEvent performs a single insertion attempt with the given token.
func (c *EventClient) insertEvent(ctx context.Context, token, calendarID string, input EventInput, end string) (*CreatedEvent, error) {
	service, err := c.service(ctx, token, "")
	if err != nil {
		return nil, err
	}

	tz := c.location.String()
	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.StartDateTime,
			TimeZone: tz,
		},
		End: &calendar.EventDateTime{
			DateTime: end,
			TimeZone: tz,
		},
	}

	created, err := service.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	return &CreatedEvent{
		ID:       created.Id,
		Summary:  created.Summary,
		Start:    eventTime(created.Start),
		End:      eventTime(created.End),
		HTMLLink: created.HtmlLink,
	}, nil
}

// ListEvents returns the current month's events, ordered by start time.
// Refresh failures here are non-fatal: the reader falls back to the
// API key so the public page still renders.
func (c *EventClient) ListEvents(ctx context.Context, creds *Credentials) ([]EventItem, error) {
	if creds.CalendarID == "" {
		return nil, newError(KindMissingRequiredFields, "missing required fields: calendarId")
	}
	calendarID := NormalizeCalendarID(creds.CalendarID)

	start, end := util.MonthWindow(c.nowFunc(), c.location)

	token := creds.AccessToken
	if token == "" && creds.CanRefresh() {
		grant, err := c.oauth.Refresh(ctx, creds.RefreshToken, creds.OAuthClientID, creds.OAuthClientSecret)
		if err != nil {
			util.Warn("Token refresh failed for event listing, falling back to API key",
				"error", err,
			)
		} else {
			token = grant.AccessToken
		}
	}

	if token == "" && creds.APIKey == "" {
		return nil, newError(KindEventListFailed, "no access token or API key available")
	}

	service, err := c.service(ctx, token, creds.APIKey)
	if err != nil {
		return nil, classifyEventError(err, KindEventListFailed)
	}

	events, err := service.Events.List(calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(c.maxListResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyEventError(err, KindEventListFailed)
	}

	items := make([]EventItem, 0, len(events.Items))
	for _, e := range events.Items {
		summary := e.Summary
		if summary == "" {
			summary = untitledSummary
		}
		items = append(items, EventItem{
			Summary:     summary,
			Start:       eventTime(e.Start),
			End:         eventTime(e.End),
			Location:    e.Location,
			Description: e.Description,
		})
	}

	return items, nil
}

// service builds a Calendar API client. A bearer token is preferred
// over an API key when both are supplied.
func (c *EventClient) service(ctx context.Context, token, apiKey string) (*calendar.Service, error) {
	var opts []option.ClientOption
	switch {
	case token != "":
		opts = append(opts, option.WithTokenSource(oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token})))
	case apiKey != "":
		opts = append(opts, option.WithAPIKey(apiKey))
	default:
		opts = append(opts, option.WithoutAuthentication())
	}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}

	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return service, nil
}

// isAuthError reports whether the provider response indicates a bad or
// expired credential: a 401, or an error naming invalid credentials.
func isAuthError(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	if gerr.Code == http.StatusUnauthorized {
		return true
	}
	return strings.Contains(gerr.Message, "Invalid Credentials") ||
		strings.Contains(gerr.Body, "Invalid Credentials")
}

// authFailure wraps a terminal provider authentication error.
func authFailure(err error) *FlowError {
	fe := &FlowError{
		Kind:    KindAuthenticationFailed,
		Message: "calendar API rejected the access token",
		Remedy:  reauthorizeRemedy,
		Err:     err,
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		fe.Detail = gerr.Body
	}
	return fe
}

// classifyEventError maps a calendar API failure to the flow taxonomy.
// Timeouts are a network failure class of their own.
func classifyEventError(err error, kind ErrorKind) *FlowError {
	if isTimeout(err) {
		return &FlowError{Kind: KindNetworkTimeout, Message: "calendar API timed out", Err: err}
	}

	fe := &FlowError{Kind: kind, Message: "calendar API request failed", Err: err}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		fe.Message = fmt.Sprintf("calendar API returned status %d: %s", gerr.Code, gerr.Message)
		fe.Detail = gerr.Body
	}
	return fe
}

// eventTime picks the usable instant from an event boundary: the
// timed value when present, the all-day date otherwise.
func eventTime(t *calendar.EventDateTime) string {
	if t == nil {
		return ""
	}
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}
