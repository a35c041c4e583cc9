package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Event is a scheduled calendar entry. All-day entries never make it here;
// the client drops anything without concrete start/end instants.
type Event struct {
	ID    string
	Start time.Time
	End   time.Time
}

// Credentials is the result of a token refresh. RefreshToken echoes the input
// unless the provider issued a replacement.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// CalendarClient is the abstract calendar-provider capability the busy
// collector and credential refresher depend on. The Google implementation is
// injected in main; tests inject mocks.
type CalendarClient interface {
	ListEvents(ctx context.Context, accessToken, refreshToken, calendarID string, from, to time.Time) ([]Event, error)
	RefreshCredentials(ctx context.Context, refreshToken string) (Credentials, error)
}

// GoogleCalendar talks to the Google Calendar API on behalf of stored
// workshop/employee tokens.
type GoogleCalendar struct {
	Config *oauth2.Config
}

// NewGoogleCalendar builds the client from OAuth2 settings, or nil when they
// are not configured.
func NewGoogleCalendar(cfg Config) *GoogleCalendar {
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.GoogleRedirectURL == "" {
		return nil
	}
	return &GoogleCalendar{
		Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				calendar.CalendarReadonlyScope,
			},
			Endpoint: google.Endpoint,
		},
	}
}

func (g *GoogleCalendar) service(ctx context.Context, accessToken, refreshToken string) (*calendar.Service, error) {
	token := &oauth2.Token{AccessToken: accessToken, RefreshToken: refreshToken}
	client := g.Config.Client(ctx, token)
	return calendar.NewService(ctx, option.WithHTTPClient(client))
}

func (g *GoogleCalendar) ListEvents(ctx context.Context, accessToken, refreshToken, calendarID string, from, to time.Time) ([]Event, error) {
	srv, err := g.service(ctx, accessToken, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	events, err := srv.Events.List(calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		MaxResults(250).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	var out []Event
	for _, item := range events.Items {
		// Date-only entries are all-day events and do not block slots.
		if item.Start == nil || item.End == nil || item.Start.DateTime == "" || item.End.DateTime == "" {
			continue
		}
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			continue
		}
		out = append(out, Event{ID: item.Id, Start: start, End: end})
	}
	return out, nil
}

func (g *GoogleCalendar) RefreshCredentials(ctx context.Context, refreshToken string) (Credentials, error) {
	src := g.Config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return Credentials{}, fmt.Errorf("refresh token: %w", err)
	}
	creds := Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: refreshToken,
		Expiry:       token.Expiry,
	}
	if token.RefreshToken != "" {
		creds.RefreshToken = token.RefreshToken
	}
	if creds.Expiry.IsZero() {
		creds.Expiry = time.Now().Add(time.Hour)
	}
	return creds, nil
}

// primaryCalendarID finds the account's primary calendar, defaulting to
// "primary" when the listing fails.
func (g *GoogleCalendar) primaryCalendarID(ctx context.Context, accessToken, refreshToken string) string {
	srv, err := g.service(ctx, accessToken, refreshToken)
	if err != nil {
		return "primary"
	}
	list, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return "primary"
	}
	for _, item := range list.Items {
		if item.Primary {
			return item.Id
		}
	}
	return "primary"
}

// GoogleAuthHandler starts the OAuth2 connect flow for a workshop or an
// employee. The state names the owning entity so the callback knows where to
// persist the binding.
func (a *App) GoogleAuthHandler(c *gin.Context) {
	if a.Google == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google Calendar not configured"})
		return
	}

	workshopID := c.Query("workshop_id")
	employeeID := c.Query("employee_id")
	if workshopID == "" && employeeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workshop_id or employee_id required"})
		return
	}

	state := "workshop:" + workshopID
	if employeeID != "" {
		state = "employee:" + employeeID
	}

	// ApprovalForce makes Google reissue the refresh token on reconnects.
	url := a.Google.Config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	c.JSON(http.StatusOK, gin.H{
		"auth_url": url,
		"state":    state,
	})
}

// OAuth2CallbackHandler exchanges the authorization code and persists the
// calendar binding against the entity named in the state.
func (a *App) OAuth2CallbackHandler(c *gin.Context) {
	if a.Google == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google Calendar not configured"})
		return
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "authorization code required"})
		return
	}
	kind, ownerID, found := strings.Cut(state, ":")
	if !found || ownerID == "" || (kind != "workshop" && kind != "employee") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}

	ctx := c.Request.Context()
	token, err := a.Google.Config.Exchange(ctx, code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to exchange code for token"})
		return
	}
	if token.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no refresh token issued, reconnect with consent"})
		return
	}

	calendarID := a.Google.primaryCalendarID(ctx, token.AccessToken, token.RefreshToken)

	if kind == "workshop" {
		err = a.Store.SaveWorkshopCalendar(ctx, ownerID, calendarID, token.AccessToken, token.RefreshToken, token.Expiry)
	} else {
		err = a.Store.SaveEmployeeCalendar(ctx, ownerID, calendarID, token.AccessToken, token.RefreshToken, token.Expiry)
	}
	if err != nil {
		a.Logger.Error().Err(err).Str("state", state).Msg("failed to persist calendar binding")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store calendar connection"})
		return
	}

	a.Logger.Info().Str("state", state).Str("calendar_id", calendarID).Msg("calendar connected")
	c.JSON(http.StatusOK, gin.H{
		"message":     "calendar connected",
		"state":       state,
		"calendar_id": calendarID,
	})
}
