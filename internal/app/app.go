package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultSlotMinutes     = 60
	defaultTimezone        = "Europe/Berlin"
	defaultCalendarTimeout = 5 * time.Second

	// maxCalendarFetches bounds the employee fan-out. Workshops have a
	// handful of employees at most, this just keeps a misconfigured one
	// from opening dozens of Google connections at once.
	maxCalendarFetches = 4
)

type Config struct {
	DatabaseURL        string
	Port               string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	DefaultTimezone    string
	CalendarTimeout    time.Duration
	StaticTokens       []string
	JWTSecret          string
}

func ConfigFromEnv() Config {
	cfg := Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		Port:               os.Getenv("PORT"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		DefaultTimezone:    os.Getenv("DEFAULT_TIMEZONE"),
		CalendarTimeout:    defaultCalendarTimeout,
		JWTSecret:          strings.TrimSpace(os.Getenv("JWT_HMAC_SECRET")),
	}
	if cfg.DefaultTimezone == "" {
		cfg.DefaultTimezone = defaultTimezone
	}
	if secs, err := strconv.Atoi(os.Getenv("CALENDAR_TIMEOUT_SECONDS")); err == nil && secs > 0 {
		cfg.CalendarTimeout = time.Duration(secs) * time.Second
	}
	for _, t := range strings.Split(os.Getenv("STATIC_TOKENS"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			cfg.StaticTokens = append(cfg.StaticTokens, t)
		}
	}
	return cfg
}

// App wires the availability service together. Store and Calendar are
// interfaces so handlers and the orchestrator stay testable; Google is the
// concrete client, kept around for the OAuth connect flow and nil when the
// OAuth env vars are missing.
type App struct {
	Store    Store
	Calendar CalendarClient
	Google   *GoogleCalendar
	Logger   zerolog.Logger
	Cfg      Config
}

// location resolves a workshop's operating timezone, falling back to the
// configured default and finally UTC for unknown names.
func (a *App) location(tz string) *time.Location {
	if tz == "" {
		tz = a.Cfg.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		a.Logger.Warn().Str("timezone", tz).Msg("unknown timezone, falling back to default")
		if loc, err = time.LoadLocation(a.Cfg.DefaultTimezone); err != nil {
			return time.UTC
		}
	}
	return loc
}
