package holidays

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
)

// CalDAVConfig locates a holiday calendar on a CalDAV server. A bearer
// token takes precedence over basic credentials.
type CalDAVConfig struct {
	URL          string
	Username     string
	Password     string
	Token        string
	CalendarPath string
	Timeout      time.Duration
}

// CalDAV reads all-day events from a CalDAV calendar.
type CalDAV struct {
	cfg    CalDAVConfig
	logger *slog.Logger
}

// NewCalDAV creates a CalDAV holiday source.
func NewCalDAV(cfg CalDAVConfig, logger *slog.Logger) *CalDAV {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &CalDAV{cfg: cfg, logger: logger}
}

func (s *CalDAV) Holidays(ctx context.Context, from, to calendar.Date) ([]calendar.Date, error) {
	client, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	path, err := s.calendarPath(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:  "VCALENDAR",
			Props: []string{"VERSION"},
			Comps: []caldav.CalendarCompRequest{{
				Name:  "VEVENT",
				Props: []string{"SUMMARY", "UID", "DTSTART", "DTEND", "DURATION", "RRULE", "RDATE", "EXDATE"},
			}},
		},
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{{
				Name:  "VEVENT",
				Start: from.Time(),
				End:   to.AddDays(1).Time(),
			}},
		},
	}

	objects, err := client.QueryCalendar(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar: %w", err)
	}

	var events []ical.Event
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		events = append(events, obj.Data.Events()...)
	}

	days, err := collectDays(events, from, to)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("caldav holidays loaded", "calendar", path, "objects", len(objects), "holidays", len(days))
	return days, nil
}

func (s *CalDAV) client(ctx context.Context) (*caldav.Client, error) {
	var httpClient webdav.HTTPClient
	if s.cfg.Token != "" {
		hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s.cfg.Token, TokenType: "Bearer"}))
		hc.Timeout = s.cfg.Timeout
		httpClient = hc
	} else {
		hc := &http.Client{Timeout: s.cfg.Timeout}
		httpClient = webdav.HTTPClientWithBasicAuth(hc, s.cfg.Username, s.cfg.Password)
	}

	client, err := caldav.NewClient(httpClient, s.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	return client, nil
}

func (s *CalDAV) calendarPath(ctx context.Context, client *caldav.Client) (string, error) {
	if s.cfg.CalendarPath != "" {
		return s.cfg.CalendarPath, nil
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}
	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}
	if len(cals) == 0 {
		return "", fmt.Errorf("no calendars found")
	}
	return cals[0].Path, nil
}
