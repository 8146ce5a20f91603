package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/gnx-solutions/interview-scheduler/internal/config"
	"github.com/gnx-solutions/interview-scheduler/internal/domain/interview"
)

const eventsURL = "https://www.googleapis.com/calendar/v3/calendars/primary/events?conferenceDataVersion=1&sendUpdates=all"

// GoogleCalendar creates Meet-backed events on the primary calendar. Auth
// uses a long-lived refresh token obtained once out of band; the oauth2
// client exchanges and caches access tokens as needed.
type GoogleCalendar struct {
	cfg config.CalendarConfig
}

var _ interview.Calendar = (*GoogleCalendar)(nil)

func NewGoogleCalendar(cfg config.CalendarConfig) *GoogleCalendar {
	return &GoogleCalendar{cfg: cfg}
}

type eventRequest struct {
	Summary        string          `json:"summary"`
	Start          eventTime       `json:"start"`
	End            eventTime       `json:"end"`
	Attendees      []eventAttendee `json:"attendees"`
	ConferenceData conferenceData  `json:"conferenceData"`
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type eventAttendee struct {
	Email string `json:"email"`
}

type conferenceData struct {
	CreateRequest conferenceCreateRequest `json:"createRequest"`
}

type conferenceCreateRequest struct {
	RequestID             string                `json:"requestId"`
	ConferenceSolutionKey conferenceSolutionKey `json:"conferenceSolutionKey"`
}

type conferenceSolutionKey struct {
	Type string `json:"type"`
}

// CreateMeeting creates the calendar event with a Meet conference and
// returns the meeting link.
func (g *GoogleCalendar) CreateMeeting(ctx context.Context, summary string, start time.Time, durationMinutes int, attendeeEmails []string) (string, error) {
	if g.cfg.RefreshToken == "" {
		return "", fmt.Errorf("Google Calendar credentials not configured")
	}

	attendees := make([]eventAttendee, 0, len(attendeeEmails))
	for _, email := range attendeeEmails {
		attendees = append(attendees, eventAttendee{Email: email})
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	payload, err := json.Marshal(eventRequest{
		Summary:   summary,
		Start:     eventTime{DateTime: start.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		End:       eventTime{DateTime: end.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		Attendees: attendees,
		ConferenceData: conferenceData{
			CreateRequest: conferenceCreateRequest{
				RequestID:             fmt.Sprintf("interview-%d", start.Unix()),
				ConferenceSolutionKey: conferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     g.cfg.ClientID,
		ClientSecret: g.cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
		Scopes:       []string{"https://www.googleapis.com/auth/calendar.events"},
	}
	httpClient := oauthCfg.Client(ctx, &oauth2.Token{RefreshToken: g.cfg.RefreshToken})
	httpClient.Timeout = 20 * time.Second

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, eventsURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build calendar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calendar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("calendar API returned status %d: %s", resp.StatusCode, string(body))
	}

	var created struct {
		HangoutLink string `json:"hangoutLink"`
		HTMLLink    string `json:"htmlLink"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode calendar response: %w", err)
	}

	if created.HangoutLink != "" {
		return created.HangoutLink, nil
	}
	// Meet provisioning can lag; fall back to the event page.
	return created.HTMLLink, nil
}
