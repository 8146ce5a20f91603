package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gnx-solutions/interview-scheduler/internal/config"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhoneNumber strips formatting and applies the default country
// prefix to bare 10-digit numbers.
func NormalizePhoneNumber(number string) string {
	cleaned := nonDigits.ReplaceAllString(number, "")
	switch {
	case len(cleaned) == 10:
		return "+91" + cleaned
	case len(cleaned) == 12 && strings.HasPrefix(cleaned, "91"):
		return "+" + cleaned
	case len(cleaned) > 10:
		return "+" + cleaned
	}
	return number
}

// WhatsAppSender sends WhatsApp messages through the Twilio messaging API
type WhatsAppSender struct {
	cfg        config.TwilioConfig
	httpClient *http.Client
}

func NewWhatsAppSender(cfg config.TwilioConfig) *WhatsAppSender {
	return &WhatsAppSender{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Send delivers one WhatsApp message. With Twilio unconfigured it logs the
// message instead, which keeps local development flowing without credentials.
func (s *WhatsAppSender) Send(ctx context.Context, toNumber, body string) error {
	if s.cfg.AccountSID == "" || s.cfg.AuthToken == "" {
		slog.Info("Twilio not configured, logging message instead",
			"to", toNumber, "body_preview", preview(body))
		return nil
	}

	form := url.Values{}
	form.Set("From", "whatsapp:"+s.cfg.WhatsAppNumber)
	form.Set("To", "whatsapp:"+NormalizePhoneNumber(toNumber))
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", twilioAPIBase, s.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build Twilio request: %w", err)
	}
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("Twilio returned status %d: %s", resp.StatusCode, string(respBody))
	}

	slog.Info("WhatsApp message sent", "to", toNumber)
	return nil
}

func preview(body string) string {
	if len(body) > 50 {
		return body[:50] + "..."
	}
	return body
}
