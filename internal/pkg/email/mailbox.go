package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"

	"github.com/gnx-solutions/interview-scheduler/internal/config"
)

// Mailbox reads feedback replies over IMAP. A fresh connection is opened per
// fetch and closed before returning; polls are minutes apart, so holding a
// session between them buys nothing and goes stale.
type Mailbox struct {
	cfg config.IMAPConfig
}

func NewMailbox(cfg config.IMAPConfig) *Mailbox {
	return &Mailbox{cfg: cfg}
}

// FetchFeedback returns the plain-text bodies of unread messages that look
// like feedback for the given interview, marking them read. Matching tries
// the explicit id tag in the subject first, then the interviewer's address,
// then the subject keyword; the first criteria set with hits wins.
func (m *Mailbox) FetchFeedback(ctx context.Context, interviewID, senderAddress, subjectKeyword string) ([]string, error) {
	if m.cfg.Username == "" {
		slog.Warn("IMAP not configured, skipping mailbox fetch", "interview_id", interviewID)
		return nil, nil
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	c, err := client.DialTLS(addr, &tls.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	defer c.Close()

	if err := c.Login(m.cfg.Username, m.cfg.Password); err != nil {
		return nil, fmt.Errorf("IMAP login failed: %w", err)
	}
	defer c.Logout()

	if _, err := c.Select("INBOX", false); err != nil {
		return nil, fmt.Errorf("failed to select inbox: %w", err)
	}

	uids, err := m.searchFeedback(c, interviewID, senderAddress, subjectKeyword)
	if err != nil {
		return nil, err
	}
	if len(uids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	section := &imap.BodySectionName{}
	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, []imap.FetchItem{section.FetchItem(), imap.FetchEnvelope}, messages)
	}()

	var bodies []string
	for msg := range messages {
		body, err := extractTextBody(msg.GetBody(section))
		if err != nil {
			slog.Warn("Failed to extract email body", "interview_id", interviewID, "error", err)
			continue
		}
		if body != "" {
			bodies = append(bodies, body)
		}
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("IMAP fetch failed: %w", err)
	}

	// Mark everything we read as seen so the next poll skips it.
	markSeen := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := c.Store(seqset, markSeen, []interface{}{imap.SeenFlag}, nil); err != nil {
		slog.Warn("Failed to mark feedback emails as seen", "interview_id", interviewID, "error", err)
	}

	return bodies, nil
}

func (m *Mailbox) searchFeedback(c *client.Client, interviewID, senderAddress, subjectKeyword string) ([]uint32, error) {
	attempts := []func(*imap.SearchCriteria){
		func(cr *imap.SearchCriteria) { cr.Header.Add("Subject", fmt.Sprintf("[Interview ID: %s]", interviewID)) },
		func(cr *imap.SearchCriteria) { cr.Header.Add("From", senderAddress) },
		func(cr *imap.SearchCriteria) { cr.Header.Add("Subject", subjectKeyword) },
	}

	for _, narrow := range attempts {
		criteria := imap.NewSearchCriteria()
		criteria.WithoutFlags = []string{imap.SeenFlag}
		narrow(criteria)

		uids, err := c.Search(criteria)
		if err != nil {
			slog.Warn("IMAP search failed", "error", err)
			continue
		}
		if len(uids) > 0 {
			return uids, nil
		}
	}
	return nil, nil
}

func extractTextBody(r io.Reader) (string, error) {
	if r == nil {
		return "", fmt.Errorf("message has no body section")
	}

	mr, err := mail.CreateReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse message: %w", err)
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read message part: %w", err)
		}

		if _, ok := p.Header.(*mail.InlineHeader); ok {
			b, err := io.ReadAll(p.Body)
			if err != nil {
				return "", fmt.Errorf("failed to read message body: %w", err)
			}
			return string(b), nil
		}
	}
	return "", nil
}
