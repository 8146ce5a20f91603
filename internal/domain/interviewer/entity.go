package interviewer

import "time"

// Interviewer represents a member of the interviewing panel
type Interviewer struct {
	ID             string
	Name           string
	Email          string
	WhatsAppNumber string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
