package candidate

import "time"

// Status represents the coarse candidate lifecycle status. The orchestrator
// only ever moves a candidate forward; the intake process owns the rest.
type Status string

const (
	StatusApplied            Status = "applied"
	StatusInterviewInitiated Status = "interview_initiated"
	StatusSelected           Status = "selected"
	StatusRejected           Status = "rejected"
)

// Candidate represents an applicant sourced by the HR intake process
type Candidate struct {
	ID             string
	Name           string
	Email          string
	WhatsAppNumber string
	CVScore        int
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
