package interview

import (
	"fmt"
	"time"
)

// Status represents the lifecycle state of an interview
type Status string

const (
	StatusAwaitingCandidateSelection      Status = "awaiting_candidate_selection"
	StatusAwaitingInterviewerConfirmation Status = "awaiting_interviewer_confirmation"
	StatusScheduled                       Status = "scheduled"
	StatusAwaitingFeedback                Status = "awaiting_feedback"
	StatusFeedbackOverdue                 Status = "feedback_overdue"
	StatusCompletedSelected               Status = "completed_selected"
	StatusCompletedRejected               Status = "completed_rejected"
	StatusCompletedHold                   Status = "completed_hold"
	StatusCancelledNoSlots                Status = "cancelled_no_slots"
	StatusStalled                         Status = "stalled"
)

// AllStatuses returns every valid interview status
func AllStatuses() []Status {
	return []Status{
		StatusAwaitingCandidateSelection,
		StatusAwaitingInterviewerConfirmation,
		StatusScheduled,
		StatusAwaitingFeedback,
		StatusFeedbackOverdue,
		StatusCompletedSelected,
		StatusCompletedRejected,
		StatusCompletedHold,
		StatusCancelledNoSlots,
		StatusStalled,
	}
}

// ParseStatus converts a stored string into a Status, rejecting unknown values
func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// IsTerminal reports whether the interview reached a completed or cancelled
// state. Stalled is excluded: it is a dead end, but one awaiting manual
// intervention rather than an outcome.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompletedSelected, StatusCompletedRejected, StatusCompletedHold, StatusCancelledNoSlots:
		return true
	}
	return false
}

// IsActive reports whether the interview still participates in the automated
// lifecycle.
func (s Status) IsActive() bool {
	return !s.IsTerminal() && s != StatusStalled
}

// SlotStatus represents the state of a proposed interview time window
type SlotStatus string

const (
	SlotOffered  SlotStatus = "offered"
	SlotSelected SlotStatus = "selected"
	SlotRejected SlotStatus = "rejected"
)

// Slot represents one proposed interview time window
type Slot struct {
	ID          string
	InterviewID string
	SlotTime    time.Time
	Status      SlotStatus
	CreatedAt   time.Time
}

// Interview is the central mutable aggregate of the scheduling lifecycle
type Interview struct {
	ID                 string
	CandidateID        string
	InterviewerID      string
	Status             Status
	RejectionCount     int
	RescheduleAttempts int
	ScheduledTime      *time.Time
	MeetingLink        *string
	FeedbackSummary    *string
	RemindersSentCount int
	LastReminderSentAt *time.Time
	EmailPollAttempts  int
	LastEmailPolledAt  *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Detail is an interview joined with the contact fields of both parties,
// which is what nearly every transition handler needs.
type Detail struct {
	Interview
	CandidateName       string
	CandidateEmail      string
	CandidateWhatsApp   string
	InterviewerName     string
	InterviewerEmail    string
	InterviewerWhatsApp string
}

// Role identifies which side of the interview a message came from
type Role string

const (
	RoleCandidate   Role = "candidate"
	RoleInterviewer Role = "interviewer"
)

// Intent is the closed vocabulary the classifier maps free text onto
type Intent string

const (
	IntentSelectSlot        Intent = "select_slot"
	IntentRequestReschedule Intent = "request_reschedule"
	IntentConfirm           Intent = "confirm"
	IntentReject            Intent = "reject"
	IntentAskQuestion       Intent = "ask_question"
	IntentOutOfScope        Intent = "out_of_scope"
	IntentAcknowledgment    Intent = "acknowledgment"
	IntentGreeting          Intent = "greeting"
	IntentUnclear           Intent = "unclear"
)

// Recommendation is the structured outcome extracted from a feedback email
type Recommendation string

const (
	RecommendationSelected Recommendation = "selected"
	RecommendationRejected Recommendation = "rejected"
	RecommendationHold     Recommendation = "hold"
	RecommendationUnclear  Recommendation = "unclear"
)

// CompletedStatus maps a decisive recommendation onto the matching terminal
// interview status. Unclear has no terminal status.
func (r Recommendation) CompletedStatus() (Status, bool) {
	switch r {
	case RecommendationSelected:
		return StatusCompletedSelected, true
	case RecommendationRejected:
		return StatusCompletedRejected, true
	case RecommendationHold:
		return StatusCompletedHold, true
	}
	return "", false
}
