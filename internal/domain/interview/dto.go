package interview

import "time"

// ============= Persistence DTOs =============

// Update carries the fields of a conditional interview update. Nil fields are
// left untouched.
type Update struct {
	Status             *Status
	InterviewerID      *string
	RejectionCount     *int
	RescheduleAttempts *int
	ScheduledTime      *time.Time
	MeetingLink        *string
	FeedbackSummary    *string
	RemindersSentCount *int
	LastReminderSentAt *time.Time
	EmailPollAttempts  *int
	LastEmailPolledAt  *time.Time
}

// ============= Classifier port DTOs =============

// ClassifyInput is the context handed to the intent classifier alongside the
// raw message text.
type ClassifyInput struct {
	Role            Role
	Message         string
	Status          Status
	CandidateName   string
	InterviewerName string
	OfferedSlots    []Slot
}

// ClassifyResult is the structured interpretation of a free-text message.
// SlotID is only set for IntentSelectSlot. Reply is a conversational answer
// used when no transition applies.
type ClassifyResult struct {
	Intent Intent
	SlotID string
	Reply  string
}

// FeedbackAnalysis is the structured extraction from a feedback email body
type FeedbackAnalysis struct {
	Recommendation Recommendation
	Summary        string
}

// ============= Service DTOs =============

// ShortlistResult reports the outcome of a shortlisting run
type ShortlistResult struct {
	Initiated int    `json:"initiated"`
	Message   string `json:"message"`
}

// InspectResult is the debug view of a single interview
type InspectResult struct {
	Interview Detail `json:"interview"`
	Slots     []Slot `json:"slots"`
}
