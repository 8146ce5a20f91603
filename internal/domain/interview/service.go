package interview

import (
	"context"
	"time"
)

// Service defines the interview lifecycle orchestrator
type Service interface {
	// StartShortlisting picks applied candidates over the score threshold,
	// pairs each with an available interviewer, creates the interview with
	// its first offered-slot batch and notifies the candidate.
	StartShortlisting(ctx context.Context) (ShortlistResult, error)

	// HandleInboundMessage routes one received chat message through the
	// classifier into a state transition or a conversational reply. Safe
	// to call more than once for the same logical message.
	HandleInboundMessage(ctx context.Context, senderNumber, messageText string) error

	// RunFeedbackScan advances scheduled interviews into feedback
	// collection and escalates exhausted reminder limits. Invoked by the
	// periodic scheduler.
	RunFeedbackScan(ctx context.Context) error

	// RunMailboxPollScan polls interviewer mailboxes for feedback emails
	// and completes interviews with a decisive recommendation. Invoked by
	// the periodic scheduler.
	RunMailboxPollScan(ctx context.Context) error

	// Inspect returns the full state of one interview for debugging
	Inspect(ctx context.Context, id string) (*InspectResult, error)

	// CreateDebugPastInterview creates a scheduled interview with a
	// scheduled time already in the past, for exercising the feedback scan.
	CreateDebugPastInterview(ctx context.Context) (string, error)
}

// Classifier maps free text onto the closed intent vocabulary and parses
// feedback emails into a recommendation plus summary. Implementations never
// guess a transition: anything ambiguous comes back as IntentUnclear or
// RecommendationUnclear.
type Classifier interface {
	Classify(ctx context.Context, in ClassifyInput) (ClassifyResult, error)
	ParseFeedback(ctx context.Context, emailBody string) (FeedbackAnalysis, error)
}

// Notifier delivers the lifecycle's templated messages. Implementations
// report failures through their own logging and never propagate them into
// the orchestrator: a failed notification leaves state as committed and the
// next trigger retries whatever still applies.
type Notifier interface {
	// SendSlotProposal messages the candidate with a fresh offered batch
	SendSlotProposal(ctx context.Context, d *Detail, slots []Slot, reschedule bool)

	// SendSelectionAck acknowledges the candidate's slot choice
	SendSelectionAck(ctx context.Context, d *Detail, slotTime time.Time)

	// SendConfirmationRequest asks the interviewer to confirm the chosen slot
	SendConfirmationRequest(ctx context.Context, d *Detail, slotTime time.Time)

	// SendScheduledNotices sends the final confirmation with the meeting
	// link to both parties
	SendScheduledNotices(ctx context.Context, d *Detail, slotTime time.Time, meetingLink string)

	// SendNoSlotsAvailable tells the candidate to reach HR directly
	SendNoSlotsAvailable(ctx context.Context, d *Detail)

	// SendFeedbackRequest asks the interviewer for feedback over chat and
	// email, tagging the email subject with the interview id
	SendFeedbackRequest(ctx context.Context, d *Detail)

	// SendReassignmentNotices releases the previous interviewer and asks
	// the replacement to confirm the same slot
	SendReassignmentNotices(ctx context.Context, previousName, previousWhatsApp string, d *Detail, slotTime time.Time)

	// SendOutcome informs the candidate of a decisive final result
	SendOutcome(ctx context.Context, d *Detail, rec Recommendation)

	// SendChat delivers a plain conversational reply to a chat handle
	SendChat(ctx context.Context, number, text string)
}

// Calendar creates the meeting event once an interviewer confirms
type Calendar interface {
	CreateMeeting(ctx context.Context, summary string, start time.Time, durationMinutes int, attendeeEmails []string) (string, error)
}

// Mailbox fetches unread feedback email bodies for one interview
type Mailbox interface {
	FetchFeedback(ctx context.Context, interviewID, senderAddress, subjectKeyword string) ([]string, error)
}
