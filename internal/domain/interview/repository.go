package interview

import (
	"context"
	"time"
)

// Repository defines the interview persistence gateway. Every status change
// goes through a conditional write keyed on the expected prior status, so a
// concurrent transition (duplicate inbound message, overlapping scheduler
// tick) degrades to a no-op instead of a double apply.
type Repository interface {
	Create(ctx context.Context, iv *Interview) error
	GetByID(ctx context.Context, id string) (*Detail, error)

	// GetActiveByCandidate returns the candidate's single non-terminal,
	// non-stalled interview, or ErrInterviewNotFound.
	GetActiveByCandidate(ctx context.Context, candidateID string) (*Detail, error)
	GetLatestByCandidate(ctx context.Context, candidateID string) (*Detail, error)

	// GetAwaitingConfirmation returns the interview currently waiting on
	// this interviewer's confirm/reject, or ErrInterviewNotFound.
	GetAwaitingConfirmation(ctx context.Context, interviewerID string) (*Detail, error)
	GetLatestByInterviewer(ctx context.Context, interviewerID string) (*Detail, error)

	// UpdateIfStatus applies upd only if the row's status still equals
	// expected. Returns false (and no error) when the row has already
	// moved on.
	UpdateIfStatus(ctx context.Context, id string, expected Status, upd Update) (bool, error)

	// ReplaceOfferedSlots atomically rejects the current offered batch,
	// inserts a new batch, and applies upd under the same expected-status
	// condition. Nothing is written when the condition fails.
	ReplaceOfferedSlots(ctx context.Context, id string, expected Status, upd Update, slotTimes []time.Time) (bool, error)

	// SelectSlot atomically marks slotID selected, rejects the other
	// offered slots, and applies upd under the expected-status condition.
	// Returns ErrSlotNotOffered when slotID is not currently offered.
	SelectSlot(ctx context.Context, id, slotID string, expected Status, upd Update) (bool, error)

	AddSlots(ctx context.Context, interviewID string, slotTimes []time.Time) error
	OfferedSlots(ctx context.Context, interviewID string) ([]Slot, error)
	AllSlots(ctx context.Context, interviewID string) ([]Slot, error)

	// ListFeedbackDue returns interviews in scheduled whose scheduled time
	// plus initialDelay has passed, and interviews in awaiting_feedback
	// under the reminder cap whose last reminder plus followUpDelay has
	// passed.
	ListFeedbackDue(ctx context.Context, now time.Time, initialDelay, followUpDelay time.Duration, maxReminders int) ([]*Detail, error)

	// ListFeedbackOverdue returns interviews in awaiting_feedback that hit
	// the reminder cap.
	ListFeedbackOverdue(ctx context.Context, maxReminders int) ([]*Detail, error)

	// ListMailboxPollDue returns interviews in awaiting_feedback under the
	// poll cap whose last poll is older than pollInterval (or never ran).
	ListMailboxPollDue(ctx context.Context, now time.Time, pollInterval time.Duration, maxPolls int) ([]*Detail, error)
}
