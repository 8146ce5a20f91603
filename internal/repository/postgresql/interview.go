package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gnx-solutions/interview-scheduler/internal/domain/interview"
	"github.com/gnx-solutions/interview-scheduler/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type interviewRepository struct {
	db *database.DB
}

// NewInterviewRepository creates a new interview repository
func NewInterviewRepository(db *database.DB) interview.Repository {
	return &interviewRepository{db: db}
}

const detailQuery = `
	SELECT
		i.id, i.candidate_id, i.interviewer_id, i.status,
		i.rejection_count, i.reschedule_attempts, i.scheduled_time,
		i.meeting_link, i.feedback_summary,
		i.reminders_sent_count, i.last_reminder_sent_at,
		i.email_poll_attempts, i.last_email_polled_at,
		i.created_at, i.updated_at,
		c.name, c.email, c.whatsapp_number,
		iv.name, iv.email, iv.whatsapp_number
	FROM interviews i
	JOIN candidates c ON i.candidate_id = c.id
	JOIN interviewers iv ON i.interviewer_id = iv.id
`

func scanDetail(row pgx.Row) (*interview.Detail, error) {
	var d interview.Detail
	var status string
	err := row.Scan(
		&d.ID,
		&d.CandidateID,
		&d.InterviewerID,
		&status,
		&d.RejectionCount,
		&d.RescheduleAttempts,
		&d.ScheduledTime,
		&d.MeetingLink,
		&d.FeedbackSummary,
		&d.RemindersSentCount,
		&d.LastReminderSentAt,
		&d.EmailPollAttempts,
		&d.LastEmailPolledAt,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.CandidateName,
		&d.CandidateEmail,
		&d.CandidateWhatsApp,
		&d.InterviewerName,
		&d.InterviewerEmail,
		&d.InterviewerWhatsApp,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, interview.ErrInterviewNotFound
		}
		return nil, fmt.Errorf("failed to scan interview: %w", err)
	}
	parsed, err := interview.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	d.Status = parsed
	return &d, nil
}

// Create inserts a new interview
func (r *interviewRepository) Create(ctx context.Context, iv *interview.Interview) error {
	if iv.ID == "" {
		iv.ID = uuid.New().String()
	}

	query := `
		INSERT INTO interviews (id, candidate_id, interviewer_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, iv.ID, iv.CandidateID, iv.InterviewerID, string(iv.Status))
	if err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}
	return nil
}

// GetByID retrieves an interview with both parties' contact fields
func (r *interviewRepository) GetByID(ctx context.Context, id string) (*interview.Detail, error) {
	return scanDetail(r.db.QueryRow(ctx, detailQuery+` WHERE i.id = $1`, id))
}

// GetActiveByCandidate returns the candidate's single active interview
func (r *interviewRepository) GetActiveByCandidate(ctx context.Context, candidateID string) (*interview.Detail, error) {
	query := detailQuery + `
		WHERE i.candidate_id = $1 AND i.status NOT IN ($2, $3, $4, $5, $6)
		ORDER BY i.created_at DESC
		LIMIT 1
	`
	return scanDetail(r.db.QueryRow(ctx, query, candidateID,
		string(interview.StatusCompletedSelected),
		string(interview.StatusCompletedRejected),
		string(interview.StatusCompletedHold),
		string(interview.StatusCancelledNoSlots),
		string(interview.StatusStalled),
	))
}

// GetLatestByCandidate returns the candidate's most recent interview in any status
func (r *interviewRepository) GetLatestByCandidate(ctx context.Context, candidateID string) (*interview.Detail, error) {
	query := detailQuery + ` WHERE i.candidate_id = $1 ORDER BY i.created_at DESC LIMIT 1`
	return scanDetail(r.db.QueryRow(ctx, query, candidateID))
}

// GetAwaitingConfirmation returns the interview waiting on this interviewer
func (r *interviewRepository) GetAwaitingConfirmation(ctx context.Context, interviewerID string) (*interview.Detail, error) {
	query := detailQuery + `
		WHERE i.interviewer_id = $1 AND i.status = $2
		ORDER BY i.updated_at DESC
		LIMIT 1
	`
	return scanDetail(r.db.QueryRow(ctx, query, interviewerID, string(interview.StatusAwaitingInterviewerConfirmation)))
}

// GetLatestByInterviewer returns the interviewer's most recent interview in any status
func (r *interviewRepository) GetLatestByInterviewer(ctx context.Context, interviewerID string) (*interview.Detail, error) {
	query := detailQuery + ` WHERE i.interviewer_id = $1 ORDER BY i.created_at DESC LIMIT 1`
	return scanDetail(r.db.QueryRow(ctx, query, interviewerID))
}

// buildUpdate renders the SET clause for an interview update. argOffset is
// the number of positional arguments already claimed by the caller.
func buildUpdate(upd interview.Update, argOffset int) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	add := func(column string, value interface{}) {
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, argOffset+len(args)+1))
		args = append(args, value)
	}

	if upd.Status != nil {
		add("status", string(*upd.Status))
	}
	if upd.InterviewerID != nil {
		add("interviewer_id", *upd.InterviewerID)
	}
	if upd.RejectionCount != nil {
		add("rejection_count", *upd.RejectionCount)
	}
	if upd.RescheduleAttempts != nil {
		add("reschedule_attempts", *upd.RescheduleAttempts)
	}
	if upd.ScheduledTime != nil {
		add("scheduled_time", *upd.ScheduledTime)
	}
	if upd.MeetingLink != nil {
		add("meeting_link", *upd.MeetingLink)
	}
	if upd.FeedbackSummary != nil {
		add("feedback_summary", *upd.FeedbackSummary)
	}
	if upd.RemindersSentCount != nil {
		add("reminders_sent_count", *upd.RemindersSentCount)
	}
	if upd.LastReminderSentAt != nil {
		add("last_reminder_sent_at", *upd.LastReminderSentAt)
	}
	if upd.EmailPollAttempts != nil {
		add("email_poll_attempts", *upd.EmailPollAttempts)
	}
	if upd.LastEmailPolledAt != nil {
		add("last_email_polled_at", *upd.LastEmailPolledAt)
	}

	clauses = append(clauses, "updated_at = NOW()")
	return strings.Join(clauses, ", "), args
}

func execConditionalUpdate(ctx context.Context, q database.Querier, id string, expected interview.Status, upd interview.Update) (bool, error) {
	setClause, args := buildUpdate(upd, 2)
	query := fmt.Sprintf(`UPDATE interviews SET %s WHERE id = $1 AND status = $2`, setClause)
	allArgs := append([]interface{}{id, string(expected)}, args...)

	result, err := q.Exec(ctx, query, allArgs...)
	if err != nil {
		return false, fmt.Errorf("failed to update interview: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// UpdateIfStatus applies upd only while the row is still in the expected
// status. A concurrent transition makes this a no-op, reported as false.
func (r *interviewRepository) UpdateIfStatus(ctx context.Context, id string, expected interview.Status, upd interview.Update) (bool, error) {
	return execConditionalUpdate(ctx, r.db.Pool, id, expected, upd)
}

// ReplaceOfferedSlots swaps the live proposal batch and applies upd as one
// transaction. The status condition is checked first; when it fails nothing
// else runs, so readers never observe a half-replaced batch.
func (r *interviewRepository) ReplaceOfferedSlots(ctx context.Context, id string, expected interview.Status, upd interview.Update, slotTimes []time.Time) (bool, error) {
	applied := false
	err := WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		ok, err := execConditionalUpdate(ctx, tx, id, expected, upd)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if _, err := tx.Exec(ctx,
			`UPDATE interview_slots SET status = $1 WHERE interview_id = $2 AND status = $3`,
			string(interview.SlotRejected), id, string(interview.SlotOffered),
		); err != nil {
			return fmt.Errorf("failed to deactivate offered slots: %w", err)
		}

		if err := insertSlots(ctx, tx, id, slotTimes); err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

// SelectSlot marks one offered slot selected and rejects the rest, together
// with the interview's own conditional update.
func (r *interviewRepository) SelectSlot(ctx context.Context, id, slotID string, expected interview.Status, upd interview.Update) (bool, error) {
	applied := false
	err := WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx,
			`UPDATE interview_slots SET status = $1 WHERE id = $2 AND interview_id = $3 AND status = $4`,
			string(interview.SlotSelected), slotID, id, string(interview.SlotOffered),
		)
		if err != nil {
			return fmt.Errorf("failed to select slot: %w", err)
		}
		if result.RowsAffected() == 0 {
			return interview.ErrSlotNotOffered
		}

		if _, err := tx.Exec(ctx,
			`UPDATE interview_slots SET status = $1 WHERE interview_id = $2 AND status = $3`,
			string(interview.SlotRejected), id, string(interview.SlotOffered),
		); err != nil {
			return fmt.Errorf("failed to deactivate offered slots: %w", err)
		}

		ok, err := execConditionalUpdate(ctx, tx, id, expected, upd)
		if err != nil {
			return err
		}
		if !ok {
			// Row moved on under us; roll everything back.
			return interview.ErrInterviewNotFound
		}
		applied = true
		return nil
	})
	if err == interview.ErrInterviewNotFound {
		return false, nil
	}
	return applied, err
}

func insertSlots(ctx context.Context, q database.Querier, interviewID string, slotTimes []time.Time) error {
	if len(slotTimes) == 0 {
		return nil
	}

	valueStrings := make([]string, 0, len(slotTimes))
	valueArgs := make([]interface{}, 0, len(slotTimes)*4)
	for i, t := range slotTimes {
		base := i * 4
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
		valueArgs = append(valueArgs, uuid.New().String(), interviewID, t.UTC(), string(interview.SlotOffered))
	}

	query := fmt.Sprintf(`
		INSERT INTO interview_slots (id, interview_id, slot_time, status)
		VALUES %s
	`, strings.Join(valueStrings, ", "))

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to insert slots: %w", err)
	}
	return nil
}

// AddSlots inserts a fresh offered batch
func (r *interviewRepository) AddSlots(ctx context.Context, interviewID string, slotTimes []time.Time) error {
	return insertSlots(ctx, r.db.Pool, interviewID, slotTimes)
}

func (r *interviewRepository) querySlots(ctx context.Context, query string, args ...interface{}) ([]interview.Slot, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer rows.Close()

	var slots []interview.Slot
	for rows.Next() {
		var s interview.Slot
		var status string
		if err := rows.Scan(&s.ID, &s.InterviewID, &s.SlotTime, &status, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		s.Status = interview.SlotStatus(status)
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// OfferedSlots returns the live proposal set ordered by time
func (r *interviewRepository) OfferedSlots(ctx context.Context, interviewID string) ([]interview.Slot, error) {
	query := `
		SELECT id, interview_id, slot_time, status, created_at
		FROM interview_slots
		WHERE interview_id = $1 AND status = $2
		ORDER BY slot_time
	`
	return r.querySlots(ctx, query, interviewID, string(interview.SlotOffered))
}

// AllSlots returns every slot ever proposed for the interview
func (r *interviewRepository) AllSlots(ctx context.Context, interviewID string) ([]interview.Slot, error) {
	query := `
		SELECT id, interview_id, slot_time, status, created_at
		FROM interview_slots
		WHERE interview_id = $1
		ORDER BY slot_time
	`
	return r.querySlots(ctx, query, interviewID)
}

func (r *interviewRepository) queryDetails(ctx context.Context, query string, args ...interface{}) ([]*interview.Detail, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interviews: %w", err)
	}
	defer rows.Close()

	var details []*interview.Detail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// ListFeedbackDue selects interviews whose feedback collection should advance
func (r *interviewRepository) ListFeedbackDue(ctx context.Context, now time.Time, initialDelay, followUpDelay time.Duration, maxReminders int) ([]*interview.Detail, error) {
	query := detailQuery + `
		WHERE
			(i.status = $1 AND i.scheduled_time IS NOT NULL AND i.scheduled_time <= $2)
			OR
			(i.status = $3
				AND i.reminders_sent_count < $4
				AND i.last_reminder_sent_at IS NOT NULL
				AND i.last_reminder_sent_at <= $5)
		ORDER BY i.scheduled_time ASC
	`
	return r.queryDetails(ctx, query,
		string(interview.StatusScheduled), now.Add(-initialDelay),
		string(interview.StatusAwaitingFeedback), maxReminders, now.Add(-followUpDelay),
	)
}

// ListFeedbackOverdue selects interviews that exhausted the reminder limit
func (r *interviewRepository) ListFeedbackOverdue(ctx context.Context, maxReminders int) ([]*interview.Detail, error) {
	query := detailQuery + `
		WHERE i.status = $1 AND i.reminders_sent_count >= $2
		ORDER BY i.scheduled_time ASC
	`
	return r.queryDetails(ctx, query, string(interview.StatusAwaitingFeedback), maxReminders)
}

// ListMailboxPollDue selects interviews whose mailbox should be polled again
func (r *interviewRepository) ListMailboxPollDue(ctx context.Context, now time.Time, pollInterval time.Duration, maxPolls int) ([]*interview.Detail, error) {
	query := detailQuery + `
		WHERE i.status = $1
			AND i.email_poll_attempts < $2
			AND (i.last_email_polled_at IS NULL OR i.last_email_polled_at <= $3)
		ORDER BY i.scheduled_time DESC
	`
	return r.queryDetails(ctx, query,
		string(interview.StatusAwaitingFeedback), maxPolls, now.Add(-pollInterval),
	)
}
