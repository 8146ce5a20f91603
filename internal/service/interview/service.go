package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gnx-solutions/interview-scheduler/internal/config"
	"github.com/gnx-solutions/interview-scheduler/internal/domain/candidate"
	"github.com/gnx-solutions/interview-scheduler/internal/domain/interview"
	"github.com/gnx-solutions/interview-scheduler/internal/domain/interviewer"
)

const fallbackReply = "I'm sorry, I didn't quite catch that. Could you rephrase your message?"

// Service is the interview lifecycle orchestrator. Two drivers call into it
// concurrently, inbound webhook messages and the periodic scheduler, so every
// transition is written as a conditional update keyed on the expected prior
// status and a lost race degrades to a no-op.
type Service struct {
	cfg          config.SchedulingConfig
	candidates   candidate.Repository
	interviewers interviewer.Repository
	interviews   interview.Repository
	classifier   interview.Classifier
	calendar     interview.Calendar
	mailbox      interview.Mailbox
	notifier     interview.Notifier
	slots        SlotGenerator

	now func() time.Time
}

func NewService(
	cfg config.SchedulingConfig,
	candidates candidate.Repository,
	interviewers interviewer.Repository,
	interviews interview.Repository,
	classifier interview.Classifier,
	calendar interview.Calendar,
	mailbox interview.Mailbox,
	notifier interview.Notifier,
) *Service {
	return &Service{
		cfg:          cfg,
		candidates:   candidates,
		interviewers: interviewers,
		interviews:   interviews,
		classifier:   classifier,
		calendar:     calendar,
		mailbox:      mailbox,
		notifier:     notifier,
		slots:        DefaultSlotGenerator(cfg.SlotsPerProposal),
		now:          time.Now,
	}
}

// ============= Shortlisting =============

func (s *Service) StartShortlisting(ctx context.Context) (interview.ShortlistResult, error) {
	shortlist, err := s.candidates.ListShortlistable(ctx, s.cfg.MinimumScore, s.cfg.TopNCandidates)
	if err != nil {
		return interview.ShortlistResult{}, fmt.Errorf("failed to list shortlistable candidates: %w", err)
	}

	initiated := 0
	for _, c := range shortlist {
		if _, err := s.interviews.GetActiveByCandidate(ctx, c.ID); err == nil {
			slog.Info("Shortlisting: candidate already has an active interview", "candidate_id", c.ID)
			continue
		} else if !errors.Is(err, interview.ErrInterviewNotFound) {
			return interview.ShortlistResult{}, fmt.Errorf("failed to check active interview: %w", err)
		}

		iv, err := s.interviewers.PickAvailable(ctx, "")
		if err != nil {
			if errors.Is(err, interviewer.ErrNoneAvailable) {
				slog.Warn("Shortlisting: no active interviewer available, stopping run")
				break
			}
			return interview.ShortlistResult{}, fmt.Errorf("failed to pick interviewer: %w", err)
		}

		slotTimes := s.slots.Generate(s.now(), nil, nil)
		if len(slotTimes) == 0 {
			slog.Warn("Shortlisting: slot generation produced no slots", "candidate_id", c.ID)
			continue
		}

		itv := &interview.Interview{
			CandidateID:   c.ID,
			InterviewerID: iv.ID,
			Status:        interview.StatusAwaitingCandidateSelection,
		}
		if err := s.interviews.Create(ctx, itv); err != nil {
			return interview.ShortlistResult{}, fmt.Errorf("failed to create interview: %w", err)
		}
		if err := s.interviews.AddSlots(ctx, itv.ID, slotTimes); err != nil {
			return interview.ShortlistResult{}, fmt.Errorf("failed to add slots: %w", err)
		}
		if err := s.candidates.UpdateStatus(ctx, c.ID, candidate.StatusInterviewInitiated); err != nil {
			return interview.ShortlistResult{}, fmt.Errorf("failed to update candidate status: %w", err)
		}

		d, err := s.interviews.GetByID(ctx, itv.ID)
		if err != nil {
			return interview.ShortlistResult{}, fmt.Errorf("failed to load created interview: %w", err)
		}
		offered, err := s.interviews.OfferedSlots(ctx, itv.ID)
		if err != nil {
			return interview.ShortlistResult{}, fmt.Errorf("failed to load offered slots: %w", err)
		}
		s.notifier.SendSlotProposal(ctx, d, offered, false)

		slog.Info("Shortlisting: interview initiated",
			"interview_id", itv.ID, "candidate_id", c.ID, "interviewer_id", iv.ID)
		initiated++
	}

	return interview.ShortlistResult{
		Initiated: initiated,
		Message:   fmt.Sprintf("Shortlisting complete, %d interview(s) initiated", initiated),
	}, nil
}

// ============= Inbound message routing =============

func (s *Service) HandleInboundMessage(ctx context.Context, senderNumber, messageText string) error {
	if c, err := s.candidates.GetByWhatsApp(ctx, senderNumber); err == nil {
		return s.handleCandidateMessage(ctx, c, messageText)
	} else if !errors.Is(err, candidate.ErrCandidateNotFound) {
		return fmt.Errorf("failed to look up candidate by number: %w", err)
	}

	if iv, err := s.interviewers.GetByWhatsApp(ctx, senderNumber); err == nil {
		return s.handleInterviewerMessage(ctx, iv, messageText)
	} else if !errors.Is(err, interviewer.ErrInterviewerNotFound) {
		return fmt.Errorf("failed to look up interviewer by number: %w", err)
	}

	slog.Warn("Inbound message from unregistered number", "sender", senderNumber)
	s.notifier.SendChat(ctx, senderNumber,
		"Hello! This number isn't registered with our interview process. If you believe this is a mistake, please contact our HR team.")
	return nil
}

func (s *Service) handleCandidateMessage(ctx context.Context, c *candidate.Candidate, messageText string) error {
	d, err := s.interviews.GetActiveByCandidate(ctx, c.ID)
	if errors.Is(err, interview.ErrInterviewNotFound) {
		s.notifier.SendChat(ctx, c.WhatsAppNumber,
			fmt.Sprintf("Hi %s! You don't have an interview in progress right now. Our HR team will reach out when there's an update.", c.Name))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load active interview: %w", err)
	}

	var offered []interview.Slot
	if d.Status == interview.StatusAwaitingCandidateSelection {
		offered, err = s.interviews.OfferedSlots(ctx, d.ID)
		if err != nil {
			return fmt.Errorf("failed to load offered slots: %w", err)
		}
	}

	res := s.classify(ctx, interview.ClassifyInput{
		Role:            interview.RoleCandidate,
		Message:         messageText,
		Status:          d.Status,
		CandidateName:   d.CandidateName,
		InterviewerName: d.InterviewerName,
		OfferedSlots:    offered,
	})

	// Scheduling intents only apply while the candidate's selection is
	// actually pending; everything else is conversational.
	if d.Status == interview.StatusAwaitingCandidateSelection {
		switch res.Intent {
		case interview.IntentSelectSlot:
			return s.handleSlotSelection(ctx, d, offered, res.SlotID)
		case interview.IntentRequestReschedule:
			return s.handleRescheduleRequest(ctx, d)
		}
	}

	s.reply(ctx, d.CandidateWhatsApp, res)
	return nil
}

func (s *Service) handleInterviewerMessage(ctx context.Context, iv *interviewer.Interviewer, messageText string) error {
	d, err := s.interviews.GetAwaitingConfirmation(ctx, iv.ID)
	if errors.Is(err, interview.ErrInterviewNotFound) {
		return s.handleInterviewerSmallTalk(ctx, iv, messageText)
	}
	if err != nil {
		return fmt.Errorf("failed to load awaiting interview: %w", err)
	}

	res := s.classify(ctx, interview.ClassifyInput{
		Role:            interview.RoleInterviewer,
		Message:         messageText,
		Status:          d.Status,
		CandidateName:   d.CandidateName,
		InterviewerName: d.InterviewerName,
	})

	switch res.Intent {
	case interview.IntentConfirm:
		return s.handleInterviewerConfirm(ctx, d)
	case interview.IntentReject:
		return s.handleInterviewerRejection(ctx, d)
	}

	s.reply(ctx, d.InterviewerWhatsApp, res)
	return nil
}

// handleInterviewerSmallTalk answers an interviewer with nothing pending,
// using their latest interview (if any) as conversational context.
func (s *Service) handleInterviewerSmallTalk(ctx context.Context, iv *interviewer.Interviewer, messageText string) error {
	status := interview.StatusScheduled
	candidateName := ""
	if d, err := s.interviews.GetLatestByInterviewer(ctx, iv.ID); err == nil {
		status = d.Status
		candidateName = d.CandidateName
	} else if !errors.Is(err, interview.ErrInterviewNotFound) {
		return fmt.Errorf("failed to load latest interview: %w", err)
	}

	res := s.classify(ctx, interview.ClassifyInput{
		Role:            interview.RoleInterviewer,
		Message:         messageText,
		Status:          status,
		CandidateName:   candidateName,
		InterviewerName: iv.Name,
	})
	s.reply(ctx, iv.WhatsAppNumber, res)
	return nil
}

// ============= Candidate transitions =============

func (s *Service) handleSlotSelection(ctx context.Context, d *interview.Detail, offered []interview.Slot, slotID string) error {
	var chosen *interview.Slot
	for i := range offered {
		if offered[i].ID == slotID {
			chosen = &offered[i]
			break
		}
	}
	if chosen == nil {
		// Stale or fabricated slot reference. Never a state change.
		slog.Warn("Slot selection referenced a slot outside the offered set",
			"interview_id", d.ID, "slot_id", slotID)
		s.notifier.SendChat(ctx, d.CandidateWhatsApp,
			"That option doesn't match the slots I offered. Could you pick one of the numbered options from my last message?")
		return nil
	}

	newStatus := interview.StatusAwaitingInterviewerConfirmation
	slotTime := chosen.SlotTime
	applied, err := s.interviews.SelectSlot(ctx, d.ID, chosen.ID, interview.StatusAwaitingCandidateSelection, interview.Update{
		Status:        &newStatus,
		ScheduledTime: &slotTime,
	})
	if errors.Is(err, interview.ErrSlotNotOffered) {
		s.notifier.SendChat(ctx, d.CandidateWhatsApp,
			"That option doesn't match the slots I offered. Could you pick one of the numbered options from my last message?")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to select slot: %w", err)
	}
	if !applied {
		slog.Info("Slot selection lost a concurrent transition", "interview_id", d.ID)
		return nil
	}

	s.notifier.SendSelectionAck(ctx, d, slotTime)
	s.notifier.SendConfirmationRequest(ctx, d, slotTime)
	slog.Info("Candidate selected slot", "interview_id", d.ID, "slot_time", slotTime)
	return nil
}

func (s *Service) handleRescheduleRequest(ctx context.Context, d *interview.Detail) error {
	attempts := d.RescheduleAttempts + 1
	if attempts >= s.cfg.MaxCandidateRescheduleAttempts {
		return s.cancelNoSlots(ctx, d, attempts)
	}

	all, err := s.interviews.AllSlots(ctx, d.ID)
	if err != nil {
		return fmt.Errorf("failed to load slot history: %w", err)
	}
	exclude := make([]time.Time, 0, len(all))
	for _, sl := range all {
		exclude = append(exclude, sl.SlotTime)
	}

	slotTimes := s.slots.Generate(s.now(), nil, exclude)
	if len(slotTimes) == 0 {
		return s.cancelNoSlots(ctx, d, attempts)
	}

	applied, err := s.interviews.ReplaceOfferedSlots(ctx, d.ID, interview.StatusAwaitingCandidateSelection, interview.Update{
		RescheduleAttempts: &attempts,
	}, slotTimes)
	if err != nil {
		return fmt.Errorf("failed to replace offered slots: %w", err)
	}
	if !applied {
		slog.Info("Reschedule lost a concurrent transition", "interview_id", d.ID)
		return nil
	}

	offered, err := s.interviews.OfferedSlots(ctx, d.ID)
	if err != nil {
		return fmt.Errorf("failed to load offered slots: %w", err)
	}
	s.notifier.SendSlotProposal(ctx, d, offered, true)
	slog.Info("Rescheduled with a fresh batch", "interview_id", d.ID, "attempt", attempts)
	return nil
}

func (s *Service) cancelNoSlots(ctx context.Context, d *interview.Detail, attempts int) error {
	cancelled := interview.StatusCancelledNoSlots
	applied, err := s.interviews.ReplaceOfferedSlots(ctx, d.ID, d.Status, interview.Update{
		Status:             &cancelled,
		RescheduleAttempts: &attempts,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to cancel interview: %w", err)
	}
	if applied {
		s.notifier.SendNoSlotsAvailable(ctx, d)
		slog.Info("Interview cancelled, no slots available", "interview_id", d.ID)
	}
	return nil
}

// ============= Interviewer transitions =============

func (s *Service) handleInterviewerConfirm(ctx context.Context, d *interview.Detail) error {
	if d.ScheduledTime == nil {
		return fmt.Errorf("interview %s awaiting confirmation has no scheduled time", d.ID)
	}

	// The calendar event is a prerequisite of entering scheduled: on
	// failure the row stays put and the next confirm message retries.
	summary := fmt.Sprintf("Interview: %s with %s", d.CandidateName, d.InterviewerName)
	link, err := s.calendar.CreateMeeting(ctx, summary, *d.ScheduledTime, s.slots.SlotDurationMinutes,
		[]string{d.CandidateEmail, d.InterviewerEmail})
	if err != nil {
		slog.Error("Calendar event creation failed", "interview_id", d.ID, "error", err)
		s.notifier.SendChat(ctx, d.InterviewerWhatsApp,
			"Thanks! I couldn't finalize the calendar invite just now. Please send your confirmation again in a few minutes.")
		return nil
	}

	scheduled := interview.StatusScheduled
	applied, err := s.interviews.UpdateIfStatus(ctx, d.ID, interview.StatusAwaitingInterviewerConfirmation, interview.Update{
		Status:      &scheduled,
		MeetingLink: &link,
	})
	if err != nil {
		return fmt.Errorf("failed to mark interview scheduled: %w", err)
	}
	if !applied {
		slog.Info("Confirmation lost a concurrent transition", "interview_id", d.ID)
		return nil
	}

	s.notifier.SendScheduledNotices(ctx, d, *d.ScheduledTime, link)
	slog.Info("Interview scheduled", "interview_id", d.ID, "meeting_link", link)
	return nil
}

func (s *Service) handleInterviewerRejection(ctx context.Context, d *interview.Detail) error {
	rejections := d.RejectionCount + 1
	if rejections < s.cfg.MaxInterviewerRejections {
		return s.reproposeAfterRejection(ctx, d, rejections)
	}
	return s.reassignInterviewer(ctx, d)
}

// reproposeAfterRejection sends the candidate a fresh batch that avoids the
// date the interviewer just declined.
func (s *Service) reproposeAfterRejection(ctx context.Context, d *interview.Detail, rejections int) error {
	var exclude []time.Time
	if d.ScheduledTime != nil {
		exclude = append(exclude, *d.ScheduledTime)
	}

	slotTimes := s.slots.Generate(s.now(), nil, exclude)
	if len(slotTimes) == 0 {
		return s.cancelNoSlots(ctx, d, d.RescheduleAttempts)
	}

	backToCandidate := interview.StatusAwaitingCandidateSelection
	applied, err := s.interviews.ReplaceOfferedSlots(ctx, d.ID, interview.StatusAwaitingInterviewerConfirmation, interview.Update{
		Status:         &backToCandidate,
		RejectionCount: &rejections,
	}, slotTimes)
	if err != nil {
		return fmt.Errorf("failed to replace offered slots: %w", err)
	}
	if !applied {
		slog.Info("Rejection lost a concurrent transition", "interview_id", d.ID)
		return nil
	}

	offered, err := s.interviews.OfferedSlots(ctx, d.ID)
	if err != nil {
		return fmt.Errorf("failed to load offered slots: %w", err)
	}
	s.notifier.SendChat(ctx, d.InterviewerWhatsApp,
		"Understood. I'll check alternative times with the candidate and get back to you.")
	s.notifier.SendSlotProposal(ctx, d, offered, true)
	slog.Info("Interviewer rejected, re-proposing to candidate",
		"interview_id", d.ID, "rejection_count", rejections)
	return nil
}

func (s *Service) reassignInterviewer(ctx context.Context, d *interview.Detail) error {
	replacement, err := s.interviewers.PickAvailable(ctx, d.InterviewerID)
	if errors.Is(err, interviewer.ErrNoneAvailable) {
		stalled := interview.StatusStalled
		applied, err := s.interviews.UpdateIfStatus(ctx, d.ID, interview.StatusAwaitingInterviewerConfirmation, interview.Update{
			Status: &stalled,
		})
		if err != nil {
			return fmt.Errorf("failed to stall interview: %w", err)
		}
		if applied {
			slog.Error("Interview stalled, rejection limit reached with no replacement interviewer",
				"interview_id", d.ID, "interviewer_id", d.InterviewerID)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to pick replacement interviewer: %w", err)
	}

	zero := 0
	applied, err := s.interviews.UpdateIfStatus(ctx, d.ID, interview.StatusAwaitingInterviewerConfirmation, interview.Update{
		InterviewerID:  &replacement.ID,
		RejectionCount: &zero,
	})
	if err != nil {
		return fmt.Errorf("failed to reassign interviewer: %w", err)
	}
	if !applied {
		slog.Info("Reassignment lost a concurrent transition", "interview_id", d.ID)
		return nil
	}

	reassigned, err := s.interviews.GetByID(ctx, d.ID)
	if err != nil {
		return fmt.Errorf("failed to load reassigned interview: %w", err)
	}
	s.notifier.SendReassignmentNotices(ctx, d.InterviewerName, d.InterviewerWhatsApp, reassigned, *d.ScheduledTime)
	slog.Info("Interviewer reassigned",
		"interview_id", d.ID, "previous_interviewer", d.InterviewerID, "new_interviewer", replacement.ID)
	return nil
}

// ============= Scheduler scans =============

func (s *Service) RunFeedbackScan(ctx context.Context) error {
	now := s.now()
	initialDelay := time.Duration(s.cfg.FeedbackInitialDelayMinutes) * time.Minute
	followUpDelay := time.Duration(s.cfg.FeedbackFollowUpDelayMinutes) * time.Minute

	due, err := s.interviews.ListFeedbackDue(ctx, now, initialDelay, followUpDelay, s.cfg.MaxFeedbackReminders)
	if err != nil {
		return fmt.Errorf("failed to list feedback-due interviews: %w", err)
	}

	for _, d := range due {
		// Claim before sending: the conditional write is what stops an
		// overlapping tick from sending the same reminder twice.
		awaiting := interview.StatusAwaitingFeedback
		count := d.RemindersSentCount + 1
		sentAt := now
		applied, err := s.interviews.UpdateIfStatus(ctx, d.ID, d.Status, interview.Update{
			Status:             &awaiting,
			RemindersSentCount: &count,
			LastReminderSentAt: &sentAt,
		})
		if err != nil {
			slog.Error("Feedback scan: failed to claim reminder", "interview_id", d.ID, "error", err)
			continue
		}
		if !applied {
			continue
		}
		s.notifier.SendFeedbackRequest(ctx, d)
		slog.Info("Feedback request sent", "interview_id", d.ID, "reminder", count)
	}

	overdue, err := s.interviews.ListFeedbackOverdue(ctx, s.cfg.MaxFeedbackReminders)
	if err != nil {
		return fmt.Errorf("failed to list feedback-overdue interviews: %w", err)
	}
	for _, d := range overdue {
		overdueStatus := interview.StatusFeedbackOverdue
		applied, err := s.interviews.UpdateIfStatus(ctx, d.ID, interview.StatusAwaitingFeedback, interview.Update{
			Status: &overdueStatus,
		})
		if err != nil {
			slog.Error("Feedback scan: failed to escalate", "interview_id", d.ID, "error", err)
			continue
		}
		if applied {
			slog.Warn("Feedback overdue, reminder limit reached", "interview_id", d.ID)
		}
	}

	return nil
}

func (s *Service) RunMailboxPollScan(ctx context.Context) error {
	now := s.now()
	pollInterval := time.Duration(s.cfg.EmailPollIntervalMinutes) * time.Minute

	due, err := s.interviews.ListMailboxPollDue(ctx, now, pollInterval, s.cfg.MaxFeedbackEmailPolls)
	if err != nil {
		return fmt.Errorf("failed to list mailbox-poll-due interviews: %w", err)
	}

	for _, d := range due {
		// The attempt is consumed up front, whatever the fetch yields,
		// so polling always terminates at the cap.
		attempts := d.EmailPollAttempts + 1
		polledAt := now
		applied, err := s.interviews.UpdateIfStatus(ctx, d.ID, interview.StatusAwaitingFeedback, interview.Update{
			EmailPollAttempts: &attempts,
			LastEmailPolledAt: &polledAt,
		})
		if err != nil {
			slog.Error("Mailbox scan: failed to claim poll attempt", "interview_id", d.ID, "error", err)
			continue
		}
		if !applied {
			continue
		}

		completed, err := s.pollMailboxOnce(ctx, d)
		if err != nil {
			slog.Error("Mailbox scan: poll failed", "interview_id", d.ID, "error", err)
			continue
		}
		if !completed && attempts >= s.cfg.MaxFeedbackEmailPolls {
			overdueStatus := interview.StatusFeedbackOverdue
			escalated, err := s.interviews.UpdateIfStatus(ctx, d.ID, interview.StatusAwaitingFeedback, interview.Update{
				Status: &overdueStatus,
			})
			if err != nil {
				slog.Error("Mailbox scan: failed to escalate", "interview_id", d.ID, "error", err)
				continue
			}
			if escalated {
				slog.Warn("Feedback overdue, mailbox poll limit reached", "interview_id", d.ID)
			}
		}
	}

	return nil
}

// pollMailboxOnce fetches unread feedback for one interview and applies the
// first decisive recommendation found.
func (s *Service) pollMailboxOnce(ctx context.Context, d *interview.Detail) (bool, error) {
	bodies, err := s.mailbox.FetchFeedback(ctx, d.ID, d.InterviewerEmail, s.cfg.FeedbackSubjectKeyword)
	if err != nil {
		return false, fmt.Errorf("failed to fetch feedback mail: %w", err)
	}

	for _, body := range bodies {
		analysis, err := s.classifier.ParseFeedback(ctx, body)
		if err != nil {
			slog.Warn("Feedback parsing failed", "interview_id", d.ID, "error", err)
			continue
		}
		final, decisive := analysis.Recommendation.CompletedStatus()
		if !decisive {
			continue
		}

		summary := analysis.Summary
		applied, err := s.interviews.UpdateIfStatus(ctx, d.ID, interview.StatusAwaitingFeedback, interview.Update{
			Status:          &final,
			FeedbackSummary: &summary,
		})
		if err != nil {
			return false, fmt.Errorf("failed to complete interview: %w", err)
		}
		if !applied {
			return true, nil
		}

		switch analysis.Recommendation {
		case interview.RecommendationSelected:
			err = s.candidates.UpdateStatus(ctx, d.CandidateID, candidate.StatusSelected)
		case interview.RecommendationRejected:
			err = s.candidates.UpdateStatus(ctx, d.CandidateID, candidate.StatusRejected)
		}
		if err != nil {
			slog.Error("Failed to update candidate status after feedback",
				"interview_id", d.ID, "candidate_id", d.CandidateID, "error", err)
		}

		s.notifier.SendOutcome(ctx, d, analysis.Recommendation)
		slog.Info("Interview completed from feedback",
			"interview_id", d.ID, "recommendation", analysis.Recommendation)
		return true, nil
	}

	return false, nil
}

// ============= Admin / debug =============

func (s *Service) Inspect(ctx context.Context, id string) (*interview.InspectResult, error) {
	d, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	slots, err := s.interviews.AllSlots(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load slots: %w", err)
	}
	return &interview.InspectResult{Interview: *d, Slots: slots}, nil
}

// CreateDebugPastInterview seeds a scheduled interview whose scheduled time
// already passed, so the next feedback scan picks it up immediately.
func (s *Service) CreateDebugPastInterview(ctx context.Context) (string, error) {
	shortlist, err := s.candidates.ListShortlistable(ctx, 0, 1)
	if err != nil {
		return "", fmt.Errorf("failed to pick a candidate: %w", err)
	}
	if len(shortlist) == 0 {
		return "", candidate.ErrCandidateNotFound
	}
	iv, err := s.interviewers.PickAvailable(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to pick interviewer: %w", err)
	}

	itv := &interview.Interview{
		CandidateID:   shortlist[0].ID,
		InterviewerID: iv.ID,
		Status:        interview.StatusScheduled,
	}
	if err := s.interviews.Create(ctx, itv); err != nil {
		return "", fmt.Errorf("failed to create interview: %w", err)
	}

	past := s.now().Add(-2 * time.Hour)
	if _, err := s.interviews.UpdateIfStatus(ctx, itv.ID, interview.StatusScheduled, interview.Update{
		ScheduledTime: &past,
	}); err != nil {
		return "", fmt.Errorf("failed to backdate interview: %w", err)
	}

	slog.Info("Debug past interview created", "interview_id", itv.ID)
	return itv.ID, nil
}

// ============= Helpers =============

// classify never fails upward: classifier trouble becomes an unclear intent
// with a generic clarification, so the party always gets an answer.
func (s *Service) classify(ctx context.Context, in interview.ClassifyInput) interview.ClassifyResult {
	res, err := s.classifier.Classify(ctx, in)
	if err != nil {
		slog.Warn("Intent classification failed", "role", in.Role, "error", err)
		return interview.ClassifyResult{Intent: interview.IntentUnclear, Reply: fallbackReply}
	}
	return res
}

func (s *Service) reply(ctx context.Context, number string, res interview.ClassifyResult) {
	text := res.Reply
	if text == "" {
		text = fallbackReply
	}
	s.notifier.SendChat(ctx, number, text)
}
