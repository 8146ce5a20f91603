package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gnx-solutions/interview-scheduler/internal/domain/interview"
)

// ChatSender delivers one chat message to a phone number
type ChatSender interface {
	Send(ctx context.Context, toNumber, body string) error
}

// EmailSender delivers one plain-text email
type EmailSender interface {
	Send(ctx context.Context, toEmail, subject, body string) error
}

// Service renders and sends every templated message of the interview
// lifecycle. Delivery failures are logged here and never returned: the
// orchestrator's state is already committed and the next trigger retries
// whatever still applies.
type Service struct {
	chat    ChatSender
	email   EmailSender
	hrEmail string

	displayTZ *time.Location
}

var _ interview.Notifier = (*Service)(nil)

func NewService(chat ChatSender, email EmailSender, hrEmail string) *Service {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		slog.Warn("Failed to load display timezone, falling back to UTC", "error", err)
		loc = time.UTC
	}
	return &Service{chat: chat, email: email, hrEmail: hrEmail, displayTZ: loc}
}

func (s *Service) SendSlotProposal(ctx context.Context, d *interview.Detail, slots []interview.Slot, reschedule bool) {
	var msg string
	if reschedule {
		msg = fmt.Sprintf(
			"Hi %s,\n\n"+
				"No problem at all! We understand that schedules can be tight.\n\n"+
				"Here is a new set of available time slots for your interview:\n\n"+
				"%s\n\n"+
				"Please let us know which one works for you. 😊",
			d.CandidateName, s.formatSlotList(slots))
	} else {
		msg = fmt.Sprintf(
			"Hello %s! 👋\n\n"+
				"Thank you for your interest in the position at GNX Solutions! We are excited to move forward with your application and would like to schedule an interview.\n\n"+
				"🗓️ Please select one of the following time slots:\n%s\n\n"+
				"Just reply with your preferred slot. If none of these times work for you, please let us know.\n\n"+
				"Looking forward to hearing from you soon!\n\n"+
				"Best regards,\nGNX Solutions HR Team",
			d.CandidateName, s.formatSlotList(slots))
	}
	s.sendChat(ctx, d.CandidateWhatsApp, msg)
}

func (s *Service) SendSelectionAck(ctx context.Context, d *interview.Detail, slotTime time.Time) {
	msg := fmt.Sprintf(
		"Great, thank you %s!\n\n"+
			"We've received your selection and are now confirming this time with the interviewer.\n\n"+
			"You will receive a final confirmation with the meeting link as soon as they respond. ✨",
		d.CandidateName)
	s.sendChat(ctx, d.CandidateWhatsApp, msg)
}

func (s *Service) SendConfirmationRequest(ctx context.Context, d *interview.Detail, slotTime time.Time) {
	msg := fmt.Sprintf(
		"Hi %s,\n\n"+
			"An interview with candidate *%s* has been proposed for:\n\n"+
			"📅 *%s*\n\n"+
			"Please reply with \"Confirm\" to accept or \"Reject\" to reschedule.\n\n"+
			"Thank you! 🙏\nGNX Solutions HR Team",
		d.InterviewerName, d.CandidateName, s.formatDisplayTime(slotTime))
	s.sendChat(ctx, d.InterviewerWhatsApp, msg)
}

func (s *Service) SendScheduledNotices(ctx context.Context, d *interview.Detail, slotTime time.Time, meetingLink string) {
	details := fmt.Sprintf(
		"Here are the final details:\n\n"+
			"*Candidate:* %s\n"+
			"*Interviewer:* %s\n"+
			"*Time:* %s\n\n"+
			"🔗 *Meeting Link:*\n%s\n\n"+
			"A calendar invitation has also been sent to your email. Please accept it to add the event to your calendar.",
		d.CandidateName, d.InterviewerName, s.formatDisplayTime(slotTime), meetingLink)

	s.sendChat(ctx, d.CandidateWhatsApp, fmt.Sprintf(
		"✅ *Confirmed!* Your interview is scheduled.\n\nHello %s,\n\n%s", d.CandidateName, details))
	s.sendChat(ctx, d.InterviewerWhatsApp, fmt.Sprintf(
		"✅ *Confirmed!* Your interview is scheduled.\n\nHello %s,\n\n%s", d.InterviewerName, details))
}

func (s *Service) SendNoSlotsAvailable(ctx context.Context, d *interview.Detail) {
	msg := fmt.Sprintf(
		"Hi %s,\n\n"+
			"It seems we couldn't find a suitable time for your interview after a few attempts. To ensure we can connect, please contact our HR team directly at *%s* to coordinate a time that works for you.\n\n"+
			"We appreciate your patience and look forward to speaking with you.",
		d.CandidateName, s.hrEmail)
	s.sendChat(ctx, d.CandidateWhatsApp, msg)
}

func (s *Service) SendFeedbackRequest(ctx context.Context, d *interview.Detail) {
	chatMsg := fmt.Sprintf(
		"Hi %s,\n\n"+
			"This is a friendly reminder regarding the interview with *%s* that recently concluded.\n\n"+
			"Could you please provide your feedback and recommendation (Selected/Rejected/Hold) by replying to the email we sent, or by directly emailing our HR team at *%s*?\n\n"+
			"Your timely feedback is greatly appreciated! 👍",
		d.InterviewerName, d.CandidateName, s.hrEmail)
	s.sendChat(ctx, d.InterviewerWhatsApp, chatMsg)

	scheduled := ""
	if d.ScheduledTime != nil {
		scheduled = s.formatDisplayTime(*d.ScheduledTime)
	}
	subject := fmt.Sprintf("ACTION REQUIRED: Feedback for interview with %s [Interview ID: %s]",
		d.CandidateName, d.ID)
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Hope the interview with %s (scheduled for %s) went well!\n\n"+
			"Please reply to this email directly with your feedback and recommendation (Selected/Rejected/Hold) for the candidate. Your timely feedback is crucial for our hiring process.\n\n"+
			"Alternatively, you can email your feedback to our HR team at %s.\n\n"+
			"Thank you for your valuable time and contribution.\n\n"+
			"Best regards,\nGNX Solutions HR Team",
		d.InterviewerName, d.CandidateName, scheduled, s.hrEmail)
	s.sendEmail(ctx, d.InterviewerEmail, subject, body)
}

func (s *Service) SendReassignmentNotices(ctx context.Context, previousName, previousWhatsApp string, d *interview.Detail, slotTime time.Time) {
	released := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Thank you for your response regarding the interview with %s. Due to repeated scheduling conflicts, we have reassigned this interview to another team member to ensure a timely process for the candidate.\n\n"+
			"No action is needed from your end. We appreciate your understanding.",
		previousName, d.CandidateName)
	s.sendChat(ctx, previousWhatsApp, released)

	s.SendConfirmationRequest(ctx, d, slotTime)
}

func (s *Service) SendOutcome(ctx context.Context, d *interview.Detail, rec interview.Recommendation) {
	var msg string
	switch rec {
	case interview.RecommendationSelected:
		msg = fmt.Sprintf(
			"Dear %s,\n\n"+
				"We have an exciting update! Following your interview, we are thrilled to inform you that you have been selected for the role. 🎉\n\n"+
				"Our HR team will be in touch with you shortly via email with the official offer letter and next steps. Congratulations!",
			d.CandidateName)
	case interview.RecommendationRejected:
		msg = fmt.Sprintf(
			"Dear %s,\n\n"+
				"Thank you for taking the time to interview with us. We sincerely appreciate your interest in our company.\n\n"+
				"After careful consideration, we have decided to move forward with other candidates at this time. We wish you the very best in your job search and encourage you to apply for future openings.",
			d.CandidateName)
	default:
		// A hold outcome is internal; the candidate is not notified.
		return
	}
	s.sendChat(ctx, d.CandidateWhatsApp, msg)
}

func (s *Service) SendChat(ctx context.Context, number, text string) {
	s.sendChat(ctx, number, text)
}

func (s *Service) sendChat(ctx context.Context, number, body string) {
	if err := s.chat.Send(ctx, number, body); err != nil {
		slog.Error("Failed to send chat message", "to", number, "error", err)
	}
}

func (s *Service) sendEmail(ctx context.Context, to, subject, body string) {
	if err := s.email.Send(ctx, to, subject, body); err != nil {
		slog.Error("Failed to send email", "to", to, "subject", subject, "error", err)
	}
}

func (s *Service) formatSlotList(slots []interview.Slot) string {
	lines := make([]string, 0, len(slots))
	for i, sl := range slots {
		lines = append(lines, fmt.Sprintf("*%d.* %s", i+1, s.formatDisplayTime(sl.SlotTime)))
	}
	return strings.Join(lines, "\n")
}

func (s *Service) formatDisplayTime(t time.Time) string {
	return t.In(s.displayTZ).Format("Monday, January 02 at 03:04 PM (MST)")
}
