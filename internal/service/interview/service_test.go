package interview

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnx-solutions/interview-scheduler/internal/config"
	"github.com/gnx-solutions/interview-scheduler/internal/domain/candidate"
	"github.com/gnx-solutions/interview-scheduler/internal/domain/interview"
	"github.com/gnx-solutions/interview-scheduler/internal/domain/interviewer"
)

// Monday 09:00 UTC, so generated slots land Tuesday onward.
var testNow = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

func testSchedulingConfig() config.SchedulingConfig {
	return config.SchedulingConfig{
		SlotsPerProposal:               3,
		MaxCandidateRescheduleAttempts: 2,
		MaxInterviewerRejections:       2,
		MinimumScore:                   75,
		TopNCandidates:                 3,
		FeedbackCheckIntervalMinutes:   5,
		FeedbackInitialDelayMinutes:    1,
		FeedbackFollowUpDelayMinutes:   120,
		MaxFeedbackReminders:           3,
		EmailPollIntervalMinutes:       1,
		MaxFeedbackEmailPolls:          5,
		FeedbackSubjectKeyword:         "Feedback",
	}
}

// ===== In-memory fakes =====

type memCandidates struct {
	mu   sync.Mutex
	byID map[string]*candidate.Candidate
}

func newMemCandidates() *memCandidates {
	return &memCandidates{byID: make(map[string]*candidate.Candidate)}
}

func (m *memCandidates) add(c *candidate.Candidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[c.ID] = c
}

func (m *memCandidates) GetByID(ctx context.Context, id string) (*candidate.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, candidate.ErrCandidateNotFound
}

func (m *memCandidates) GetByWhatsApp(ctx context.Context, number string) (*candidate.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byID {
		if c.WhatsAppNumber == number {
			cp := *c
			return &cp, nil
		}
	}
	return nil, candidate.ErrCandidateNotFound
}

func (m *memCandidates) ListShortlistable(ctx context.Context, minScore, limit int) ([]*candidate.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*candidate.Candidate
	for _, c := range m.byID {
		if c.Status == candidate.StatusApplied && c.CVScore >= minScore {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CVScore > out[j].CVScore })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memCandidates) UpdateStatus(ctx context.Context, id string, status candidate.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return candidate.ErrCandidateNotFound
	}
	c.Status = status
	return nil
}

type memInterviewers struct {
	mu   sync.Mutex
	list []*interviewer.Interviewer
}

func (m *memInterviewers) GetByID(ctx context.Context, id string) (*interviewer.Interviewer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, iv := range m.list {
		if iv.ID == id {
			cp := *iv
			return &cp, nil
		}
	}
	return nil, interviewer.ErrInterviewerNotFound
}

func (m *memInterviewers) GetByWhatsApp(ctx context.Context, number string) (*interviewer.Interviewer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, iv := range m.list {
		if iv.WhatsAppNumber == number {
			cp := *iv
			return &cp, nil
		}
	}
	return nil, interviewer.ErrInterviewerNotFound
}

func (m *memInterviewers) PickAvailable(ctx context.Context, excludeID string) (*interviewer.Interviewer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, iv := range m.list {
		if iv.IsActive && iv.ID != excludeID {
			cp := *iv
			return &cp, nil
		}
	}
	return nil, interviewer.ErrNoneAvailable
}

type memInterviews struct {
	mu         sync.Mutex
	byID       map[string]*interview.Interview
	slots      map[string][]interview.Slot
	candidates *memCandidates
	panel      *memInterviewers
	seq        int
}

func newMemInterviews(c *memCandidates, p *memInterviewers) *memInterviews {
	return &memInterviews{
		byID:       make(map[string]*interview.Interview),
		slots:      make(map[string][]interview.Slot),
		candidates: c,
		panel:      p,
	}
}

func (m *memInterviews) detailLocked(iv *interview.Interview) *interview.Detail {
	d := &interview.Detail{Interview: *iv}
	if c, ok := m.candidates.byID[iv.CandidateID]; ok {
		d.CandidateName = c.Name
		d.CandidateEmail = c.Email
		d.CandidateWhatsApp = c.WhatsAppNumber
	}
	for _, p := range m.panel.list {
		if p.ID == iv.InterviewerID {
			d.InterviewerName = p.Name
			d.InterviewerEmail = p.Email
			d.InterviewerWhatsApp = p.WhatsAppNumber
		}
	}
	return d
}

func (m *memInterviews) Create(ctx context.Context, iv *interview.Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if iv.ID == "" {
		iv.ID = fmt.Sprintf("itv-%d", m.seq)
	}
	iv.CreatedAt = testNow.Add(time.Duration(m.seq) * time.Second)
	cp := *iv
	m.byID[iv.ID] = &cp
	return nil
}

func (m *memInterviews) GetByID(ctx context.Context, id string) (*interview.Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.byID[id]
	if !ok {
		return nil, interview.ErrInterviewNotFound
	}
	return m.detailLocked(iv), nil
}

func (m *memInterviews) GetActiveByCandidate(ctx context.Context, candidateID string) (*interview.Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *interview.Interview
	for _, iv := range m.byID {
		if iv.CandidateID == candidateID && iv.Status.IsActive() {
			if latest == nil || iv.CreatedAt.After(latest.CreatedAt) {
				latest = iv
			}
		}
	}
	if latest == nil {
		return nil, interview.ErrInterviewNotFound
	}
	return m.detailLocked(latest), nil
}

func (m *memInterviews) GetLatestByCandidate(ctx context.Context, candidateID string) (*interview.Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *interview.Interview
	for _, iv := range m.byID {
		if iv.CandidateID == candidateID {
			if latest == nil || iv.CreatedAt.After(latest.CreatedAt) {
				latest = iv
			}
		}
	}
	if latest == nil {
		return nil, interview.ErrInterviewNotFound
	}
	return m.detailLocked(latest), nil
}

func (m *memInterviews) GetAwaitingConfirmation(ctx context.Context, interviewerID string) (*interview.Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, iv := range m.byID {
		if iv.InterviewerID == interviewerID && iv.Status == interview.StatusAwaitingInterviewerConfirmation {
			return m.detailLocked(iv), nil
		}
	}
	return nil, interview.ErrInterviewNotFound
}

func (m *memInterviews) GetLatestByInterviewer(ctx context.Context, interviewerID string) (*interview.Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *interview.Interview
	for _, iv := range m.byID {
		if iv.InterviewerID == interviewerID {
			if latest == nil || iv.CreatedAt.After(latest.CreatedAt) {
				latest = iv
			}
		}
	}
	if latest == nil {
		return nil, interview.ErrInterviewNotFound
	}
	return m.detailLocked(latest), nil
}

func applyUpdate(iv *interview.Interview, upd interview.Update) {
	if upd.Status != nil {
		iv.Status = *upd.Status
	}
	if upd.InterviewerID != nil {
		iv.InterviewerID = *upd.InterviewerID
	}
	if upd.RejectionCount != nil {
		iv.RejectionCount = *upd.RejectionCount
	}
	if upd.RescheduleAttempts != nil {
		iv.RescheduleAttempts = *upd.RescheduleAttempts
	}
	if upd.ScheduledTime != nil {
		t := *upd.ScheduledTime
		iv.ScheduledTime = &t
	}
	if upd.MeetingLink != nil {
		l := *upd.MeetingLink
		iv.MeetingLink = &l
	}
	if upd.FeedbackSummary != nil {
		s := *upd.FeedbackSummary
		iv.FeedbackSummary = &s
	}
	if upd.RemindersSentCount != nil {
		iv.RemindersSentCount = *upd.RemindersSentCount
	}
	if upd.LastReminderSentAt != nil {
		t := *upd.LastReminderSentAt
		iv.LastReminderSentAt = &t
	}
	if upd.EmailPollAttempts != nil {
		iv.EmailPollAttempts = *upd.EmailPollAttempts
	}
	if upd.LastEmailPolledAt != nil {
		t := *upd.LastEmailPolledAt
		iv.LastEmailPolledAt = &t
	}
}

func (m *memInterviews) UpdateIfStatus(ctx context.Context, id string, expected interview.Status, upd interview.Update) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.byID[id]
	if !ok || iv.Status != expected {
		return false, nil
	}
	applyUpdate(iv, upd)
	return true, nil
}

func (m *memInterviews) ReplaceOfferedSlots(ctx context.Context, id string, expected interview.Status, upd interview.Update, slotTimes []time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.byID[id]
	if !ok || iv.Status != expected {
		return false, nil
	}
	applyUpdate(iv, upd)
	m.rejectOfferedLocked(id)
	m.addSlotsLocked(id, slotTimes)
	return true, nil
}

func (m *memInterviews) SelectSlot(ctx context.Context, id, slotID string, expected interview.Status, upd interview.Update) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.byID[id]
	if !ok {
		return false, nil
	}

	slots := m.slots[id]
	chosen := -1
	for i := range slots {
		if slots[i].ID == slotID && slots[i].Status == interview.SlotOffered {
			chosen = i
			break
		}
	}
	if chosen == -1 {
		return false, interview.ErrSlotNotOffered
	}
	if iv.Status != expected {
		return false, nil
	}

	slots[chosen].Status = interview.SlotSelected
	m.rejectOfferedLocked(id)
	applyUpdate(iv, upd)
	return true, nil
}

func (m *memInterviews) rejectOfferedLocked(id string) {
	slots := m.slots[id]
	for i := range slots {
		if slots[i].Status == interview.SlotOffered {
			slots[i].Status = interview.SlotRejected
		}
	}
}

func (m *memInterviews) addSlotsLocked(id string, slotTimes []time.Time) {
	for _, t := range slotTimes {
		m.seq++
		m.slots[id] = append(m.slots[id], interview.Slot{
			ID:          fmt.Sprintf("slot-%d", m.seq),
			InterviewID: id,
			SlotTime:    t,
			Status:      interview.SlotOffered,
		})
	}
}

func (m *memInterviews) AddSlots(ctx context.Context, interviewID string, slotTimes []time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addSlotsLocked(interviewID, slotTimes)
	return nil
}

func (m *memInterviews) OfferedSlots(ctx context.Context, interviewID string) ([]interview.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []interview.Slot
	for _, s := range m.slots[interviewID] {
		if s.Status == interview.SlotOffered {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotTime.Before(out[j].SlotTime) })
	return out, nil
}

func (m *memInterviews) AllSlots(ctx context.Context, interviewID string) ([]interview.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]interview.Slot(nil), m.slots[interviewID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].SlotTime.Before(out[j].SlotTime) })
	return out, nil
}

func (m *memInterviews) ListFeedbackDue(ctx context.Context, now time.Time, initialDelay, followUpDelay time.Duration, maxReminders int) ([]*interview.Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*interview.Detail
	for _, iv := range m.byID {
		switch iv.Status {
		case interview.StatusScheduled:
			if iv.ScheduledTime != nil && !iv.ScheduledTime.After(now.Add(-initialDelay)) {
				out = append(out, m.detailLocked(iv))
			}
		case interview.StatusAwaitingFeedback:
			if iv.RemindersSentCount < maxReminders &&
				iv.LastReminderSentAt != nil && !iv.LastReminderSentAt.After(now.Add(-followUpDelay)) {
				out = append(out, m.detailLocked(iv))
			}
		}
	}
	return out, nil
}

func (m *memInterviews) ListFeedbackOverdue(ctx context.Context, maxReminders int) ([]*interview.Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*interview.Detail
	for _, iv := range m.byID {
		if iv.Status == interview.StatusAwaitingFeedback && iv.RemindersSentCount >= maxReminders {
			out = append(out, m.detailLocked(iv))
		}
	}
	return out, nil
}

func (m *memInterviews) ListMailboxPollDue(ctx context.Context, now time.Time, pollInterval time.Duration, maxPolls int) ([]*interview.Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*interview.Detail
	for _, iv := range m.byID {
		if iv.Status != interview.StatusAwaitingFeedback || iv.EmailPollAttempts >= maxPolls {
			continue
		}
		if iv.LastEmailPolledAt == nil || !iv.LastEmailPolledAt.After(now.Add(-pollInterval)) {
			out = append(out, m.detailLocked(iv))
		}
	}
	return out, nil
}

type scriptClassifier struct {
	result      interview.ClassifyResult
	err         error
	feedback    interview.FeedbackAnalysis
	feedbackErr error
}

func (c *scriptClassifier) Classify(ctx context.Context, in interview.ClassifyInput) (interview.ClassifyResult, error) {
	return c.result, c.err
}

func (c *scriptClassifier) ParseFeedback(ctx context.Context, body string) (interview.FeedbackAnalysis, error) {
	return c.feedback, c.feedbackErr
}

type fakeCalendar struct {
	mu    sync.Mutex
	link  string
	err   error
	calls int
}

func (f *fakeCalendar) CreateMeeting(ctx context.Context, summary string, start time.Time, durationMinutes int, attendeeEmails []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.link, nil
}

type fakeMailbox struct {
	mu     sync.Mutex
	bodies []string
	err    error
	calls  int
}

func (f *fakeMailbox) FetchFeedback(ctx context.Context, interviewID, senderAddress, subjectKeyword string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.bodies, f.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) record(event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e == event {
			c++
		}
	}
	return c
}

func (n *recordingNotifier) SendSlotProposal(ctx context.Context, d *interview.Detail, slots []interview.Slot, reschedule bool) {
	if reschedule {
		n.record("slot_proposal_reschedule")
	} else {
		n.record("slot_proposal")
	}
}
func (n *recordingNotifier) SendSelectionAck(ctx context.Context, d *interview.Detail, slotTime time.Time) {
	n.record("selection_ack")
}
func (n *recordingNotifier) SendConfirmationRequest(ctx context.Context, d *interview.Detail, slotTime time.Time) {
	n.record("confirmation_request")
}
func (n *recordingNotifier) SendScheduledNotices(ctx context.Context, d *interview.Detail, slotTime time.Time, meetingLink string) {
	n.record("scheduled_notices")
}
func (n *recordingNotifier) SendNoSlotsAvailable(ctx context.Context, d *interview.Detail) {
	n.record("no_slots")
}
func (n *recordingNotifier) SendFeedbackRequest(ctx context.Context, d *interview.Detail) {
	n.record("feedback_request")
}
func (n *recordingNotifier) SendReassignmentNotices(ctx context.Context, previousName, previousWhatsApp string, d *interview.Detail, slotTime time.Time) {
	n.record("reassignment")
}
func (n *recordingNotifier) SendOutcome(ctx context.Context, d *interview.Detail, rec interview.Recommendation) {
	n.record("outcome:" + string(rec))
}
func (n *recordingNotifier) SendChat(ctx context.Context, number, text string) {
	n.record("chat")
}

// ===== Fixture =====

type fixture struct {
	svc        *Service
	candidates *memCandidates
	panel      *memInterviewers
	interviews *memInterviews
	classifier *scriptClassifier
	calendar   *fakeCalendar
	mailbox    *fakeMailbox
	notifier   *recordingNotifier
}

func newFixture() *fixture {
	f := &fixture{
		candidates: newMemCandidates(),
		panel:      &memInterviewers{},
		classifier: &scriptClassifier{},
		calendar:   &fakeCalendar{link: "https://meet.example/abc"},
		mailbox:    &fakeMailbox{},
		notifier:   &recordingNotifier{},
	}
	f.interviews = newMemInterviews(f.candidates, f.panel)
	f.svc = NewService(testSchedulingConfig(), f.candidates, f.panel, f.interviews,
		f.classifier, f.calendar, f.mailbox, f.notifier)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func (f *fixture) addCandidate(id string, score int) *candidate.Candidate {
	c := &candidate.Candidate{
		ID:             id,
		Name:           "Candidate " + id,
		Email:          id + "@example.com",
		WhatsAppNumber: "+9190000" + id,
		CVScore:        score,
		Status:         candidate.StatusApplied,
	}
	f.candidates.add(c)
	return c
}

func (f *fixture) addInterviewer(id string) *interviewer.Interviewer {
	iv := &interviewer.Interviewer{
		ID:             id,
		Name:           "Interviewer " + id,
		Email:          id + "@gnx-solutions.example",
		WhatsAppNumber: "+9191000" + id,
		IsActive:       true,
	}
	f.panel.list = append(f.panel.list, iv)
	return iv
}

func (f *fixture) seedInterview(t *testing.T, candidateID, interviewerID string, status interview.Status) *interview.Interview {
	t.Helper()
	iv := &interview.Interview{
		CandidateID:   candidateID,
		InterviewerID: interviewerID,
		Status:        status,
	}
	require.NoError(t, f.interviews.Create(context.Background(), iv))
	return iv
}

func (f *fixture) interviewState(t *testing.T, id string) *interview.Detail {
	t.Helper()
	d, err := f.interviews.GetByID(context.Background(), id)
	require.NoError(t, err)
	return d
}

// ===== Shortlisting =====

func TestStartShortlisting_InitiatesInterviewWithOfferedSlots(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	f.addCandidate("c1", 92)
	f.addInterviewer("i1")

	result, err := f.svc.StartShortlisting(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Initiated)

	d, err := f.interviews.GetActiveByCandidate(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, interview.StatusAwaitingCandidateSelection, d.Status)

	offered, err := f.interviews.OfferedSlots(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, offered, 3)
	for _, s := range offered {
		assert.False(t, s.SlotTime.Before(testNow.Add(24*time.Hour)),
			"slot %v is inside the lead window", s.SlotTime)
		assert.GreaterOrEqual(t, s.SlotTime.Hour(), 10)
		assert.Less(t, s.SlotTime.Hour(), 17)
	}

	c, err := f.candidates.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, candidate.StatusInterviewInitiated, c.Status)
	assert.Equal(t, 1, f.notifier.count("slot_proposal"))
}

func TestStartShortlisting_SkipsBelowThresholdAndAlreadyActive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	f.addCandidate("low", 60)
	f.addCandidate("busy", 90)
	f.addInterviewer("i1")
	f.seedInterview(t, "busy", "i1", interview.StatusScheduled)

	result, err := f.svc.StartShortlisting(ctx)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Initiated)
	assert.Zero(t, f.notifier.count("slot_proposal"))
}

// ===== Candidate slot selection =====

func TestSlotSelection_MovesToAwaitingConfirmation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	c := f.addCandidate("c1", 92)
	f.addInterviewer("i1")
	itv := f.seedInterview(t, "c1", "i1", interview.StatusAwaitingCandidateSelection)

	times := []time.Time{
		testNow.Add(26 * time.Hour),
		testNow.Add(27 * time.Hour),
		testNow.Add(28 * time.Hour),
	}
	require.NoError(t, f.interviews.AddSlots(ctx, itv.ID, times))
	offered, err := f.interviews.OfferedSlots(ctx, itv.ID)
	require.NoError(t, err)

	f.classifier.result = interview.ClassifyResult{
		Intent: interview.IntentSelectSlot,
		SlotID: offered[1].ID,
	}

	require.NoError(t, f.svc.HandleInboundMessage(ctx, c.WhatsAppNumber, "option 2 works"))

	d := f.interviewState(t, itv.ID)
	assert.Equal(t, interview.StatusAwaitingInterviewerConfirmation, d.Status)
	require.NotNil(t, d.ScheduledTime)
	assert.True(t, d.ScheduledTime.Equal(times[1]))

	all, err := f.interviews.AllSlots(ctx, itv.ID)
	require.NoError(t, err)
	for _, s := range all {
		if s.SlotTime.Equal(times[1]) {
			assert.Equal(t, interview.SlotSelected, s.Status)
		} else {
			assert.Equal(t, interview.SlotRejected, s.Status)
		}
	}

	assert.Equal(t, 1, f.notifier.count("selection_ack"))
	assert.Equal(t, 1, f.notifier.count("confirmation_request"))
}

func TestSlotSelection_UnknownSlotIDNeverMutatesState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	c := f.addCandidate("c1", 92)
	f.addInterviewer("i1")
	itv := f.seedInterview(t, "c1", "i1", interview.StatusAwaitingCandidateSelection)
	require.NoError(t, f.interviews.AddSlots(ctx, itv.ID, []time.Time{testNow.Add(26 * time.Hour)}))

	f.classifier.result = interview.ClassifyResult{
		Intent: interview.IntentSelectSlot,
		SlotID: "slot-from-some-stale-batch",
	}

	require.NoError(t, f.svc.HandleInboundMessage(ctx, c.WhatsAppNumber, "I'll take that one"))

	d := f.interviewState(t, itv.ID)
	assert.Equal(t, interview.StatusAwaitingCandidateSelection, d.Status)
	assert.Nil(t, d.ScheduledTime)

	offered, err := f.interviews.OfferedSlots(ctx, itv.ID)
	require.NoError(t, err)
	assert.Len(t, offered, 1)
	assert.Equal(t, 1, f.notifier.count("chat"))
}

// ===== Candidate reschedule =====

func TestReschedule_ReplacesBatchAndCountsAttempt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	c := f.addCandidate("c1", 92)
	f.addInterviewer("i1")
	itv := f.seedInterview(t, "c1", "i1", interview.StatusAwaitingCandidateSelection)

	first := testNow.Add(26 * time.Hour)
	require.NoError(t, f.interviews.AddSlots(ctx, itv.ID, []time.Time{first}))

	f.classifier.result = interview.ClassifyResult{Intent: interview.IntentRequestReschedule}

	require.NoError(t, f.svc.HandleInboundMessage(ctx, c.WhatsAppNumber, "none of these work"))

	d := f.interviewState(t, itv.ID)
	assert.Equal(t, interview.StatusAwaitingCandidateSelection, d.Status)
	assert.Equal(t, 1, d.RescheduleAttempts)

	offered, err := f.interviews.OfferedSlots(ctx, itv.ID)
	require.NoError(t, err)
	require.Len(t, offered, 3)
	for _, s := range offered {
		assert.False(t, s.SlotTime.Equal(first), "old slot reoffered")
		// The previously offered date is excluded wholesale.
		assert.NotEqual(t, first.Format("2006-01-02"), s.SlotTime.Format("2006-01-02"))
	}
	assert.Equal(t, 1, f.notifier.count("slot_proposal_reschedule"))
}

func TestReschedule_ExhaustionCancelsInterview(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	c := f.addCandidate("c1", 92)
	f.addInterviewer("i1")
	itv := f.seedInterview(t, "c1", "i1", interview.StatusAwaitingCandidateSelection)
	require.NoError(t, f.interviews.AddSlots(ctx, itv.ID, []time.Time{testNow.Add(26 * time.Hour)}))

	// One attempt already consumed; the next one hits the cap of two.
	attempts := 1
	applied, err := f.interviews.UpdateIfStatus(ctx, itv.ID, interview.StatusAwaitingCandidateSelection,
		interview.Update{RescheduleAttempts: &attempts})
	require.NoError(t, err)
	require.True(t, applied)

	f.classifier.result = interview.ClassifyResult{Intent: interview.IntentRequestReschedule}

	require.NoError(t, f.svc.HandleInboundMessage(ctx, c.WhatsAppNumber, "still no good"))

	d := f.interviewState(t, itv.ID)
	assert.Equal(t, interview.StatusCancelledNoSlots, d.Status)

	offered, err := f.interviews.OfferedSlots(ctx, itv.ID)
	require.NoError(t, err)
	assert.Empty(t, offered)
	assert.Equal(t, 1, f.notifier.count("no_slots"))

	// Repeating the request is a no-op, never a loop.
	require.NoError(t, f.svc.HandleInboundMessage(ctx, c.WhatsAppNumber, "still no good"))
	assert.Equal(t, interview.StatusCancelledNoSlots, f.interviewState(t, itv.ID).Status)
	assert.Equal(t, 1, f.notifier.count("no_slots"))
}

// ===== Interviewer confirmation =====

func confirmationFixture(t *testing.T) (*fixture, *interview.Interview, *interviewer.Interviewer) {
	f := newFixture()
	f.addCandidate("c1", 92)
	iv := f.addInterviewer("i1")
	itv := f.seedInterview(t, "c1", "i1", interview.StatusAwaitingInterviewerConfirmation)

	scheduled := testNow.Add(26 * time.Hour)
	applied, err := f.interviews.UpdateIfStatus(context.Background(), itv.ID,
		interview.StatusAwaitingInterviewerConfirmation, interview.Update{ScheduledTime: &scheduled})
	require.NoError(t, err)
	require.True(t, applied)
	return f, itv, iv
}

func TestInterviewerConfirm_SchedulesWithMeetingLink(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f, itv, iv := confirmationFixture(t)
	f.classifier.result = interview.ClassifyResult{Intent: interview.IntentConfirm}

	require.NoError(t, f.svc.HandleInboundMessage(ctx, iv.WhatsAppNumber, "confirm"))

	d := f.interviewState(t, itv.ID)
	assert.Equal(t, interview.StatusScheduled, d.Status)
	require.NotNil(t, d.MeetingLink)
	assert.Equal(t, "https://meet.example/abc", *d.MeetingLink)
	assert.Equal(t, 1, f.calendar.calls)
	assert.Equal(t, 1, f.notifier.count("scheduled_notices"))

	// A duplicate confirm finds nothing pending and schedules nothing twice.
	require.NoError(t, f.svc.HandleInboundMessage(ctx, iv.WhatsAppNumber, "confirm"))
	assert.Equal(t, 1, f.calendar.calls)
	assert.Equal(t, 1, f.notifier.count("scheduled_notices"))
}

func TestInterviewerConfirm_CalendarFailureLeavesStateUntouched(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f, itv, iv := confirmationFixture(t)
	f.calendar.err = errors.New("calendar unavailable")
	f.classifier.result = interview.ClassifyResult{Intent: interview.IntentConfirm}

	require.NoError(t, f.svc.HandleInboundMessage(ctx, iv.WhatsAppNumber, "confirm"))

	d := f.interviewState(t, itv.ID)
	assert.Equal(t, interview.StatusAwaitingInterviewerConfirmation, d.Status)
	assert.Nil(t, d.MeetingLink)
	assert.Zero(t, f.notifier.count("scheduled_notices"))

	// Operation stays retryable: the next confirm succeeds.
	f.calendar.err = nil
	require.NoError(t, f.svc.HandleInboundMessage(ctx, iv.WhatsAppNumber, "confirm"))
	assert.Equal(t, interview.StatusScheduled, f.interviewState(t, itv.ID).Status)
}

// ===== Interviewer rejection =====

func TestInterviewerRejection_ReproposesToCandidate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f, itv, iv := confirmationFixture(t)
	f.classifier.result = interview.ClassifyResult{Intent: interview.IntentReject}

	require.NoError(t, f.svc.HandleInboundMessage(ctx, iv.WhatsAppNumber, "can't make it"))

	d := f.interviewState(t, itv.ID)
	assert.Equal(t, interview.StatusAwaitingCandidateSelection, d.Status)
	assert.Equal(t, 1, d.RejectionCount)

	offered, err := f.interviews.OfferedSlots(ctx, itv.ID)
	require.NoError(t, err)
	assert.Len(t, offered, 3)
	assert.Equal(t, 1, f.notifier.count("slot_proposal_reschedule"))
}

func TestInterviewerRejection_AtLimitReassignsToDifferentInterviewer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f, itv, iv := confirmationFixture(t)
	f.addInterviewer("i2")

	rejections := 1
	applied, err := f.interviews.UpdateIfStatus(ctx, itv.ID,
		interview.StatusAwaitingInterviewerConfirmation, interview.Update{RejectionCount: &rejections})
	require.NoError(t, err)
	require.True(t, applied)

	f.classifier.result = interview.ClassifyResult{Intent: interview.IntentReject}

	require.NoError(t, f.svc.HandleInboundMessage(ctx, iv.WhatsAppNumber, "no, sorry"))

	d := f.interviewState(t, itv.ID)
	assert.Equal(t, interview.StatusAwaitingInterviewerConfirmation, d.Status)
	assert.Equal(t, "i2", d.InterviewerID)
	assert.Equal(t, 0, d.RejectionCount)
	assert.Equal(t, 1, f.notifier.count("reassignment"))
	// The slot survives reassignment; no fresh batch for the candidate.
	assert.Zero(t, f.notifier.count("slot_proposal_reschedule"))
}

func TestInterviewerRejection_AtLimitWithNoReplacementStalls(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f, itv, iv := confirmationFixture(t)

	rejections := 1
	applied, err := f.interviews.UpdateIfStatus(ctx, itv.ID,
		interview.StatusAwaitingInterviewerConfirmation, interview.Update{RejectionCount: &rejections})
	require.NoError(t, err)
	require.True(t, applied)

	f.classifier.result = interview.ClassifyResult{Intent: interview.IntentReject}

	require.NoError(t, f.svc.HandleInboundMessage(ctx, iv.WhatsAppNumber, "no"))

	assert.Equal(t, interview.StatusStalled, f.interviewState(t, itv.ID).Status)
}

// ===== Conditional updates under racing drivers =====

func TestUpdateIfStatus_AppliesExactlyOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	f.addCandidate("c1", 92)
	f.addInterviewer("i1")
	itv := f.seedInterview(t, "c1", "i1", interview.StatusAwaitingInterviewerConfirmation)

	scheduled := interview.StatusScheduled
	first, err := f.interviews.UpdateIfStatus(ctx, itv.ID,
		interview.StatusAwaitingInterviewerConfirmation, interview.Update{Status: &scheduled})
	require.NoError(t, err)
	second, err := f.interviews.UpdateIfStatus(ctx, itv.ID,
		interview.StatusAwaitingInterviewerConfirmation, interview.Update{Status: &scheduled})
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
}

// ===== Classifier failures =====

func TestClassifierError_RepliesWithoutMutatingState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	c := f.addCandidate("c1", 92)
	f.addInterviewer("i1")
	itv := f.seedInterview(t, "c1", "i1", interview.StatusAwaitingCandidateSelection)
	require.NoError(t, f.interviews.AddSlots(ctx, itv.ID, []time.Time{testNow.Add(26 * time.Hour)}))

	f.classifier.err = errors.New("model timeout")

	require.NoError(t, f.svc.HandleInboundMessage(ctx, c.WhatsAppNumber, "gibberish"))

	assert.Equal(t, interview.StatusAwaitingCandidateSelection, f.interviewState(t, itv.ID).Status)
	assert.Equal(t, 1, f.notifier.count("chat"))
}

func TestUnregisteredSender_GetsReplyAndNothingChanges(t *testing.T) {
	t.Parallel()
	f := newFixture()

	require.NoError(t, f.svc.HandleInboundMessage(context.Background(), "+10000000000", "hello?"))

	assert.Equal(t, 1, f.notifier.count("chat"))
}

// ===== Feedback scans =====

func TestFeedbackScan_SendsInitialRequestAfterDelay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	f.addCandidate("c1", 92)
	f.addInterviewer("i1")
	itv := f.seedInterview(t, "c1", "i1", interview.StatusScheduled)

	past := testNow.Add(-10 * time.Minute)
	applied, err := f.interviews.UpdateIfStatus(ctx, itv.ID, interview.StatusScheduled,
		interview.Update{ScheduledTime: &past})
	require.NoError(t, err)
	require.True(t, applied)

	require.NoError(t, f.svc.RunFeedbackScan(ctx))

	d := f.interviewState(t, itv.ID)
	assert.Equal(t, interview.StatusAwaitingFeedback, d.Status)
	assert.Equal(t, 1, d.RemindersSentCount)
	require.NotNil(t, d.LastReminderSentAt)
	assert.True(t, d.LastReminderSentAt.Equal(testNow))
	assert.Equal(t, 1, f.notifier.count("feedback_request"))

	// Re-running the same tick without elapsed time does nothing more.
	require.NoError(t, f.svc.RunFeedbackScan(ctx))
	assert.Equal(t, 1, f.interviewState(t, itv.ID).RemindersSentCount)
	assert.Equal(t, 1, f.notifier.count("feedback_request"))
}

func TestFeedbackScan_ReminderLimitEscalatesToOverdue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	f.addCandidate("c1", 92)
	f.addInterviewer("i1")
	itv := f.seedInterview(t, "c1", "i1", interview.StatusScheduled)

	awaiting := interview.StatusAwaitingFeedback
	reminders := 3
	stale := testNow.Add(-6 * time.Hour)
	applied, err := f.interviews.UpdateIfStatus(ctx, itv.ID, interview.StatusScheduled, interview.Update{
		Status:             &awaiting,
		RemindersSentCount: &reminders,
		LastReminderSentAt: &stale,
	})
	require.NoError(t, err)
	require.True(t, applied)

	require.NoError(t, f.svc.RunFeedbackScan(ctx))

	d := f.interviewState(t, itv.ID)
	assert.Equal(t, interview.StatusFeedbackOverdue, d.Status)
	assert.Equal(t, 3, d.RemindersSentCount)
	assert.Zero(t, f.notifier.count("feedback_request"))
}

// ===== Mailbox polling =====

func awaitingFeedbackFixture(t *testing.T) (*fixture, *interview.Interview) {
	f := newFixture()
	f.addCandidate("c1", 92)
	f.addInterviewer("i1")
	itv := f.seedInterview(t, "c1", "i1", interview.StatusScheduled)

	awaiting := interview.StatusAwaitingFeedback
	reminders := 1
	sentAt := testNow.Add(-30 * time.Minute)
	applied, err := f.interviews.UpdateIfStatus(context.Background(), itv.ID, interview.StatusScheduled,
		interview.Update{Status: &awaiting, RemindersSentCount: &reminders, LastReminderSentAt: &sentAt})
	require.NoError(t, err)
	require.True(t, applied)
	return f, itv
}

func TestMailboxPoll_DecisiveRecommendationCompletesInterview(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f, itv := awaitingFeedbackFixture(t)
	f.mailbox.bodies = []string{"Strong candidate, recommend selecting."}
	f.classifier.feedback = interview.FeedbackAnalysis{
		Recommendation: interview.RecommendationSelected,
		Summary:        "Strong performance across the board",
	}

	require.NoError(t, f.svc.RunMailboxPollScan(ctx))

	d := f.interviewState(t, itv.ID)
	assert.Equal(t, interview.StatusCompletedSelected, d.Status)
	require.NotNil(t, d.FeedbackSummary)
	assert.Equal(t, "Strong performance across the board", *d.FeedbackSummary)
	assert.Equal(t, 1, d.EmailPollAttempts)

	c, err := f.candidates.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, candidate.StatusSelected, c.Status)
	assert.Equal(t, 1, f.notifier.count("outcome:selected"))
}

func TestMailboxPoll_UnclearFeedbackConsumesAttemptOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f, itv := awaitingFeedbackFixture(t)
	f.mailbox.bodies = []string{"Thanks, will get back to you."}
	f.classifier.feedback = interview.FeedbackAnalysis{Recommendation: interview.RecommendationUnclear}

	require.NoError(t, f.svc.RunMailboxPollScan(ctx))

	d := f.interviewState(t, itv.ID)
	assert.Equal(t, interview.StatusAwaitingFeedback, d.Status)
	assert.Equal(t, 1, d.EmailPollAttempts)
	require.NotNil(t, d.LastEmailPolledAt)
}

func TestMailboxPoll_AttemptCapEscalatesToOverdue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f, itv := awaitingFeedbackFixture(t)
	f.mailbox.bodies = nil

	attempts := 4
	applied, err := f.interviews.UpdateIfStatus(ctx, itv.ID, interview.StatusAwaitingFeedback,
		interview.Update{EmailPollAttempts: &attempts})
	require.NoError(t, err)
	require.True(t, applied)

	require.NoError(t, f.svc.RunMailboxPollScan(ctx))

	d := f.interviewState(t, itv.ID)
	assert.Equal(t, interview.StatusFeedbackOverdue, d.Status)
	assert.Equal(t, 5, d.EmailPollAttempts)

	// Once escalated the scan never picks it up again.
	require.NoError(t, f.svc.RunMailboxPollScan(ctx))
	assert.Equal(t, 5, f.interviewState(t, itv.ID).EmailPollAttempts)
	assert.Equal(t, 1, f.mailbox.calls)
}

func TestMailboxPoll_FetchFailureLeavesInterviewForNextTick(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f, itv := awaitingFeedbackFixture(t)
	f.mailbox.err = errors.New("imap unreachable")

	require.NoError(t, f.svc.RunMailboxPollScan(ctx))

	d := f.interviewState(t, itv.ID)
	assert.Equal(t, interview.StatusAwaitingFeedback, d.Status)
	// The attempt is still consumed; caps are the sole bound on retries.
	assert.Equal(t, 1, d.EmailPollAttempts)
}
