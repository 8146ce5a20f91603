package cron

import (
	"context"
	"time"

	"github.com/gnx-solutions/interview-scheduler/internal/config"
	"github.com/gnx-solutions/interview-scheduler/internal/domain/interview"
)

// InterviewJobs wires the lifecycle's two time-driven scans into the
// scheduler. The tick is kept shorter than both configured check intervals;
// the scans are idempotent per tick, so an aggressive cadence only costs
// queries.
type InterviewJobs struct {
	service interview.Service
	cfg     config.SchedulingConfig
}

func NewInterviewJobs(service interview.Service, cfg config.SchedulingConfig) *InterviewJobs {
	return &InterviewJobs{service: service, cfg: cfg}
}

func (j *InterviewJobs) RegisterJobs(scheduler *Scheduler) {
	tick := j.tickInterval()
	scheduler.AddJob("feedback_progression", tick, j.FeedbackProgression)
	scheduler.AddJob("mailbox_poll", tick, j.MailboxPoll)
}

func (j *InterviewJobs) FeedbackProgression(ctx context.Context) error {
	return j.service.RunFeedbackScan(ctx)
}

func (j *InterviewJobs) MailboxPoll(ctx context.Context) error {
	return j.service.RunMailboxPollScan(ctx)
}

func (j *InterviewJobs) tickInterval() time.Duration {
	minutes := j.cfg.FeedbackCheckIntervalMinutes
	if j.cfg.EmailPollIntervalMinutes < minutes {
		minutes = j.cfg.EmailPollIntervalMinutes
	}
	if minutes < 1 {
		minutes = 1
	}
	return time.Duration(minutes) * time.Minute
}
