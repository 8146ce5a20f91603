package postgresql

import (
	"context"
	"fmt"

	"github.com/gnx-solutions/interview-scheduler/internal/pkg/database"
	"github.com/google/uuid"
)

var schemaStatements = []string{
	`DROP TABLE IF EXISTS interview_slots`,
	`DROP TABLE IF EXISTS interviews`,
	`DROP TABLE IF EXISTS candidates`,
	`DROP TABLE IF EXISTS interviewers`,
	`CREATE TABLE candidates (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		whatsapp_number TEXT NOT NULL UNIQUE,
		cv_score INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'applied',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE interviewers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		whatsapp_number TEXT NOT NULL UNIQUE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE interviews (
		id TEXT PRIMARY KEY,
		candidate_id TEXT NOT NULL REFERENCES candidates(id),
		interviewer_id TEXT NOT NULL REFERENCES interviewers(id),
		status TEXT NOT NULL,
		rejection_count INTEGER NOT NULL DEFAULT 0,
		reschedule_attempts INTEGER NOT NULL DEFAULT 0,
		scheduled_time TIMESTAMPTZ,
		meeting_link TEXT,
		feedback_summary TEXT,
		reminders_sent_count INTEGER NOT NULL DEFAULT 0,
		last_reminder_sent_at TIMESTAMPTZ,
		email_poll_attempts INTEGER NOT NULL DEFAULT 0,
		last_email_polled_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE interview_slots (
		id TEXT PRIMARY KEY,
		interview_id TEXT NOT NULL REFERENCES interviews(id),
		slot_time TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL DEFAULT 'offered',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX idx_interviews_candidate ON interviews(candidate_id)`,
	`CREATE INDEX idx_interviews_interviewer ON interviews(interviewer_id)`,
	`CREATE INDEX idx_interviews_status ON interviews(status)`,
	`CREATE INDEX idx_interview_slots_interview ON interview_slots(interview_id)`,
}

type seedPerson struct {
	name     string
	email    string
	whatsapp string
	score    int
}

var seedCandidates = []seedPerson{
	{name: "Aarav Sharma", email: "aarav.sharma@example.com", whatsapp: "+919000000001", score: 92},
	{name: "Priya Patel", email: "priya.patel@example.com", whatsapp: "+919000000002", score: 85},
	{name: "Rohan Mehta", email: "rohan.mehta@example.com", whatsapp: "+919000000003", score: 78},
	{name: "Sneha Iyer", email: "sneha.iyer@example.com", whatsapp: "+919000000004", score: 64},
	{name: "Vikram Rao", email: "vikram.rao@example.com", whatsapp: "+919000000005", score: 55},
}

var seedInterviewers = []seedPerson{
	{name: "Ananya Desai", email: "ananya.desai@gnx-solutions.example", whatsapp: "+919100000001"},
	{name: "Karan Gupta", email: "karan.gupta@gnx-solutions.example", whatsapp: "+919100000002"},
	{name: "Meera Nair", email: "meera.nair@gnx-solutions.example", whatsapp: "+919100000003"},
}

// InitSchema drops and recreates all tables, then loads the demo roster.
// Destructive, only reachable through the key-gated admin endpoint.
func InitSchema(ctx context.Context, db *database.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	for _, c := range seedCandidates {
		_, err := db.Exec(ctx,
			`INSERT INTO candidates (id, name, email, whatsapp_number, cv_score, status) VALUES ($1, $2, $3, $4, $5, 'applied')`,
			uuid.New().String(), c.name, c.email, c.whatsapp, c.score,
		)
		if err != nil {
			return fmt.Errorf("failed to seed candidates: %w", err)
		}
	}

	for _, iv := range seedInterviewers {
		_, err := db.Exec(ctx,
			`INSERT INTO interviewers (id, name, email, whatsapp_number, is_active) VALUES ($1, $2, $3, $4, TRUE)`,
			uuid.New().String(), iv.name, iv.email, iv.whatsapp,
		)
		if err != nil {
			return fmt.Errorf("failed to seed interviewers: %w", err)
		}
	}

	return nil
}
