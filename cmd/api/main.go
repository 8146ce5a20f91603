package main

import (
	"fmt"
	"net/http"

	"github.com/gnx-solutions/interview-scheduler/internal/config"
	appHTTP "github.com/gnx-solutions/interview-scheduler/internal/handler/http"
	"github.com/gnx-solutions/interview-scheduler/internal/pkg/ai"
	"github.com/gnx-solutions/interview-scheduler/internal/pkg/calendar"
	"github.com/gnx-solutions/interview-scheduler/internal/pkg/chat"
	"github.com/gnx-solutions/interview-scheduler/internal/pkg/cron"
	"github.com/gnx-solutions/interview-scheduler/internal/pkg/database"
	"github.com/gnx-solutions/interview-scheduler/internal/pkg/email"
	"github.com/gnx-solutions/interview-scheduler/internal/repository/postgresql"
	interviewService "github.com/gnx-solutions/interview-scheduler/internal/service/interview"
	notificationService "github.com/gnx-solutions/interview-scheduler/internal/service/notification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	candidateRepo := postgresql.NewCandidateRepository(db)
	interviewerRepo := postgresql.NewInterviewerRepository(db)
	interviewRepo := postgresql.NewInterviewRepository(db)

	whatsappSender := chat.NewWhatsAppSender(cfg.Twilio)
	emailSender := email.NewSender(cfg.SMTP)
	mailbox := email.NewMailbox(cfg.IMAP)
	classifier := ai.NewClassifier(cfg.Groq)
	googleCalendar := calendar.NewGoogleCalendar(cfg.Calendar)

	notifier := notificationService.NewService(whatsappSender, emailSender, cfg.App.HREmail)
	orchestrator := interviewService.NewService(
		cfg.Scheduling,
		candidateRepo,
		interviewerRepo,
		interviewRepo,
		classifier,
		googleCalendar,
		mailbox,
		notifier,
	)

	scheduler := cron.NewScheduler()
	cron.NewInterviewJobs(orchestrator, cfg.Scheduling).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	webhookHandler := appHTTP.NewWebhookHandler(orchestrator)
	adminHandler := appHTTP.NewAdminHandler(orchestrator, db)
	router := appHTTP.NewRouter(cfg, webhookHandler, adminHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
