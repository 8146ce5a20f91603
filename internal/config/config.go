package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Twilio     TwilioConfig
	SMTP       SMTPConfig
	IMAP       IMAPConfig
	Groq       GroqConfig
	Calendar   CalendarConfig
	Scheduling SchedulingConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	InternalAPIKey string
	HREmail        string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// TwilioConfig holds the WhatsApp messaging credentials
type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	WhatsAppNumber string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type IMAPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

type GroqConfig struct {
	APIKey string
	Model  string
}

// CalendarConfig holds the Google Calendar OAuth2 credentials. The refresh
// token is obtained once out of band and kept in the environment.
type CalendarConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// SchedulingConfig holds every tunable of the interview lifecycle: proposal
// sizes, retry caps, reminder cadence and mailbox polling cadence.
type SchedulingConfig struct {
	SlotsPerProposal               int
	MaxCandidateRescheduleAttempts int
	MaxInterviewerRejections       int
	MinimumScore                   int
	TopNCandidates                 int
	FeedbackCheckIntervalMinutes   int
	FeedbackInitialDelayMinutes    int
	FeedbackFollowUpDelayMinutes   int
	MaxFeedbackReminders           int
	EmailPollIntervalMinutes       int
	MaxFeedbackEmailPolls          int
	FeedbackSubjectKeyword         string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment")
	}

	config := &Config{}

	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}
	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		InternalAPIKey: getEnv("INTERNAL_API_KEY", ""),
		HREmail:        getEnv("HR_EMAIL", ""),
	}

	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "interview_scheduler"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	config.Twilio = TwilioConfig{
		AccountSID:     getEnv("TWILIO_ACCOUNT_SID", ""),
		AuthToken:      getEnv("TWILIO_AUTH_TOKEN", ""),
		WhatsAppNumber: getEnv("TWILIO_WHATSAPP_NUMBER", ""),
	}

	smtpPort, err := getEnvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		Port:     smtpPort,
		Username: getEnv("EMAIL_USER", ""),
		Password: getEnv("EMAIL_PASSWORD", ""),
		From:     getEnv("EMAIL_USER", ""),
		FromName: getEnv("EMAIL_FROM_NAME", "GNX Solutions HR"),
	}

	imapPort, err := getEnvInt("IMAP_PORT", 993)
	if err != nil {
		return nil, err
	}
	config.IMAP = IMAPConfig{
		Host:     getEnv("IMAP_HOST", "imap.gmail.com"),
		Port:     imapPort,
		Username: getEnv("EMAIL_USER", ""),
		Password: getEnv("EMAIL_PASSWORD", ""),
	}

	config.Groq = GroqConfig{
		APIKey: getEnv("GROQ_API_KEY", ""),
		Model:  getEnv("GROQ_MODEL", "llama3-8b-8192"),
	}

	config.Calendar = CalendarConfig{
		ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		RefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),
	}

	sched := SchedulingConfig{FeedbackSubjectKeyword: getEnv("FEEDBACK_SUBJECT_KEYWORD", "Feedback")}
	for _, item := range []struct {
		dst      *int
		key      string
		fallback int
	}{
		{&sched.SlotsPerProposal, "SLOTS_PER_PROPOSAL", 3},
		{&sched.MaxCandidateRescheduleAttempts, "MAX_CANDIDATE_RESCHEDULE_ATTEMPTS", 2},
		{&sched.MaxInterviewerRejections, "MAX_INTERVIEWER_REJECTIONS", 2},
		{&sched.MinimumScore, "MINIMUM_SCORE", 75},
		{&sched.TopNCandidates, "TOP_N_CANDIDATES", 3},
		{&sched.FeedbackCheckIntervalMinutes, "FEEDBACK_CHECK_INTERVAL_MINUTES", 5},
		{&sched.FeedbackInitialDelayMinutes, "FEEDBACK_REMINDER_INITIAL_DELAY_MINUTES", 1},
		{&sched.FeedbackFollowUpDelayMinutes, "FEEDBACK_REMINDER_FOLLOW_UP_DELAY_MINUTES", 120},
		{&sched.MaxFeedbackReminders, "MAX_FEEDBACK_REMINDERS", 3},
		{&sched.EmailPollIntervalMinutes, "EMAIL_POLL_INTERVAL_MINUTES", 1},
		{&sched.MaxFeedbackEmailPolls, "MAX_FEEDBACK_EMAIL_POLLS", 5},
	} {
		v, err := getEnvInt(item.key, item.fallback)
		if err != nil {
			return nil, err
		}
		*item.dst = v
	}
	config.Scheduling = sched

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.App.InternalAPIKey == "" {
		return fmt.Errorf("INTERNAL_API_KEY is required")
	}
	if c.App.HREmail == "" {
		return fmt.Errorf("HR_EMAIL is required")
	}
	if c.Scheduling.SlotsPerProposal < 1 {
		return fmt.Errorf("SLOTS_PER_PROPOSAL must be at least 1")
	}
	if c.Twilio.AccountSID == "" || c.Twilio.AuthToken == "" || c.Twilio.WhatsAppNumber == "" {
		slog.Warn("Twilio credentials not fully set, WhatsApp messaging will be disabled")
	}
	if c.Groq.APIKey == "" {
		slog.Warn("GROQ_API_KEY not set, intent classification will be disabled")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
