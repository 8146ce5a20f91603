package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"

	"github.com/gnx-solutions/interview-scheduler/internal/config"
	"github.com/gnx-solutions/interview-scheduler/internal/handler/http/middleware"
)

func NewRouter(cfg *config.Config, webhookHandler WebhookHandler, adminHandler AdminHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "interview-scheduler"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-KEY"},
		MaxAge:         300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	// Twilio signs its callbacks; the endpoint itself stays open.
	r.Post("/webhook/whatsapp", webhookHandler.ReceiveWhatsApp)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIKey(cfg.App.InternalAPIKey))

		r.Post("/start-shortlisting", adminHandler.StartShortlisting)
		r.Post("/init-db", adminHandler.InitDB)
		r.Get("/debug-get-interview/{id}", adminHandler.GetInterview)
		r.Post("/debug-create-past-interview", adminHandler.CreatePastInterview)
	})

	return r
}
