package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gnx-solutions/interview-scheduler/internal/domain/interview"
	"github.com/gnx-solutions/interview-scheduler/internal/handler/http/response"
	"github.com/gnx-solutions/interview-scheduler/internal/pkg/database"
	"github.com/gnx-solutions/interview-scheduler/internal/repository/postgresql"
)

type AdminHandler interface {
	StartShortlisting(w http.ResponseWriter, r *http.Request)
	InitDB(w http.ResponseWriter, r *http.Request)
	GetInterview(w http.ResponseWriter, r *http.Request)
	CreatePastInterview(w http.ResponseWriter, r *http.Request)
}

type AdminHandlerImpl struct {
	interviewService interview.Service
	db               *database.DB
}

func NewAdminHandler(interviewService interview.Service, db *database.DB) AdminHandler {
	return &AdminHandlerImpl{interviewService: interviewService, db: db}
}

// StartShortlisting kicks off a shortlisting batch run
func (h *AdminHandlerImpl) StartShortlisting(w http.ResponseWriter, r *http.Request) {
	result, err := h.interviewService.StartShortlisting(r.Context())
	if err != nil {
		slog.Error("Shortlisting run failed", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, result.Message, result)
}

// InitDB drops and recreates the schema with seed data
func (h *AdminHandlerImpl) InitDB(w http.ResponseWriter, r *http.Request) {
	if err := postgresql.InitSchema(r.Context(), h.db); err != nil {
		slog.Error("Schema initialization failed", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Database initialized with seed data", nil)
}

// GetInterview returns the full state of one interview for debugging
func (h *AdminHandlerImpl) GetInterview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Interview ID is required")
		return
	}

	result, err := h.interviewService.Inspect(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// CreatePastInterview seeds a backdated scheduled interview so the feedback
// scan can be exercised without waiting
func (h *AdminHandlerImpl) CreatePastInterview(w http.ResponseWriter, r *http.Request) {
	id, err := h.interviewService.CreateDebugPastInterview(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Past interview created", map[string]string{"interview_id": id})
}
