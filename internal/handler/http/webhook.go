package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gnx-solutions/interview-scheduler/internal/domain/interview"
	"github.com/gnx-solutions/interview-scheduler/internal/pkg/chat"
)

type WebhookHandler interface {
	ReceiveWhatsApp(w http.ResponseWriter, r *http.Request)
}

type WebhookHandlerImpl struct {
	interviewService interview.Service
}

func NewWebhookHandler(interviewService interview.Service) WebhookHandler {
	return &WebhookHandlerImpl{interviewService: interviewService}
}

// ReceiveWhatsApp handles the Twilio inbound-message callback. Twilio posts
// form fields; From carries a "whatsapp:" prefix. Delivery is at-least-once,
// the orchestrator tolerates duplicates.
func (h *WebhookHandlerImpl) ReceiveWhatsApp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	sender := chat.NormalizePhoneNumber(strings.TrimPrefix(r.PostFormValue("From"), "whatsapp:"))
	body := r.PostFormValue("Body")
	if sender == "" || body == "" {
		http.Error(w, "missing From or Body", http.StatusBadRequest)
		return
	}

	if err := h.interviewService.HandleInboundMessage(r.Context(), sender, body); err != nil {
		slog.Error("Webhook: failed to handle inbound message", "sender", sender, "error", err)
		// Twilio retries on error status; the handler tolerates redelivery
		// but there is no point asking for it when our own processing broke.
	}

	// Twilio expects a TwiML document; an empty one means no canned reply.
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Response></Response>`))
}
