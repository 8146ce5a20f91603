package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gnx-solutions/interview-scheduler/internal/config"
	"github.com/gnx-solutions/interview-scheduler/internal/domain/interview"
)

const groqAPIURL = "https://api.groq.com/openai/v1/chat/completions"

const classifySystemPrompt = `You are a precise interview scheduling assistant. Interpret the user's message in the context of their current interview status and extract their exact intent. Understand idioms, direct and indirect phrasing.

Return a JSON object with three keys: "intent", "slot_id" and "reply".

Possible "intent" values:
- "select_slot": the candidate picks one of the offered slots. Set "slot_id" to the exact unique id of the chosen slot from the offered slots in the context. If the choice is ambiguous, use "unclear" instead.
- "request_reschedule": the candidate says none of the offered times work.
- "confirm": the interviewer accepts the proposed time.
- "reject": the interviewer declines the proposed time.
- "ask_question": the user asks a question about the process, role or company.
- "acknowledgment": a thank-you or okay with no action needed.
- "greeting": a plain greeting with no other content.
- "out_of_scope": the message is unrelated to the interview process.
- "unclear": the intent cannot be determined with confidence.

For every intent other than "select_slot", set "slot_id" to "".
Set "reply" to a short, friendly conversational answer addressed to the user, suitable when no scheduling action is taken. For scheduling intents "reply" may be "".`

const feedbackSystemPrompt = `You are an HR data extraction system. Analyze an interviewer's feedback email and extract a structured summary.

Your response MUST be a JSON object with two keys: "recommendation" and "summary".
The "recommendation" must be one of: "selected", "rejected", "hold".
The "summary" is a brief, neutral summary of the key feedback points.
If the recommendation is not explicitly clear or implied, set "recommendation" to "unclear".`

// Classifier maps free text onto the intent vocabulary using the Groq chat
// completions API with a JSON response format.
type Classifier struct {
	cfg        config.GroqConfig
	httpClient *http.Client
}

var _ interview.Classifier = (*Classifier)(nil)

func NewClassifier(cfg config.GroqConfig) *Classifier {
	return &Classifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

type classifyContext struct {
	Role            string        `json:"role"`
	InterviewStatus string        `json:"interview_status"`
	CandidateName   string        `json:"candidate_name"`
	InterviewerName string        `json:"interviewer_name"`
	OfferedSlots    []slotContext `json:"offered_slots,omitempty"`
}

type slotContext struct {
	Index       int    `json:"index"`
	SlotID      string `json:"slot_id"`
	DatetimeISO string `json:"datetime_iso"`
}

func (c *Classifier) Classify(ctx context.Context, in interview.ClassifyInput) (interview.ClassifyResult, error) {
	slots := make([]slotContext, 0, len(in.OfferedSlots))
	for i, sl := range in.OfferedSlots {
		slots = append(slots, slotContext{
			Index:       i + 1,
			SlotID:      sl.ID,
			DatetimeISO: sl.SlotTime.Format(time.RFC3339),
		})
	}
	contextJSON, err := json.Marshal(classifyContext{
		Role:            string(in.Role),
		InterviewStatus: string(in.Status),
		CandidateName:   in.CandidateName,
		InterviewerName: in.InterviewerName,
		OfferedSlots:    slots,
	})
	if err != nil {
		return interview.ClassifyResult{}, fmt.Errorf("failed to marshal context: %w", err)
	}

	userPrompt := fmt.Sprintf("Context: %s\n\nUser's message: %q\n\nDetermine the intent as JSON.", contextJSON, in.Message)

	var out struct {
		Intent string `json:"intent"`
		SlotID string `json:"slot_id"`
		Reply  string `json:"reply"`
	}
	if err := c.complete(ctx, classifySystemPrompt, userPrompt, &out); err != nil {
		return interview.ClassifyResult{}, err
	}

	intent, ok := parseIntent(out.Intent)
	if !ok {
		return interview.ClassifyResult{}, fmt.Errorf("classifier returned unknown intent %q", out.Intent)
	}
	res := interview.ClassifyResult{Intent: intent, Reply: out.Reply}
	if intent == interview.IntentSelectSlot {
		res.SlotID = out.SlotID
	}
	return res, nil
}

func (c *Classifier) ParseFeedback(ctx context.Context, emailBody string) (interview.FeedbackAnalysis, error) {
	userPrompt := fmt.Sprintf("Interviewer's feedback email body:\n\n---\n%s\n---\n\nExtract the recommendation and summary into a JSON object.", emailBody)

	var out struct {
		Recommendation string `json:"recommendation"`
		Summary        string `json:"summary"`
	}
	if err := c.complete(ctx, feedbackSystemPrompt, userPrompt, &out); err != nil {
		return interview.FeedbackAnalysis{}, err
	}

	rec := interview.Recommendation(strings.ToLower(strings.TrimSpace(out.Recommendation)))
	switch rec {
	case interview.RecommendationSelected, interview.RecommendationRejected, interview.RecommendationHold:
	default:
		rec = interview.RecommendationUnclear
	}
	return interview.FeedbackAnalysis{Recommendation: rec, Summary: out.Summary}, nil
}

func (c *Classifier) complete(ctx context.Context, systemPrompt, userPrompt string, out interface{}) error {
	if c.cfg.APIKey == "" {
		return fmt.Errorf("Groq API key not configured")
	}

	reqBody := map[string]interface{}{
		"model": c.cfg.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature":     0.1,
		"response_format": map[string]string{"type": "json_object"},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, groqAPIURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build Groq request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Groq request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("Groq returned status %d: %s", resp.StatusCode, string(body))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return fmt.Errorf("failed to decode Groq response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return fmt.Errorf("Groq response contained no choices")
	}

	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), out); err != nil {
		return fmt.Errorf("failed to parse model output: %w", err)
	}
	return nil
}

func parseIntent(s string) (interview.Intent, bool) {
	switch interview.Intent(strings.ToLower(strings.TrimSpace(s))) {
	case interview.IntentSelectSlot:
		return interview.IntentSelectSlot, true
	case interview.IntentRequestReschedule:
		return interview.IntentRequestReschedule, true
	case interview.IntentConfirm:
		return interview.IntentConfirm, true
	case interview.IntentReject:
		return interview.IntentReject, true
	case interview.IntentAskQuestion:
		return interview.IntentAskQuestion, true
	case interview.IntentOutOfScope:
		return interview.IntentOutOfScope, true
	case interview.IntentAcknowledgment:
		return interview.IntentAcknowledgment, true
	case interview.IntentGreeting:
		return interview.IntentGreeting, true
	case interview.IntentUnclear:
		return interview.IntentUnclear, true
	}
	return "", false
}
