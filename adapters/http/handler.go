// Package http provides the HTTP surface for the responder service.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robinsondorm/robinai/app"
	"github.com/robinsondorm/robinai/domain/budget"
	"github.com/robinsondorm/robinai/domain/message"
	"github.com/robinsondorm/robinai/ports"
	"github.com/rs/zerolog"
)

// StatsHistoryDays is how many daily summaries /stats returns.
const StatsHistoryDays = 7

// HealthResponse represents the health check body.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// StatsResponse represents the token usage statistics body.
type StatsResponse struct {
	Date            string               `json:"date"`
	TokensUsed      int64                `json:"tokens_used_today"`
	DailyLimit      int64                `json:"max_tokens_per_day"`
	TokensRemaining int64                `json:"tokens_remaining"`
	PercentageUsed  float64              `json:"percentage_used"`
	History         []ports.DailySummary `json:"history,omitempty"`
}

// webhookResponse acknowledges a webhook delivery. The platform only
// cares about the status code; the body is informational.
type webhookResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Handler serves the webhook, health, and stats endpoints.
type Handler struct {
	service *app.ResponderService
	budget  ports.BudgetStore
	usage   ports.UsageStore // Optional; nil omits stats history
	clock   ports.Clock
	logger  zerolog.Logger
}

// HandlerDeps contains dependencies for Handler.
type HandlerDeps struct {
	Service *app.ResponderService
	Budget  ports.BudgetStore
	Usage   ports.UsageStore
	Clock   ports.Clock
	Logger  zerolog.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		service: deps.Service,
		budget:  deps.Budget,
		usage:   deps.Usage,
		clock:   deps.Clock,
		logger:  deps.Logger,
	}
}

// Routes returns the router for the responder endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/webhook", h.handleWebhook)
	r.Get("/health", h.handleHealth)
	r.Get("/stats", h.handleStats)

	return r
}

// handleWebhook receives platform callbacks. The contract is 400 for an
// unparseable payload and 200 for everything else, including internal
// failures, so the platform never retries on upstream trouble.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var ev message.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		h.logger.Warn().
			Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("malformed webhook payload")
		writeJSON(w, http.StatusBadRequest, webhookResponse{Status: "error", Reason: "malformed_payload"})
		return
	}

	result := h.service.Handle(r.Context(), ev)

	resp := webhookResponse{Status: "success"}
	switch result.Outcome {
	case app.OutcomeSkipped:
		resp = webhookResponse{Status: "ignored", Reason: result.SkipReason}
	case app.OutcomeLimited:
		resp = webhookResponse{Status: "ignored", Reason: "daily_limit_reached"}
	case app.OutcomeUpstreamError:
		resp = webhookResponse{Status: "error", Reason: "completion_failed"}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Service: "robinai"})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now()
	state := h.budget.Snapshot(now)
	cfg := budget.Config{DailyLimit: h.budget.Limit()}

	resp := StatsResponse{
		Date:            state.Day,
		TokensUsed:      state.TokensUsed,
		DailyLimit:      cfg.DailyLimit,
		TokensRemaining: budget.Remaining(state, cfg, now),
		PercentageUsed:  budget.PercentUsed(state, cfg, now),
	}

	if h.usage != nil {
		history, err := h.usage.DailySummaries(r.Context(), StatsHistoryDays)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to load usage history")
		} else {
			resp.History = history
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
