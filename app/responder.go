// Package app provides application services that orchestrate domain logic.
package app

import (
	"context"
	"sync/atomic"

	"github.com/robinsondorm/robinai/adapters/metrics"
	"github.com/robinsondorm/robinai/domain/message"
	"github.com/robinsondorm/robinai/ports"
	"github.com/rs/zerolog"
)

// Outcome classifies how an inbound event was handled.
type Outcome string

const (
	OutcomeSkipped       Outcome = "skipped"        // Filter said no
	OutcomeLimited       Outcome = "limited"        // Daily budget would be exceeded
	OutcomeCompleted     Outcome = "completed"      // Reply generated (delivery may still fail)
	OutcomeUpstreamError Outcome = "upstream_error" // Completion API failed
)

// Result represents the outcome of handling one event (value type).
type Result struct {
	Outcome    Outcome
	SkipReason string // Set for OutcomeSkipped
	ReplyText  string // Set for OutcomeCompleted
	Delivered  bool   // Whether the reply reached the group
}

// ResponderService handles inbound group messages end to end:
// filter, budget check, completion, accounting, delivery.
type ResponderService struct {
	budget    ports.BudgetStore
	completer ports.Completer
	messenger ports.Messenger
	usage     ports.UsageStore
	clock     ports.Clock
	idGen     ports.IDGenerator
	metrics   *metrics.Collector
	logger    zerolog.Logger

	// Hot-reloadable configuration
	dynamicCfg atomic.Pointer[DynamicConfig]
}

// DynamicConfig contains hot-reloadable responder configuration.
type DynamicConfig struct {
	Filter         message.FilterConfig
	EstimateTokens int64  // Conservative per-reply estimate for the budget check
	LimitNotice    string // Posted when the daily cap is reached; empty disables
	ErrorNotice    string // Posted when the completion API fails; empty disables
}

// ResponderDeps contains dependencies for ResponderService.
type ResponderDeps struct {
	Budget    ports.BudgetStore
	Completer ports.Completer
	Messenger ports.Messenger
	Usage     ports.UsageStore // Optional; nil disables the event log
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Metrics   *metrics.Collector // Optional
	Logger    zerolog.Logger
}

// NewResponderService creates a new responder service.
func NewResponderService(deps ResponderDeps, cfg DynamicConfig) *ResponderService {
	s := &ResponderService{
		budget:    deps.Budget,
		completer: deps.Completer,
		messenger: deps.Messenger,
		usage:     deps.Usage,
		clock:     deps.Clock,
		idGen:     deps.IDGen,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
	s.UpdateConfig(cfg)
	return s
}

// UpdateConfig replaces the hot-reloadable configuration.
// Thread-safe; called by config reload while requests are in flight.
func (s *ResponderService) UpdateConfig(cfg DynamicConfig) {
	s.dynamicCfg.Store(&cfg)
}

// Handle processes one inbound event.
// This method interleaves pure domain functions with I/O operations.
func (s *ResponderService) Handle(ctx context.Context, ev message.Event) Result {
	start := s.clock.Now()
	cfg := s.dynamicCfg.Load()

	logger := s.logger.With().
		Str("group_id", ev.GroupID).
		Str("sender_id", ev.SenderID).
		Logger()

	// 1. Filter (PURE)
	decision := message.Decide(ev, cfg.Filter)
	if !decision.Respond {
		logger.Debug().Str("reason", decision.Reason).Msg("event skipped")
		s.countOutcome(OutcomeSkipped)
		return Result{Outcome: OutcomeSkipped, SkipReason: decision.Reason}
	}

	// 2. Budget check with conservative estimate (PURE + locked state)
	check := s.budget.Check(cfg.EstimateTokens, start)
	if !check.Allowed {
		logger.Warn().
			Int64("used", check.Used).
			Int64("limit", s.budget.Limit()).
			Msg("daily token limit reached")
		s.notify(ctx, cfg.LimitNotice, logger)
		s.countOutcome(OutcomeLimited)
		return Result{Outcome: OutcomeLimited}
	}

	// 3. Completion (I/O)
	completion, err := s.completer.Complete(ctx, ev.Text)
	latency := s.clock.Now().Sub(start)
	if s.metrics != nil {
		s.metrics.CompletionDuration.Observe(latency.Seconds())
	}
	if err != nil {
		logger.Error().Err(err).Msg("completion failed")
		if s.metrics != nil {
			s.metrics.CompletionErrors.Inc()
		}
		s.notify(ctx, cfg.ErrorNotice, logger)
		s.countOutcome(OutcomeUpstreamError)
		return Result{Outcome: OutcomeUpstreamError}
	}

	// 4. Charge the budget before attempting delivery, so a delivery
	// failure never refunds tokens already spent upstream.
	now := s.clock.Now()
	s.budget.Record(completion.TotalTokens, now)
	snapshot := s.budget.Check(0, now)
	logger.Info().
		Int64("tokens", completion.TotalTokens).
		Int64("used_today", snapshot.Used).
		Int64("remaining", snapshot.Remaining).
		Msg("token usage updated")

	if s.metrics != nil {
		s.metrics.TokensUsed.WithLabelValues("prompt").Add(float64(completion.PromptTokens))
		s.metrics.TokensUsed.WithLabelValues("completion").Add(float64(completion.CompletionTokens))
		s.metrics.BudgetRemaining.Set(float64(snapshot.Remaining))
	}

	// 5. Delivery (I/O, fire-and-forget: failure is logged only)
	delivered := true
	if err := s.messenger.Post(ctx, completion.Text); err != nil {
		delivered = false
		logger.Error().Err(err).Msg("failed to post reply")
		if s.metrics != nil {
			s.metrics.DeliveryFailures.Inc()
		}
	}

	// 6. Usage log (I/O, best effort)
	if s.usage != nil {
		event := ports.ReplyEvent{
			ID:               s.idGen.New(),
			GroupID:          ev.GroupID,
			SenderID:         ev.SenderID,
			PromptTokens:     completion.PromptTokens,
			CompletionTokens: completion.CompletionTokens,
			TotalTokens:      completion.TotalTokens,
			LatencyMs:        latency.Milliseconds(),
			Delivered:        delivered,
			Timestamp:        now,
		}
		if err := s.usage.Record(ctx, event); err != nil {
			logger.Error().Err(err).Msg("failed to record usage event")
		}
	}

	s.countOutcome(OutcomeCompleted)
	if s.metrics != nil {
		s.metrics.WebhookDuration.Observe(s.clock.Now().Sub(start).Seconds())
	}

	return Result{Outcome: OutcomeCompleted, ReplyText: completion.Text, Delivered: delivered}
}

// notify posts a user-facing notice, swallowing delivery errors.
func (s *ResponderService) notify(ctx context.Context, text string, logger zerolog.Logger) {
	if text == "" {
		return
	}
	if err := s.messenger.Post(ctx, text); err != nil {
		logger.Error().Err(err).Msg("failed to post notice")
		if s.metrics != nil {
			s.metrics.DeliveryFailures.Inc()
		}
	}
}

func (s *ResponderService) countOutcome(o Outcome) {
	if s.metrics != nil {
		s.metrics.WebhookEvents.WithLabelValues(string(o)).Inc()
	}
}
