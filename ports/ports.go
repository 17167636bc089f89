// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/robinsondorm/robinai/domain/budget"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Budget Ports
// -----------------------------------------------------------------------------

// BudgetStore holds the process-wide daily token counter.
// Implementations must serialize concurrent read-modify-write access;
// this is the only shared mutable state in the service.
type BudgetStore interface {
	// Check reports whether spending estimate more tokens stays within
	// the cap, applying the day rollover first.
	Check(estimate int64, now time.Time) budget.CheckResult

	// Record adds consumed tokens to today's counter.
	Record(tokens int64, now time.Time)

	// Snapshot returns the post-rollover state for reporting.
	Snapshot(now time.Time) budget.State

	// SetLimit replaces the daily cap (hot reload).
	SetLimit(limit int64)

	// Limit returns the current daily cap.
	Limit() int64
}

// -----------------------------------------------------------------------------
// External Service Ports
// -----------------------------------------------------------------------------

// Completion represents a generated reply with upstream-reported token
// counts (value type). Counts come from the API, never local estimates.
type Completion struct {
	Text             string
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

// Completer generates a reply for a user message via the LLM API.
type Completer interface {
	// Complete sends the persona prompt plus the user text upstream and
	// returns the generated reply. Failures and timeouts surface as
	// *openai.UpstreamError.
	Complete(ctx context.Context, userText string) (Completion, error)
}

// Messenger posts text back to the originating group chat.
type Messenger interface {
	// Post sends a message to the group. Failures surface as
	// *groupme.DeliveryError.
	Post(ctx context.Context, text string) error
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// ReplyEvent records one completed reply for the usage log (value type).
type ReplyEvent struct {
	ID               string
	GroupID          string
	SenderID         string
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
	LatencyMs        int64
	Delivered        bool
	Timestamp        time.Time
}

// DailySummary aggregates reply events for one calendar day (value type).
type DailySummary struct {
	Day        string // YYYY-MM-DD, UTC
	ReplyCount int64
	Tokens     int64
}

// UsageStore persists reply events for stats and auditing.
type UsageStore interface {
	// Record stores a reply event.
	Record(ctx context.Context, ev ReplyEvent) error

	// DailySummaries returns per-day aggregates for the most recent days.
	DailySummaries(ctx context.Context, days int) ([]DailySummary, error)

	// TokensOnDay returns the total tokens recorded for a day key.
	TokensOnDay(ctx context.Context, day string) (int64, error)
}
