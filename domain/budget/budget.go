// Package budget provides pure daily token budget arithmetic.
// All functions are deterministic - same input always produces same output.
package budget

import "time"

// DayFormat is the calendar day key used for rollover comparisons.
// Days are computed in UTC so every process agrees on the boundary.
const DayFormat = "2006-01-02"

// State represents the token budget counters for one day (value type).
type State struct {
	Day        string // Calendar day the counter belongs to (UTC, YYYY-MM-DD)
	TokensUsed int64  // Tokens consumed on that day
}

// Config holds budget limits (value type).
type Config struct {
	DailyLimit int64 // Maximum tokens per calendar day
}

// CheckResult represents the outcome of a budget check (value type).
type CheckResult struct {
	Allowed   bool
	Used      int64 // Tokens already consumed today (after rollover)
	Remaining int64 // Tokens left before the cap, never negative
	Reason    string
}

// ReasonLimitExceeded is returned when a completion would exceed the cap.
const ReasonLimitExceeded = "daily_limit_exceeded"

// Day returns the budget day key for a timestamp.
// This is a PURE function.
func Day(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// Rollover resets the counter when the calendar day has changed.
// This is a PURE function - callers persist the returned state.
func Rollover(state State, now time.Time) State {
	today := Day(now)
	if state.Day != today {
		return State{Day: today}
	}
	return state
}

// Check reports whether spending estimate more tokens stays within the cap.
// The rollover is applied first so a stale state never blocks a new day.
// This is a PURE function.
func Check(state State, cfg Config, estimate int64, now time.Time) CheckResult {
	state = Rollover(state, now)

	remaining := cfg.DailyLimit - state.TokensUsed
	if remaining < 0 {
		remaining = 0
	}

	result := CheckResult{
		Used:      state.TokensUsed,
		Remaining: remaining,
	}

	if state.TokensUsed+estimate > cfg.DailyLimit {
		result.Reason = ReasonLimitExceeded
		return result
	}

	result.Allowed = true
	return result
}

// Apply records consumed tokens, rolling the day over first.
// This is a PURE function - callers persist the returned state.
func Apply(state State, tokens int64, now time.Time) State {
	state = Rollover(state, now)
	if tokens > 0 {
		state.TokensUsed += tokens
	}
	return state
}

// Remaining returns the tokens left before the cap, never negative.
// This is a PURE function.
func Remaining(state State, cfg Config, now time.Time) int64 {
	state = Rollover(state, now)
	left := cfg.DailyLimit - state.TokensUsed
	if left < 0 {
		return 0
	}
	return left
}

// PercentUsed returns how much of the cap has been consumed, 0-100+.
// This is a PURE function.
func PercentUsed(state State, cfg Config, now time.Time) float64 {
	if cfg.DailyLimit <= 0 {
		return 0
	}
	state = Rollover(state, now)
	return float64(state.TokensUsed) / float64(cfg.DailyLimit) * 100
}
