// Package memory provides in-memory state implementations.
package memory

import (
	"sync"
	"time"

	"github.com/robinsondorm/robinai/domain/budget"
	"github.com/robinsondorm/robinai/ports"
)

// BudgetStore is the mutex-guarded in-memory implementation of
// ports.BudgetStore. The lock serializes the read-modify-write of the
// day counter so parallel webhook requests never lose updates.
type BudgetStore struct {
	mu    sync.Mutex
	state budget.State
	limit int64
}

// NewBudgetStore creates a budget store with the given daily cap.
func NewBudgetStore(dailyLimit int64) *BudgetStore {
	return &BudgetStore{limit: dailyLimit}
}

// Check reports whether spending estimate more tokens stays within the cap.
// The rollover result is persisted so Snapshot reflects the current day.
func (s *BudgetStore) Check(estimate int64, now time.Time) budget.CheckResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = budget.Rollover(s.state, now)
	return budget.Check(s.state, budget.Config{DailyLimit: s.limit}, estimate, now)
}

// Record adds consumed tokens to today's counter.
func (s *BudgetStore) Record(tokens int64, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = budget.Apply(s.state, tokens, now)
}

// Snapshot returns the post-rollover state for reporting.
func (s *BudgetStore) Snapshot(now time.Time) budget.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = budget.Rollover(s.state, now)
	return s.state
}

// SetLimit replaces the daily cap. Safe to call while handling requests;
// used by config hot reload.
func (s *BudgetStore) SetLimit(limit int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limit = limit
}

// Limit returns the current daily cap.
func (s *BudgetStore) Limit() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limit
}

// Ensure interface compliance.
var _ ports.BudgetStore = (*BudgetStore)(nil)
