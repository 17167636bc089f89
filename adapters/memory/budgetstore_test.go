package memory_test

import (
	"sync"
	"testing"
	"time"

	"github.com/robinsondorm/robinai/adapters/memory"
	"github.com/robinsondorm/robinai/domain/budget"
)

var noon = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestBudgetStore_RecordAndSnapshot(t *testing.T) {
	store := memory.NewBudgetStore(50000)

	store.Record(100, noon)

	snap := store.Snapshot(noon)
	if snap.TokensUsed != 100 {
		t.Errorf("TokensUsed = %d, want 100", snap.TokensUsed)
	}
	if snap.Day != budget.Day(noon) {
		t.Errorf("Day = %q, want %q", snap.Day, budget.Day(noon))
	}
}

func TestBudgetStore_CheckRemaining(t *testing.T) {
	store := memory.NewBudgetStore(50000)
	store.Record(100, noon)

	result := store.Check(0, noon)
	if !result.Allowed {
		t.Errorf("should be allowed, got reason %q", result.Reason)
	}
	if result.Remaining != 49900 {
		t.Errorf("Remaining = %d, want 49900", result.Remaining)
	}
}

func TestBudgetStore_CheckWouldExceed(t *testing.T) {
	store := memory.NewBudgetStore(50000)
	store.Record(49900, noon)

	if result := store.Check(200, noon); result.Allowed {
		t.Error("49900 + 200 > 50000 should not be allowed")
	}
}

func TestBudgetStore_DayRollover(t *testing.T) {
	store := memory.NewBudgetStore(50000)
	store.Record(40000, noon)

	tomorrow := noon.Add(24 * time.Hour)
	snap := store.Snapshot(tomorrow)
	if snap.TokensUsed != 0 {
		t.Errorf("TokensUsed = %d after day change, want 0", snap.TokensUsed)
	}

	if result := store.Check(0, tomorrow); result.Remaining != 50000 {
		t.Errorf("Remaining = %d after rollover, want full limit", result.Remaining)
	}
}

func TestBudgetStore_SetLimit(t *testing.T) {
	store := memory.NewBudgetStore(50000)
	store.Record(900, noon)

	store.SetLimit(1000)
	if store.Limit() != 1000 {
		t.Errorf("Limit = %d, want 1000", store.Limit())
	}

	if result := store.Check(200, noon); result.Allowed {
		t.Error("new limit should apply to existing usage")
	}
}

func TestBudgetStore_ConcurrentRecord(t *testing.T) {
	store := memory.NewBudgetStore(1 << 30)

	const goroutines = 50
	const perGoroutine = 100

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				store.Record(1, noon)
			}
		}()
	}
	wg.Wait()

	snap := store.Snapshot(noon)
	if want := int64(goroutines * perGoroutine); snap.TokensUsed != want {
		t.Errorf("TokensUsed = %d, want %d (lost updates)", snap.TokensUsed, want)
	}
}
