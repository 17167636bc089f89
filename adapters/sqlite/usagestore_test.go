package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/robinsondorm/robinai/adapters/sqlite"
	"github.com/robinsondorm/robinai/ports"
)

func openTestDB(t *testing.T) *sqlite.DB {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
}

func TestUsageStore_RecordAndSummaries(t *testing.T) {
	db := openTestDB(t)
	store := sqlite.NewUsageStore(db)
	ctx := context.Background()

	day1 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)

	events := []ports.ReplyEvent{
		{ID: "e1", GroupID: "g1", SenderID: "u1", TotalTokens: 100, Delivered: true, Timestamp: day1},
		{ID: "e2", GroupID: "g1", SenderID: "u2", TotalTokens: 250, Delivered: true, Timestamp: day1},
		{ID: "e3", GroupID: "g2", SenderID: "u1", TotalTokens: 80, Timestamp: day2},
	}
	for _, ev := range events {
		if err := store.Record(ctx, ev); err != nil {
			t.Fatalf("Record(%s) failed: %v", ev.ID, err)
		}
	}

	summaries, err := store.DailySummaries(ctx, 7)
	if err != nil {
		t.Fatalf("DailySummaries failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}

	// Newest day first.
	if summaries[0].Day != "2025-03-11" {
		t.Errorf("summaries[0].Day = %q, want 2025-03-11", summaries[0].Day)
	}
	if summaries[0].Tokens != 80 || summaries[0].ReplyCount != 1 {
		t.Errorf("summaries[0] = %+v, want 1 reply / 80 tokens", summaries[0])
	}
	if summaries[1].Tokens != 350 || summaries[1].ReplyCount != 2 {
		t.Errorf("summaries[1] = %+v, want 2 replies / 350 tokens", summaries[1])
	}
}

func TestUsageStore_TokensOnDay(t *testing.T) {
	db := openTestDB(t)
	store := sqlite.NewUsageStore(db)
	ctx := context.Background()

	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store.Record(ctx, ports.ReplyEvent{ID: "e1", GroupID: "g1", SenderID: "u1", TotalTokens: 120, Timestamp: day})
	store.Record(ctx, ports.ReplyEvent{ID: "e2", GroupID: "g1", SenderID: "u1", TotalTokens: 30, Timestamp: day})

	tokens, err := store.TokensOnDay(ctx, "2025-03-10")
	if err != nil {
		t.Fatalf("TokensOnDay failed: %v", err)
	}
	if tokens != 150 {
		t.Errorf("tokens = %d, want 150", tokens)
	}

	tokens, err = store.TokensOnDay(ctx, "2025-03-12")
	if err != nil {
		t.Fatalf("TokensOnDay for empty day failed: %v", err)
	}
	if tokens != 0 {
		t.Errorf("tokens = %d for empty day, want 0", tokens)
	}
}

func TestUsageStore_DaySpansUTC(t *testing.T) {
	db := openTestDB(t)
	store := sqlite.NewUsageStore(db)
	ctx := context.Background()

	// 23:30 EST on the 10th is 04:30 UTC on the 11th.
	loc := time.FixedZone("EST", -5*3600)
	local := time.Date(2025, 3, 10, 23, 30, 0, 0, loc)
	store.Record(ctx, ports.ReplyEvent{ID: "e1", GroupID: "g1", SenderID: "u1", TotalTokens: 50, Timestamp: local})

	tokens, err := store.TokensOnDay(ctx, "2025-03-11")
	if err != nil {
		t.Fatalf("TokensOnDay failed: %v", err)
	}
	if tokens != 50 {
		t.Errorf("tokens = %d, want 50 attributed to the UTC day", tokens)
	}
}
