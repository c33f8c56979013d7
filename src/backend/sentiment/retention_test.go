package sentiment

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestRetentionJob_RunOnce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryHistoryStore(10, clock)
	ctx := context.Background()

	_ = store.Append(ctx, newEntry("s", "velho", "Negativo", 0.7))
	clock.Advance(30 * time.Hour)
	_ = store.Append(ctx, newEntry("s", "novo", "Positivo", 0.7))

	job, err := NewRetentionJob(store, "@hourly", 24*time.Hour)
	if err != nil {
		t.Fatalf("expected valid schedule, got: %v", err)
	}

	if deleted := job.RunOnce(ctx); deleted != 1 {
		t.Errorf("expected 1 deleted entry, got %d", deleted)
	}
	if n, _ := store.Count(ctx, "s"); n != 1 {
		t.Errorf("expected 1 remaining entry, got %d", n)
	}
}

func TestRetentionJob_InvalidSchedule(t *testing.T) {
	_, err := NewRetentionJob(NewMemoryHistoryStore(10, nil), "every now and then", time.Hour)
	if err == nil {
		t.Error("expected an error for an invalid cron spec")
	}
}

func TestRetentionJob_StartStop(t *testing.T) {
	job, err := NewRetentionJob(NewMemoryHistoryStore(10, nil), "*/5 * * * *", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	job.Start()
	job.Stop()
}
