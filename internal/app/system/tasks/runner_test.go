package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/audit"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestRunner_RunsUntilStopped(t *testing.T) {
	var runs, fails atomic.Int32
	r := NewRunner(zap.NewNop(),
		Job{Name: "tick", Interval: 5 * time.Millisecond, Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		}},
		Job{Name: "broken", Interval: 5 * time.Millisecond, Run: func(ctx context.Context) error {
			fails.Add(1)
			return errors.New("boom")
		}},
		Job{Name: "disabled", Interval: 0, Run: func(ctx context.Context) error {
			t.Error("disabled job ran")
			return nil
		}},
	)
	r.Start()
	time.Sleep(50 * time.Millisecond)
	r.Stop()
	r.Stop()

	if runs.Load() == 0 || fails.Load() == 0 {
		t.Fatalf("runs=%d fails=%d, want both > 0", runs.Load(), fails.Load())
	}
	after := runs.Load()
	time.Sleep(20 * time.Millisecond)
	if runs.Load() != after {
		t.Error("job ran after Stop")
	}
}

func TestAuditRetentionJob(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := audit.New(db)
	church := primitive.NewObjectID()
	now := time.Now().UTC()
	for _, age := range []time.Duration{0, 10 * 24 * time.Hour, 40 * 24 * time.Hour} {
		if err := store.Log(ctx, audit.Event{ChurchID: &church, Category: audit.CategoryAdmin,
			EventType: audit.EventGroupCreated, Timestamp: now.Add(-age), Success: true}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	job := AuditRetentionJob(store, zap.NewNop(), 30*24*time.Hour)
	if err := job.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	n, err := store.Count(ctx, audit.QueryFilter{ChurchID: &church})
	if err != nil || n != 2 {
		t.Errorf("remaining = %d (%v), want 2", n, err)
	}
}
