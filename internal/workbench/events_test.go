package workbench_test

import (
	"testing"

	"github.com/p-n-ai/pai-lab/internal/workbench"
)

func TestMemoryEventLogger_LogEvent(t *testing.T) {
	logger := workbench.NewMemoryEventLogger()

	err := logger.LogEvent(workbench.Event{
		BenchID:   "bench-1",
		EventType: workbench.EventReaction,
		Data: map[string]any{
			"key": "HCl+NaOH",
		},
	})
	if err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}

	events := logger.Events()
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].EventType != workbench.EventReaction {
		t.Errorf("EventType = %q, want %q", events[0].EventType, workbench.EventReaction)
	}
	if events[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestMemoryEventLogger_RequiresType(t *testing.T) {
	logger := workbench.NewMemoryEventLogger()
	if err := logger.LogEvent(workbench.Event{BenchID: "bench-1"}); err == nil {
		t.Fatal("expected error for missing event type")
	}
}

func TestPostgresEventLogger_LogEvent_NilDB(t *testing.T) {
	logger := workbench.NewPostgresEventLogger(nil)

	err := logger.LogEvent(workbench.Event{
		BenchID:   "bench-1",
		EventType: workbench.EventBenchOpened,
	})
	if err == nil {
		t.Fatal("expected error for nil database")
	}
}

func TestRedisEventLogger_LogEvent_NilCache(t *testing.T) {
	logger := workbench.NewRedisEventLogger(nil)

	err := logger.LogEvent(workbench.Event{
		BenchID:   "bench-1",
		EventType: workbench.EventBenchOpened,
	})
	if err == nil {
		t.Fatal("expected error for nil cache")
	}
}
