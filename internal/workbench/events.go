package workbench

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/p-n-ai/pai-lab/internal/platform/cache"
	"github.com/p-n-ai/pai-lab/internal/platform/database"
)

// Event types emitted by the engine.
const (
	EventBenchOpened       = "bench_opened"
	EventBenchClosed       = "bench_closed"
	EventReaction          = "reaction_performed"
	EventNoReaction        = "no_reaction"
	EventSameSubstance     = "same_substance"
	EventExerciseCompleted = "exercise_completed"
	EventExerciseAdvanced  = "exercise_advanced"
	EventModeChanged       = "mode_changed"
	EventReset             = "reset"
)

const dbTimeout = 5 * time.Second

// Event represents an analytics event about a bench.
type Event struct {
	BenchID   string
	EventType string
	Data      map[string]any
	CreatedAt time.Time
}

// EventLogger defines event logging behavior.
type EventLogger interface {
	LogEvent(event Event) error
}

// NopEventLogger ignores all events.
type NopEventLogger struct{}

func (NopEventLogger) LogEvent(Event) error {
	return nil
}

// MemoryEventLogger stores events in memory for tests.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{
		events: []Event{},
	}
}

func (l *MemoryEventLogger) LogEvent(event Event) error {
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// Types returns the event types in the order they were logged.
func (l *MemoryEventLogger) Types() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	types := make([]string, len(l.events))
	for i, e := range l.events {
		types[i] = e.EventType
	}
	return types
}

// PostgresEventLogger inserts events into the lab_events table.
type PostgresEventLogger struct {
	db *database.DB
}

func NewPostgresEventLogger(db *database.DB) *PostgresEventLogger {
	return &PostgresEventLogger{db: db}
}

func (l *PostgresEventLogger) LogEvent(event Event) error {
	if l == nil || l.db == nil {
		return fmt.Errorf("event logger database is nil")
	}
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if event.BenchID == "" {
		return fmt.Errorf("bench_id is required")
	}

	data, err := marshalData(event.Data)
	if err != nil {
		return err
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if err := l.db.InsertEvent(ctx, event.BenchID, event.EventType, data, createdAt); err != nil {
		return err
	}

	slog.Debug("event logged",
		"type", event.EventType,
		"bench_id", event.BenchID,
	)
	return nil
}

// RedisEventLogger appends events to a Redis stream for downstream consumers
// such as classroom dashboards.
type RedisEventLogger struct {
	cache *cache.Cache
}

func NewRedisEventLogger(c *cache.Cache) *RedisEventLogger {
	return &RedisEventLogger{cache: c}
}

func (l *RedisEventLogger) LogEvent(event Event) error {
	if l == nil || l.cache == nil {
		return fmt.Errorf("event logger cache is nil")
	}
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}

	data, err := marshalData(event.Data)
	if err != nil {
		return err
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	_, err = l.cache.Append(ctx, map[string]any{
		"bench_id":   event.BenchID,
		"event_type": event.EventType,
		"data":       string(data),
		"created_at": createdAt.UTC().Format(time.RFC3339Nano),
	})
	return err
}

func marshalData(payload map[string]any) ([]byte, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event data: %w", err)
	}
	return data, nil
}
