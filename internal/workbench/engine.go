package workbench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/p-n-ai/pai-lab/internal/catalog"
	"github.com/p-n-ai/pai-lab/internal/lab"
	"github.com/p-n-ai/pai-lab/internal/reaction"
)

// ErrEmptySubstance is returned when a pour names no substance.
var ErrEmptySubstance = errors.New("substance id is required")

// MixKind describes what a pour did.
type MixKind string

const (
	MixReacted       MixKind = "reacted"
	MixNoReaction    MixKind = "no_reaction"
	MixSameSubstance MixKind = "same_substance"
)

// ResetScope selects which reset to run.
type ResetScope string

const (
	ResetAmbient ResetScope = "ambient"
	ResetFull    ResetScope = "full"
)

// ParseResetScope validates a reset scope received from outside the process.
func ParseResetScope(s string) (ResetScope, error) {
	switch r := ResetScope(s); r {
	case ResetAmbient, ResetFull:
		return r, nil
	default:
		return "", fmt.Errorf("unknown reset scope %q: want %q or %q", s, ResetAmbient, ResetFull)
	}
}

// MixResult is returned by Engine.Mix.
type MixResult struct {
	Kind              MixKind           `json:"kind"`
	Container         string            `json:"container"`
	Incoming          string            `json:"incoming"`
	Reaction          *catalog.Reaction `json:"reaction,omitempty"`
	PointsAwarded     int               `json:"points_awarded"`
	CompletedExercise string            `json:"completed_exercise,omitempty"`
	Score             int               `json:"score"`
	Temperature       float64           `json:"temperature"`
	AdvanceScheduled  bool              `json:"advance_scheduled"`
}

// AdvanceResult is returned by Engine.Advance. Done is true when the
// sequence has no further exercise.
type AdvanceResult struct {
	Exercise *catalog.Exercise `json:"exercise,omitempty"`
	Done     bool              `json:"done"`
}

// State is a point-in-time view of a bench.
type State struct {
	ID          string         `json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	Score       int            `json:"score"`
	Temperature float64        `json:"temperature"`
	Mode        lab.Mode       `json:"mode"`
	Progress    lab.Progress   `json:"progress"`
	Log         []lab.LogEntry `json:"log"`
}

// EngineConfig holds dependencies for the workbench engine.
type EngineConfig struct {
	Catalog      *catalog.Catalog
	Store        BenchStore
	Events       EventLogger
	AdvanceDelay time.Duration // zero leaves advancing to the caller
	Clock        func() time.Time
}

// Engine runs lab sessions on behalf of the presentation layer.
type Engine struct {
	catalog      *catalog.Catalog
	resolver     *reaction.Resolver
	store        BenchStore
	events       EventLogger
	advanceDelay time.Duration
	clock        func() time.Time
}

// NewEngine creates a new workbench engine. cfg.Catalog is required.
func NewEngine(cfg EngineConfig) *Engine {
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore(0)
	}
	events := cfg.Events
	if events == nil {
		events = NopEventLogger{}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		catalog:      cfg.Catalog,
		resolver:     reaction.NewResolver(cfg.Catalog),
		store:        store,
		events:       events,
		advanceDelay: cfg.AdvanceDelay,
		clock:        clock,
	}
}

// Catalog returns the catalog the engine was built with.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Open creates a fresh bench.
func (e *Engine) Open(_ context.Context) (State, error) {
	session := lab.NewSession(lab.SessionConfig{
		Resolver:  e.resolver,
		Exercises: e.catalog.Exercises(),
		Clock:     e.clock,
	})
	b, err := e.store.Create(session, e.clock())
	if err != nil {
		return State{}, fmt.Errorf("opening bench: %w", err)
	}
	benchesOpen.Inc()

	slog.Info("bench opened", "bench_id", b.ID)
	e.logEvent(b.ID, EventBenchOpened, nil)

	b.mu.Lock()
	defer b.mu.Unlock()
	return snapshot(b), nil
}

// Close discards a bench and any pending advancement.
func (e *Engine) Close(_ context.Context, id string) error {
	b, err := e.store.Get(id)
	if err != nil {
		return err
	}
	// Delete before stopping so no Mix can schedule on an unreachable bench.
	if err := e.store.Delete(id); err != nil {
		return err
	}
	b.mu.Lock()
	stopPending(b)
	b.closed = true
	b.mu.Unlock()
	benchesOpen.Dec()

	slog.Info("bench closed", "bench_id", id)
	e.logEvent(id, EventBenchClosed, nil)
	return nil
}

// State returns the current bench state.
func (e *Engine) State(_ context.Context, id string) (State, error) {
	b, err := e.store.Get(id)
	if err != nil {
		return State{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return snapshot(b), nil
}

// Mix pours incoming into a container holding container. Pouring a
// substance into itself only adds volume and never reaches the core.
func (e *Engine) Mix(_ context.Context, id, container, incoming string) (MixResult, error) {
	container, incoming = catalog.NormalizeID(container), catalog.NormalizeID(incoming)
	if container == "" || incoming == "" {
		return MixResult{}, ErrEmptySubstance
	}

	b, err := e.store.Get(id)
	if err != nil {
		return MixResult{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.session
	out := MixResult{
		Container: container,
		Incoming:  incoming,
	}

	if container == incoming {
		out.Kind = MixSameSubstance
		out.Score = s.Score()
		out.Temperature = s.Temperature()
		nonReactionsTotal.WithLabelValues(string(MixSameSubstance)).Inc()
		e.logEvent(id, EventSameSubstance, map[string]any{"substance": container})
		return out, nil
	}

	res := s.ApplyReaction(container, incoming)
	out.Score = res.CurrentScore
	out.Temperature = res.Temperature

	if !res.Success {
		out.Kind = MixNoReaction
		nonReactionsTotal.WithLabelValues(string(MixNoReaction)).Inc()
		slog.Debug("no reaction", "bench_id", id, "a", container, "b", incoming)
		e.logEvent(id, EventNoReaction, map[string]any{"a": container, "b": incoming})
		return out, nil
	}

	out.Kind = MixReacted
	out.Reaction = res.Reaction
	out.PointsAwarded = res.PointsAwarded
	out.CompletedExercise = res.CompletedExercise

	reactionsTotal.WithLabelValues(string(res.Reaction.Type)).Inc()
	pointsAwardedTotal.WithLabelValues(string(s.Mode())).Add(float64(res.PointsAwarded))
	temperatureObserved.Observe(res.Temperature)

	slog.Info("reaction performed",
		"bench_id", id,
		"reaction", res.Key.String(),
		"points", res.PointsAwarded,
		"score", res.CurrentScore,
		"temperature", res.Temperature,
	)
	e.logEvent(id, EventReaction, map[string]any{
		"key":         res.Key.String(),
		"type":        string(res.Reaction.Type),
		"points":      res.PointsAwarded,
		"score":       res.CurrentScore,
		"temperature": res.Temperature,
	})

	if res.CompletedExercise != "" {
		exercisesCompletedTotal.WithLabelValues(res.CompletedExercise).Inc()
		e.logEvent(id, EventExerciseCompleted, map[string]any{"exercise": res.CompletedExercise})
	}
	// The active exercise may have been completed earlier, e.g. before the
	// bench left and re-entered guided mode.
	out.AdvanceScheduled = e.scheduleAdvance(b)
	return out, nil
}

// Advance moves the bench to its next exercise.
func (e *Engine) Advance(_ context.Context, id string) (AdvanceResult, error) {
	b, err := e.store.Get(id)
	if err != nil {
		return AdvanceResult{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	stopPending(b)
	return e.advanceLocked(b), nil
}

// SetMode switches the bench mode.
func (e *Engine) SetMode(_ context.Context, id string, mode lab.Mode) (State, error) {
	if _, err := lab.ParseMode(string(mode)); err != nil {
		return State{}, err
	}
	b, err := e.store.Get(id)
	if err != nil {
		return State{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	e.setModeLocked(b, mode)
	return snapshot(b), nil
}

// ToggleMode flips between free and guided mode.
func (e *Engine) ToggleMode(_ context.Context, id string) (State, error) {
	b, err := e.store.Get(id)
	if err != nil {
		return State{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	next := lab.ModeGuided
	if b.session.Mode() == lab.ModeGuided {
		next = lab.ModeFree
	}
	e.setModeLocked(b, next)
	return snapshot(b), nil
}

// Reset runs an ambient or full reset.
func (e *Engine) Reset(_ context.Context, id string, scope ResetScope) (State, error) {
	if _, err := ParseResetScope(string(scope)); err != nil {
		return State{}, err
	}
	b, err := e.store.Get(id)
	if err != nil {
		return State{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch scope {
	case ResetAmbient:
		b.session.ResetAmbient()
	case ResetFull:
		stopPending(b)
		b.session.ResetFull()
	}

	slog.Info("bench reset", "bench_id", id, "scope", scope)
	e.logEvent(id, EventReset, map[string]any{"scope": string(scope)})
	return snapshot(b), nil
}

func (e *Engine) setModeLocked(b *Bench, mode lab.Mode) {
	stopPending(b)
	b.session.SetMode(mode)
	slog.Info("mode changed", "bench_id", b.ID, "mode", mode)
	e.logEvent(b.ID, EventModeChanged, map[string]any{"mode": string(mode)})
}

func (e *Engine) advanceLocked(b *Bench) AdvanceResult {
	ex, ok := b.session.AdvanceExercise()
	if !ok {
		return AdvanceResult{Done: true}
	}
	e.logEvent(b.ID, EventExerciseAdvanced, map[string]any{
		"exercise": ex.ID,
		"index":    b.session.ExerciseIndex(),
	})
	return AdvanceResult{Exercise: &ex}
}

// scheduleAdvance arranges for the bench to move on once the presentation
// layer has had time to show the completion. Caller holds b.mu.
func (e *Engine) scheduleAdvance(b *Bench) bool {
	if e.advanceDelay <= 0 || b.closed || b.pendingAdvance != nil {
		return false
	}
	if !b.session.ActiveExerciseSatisfied() {
		return false
	}

	var t *time.Timer
	t = time.AfterFunc(e.advanceDelay, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.pendingAdvance != t {
			return
		}
		b.pendingAdvance = nil
		if b.session.ActiveExerciseSatisfied() {
			e.advanceLocked(b)
		}
	})
	b.pendingAdvance = t
	return true
}

func stopPending(b *Bench) {
	if b.pendingAdvance != nil {
		b.pendingAdvance.Stop()
		b.pendingAdvance = nil
	}
}

func snapshot(b *Bench) State {
	s := b.session
	log := s.Log()
	if log == nil {
		log = []lab.LogEntry{}
	}
	return State{
		ID:          b.ID,
		CreatedAt:   b.CreatedAt,
		Score:       s.Score(),
		Temperature: s.Temperature(),
		Mode:        s.Mode(),
		Progress:    s.Progress(),
		Log:         log,
	}
}

func (e *Engine) logEvent(benchID, eventType string, data map[string]any) {
	err := e.events.LogEvent(Event{
		BenchID:   benchID,
		EventType: eventType,
		Data:      data,
		CreatedAt: e.clock(),
	})
	if err != nil {
		slog.Warn("failed to log event", "type", eventType, "bench_id", benchID, "error", err)
	}
}
