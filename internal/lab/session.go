// Package lab holds the mutable state of one lab session: score, ambient
// temperature, free/guided mode, exercise progress, and the reaction log.
//
// A Session is not safe for concurrent use. Callers that share one across
// goroutines must serialize access themselves.
package lab

import (
	"fmt"
	"slices"
	"time"

	"github.com/p-n-ai/pai-lab/internal/catalog"
	"github.com/p-n-ai/pai-lab/internal/reaction"
)

const (
	// AmbientTemperature is the starting and reset temperature in °C.
	AmbientTemperature = 25.0
	// BasePoints is awarded for any reaction that is not a guided match.
	BasePoints = 25
)

// Mode selects how reactions are scored.
type Mode string

const (
	ModeFree   Mode = "free"
	ModeGuided Mode = "guided"
)

// ParseMode validates a mode name received from outside the process.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeFree, ModeGuided:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q: want %q or %q", s, ModeFree, ModeGuided)
	}
}

// LogEntry records one reaction that occurred.
type LogEntry struct {
	Time     time.Time       `json:"time"`
	A        string          `json:"a"`
	B        string          `json:"b"`
	Key      catalog.PairKey `json:"key"`
	Title    string          `json:"title"`
	Equation string          `json:"equation"`
}

// Result is returned by ApplyReaction.
type Result struct {
	Success  bool
	Reaction *catalog.Reaction
	Key      catalog.PairKey
	// PointsAwarded is zero when nothing reacted.
	PointsAwarded int
	// CompletedExercise is the ID of the exercise this reaction satisfied, if any.
	CompletedExercise string
	CurrentScore      int
	Temperature       float64
}

// SessionConfig holds dependencies for a session.
type SessionConfig struct {
	Resolver  *reaction.Resolver
	Exercises []catalog.Exercise
	Clock     func() time.Time // defaults to time.Now
}

// Session is the reaction-scoring state machine.
type Session struct {
	resolver  *reaction.Resolver
	exercises []catalog.Exercise
	clock     func() time.Time

	score         int
	temperature   float64
	mode          Mode
	exerciseIndex int
	completed     map[string]struct{}
	log           []LogEntry
}

// NewSession creates a session in free mode at ambient temperature.
func NewSession(cfg SessionConfig) *Session {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	exercises := make([]catalog.Exercise, len(cfg.Exercises))
	for i, e := range cfg.Exercises {
		exercises[i] = e.Clone()
	}
	return &Session{
		resolver:    cfg.Resolver,
		exercises:   exercises,
		clock:       clock,
		temperature: AmbientTemperature,
		mode:        ModeFree,
		completed:   make(map[string]struct{}),
	}
}

// ApplyReaction mixes a and b. When nothing reacts the session is left
// untouched.
func (s *Session) ApplyReaction(a, b string) Result {
	out := s.resolver.Resolve(a, b)
	if !out.Reacted {
		return Result{
			Key:          out.Key,
			CurrentScore: s.score,
			Temperature:  s.temperature,
		}
	}

	rx := out.Reaction
	s.temperature += rx.TemperatureChange
	s.log = append(s.log, LogEntry{
		Time:     s.clock(),
		A:        a,
		B:        b,
		Key:      out.Key,
		Title:    rx.Title,
		Equation: rx.Equation,
	})

	points := BasePoints
	var completed string
	if s.mode == ModeGuided {
		if ex, ok := s.CurrentExercise(); ok && ex.RequiredReaction == out.Key {
			points = ex.Points
			s.completed[ex.ID] = struct{}{}
			completed = ex.ID
		}
	}
	s.score += points

	return Result{
		Success:           true,
		Reaction:          rx,
		Key:               out.Key,
		PointsAwarded:     points,
		CompletedExercise: completed,
		CurrentScore:      s.score,
		Temperature:       s.temperature,
	}
}

// CurrentExercise returns the active exercise. It is false only when the
// sequence is empty.
func (s *Session) CurrentExercise() (catalog.Exercise, bool) {
	if s.exerciseIndex < 0 || s.exerciseIndex >= len(s.exercises) {
		return catalog.Exercise{}, false
	}
	return s.exercises[s.exerciseIndex].Clone(), true
}

// AdvanceExercise moves to the next exercise and returns it. At the last
// exercise it returns false and the index stays put.
func (s *Session) AdvanceExercise() (catalog.Exercise, bool) {
	if s.exerciseIndex >= len(s.exercises)-1 {
		return catalog.Exercise{}, false
	}
	s.exerciseIndex++
	return s.CurrentExercise()
}

// SetMode switches mode. Entering guided mode always restarts the exercise
// sequence; completed exercises stay completed. m must be a valid Mode; use
// ParseMode on untrusted input.
func (s *Session) SetMode(m Mode) {
	if m != ModeFree && m != ModeGuided {
		panic(fmt.Sprintf("lab: invalid mode %q", m))
	}
	s.mode = m
	if m == ModeGuided {
		s.exerciseIndex = 0
	}
}

// IsAllComplete compares the number of completed exercises with the number
// of defined exercises. It does not check which IDs were completed.
func (s *Session) IsAllComplete() bool {
	return len(s.completed) >= len(s.exercises)
}

// ResetAmbient restores the temperature only.
func (s *Session) ResetAmbient() {
	s.temperature = AmbientTemperature
}

// ResetFull clears score, log, and exercise progress. Mode is kept.
func (s *Session) ResetFull() {
	s.temperature = AmbientTemperature
	s.score = 0
	s.log = nil
	s.exerciseIndex = 0
	clear(s.completed)
}

// Score is the cumulative score.
func (s *Session) Score() int { return s.score }

// Temperature is the ambient temperature in °C.
func (s *Session) Temperature() float64 { return s.temperature }

func (s *Session) Mode() Mode { return s.mode }

func (s *Session) ExerciseIndex() int { return s.exerciseIndex }

func (s *Session) ExerciseCount() int { return len(s.exercises) }

// IsCompleted reports whether the exercise is in the completed set.
func (s *Session) IsCompleted(id string) bool {
	_, ok := s.completed[id]
	return ok
}

// Completed returns the completed exercise IDs in sorted order.
func (s *Session) Completed() []string {
	ids := make([]string, 0, len(s.completed))
	for id := range s.completed {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Log returns the reaction log oldest first.
func (s *Session) Log() []LogEntry {
	return slices.Clone(s.log)
}
