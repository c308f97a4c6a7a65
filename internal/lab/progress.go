package lab

import "github.com/p-n-ai/pai-lab/internal/catalog"

// Progress is a read-only view of guided-mode progress.
type Progress struct {
	Mode        Mode              `json:"mode"`
	Index       int               `json:"index"`
	Total       int               `json:"total"`
	Current     *catalog.Exercise `json:"current,omitempty"`
	Completed   []string          `json:"completed"`
	Satisfied   bool              `json:"satisfied"`
	AllComplete bool              `json:"all_complete"`
}

// ActiveExerciseSatisfied reports whether, in guided mode, the active
// exercise is in the completed set. Callers use this and nothing else to
// decide when to advance.
func (s *Session) ActiveExerciseSatisfied() bool {
	if s.mode != ModeGuided {
		return false
	}
	ex, ok := s.CurrentExercise()
	return ok && s.IsCompleted(ex.ID)
}

// Progress returns a snapshot of exercise progress.
func (s *Session) Progress() Progress {
	p := Progress{
		Mode:        s.mode,
		Index:       s.exerciseIndex,
		Total:       len(s.exercises),
		Completed:   s.Completed(),
		Satisfied:   s.ActiveExerciseSatisfied(),
		AllComplete: s.IsAllComplete(),
	}
	if ex, ok := s.CurrentExercise(); ok {
		p.Current = &ex
	}
	return p
}
