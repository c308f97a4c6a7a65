package catalog

import (
	"errors"
	"fmt"
)

// build merges decoded documents into a Catalog and reports every authoring
// defect it finds rather than stopping at the first.
func build(docs []document) (*Catalog, error) {
	c := &Catalog{
		substances: make(map[string]Substance),
		reactions:  make(map[PairKey]Reaction),
	}
	var errs []error

	for _, doc := range docs {
		for _, s := range doc.Substances {
			s.ID = NormalizeID(s.ID)
			if _, dup := c.substances[s.ID]; dup {
				errs = append(errs, fmt.Errorf("duplicate substance %q", s.ID))
				continue
			}
			if s.HazardLevel < 0 || s.HazardLevel > MaxHazardLevel {
				errs = append(errs, fmt.Errorf("substance %q: hazard level %d out of range 0..%d", s.ID, s.HazardLevel, MaxHazardLevel))
			}
			c.substances[s.ID] = s
			c.substanceOrder = append(c.substanceOrder, s.ID)
		}
	}

	for _, doc := range docs {
		for _, rd := range doc.Reactions {
			key, err := reactantsKey(rd.Reactants)
			if err != nil {
				errs = append(errs, fmt.Errorf("reaction %q: %w", rd.Title, err))
				continue
			}
			if key.SelfPair() {
				errs = append(errs, fmt.Errorf("reaction %s: a substance cannot react with itself", key))
				continue
			}
			if _, dup := c.reactions[key]; dup {
				errs = append(errs, fmt.Errorf("duplicate reaction %s", key))
				continue
			}
			for _, id := range []string{key.First, key.Second} {
				if _, ok := c.substances[id]; !ok {
					errs = append(errs, fmt.Errorf("reaction %s: unknown substance %q", key, id))
				}
			}
			r := rd.Reaction
			r.Key = key
			c.reactions[key] = r
			c.reactionOrder = append(c.reactionOrder, key)
		}
	}

	seenExercise := make(map[string]bool)
	for _, doc := range docs {
		for _, ed := range doc.Exercises {
			e := ed.Exercise
			if seenExercise[e.ID] {
				errs = append(errs, fmt.Errorf("duplicate exercise %q", e.ID))
				continue
			}
			seenExercise[e.ID] = true

			key, err := reactantsKey(ed.RequiredReactants)
			if err != nil {
				errs = append(errs, fmt.Errorf("exercise %q: %w", e.ID, err))
				continue
			}
			if _, ok := c.reactions[key]; !ok {
				errs = append(errs, fmt.Errorf("exercise %q: required reaction %s is not defined", e.ID, key))
			}
			e.RequiredReaction = key
			c.exercises = append(c.exercises, e)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

func reactantsKey(ids []string) (PairKey, error) {
	if len(ids) != 2 {
		return PairKey{}, fmt.Errorf("want 2 reactants, got %d", len(ids))
	}
	a, b := NormalizeID(ids[0]), NormalizeID(ids[1])
	if a == "" || b == "" {
		return PairKey{}, errors.New("reactant id is empty")
	}
	return NewPairKey(a, b), nil
}
