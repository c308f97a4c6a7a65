package reaction_test

import (
	"testing"

	"github.com/p-n-ai/pai-lab/internal/catalog"
	"github.com/p-n-ai/pai-lab/internal/reaction"
)

func newResolver(t *testing.T) (*reaction.Resolver, *catalog.Catalog) {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() error = %v", err)
	}
	return reaction.NewResolver(c), c
}

func TestResolve_Reacts(t *testing.T) {
	r, _ := newResolver(t)

	out := r.Resolve("HCl", "NaOH")
	if !out.Reacted {
		t.Fatal("Resolve(HCl, NaOH).Reacted = false, want true")
	}
	if out.Reaction == nil || out.Reaction.Type != catalog.ReactionNeutralization {
		t.Errorf("Reaction = %+v, want neutralization", out.Reaction)
	}
	if out.A != "HCl" || out.B != "NaOH" {
		t.Errorf("A, B = %q, %q; want inputs preserved", out.A, out.B)
	}
}

func TestResolve_NoReaction(t *testing.T) {
	r, _ := newResolver(t)

	tests := []struct {
		name string
		a, b string
	}{
		{"undefined pair", "H2O", "AgNO3"},
		{"unknown substance", "HCl", "Unobtainium"},
		{"both unknown", "X", "Y"},
		{"empty ids", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := r.Resolve(tt.a, tt.b)
			if out.Reacted || out.Reaction != nil {
				t.Errorf("Resolve(%q, %q) = %+v, want no reaction", tt.a, tt.b, out)
			}
			if out.A != tt.a || out.B != tt.b {
				t.Errorf("A, B = %q, %q; want %q, %q", out.A, out.B, tt.a, tt.b)
			}
		})
	}
}

func TestResolve_Commutative(t *testing.T) {
	r, c := newResolver(t)

	ids := []string{"Unobtainium"}
	for _, s := range c.Substances() {
		ids = append(ids, s.ID)
	}

	for _, a := range ids {
		for _, b := range ids {
			ab := r.Resolve(a, b)
			ba := r.Resolve(b, a)
			if ab.Reacted != ba.Reacted {
				t.Errorf("Resolve(%s, %s).Reacted = %v but Resolve(%s, %s).Reacted = %v", a, b, ab.Reacted, b, a, ba.Reacted)
				continue
			}
			if ab.Key != ba.Key {
				t.Errorf("keys differ: %v vs %v", ab.Key, ba.Key)
			}
			if ab.Reacted && ab.Reaction.Title != ba.Reaction.Title {
				t.Errorf("Resolve(%s, %s) = %q, reversed = %q", a, b, ab.Reaction.Title, ba.Reaction.Title)
			}
		}
	}
}

func TestResolve_SelfPairNeverReacts(t *testing.T) {
	r, c := newResolver(t)

	for _, s := range c.Substances() {
		if out := r.Resolve(s.ID, s.ID); out.Reacted {
			t.Errorf("Resolve(%s, %s) reacted, want no reaction", s.ID, s.ID)
		}
	}
}

func TestResolve_ReactionIsACopy(t *testing.T) {
	r, _ := newResolver(t)

	first := r.Resolve("CuSO4", "NaOH")
	first.Reaction.TemperatureChange = 999
	first.Reaction.Effects[0] = "mutated"

	second := r.Resolve("NaOH", "CuSO4")
	if second.Reaction.TemperatureChange != 3 {
		t.Errorf("TemperatureChange = %v, want 3", second.Reaction.TemperatureChange)
	}
	if second.Reaction.Effects[0] != catalog.EffectPrecipitate {
		t.Errorf("Effects[0] = %q, want precipitate", second.Reaction.Effects[0])
	}
}

type mapTable map[catalog.PairKey]catalog.Reaction

func (m mapTable) Reaction(k catalog.PairKey) (catalog.Reaction, bool) {
	r, ok := m[k]
	return r, ok
}

func TestResolve_SeparatorInIDsDoesNotCollide(t *testing.T) {
	// "A+B"+"C" and "A"+"B+C" join to the same string but are different pairs.
	table := mapTable{
		catalog.NewPairKey("A+B", "C"): {Title: "left"},
	}
	r := reaction.NewResolver(table)

	if out := r.Resolve("A", "B+C"); out.Reacted {
		t.Errorf("Resolve(A, B+C) reacted with %q, want no reaction", out.Reaction.Title)
	}
	if out := r.Resolve("C", "A+B"); !out.Reacted {
		t.Error("Resolve(C, A+B) did not react")
	}
}
