package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/p-n-ai/pai-lab/internal/catalog"
	"github.com/p-n-ai/pai-lab/internal/lab"
	"github.com/p-n-ai/pai-lab/internal/workbench"
)

// simulateOptions controls a replay.
type simulateOptions struct {
	guided  bool
	advance bool // move to the next exercise as soon as one is completed
}

// pour is one "container+incoming" argument.
type pour struct {
	container string
	incoming  string
}

func parsePours(args []string) ([]pour, error) {
	pours := make([]pour, 0, len(args))
	for _, arg := range args {
		a, b, ok := strings.Cut(arg, "+")
		a, b = catalog.NormalizeID(a), catalog.NormalizeID(b)
		if !ok || a == "" || b == "" {
			return nil, fmt.Errorf("invalid pour %q: want CONTAINER+INCOMING", arg)
		}
		pours = append(pours, pour{container: a, incoming: b})
	}
	return pours, nil
}

// simulate replays pours on a fresh bench and prints one line per pour to out.
func simulate(ctx context.Context, c *catalog.Catalog, pours []pour, opts simulateOptions, out io.Writer) (workbench.State, error) {
	engine := workbench.NewEngine(workbench.EngineConfig{Catalog: c})

	st, err := engine.Open(ctx)
	if err != nil {
		return workbench.State{}, err
	}
	id := st.ID

	if opts.guided {
		if _, err := engine.SetMode(ctx, id, lab.ModeGuided); err != nil {
			return workbench.State{}, err
		}
	}

	for i, p := range pours {
		res, err := engine.Mix(ctx, id, p.container, p.incoming)
		if err != nil {
			return workbench.State{}, fmt.Errorf("pour %d: %w", i+1, err)
		}
		switch res.Kind {
		case workbench.MixReacted:
			fmt.Fprintf(out, "%2d. %s + %s -> %s (+%d, score %d, %.1f°C)\n",
				i+1, p.container, p.incoming, res.Reaction.Title, res.PointsAwarded, res.Score, res.Temperature)
			fmt.Fprintf(out, "    %s\n", res.Reaction.Equation)
			if h := res.Reaction.SafetyNote; h != "" {
				fmt.Fprintf(out, "    safety: %s\n", h)
			}
		case workbench.MixSameSubstance:
			fmt.Fprintf(out, "%2d. %s + %s -> more %s\n", i+1, p.container, p.incoming, p.container)
		default:
			fmt.Fprintf(out, "%2d. %s + %s -> no reaction\n", i+1, p.container, p.incoming)
		}

		if res.CompletedExercise != "" {
			fmt.Fprintf(out, "    exercise complete: %s\n", res.CompletedExercise)
		}
		if res.Kind != workbench.MixReacted || !opts.advance {
			continue
		}
		st, err := engine.State(ctx, id)
		if err != nil {
			return workbench.State{}, err
		}
		if !st.Progress.Satisfied {
			continue
		}
		adv, err := engine.Advance(ctx, id)
		if err != nil {
			return workbench.State{}, err
		}
		if adv.Exercise != nil {
			fmt.Fprintf(out, "    next exercise: %s\n", adv.Exercise.Title)
		}
	}

	return engine.State(ctx, id)
}

func printSummary(out io.Writer, st workbench.State) {
	p := st.Progress
	fmt.Fprintf(out, "score %d, temperature %.1f°C, mode %s", st.Score, st.Temperature, st.Mode)
	if st.Mode == lab.ModeGuided {
		fmt.Fprintf(out, ", exercises %d/%d", len(p.Completed), p.Total)
		if p.AllComplete {
			fmt.Fprint(out, " (all complete)")
		}
	}
	fmt.Fprintln(out)
}
