// Package catalog holds the static substance, reaction, and exercise
// definitions the lab consults. A Catalog is built once at startup and is
// read-only afterwards.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var defaultFS embed.FS

// Catalog is an immutable lookup structure over substances, reactions, and
// the ordered exercise sequence.
type Catalog struct {
	substances     map[string]Substance
	substanceOrder []string
	reactions      map[PairKey]Reaction
	reactionOrder  []PairKey
	exercises      []Exercise
}

// Default loads the catalog bundled with the binary.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(defaultFS, "data")
	if err != nil {
		return nil, fmt.Errorf("opening embedded catalog: %w", err)
	}
	return Load(sub)
}

// LoadDir loads every catalog YAML file under rootDir.
func LoadDir(rootDir string) (*Catalog, error) {
	return Load(os.DirFS(rootDir))
}

// Load walks fsys in lexical order, decodes every .yaml/.yml file, and
// validates the merged result. Exercises keep file order, then document order.
func Load(fsys fs.FS) (*Catalog, error) {
	var docs []document
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch path.Ext(p) {
		case ".yaml", ".yml":
		default:
			return nil
		}
		doc, err := loadDocument(fsys, p)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if doc != nil {
			docs = append(docs, *doc)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	c, err := build(docs)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	slog.Info("catalog loaded",
		"substances", len(c.substances),
		"reactions", len(c.reactions),
		"exercises", len(c.exercises),
	)
	return c, nil
}

func loadDocument(fsys fs.FS, p string) (*document, error) {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		slog.Warn("skipping empty catalog file", "path", p)
		return nil, nil
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if err := checkSchema(raw); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return &doc, nil
}

// Substance returns a substance by ID.
func (c *Catalog) Substance(id string) (Substance, bool) {
	s, ok := c.substances[id]
	return s, ok
}

// Substances returns all substances in catalog order.
func (c *Catalog) Substances() []Substance {
	out := make([]Substance, 0, len(c.substanceOrder))
	for _, id := range c.substanceOrder {
		out = append(out, c.substances[id])
	}
	return out
}

// Reaction returns the reaction defined for key. The returned value shares
// no memory with the catalog.
func (c *Catalog) Reaction(key PairKey) (Reaction, bool) {
	r, ok := c.reactions[key]
	if !ok {
		return Reaction{}, false
	}
	return r.Clone(), true
}

// Reactions returns all reactions in catalog order.
func (c *Catalog) Reactions() []Reaction {
	out := make([]Reaction, 0, len(c.reactionOrder))
	for _, k := range c.reactionOrder {
		out = append(out, c.reactions[k].Clone())
	}
	return out
}

// ReactionsFor returns every reaction that involves the given substance.
func (c *Catalog) ReactionsFor(id string) []Reaction {
	var out []Reaction
	for _, k := range c.reactionOrder {
		if k.Contains(id) {
			out = append(out, c.reactions[k].Clone())
		}
	}
	return out
}

// Exercises returns the guided exercise sequence in order.
func (c *Catalog) Exercises() []Exercise {
	out := make([]Exercise, len(c.exercises))
	for i, e := range c.exercises {
		out[i] = e.Clone()
	}
	return out
}

// Exercise returns an exercise by ID.
func (c *Catalog) Exercise(id string) (Exercise, bool) {
	for _, e := range c.exercises {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return Exercise{}, false
}
