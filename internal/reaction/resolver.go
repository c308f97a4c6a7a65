// Package reaction decides whether two substances react.
package reaction

import "github.com/p-n-ai/pai-lab/internal/catalog"

// Table looks up reactions by canonical pair key. *catalog.Catalog
// satisfies it.
type Table interface {
	Reaction(key catalog.PairKey) (catalog.Reaction, bool)
}

// Outcome is the result of resolving a pair. Reaction is nil when the pair
// does not react.
type Outcome struct {
	Reacted  bool
	Reaction *catalog.Reaction
	A        string
	B        string
	Key      catalog.PairKey
}

// Resolver is a pure lookup over a static Table.
type Resolver struct {
	table Table
}

// NewResolver creates a resolver over table.
func NewResolver(table Table) *Resolver {
	return &Resolver{table: table}
}

// Resolve reports what happens when a and b are mixed. Argument order does
// not affect the result; unknown or identical IDs simply do not react.
func (r *Resolver) Resolve(a, b string) Outcome {
	key := catalog.NewPairKey(a, b)
	out := Outcome{A: a, B: b, Key: key}

	rx, ok := r.table.Reaction(key)
	if !ok {
		return out
	}
	out.Reacted = true
	out.Reaction = &rx
	return out
}
