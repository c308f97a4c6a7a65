package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// pairSeparator is only used for display and parsing; lookups compare the
// two fields directly.
const pairSeparator = "+"

// PairKey identifies an unordered pair of substances. First <= Second always
// holds for keys built with NewPairKey.
type PairKey struct {
	First  string
	Second string
}

// NewPairKey returns the canonical key for a and b regardless of order.
func NewPairKey(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{First: a, Second: b}
}

// ParsePairKey parses the "A+B" display form. Both sides are normalized and
// the result is canonical.
func ParsePairKey(s string) (PairKey, error) {
	a, b, ok := strings.Cut(s, pairSeparator)
	a, b = NormalizeID(a), NormalizeID(b)
	if !ok || a == "" || b == "" {
		return PairKey{}, fmt.Errorf("invalid pair key %q: want A%sB", s, pairSeparator)
	}
	return NewPairKey(a, b), nil
}

// SelfPair reports whether both sides name the same substance.
func (k PairKey) SelfPair() bool {
	return k.First == k.Second
}

// Contains reports whether id is one side of the pair.
func (k PairKey) Contains(id string) bool {
	return k.First == id || k.Second == id
}

func (k PairKey) String() string {
	return k.First + pairSeparator + k.Second
}

func (k PairKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *PairKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePairKey(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// NormalizeID trims and NFC-normalizes a substance identifier so that IDs
// typed on different platforms compare equal.
func NormalizeID(id string) string {
	return norm.NFC.String(strings.TrimSpace(id))
}
