package catalog

import (
	"slices"
	"strings"
)

// Category classifies a substance.
type Category string

const (
	CategoryAcid      Category = "acid"
	CategoryBase      Category = "base"
	CategorySalt      Category = "salt"
	CategoryMetal     Category = "metal"
	CategorySolvent   Category = "solvent"
	CategoryIndicator Category = "indicator"
)

// ReactionType classifies a reaction.
type ReactionType string

const (
	ReactionNeutralization     ReactionType = "neutralization"
	ReactionSingleDisplacement ReactionType = "single_displacement"
	ReactionPrecipitation      ReactionType = "precipitation"
	ReactionIndicator          ReactionType = "indicator"
	ReactionDilution           ReactionType = "dilution"
)

// Effect is a presentation hint attached to a reaction.
type Effect string

const (
	EffectColorChange         Effect = "color_change"
	EffectTemperatureIncrease Effect = "temperature_increase"
	EffectBubbles             Effect = "bubbles"
	EffectGasGeneration       Effect = "gas_generation"
	EffectPrecipitate         Effect = "precipitate"
	EffectSound               Effect = "sound"
)

// MaxHazardLevel is the highest hazard severity a substance may carry.
const MaxHazardLevel = 3

// Substance is a chemical that can be placed in a container.
type Substance struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Formula     string   `yaml:"formula" json:"formula"`
	Category    Category `yaml:"category" json:"category"`
	Color       string   `yaml:"color" json:"color"`
	Hazard      string   `yaml:"hazard" json:"hazard"`
	HazardLevel int      `yaml:"hazard_level" json:"hazard_level"`
	PH          *float64 `yaml:"ph" json:"ph,omitempty"` // nil when pH is not meaningful
	Description string   `yaml:"description" json:"description"`
}

// HazardMarks renders the hazard level as repeated warning signs.
func (s Substance) HazardMarks() string {
	return strings.Repeat("⚠", s.HazardLevel)
}

// Reaction is the outcome of mixing one unordered pair of substances.
type Reaction struct {
	Key               PairKey      `yaml:"-" json:"key"`
	Type              ReactionType `yaml:"type" json:"type"`
	Equation          string       `yaml:"equation" json:"equation"`
	Products          []string     `yaml:"products" json:"products"`
	ResultColor       string       `yaml:"result_color" json:"result_color"`
	PrecipitateColor  string       `yaml:"precipitate_color" json:"precipitate_color,omitempty"`
	Effects           []Effect     `yaml:"effects" json:"effects"`
	TemperatureChange float64      `yaml:"temperature_change" json:"temperature_change"`
	Title             string       `yaml:"title" json:"title"`
	Explanation       string       `yaml:"explanation" json:"explanation"`
	SafetyNote        string       `yaml:"safety_note" json:"safety_note"`
}

// HasEffect reports whether the reaction carries the given effect tag.
func (r Reaction) HasEffect(e Effect) bool {
	return slices.Contains(r.Effects, e)
}

// HeatIntensity is the glow intensity a renderer should use for the
// temperature change. Zero when the reaction has no temperature_increase tag.
func (r Reaction) HeatIntensity() float64 {
	if !r.HasEffect(EffectTemperatureIncrease) {
		return 0
	}
	return r.TemperatureChange / 20
}

// Clone returns a copy that shares no slices with r.
func (r Reaction) Clone() Reaction {
	r.Products = slices.Clone(r.Products)
	r.Effects = slices.Clone(r.Effects)
	return r
}

// Exercise is one guided-mode task.
type Exercise struct {
	ID               string   `yaml:"id" json:"id"`
	Title            string   `yaml:"title" json:"title"`
	Objective        string   `yaml:"objective" json:"objective"`
	Steps            []string `yaml:"steps" json:"steps"`
	RequiredReaction PairKey  `yaml:"-" json:"required_reaction"`
	Points           int      `yaml:"points" json:"points"`
}

// Clone returns a copy that shares no slices with e.
func (e Exercise) Clone() Exercise {
	e.Steps = slices.Clone(e.Steps)
	return e
}

// document is the on-disk shape of one catalog YAML file.
type document struct {
	Substances []Substance        `yaml:"substances"`
	Reactions  []reactionDocument `yaml:"reactions"`
	Exercises  []exerciseDocument `yaml:"exercises"`
}

type reactionDocument struct {
	Reactants []string `yaml:"reactants"`
	Reaction  `yaml:",inline"`
}

type exerciseDocument struct {
	RequiredReactants []string `yaml:"required_reactants"`
	Exercise          `yaml:",inline"`
}
