package catalog

import (
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema describes a single catalog YAML file after decoding.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "substances": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["id", "name", "formula", "category", "hazard_level"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "formula": {"type": "string", "minLength": 1},
          "category": {"enum": ["acid", "base", "salt", "metal", "solvent", "indicator"]},
          "color": {"type": "string", "pattern": "^#[0-9a-fA-F]{6}$"},
          "hazard": {"type": "string"},
          "hazard_level": {"type": "integer", "minimum": 0, "maximum": 3},
          "ph": {"type": ["number", "null"], "minimum": 0, "maximum": 14},
          "description": {"type": "string"}
        }
      }
    },
    "reactions": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["reactants", "type", "equation", "title"],
        "properties": {
          "reactants": {
            "type": "array",
            "minItems": 2,
            "maxItems": 2,
            "items": {"type": "string", "minLength": 1}
          },
          "type": {"enum": ["neutralization", "single_displacement", "precipitation", "indicator", "dilution"]},
          "equation": {"type": "string", "minLength": 1},
          "products": {"type": "array", "items": {"type": "string"}},
          "result_color": {"type": "string", "pattern": "^#[0-9a-fA-F]{6}$"},
          "precipitate_color": {"type": "string", "pattern": "^#[0-9a-fA-F]{6}$"},
          "effects": {
            "type": "array",
            "uniqueItems": true,
            "items": {"enum": ["color_change", "temperature_increase", "bubbles", "gas_generation", "precipitate", "sound"]}
          },
          "temperature_change": {"type": "number"},
          "title": {"type": "string", "minLength": 1},
          "explanation": {"type": "string"},
          "safety_note": {"type": "string"}
        }
      }
    },
    "exercises": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["id", "title", "required_reactants", "points"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string", "minLength": 1},
          "objective": {"type": "string"},
          "steps": {"type": "array", "items": {"type": "string"}},
          "required_reactants": {
            "type": "array",
            "minItems": 2,
            "maxItems": 2,
            "items": {"type": "string", "minLength": 1}
          },
          "points": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

var compiledSchema *gojsonschema.Schema

func init() {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
	if err != nil {
		panic(fmt.Sprintf("catalog: compiling document schema: %v", err))
	}
	compiledSchema = s
}

// checkSchema validates a decoded YAML document against the catalog schema.
func checkSchema(raw any) error {
	result, err := compiledSchema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return fmt.Errorf("validating schema: %w", err)
	}
	if result.Valid() {
		return nil
	}
	errs := make([]error, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, errors.New(e.String()))
	}
	return errors.Join(errs...)
}
