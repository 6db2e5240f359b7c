package catalog

import (
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://clario-catalog.json"

// schemaDefinition describes the catalog file layout. Structural rules live
// here; cross-entity rules (unique IDs, ownership) live in validateCatalog.
func schemaDefinition() map[string]any {
	nonEmpty := map[string]any{"type": "string", "minLength": 1}
	stringList := map[string]any{"type": "array", "items": nonEmpty}

	streamNames := make([]any, 0, len(AllStreams()))
	for _, s := range AllStreams() {
		streamNames = append(streamNames, string(s))
	}
	icons := make([]any, 0, len(AllIcons()))
	for _, i := range AllIcons() {
		icons = append(icons, string(i))
	}

	option := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":     nonEmpty,
			"label":  nonEmpty,
			"text":   nonEmpty,
			"value":  map[string]any{"type": "integer", "minimum": MinOptionValue, "maximum": MaxOptionValue},
			"traits": stringList,
		},
		"required":             []any{"id", "label", "text", "value", "traits"},
		"additionalProperties": false,
	}

	question := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":       nonEmpty,
			"text":     nonEmpty,
			"type":     map[string]any{"enum": []any{string(QuestionMultipleChoice), string(QuestionScale)}},
			"stream":   map[string]any{"enum": streamNames},
			"category": nonEmpty,
			"options":  map[string]any{"type": "array", "minItems": 2, "items": option},
		},
		"required":             []any{"id", "text", "type", "category", "options"},
		"additionalProperties": false,
	}

	course := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":               nonEmpty,
			"name":             nonEmpty,
			"stream":           map[string]any{"enum": streamNames},
			"description":      nonEmpty,
			"traits":           map[string]any{"type": "array", "minItems": 1, "items": nonEmpty},
			"requiredSubjects": stringList,
			"careerPaths":      stringList,
			"icon":             map[string]any{"enum": icons},
		},
		"required":             []any{"id", "name", "description", "traits", "icon"},
		"additionalProperties": false,
	}

	byStream := func(item map[string]any) map[string]any {
		return map[string]any{
			"type":                 "object",
			"propertyNames":        map[string]any{"enum": streamNames},
			"additionalProperties": map[string]any{"type": "array", "items": item},
		}
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"version":   nonEmpty,
			"questions": byStream(question),
			"courses":   byStream(course),
		},
		"required":             []any{"version", "questions", "courses"},
		"additionalProperties": false,
	}
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, normalizeSchema(schemaDefinition())); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

// normalizeSchema converts Go ints in the definition to float64 so the
// compiler sees the same value types it would get from a JSON document.
func normalizeSchema(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeSchema(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeSchema(val)
		}
		return out
	case int:
		return float64(t)
	default:
		return v
	}
}
