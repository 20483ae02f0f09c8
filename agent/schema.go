package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// OutputSchema is the structured-output contract bound to one role. The
// schema is strict: every field is required and no other field is allowed.
type OutputSchema struct {
	Name   string
	Schema map[string]any

	compiled *gojsonschema.Schema
	decode   func(raw string) (any, error)
}

// NewOutputSchema reflects T into a strict JSON schema.
func NewOutputSchema[T any](name string) (*OutputSchema, error) {
	reflector := jsonschema.Reflector{
		Anonymous:                 true,
		AllowAdditionalProperties: false,
		ExpandedStruct:            true,
		DoNotReference:            true,
	}
	var zero T
	b, err := json.Marshal(reflector.Reflect(&zero))
	if err != nil {
		return nil, fmt.Errorf("failed to JSON-marshal schema %s: %w", name, err)
	}
	var schema map[string]any
	if err := json.Unmarshal(b, &schema); err != nil {
		return nil, fmt.Errorf("failed to JSON-unmarshal schema %s: %w", name, err)
	}
	delete(schema, "$schema")
	delete(schema, "$id")

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}

	s := &OutputSchema{Name: name, Schema: schema, compiled: compiled}
	s.decode = func(raw string) (any, error) {
		var out T
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return s, nil
}

// MustOutputSchema is like NewOutputSchema but panics on error.
func MustOutputSchema[T any](name string) *OutputSchema {
	s, err := NewOutputSchema[T](name)
	if err != nil {
		panic(err)
	}
	return s
}

var (
	PlannerSchema  = MustOutputSchema[PlannerResponse]("planner_response")
	SelectorSchema = MustOutputSchema[SelectorResponse]("selector_response")
	ReviewerSchema = MustOutputSchema[ReviewerResponse]("reviewer_response")
	RouterSchema   = MustOutputSchema[RouterResponse]("router_response")
)

// Validate checks raw against the schema.
func (s *OutputSchema) Validate(raw string) error {
	result, err := s.compiled.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Decode validates raw and unmarshals it into the schema's Go type. It
// returns the cleaned JSON text alongside the decoded value.
func (s *OutputSchema) Decode(raw string) (string, any, error) {
	cleaned := stripCodeFence(raw)
	if err := s.Validate(cleaned); err != nil {
		return cleaned, nil, err
	}
	out, err := s.decode(cleaned)
	if err != nil {
		return cleaned, nil, err
	}
	return cleaned, out, nil
}

// stripCodeFence removes one surrounding markdown code fence, which local
// models often emit around JSON.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") || len(trimmed) < 6 {
		return trimmed
	}
	body := strings.TrimSuffix(trimmed[3:], "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		if lang := strings.TrimSpace(body[:nl]); !strings.ContainsAny(lang, "{[") {
			body = body[nl+1:]
		}
	}
	return strings.TrimSpace(body)
}
