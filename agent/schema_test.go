package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaIsStrict(t *testing.T) {
	assert.Equal(t, "object", PlannerSchema.Schema["type"])
	assert.Equal(t, false, PlannerSchema.Schema["additionalProperties"])
	assert.ElementsMatch(t,
		[]any{"search_term", "overall_strategy", "additional_information"},
		PlannerSchema.Schema["required"])
	assert.NotContains(t, PlannerSchema.Schema, "$schema")
}

func TestDecodePlanner(t *testing.T) {
	content, payload, err := PlannerSchema.Decode(plannerJSON)
	require.NoError(t, err)

	assert.JSONEq(t, plannerJSON, content)
	assert.Equal(t, PlannerResponse{
		SearchTerm:            "capital of France",
		OverallStrategy:       "search",
		AdditionalInformation: "none",
	}, payload)
}

func TestDecodeReviewer(t *testing.T) {
	_, payload, err := ReviewerSchema.Decode(failJSON)
	require.NoError(t, err)

	review := payload.(ReviewerResponse)
	assert.Equal(t, "missing citations", review.Feedback)
	assert.False(t, review.PassReview)
	assert.True(t, review.RelevantToResearchQuestion)
}

func TestDecodeStripsCodeFence(t *testing.T) {
	_, payload, err := RouterSchema.Decode("```json\n{\"next_agent\": \"reporter\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, RouterResponse{NextAgent: "reporter"}, payload)
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name   string
		schema *OutputSchema
		raw    string
	}{
		{"router missing next_agent", RouterSchema, `{}`},
		{"router extra field", RouterSchema, `{"next_agent":"planner","confidence":1}`},
		{"router wrong type", RouterSchema, `{"next_agent":3}`},
		{"reviewer bool as string", ReviewerSchema, `{"feedback":"x","pass_review":"yes","comprehensive":true,"citations_provided":true,"relevant_to_research_question":true}`},
		{"selector missing field", SelectorSchema, `{"selected_page_url":"u","description":"d"}`},
		{"not json", PlannerSchema, `Sure! Here is my plan.`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.schema.Decode(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("  {\"a\":1}  "))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
}
