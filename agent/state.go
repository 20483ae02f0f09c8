package agent

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Key names one response channel of the shared state.
type Key string

const (
	KeyResearchQuestion Key = "research_question"
	KeyPlanner          Key = "planner_response"
	KeySelector         Key = "selector_response"
	KeySerper           Key = "serper_response"
	KeyReporter         Key = "reporter_response"
	KeyReviewer         Key = "reviewer_response"
	KeyRouter           Key = "router_response"
	KeyFinalReports     Key = "final_reports"
	KeyEndChain         Key = "end_chain"
)

type Message interface {
	GetContent() string
	Type() string
}

type HumanMessage struct {
	Content string
}

func (m HumanMessage) GetContent() string {
	return m.Content
}

func (m HumanMessage) Type() string {
	return "human"
}

// AIMessage is one agent response. Payload holds the decoded structured
// output for schema-bound roles and is nil for free-text roles.
type AIMessage struct {
	Role    Role
	Content string
	Payload any
}

func (m AIMessage) GetContent() string {
	return m.Content
}

func (m AIMessage) Type() string {
	return "ai"
}

// ToolMessage carries the textual output of a tool call.
type ToolMessage struct {
	Name    string
	Content string
}

func (m ToolMessage) GetContent() string {
	return m.Content
}

func (m ToolMessage) Type() string {
	return "tool"
}

// State is the append-only history threaded through the agents. A State
// value is never modified after construction: Append returns a new value
// that shares no mutable storage with the receiver.
type State struct {
	channels map[Key][]Message
}

// NewState returns a fresh state seeded with the research question.
func NewState(researchQuestion string) State {
	return State{channels: map[Key][]Message{
		KeyResearchQuestion: {HumanMessage{Content: researchQuestion}},
	}}
}

// StateFrom builds a state from loosely typed seed values. Scalars (strings
// and single messages) are wrapped into one-element histories so every key
// holds a sequence from the start.
func StateFrom(seed map[Key]any) (State, error) {
	channels := make(map[Key][]Message, len(seed))
	for key, value := range seed {
		switch v := value.(type) {
		case nil:
			channels[key] = nil
		case string:
			channels[key] = []Message{HumanMessage{Content: v}}
		case Message:
			channels[key] = []Message{v}
		case []Message:
			channels[key] = slices.Clone(v)
		case []string:
			history := make([]Message, 0, len(v))
			for _, s := range v {
				history = append(history, HumanMessage{Content: s})
			}
			channels[key] = history
		default:
			return State{}, fmt.Errorf("state key %q: unsupported seed value of type %T", key, value)
		}
	}
	return State{channels: channels}, nil
}

// Get returns a copy of the full history stored under key, or an empty
// slice when the key was never written.
func (s State) Get(key Key) []Message {
	return slices.Clone(s.channels[key])
}

// Latest returns the most recent entry under key.
func (s State) Latest(key Key) (Message, bool) {
	history := s.channels[key]
	if len(history) == 0 {
		return nil, false
	}
	return history[len(history)-1], true
}

// Len reports the history length of key.
func (s State) Len(key Key) int {
	return len(s.channels[key])
}

// Append returns a new state whose history for key ends with value.
func (s State) Append(key Key, value Message) State {
	channels := maps.Clone(s.channels)
	if channels == nil {
		channels = make(map[Key][]Message, 1)
	}
	prev := s.channels[key]
	history := make([]Message, len(prev), len(prev)+1)
	copy(history, prev)
	channels[key] = append(history, value)
	return State{channels: channels}
}

// Keys returns the written keys in lexical order.
func (s State) Keys() []Key {
	return slices.Sorted(maps.Keys(s.channels))
}

// ResearchQuestion returns the seed question, or "" if the state was not
// seeded with one.
func (s State) ResearchQuestion() string {
	msg, ok := s.Latest(KeyResearchQuestion)
	if !ok {
		return ""
	}
	return msg.GetContent()
}

func (s State) String() string {
	var b strings.Builder
	for _, key := range s.Keys() {
		fmt.Fprintf(&b, "%s:\n", key)
		for i, msg := range s.channels[key] {
			fmt.Fprintf(&b, "  [%d] %s\n", i, ContentOf(msg))
		}
	}
	return b.String()
}

type PlannerResponse struct {
	SearchTerm            string `json:"search_term"`
	OverallStrategy       string `json:"overall_strategy"`
	AdditionalInformation string `json:"additional_information"`
}

type SelectorResponse struct {
	SelectedPageURL    string `json:"selected_page_url"`
	Description        string `json:"description"`
	ReasonForSelection string `json:"reason_for_selection"`
}

type ReviewerResponse struct {
	Feedback                   string `json:"feedback"`
	PassReview                 bool   `json:"pass_review"`
	Comprehensive              bool   `json:"comprehensive"`
	CitationsProvided          bool   `json:"citations_provided"`
	RelevantToResearchQuestion bool   `json:"relevant_to_research_question"`
}

type RouterResponse struct {
	NextAgent string `json:"next_agent"`
}
