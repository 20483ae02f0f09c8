package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zaynkorai/research-agents-gograph/metrics"
)

// Searcher is the web search tool. It never fails: problems are reported
// inline in the returned text.
type Searcher interface {
	Search(ctx context.Context, query string) string
}

// Agent is a model-backed role. Every variant follows the same contract:
// resolve inputs from state, render the prompt, call the model, wrap the
// output, and append it under the role's key.
type Agent struct {
	role   Role
	prompt *Prompt
	schema *OutputSchema
	inputs map[string]Lookup
	// withState passes the rendered state as the "state" prompt field.
	withState bool

	model  ChatModel
	logger *zap.Logger
	now    func() time.Time
}

func newAgent(role Role, model ChatModel, logger *zap.Logger, prompt *Prompt, schema *OutputSchema, inputs map[string]Lookup) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		role:   role,
		prompt: prompt,
		schema: schema,
		inputs: inputs,
		model:  model,
		logger: logger,
		now:    time.Now,
	}
}

func NewPlannerAgent(model ChatModel, logger *zap.Logger) *Agent {
	return newAgent(RolePlanner, model, logger, PlannerInstructions, PlannerSchema, map[string]Lookup{
		"feedback": Latest(KeyReviewer),
	})
}

func NewSelectorAgent(model ChatModel, logger *zap.Logger) *Agent {
	return newAgent(RoleSelector, model, logger, SelectorInstructions, SelectorSchema, map[string]Lookup{
		"feedback":            Latest(KeyReviewer),
		"previous_selections": History(KeySelector),
		"serp":                Latest(KeySerper),
	})
}

func NewReporterAgent(model ChatModel, logger *zap.Logger) *Agent {
	return newAgent(RoleReporter, model, logger, ReporterInstructions, nil, map[string]Lookup{
		"feedback":         Latest(KeyReviewer),
		"previous_reports": History(KeyReporter),
		"research":         Latest(KeySelector),
	})
}

func NewReviewerAgent(model ChatModel, logger *zap.Logger) *Agent {
	a := newAgent(RoleReviewer, model, logger, ReviewerInstructions, ReviewerSchema, map[string]Lookup{
		"feedback": History(KeyReviewer),
		"reporter": Latest(KeyReporter),
	})
	a.withState = true
	return a
}

func NewRouterAgent(model ChatModel, logger *zap.Logger) *Agent {
	return newAgent(RoleRouter, model, logger, RouterInstructions, RouterSchema, map[string]Lookup{
		"feedback": History(KeyReviewer),
	})
}

// WithPrompt returns a copy of a that renders p instead of its default prompt.
func (a *Agent) WithPrompt(p *Prompt) *Agent {
	cp := *a
	cp.prompt = p
	return &cp
}

func (a *Agent) Role() Role { return a.role }

// Fields resolves the prompt fields against state.
func (a *Agent) Fields(state State) map[string]any {
	fields := make(map[string]any, len(a.inputs)+2)
	for name, lookup := range a.inputs {
		fields[name] = lookup.Resolve(state)
	}
	if a.withState {
		fields["state"] = state.String()
	}
	fields["datetime"] = GetCurrentDate(a.now())
	return fields
}

// Invoke runs the agent once and returns the state with its response appended.
func (a *Agent) Invoke(ctx context.Context, state State, researchQuestion string) (_ State, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordAgentInvocation(a.role.String(), time.Since(start).Seconds(), err)
	}()

	prompt, err := a.prompt.Format(a.Fields(state))
	if err != nil {
		return state, err
	}
	messages := []ChatMessage{
		SystemMessage(prompt),
		UserMessage("research question: " + researchQuestion),
	}

	raw, err := a.model.Invoke(ctx, messages, a.schema)
	if err != nil {
		return state, &TransportError{Role: a.role, Err: err}
	}

	response := AIMessage{Role: a.role, Content: raw}
	if a.schema != nil {
		content, payload, err := a.schema.Decode(raw)
		if err != nil {
			return state, &SchemaValidationError{Role: a.role, Err: err}
		}
		response.Content = content
		response.Payload = payload
	}

	next := state.Append(a.role.Key(), response)
	a.logger.Info("Agent responded",
		zap.Stringer("role", a.role),
		zap.String("state_key", string(a.role.Key())),
		zap.Int("history_len", next.Len(a.role.Key())),
		zap.Duration("duration", time.Since(start)),
	)
	return next, nil
}

// SearchNode runs the search tool with the latest planner search term and
// stores the textual results under serper_response.
func SearchNode(searcher Searcher, logger *zap.Logger) func(ctx context.Context, state State) (State, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, state State) (State, error) {
		msg, ok := state.Latest(KeyPlanner)
		if !ok {
			return state, fmt.Errorf("search: no planner response in state")
		}
		term := searchTerm(msg)
		logger.Info("Searching", zap.String("search_term", term))
		results := searcher.Search(ctx, term)
		return state.Append(KeySerper, ToolMessage{Name: RoleSerper.String(), Content: results}), nil
	}
}

func searchTerm(msg Message) string {
	if ai, ok := msg.(AIMessage); ok {
		switch p := ai.Payload.(type) {
		case PlannerResponse:
			return p.SearchTerm
		case *PlannerResponse:
			return p.SearchTerm
		}
	}
	if _, payload, err := PlannerSchema.Decode(ContentOf(msg)); err == nil {
		return payload.(PlannerResponse).SearchTerm
	}
	return ""
}

// FinalReportNode copies the latest Reporter draft into final_reports.
func FinalReportNode(ctx context.Context, state State) (State, error) {
	msg, ok := state.Latest(KeyReporter)
	if !ok {
		return state, ErrNoReport
	}
	return state.Append(KeyFinalReports, AIMessage{Role: RoleFinalReport, Content: msg.GetContent()}), nil
}

// EndNode marks the end of the chain.
func EndNode(ctx context.Context, state State) (State, error) {
	return state.Append(KeyEndChain, AIMessage{Role: RoleEndNode, Content: string(KeyEndChain)}), nil
}
