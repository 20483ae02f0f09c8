package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zaynkorai/research-agents-gograph/metrics"
)

// NotTerminatedMessage is the answer text of a run that never reached the final report.
const NotTerminatedMessage = "Workflow did not reach final report"

type Outcome int

const (
	OutcomeFinalReport Outcome = iota
	OutcomeDidNotTerminate
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFinalReport:
		return "final_report"
	case OutcomeDidNotTerminate:
		return "did_not_terminate"
	default:
		return "unknown"
	}
}

// Result is the outcome of one research run.
type Result struct {
	RunID   string
	Outcome Outcome
	Answer  string
	Steps   int
}

// Text returns the answer, or NotTerminatedMessage when the run did not
// reach the final report.
func (r Result) Text() string {
	if r.Outcome == OutcomeDidNotTerminate {
		return NotTerminatedMessage
	}
	return r.Answer
}

type Workflow struct {
	Graph  *Graph[Role, State]
	config RunConfig
	logger *zap.Logger
	// OnEvent, when set, observes every graph event before the coordinator does.
	OnEvent func(runID string, event Event[Role, State])
}

// Agents groups the model-backed roles of a workflow.
type Agents struct {
	Planner  *Agent
	Selector *Agent
	Reporter *Agent
	Reviewer *Agent
	Router   *Agent
}

func NewAgents(model ChatModel, logger *zap.Logger) Agents {
	return Agents{
		Planner:  NewPlannerAgent(model, logger),
		Selector: NewSelectorAgent(model, logger),
		Reporter: NewReporterAgent(model, logger),
		Reviewer: NewReviewerAgent(model, logger),
		Router:   NewRouterAgent(model, logger),
	}
}

func NewWorkflow(config RunConfig, agents Agents, searcher Searcher, logger *zap.Logger) (*Workflow, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	builder := NewGraph[Role, State](logger)

	builder.AddNode(RolePlanner, agentNode(agents.Planner))
	builder.AddNode(RoleSelector, agentNode(agents.Selector))
	builder.AddNode(RoleSerper, SearchNode(searcher, logger))
	builder.AddNode(RoleReporter, agentNode(agents.Reporter))
	builder.AddNode(RoleReviewer, agentNode(agents.Reviewer))
	builder.AddNode(RoleRouter, agentNode(agents.Router))
	builder.AddNode(RoleFinalReport, FinalReportNode)
	builder.AddNode(RoleEndNode, EndNode)

	builder.SetEntryPoint(RolePlanner)

	builder.AddEdge(RolePlanner, RoleSerper)
	builder.AddEdge(RoleSerper, RoleSelector)
	builder.AddEdge(RoleSelector, RoleReporter)
	builder.AddEdge(RoleReporter, RoleReviewer)
	builder.AddEdge(RoleReviewer, RoleRouter)
	builder.AddConditionalEdges(RoleRouter, routeNext, RouterTargets...)
	builder.AddEdge(RoleFinalReport, RoleEndNode)
	builder.SetFinishPoint(RoleEndNode)

	compiledGraph, err := builder.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile research graph: %w", err)
	}

	return &Workflow{
		Graph:  compiledGraph,
		config: config,
		logger: logger,
	}, nil
}

func agentNode(a *Agent) GraphNodeFunc[State] {
	return func(ctx context.Context, state State) (State, error) {
		return a.Invoke(ctx, state, state.ResearchQuestion())
	}
}

func routeNext(ctx context.Context, state State) (Role, error) {
	return NextAgent(state)
}

// NextAgent reads the most recent router decision in state.
func NextAgent(state State) (Role, error) {
	msg, ok := state.Latest(KeyRouter)
	if !ok {
		return 0, &RoutingError{Value: ""}
	}
	name, err := routerDecision(msg)
	if err != nil {
		return 0, err
	}
	return ParseRouterTarget(name)
}

// routerDecision extracts next_agent from a router entry whose payload may
// be a RouterResponse, a map, or only the raw JSON text.
func routerDecision(msg Message) (string, error) {
	if ai, ok := msg.(AIMessage); ok {
		switch p := ai.Payload.(type) {
		case RouterResponse:
			return p.NextAgent, nil
		case *RouterResponse:
			if p != nil {
				return p.NextAgent, nil
			}
		case map[string]any:
			return nextAgentValue(p["next_agent"])
		}
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(ContentOf(msg))), &parsed); err != nil {
		return "", &SchemaValidationError{Role: RoleRouter, Err: err}
	}
	return nextAgentValue(parsed["next_agent"])
}

func nextAgentValue(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []any:
		if len(x) > 0 {
			return nextAgentValue(x[len(x)-1])
		}
	case []string:
		if len(x) > 0 {
			return x[len(x)-1], nil
		}
	}
	return "", &SchemaValidationError{Role: RoleRouter, Err: fmt.Errorf("next_agent missing or not a string: %v", v)}
}

// Run answers researchQuestion. It returns as soon as the Router hands off
// to the final report, with the latest Reporter draft as the answer.
func (w *Workflow) Run(ctx context.Context, researchQuestion string) (Result, error) {
	result := Result{RunID: uuid.NewString(), Outcome: OutcomeDidNotTerminate}
	logger := w.logger.With(zap.String("run_id", result.RunID))
	start := time.Now()
	logger.Info("Starting research run",
		zap.String("research_question", researchQuestion),
		zap.Int("recursion_limit", w.config.RecursionLimit),
	)

	for event, err := range w.Graph.Stream(ctx, NewState(researchQuestion), w.config.RecursionLimit) {
		if err != nil {
			metrics.RecordRun("error", result.Steps)
			logger.Error("Research run failed", zap.Error(err), zap.Int("steps", result.Steps))
			return result, err
		}
		result.Steps = event.Step
		if w.OnEvent != nil {
			w.OnEvent(result.RunID, event)
		}
		if event.Node != RoleRouter {
			continue
		}

		next, err := NextAgent(event.State)
		if err != nil {
			metrics.RecordRun("error", result.Steps)
			return result, err
		}
		metrics.RoutingDecisions.WithLabelValues(next.String()).Inc()
		logger.Info("Router decided", zap.Stringer("next_agent", next), zap.Int("step", event.Step))
		if next != RoleFinalReport {
			continue
		}

		report, ok := event.State.Latest(KeyReporter)
		if !ok {
			metrics.RecordRun("error", result.Steps)
			return result, ErrNoReport
		}
		result.Outcome = OutcomeFinalReport
		result.Answer = report.GetContent()
		metrics.RecordRun(result.Outcome.String(), result.Steps)
		logger.Info("Research run finished", zap.Int("steps", result.Steps), zap.Duration("duration", time.Since(start)))
		return result, nil
	}

	metrics.RecordRun(result.Outcome.String(), result.Steps)
	logger.Warn(NotTerminatedMessage, zap.Int("steps", result.Steps))
	return result, nil
}

// ErrorIsHard reports whether err belongs to the hard error taxonomy.
func ErrorIsHard(err error) bool {
	var schemaErr *SchemaValidationError
	var transportErr *TransportError
	var routingErr *RoutingError
	return errors.As(err, &schemaErr) || errors.As(err, &transportErr) || errors.As(err, &routingErr)
}
