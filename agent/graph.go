package agent

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"go.uber.org/zap"
)

type GraphNodeFunc[S any] func(ctx context.Context, state S) (S, error)

type RouterFunc[N comparable, S any] func(ctx context.Context, state S) (N, error)

type EdgeConfig[N comparable, S any] struct {
	IsConditional bool
	IsFinish      bool
	ToNode        N
	RouterFunc    RouterFunc[N, S]
	Targets       map[N]struct{}
}

// Event is emitted after every executed node.
type Event[N comparable, S any] struct {
	Step  int
	Node  N
	State S
}

type Graph[N comparable, S any] struct {
	nodes      map[N]GraphNodeFunc[S]
	edges      map[N]EdgeConfig[N, S]
	entryPoint N
	hasEntry   bool
	logger     *zap.Logger
}

func NewGraph[N comparable, S any](logger *zap.Logger) *Graph[N, S] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Graph[N, S]{
		nodes:  make(map[N]GraphNodeFunc[S]),
		edges:  make(map[N]EdgeConfig[N, S]),
		logger: logger,
	}
}

func (g *Graph[N, S]) AddNode(name N, nodeFunc GraphNodeFunc[S]) {
	g.nodes[name] = nodeFunc
}

func (g *Graph[N, S]) SetEntryPoint(name N) {
	g.entryPoint = name
	g.hasEntry = true
}

// SetFinishPoint ends the graph after name runs.
func (g *Graph[N, S]) SetFinishPoint(name N) {
	g.edges[name] = EdgeConfig[N, S]{IsFinish: true}
}

func (g *Graph[N, S]) AddEdge(fromNode, toNode N) {
	g.edges[fromNode] = EdgeConfig[N, S]{ToNode: toNode}
}

// AddConditionalEdges lets routerFunc pick the successor of fromNode among targets.
func (g *Graph[N, S]) AddConditionalEdges(fromNode N, routerFunc RouterFunc[N, S], targets ...N) {
	set := make(map[N]struct{}, len(targets))
	for _, t := range targets {
		set[t] = struct{}{}
	}
	g.edges[fromNode] = EdgeConfig[N, S]{
		IsConditional: true,
		RouterFunc:    routerFunc,
		Targets:       set,
	}
}

// Compile checks that the graph is fully wired.
func (g *Graph[N, S]) Compile() (*Graph[N, S], error) {
	var errs []error
	if !g.hasEntry {
		errs = append(errs, errors.New("graph has no entry point"))
	} else if _, ok := g.nodes[g.entryPoint]; !ok {
		errs = append(errs, fmt.Errorf("entry point node '%v' not found", g.entryPoint))
	}
	for name := range g.nodes {
		edge, ok := g.edges[name]
		if !ok {
			errs = append(errs, fmt.Errorf("node '%v' has no outgoing edge", name))
			continue
		}
		if !edge.IsConditional && !edge.IsFinish {
			if _, ok := g.nodes[edge.ToNode]; !ok {
				errs = append(errs, fmt.Errorf("edge from '%v' targets unknown node '%v'", name, edge.ToNode))
			}
		}
		for target := range edge.Targets {
			if _, ok := g.nodes[target]; !ok {
				errs = append(errs, fmt.Errorf("conditional edge from '%v' targets unknown node '%v'", name, target))
			}
		}
	}
	for name := range g.edges {
		if _, ok := g.nodes[name]; !ok {
			errs = append(errs, fmt.Errorf("edge from unknown node '%v'", name))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return g, nil
}

// Stream executes the graph from its entry point, yielding one event per
// executed node. At most maxSteps nodes run; when the ceiling is reached
// before a finish point the stream ends without an error. Node, routing
// and context errors are yielded once and end the stream.
func (g *Graph[N, S]) Stream(ctx context.Context, initialState S, maxSteps int) iter.Seq2[Event[N, S], error] {
	return func(yield func(Event[N, S], error) bool) {
		currentState := initialState
		currentNode := g.entryPoint

		for step := 1; step <= maxSteps; step++ {
			if err := ctx.Err(); err != nil {
				yield(Event[N, S]{Step: step, Node: currentNode, State: currentState}, err)
				return
			}

			nodeFunc, ok := g.nodes[currentNode]
			if !ok {
				yield(Event[N, S]{Step: step, Node: currentNode, State: currentState},
					fmt.Errorf("node '%v' not found in graph definition", currentNode))
				return
			}

			g.logger.Debug("Executing node", zap.Any("node", currentNode), zap.Int("step", step))
			updatedState, err := nodeFunc(ctx, currentState)
			if err != nil {
				yield(Event[N, S]{Step: step, Node: currentNode, State: currentState},
					fmt.Errorf("error executing node '%v': %w", currentNode, err))
				return
			}
			currentState = updatedState

			if !yield(Event[N, S]{Step: step, Node: currentNode, State: currentState}, nil) {
				return
			}

			edge, ok := g.edges[currentNode]
			if !ok || edge.IsFinish {
				g.logger.Debug("Workflow reached END", zap.Any("node", currentNode), zap.Int("steps", step))
				return
			}

			nextNode := edge.ToNode
			if edge.IsConditional {
				decision, err := edge.RouterFunc(ctx, currentState)
				if err != nil {
					yield(Event[N, S]{Step: step, Node: currentNode, State: currentState},
						fmt.Errorf("error executing router function for node '%v': %w", currentNode, err))
					return
				}
				if _, ok := edge.Targets[decision]; !ok {
					yield(Event[N, S]{Step: step, Node: currentNode, State: currentState},
						fmt.Errorf("conditional edge from '%v' has no mapping for decision '%v'", currentNode, decision))
					return
				}
				nextNode = decision
			}
			g.logger.Debug("Transitioning", zap.Any("from", currentNode), zap.Any("to", nextNode))
			currentNode = nextNode
		}

		g.logger.Warn("Workflow reached max steps without reaching END",
			zap.Int("max_steps", maxSteps))
	}
}

// Execute runs the graph to completion and returns the final state.
func (g *Graph[N, S]) Execute(ctx context.Context, initialState S, maxSteps int) (S, error) {
	currentState := initialState
	for event, err := range g.Stream(ctx, initialState, maxSteps) {
		if err != nil {
			return event.State, err
		}
		currentState = event.State
	}
	return currentState, nil
}
