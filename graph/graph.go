// Package graph implements the orchestration state machine that drives a
// workflow run: named agent nodes connected by unconditional edges and by
// conditional edges whose branch targets are declared up front. The whole
// control flow is validated at Compile time so a workflow's topology can be
// inspected and tested without ever calling a language model.
//
// Execution is a synchronous walk: one node at a time, the shared state
// passed as an explicit mutable reference for exactly the duration of each
// node call. Cyclic sub-graphs (retry loops, per-entity loops) terminate only
// through predicates over the state, so every loop's exit condition lives in
// the state itself.
package graph

import (
	"context"
	"fmt"

	"github.com/playbook-agents/playbook/logging"
)

// END is the terminal marker. Routing to END stops the run.
const END = "__end__"

// NodeFunc executes one agent step against the shared state. The state is
// mutated in place; an error aborts the run.
type NodeFunc[S any] func(ctx context.Context, state S) error

// Predicate inspects the state after a node ran and returns a branch label.
type Predicate[S any] func(state S) string

type conditional[S any] struct {
	predicate Predicate[S]
	targets   map[string]string // branch label -> node name or END
}

// Builder accumulates nodes and edges before compilation.
type Builder[S any] struct {
	nodes        map[string]NodeFunc[S]
	edges        map[string]string
	conditionals map[string]conditional[S]
	entry        string
	errs         []error
}

// NewBuilder creates an empty graph builder.
func NewBuilder[S any]() *Builder[S] {
	return &Builder[S]{
		nodes:        map[string]NodeFunc[S]{},
		edges:        map[string]string{},
		conditionals: map[string]conditional[S]{},
	}
}

// AddNode registers a named node. Registration problems are collected and
// reported by Compile.
func (b *Builder[S]) AddNode(name string, fn NodeFunc[S]) *Builder[S] {
	switch {
	case name == "" || name == END:
		b.errs = append(b.errs, fmt.Errorf("graph: invalid node name %q", name))
	case fn == nil:
		b.errs = append(b.errs, fmt.Errorf("graph: node %s has no function", name))
	default:
		if _, exists := b.nodes[name]; exists {
			b.errs = append(b.errs, fmt.Errorf("graph: node %s already added", name))
			return b
		}
		b.nodes[name] = fn
	}
	return b
}

// AddEdge adds an unconditional edge: after from completes, to runs next.
func (b *Builder[S]) AddEdge(from, to string) *Builder[S] {
	if _, exists := b.edges[from]; exists {
		b.errs = append(b.errs, fmt.Errorf("graph: node %s already has an outgoing edge", from))
		return b
	}
	b.edges[from] = to
	return b
}

// AddConditionalEdges routes from a node through a predicate. The predicate
// must return one of the branch labels in targets; each target is a node name
// or END. Declaring the full branch map here keeps the topology closed and
// statically checkable.
func (b *Builder[S]) AddConditionalEdges(from string, predicate Predicate[S], targets map[string]string) *Builder[S] {
	if predicate == nil || len(targets) == 0 {
		b.errs = append(b.errs, fmt.Errorf("graph: conditional edge from %s needs a predicate and targets", from))
		return b
	}
	if _, exists := b.conditionals[from]; exists {
		b.errs = append(b.errs, fmt.Errorf("graph: node %s already has a conditional edge", from))
		return b
	}
	b.conditionals[from] = conditional[S]{predicate: predicate, targets: targets}
	return b
}

// SetEntryPoint designates the node where Run starts.
func (b *Builder[S]) SetEntryPoint(name string) *Builder[S] {
	b.entry = name
	return b
}

// Compile validates the topology and returns an executable graph: the entry
// point and all edge/branch targets must reference registered nodes (or END),
// every node needs exactly one way out, and no node may carry both an
// unconditional and a conditional edge.
func (b *Builder[S]) Compile() (*Graph[S], error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	if b.entry == "" {
		return nil, fmt.Errorf("graph: no entry point set")
	}
	if _, ok := b.nodes[b.entry]; !ok {
		return nil, fmt.Errorf("graph: entry point %s is not a registered node", b.entry)
	}
	for from, to := range b.edges {
		if _, ok := b.nodes[from]; !ok {
			return nil, fmt.Errorf("graph: edge from unknown node %s", from)
		}
		if _, ok := b.conditionals[from]; ok {
			return nil, fmt.Errorf("graph: node %s has both an edge and a conditional edge", from)
		}
		if to != END {
			if _, ok := b.nodes[to]; !ok {
				return nil, fmt.Errorf("graph: edge %s -> %s targets unknown node", from, to)
			}
		}
	}
	for from, cond := range b.conditionals {
		if _, ok := b.nodes[from]; !ok {
			return nil, fmt.Errorf("graph: conditional edge from unknown node %s", from)
		}
		for label, target := range cond.targets {
			if target != END {
				if _, ok := b.nodes[target]; !ok {
					return nil, fmt.Errorf("graph: branch %q of %s targets unknown node %s", label, from, target)
				}
			}
		}
	}
	for name := range b.nodes {
		_, hasEdge := b.edges[name]
		_, hasCond := b.conditionals[name]
		if !hasEdge && !hasCond {
			return nil, fmt.Errorf("graph: node %s has no outgoing edge", name)
		}
	}
	return &Graph[S]{
		nodes:        b.nodes,
		edges:        b.edges,
		conditionals: b.conditionals,
		entry:        b.entry,
		logger:       logging.NoOpLogger{},
	}, nil
}

// Graph is a compiled, immutable workflow topology.
type Graph[S any] struct {
	nodes        map[string]NodeFunc[S]
	edges        map[string]string
	conditionals map[string]conditional[S]
	entry        string
	logger       logging.Logger
}

// WithLogger returns the graph configured with a structured logger.
func (g *Graph[S]) WithLogger(l logging.Logger) *Graph[S] {
	if l != nil {
		g.logger = l
	}
	return g
}

// Run walks the graph from the entry node until END, threading the state
// through each node. Exactly one node executes at any instant; the state is
// never aliased beyond the current call. Node errors and undeclared branch
// labels abort the run.
func (g *Graph[S]) Run(ctx context.Context, state S) error {
	current := g.entry
	steps := 0
	for current != END {
		if err := ctx.Err(); err != nil {
			return err
		}
		steps++
		g.logger.Debug("graph.step", "node", current, "step", steps)

		fn := g.nodes[current]
		if err := fn(ctx, state); err != nil {
			return fmt.Errorf("graph: node %s failed: %w", current, err)
		}

		next, err := g.next(current, state)
		if err != nil {
			return err
		}
		current = next
	}
	g.logger.Info("graph.run.complete", "steps", steps)
	return nil
}

func (g *Graph[S]) next(current string, state S) (string, error) {
	if to, ok := g.edges[current]; ok {
		return to, nil
	}
	cond := g.conditionals[current]
	label := cond.predicate(state)
	target, ok := cond.targets[label]
	if !ok {
		return "", fmt.Errorf("graph: node %s routed to undeclared branch %q", current, label)
	}
	g.logger.Debug("graph.branch", "node", current, "branch", label, "target", target)
	return target, nil
}
