package graph

import (
	"fmt"
	"slices"
	"time"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/resource"
)

// State is the compilation state of a RenderGraph.
type State uint8

const (
	// StateEmpty means the graph has no passes and no compiled plan.
	StateEmpty State = iota
	// StateDirty means the graph has passes but no valid compiled plan.
	StateDirty
	// StateCompiled means the cached plan matches the current pass set.
	StateCompiled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateDirty:
		return "dirty"
	case StateCompiled:
		return "compiled"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

const defaultWaitTimeout = 5 * time.Second

// node is a pass plus the declarations captured when it was added.
type node struct {
	pass        Pass
	decls       []Declaration
	initialized bool
}

// RenderGraph holds a mutable set of passes and a cached execution plan.
// It is not safe for concurrent use.
type RenderGraph struct {
	nodes    map[PassID]*node
	order    []PassID // insertion order; the compile tie-break
	compiled *CompiledGraph

	waitTimeout time.Duration
	frame       uint64

	// pending holds submitted command buffers not yet known to be finished.
	pending []submission
}

// Option configures a RenderGraph.
type Option func(*RenderGraph)

// WithWaitTimeout sets how long Execute waits for the GPU to finish the
// submitted batch. Zero submits without waiting; the command buffer is then
// freed by a later Execute once the queue reports it complete.
func WithWaitTimeout(d time.Duration) Option {
	return func(g *RenderGraph) {
		if d >= 0 {
			g.waitTimeout = d
		}
	}
}

// New creates an empty graph.
func New(opts ...Option) *RenderGraph {
	g := &RenderGraph{
		nodes:       make(map[PassID]*node),
		waitTimeout: defaultWaitTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddPass adds p, replacing any pass with the same id. A replacement keeps
// the original insertion position. The compiled plan is invalidated.
func (g *RenderGraph) AddPass(p Pass) {
	id := p.ID()
	n := &node{pass: p, decls: slices.Clone(p.Resources())}
	if _, exists := g.nodes[id]; !exists {
		g.order = append(g.order, id)
	}
	g.nodes[id] = n
	g.invalidate()
}

// RemovePass removes the pass with the given id and reports whether it was
// present. The compiled plan is invalidated only when a pass was removed.
func (g *RenderGraph) RemovePass(id PassID) bool {
	if _, ok := g.nodes[id]; !ok {
		return false
	}
	delete(g.nodes, id)
	g.order = slices.DeleteFunc(g.order, func(other PassID) bool { return other == id })
	g.invalidate()
	return true
}

// Clear removes every pass.
func (g *RenderGraph) Clear() {
	g.nodes = make(map[PassID]*node)
	g.order = nil
	g.invalidate()
}

func (g *RenderGraph) invalidate() {
	if g.compiled != nil {
		framegraph.Logger().Debug("render graph: plan invalidated")
	}
	g.compiled = nil
}

// Pass returns the pass with the given id.
func (g *RenderGraph) Pass(id PassID) (Pass, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPassNotFound, id)
	}
	return n.pass, nil
}

// Passes returns the pass ids in insertion order.
func (g *RenderGraph) Passes() []PassID { return slices.Clone(g.order) }

// PassCount returns the number of passes.
func (g *RenderGraph) PassCount() int { return len(g.order) }

// IsCompiled reports whether the cached plan matches the current passes.
func (g *RenderGraph) IsCompiled() bool { return g.compiled != nil }

// State returns the compilation state.
func (g *RenderGraph) State() State {
	switch {
	case g.compiled != nil:
		return StateCompiled
	case len(g.order) == 0:
		return StateEmpty
	default:
		return StateDirty
	}
}

// Compiled returns the cached plan, or nil if the graph is not compiled.
func (g *RenderGraph) Compiled() *CompiledGraph { return g.compiled }

// ExecutionOrder returns the compiled pass order, or nil if the graph is not
// compiled.
func (g *RenderGraph) ExecutionOrder() []PassID {
	if g.compiled == nil {
		return nil
	}
	return g.compiled.Order()
}

// InitializePasses calls Initialize on every pass that implements
// Initializer and has not been initialized through this graph yet. It stops
// at the first error; passes that succeeded stay initialized.
func (g *RenderGraph) InitializePasses(device resource.Device, resources *resource.Manager) error {
	for _, id := range g.order {
		n := g.nodes[id]
		if n.initialized {
			continue
		}
		if in, ok := n.pass.(Initializer); ok {
			if err := in.Initialize(device, resources); err != nil {
				return fmt.Errorf("render graph: initialize pass %s: %w", id, err)
			}
			framegraph.Logger().Debug("render graph: pass initialized", "pass", string(id))
		}
		n.initialized = true
	}
	return nil
}
