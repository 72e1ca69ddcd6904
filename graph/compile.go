package graph

import (
	"slices"

	"github.com/gogpu/framegraph"
)

// CompiledGraph is an immutable execution plan for one pass set.
type CompiledGraph struct {
	order     []PassID
	position  map[PassID]int
	writers   map[ResourceID][]PassID
	readers   map[ResourceID][]PassID
	resources []ResourceID // first-declared order
	decls     map[PassID][]Declaration
}

// Order returns the pass execution order.
func (c *CompiledGraph) Order() []PassID { return slices.Clone(c.order) }

// Len returns the number of scheduled passes.
func (c *CompiledGraph) Len() int { return len(c.order) }

// Position returns the step at which pass id runs.
func (c *CompiledGraph) Position(id PassID) (int, bool) {
	i, ok := c.position[id]
	return i, ok
}

// Writers returns the passes that write r, in insertion order.
func (c *CompiledGraph) Writers(r ResourceID) []PassID { return slices.Clone(c.writers[r]) }

// Readers returns the passes that read r, in insertion order.
func (c *CompiledGraph) Readers(r ResourceID) []PassID { return slices.Clone(c.readers[r]) }

// Resources returns every declared resource slot in first-declared order.
func (c *CompiledGraph) Resources() []ResourceID { return slices.Clone(c.resources) }

// Compile derives an execution order from the passes' declarations and
// caches it. Every pass that writes a slot runs before every other pass that
// reads it. Passes with no relative dependency keep their insertion order.
//
// If the declarations form a cycle Compile returns a *CycleError and the
// graph stays dirty. Two passes that both declare ReadWrite on one slot
// depend on each other and therefore form a cycle.
func (g *RenderGraph) Compile() (*CompiledGraph, error) {
	n := len(g.order)
	index := make(map[PassID]int, n)
	for i, id := range g.order {
		index[id] = i
	}

	writers := make(map[ResourceID][]int)
	readers := make(map[ResourceID][]int)
	var resources []ResourceID
	for i, id := range g.order {
		for _, d := range g.nodes[id].decls {
			if _, seen := writers[d.Resource]; !seen {
				if _, seen := readers[d.Resource]; !seen {
					resources = append(resources, d.Resource)
				}
			}
			if d.Usage.Writes() {
				writers[d.Resource] = appendUnique(writers[d.Resource], i)
			}
			if d.Usage.Reads() {
				readers[d.Resource] = appendUnique(readers[d.Resource], i)
			}
		}
	}

	// Writer -> reader edges, de-duplicated across resources.
	successors := make([][]int, n)
	inDegree := make([]int, n)
	edges := make(map[[2]int]struct{})
	for _, r := range resources {
		for _, w := range writers[r] {
			for _, rd := range readers[r] {
				if w == rd {
					continue
				}
				e := [2]int{w, rd}
				if _, dup := edges[e]; dup {
					continue
				}
				edges[e] = struct{}{}
				successors[w] = append(successors[w], rd)
				inDegree[rd]++
			}
		}
	}

	// Kahn's algorithm. The ready set is kept sorted by insertion index so
	// independent passes run in the order they were added.
	ready := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if inDegree[i] == 0 {
			ready = append(ready, i)
		}
	}
	sorted := make([]int, 0, n)
	for len(ready) > 0 {
		cur := ready[0]
		ready = ready[1:]
		sorted = append(sorted, cur)
		for _, next := range successors[cur] {
			inDegree[next]--
			if inDegree[next] == 0 {
				pos, _ := slices.BinarySearch(ready, next)
				ready = slices.Insert(ready, pos, next)
			}
		}
	}

	if len(sorted) < n {
		var unresolved []PassID
		for i, id := range g.order {
			if inDegree[i] > 0 {
				unresolved = append(unresolved, id)
			}
		}
		framegraph.Logger().Debug("render graph: cycle detected", "unresolved", len(unresolved))
		return nil, &CycleError{Unresolved: unresolved}
	}

	c := &CompiledGraph{
		order:     make([]PassID, n),
		position:  make(map[PassID]int, n),
		writers:   make(map[ResourceID][]PassID, len(writers)),
		readers:   make(map[ResourceID][]PassID, len(readers)),
		resources: resources,
		decls:     make(map[PassID][]Declaration, n),
	}
	for step, i := range sorted {
		id := g.order[i]
		c.order[step] = id
		c.position[id] = step
		c.decls[id] = g.nodes[id].decls
	}
	for r, ws := range writers {
		c.writers[r] = g.ids(ws)
	}
	for r, rs := range readers {
		c.readers[r] = g.ids(rs)
	}

	g.compiled = c
	framegraph.Logger().Debug("render graph: compiled",
		"passes", n, "resources", len(resources), "edges", len(edges))
	return c, nil
}

func (g *RenderGraph) ids(indices []int) []PassID {
	out := make([]PassID, len(indices))
	for i, idx := range indices {
		out[i] = g.order[idx]
	}
	return out
}

// appendUnique appends v unless it is already the last element. Indices are
// visited in increasing order, so this is enough to keep s free of repeats.
func appendUnique(s []int, v int) []int {
	if len(s) > 0 && s[len(s)-1] == v {
		return s
	}
	return append(s, v)
}
