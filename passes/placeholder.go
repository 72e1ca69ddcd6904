package passes

import (
	"slices"

	"github.com/gogpu/framegraph/graph"
	"github.com/gogpu/framegraph/resource"
)

// PlaceholderPass declares resources but records nothing. It stands in for
// passes that are planned but not written yet, and lets a frame plan be
// inspected without GPU work.
type PlaceholderPass struct {
	id    graph.PassID
	decls []graph.Declaration
	runs  int
}

// NewPlaceholderPass returns a pass with the given id and declarations.
func NewPlaceholderPass(id graph.PassID, decls ...graph.Declaration) *PlaceholderPass {
	return &PlaceholderPass{id: id, decls: slices.Clone(decls)}
}

// ID returns the pass id.
func (p *PlaceholderPass) ID() graph.PassID { return p.id }

// Resources returns a copy of the declarations given to NewPlaceholderPass.
func (p *PlaceholderPass) Resources() []graph.Declaration { return slices.Clone(p.decls) }

// Execute records nothing and counts the run.
func (p *PlaceholderPass) Execute(*graph.RecordContext, *resource.Manager) error {
	p.runs++
	return nil
}

// Runs returns how many frames the pass has executed in.
func (p *PlaceholderPass) Runs() int { return p.runs }
