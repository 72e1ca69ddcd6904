package passes

import (
	"github.com/gogpu/framegraph/graph"
	"github.com/gogpu/framegraph/resource"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ClearPass clears the back buffer to a solid colour.
type ClearPass struct {
	opts options
}

// NewClearPass returns a pass with id "ClearPass" that writes BackBuffer.
func NewClearPass(opts ...Option) *ClearPass {
	o := defaultOptions("ClearPass")
	for _, opt := range opts {
		opt(&o)
	}
	return &ClearPass{opts: o}
}

// ID returns the pass id.
func (p *ClearPass) ID() graph.PassID { return p.opts.id }

// Resources declares a write of BackBuffer.
func (p *ClearPass) Resources() []graph.Declaration {
	return []graph.Declaration{graph.Writes(BackBuffer)}
}

// ClearColor returns the colour the pass clears to.
func (p *ClearPass) ClearColor() gputypes.Color { return p.opts.clearColor }

// Execute records a render pass that clears the back buffer view.
func (p *ClearPass) Execute(rc *graph.RecordContext, rm *resource.Manager) error {
	view, err := resource.NamedObject[hal.TextureView](rm, BackBufferView)
	if err != nil {
		return graph.MissingResource(BackBufferView, err)
	}
	rp := rc.Encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "clear_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: p.opts.clearColor,
		}},
	})
	rp.End()
	return nil
}
