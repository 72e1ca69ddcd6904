package passes

import (
	"github.com/gogpu/framegraph/graph"
	"github.com/gogpu/framegraph/pipeline"
	"github.com/gogpu/gputypes"
)

// Well-known slot and published-resource names shared by the passes and the
// renderer.
const (
	BackBuffer  graph.ResourceID = "BackBuffer"
	DepthBuffer graph.ResourceID = "DepthBuffer"

	BackBufferView  = "BackBufferView"
	DepthBufferView = "DepthBufferView"
)

// options is shared by every pass constructor; each pass reads the fields
// it needs.
type options struct {
	id            graph.PassID
	clearColor    gputypes.Color
	surfaceFormat gputypes.TextureFormat
	depthFormat   gputypes.TextureFormat
	width, height uint32
	depth         bool
	culling       bool
	sampleCount   uint32
	meshes        MeshSource
	shaders       *pipeline.ShaderRegistry
}

func defaultOptions(id graph.PassID) options {
	return options{
		id:            id,
		clearColor:    gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		surfaceFormat: gputypes.TextureFormatBGRA8Unorm,
		depthFormat:   gputypes.TextureFormatDepth24PlusStencil8,
		width:         800,
		height:        600,
		depth:         true,
		culling:       true,
		sampleCount:   1,
	}
}

// Option configures a pass.
type Option func(*options)

// WithID overrides the pass id.
func WithID(id graph.PassID) Option {
	return func(o *options) { o.id = id }
}

// WithClearColor sets the colour the target is cleared to.
func WithClearColor(c gputypes.Color) Option {
	return func(o *options) { o.clearColor = c }
}

// WithSurfaceFormat sets the colour target format pipelines are built for.
func WithSurfaceFormat(f gputypes.TextureFormat) Option {
	return func(o *options) { o.surfaceFormat = f }
}

// WithDepthFormat sets the depth target format pipelines are built for.
func WithDepthFormat(f gputypes.TextureFormat) Option {
	return func(o *options) { o.depthFormat = f }
}

// WithResolution sets the viewport size.
func WithResolution(width, height uint32) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.width, o.height = width, height
		}
	}
}

// WithDepth enables or disables depth testing against DepthBufferView.
func WithDepth(enabled bool) Option {
	return func(o *options) { o.depth = enabled }
}

// WithCulling enables or disables back-face culling.
func WithCulling(enabled bool) Option {
	return func(o *options) { o.culling = enabled }
}

// WithSampleCount sets the pipeline sample count.
func WithSampleCount(n uint32) Option {
	return func(o *options) { o.sampleCount = n }
}

// WithMeshes supplies the geometry a forward pass draws.
func WithMeshes(src MeshSource) Option {
	return func(o *options) { o.meshes = src }
}

// WithShaderRegistry shares a shader registry between passes.
func WithShaderRegistry(r *pipeline.ShaderRegistry) Option {
	return func(o *options) { o.shaders = r }
}
