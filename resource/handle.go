package resource

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// ID identifies one manager table entry. Zero is never issued.
type ID uint64

// Kind is the stored object kind of a table entry.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindBuffer
	KindTexture
	KindTextureView
	KindBindGroup
	KindBindGroupLayout
	KindPipelineLayout
	KindRenderPipeline
	KindComputePipeline
	KindShaderModule
	KindSampler
)

var kindNames = [...]string{
	KindUnknown:         "unknown",
	KindBuffer:          "buffer",
	KindTexture:         "texture",
	KindTextureView:     "texture view",
	KindBindGroup:       "bind group",
	KindBindGroupLayout: "bind group layout",
	KindPipelineLayout:  "pipeline layout",
	KindRenderPipeline:  "render pipeline",
	KindComputePipeline: "compute pipeline",
	KindShaderModule:    "shader module",
	KindSampler:         "sampler",
}

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// kindOf maps a HAL interface type to its Kind. Several HAL interfaces share
// a method set, so the mapping goes through the static type rather than a
// dynamic assertion on the stored value.
func kindOf[T any]() Kind {
	switch any((*T)(nil)).(type) {
	case *hal.Buffer:
		return KindBuffer
	case *hal.Texture:
		return KindTexture
	case *hal.TextureView:
		return KindTextureView
	case *hal.BindGroup:
		return KindBindGroup
	case *hal.BindGroupLayout:
		return KindBindGroupLayout
	case *hal.PipelineLayout:
		return KindPipelineLayout
	case *hal.RenderPipeline:
		return KindRenderPipeline
	case *hal.ComputePipeline:
		return KindComputePipeline
	case *hal.ShaderModule:
		return KindShaderModule
	case *hal.Sampler:
		return KindSampler
	}
	return KindUnknown
}

// Handle is an opaque, copyable reference to a manager-owned object of type
// T. The zero Handle refers to nothing.
type Handle[T any] struct {
	id ID
}

// ID returns the table id the handle refers to.
func (h Handle[T]) ID() ID { return h.id }

// Kind returns the object kind implied by T.
func (h Handle[T]) Kind() Kind { return kindOf[T]() }

// IsZero reports whether h is the zero handle.
func (h Handle[T]) IsZero() bool { return h.id == 0 }

func (h Handle[T]) String() string {
	return fmt.Sprintf("%s#%d", h.Kind(), h.id)
}

// AnyHandle is satisfied by every Handle instantiation.
type AnyHandle interface {
	ID() ID
	Kind() Kind
}
