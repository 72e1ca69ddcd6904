package pipeline

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// VertexAttribute is a per-vertex input with a fixed format.
type VertexAttribute uint8

const (
	Position3D VertexAttribute = iota
	Position2D
	Normal
	Tangent
	TextureCoord
	Color
)

// Size returns the attribute size in bytes.
func (a VertexAttribute) Size() uint64 {
	switch a {
	case Position3D, Normal:
		return 12
	case Position2D, TextureCoord:
		return 8
	case Tangent, Color:
		return 16
	default:
		return 0
	}
}

// Format returns the vertex format the attribute is read as.
func (a VertexAttribute) Format() gputypes.VertexFormat {
	switch a {
	case Position3D, Normal:
		return gputypes.VertexFormatFloat32x3
	case Position2D, TextureCoord:
		return gputypes.VertexFormatFloat32x2
	default:
		return gputypes.VertexFormatFloat32x4
	}
}

func (a VertexAttribute) String() string {
	switch a {
	case Position3D:
		return "position3d"
	case Position2D:
		return "position2d"
	case Normal:
		return "normal"
	case Tangent:
		return "tangent"
	case TextureCoord:
		return "texcoord"
	case Color:
		return "color"
	default:
		return fmt.Sprintf("VertexAttribute(%d)", a)
	}
}

// VertexLayout is an interleaved vertex buffer layout. Attributes are bound
// to consecutive shader locations in the order they are added.
type VertexLayout struct {
	attrs    []VertexAttribute
	stepMode gputypes.VertexStepMode
}

// NewVertexLayout returns an empty per-vertex layout.
func NewVertexLayout(attrs ...VertexAttribute) VertexLayout {
	l := VertexLayout{stepMode: gputypes.VertexStepModeVertex}
	return l.With(attrs...)
}

// With returns a copy of l with attrs appended.
func (l VertexLayout) With(attrs ...VertexAttribute) VertexLayout {
	out := VertexLayout{stepMode: l.stepMode}
	out.attrs = append(append(out.attrs, l.attrs...), attrs...)
	return out
}

// PerInstance returns a copy of l stepped once per instance.
func (l VertexLayout) PerInstance() VertexLayout {
	out := l.With()
	out.stepMode = gputypes.VertexStepModeInstance
	return out
}

// Attributes returns the attributes in location order.
func (l VertexLayout) Attributes() []VertexAttribute {
	return append([]VertexAttribute(nil), l.attrs...)
}

// IsEmpty reports whether the layout has no attributes.
func (l VertexLayout) IsEmpty() bool { return len(l.attrs) == 0 }

// Stride returns the byte distance between consecutive vertices.
func (l VertexLayout) Stride() uint64 {
	var stride uint64
	for _, a := range l.attrs {
		stride += a.Size()
	}
	return stride
}

// Build converts the layout into a vertex buffer layout description.
func (l VertexLayout) Build() (gputypes.VertexBufferLayout, error) {
	attrs := make([]gputypes.VertexAttribute, len(l.attrs))
	var offset uint64
	for i, a := range l.attrs {
		if a.Size() == 0 {
			return gputypes.VertexBufferLayout{}, fmt.Errorf("%w: attribute %d is %v", ErrInvalidVertexLayout, i, a)
		}
		attrs[i] = gputypes.VertexAttribute{
			Format:         a.Format(),
			Offset:         offset,
			ShaderLocation: uint32(i),
		}
		offset += a.Size()
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    l.stepMode,
		Attributes:  attrs,
	}, nil
}

// Preset layouts.
var (
	PositionOnly     = NewVertexLayout(Position3D)
	PositionNormal   = NewVertexLayout(Position3D, Normal)
	PositionNormalUV = NewVertexLayout(Position3D, Normal, TextureCoord)
	PositionColor    = NewVertexLayout(Position3D, Color)
)
