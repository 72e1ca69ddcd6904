package graph

import (
	"github.com/gogpu/framegraph/resource"
	"github.com/gogpu/wgpu/hal"
)

// PassID names a pass within a graph.
type PassID string

// ResourceID names a logical resource slot. Two passes that use the same
// ResourceID depend on each other even if the GPU object behind the slot
// changes between frames.
type ResourceID string

// Usage is how a pass touches a resource slot.
type Usage uint8

const (
	Read Usage = iota
	Write
	ReadWrite
)

// String returns the usage name.
func (u Usage) String() string {
	switch u {
	case Read:
		return "read"
	case Write:
		return "write"
	case ReadWrite:
		return "read-write"
	default:
		return "unknown"
	}
}

// Reads reports whether u is Read or ReadWrite.
func (u Usage) Reads() bool { return u == Read || u == ReadWrite }

// Writes reports whether u is Write or ReadWrite.
func (u Usage) Writes() bool { return u == Write || u == ReadWrite }

// Declaration attaches a usage to a resource slot.
type Declaration struct {
	Resource ResourceID
	Usage    Usage
}

// Reads declares a read of r.
func Reads(r ResourceID) Declaration { return Declaration{Resource: r, Usage: Read} }

// Writes declares a write of r.
func Writes(r ResourceID) Declaration { return Declaration{Resource: r, Usage: Write} }

// ReadsWrites declares a read-modify-write of r.
func ReadsWrites(r ResourceID) Declaration { return Declaration{Resource: r, Usage: ReadWrite} }

// Device is what the graph needs from the backend device: object creation
// for passes, a command encoder for recording and the release of finished
// command buffers.
type Device interface {
	resource.Device
	CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error)
	FreeCommandBuffer(cmdBuffer hal.CommandBuffer)
}

// Queue accepts the recorded batch and reports the highest submission index
// the GPU has finished.
type Queue interface {
	Submit(commandBuffers []hal.CommandBuffer) (submissionIndex uint64, err error)
	PollCompleted() uint64
}

// RecordContext is shared by every pass during one Execute call.
type RecordContext struct {
	Device  Device
	Encoder hal.CommandEncoder

	// Frame counts successful Execute calls on the graph, starting at 0.
	Frame uint64
}

// Pass is a unit of render work with declared resource usage.
//
// Resources is read when the pass is added; later changes to the returned
// slice are not seen by the graph until the pass is added again.
type Pass interface {
	ID() PassID
	Resources() []Declaration
	Execute(rc *RecordContext, resources *resource.Manager) error
}

// Initializer is implemented by passes that create GPU objects once before
// their first execution. Initialize must be idempotent.
type Initializer interface {
	Initialize(device resource.Device, resources *resource.Manager) error
}
