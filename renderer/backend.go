package renderer

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Backend supplies the device a Renderer records on and the surface it
// presents to.
type Backend interface {
	Device() hal.Device
	Queue() hal.Queue
	SurfaceFormat() gputypes.TextureFormat
	SurfaceSize() (width, height uint32)
	Resize(width, height uint32)
	Present() error
	Close()
}

// ProviderBackend renders on a device owned by a host application. Close
// leaves the host device alive and Present is left to the host.
type ProviderBackend struct {
	provider      gpucontext.DeviceProvider
	device        hal.Device
	queue         hal.Queue
	width, height uint32
}

// FromProvider adapts a gpucontext.DeviceProvider whose implementation also
// exposes HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue.
func FromProvider(provider gpucontext.DeviceProvider, width, height uint32) (*ProviderBackend, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrProviderUnsupported
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrProviderUnsupported)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrProviderUnsupported)
	}
	return &ProviderBackend{
		provider: provider,
		device:   device,
		queue:    queue,
		width:    width,
		height:   height,
	}, nil
}

// Device returns the provider's HAL device.
func (b *ProviderBackend) Device() hal.Device { return b.device }

// Queue returns the provider's HAL queue.
func (b *ProviderBackend) Queue() hal.Queue { return b.queue }

// SurfaceFormat returns the host's preferred surface format.
func (b *ProviderBackend) SurfaceFormat() gputypes.TextureFormat {
	return b.provider.SurfaceFormat()
}

// SurfaceSize returns the size last set by FromProvider or Resize.
func (b *ProviderBackend) SurfaceSize() (width, height uint32) { return b.width, b.height }

// Resize records the new surface size.
func (b *ProviderBackend) Resize(width, height uint32) { b.width, b.height = width, height }

// Present is a no-op; the host presents its own surface.
func (b *ProviderBackend) Present() error { return nil }

// Close is a no-op; the host owns the device.
func (b *ProviderBackend) Close() {}
