package renderer

import (
	"fmt"
	"slices"
	"time"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gputypes"
)

// validSampleCounts lists the MSAA sample counts pipelines are built for,
// ascending.
var validSampleCounts = []uint32{1, 4}

// Config holds renderer settings.
type Config struct {
	Width  uint32
	Height uint32

	EnableDepthTesting bool
	EnableCulling      bool

	ClearColor    gputypes.Color
	MSAASamples   uint32
	SurfaceFormat gputypes.TextureFormat
	DepthFormat   gputypes.TextureFormat

	// WaitTimeout bounds the wait for the GPU to finish each submitted
	// frame. Zero submits without waiting.
	WaitTimeout time.Duration
}

// DefaultConfig returns an 800x600 configuration with depth testing and
// back-face culling on.
func DefaultConfig() Config {
	return Config{
		Width:              800,
		Height:             600,
		EnableDepthTesting: true,
		EnableCulling:      true,
		ClearColor:         gputypes.Color{R: 0.1, G: 0.2, B: 0.3, A: 1},
		MSAASamples:        1,
		SurfaceFormat:      gputypes.TextureFormatBGRA8Unorm,
		DepthFormat:        gputypes.TextureFormatDepth24PlusStencil8,
		WaitTimeout:        5 * time.Second,
	}
}

// Validate checks the configuration and clamps MSAASamples to a supported
// count.
func (c *Config) Validate() error {
	if c.Width == 0 || c.Height == 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.WaitTimeout < 0 {
		return fmt.Errorf("%w: negative wait timeout %s", ErrInvalidConfig, c.WaitTimeout)
	}
	c.MSAASamples = ValidateSampleCount(c.MSAASamples)
	return nil
}

// ValidateSampleCount returns n if it is a supported sample count, otherwise
// the largest supported count below it (1 at minimum).
func ValidateSampleCount(n uint32) uint32 {
	if slices.Contains(validSampleCounts, n) {
		return n
	}
	clamped := validSampleCounts[0]
	for _, v := range validSampleCounts {
		if v <= n {
			clamped = v
		}
	}
	framegraph.Logger().Warn("renderer: unsupported sample count, clamping",
		"requested", n, "using", clamped)
	return clamped
}
