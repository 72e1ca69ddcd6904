package renderer

import "errors"

var (
	// ErrInvalidConfig is returned for configurations that cannot be rendered.
	ErrInvalidConfig = errors.New("renderer: invalid config")

	// ErrNotInitialized is returned by RenderFrame before Initialize.
	ErrNotInitialized = errors.New("renderer: not initialized")

	// ErrClosed is returned by any operation after Close.
	ErrClosed = errors.New("renderer: closed")

	// ErrNoAdapter is returned when a backend exposes no usable adapter.
	ErrNoAdapter = errors.New("renderer: no GPU adapter found")

	// ErrProviderUnsupported is returned by FromProvider for hosts that do
	// not expose HAL objects.
	ErrProviderUnsupported = errors.New("renderer: provider does not expose HAL types")
)
