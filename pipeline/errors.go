package pipeline

import "errors"

var (
	// ErrShaderNotFound is returned when a shader name is not registered.
	ErrShaderNotFound = errors.New("pipeline: shader not found")

	// ErrInvalidShader is returned when WGSL source fails to compile.
	ErrInvalidShader = errors.New("pipeline: invalid shader")

	// ErrInvalidVertexLayout is returned for layouts the backend cannot express.
	ErrInvalidVertexLayout = errors.New("pipeline: invalid vertex layout")

	// ErrPipelineCreation wraps backend failures while building a pipeline.
	ErrPipelineCreation = errors.New("pipeline: creation failed")
)
