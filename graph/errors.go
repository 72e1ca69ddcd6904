package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCyclicDependency is returned by Compile when the declared usages
	// form a cycle.
	ErrCyclicDependency = errors.New("render graph: cyclic dependency detected")

	// ErrPassNotFound is returned when a pass id is not in the graph.
	ErrPassNotFound = errors.New("render graph: pass not found")

	// ErrResourceNotFound is returned by passes when a resource they need
	// has not been published.
	ErrResourceNotFound = errors.New("render graph: resource not found")

	// ErrCompilationFailed is returned by Execute on a graph that has not
	// been compiled since its last change.
	ErrCompilationFailed = errors.New("render graph: compilation failed")

	// ErrExecutionFailed wraps the first pass error during Execute.
	ErrExecutionFailed = errors.New("render graph: execution failed")

	// ErrWaitTimeout is returned by Execute when the submitted batch does
	// not complete within the wait timeout.
	ErrWaitTimeout = errors.New("render graph: GPU wait timed out")
)

// CycleError lists the passes that could not be scheduled. It matches
// ErrCyclicDependency.
type CycleError struct {
	Unresolved []PassID
}

func (e *CycleError) Error() string {
	ids := make([]string, len(e.Unresolved))
	for i, id := range e.Unresolved {
		ids[i] = string(id)
	}
	return fmt.Sprintf("%v: unresolved passes [%s]", ErrCyclicDependency, strings.Join(ids, ", "))
}

func (e *CycleError) Unwrap() error { return ErrCyclicDependency }

// PassError reports the pass that failed during Execute. It matches both
// ErrExecutionFailed and the pass's own error.
type PassError struct {
	Pass PassID
	Err  error
}

func (e *PassError) Error() string {
	return fmt.Sprintf("%v: pass %s failed: %v", ErrExecutionFailed, e.Pass, e.Err)
}

func (e *PassError) Unwrap() []error { return []error{ErrExecutionFailed, e.Err} }

// MissingResource builds the error a pass returns when a named resource
// lookup fails. cause may be nil.
func MissingResource(name string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrResourceNotFound, name)
	}
	return fmt.Errorf("%w: %s: %w", ErrResourceNotFound, name, cause)
}
