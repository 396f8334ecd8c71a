// Package platform defines the boundary between the resilience engine and the
// host UI environment: resource resolution, capability probing, environment
// state snapshots, and the error conditions the host reports into the engine.
package platform

import (
	"errors"
	"fmt"
)

// Well-known error conditions reported by the host UI layer.
var (
	// ErrNotAttached indicates the component is not yet attached to the UI tree.
	ErrNotAttached = errors.New("component not attached")

	// ErrStateSaved indicates a structural mutation was attempted after UI state
	// was already saved.
	ErrStateSaved = errors.New("state already saved")

	// ErrScopeDestroyed indicates the owning scope was torn down mid-operation.
	ErrScopeDestroyed = errors.New("owning scope destroyed")

	// ErrIllegalState indicates the host rejected an operation as invalid for
	// the current component state.
	ErrIllegalState = errors.New("illegal component state")
)

// ResourceError indicates a named resource failed to resolve or load.
type ResourceError struct {
	Name string
	Err  error
}

func (e *ResourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resource %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("resource %q not found", e.Name)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// ComponentError indicates a specific renderable failed to construct.
type ComponentError struct {
	ComponentID string
	Err         error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("component %q failed: %v", e.ComponentID, e.Err)
}

func (e *ComponentError) Unwrap() error {
	return e.Err
}

// Resource is a resolved visual resource that can be loaded on demand.
type Resource interface {
	// Load materializes the resource. Implementations may return an error or
	// panic; callers treat both as the resource being unavailable.
	Load() error
}

// Resolver resolves named resources against the live environment.
// Implementations must be safe for concurrent use.
type Resolver interface {
	Resolve(name string) (Resource, error)
}

// CapabilityProbe reports whether the platform supports advanced rendering
// effects (live blur, layered translucency).
type CapabilityProbe func() bool

// EnvironmentState is a snapshot of the host scope used to judge whether a
// structural UI mutation may be committed.
type EnvironmentState struct {
	// Destroyed reports whether the owning scope has been torn down.
	Destroyed bool

	// Finishing reports whether the owning scope is in the process of closing.
	Finishing bool

	// StateSaved reports whether UI state has already been persisted, after
	// which only lossy commits are permitted.
	StateSaved bool
}

// EnvironmentStateFunc supplies the current environment state on demand.
type EnvironmentStateFunc func() EnvironmentState
