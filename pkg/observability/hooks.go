// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about tree lifecycles, cascades, and scene execution.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the hierarchy engine
// itself stays free of any metrics framework.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetTreeHooks(&myTreeHooks{})
//	    observability.SetSceneHooks(&mySceneHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Tree().OnTreeCreated(worldID, "keyed[scene.Transform]")
//	observability.Tree().OnCascade("keyed[scene.Transform]", "disable", 12)
//
// Tree hooks run on the goroutine that mutates the world, inside the
// mutation's call stack. Implementations must not mutate the world.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Tree Hooks
// =============================================================================

// TreeHooks receives events from shared hierarchy trees.
type TreeHooks interface {
	// Lifecycle events
	OnTreeCreated(world, tree string)
	OnTreeAcquired(world, tree string, refs int)
	OnTreeReleased(world, tree string, refs int)
	OnTreeDisposed(world, tree string)

	// OnCascade records a completed cascade. Kind names the propagated
	// change (for example "destroy", "enable", "renumber") and entities is
	// the number of entities it touched.
	OnCascade(tree, kind string, entities int)
}

// =============================================================================
// Scene Hooks
// =============================================================================

// SceneHooks receives events from scene loading and execution.
type SceneHooks interface {
	// OnSceneLoaded records a scene that was decoded and built into a world.
	OnSceneLoaded(ctx context.Context, scene string, entities int, duration time.Duration)

	// OnOpApplied records one scripted operation.
	OnOpApplied(ctx context.Context, scene, kind string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopTreeHooks is a no-op implementation of TreeHooks.
type NoopTreeHooks struct{}

func (NoopTreeHooks) OnTreeCreated(string, string)       {}
func (NoopTreeHooks) OnTreeAcquired(string, string, int) {}
func (NoopTreeHooks) OnTreeReleased(string, string, int) {}
func (NoopTreeHooks) OnTreeDisposed(string, string)      {}
func (NoopTreeHooks) OnCascade(string, string, int)      {}

// NoopSceneHooks is a no-op implementation of SceneHooks.
type NoopSceneHooks struct{}

func (NoopSceneHooks) OnSceneLoaded(context.Context, string, int, time.Duration) {}
func (NoopSceneHooks) OnOpApplied(context.Context, string, string, error)        {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	treeHooks  TreeHooks  = NoopTreeHooks{}
	sceneHooks SceneHooks = NoopSceneHooks{}
	hooksMu    sync.RWMutex
)

// SetTreeHooks registers custom tree hooks.
// This should be called once at application startup before any tree is acquired.
func SetTreeHooks(h TreeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		treeHooks = h
	}
}

// SetSceneHooks registers custom scene hooks.
// This should be called once at application startup before any scene is loaded.
func SetSceneHooks(h SceneHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sceneHooks = h
	}
}

// Tree returns the registered tree hooks.
func Tree() TreeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return treeHooks
}

// Scene returns the registered scene hooks.
func Scene() SceneHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sceneHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	treeHooks = NoopTreeHooks{}
	sceneHooks = NoopSceneHooks{}
}
