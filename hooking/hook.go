// Package hooking lets observers attach to the renderer and the frame engine
// without the observed code knowing about them.
package hooking

import (
	"log"
	"slices"
	"sync"
)

// A HookPos names a site where a domain invokes its hooks.
type HookPos struct {
	Name string
}

// HookCtx describes one invocation. What Item and Detail hold depends on
// the position.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
	Detail any
}

// A Hookable accepts hooks.
type Hookable interface {
	AcceptHook(hook Hook)
	NumHooks() int
	Hooks() []Hook
}

// HookInvoker is a Hookable that can also trigger its hooks. Code that runs
// on behalf of a domain uses it to report to the domain's hooks.
type HookInvoker interface {
	Hookable
	InvokeHook(ctx HookCtx)
}

// A Hook is called at every site of the domains it is attached to.
type Hook interface {
	Func(ctx HookCtx)
}

// Named is a domain that has a name.
type Named interface {
	Name() string
}

// HookableBase implements HookInvoker for the types that embed it. Hooks may
// be attached and removed while the domain invokes them.
type HookableBase struct {
	lock  sync.RWMutex
	hooks []Hook
}

// NumHooks returns the number of hooks attached.
func (h *HookableBase) NumHooks() int {
	h.lock.RLock()
	defer h.lock.RUnlock()

	return len(h.hooks)
}

// Hooks returns the hooks attached, in attach order.
func (h *HookableBase) Hooks() []Hook {
	h.lock.RLock()
	defer h.lock.RUnlock()

	return slices.Clone(h.hooks)
}

// AcceptHook attaches a hook. Attaching the same hook twice is a programming
// error.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if slices.Contains(h.hooks, hook) {
		log.Panic("duplicated hook")
	}

	h.hooks = append(h.hooks, hook)
}

// RemoveHook detaches a hook. It returns false if the hook was not attached.
func (h *HookableBase) RemoveHook(hook Hook) bool {
	h.lock.Lock()
	defer h.lock.Unlock()

	i := slices.Index(h.hooks, hook)
	if i < 0 {
		return false
	}

	h.hooks = slices.Delete(h.hooks, i, i+1)

	return true
}

// InvokeHook calls every attached hook in attach order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks() {
		hook.Func(ctx)
	}
}
