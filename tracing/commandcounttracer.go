package tracing

import (
	"sort"
	"sync"

	"github.com/sarchlab/audren/effect"
	"github.com/sarchlab/audren/hooking"
	"github.com/sarchlab/audren/renderer"
)

// CommandCountTracer counts how many commands of each kind and usage state
// the renderer generated.
type CommandCountTracer struct {
	lock       sync.Mutex
	kindCount  map[effect.Type]uint64
	stateCount map[effect.UsageState]uint64
}

// NewCommandCountTracer creates a new CommandCountTracer
func NewCommandCountTracer() *CommandCountTracer {
	return &CommandCountTracer{
		kindCount:  make(map[effect.Type]uint64),
		stateCount: make(map[effect.UsageState]uint64),
	}
}

// Func counts the commands of a frame.
func (t *CommandCountTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != renderer.HookPosFrameEnd {
		return
	}

	targets, ok := ctx.Detail.([]renderer.CommandTarget)
	if !ok {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	for _, target := range targets {
		t.kindCount[target.Type]++
		t.stateCount[target.UsageState]++
	}
}

// GetKinds returns the kinds seen so far in kind order.
func (t *CommandCountTracer) GetKinds() []effect.Type {
	t.lock.Lock()
	defer t.lock.Unlock()

	kinds := make([]effect.Type, 0, len(t.kindCount))
	for k := range t.kindCount {
		kinds = append(kinds, k)
	}

	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	return kinds
}

// GetKindCount returns the number of commands of a kind.
func (t *CommandCountTracer) GetKindCount(kind effect.Type) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.kindCount[kind]
}

// GetStateCount returns the number of commands in a usage state.
func (t *CommandCountTracer) GetStateCount(state effect.UsageState) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.stateCount[state]
}
