package hooking

import (
	"log"
)

// A LogHook prints the hook sites it is invoked at.
type LogHook struct {
	*log.Logger

	positions map[*HookPos]bool
}

// NewLogHook creates a LogHook that writes to logger. If positions are
// given, only those positions are printed.
func NewLogHook(logger *log.Logger, positions ...*HookPos) *LogHook {
	h := &LogHook{
		Logger:    logger,
		positions: make(map[*HookPos]bool),
	}

	for _, pos := range positions {
		h.positions[pos] = true
	}

	return h
}

// Func prints the hook context.
func (h *LogHook) Func(ctx HookCtx) {
	if len(h.positions) > 0 && !h.positions[ctx.Pos] {
		return
	}

	domain := "-"
	if named, ok := ctx.Domain.(Named); ok {
		domain = named.Name()
	}

	if ctx.Detail == nil {
		h.Printf("%s %s %v", domain, ctx.Pos.Name, ctx.Item)
		return
	}

	h.Printf("%s %s %v: %v", domain, ctx.Pos.Name, ctx.Item, ctx.Detail)
}
