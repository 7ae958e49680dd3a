// Package tracing collects statistics about the frames a renderer generates.
package tracing

import (
	"sync"
	"time"

	"github.com/sarchlab/audren/hooking"
	"github.com/sarchlab/audren/renderer"
)

// FrameTimeTracer measures the wall time the renderer spends building the
// command view of every frame. It should be attached to a renderer.System.
type FrameTimeTracer struct {
	lock       sync.Mutex
	now        func() time.Time
	inflight   map[uint64]time.Time
	frameCount uint64
	totalTime  time.Duration
	maxTime    time.Duration
}

// NewFrameTimeTracer creates a new FrameTimeTracer
func NewFrameTimeTracer() *FrameTimeTracer {
	return &FrameTimeTracer{
		now:      time.Now,
		inflight: make(map[uint64]time.Time),
	}
}

// Func records the start or the end of a frame.
func (t *FrameTimeTracer) Func(ctx hooking.HookCtx) {
	frame, ok := ctx.Item.(uint64)
	if !ok {
		return
	}

	switch ctx.Pos {
	case renderer.HookPosFrameStart:
		t.startFrame(frame)
	case renderer.HookPosFrameEnd:
		t.endFrame(frame)
	}
}

func (t *FrameTimeTracer) startFrame(frame uint64) {
	now := t.now()

	t.lock.Lock()
	t.inflight[frame] = now
	t.lock.Unlock()
}

func (t *FrameTimeTracer) endFrame(frame uint64) {
	now := t.now()

	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.inflight[frame]
	if !ok {
		return
	}

	delete(t.inflight, frame)

	d := now.Sub(start)
	t.frameCount++
	t.totalTime += d
	t.maxTime = max(t.maxTime, d)
}

// FrameCount returns the number of frames measured.
func (t *FrameTimeTracer) FrameCount() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.frameCount
}

// TotalTime returns the time spent in all the measured frames.
func (t *FrameTimeTracer) TotalTime() time.Duration {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.totalTime
}

// AverageTime returns the average time spent per frame.
func (t *FrameTimeTracer) AverageTime() time.Duration {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.frameCount == 0 {
		return 0
	}

	return t.totalTime / time.Duration(t.frameCount)
}

// MaxTime returns the time spent in the slowest frame.
func (t *FrameTimeTracer) MaxTime() time.Duration {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.maxTime
}
